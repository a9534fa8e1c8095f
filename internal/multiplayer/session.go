package multiplayer

import "sync"

// SessionHandle is how the coordinator and matches reach a connected player
// without knowing about SSH or Bubble Tea.
type SessionHandle interface {
	ID() SessionID

	// Send must not block. Frames may be coalesced; other events are queued.
	Send(evt SessionEvent)

	// Done closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession delivers events over two channels: a queue for lobby and
// match events, and a single slot holding the newest frame. A slow reader
// therefore skips frames but never misses a lobby or match event.
type ChannelSession struct {
	id     SessionID
	events chan SessionEvent
	frames chan SessionEvent

	frameMu  sync.Mutex
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a session whose event queue holds queueSize
// entries (64 when queueSize < 1).
func NewChannelSession(id SessionID, queueSize int) *ChannelSession {
	if queueSize < 1 {
		queueSize = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, queueSize),
		frames: make(chan SessionEvent, 1),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send routes evt to the frame slot or the event queue. Nothing is
// delivered after Close.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	if _, ok := evt.(SnapshotEvent); ok {
		s.replaceFrame(evt)
		return
	}
	s.enqueue(evt)
}

// replaceFrame swaps whatever frame is waiting for evt.
func (s *ChannelSession) replaceFrame(evt SessionEvent) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	select {
	case <-s.frames:
	default:
	}
	s.frames <- evt
}

// enqueue appends evt, dropping the oldest queued event when full.
func (s *ChannelSession) enqueue(evt SessionEvent) {
	for range 2 {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// Events returns the lobby and match event queue.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Frames returns the newest undelivered SnapshotEvent, one at a time.
func (s *ChannelSession) Frames() <-chan SessionEvent {
	return s.frames
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close ends the session. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry maps IDs to the sessions currently connected.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[SessionID]SessionHandle)}
}

// Register adds session, replacing any earlier one with the same ID.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()
}

// Unregister forgets id.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Get looks a session up by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns how many sessions are connected.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
