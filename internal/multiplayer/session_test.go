package multiplayer

import "testing"

func TestChannelSessionKeepsNewestFrame(t *testing.T) {
	s := NewChannelSession("s", 4)

	s.Send(MatchStartedEvent{MatchID: "m"})
	for tick := uint64(1); tick <= 5; tick++ {
		s.Send(SnapshotEvent{MatchID: "m", Tick: tick})
	}
	s.Send(MatchEndedEvent{MatchID: "m"})

	select {
	case evt := <-s.Frames():
		if snap := evt.(SnapshotEvent); snap.Tick != 5 {
			t.Errorf("frame tick = %d, want 5", snap.Tick)
		}
	default:
		t.Fatal("no frame waiting")
	}
	select {
	case evt := <-s.Frames():
		t.Fatalf("second frame %+v, want only the newest", evt)
	default:
	}

	if _, ok := (<-s.Events()).(MatchStartedEvent); !ok {
		t.Error("first queued event is not MatchStartedEvent")
	}
	if _, ok := (<-s.Events()).(MatchEndedEvent); !ok {
		t.Error("second queued event is not MatchEndedEvent")
	}
}

func TestChannelSessionDropsOldestWhenFull(t *testing.T) {
	s := NewChannelSession("s", 2)

	s.Send(LobbyErrorEvent{Message: "1"})
	s.Send(LobbyErrorEvent{Message: "2"})
	s.Send(LobbyErrorEvent{Message: "3"})

	var got []string
	for range 2 {
		got = append(got, (<-s.Events()).(LobbyErrorEvent).Message)
	}
	if got[0] != "2" || got[1] != "3" {
		t.Errorf("queue = %v, want [2 3]", got)
	}
}

func TestChannelSessionIgnoresSendAfterClose(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Close()
	s.Close()

	s.Send(LobbyErrorEvent{Message: "late"})
	s.Send(SnapshotEvent{Tick: 1})

	select {
	case evt := <-s.Events():
		t.Errorf("got %+v after Close", evt)
	case evt := <-s.Frames():
		t.Errorf("got frame %+v after Close", evt)
	default:
	}
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	a := NewChannelSession("a", 1)
	r.Register(a)
	r.Register(NewChannelSession("b", 1))

	if got, ok := r.Get("a"); !ok || got != a {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
	r.Unregister("a")
	if _, ok := r.Get("a"); ok {
		t.Error("Get(a) found a session after Unregister")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}
