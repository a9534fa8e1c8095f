package multiplayer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/duotris/internal/core"
)

type recordingSaver struct {
	saved chan MatchResultData
}

func (s recordingSaver) SaveMatchResult(data MatchResultData) error {
	s.saved <- data
	return nil
}

func waitFor[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case evt := <-s.Frames():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("%s: timed out waiting for %T", s.ID(), zero)
			return zero
		}
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *ChannelSession, *ChannelSession) {
	t.Helper()

	sessions := NewSessionRegistry()
	host := NewChannelSession("host", 64)
	joiner := NewChannelSession("joiner", 64)
	sessions.Register(host)
	sessions.Register(joiner)

	factory := func(gameID string, cfg core.RuntimeConfig) (OnlineGame, error) {
		g := &fakeGame{}
		g.Reset(cfg)
		return g, nil
	}

	cfg := DefaultCoordinatorConfig()
	cfg.TickRate = 50
	c := NewCoordinator(cfg, factory, sessions)
	c.Start()
	t.Cleanup(c.Stop)
	return c, host, joiner
}

func TestCoordinatorHostJoinAndLeave(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)
	saver := recordingSaver{saved: make(chan MatchResultData, 1)}
	c.SetResultSaver(saver)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "duotris_coop"})
	created := waitFor[LobbyCreatedEvent](t, host)
	if len(created.Code) != 6 {
		t.Fatalf("join code %q, want 6 characters", created.Code)
	}

	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: strings.ToLower(created.Code)})

	joined := waitFor[LobbyJoinedEvent](t, joiner)
	if joined.Side != Player2 || joined.PartnerID != host.ID() {
		t.Errorf("joiner got %+v, want side P2 with host as partner", joined)
	}
	hostStart := waitFor[MatchStartedEvent](t, host)
	joinerStart := waitFor[MatchStartedEvent](t, joiner)
	if hostStart.Side != Player1 || joinerStart.Side != Player2 {
		t.Errorf("sides = %v/%v, want P1/P2", hostStart.Side, joinerStart.Side)
	}
	if hostStart.MatchID != joinerStart.MatchID {
		t.Fatalf("match IDs differ: %q vs %q", hostStart.MatchID, joinerStart.MatchID)
	}
	if c.LobbyCount() != 0 {
		t.Errorf("LobbyCount() = %d after match start, want 0", c.LobbyCount())
	}
	if c.MatchCount() != 1 {
		t.Errorf("MatchCount() = %d after match start, want 1", c.MatchCount())
	}

	c.Send(PlayerInputMsg{MatchID: hostStart.MatchID, Player: Player1, Input: frameOf(core.ActionRotate)})
	waitFor[SnapshotEvent](t, joiner)

	c.Send(LeaveMatchMsg{SessionID: joiner.ID(), MatchID: joinerStart.MatchID})
	ended := waitFor[MatchEndedEvent](t, host)
	if ended.Reason != MatchEndReasonQuit {
		t.Errorf("Reason = %v, want %v", ended.Reason, MatchEndReasonQuit)
	}

	select {
	case data := <-saver.saved:
		if data.MatchID != string(hostStart.MatchID) {
			t.Errorf("saved MatchID = %q, want %q", data.MatchID, hostStart.MatchID)
		}
		if data.GameID != "duotris_coop" {
			t.Errorf("saved GameID = %q, want duotris_coop", data.GameID)
		}
		if data.Player1Session != "host" || data.Player2Session != "joiner" {
			t.Errorf("saved sessions = %q/%q", data.Player1Session, data.Player2Session)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("match result was not saved")
	}
}

func TestCoordinatorJoinErrors(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: "NOPE00"})
	if evt := waitFor[LobbyErrorEvent](t, joiner); evt.Message != "Lobby not found" {
		t.Errorf("Message = %q, want %q", evt.Message, "Lobby not found")
	}

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "duotris_coop"})
	created := waitFor[LobbyCreatedEvent](t, host)

	c.Send(JoinLobbyMsg{SessionID: host.ID(), Code: created.Code})
	if evt := waitFor[LobbyErrorEvent](t, host); evt.Message != "Already in a lobby" {
		t.Errorf("Message = %q, want %q", evt.Message, "Already in a lobby")
	}

	c.Send(CancelLobbyMsg{SessionID: host.ID(), Code: created.Code})
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	if evt := waitFor[LobbyErrorEvent](t, joiner); evt.Message != "Lobby not found" {
		t.Errorf("after cancel Message = %q, want %q", evt.Message, "Lobby not found")
	}
}

func TestCoordinatorDisconnectEndsMatch(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "duotris_coop"})
	created := waitFor[LobbyCreatedEvent](t, host)
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	waitFor[MatchStartedEvent](t, host)

	c.Send(SessionDisconnectedMsg{SessionID: joiner.ID()})
	ended := waitFor[MatchEndedEvent](t, host)
	if ended.Reason != MatchEndReasonDisconnect {
		t.Errorf("Reason = %v, want %v", ended.Reason, MatchEndReasonDisconnect)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.MatchCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.MatchCount() != 0 {
		t.Errorf("MatchCount() = %d after disconnect, want 0", c.MatchCount())
	}

	// Both players are free to host again.
	c.Send(CreateLobbyMsg{SessionID: joiner.ID(), GameID: "duotris_coop"})
	waitFor[LobbyCreatedEvent](t, joiner)
}

func TestCoordinatorHostLeavingClosesLobby(t *testing.T) {
	c, host, joiner := newTestCoordinator(t)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "duotris_coop"})
	created := waitFor[LobbyCreatedEvent](t, host)

	// A joiner cannot cancel someone else's lobby.
	c.Send(CancelLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	c.Send(LeaveLobbyMsg{SessionID: host.ID(), Code: created.Code})
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	if evt := waitFor[LobbyErrorEvent](t, joiner); evt.Message != "Lobby not found" {
		t.Errorf("Message = %q, want %q", evt.Message, "Lobby not found")
	}
	if c.LobbyCount() != 0 {
		t.Errorf("LobbyCount() = %d, want 0", c.LobbyCount())
	}
}

func TestGenerateJoinCode(t *testing.T) {
	for range 20 {
		code := generateJoinCode()
		if len(code) != 6 {
			t.Fatalf("generateJoinCode() = %q, want 6 characters", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Errorf("generateJoinCode() = %q, has %q outside the alphabet", code, r)
			}
		}
	}
}

func TestNewJoinCode(t *testing.T) {
	code, err := newJoinCode(bytes.NewReader([]byte{0, 1, 31, 32, 63, 255}))
	if err != nil {
		t.Fatalf("newJoinCode() error: %v", err)
	}
	if code != "AB9A99" {
		t.Errorf("newJoinCode() = %q, want %q", code, "AB9A99")
	}

	if _, err := newJoinCode(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Error("newJoinCode() on a short reader returned no error")
	}
}

func TestJoinCodeHelpers(t *testing.T) {
	if got := NormalizeJoinCode("  ab3xyz "); got != "AB3XYZ" {
		t.Errorf("NormalizeJoinCode() = %q, want AB3XYZ", got)
	}
	for _, r := range "aZ29" {
		if !ValidJoinCodeChar(r) {
			t.Errorf("ValidJoinCodeChar(%q) = false, want true", r)
		}
	}
	for _, r := range "IO01-" {
		if ValidJoinCodeChar(r) {
			t.Errorf("ValidJoinCodeChar(%q) = true, want false", r)
		}
	}
}
