package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/multiplayer"
)

func TestAppendCodeChar(t *testing.T) {
	tests := []struct {
		code, key, want string
	}{
		{"", "a", "A"},
		{"AB", "7", "AB7"},
		{"AB", "-", "AB"},
		{"AB", "o", "AB"},
		{"AB", "1", "AB"},
		{"AB", "tab", "AB"},
		{"ABCDEF", "G", "ABCDEF"},
	}
	for _, tt := range tests {
		if got := appendCodeChar(tt.code, tt.key); got != tt.want {
			t.Errorf("appendCodeChar(%q, %q) = %q, want %q", tt.code, tt.key, got, tt.want)
		}
	}
}

func TestLobbyFollowsCoordinatorEvents(t *testing.T) {
	m := NewOnlineLobbyModel(duotris.IDCoop, "me", nil, 80, 24)

	next, _ := m.Update(multiplayer.LobbyCreatedEvent{Code: "QWE234", GameID: duotris.IDCoop})
	m = next.(OnlineLobbyModel)
	if m.State() != OnlineStateHostWaiting || m.LobbyCode() != "QWE234" {
		t.Fatalf("state %v code %q after LobbyCreated", m.State(), m.LobbyCode())
	}

	next, _ = m.Update(multiplayer.MatchStartedEvent{MatchID: "m-1", Side: core.Player1, Code: "QWE234"})
	m = next.(OnlineLobbyModel)
	if m.State() != OnlineStateInMatch || m.MatchID() != "m-1" || m.Side() != core.Player1 {
		t.Errorf("state %v match %q side %v after MatchStarted", m.State(), m.MatchID(), m.Side())
	}
}

func TestJoinCodeEntry(t *testing.T) {
	m := NewOnlineLobbyModel(duotris.IDCoop, "me", nil, 80, 24)

	next, _ := m.Update(runeKey('j'))
	m = next.(OnlineLobbyModel)
	if m.State() != OnlineStateJoinEnterCode {
		t.Fatalf("state = %v, want join entry", m.State())
	}
	for _, r := range "ab3" {
		next, _ = m.Update(runeKey(r))
		m = next.(OnlineLobbyModel)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(OnlineLobbyModel)
	if m.joinCodeInput != "AB" {
		t.Errorf("code = %q, want AB", m.joinCodeInput)
	}
	if m.BackToMenu() || m.State() != OnlineStateJoinEnterCode {
		t.Errorf("typing b left the join screen: state %v back %v", m.State(), m.BackToMenu())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(OnlineLobbyModel).BackToMenu() {
		t.Error("esc did not leave the join screen")
	}
}

func TestOnlineMatchShowsSnapshotsAndResult(t *testing.T) {
	m := NewOnlineMatchModel("m-1", core.Player2, "me", nil, 80, 24)

	g := duotris.New(duotris.ModeCoop)
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 3})

	next, _ := m.Update(multiplayer.SnapshotEvent{MatchID: "other", Snapshot: g.Snapshot()})
	m = next.(OnlineMatchModel)
	if m.snapshot != nil {
		t.Fatal("accepted a snapshot of another match")
	}

	next, _ = m.Update(multiplayer.SnapshotEvent{MatchID: "m-1", Tick: 1, Snapshot: g.Snapshot()})
	m = next.(OnlineMatchModel)
	if m.snapshot == nil {
		t.Fatal("snapshot was not kept")
	}

	next, _ = m.Update(multiplayer.MatchEndedEvent{MatchID: "m-1", Reason: multiplayer.MatchEndReasonCompleted, Score: 120})
	m = next.(OnlineMatchModel)
	if m.ended == nil || m.ended.Score != 120 {
		t.Fatalf("ended = %+v", m.ended)
	}

	next, _ = m.Update(runeKey('x'))
	if !next.(OnlineMatchModel).BackToMenu() {
		t.Error("key after the result did not return to the menu")
	}
}

func TestCoopModeSelection(t *testing.T) {
	m := NewCoopModeModel(80, 24)
	if m.Selected() != -1 {
		t.Fatalf("Selected() = %v before choosing", m.Selected())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.(CoopModeModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(CoopModeModel)
	if m.Selected() != multiplayer.MatchModeOnlineCoop {
		t.Errorf("Selected() = %v, want online co-op", m.Selected())
	}
}

func TestSessionMenuStartsGame(t *testing.T) {
	s := NewSessionModel(nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 15}, nil, nil)

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s = next.(SessionModel)
	if s.current != screenGame {
		t.Fatalf("screen = %v, want game", s.current)
	}
	if s.game.game.ID() != duotris.IDSolo {
		t.Errorf("game = %q, want %q", s.game.game.ID(), duotris.IDSolo)
	}

	next, cmd := s.Update(runeKey('q'))
	if !next.(SessionModel).quitting || cmd == nil {
		t.Error("q did not end the session")
	}
}
