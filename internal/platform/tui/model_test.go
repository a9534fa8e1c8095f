package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/replay"
	"github.com/vovakirdan/duotris/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "replays.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestModel(t *testing.T, mode duotris.Mode, store *storage.Store) Model {
	t.Helper()
	cfg := config.DefaultDuotrisConfig()
	game := duotris.NewWithConfig(mode, cfg)
	return NewModel(game, store, nil, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 15, Seed: 11})
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = send(t, m, TickMsg{Loop: m.loop})
	return m
}

// dropUntilOver hard-drops every tick until the stack reaches the top.
func dropUntilOver(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 5000 && !m.State().GameOver; i++ {
		m, _ = send(t, m, runeKey('x'))
		m = tick(t, m)
	}
	if !m.State().GameOver {
		t.Fatal("round never ended")
	}
	return m
}

func TestModelSavesVerifiableReplay(t *testing.T) {
	store := openStore(t)
	m := newTestModel(t, duotris.ModeSolo, store)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = tick(t, m)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = tick(t, m)
	m = dropUntilOver(t, m)

	recent, err := store.RecentReplays(10)
	if err != nil {
		t.Fatalf("RecentReplays() error = %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("stored %d replays, want 1", len(recent))
	}
	if recent[0].Score != m.State().Score || !recent[0].GameOver {
		t.Errorf("stored %+v, want score %d and game over", recent[0], m.State().Score)
	}

	full, err := store.ReplayByID(recent[0].ID)
	if err != nil {
		t.Fatalf("ReplayByID() error = %v", err)
	}
	if _, err := replay.Verify(full); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	// More ticks on the finished round do not store it again.
	m = tick(t, m)
	if recent, _ = store.RecentReplays(10); len(recent) != 1 {
		t.Errorf("stored %d replays after extra tick, want 1", len(recent))
	}
}

func TestModelRestartStartsNewRecording(t *testing.T) {
	store := openStore(t)
	m := dropUntilOver(t, newTestModel(t, duotris.ModeSolo, store))

	first := m.recorder
	m, _ = send(t, m, runeKey('r'))
	m = tick(t, m)

	if m.State().GameOver {
		t.Fatal("round still over after restart")
	}
	if m.recorder == first {
		t.Error("restart kept the old recorder")
	}

	// Quitting a fresh round with nothing locked stores nothing.
	m, cmd := send(t, m, runeKey('q'))
	if !m.IsQuitting() || cmd == nil {
		t.Error("q did not quit")
	}
	if recent, _ := store.RecentReplays(10); len(recent) != 1 {
		t.Errorf("stored %d replays, want 1", len(recent))
	}
}

func TestModelIgnoresStaleTicks(t *testing.T) {
	m := newTestModel(t, duotris.ModeSolo, nil)
	before := m.recorder.Ticks()

	m, cmd := send(t, m, TickMsg{Loop: m.loop + 1})
	if cmd != nil {
		t.Error("stale tick scheduled another tick")
	}
	if m.recorder.Ticks() != before {
		t.Error("stale tick advanced the round")
	}

	m = tick(t, m)
	if m.recorder.Ticks() != before+1 {
		t.Errorf("Ticks() = %d, want %d", m.recorder.Ticks(), before+1)
	}
}

func TestModelCoopUsesSplitKeyboard(t *testing.T) {
	m := newTestModel(t, duotris.ModeCoop, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if !m.inputFrame.Player2().Has(core.ActionLeft) {
		t.Errorf("left arrow went to %v, want player 2", m.inputFrame.ByPlayer)
	}
	m = tick(t, m)
	if !m.inputFrame.Player2().Empty() {
		t.Error("input was not consumed by the tick")
	}
}

func TestModelBackOnlyWhenPausedOrOver(t *testing.T) {
	m := newTestModel(t, duotris.ModeSolo, nil)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Fatal("Esc left a running round")
	}

	m, _ = send(t, m, runeKey('p'))
	m = tick(t, m)
	if !m.State().Paused {
		t.Fatal("p did not pause")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("Esc on a paused round did not go back")
	}
}
