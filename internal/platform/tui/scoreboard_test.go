package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/replay"
)

func TestScoreboardListsBestFirstAndPicksReplay(t *testing.T) {
	store := openStore(t)
	for i, score := range []int{40, 1200, 300} {
		r := replay.Replay{
			ID:       []string{"low", "best", "mid"}[i],
			GameID:   duotris.IDSolo,
			Seed:     int64(i),
			Config:   config.DefaultDuotrisConfig(),
			Ticks:    10,
			Score:    score,
			GameOver: true,
		}
		if err := store.SaveReplay(r); err != nil {
			t.Fatalf("SaveReplay() error = %v", err)
		}
	}

	m := NewScoreboardModel(store, 100, 30)
	if m.currentGameID() != duotris.IDSolo {
		t.Fatalf("first game = %q, want %q", m.currentGameID(), duotris.IDSolo)
	}
	if len(m.replays) != 3 || m.replays[0].ID != "best" {
		t.Fatalf("replays = %+v, want best first", m.replays)
	}
	if line := m.statsLine(); !strings.Contains(line, "3 rounds") || !strings.Contains(line, "best 1200") {
		t.Errorf("statsLine() = %q", line)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ScoreboardModel)
	if m.WatchID() != "best" {
		t.Errorf("WatchID() = %q, want best", m.WatchID())
	}
}

func TestScoreboardSwitchesGameAndDeletes(t *testing.T) {
	store := openStore(t)
	r := replay.Replay{ID: "coop-1", GameID: duotris.IDCoop, Config: config.DefaultDuotrisConfig(), Score: 90}
	if err := store.SaveReplay(r); err != nil {
		t.Fatalf("SaveReplay() error = %v", err)
	}

	m := NewScoreboardModel(store, 60, 30)
	if len(m.replays) != 0 {
		t.Fatalf("solo list = %+v, want empty", m.replays)
	}
	if m.statsLine() != "No rounds played" {
		t.Errorf("statsLine() = %q", m.statsLine())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	if m.currentGameID() != duotris.IDCoop || len(m.replays) != 1 {
		t.Fatalf("after tab: game %q replays %d", m.currentGameID(), len(m.replays))
	}

	next, _ = m.Update(runeKey('x'))
	m = next.(ScoreboardModel)
	if len(m.replays) != 0 {
		t.Errorf("replays after delete = %+v", m.replays)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(ScoreboardModel).IsGoingBack() {
		t.Error("Esc did not go back")
	}
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, 100, 30)
	if len(m.replays) != 0 {
		t.Errorf("replays = %+v, want none", m.replays)
	}
	if !strings.Contains(m.View(), "No replays recorded yet") {
		t.Error("empty view missing hint")
	}
}
