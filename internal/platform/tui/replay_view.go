package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/replay"
)

// fastForward is how many frames a tick feeds in fast mode.
const fastForward = 4

// ReplayModel plays a stored round back at the recorded tick rate.
type ReplayModel struct {
	player   *replay.Player
	screen   *core.Screen
	tickRate int
	loop     uint64
	paused   bool
	fast     bool
	quitting bool
	back     bool
}

// NewReplayModel prepares playback of r.
func NewReplayModel(r replay.Replay, cfg core.RuntimeConfig) (ReplayModel, error) {
	p, err := replay.NewPlayer(r)
	if err != nil {
		return ReplayModel{}, err
	}

	tickRate := r.Config.Timing.TickRate
	if tickRate < 1 {
		tickRate = cfg.TickRate
	}
	return ReplayModel{
		player:   p,
		screen:   core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		tickRate: tickRate,
		loop:     nextLoop(),
	}, nil
}

// Init starts the playback clock.
func (m ReplayModel) Init() tea.Cmd {
	return tickCmd(m.loop, m.tickRate)
}

// Update handles messages.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "b", "esc":
			m.back = true
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "f":
			m.fast = !m.fast
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		if !m.paused {
			steps := 1
			if m.fast {
				steps = fastForward
			}
			for range steps {
				if _, ok := m.player.Step(); !ok {
					break
				}
			}
		}
		return m, tickCmd(m.loop, m.tickRate)
	}
	return m, nil
}

// View renders the replayed game with a status line on the last row.
func (m ReplayModel) View() string {
	if m.quitting || m.back {
		return ""
	}

	m.player.Game().Render(m.screen)
	statusLine(m.screen, m.status(), core.ColorGray, core.ColorDefault)
	return RenderScreen(m.screen)
}

func (m ReplayModel) status() string {
	done, total := m.player.Progress()
	state := "playing"
	switch {
	case m.player.Done():
		state = "finished"
	case m.paused:
		state = "paused"
	case m.fast:
		state = "fast"
	}

	id := m.player.Replay().ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf(" replay %s  %d/%d  %s  |  P pause  F fast  Esc back  Q quit", id, done, total, state)
}

// WantsBack reports whether the viewer was left with Esc.
func (m ReplayModel) WantsBack() bool {
	return m.back
}

// RunReplay plays r in the terminal. It reports whether the viewer asked
// to go back rather than quit.
func RunReplay(r replay.Replay, cfg core.RuntimeConfig) (bool, error) {
	model, err := NewReplayModel(r, cfg)
	if err != nil {
		return false, err
	}

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ReplayModel)
	return ok && m.WantsBack(), nil
}
