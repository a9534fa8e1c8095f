package classic

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/duotris/internal/core"
)

// TcellTerminal implements Terminal on a full-screen tcell session.
type TcellTerminal struct {
	screen tcell.Screen
	keys   chan Key
	x, y   int
}

// NewTcellTerminal takes over the terminal. Call Close to restore it.
func NewTcellTerminal() (*TcellTerminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("classic: cannot create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("classic: cannot init screen: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	t := &TcellTerminal{
		screen: screen,
		keys:   make(chan Key, 16),
	}
	go t.pollEvents()
	return t, nil
}

// pollEvents runs until the screen is finalized.
func (t *TcellTerminal) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			k := TranslateKey(ev.Key(), ev.Rune())
			if k == KeyNone {
				continue
			}
			select {
			case t.keys <- k:
			default:
				// Keys pile up only while the loop is paused; drop extras.
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Size returns the terminal size in characters.
func (t *TcellTerminal) Size() (int, int) {
	return t.screen.Size()
}

// ReadKey implements Terminal.
func (t *TcellTerminal) ReadKey() Key {
	select {
	case k := <-t.keys:
		return k
	default:
		return KeyNone
	}
}

// SetCursor implements Terminal.
func (t *TcellTerminal) SetCursor(x, y int) {
	t.x, t.y = x, y
}

// Write implements Terminal.
func (t *TcellTerminal) Write(text string, fg, bg core.Color) {
	style := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
	for _, r := range text {
		t.screen.SetContent(t.x, t.y, r, nil, style)
		t.x++
	}
}

// Flush implements Terminal.
func (t *TcellTerminal) Flush() {
	t.screen.Show()
}

// Pause implements Terminal.
func (t *TcellTerminal) Pause(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// Close restores the terminal.
func (t *TcellTerminal) Close() {
	t.screen.Fini()
}

func tcellColor(c core.Color) tcell.Color {
	code := c.ANSI()
	if code < 0 {
		return tcell.ColorDefault
	}
	return tcell.PaletteColor(code)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
