// Package classic runs a game with a bare blocking loop: poll one key,
// step, redraw, sleep. Drawing and input go through
// the small Terminal interface; NewTcellTerminal provides a real one.
package classic

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/duotris/internal/core"
)

// Key is a decoded key press.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyDown
	KeyUp
	KeySpace
	KeyHardDrop
	KeyPause
	KeyQuit
)

// Terminal is the display and input boundary the loop drives.
type Terminal interface {
	// ReadKey returns the next pending key, or KeyNone without blocking.
	ReadKey() Key
	// SetCursor moves the write position.
	SetCursor(x, y int)
	// Write draws text at the cursor and advances it.
	Write(text string, fg, bg core.Color)
	// Flush makes everything written since the last Flush visible.
	Flush()
	// Pause sleeps for d or until ctx is done.
	Pause(ctx context.Context, d time.Duration) error
}

// TranslateKey maps a tcell key event to a Key.
func TranslateKey(k tcell.Key, r rune) Key {
	switch k {
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyEnter:
		return KeyHardDrop
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyQuit
	case tcell.KeyRune:
		switch r {
		case ' ':
			return KeySpace
		case 'a', 'A', 'h':
			return KeyLeft
		case 'd', 'D', 'l':
			return KeyRight
		case 's', 'S', 'j':
			return KeyDown
		case 'w', 'W', 'k':
			return KeyUp
		case 'x', 'X':
			return KeyHardDrop
		case 'p', 'P':
			return KeyPause
		case 'q', 'Q':
			return KeyQuit
		}
	}
	return KeyNone
}

// Action converts a key to the game action it triggers.
func (k Key) Action() core.Action {
	switch k {
	case KeyLeft:
		return core.ActionLeft
	case KeyRight:
		return core.ActionRight
	case KeyDown:
		return core.ActionDown
	case KeyUp:
		return core.ActionRotate
	case KeySpace:
		return core.ActionSwap
	case KeyHardDrop:
		return core.ActionHardDrop
	case KeyPause:
		return core.ActionPause
	case KeyQuit:
		return core.ActionQuit
	default:
		return core.ActionNone
	}
}
