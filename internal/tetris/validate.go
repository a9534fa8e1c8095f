package tetris

import (
	"errors"
	"fmt"
)

// Invariant violations reported by Validate.
var (
	ErrOutOfBounds  = errors.New("tetris: piece cell out of bounds")
	ErrCellConflict = errors.New("tetris: cell occupied twice")
	ErrBadColor     = errors.New("tetris: invalid color identity")
	ErrActiveSlot   = errors.New("tetris: active slot is empty")
)

// Validate checks the board invariants: settled cells carry palette
// identities, live pieces stay on the playfield, and no cell is covered by
// two things at once. A finished board only has its grid checked, since
// the spawn that ended it may overlap.
func (b *Board) Validate() error {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if id := b.grid[y][x]; id != Empty && !id.Valid() {
				return fmt.Errorf("cell (%d,%d) holds %d: %w", x, y, id, ErrBadColor)
			}
		}
	}

	if b.gameOver {
		return nil
	}

	seen := newCellSet()
	for i, s := range b.slots {
		if !s.live {
			continue
		}
		if !s.piece.Color.Valid() {
			return fmt.Errorf("slot %d color %d: %w", i, s.piece.Color, ErrBadColor)
		}
		for _, c := range s.piece.Cells() {
			if !b.grid.InBounds(c.X, c.Y) {
				return fmt.Errorf("slot %d at (%d,%d): %w", i, c.X, c.Y, ErrOutOfBounds)
			}
			if b.grid.At(c.X, c.Y) != Empty {
				return fmt.Errorf("slot %d on settled (%d,%d): %w", i, c.X, c.Y, ErrCellConflict)
			}
			if !seen.add(c) {
				return fmt.Errorf("slot %d on other piece (%d,%d): %w", i, c.X, c.Y, ErrCellConflict)
			}
		}
	}

	if b.ActiveCount() > 0 && !b.slots[b.active].live {
		return fmt.Errorf("slot %d: %w", b.active, ErrActiveSlot)
	}
	return nil
}
