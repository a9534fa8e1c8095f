package tetris

import "github.com/vovakirdan/duotris/internal/core"

// MaxActive is the number of pieces that can fall at once.
const MaxActive = 2

// MaxClear is the most rows a single lock can clear.
const MaxClear = 4

// scoreTable is the score awarded per lock, indexed by rows cleared.
var scoreTable = [MaxClear + 1]int{0, 40, 200, 300, 1200}

// Points returns the score for clearing lines rows with one lock, or 0
// outside 0..MaxClear.
func Points(lines int) int {
	if lines < 0 || lines > MaxClear {
		return 0
	}
	return scoreTable[lines]
}

// DualSpawnLines is the number of rows one lock must clear for two
// pieces to enter together.
const DualSpawnLines = 2

// kicks are the horizontal offsets tried, in order, when a rotation collides.
var kicks = [...]int{-1, +1, -2, +2}

// Stats counts board events since creation.
type Stats struct {
	Locks      int
	Lines      int
	DualSpawns int
}

type pieceSlot struct {
	piece Piece
	live  bool
}

// Board owns the grid, the live pieces and the preview piece.
// Slots keep their index for the whole life of a piece.
type Board struct {
	grid     Grid
	slots    [MaxActive]pieceSlot
	active   int
	next     Piece
	score    int
	gameOver bool
	stats    Stats
	source   ShapeSource
}

// NewBoard creates an empty board with one falling piece and a preview.
func NewBoard(src ShapeSource) *Board {
	b := &Board{source: src}
	b.slots[0] = pieceSlot{piece: b.newPiece(), live: true}
	b.next = b.newPiece()
	return b
}

func (b *Board) newPiece() Piece {
	return NewPiece(b.source.NextShape())
}

// Grid exposes the settled cells read-only.
func (b *Board) Grid() GridView {
	return &b.grid
}

// Piece returns the piece in a slot.
func (b *Board) Piece(slot int) (Piece, bool) {
	if slot < 0 || slot >= MaxActive || !b.slots[slot].live {
		return Piece{}, false
	}
	return b.slots[slot].piece, true
}

// ActiveCount returns the number of live pieces (0..2).
func (b *Board) ActiveCount() int {
	n := 0
	for _, s := range b.slots {
		if s.live {
			n++
		}
	}
	return n
}

// ActiveSlot returns the slot the solo player currently controls.
func (b *Board) ActiveSlot() int {
	return b.active
}

// SwapActive hands control to the other piece when both are live.
func (b *Board) SwapActive() bool {
	if b.gameOver || b.ActiveCount() < MaxActive {
		return false
	}
	b.active = otherSlot(b.active)
	return true
}

// Next returns the preview piece.
func (b *Board) Next() Piece {
	return b.next
}

// Score returns the accumulated score.
func (b *Board) Score() int {
	return b.score
}

// GameOver reports whether a spawned piece collided. The flag is terminal.
func (b *Board) GameOver() bool {
	return b.gameOver
}

// Stats returns event counters.
func (b *Board) Stats() Stats {
	return b.stats
}

func otherSlot(slot int) int {
	return 1 - slot
}

// live returns a pointer to the piece in slot, or nil.
func (b *Board) live(slot int) *Piece {
	if slot < 0 || slot >= MaxActive || !b.slots[slot].live {
		return nil
	}
	return &b.slots[slot].piece
}

// OverlapsBoundsOrSettled reports whether any cell leaves the playfield
// or covers a settled cell.
func (b *Board) OverlapsBoundsOrSettled(cells []core.Point) bool {
	for _, c := range cells {
		if !b.grid.InBounds(c.X, c.Y) || b.grid.At(c.X, c.Y) != Empty {
			return true
		}
	}
	return false
}

// OverlapsOtherPiece reports whether cells cover the live piece in the
// slot other than the given one.
func (b *Board) OverlapsOtherPiece(slot int, cells []core.Point) bool {
	o := b.live(otherSlot(slot))
	if o == nil || b.live(slot) == nil {
		return false
	}
	return newCellSet(o.Cells()...).intersects(cells)
}

func (b *Board) fits(slot int, cells []core.Point) bool {
	return !b.OverlapsBoundsOrSettled(cells) && !b.OverlapsOtherPiece(slot, cells)
}

// Rotate turns the piece in slot a quarter turn clockwise, trying the
// horizontal kicks when the plain rotation collides. On failure the piece
// is left exactly as it was.
func (b *Board) Rotate(slot int) bool {
	p := b.live(slot)
	if p == nil || b.gameOver {
		return false
	}

	prev := *p
	cand := prev
	cand.Rotation = normRotation(prev.Rotation + 1)
	if b.fits(slot, cand.Cells()) {
		*p = cand
		return true
	}
	for _, dx := range kicks {
		kicked := cand.shifted(dx, 0)
		if b.fits(slot, kicked.Cells()) {
			*p = kicked
			return true
		}
	}
	return false
}

// Move shifts the piece in slot one column left (dx = -1) or right (+1).
// A move into the other live piece pushes it along when it has room.
// Either both pieces end up moved and valid, or nothing changes.
func (b *Board) Move(slot, dx int) bool {
	p := b.live(slot)
	if p == nil || b.gameOver || (dx != -1 && dx != 1) {
		return false
	}

	cand := p.shifted(dx, 0)

	o := b.live(otherSlot(slot))
	var oPrev Piece
	pushed := false
	if o != nil && newCellSet(o.Cells()...).intersects(cand.Cells()) {
		moved := o.shifted(dx, 0)
		if b.OverlapsBoundsOrSettled(moved.Cells()) {
			return false
		}
		oPrev = *o
		*o = moved
		pushed = true
	}

	if b.OverlapsBoundsOrSettled(cand.Cells()) {
		if pushed {
			*o = oPrev
		}
		return false
	}
	*p = cand
	return true
}

// SoftDrop moves the piece in slot down one row. When it cannot, the piece
// locks in place and SoftDrop returns false.
func (b *Board) SoftDrop(slot int) bool {
	p := b.live(slot)
	if p == nil || b.gameOver {
		return false
	}

	cand := p.shifted(0, 1)
	if !b.fits(slot, cand.Cells()) {
		b.lock(slot)
		return false
	}
	*p = cand
	return true
}

// HardDrop soft-drops the piece in slot until it locks and returns the
// number of rows it fell.
func (b *Board) HardDrop(slot int) int {
	rows := 0
	for b.SoftDrop(slot) {
		rows++
	}
	return rows
}

// ClearLines removes every full row and returns how many were removed.
func (b *Board) ClearLines() int {
	return b.grid.clearFull()
}

func (b *Board) lock(slot int) {
	p := b.slots[slot].piece
	b.grid.write(p.Cells(), p.Color)
	b.slots[slot] = pieceSlot{}

	other := otherSlot(slot)
	if b.slots[other].live {
		b.active = other
	}

	lines := b.ClearLines()
	b.score += Points(lines)
	b.stats.Locks++
	b.stats.Lines += lines

	if b.slots[other].live && lines > 0 {
		b.resettle(other, lines)
	}
	if b.ActiveCount() == 0 {
		b.spawn(lines >= DualSpawnLines)
	}
}

// resettle repairs a live piece that a line clear shifted settled cells
// into. It first follows the rows that fell, then moves upward. With no
// room left the game ends.
func (b *Board) resettle(slot, lines int) {
	p := b.live(slot)
	if !b.OverlapsBoundsOrSettled(p.Cells()) {
		return
	}
	if down := p.shifted(0, lines); !b.OverlapsBoundsOrSettled(down.Cells()) {
		*p = down
		return
	}
	for dy := -1; p.Pos.Y+dy >= 0; dy-- {
		if up := p.shifted(0, dy); !b.OverlapsBoundsOrSettled(up.Cells()) {
			*p = up
			return
		}
	}
	b.gameOver = true
}

// spawn promotes the preview piece into slot 0. With dual set a fresh
// piece also enters toward the right edge in slot 1, and the promoted
// piece moves left if their boxes would touch.
func (b *Board) spawn(dual bool) {
	first := b.next
	first.Pos = spawnAnchor(first)
	b.slots[0] = pieceSlot{piece: first, live: true}
	b.active = 0

	if dual {
		second := b.newPiece()
		second.Pos.X = core.Min(Width-second.Width(), Width/2+Width/3)
		if first.Bounds().Intersects(second.Bounds()) {
			first.Pos.X = second.Pos.X - first.Width()
			b.slots[0].piece = first
		}
		b.slots[1] = pieceSlot{piece: second, live: true}
		b.stats.DualSpawns++
	}
	b.next = b.newPiece()

	for _, s := range b.slots {
		if s.live && b.OverlapsBoundsOrSettled(s.piece.Cells()) {
			b.gameOver = true
		}
	}
}
