package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duotris/internal/core"
)

func newTestBoard(shapes ...Shape) *Board {
	return NewBoard(NewSequenceSource(shapes...))
}

// place puts p into slot, replacing whatever was there.
func place(b *Board, idx int, p Piece) {
	b.slots[idx] = pieceSlot{piece: p, live: true}
}

func clearSlot(b *Board, idx int) {
	b.slots[idx] = pieceSlot{}
}

func pieceAt(s Shape, rot, x, y int) Piece {
	return Piece{Shape: s, Rotation: rot, Pos: core.Point{X: x, Y: y}, Color: s.Color()}
}

// fillRow settles every cell of row y except the listed columns.
func fillRow(b *Board, y int, except ...int) {
	for x := 0; x < Width; x++ {
		b.grid[y][x] = Gray
	}
	for _, x := range except {
		b.grid[y][x] = Empty
	}
}

func mustPiece(t *testing.T, b *Board, idx int) Piece {
	t.Helper()
	p, ok := b.Piece(idx)
	require.True(t, ok, "slot %d should be live", idx)
	return p
}

func TestNewBoard(t *testing.T) {
	b := newTestBoard(ShapeT, ShapeI)

	assert.Equal(t, 1, b.ActiveCount())
	assert.Equal(t, 0, b.ActiveSlot())
	assert.Equal(t, ShapeT, mustPiece(t, b, 0).Shape)
	assert.Equal(t, ShapeI, b.Next().Shape)
	assert.Equal(t, 0, b.Score())
	assert.False(t, b.GameOver())
	assert.NoError(t, b.Validate())

	_, ok := b.Piece(1)
	assert.False(t, ok)
	_, ok = b.Piece(5)
	assert.False(t, ok)
}

func TestRotateInOpenSpace(t *testing.T) {
	b := newTestBoard(ShapeT)
	place(b, 0, pieceAt(ShapeT, 0, 4, 5))

	require.True(t, b.Rotate(0))
	p := mustPiece(t, b, 0)
	assert.Equal(t, 1, p.Rotation)
	assert.Equal(t, core.Point{X: 4, Y: 5}, p.Pos)

	for i := 0; i < 3; i++ {
		require.True(t, b.Rotate(0))
	}
	assert.Equal(t, 0, mustPiece(t, b, 0).Rotation)
}

func TestRotateFailureLeavesPieceUnchanged(t *testing.T) {
	b := newTestBoard(ShapeI)
	before := pieceAt(ShapeI, 0, 3, 19)
	place(b, 0, before)

	// Vertical I would need rows below the floor; kicks are horizontal only.
	assert.False(t, b.Rotate(0))
	assert.Equal(t, before, mustPiece(t, b, 0))
	assert.NoError(t, b.Validate())
}

func TestRotateWallKick(t *testing.T) {
	b := newTestBoard(ShapeT)
	place(b, 0, pieceAt(ShapeT, 1, 8, 5))

	require.True(t, b.Rotate(0))
	p := mustPiece(t, b, 0)
	assert.Equal(t, 2, p.Rotation)
	assert.Equal(t, 7, p.Pos.X, "kick -1 should pull the piece off the wall")
	assert.Equal(t, 5, p.Pos.Y, "kicks never move vertically")
	assert.NoError(t, b.Validate())
}

func TestRotateKickOrderPrefersLeft(t *testing.T) {
	b := newTestBoard(ShapeT)
	place(b, 0, pieceAt(ShapeT, 0, 4, 10))
	// Block the plain rotation; both -1 and +1 would fit.
	b.grid[12][4] = Gray

	require.True(t, b.Rotate(0))
	assert.Equal(t, 3, mustPiece(t, b, 0).Pos.X)
}

func TestRotateBlockedByOtherPiece(t *testing.T) {
	b := newTestBoard(ShapeI)
	before := pieceAt(ShapeI, 1, 0, 0) // vertical at column 0, rows 0..3
	place(b, 0, before)
	// The flat I would land on row 0; the second piece and settled cells
	// cover columns 1..9 there, so no kick fits.
	place(b, 1, pieceAt(ShapeI, 0, 1, 0))
	for x := 5; x < Width; x++ {
		b.grid[0][x] = Gray
	}

	assert.False(t, b.Rotate(0))
	assert.Equal(t, before, mustPiece(t, b, 0))
	assert.NoError(t, b.Validate())
}

func TestMoveSimple(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 0, 5))

	assert.False(t, b.Move(0, -1), "left wall")
	assert.True(t, b.Move(0, 1))
	assert.Equal(t, 1, mustPiece(t, b, 0).Pos.X)
	assert.False(t, b.Move(0, 2), "only single-column moves")
	assert.False(t, b.Move(1, 1), "empty slot")
}

func TestMovePushesOtherPiece(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 2, 10))
	place(b, 1, pieceAt(ShapeO, 0, 4, 10))

	require.True(t, b.Move(0, 1))
	assert.Equal(t, 3, mustPiece(t, b, 0).Pos.X)
	assert.Equal(t, 5, mustPiece(t, b, 1).Pos.X)
	assert.NoError(t, b.Validate())

	// The second piece pushes back just the same when it is the mover.
	require.True(t, b.Move(1, -1))
	assert.Equal(t, 2, mustPiece(t, b, 0).Pos.X)
	assert.Equal(t, 4, mustPiece(t, b, 1).Pos.X)
}

func TestMovePushIntoWallFails(t *testing.T) {
	b := newTestBoard(ShapeO)
	mover := pieceAt(ShapeO, 0, 6, 10)
	pushed := pieceAt(ShapeO, 0, 8, 10)
	place(b, 0, mover)
	place(b, 1, pushed)

	assert.False(t, b.Move(0, 1))
	assert.Equal(t, mover, mustPiece(t, b, 0))
	assert.Equal(t, pushed, mustPiece(t, b, 1))
}

func TestMovePushRevertedWhenMoverBlocked(t *testing.T) {
	b := newTestBoard(ShapeO)
	mover := pieceAt(ShapeO, 0, 2, 10)
	other := pieceAt(ShapeI, 0, 4, 10)
	place(b, 0, mover)
	place(b, 1, other)
	// The pushed I has room, but the mover's new cell (4,11) is settled.
	b.grid[11][4] = Gray

	assert.False(t, b.Move(0, 1))
	assert.Equal(t, mover, mustPiece(t, b, 0))
	assert.Equal(t, other, mustPiece(t, b, 1), "push must be undone")
	assert.NoError(t, b.Validate())
}

func TestSoftDropAndLock(t *testing.T) {
	b := newTestBoard(ShapeO, ShapeT, ShapeI)
	place(b, 0, pieceAt(ShapeO, 0, 0, 17))

	require.True(t, b.SoftDrop(0))
	assert.Equal(t, 18, mustPiece(t, b, 0).Pos.Y)

	assert.False(t, b.SoftDrop(0), "floor reached")
	for _, c := range []core.Point{{X: 0, Y: 18}, {X: 1, Y: 18}, {X: 0, Y: 19}, {X: 1, Y: 19}} {
		assert.Equal(t, ShapeO.Color(), b.Grid().At(c.X, c.Y))
	}

	// The preview (T) was promoted and a new preview drawn.
	assert.Equal(t, 1, b.ActiveCount())
	assert.Equal(t, ShapeT, mustPiece(t, b, 0).Shape)
	assert.Equal(t, ShapeI, b.Next().Shape)
	assert.Equal(t, 1, b.Stats().Locks)
	assert.Equal(t, 0, b.Score())
	assert.NoError(t, b.Validate())
}

func TestSoftDropOntoOtherPieceLocks(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 4, 10))
	place(b, 1, pieceAt(ShapeO, 0, 4, 12))

	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, 1, b.ActiveCount(), "no spawn while a piece is still falling")
	assert.Equal(t, 1, b.ActiveSlot(), "the survivor becomes active")
	assert.Equal(t, ShapeO.Color(), b.Grid().At(4, 11))
	assert.NoError(t, b.Validate())

	_, ok := b.Piece(0)
	assert.False(t, ok)
	assert.False(t, b.SoftDrop(0), "empty slot is a no-op")
}

func TestHardDrop(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 4, 0))

	assert.Equal(t, 18, b.HardDrop(0))
	assert.Equal(t, ShapeO.Color(), b.Grid().At(4, 19))
	assert.Equal(t, 1, b.Stats().Locks)
}

func TestClearLines(t *testing.T) {
	b := newTestBoard(ShapeO)
	fillRow(b, 17)
	b.grid[18][3] = ColorIDByName("green")
	fillRow(b, 19)

	assert.Equal(t, 2, b.ClearLines())
	assert.Equal(t, ColorIDByName("green"), b.Grid().At(3, 19), "surviving row moves down")
	for y := 0; y < Height-1; y++ {
		for x := 0; x < Width; x++ {
			assert.Equal(t, Empty, b.Grid().At(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, 0, b.ClearLines())
}

func TestClearLinesPreservesOrder(t *testing.T) {
	b := newTestBoard(ShapeO)
	b.grid[15][0] = 1
	fillRow(b, 16)
	b.grid[17][0] = 2
	fillRow(b, 18)
	b.grid[19][0] = 3

	assert.Equal(t, 2, b.ClearLines())
	assert.Equal(t, ColorID(1), b.Grid().At(0, 17))
	assert.Equal(t, ColorID(2), b.Grid().At(0, 18))
	assert.Equal(t, ColorID(3), b.Grid().At(0, 19))
	assert.Equal(t, Empty, b.Grid().At(0, 16))
}

func TestLockScoring(t *testing.T) {
	tests := []struct {
		rows  int
		score int
	}{
		{0, 0},
		{1, 40},
		{2, 200},
		{3, 300},
		{4, 1200},
	}

	for _, tc := range tests {
		b := newTestBoard(ShapeO)
		// A vertical I fills column 0 of the bottom four rows.
		for y := Height - 4; y < Height; y++ {
			if Height-1-y < tc.rows {
				fillRow(b, y, 0)
			}
		}
		place(b, 0, pieceAt(ShapeI, 1, 0, Height-4))

		assert.False(t, b.SoftDrop(0))
		assert.Equal(t, tc.score, b.Score(), "%d rows", tc.rows)
		assert.Equal(t, tc.rows, b.Stats().Lines)
	}
}

func TestLockTwoLinesSpawnsTwoPieces(t *testing.T) {
	b := newTestBoard(ShapeO)
	fillRow(b, 18, 0, 1)
	fillRow(b, 19, 0, 1)
	place(b, 0, pieceAt(ShapeO, 0, 0, 18))

	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, 200, b.Score())
	assert.Equal(t, 2, b.ActiveCount())
	assert.Equal(t, 0, b.ActiveSlot())
	assert.Equal(t, 1, b.Stats().DualSpawns)
	assert.NoError(t, b.Validate())
}

func TestDualSpawnAllShapePairs(t *testing.T) {
	for _, first := range Shapes() {
		for _, second := range Shapes() {
			b := newTestBoard(second)
			b.next = NewPiece(first)
			fillRow(b, 18, 0, 1)
			fillRow(b, 19, 0, 1)
			place(b, 0, pieceAt(ShapeO, 0, 0, 18))

			require.False(t, b.SoftDrop(0))
			require.Equal(t, 2, b.ActiveCount(), "%v+%v", first, second)
			require.NoError(t, b.Validate(), "%v+%v", first, second)

			p0, p1 := mustPiece(t, b, 0), mustPiece(t, b, 1)
			assert.Equal(t, first, p0.Shape)
			assert.Equal(t, second, p1.Shape)
			assert.Greater(t, p1.Pos.X, p0.Pos.X, "second piece enters to the right")
			assert.False(t, b.GameOver())
		}
	}
}

func TestSwapActive(t *testing.T) {
	b := newTestBoard(ShapeO)
	assert.False(t, b.SwapActive(), "single piece")

	place(b, 1, pieceAt(ShapeO, 0, 0, 10))
	require.True(t, b.SwapActive())
	assert.Equal(t, 1, b.ActiveSlot())
	require.True(t, b.SwapActive())
	assert.Equal(t, 0, b.ActiveSlot())
}

func TestGravityOrderSkipsSecondAfterLock(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 0, 18))
	place(b, 1, pieceAt(ShapeO, 0, 6, 3))

	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, 1, b.ActiveCount())
	assert.Equal(t, 3, mustPiece(t, b, 1).Pos.Y)
	assert.Equal(t, 1, b.ActiveSlot())

	// Once the survivor locks the board spawns into slot 0 again.
	b.HardDrop(1)
	assert.Equal(t, 1, b.ActiveCount())
	assert.Equal(t, 0, b.ActiveSlot())
	assert.NoError(t, b.Validate())
}

func TestLineClearResettlesSurvivor(t *testing.T) {
	b := newTestBoard(ShapeO)
	b.grid[13][0] = Gray // overhang above the falling survivor
	place(b, 1, pieceAt(ShapeO, 0, 0, 14))
	fillRow(b, 18, 8, 9)
	fillRow(b, 19, 8, 9)
	place(b, 0, pieceAt(ShapeO, 0, 8, 18))

	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, 200, b.Score())
	assert.Equal(t, Gray, b.Grid().At(0, 15), "overhang fell two rows")
	assert.Equal(t, 16, mustPiece(t, b, 1).Pos.Y, "survivor follows the rows that fell")
	assert.Equal(t, 1, b.ActiveCount())
	assert.NoError(t, b.Validate())
}

func TestLineClearLiftsSurvivorWhenRowsBelowStay(t *testing.T) {
	b := newTestBoard(ShapeO)
	// Rows 16 and 19 clear around the survivor, so the cell above row 16
	// falls two rows into it while the rows beside it fall only one.
	fillRow(b, 16, 9)
	fillRow(b, 19, 9)
	b.grid[15][0] = Gray
	place(b, 1, pieceAt(ShapeO, 0, 0, 17))
	place(b, 0, pieceAt(ShapeI, 1, 9, 16))

	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, 200, b.Score())
	assert.Equal(t, 2, b.Stats().Lines)
	assert.Equal(t, Gray, b.Grid().At(0, 17))
	assert.Equal(t, 15, mustPiece(t, b, 1).Pos.Y, "survivor moves up to the first free rows")
	assert.Equal(t, 1, b.ActiveCount())
	assert.Zero(t, b.Stats().DualSpawns)
	assert.False(t, b.GameOver())
	assert.NoError(t, b.Validate())
}

func TestResettleWithoutRoomEndsGame(t *testing.T) {
	b := newTestBoard(ShapeO)
	clearSlot(b, 0)
	place(b, 1, pieceAt(ShapeO, 0, 0, 10))
	b.active = 1
	for y := 0; y < Height; y++ {
		b.grid[y][0] = Gray
	}

	b.resettle(1, 1)

	require.True(t, b.GameOver())
	assert.Equal(t, 10, mustPiece(t, b, 1).Pos.Y)
	assert.False(t, b.Move(1, 1))
	assert.NoError(t, b.Validate())
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 200, Points(2))
	assert.Equal(t, 1200, Points(MaxClear))
	assert.Zero(t, Points(-1))
	assert.Zero(t, Points(MaxClear+1))
}

func TestStackingOPiecesEndsGame(t *testing.T) {
	b := newTestBoard(ShapeO)

	for i := 0; i < 100 && !b.GameOver(); i++ {
		require.NoError(t, b.Validate())
		b.HardDrop(b.ActiveSlot())
	}

	require.True(t, b.GameOver())
	assert.Equal(t, 10, b.Stats().Locks)
	assert.Equal(t, 0, b.Score())
	assert.Equal(t, ShapeO.Color(), b.Grid().At(4, 0))

	// Terminal: nothing moves any more.
	grid := b.grid
	assert.False(t, b.Move(0, 1))
	assert.False(t, b.Rotate(0))
	assert.False(t, b.SoftDrop(0))
	assert.Equal(t, grid, b.grid)
	assert.NoError(t, b.Validate())
}

func TestValidateDetectsViolations(t *testing.T) {
	b := newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 4, 4))
	place(b, 1, pieceAt(ShapeO, 0, 5, 5))
	assert.ErrorIs(t, b.Validate(), ErrCellConflict)

	b = newTestBoard(ShapeO)
	place(b, 0, pieceAt(ShapeO, 0, 9, 4))
	assert.ErrorIs(t, b.Validate(), ErrOutOfBounds)

	b = newTestBoard(ShapeO)
	b.grid[19][0] = 42
	assert.ErrorIs(t, b.Validate(), ErrBadColor)

	b = newTestBoard(ShapeO)
	b.grid[0][4] = Gray
	assert.ErrorIs(t, b.Validate(), ErrCellConflict)

	b = newTestBoard(ShapeO)
	clearSlot(b, 0)
	place(b, 1, pieceAt(ShapeO, 0, 0, 0))
	assert.ErrorIs(t, b.Validate(), ErrActiveSlot)
}

func TestLockedColorRoundTripsThroughPalette(t *testing.T) {
	b := newTestBoard(ShapeO)
	p := pieceAt(ShapeO, 0, 2, 18)
	p.Color = ColorIDByName("rouge")
	place(b, 0, p)

	b.SoftDrop(0)
	id := b.Grid().At(2, 19)
	assert.Equal(t, ColorIDByName("rouge"), id)
	assert.Equal(t, "red", id.Name())
}
