package tetris

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duotris/internal/core"
)

func sortedCells(cells []core.Point) []core.Point {
	out := append([]core.Point(nil), cells...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func TestOccupiedCellsCardinality(t *testing.T) {
	anchor := core.Point{X: 3, Y: 5}
	for _, s := range Shapes() {
		for rot := -4; rot <= 7; rot++ {
			cells := OccupiedCells(s, rot, anchor)
			require.Len(t, cells, 4, "shape %v rotation %d", s, rot)
			assert.Equal(t, 4, newCellSet(cells...).len(), "shape %v rotation %d has duplicate cells", s, rot)
		}
	}
}

func TestRotationPeriods(t *testing.T) {
	tests := []struct {
		shape    Shape
		distinct int
	}{
		{ShapeI, 2},
		{ShapeJ, 4},
		{ShapeL, 4},
		{ShapeO, 1},
		{ShapeS, 2},
		{ShapeT, 4},
		{ShapeZ, 2},
	}

	for _, tc := range tests {
		t.Run(tc.shape.String(), func(t *testing.T) {
			seen := map[string]bool{}
			for rot := 0; rot < 4; rot++ {
				key := ""
				for _, c := range sortedCells(OccupiedCells(tc.shape, rot, core.Point{})) {
					key += string(rune('0'+c.X)) + string(rune('0'+c.Y)) + ";"
				}
				seen[key] = true
			}
			assert.Len(t, seen, tc.distinct)
		})
	}
}

func TestRotationIsClockwise(t *testing.T) {
	// T pointing up turns to point right.
	got := sortedCells(OccupiedCells(ShapeT, 1, core.Point{}))
	want := []core.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 2}}
	assert.Equal(t, want, got)

	w, h := ShapeI.Size(1)
	assert.Equal(t, 1, w)
	assert.Equal(t, 4, h)

	// Negative rotations wrap.
	assert.Equal(t, OccupiedCells(ShapeL, 3, core.Point{}), OccupiedCells(ShapeL, -1, core.Point{}))
}

func TestSpawnAnchor(t *testing.T) {
	tests := []struct {
		shape Shape
		x     int
	}{
		{ShapeI, 3},
		{ShapeO, 4},
		{ShapeT, 4},
	}
	for _, tc := range tests {
		p := NewPiece(tc.shape)
		assert.Equal(t, core.Point{X: tc.x, Y: 0}, p.Pos, "shape %v", tc.shape)
		assert.Equal(t, tc.shape.Color(), p.Color)
	}
}

func TestNewPieceWrapsInvalidShape(t *testing.T) {
	tests := []struct {
		in, want Shape
	}{
		{Shape(9), ShapeL},
		{Shape(-1), ShapeZ},
		{shapeCount, ShapeI},
	}
	for _, tc := range tests {
		p := NewPiece(tc.in)
		assert.Equal(t, tc.want, p.Shape, "shape %d", tc.in)
		assert.Len(t, p.Cells(), 4)
		assert.True(t, p.Color.Valid())
	}

	assert.Empty(t, OccupiedCells(Shape(9), 0, core.Point{}))

	b := NewBoard(NewSequenceSource(Shape(9)))
	assert.NoError(t, b.Validate())
}

func TestPalette(t *testing.T) {
	red := ColorIDByName("rouge")
	assert.Equal(t, ColorID(7), red)
	assert.Equal(t, red, ColorIDByName("red"))
	assert.Equal(t, "red", red.Name())
	assert.Equal(t, core.ColorRed, red.Color())

	assert.Equal(t, Gray, ColorIDByName("chartreuse"))
	assert.Equal(t, Gray, ColorIDByName("white"))
	assert.False(t, Empty.Valid())
	assert.Equal(t, core.ColorDefault, Empty.Color())

	wantColors := []string{"cyan", "blue", "orange", "yellow", "green", "purple", "red"}
	for i, s := range Shapes() {
		assert.Equal(t, wantColors[i], s.Color().Name())
	}
}

func TestSequenceSource(t *testing.T) {
	src := NewSequenceSource(ShapeI, ShapeT)
	assert.Equal(t, ShapeI, src.NextShape())
	assert.Equal(t, ShapeT, src.NextShape())
	assert.Equal(t, ShapeI, src.NextShape())

	assert.Equal(t, ShapeO, NewSequenceSource().NextShape())
}

func TestRandomSourceDeterministic(t *testing.T) {
	a, b := NewRandomSource(42), NewRandomSource(42)
	for i := 0; i < 50; i++ {
		sa := a.NextShape()
		require.True(t, sa.Valid())
		require.Equal(t, sa, b.NextShape())
	}
}
