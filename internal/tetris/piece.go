package tetris

import "github.com/vovakirdan/duotris/internal/core"

// Piece is a falling tetromino.
type Piece struct {
	Shape    Shape
	Rotation int // clockwise quarter turns, 0..3
	Pos      core.Point
	Color    ColorID
}

// NewPiece returns a piece of the given shape at its spawn anchor. Shape
// indexes outside the table wrap around onto it.
func NewPiece(s Shape) Piece {
	if !s.Valid() {
		s = Shape((int(s)%int(shapeCount) + int(shapeCount)) % int(shapeCount))
	}
	p := Piece{Shape: s, Color: s.Color()}
	p.Pos = spawnAnchor(p)
	return p
}

func spawnAnchor(p Piece) core.Point {
	w, _ := p.Shape.Size(0)
	return core.Point{X: Width/2 - w/2, Y: 0}
}

// Cells returns the grid cells the piece covers.
func (p Piece) Cells() []core.Point {
	return OccupiedCells(p.Shape, p.Rotation, p.Pos)
}

// Width returns the width of the piece's current bounding box.
func (p Piece) Width() int {
	w, _ := p.Shape.Size(p.Rotation)
	return w
}

// Bounds returns the piece's bounding box in grid coordinates.
func (p Piece) Bounds() core.Rect {
	w, h := p.Shape.Size(p.Rotation)
	return core.NewRect(p.Pos.X, p.Pos.Y, w, h)
}

func (p Piece) shifted(dx, dy int) Piece {
	p.Pos = p.Pos.Add(core.Point{X: dx, Y: dy})
	return p
}
