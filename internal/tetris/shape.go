// Package tetris implements the board simulation: piece geometry, collision
// queries, rotation with horizontal kicks, pushing between the two live
// pieces, gravity, locking and line clears. It performs no I/O.
package tetris

import "github.com/vovakirdan/duotris/internal/core"

// Shape indexes one of the seven tetrominoes.
type Shape int

const (
	ShapeI Shape = iota
	ShapeJ
	ShapeL
	ShapeO
	ShapeS
	ShapeT
	ShapeZ
	shapeCount
)

// matrices holds the spawn orientation of every shape, row-major.
var matrices = [shapeCount][][]bool{
	ShapeI: {{true, true, true, true}},
	ShapeJ: {{true, false, false}, {true, true, true}},
	ShapeL: {{false, false, true}, {true, true, true}},
	ShapeO: {{true, true}, {true, true}},
	ShapeS: {{false, true, true}, {true, true, false}},
	ShapeT: {{false, true, false}, {true, true, true}},
	ShapeZ: {{true, true, false}, {false, true, true}},
}

var shapeNames = [shapeCount]string{"I", "J", "L", "O", "S", "T", "Z"}

// orientation is a shape matrix after some number of clockwise turns.
type orientation struct {
	w, h  int
	cells []core.Point
}

var orientations [shapeCount][4]orientation

func init() {
	for s := range matrices {
		m := matrices[s]
		for r := 0; r < 4; r++ {
			orientations[s][r] = toOrientation(m)
			m = rotateCW(m)
		}
	}
}

// rotateCW turns a matrix a quarter turn clockwise.
func rotateCW(m [][]bool) [][]bool {
	h, w := len(m), len(m[0])
	out := make([][]bool, w)
	for i := range out {
		out[i] = make([]bool, h)
		for j := range out[i] {
			out[i][j] = m[h-1-j][i]
		}
	}
	return out
}

func toOrientation(m [][]bool) orientation {
	o := orientation{w: len(m[0]), h: len(m)}
	for y, row := range m {
		for x, set := range row {
			if set {
				o.cells = append(o.cells, core.Point{X: x, Y: y})
			}
		}
	}
	return o
}

// Shapes returns all shapes in table order.
func Shapes() []Shape {
	out := make([]Shape, shapeCount)
	for i := range out {
		out[i] = Shape(i)
	}
	return out
}

// Valid reports whether s names a real shape.
func (s Shape) Valid() bool {
	return s >= 0 && s < shapeCount
}

func (s Shape) String() string {
	if !s.Valid() {
		return "?"
	}
	return shapeNames[s]
}

func normRotation(r int) int {
	return ((r % 4) + 4) % 4
}

// orient returns the empty orientation for an invalid shape.
func (s Shape) orient(rotation int) orientation {
	if !s.Valid() {
		return orientation{}
	}
	return orientations[s][normRotation(rotation)]
}

// Size returns the bounding box of the shape in the given rotation.
func (s Shape) Size(rotation int) (w, h int) {
	o := s.orient(rotation)
	return o.w, o.h
}

// OccupiedCells returns the grid cells covered by shape after rotation
// clockwise quarter turns, offset by anchor (the top-left of its box).
func OccupiedCells(s Shape, rotation int, anchor core.Point) []core.Point {
	o := s.orient(rotation)
	out := make([]core.Point, len(o.cells))
	for i, c := range o.cells {
		out[i] = c.Add(anchor)
	}
	return out
}
