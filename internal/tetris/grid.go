package tetris

import "github.com/vovakirdan/duotris/internal/core"

// Playfield dimensions.
const (
	Width  = 10
	Height = 20
)

// GridView is read-only access to the settled cells.
type GridView interface {
	// At returns the identity at (x, y); Empty when out of bounds.
	At(x, y int) ColorID
	// InBounds reports whether (x, y) lies on the playfield.
	InBounds(x, y int) bool
}

// Grid holds the settled cells, row-major with row 0 at the top.
// Only locking and line clearing write to it.
type Grid [Height][Width]ColorID

var bounds = core.NewRect(0, 0, Width, Height)

// InBounds reports whether (x, y) lies on the playfield.
func (g *Grid) InBounds(x, y int) bool {
	return bounds.Contains(x, y)
}

// At returns the identity at (x, y); Empty when out of bounds.
func (g *Grid) At(x, y int) ColorID {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g[y][x]
}

func (g *Grid) write(cells []core.Point, id ColorID) {
	for _, c := range cells {
		if g.InBounds(c.X, c.Y) {
			g[c.Y][c.X] = id
		}
	}
}

func (g *Grid) rowFull(y int) bool {
	for _, v := range g[y] {
		if v == Empty {
			return false
		}
	}
	return true
}

// clearFull removes every full row, shifting the rows above down and
// inserting empty rows at the top. Returns the number of rows removed.
func (g *Grid) clearFull() int {
	dst := Height - 1
	for src := Height - 1; src >= 0; src-- {
		if g.rowFull(src) {
			continue
		}
		if dst != src {
			g[dst] = g[src]
		}
		dst--
	}
	cleared := dst + 1
	for y := 0; y <= dst; y++ {
		g[y] = [Width]ColorID{}
	}
	return cleared
}
