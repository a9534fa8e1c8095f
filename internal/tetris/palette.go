package tetris

import (
	"strings"

	"github.com/vovakirdan/duotris/internal/core"
)

// ColorID is the value stored in a grid cell: 0 is empty, 1..8 a settled color.
type ColorID uint8

const (
	Empty ColorID = 0 // unoccupied grid cell
	Gray  ColorID = 8 // fallback for names outside the palette
)

// palette maps identities 1..8 to display colors.
var palette = [...]core.Color{
	core.ColorCyan,
	core.ColorBlue,
	core.ColorOrange,
	core.ColorYellow,
	core.ColorGreen,
	core.ColorPurple,
	core.ColorRed,
	core.ColorGray,
}

// ColorIDOf returns the identity of a display color, or Gray when the
// color cannot be stored in the grid (white, black, default).
func ColorIDOf(c core.Color) ColorID {
	for i, p := range palette {
		if p == c {
			return ColorID(i + 1)
		}
	}
	return Gray
}

// ColorIDByName resolves a palette name, falling back to Gray.
func ColorIDByName(name string) ColorID {
	c, ok := core.ColorByName(strings.TrimSpace(name))
	if !ok {
		return Gray
	}
	return ColorIDOf(c)
}

// Valid reports whether id is a settled color (not empty).
func (id ColorID) Valid() bool {
	return id >= 1 && int(id) <= len(palette)
}

// Color returns the display color; empty cells map to core.ColorDefault.
func (id ColorID) Color() core.Color {
	if !id.Valid() {
		return core.ColorDefault
	}
	return palette[id-1]
}

// Name returns the palette name of the identity.
func (id ColorID) Name() string {
	if id == Empty {
		return "empty"
	}
	return id.Color().String()
}

// shapeColors follows shape table order.
var shapeColors = [shapeCount]core.Color{
	ShapeI: core.ColorCyan,
	ShapeJ: core.ColorBlue,
	ShapeL: core.ColorOrange,
	ShapeO: core.ColorYellow,
	ShapeS: core.ColorGreen,
	ShapeT: core.ColorPurple,
	ShapeZ: core.ColorRed,
}

// Color returns the color a freshly spawned piece of this shape carries.
func (s Shape) Color() ColorID {
	if !s.Valid() {
		return Gray
	}
	return ColorIDOf(shapeColors[s])
}
