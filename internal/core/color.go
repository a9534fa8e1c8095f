package core

import "strings"

// Color identifies a named palette color for a screen cell.
// The platform maps each value to a backend color (ANSI code, tcell palette).
type Color uint8

// Named palette. ColorDefault leaves the terminal color untouched.
const (
	ColorDefault Color = iota
	ColorCyan
	ColorBlue
	ColorOrange
	ColorYellow
	ColorGreen
	ColorPurple
	ColorRed
	ColorGray
	ColorWhite
	ColorBlack
)

var colorNames = [...]string{
	ColorDefault: "default",
	ColorCyan:    "cyan",
	ColorBlue:    "blue",
	ColorOrange:  "orange",
	ColorYellow:  "yellow",
	ColorGreen:   "green",
	ColorPurple:  "purple",
	ColorRed:     "red",
	ColorGray:    "gray",
	ColorWhite:   "white",
	ColorBlack:   "black",
}

// Aliases accepted by ColorByName besides the canonical names.
var colorAliases = map[string]Color{
	"grey":    ColorGray,
	"magenta": ColorPurple,
	"bleu":    ColorBlue,
	"jaune":   ColorYellow,
	"vert":    ColorGreen,
	"violet":  ColorPurple,
	"rouge":   ColorRed,
	"gris":    ColorGray,
	"blanc":   ColorWhite,
	"noir":    ColorBlack,
}

// String returns the canonical palette name.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "unknown"
}

// ColorByName resolves a palette name (case-insensitive).
// The second result is false when the name is not part of the palette.
func ColorByName(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	if c, ok := colorAliases[name]; ok {
		return c, true
	}
	return ColorDefault, false
}

// 256-color terminal indexes.
var ansiCodes = [...]int{
	ColorDefault: -1,
	ColorCyan:    51,
	ColorBlue:    21,
	ColorOrange:  208,
	ColorYellow:  226,
	ColorGreen:   46,
	ColorPurple:  129,
	ColorRed:     196,
	ColorGray:    244,
	ColorWhite:   231,
	ColorBlack:   16,
}

// ANSI returns the xterm 256-color index, or -1 for ColorDefault and
// unknown values.
func (c Color) ANSI() int {
	if int(c) < len(ansiCodes) {
		return ansiCodes[c]
	}
	return -1
}
