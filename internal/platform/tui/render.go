package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/duotris/internal/core"
)

// colorCount covers every named palette entry.
const colorCount = int(core.ColorBlack) + 1

// cellStyles holds one lipgloss style per (fg, bg) pair. Built once so
// concurrent SSH sessions can share it read-only.
var cellStyles = buildCellStyles()

func buildCellStyles() [colorCount][colorCount]lipgloss.Style {
	var styles [colorCount][colorCount]lipgloss.Style
	for fg := range colorCount {
		for bg := range colorCount {
			style := lipgloss.NewStyle()
			if code := core.Color(fg).ANSI(); code >= 0 {
				style = style.Foreground(lipgloss.Color(strconv.Itoa(code)))
			}
			if code := core.Color(bg).ANSI(); code >= 0 {
				style = style.Background(lipgloss.Color(strconv.Itoa(code)))
			}
			styles[fg][bg] = style
		}
	}
	return styles
}

func styleFor(fg, bg core.Color) lipgloss.Style {
	if int(fg) >= colorCount {
		fg = core.ColorDefault
	}
	if int(bg) >= colorCount {
		bg = core.ColorDefault
	}
	return cellStyles[fg][bg]
}

// colorRun is a stretch of one row sharing the same colors.
type colorRun struct {
	fg, bg core.Color
	text   string
}

// rowRuns groups the cells of row y by color.
func rowRuns(s *core.Screen, y int) []colorRun {
	var runs []colorRun
	x := 0
	for x < s.Width() {
		start := s.GetCell(x, y)
		var run strings.Builder
		for x < s.Width() {
			cell := s.GetCell(x, y)
			if cell.FG != start.FG || cell.BG != start.BG {
				break
			}
			run.WriteRune(cell.Rune)
			x++
		}
		runs = append(runs, colorRun{fg: start.FG, bg: start.BG, text: run.String()})
	}
	return runs
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, run := range rowRuns(s, y) {
			if run.fg == core.ColorDefault && run.bg == core.ColorDefault {
				sb.WriteString(run.text)
				continue
			}
			sb.WriteString(styleFor(run.fg, run.bg).Render(run.text))
		}
	}
	return sb.String()
}
