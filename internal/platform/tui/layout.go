package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/duotris/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			MarginBottom(1)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	codeStyle   = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// panel is a titled block of lines with a key hint below, centered in a
// width x height area. Zero sizes skip the centering.
type panel struct {
	title string
	lines []string
	hint  string
}

func (p panel) render(width, height int) string {
	parts := []string{titleStyle.Render(p.title)}
	parts = append(parts, p.lines...)
	if p.hint != "" {
		parts = append(parts, hintStyle.Render(p.hint))
	}
	block := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if width <= 0 || height <= 0 {
		return block
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

// choice renders one selectable row, highlighted under the cursor.
func choice(text string, selected bool) string {
	if selected {
		return cursorStyle.Render(" " + text + " ")
	}
	return " " + text + " "
}

// statusLine fills the last screen row with text.
func statusLine(s *core.Screen, text string, fg, bg core.Color) {
	y := s.Height() - 1
	if pad := s.Width() - len(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	s.DrawTextColored(0, y, text, fg, bg)
}
