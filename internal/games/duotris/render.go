package duotris

import (
	"fmt"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/tetris"
)

// Layout of the playfield and side panel, in screen characters.
const (
	cellW      = 2 // characters per grid cell
	wellW      = tetris.Width*cellW + 2
	wellH      = tetris.Height + 2
	panelGap   = 2
	panelW     = 22
	totalW     = wellW + panelGap + panelW
	totalH     = wellH
	previewBox = 4
)

// MinScreenSize is the smallest screen the game can be drawn on.
func MinScreenSize() (w, h int) {
	return totalW, totalH
}

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	RenderSnapshot(dst, g.Snapshot())
}

// RenderSnapshot draws a snapshot. Clients of online matches call it with
// snapshots received from the match loop.
func RenderSnapshot(dst *core.Screen, s Snapshot) {
	dst.Clear()

	if dst.Width() < totalW || dst.Height() < totalH {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small")
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Need %dx%d", totalW, totalH))
		return
	}

	ox := (dst.Width() - totalW) / 2
	oy := (dst.Height() - totalH) / 2

	dst.DrawBox(core.NewRect(ox, oy, wellW, wellH))
	renderGrid(dst, ox+1, oy+1, s)
	renderPieces(dst, ox+1, oy+1, s)
	renderPanel(dst, ox+wellW+panelGap, oy, s)

	switch {
	case s.GameOver:
		renderOverlay(dst, ox, oy, "GAME OVER", fmt.Sprintf("Score: %d", s.Score), "R restart  Q quit")
	case s.Paused:
		renderOverlay(dst, ox, oy, "PAUSED", "", "P to continue")
	}
}

// drawCell paints one grid cell (two characters) at grid coordinates.
func drawCell(dst *core.Screen, ox, oy, x, y int, id tetris.ColorID, glyph string) {
	runes := []rune(glyph)
	for i := 0; i < cellW; i++ {
		dst.SetCell(ox+x*cellW+i, oy+y, core.Cell{
			Rune: runes[i%len(runes)],
			FG:   core.ColorBlack,
			BG:   id.Color(),
		})
	}
}

func renderGrid(dst *core.Screen, ox, oy int, s Snapshot) {
	for y := 0; y < tetris.Height; y++ {
		for x := 0; x < tetris.Width; x++ {
			id := tetris.ColorID(s.Grid[y][x])
			if id == tetris.Empty {
				dst.DrawTextColored(ox+x*cellW, oy+y, " .", core.ColorGray, core.ColorDefault)
				continue
			}
			drawCell(dst, ox, oy, x, y, id, " ")
		}
	}
}

// pieceGlyph marks which piece is which when two are falling.
func pieceGlyph(s Snapshot, slot int) string {
	if s.LiveCount() < tetris.MaxActive {
		return " "
	}
	if s.Mode == ModeCoop {
		if slot == 0 {
			return "11"
		}
		return "22"
	}
	if slot == s.Active {
		return "[]"
	}
	return " "
}

func renderPieces(dst *core.Screen, ox, oy int, s Snapshot) {
	for slot, p := range s.Pieces {
		if !p.Live {
			continue
		}
		cells := tetris.OccupiedCells(tetris.Shape(p.Shape), p.Rotation, core.Point{X: p.X, Y: p.Y})
		glyph := pieceGlyph(s, slot)
		for _, c := range cells {
			if c.X < 0 || c.X >= tetris.Width || c.Y < 0 || c.Y >= tetris.Height {
				continue
			}
			drawCell(dst, ox, oy, c.X, c.Y, tetris.ColorID(p.Color), glyph)
		}
	}
}

func renderPanel(dst *core.Screen, x, y int, s Snapshot) {
	title := "DUOTRIS"
	if s.Mode == ModeCoop {
		title = "DUOTRIS CO-OP"
	}
	dst.DrawTextColored(x, y, title, core.ColorCyan, core.ColorDefault)

	dst.DrawText(x, y+2, "Next")
	next := tetris.Shape(s.Next)
	for _, c := range tetris.OccupiedCells(next, 0, core.Point{}) {
		drawCell(dst, x, y+3, c.X, c.Y, next.Color(), " ")
	}

	line := y + 3 + previewBox/2 + 1
	stats := []string{
		fmt.Sprintf("Score  %d", s.Score),
		fmt.Sprintf("Lines  %d", s.Lines),
		fmt.Sprintf("Speed  1/%d", s.DropEvery),
	}
	for i, text := range stats {
		dst.DrawText(x, line+i, text)
	}

	line += len(stats) + 1
	dst.DrawTextColored(x, line, "Scoring", core.ColorGray, core.ColorDefault)
	for n := 1; n <= tetris.MaxClear; n++ {
		label := "lines"
		if n == 1 {
			label = "line "
		}
		dst.DrawText(x, line+n, fmt.Sprintf("%d %s %5d", n, label, tetris.Points(n)))
	}

	line += tetris.MaxClear + 2
	for i, text := range controlHints(s.Mode) {
		dst.DrawTextColored(x, line+i, text, core.ColorGray, core.ColorDefault)
	}
}

func controlHints(mode Mode) []string {
	if mode == ModeCoop {
		return []string{
			"P1 WASD  E drop",
			"P2 arrows  Enter",
			"P pause  Q quit",
		}
	}
	return []string{
		"<- -> move  ^ rotate",
		"v down  X drop",
		"Space swap  P pause",
	}
}

// renderOverlay draws a message box centered on the well.
func renderOverlay(dst *core.Screen, ox, oy int, title, line2, hint string) {
	boxW := wellW - 2
	boxH := 5
	bx := ox + 1
	by := oy + (wellH-boxH)/2

	dst.DrawRect(core.NewRect(bx, by, boxW, boxH), core.Cell{Rune: ' '})
	dst.DrawBox(core.NewRect(bx, by, boxW, boxH))

	center := func(row int, text string, fg core.Color) {
		tx := bx + (boxW-len(text))/2
		dst.DrawTextColored(tx, row, text, fg, core.ColorDefault)
	}
	center(by+1, title, core.ColorRed)
	if line2 != "" {
		center(by+2, line2, core.ColorWhite)
	}
	center(by+3, hint, core.ColorGray)
}
