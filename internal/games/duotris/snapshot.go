package duotris

import (
	"github.com/vovakirdan/duotris/internal/multiplayer"
	"github.com/vovakirdan/duotris/internal/tetris"
)

// PieceSnapshot describes one slot. Uses primitive types only for stable
// serialization.
type PieceSnapshot struct {
	Live     bool
	Shape    int
	Rotation int
	X, Y     int
	Color    uint8
}

// Snapshot captures the complete visible game state. Used for determinism
// tests, replay verification and online co-op rendering.
type Snapshot struct {
	Tick      uint64
	Mode      Mode
	Grid      [tetris.Height][tetris.Width]uint8
	Pieces    [tetris.MaxActive]PieceSnapshot
	Active    int
	Next      int
	Score     int
	Lines     int
	Locks     int
	DropEvery int
	Paused    bool
	GameOver  bool
}

// IsGameSnapshot implements the GameSnapshot interface marker.
func (Snapshot) IsGameSnapshot() {}

var _ multiplayer.GameSnapshot = Snapshot{}

var _ multiplayer.OnlineGame = (*Game)(nil)

// Snapshot returns the current game state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Tick:      g.tick,
		Mode:      g.mode,
		Active:    g.board.ActiveSlot(),
		Next:      int(g.board.Next().Shape),
		Score:     g.board.Score(),
		Lines:     g.board.Stats().Lines,
		Locks:     g.board.Stats().Locks,
		DropEvery: g.dropEvery,
		Paused:    g.paused,
		GameOver:  g.board.GameOver(),
	}

	grid := g.board.Grid()
	for y := 0; y < tetris.Height; y++ {
		for x := 0; x < tetris.Width; x++ {
			s.Grid[y][x] = uint8(grid.At(x, y))
		}
	}

	for i := range s.Pieces {
		p, ok := g.board.Piece(i)
		if !ok {
			continue
		}
		s.Pieces[i] = PieceSnapshot{
			Live:     true,
			Shape:    int(p.Shape),
			Rotation: p.Rotation,
			X:        p.Pos.X,
			Y:        p.Pos.Y,
			Color:    uint8(p.Color),
		}
	}
	return s
}

// LiveCount returns the number of falling pieces in the snapshot.
func (s Snapshot) LiveCount() int {
	n := 0
	for _, p := range s.Pieces {
		if p.Live {
			n++
		}
	}
	return n
}

// MatchSnapshot implements multiplayer.OnlineGame.
func (g *Game) MatchSnapshot() multiplayer.GameSnapshot {
	return g.Snapshot()
}
