package duotris

import (
	"github.com/vovakirdan/duotris/internal/core"
)

// playActions lists the piece actions in the order they win when a frame
// carries more than one. Only one is applied per player per tick.
var playActions = []core.Action{
	core.ActionLeft,
	core.ActionRight,
	core.ActionRotate,
	core.ActionDown,
	core.ActionHardDrop,
	core.ActionSwap,
}

// pickAction returns the action to apply from a frame, or ActionNone.
func pickAction(in core.InputFrame) core.Action {
	for _, a := range playActions {
		if in.Has(a) {
			return a
		}
	}
	return core.ActionNone
}

func (g *Game) applyInput(in core.MultiInputFrame) {
	if g.mode == ModeSolo {
		g.apply(g.board.ActiveSlot(), pickAction(in.Player1()))
		return
	}
	for _, p := range []core.PlayerID{core.Player1, core.Player2} {
		if g.board.GameOver() {
			return
		}
		g.apply(g.slotFor(p), pickAction(in.Player(p)))
	}
}

// slotFor maps a co-op player to the slot they steer: their own when it
// holds a piece, otherwise the lone live piece.
func (g *Game) slotFor(p core.PlayerID) int {
	own := int(p) - 1
	if _, ok := g.board.Piece(own); ok {
		return own
	}
	return g.board.ActiveSlot()
}

func (g *Game) apply(slot int, a core.Action) {
	switch a {
	case core.ActionLeft:
		g.board.Move(slot, -1)
	case core.ActionRight:
		g.board.Move(slot, 1)
	case core.ActionRotate:
		g.board.Rotate(slot)
	case core.ActionDown:
		g.board.SoftDrop(slot)
	case core.ActionHardDrop:
		g.board.HardDrop(slot)
	case core.ActionSwap:
		if g.mode == ModeSolo {
			g.board.SwapActive()
		}
	}
}
