package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// steadyMobilityRule refines the mobility graphs with the steady information: nothing
// ever moved from, into or through a steady square, and nothing ever moved out of a
// square from which it would have been checking a steady king.
type steadyMobilityRule struct {
	steadyCnt int
}

func (r *steadyMobilityRule) update(a *Analysis) {
	r.steadyCnt = a.cnt.steady
}

func (r *steadyMobilityRule) isApplicable(a *Analysis) bool {
	return r.steadyCnt != a.cnt.steady
}

func (r *steadyMobilityRule) apply(a *Analysis) bool {
	progress := false

	for bb := a.steady; bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		for _, cp := range AllColoredPieces {
			progress = a.removeIncomingEdges(cp.Piece, cp.Color, sq) || progress
			progress = a.removeOutgoingEdges(cp.Piece, cp.Color, sq) || progress
			progress = a.removeEdgesThrough(cp.Piece, cp.Color, sq) || progress
		}
	}

	for c := board.ZeroColor; c < board.NumColors; c++ {
		ksq := a.board.KingSquare(c)
		if !a.IsSteady(ksq) {
			continue
		}
		opp := c.Opponent()
		for _, piece := range board.Pieces {
			for cb := checkingPredecessors(piece, opp, ksq); cb != 0; cb &= cb - 1 {
				progress = a.removeOutgoingEdges(piece, opp, cb.LastPopSquare()) || progress
			}
		}
	}

	return progress
}
