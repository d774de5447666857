package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// pawnOn3rdRankRule: a pawn on its relative 3rd rank with a unique candidate origin
// has guarded the origin-to-square segment for the entire game. No other piece can
// have passed between the two squares, and if the pawn captured to get there, the
// enemy king can never have stood on its square.
type pawnOn3rdRankRule struct {
	originsCnt int
}

func (r *pawnOn3rdRankRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
}

func (r *pawnOn3rdRankRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins
}

func (r *pawnOn3rdRankRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		third := board.Rank3
		if c == board.Black {
			third = board.Rank6
		}
		for bb := a.board.PieceBitboard(c, board.Pawn) & board.BitRank(third); bb != 0; bb &= bb - 1 {
			sq := bb.LastPopSquare()
			if a.origins[sq].PopCount() != 1 {
				continue
			}
			origin := a.origins[sq].LastPopSquare()

			for _, cp := range AllColoredPieces {
				if cp.Piece == board.Pawn && cp.Color == c {
					continue
				}
				progress = a.removeEdgesThroughPair(cp.Piece, cp.Color, origin, sq) || progress
			}

			// A capturing arrival means the pawn attacked its square from the origin
			// since move one: the enemy king could never enter it.
			if origin.File() != sq.File() {
				progress = a.removeIncomingEdges(board.King, c.Opponent(), sq) || progress
			}
		}
	}

	return progress
}

// pawnOn2ndRankRule: a pawn still on its relative 2nd rank has attacked its two
// diagonal squares for the entire game, so the enemy king can never have entered them.
// One-shot: the pawn structure of the analyzed position does not change.
type pawnOn2ndRankRule struct {
	applied bool
}

func (r *pawnOn2ndRankRule) update(*Analysis) {
	r.applied = true
}

func (r *pawnOn2ndRankRule) isApplicable(*Analysis) bool {
	return !r.applied
}

func (r *pawnOn2ndRankRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		for bb := a.board.PieceBitboard(c, board.Pawn) & board.BitRank(c.SecondRank()); bb != 0; bb &= bb - 1 {
			sq := bb.LastPopSquare()
			for ab := board.PawnAttackboard(c, sq); ab != 0; ab &= ab - 1 {
				progress = a.removeIncomingEdges(board.King, c.Opponent(), ab.LastPopSquare()) || progress
			}
		}
	}

	return progress
}
