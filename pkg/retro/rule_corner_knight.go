package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// cornerKnightRule: with same-color pawns on the three squares of a corner cage (e.g.
// black pawns on B6, B7 and C7 around A8), a knight promoted on that corner can never
// have left it, and no piece promoted there reaches the cage squares.
type cornerKnightRule struct {
	applied bool
}

var cornerCages = []struct {
	color   board.Color // the color of the caging pawns
	cage    board.Bitboard
	corner  board.Square
}{
	{board.White, board.BitMaskAll(board.B3, board.B2, board.C2), board.A1},
	{board.White, board.BitMaskAll(board.G3, board.G2, board.F2), board.H1},
	{board.Black, board.BitMaskAll(board.B6, board.B7, board.C7), board.A8},
	{board.Black, board.BitMaskAll(board.G6, board.G7, board.F7), board.H8},
}

func (r *cornerKnightRule) update(*Analysis) {
	r.applied = true
}

func (r *cornerKnightRule) isApplicable(*Analysis) bool {
	return !r.applied
}

func (r *cornerKnightRule) apply(a *Analysis) bool {
	progress := false

	for _, cc := range cornerCages {
		pawns := a.board.PieceBitboard(cc.color, board.Pawn)
		if pawns&cc.cage != cc.cage {
			continue
		}
		promoted := cc.color.Opponent()

		progress = a.updateReachableFromPromotion(promoted, board.Knight, cc.corner.File(), board.BitMask(cc.corner)) || progress
		for _, piece := range board.PromotionPieces {
			progress = a.updateReachableFromPromotion(promoted, piece, cc.corner.File(), ^cc.cage) || progress
		}
	}

	return progress
}
