package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// materialRule performs a one-shot plausibility check on the position material. It may
// be subsumed by other rules, but it identifies many illegal positions immediately.
type materialRule struct {
	applied bool
}

func (r *materialRule) update(*Analysis) {
	r.applied = true
}

func (r *materialRule) isApplicable(*Analysis) bool {
	return !r.applied
}

func (r *materialRule) apply(a *Analysis) bool {
	if IllegalMaterial(&a.board) {
		a.result = lang.Some(Illegal)
		return true
	}
	return false
}

// IllegalMaterial returns true iff the board holds material that no legal game can
// produce: each color's piece counts must not imply more promotions than it had pawns
// available.
func IllegalMaterial(b *RetractableBoard) bool {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		pawns := b.PieceBitboard(c, board.Pawn)
		knights := b.PieceBitboard(c, board.Knight)
		bishops := b.PieceBitboard(c, board.Bishop)
		rooks := b.PieceBitboard(c, board.Rook)
		queens := b.PieceBitboard(c, board.Queen)

		promoted := max(0, knights.PopCount()-2) +
			max(0, (bishops&board.LightSquares).PopCount()-1) +
			max(0, (bishops&board.DarkSquares).PopCount()-1) +
			max(0, rooks.PopCount()-2) +
			max(0, queens.PopCount()-1)

		if 8-pawns.PopCount() < promoted {
			return true
		}
	}
	return false
}
