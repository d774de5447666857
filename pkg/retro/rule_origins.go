package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// originsRule intersects every piece's candidate origins with the static candidates
// for its type and color: kings from E1/E8, knights from B1/G1/B8/G8, bishops from the
// proper color complex, pawns from a per-destination table, and queens, rooks, bishops
// and knights also from the relative 2nd rank as a promoted pawn. A steady piece's origin is its own
// square, and no origin of a steady piece is available to anyone else.
type originsRule struct {
	steadyCnt int
}

func (r *originsRule) update(a *Analysis) {
	r.steadyCnt = a.cnt.steady
}

func (r *originsRule) isApplicable(a *Analysis) bool {
	return r.steadyCnt != a.cnt.steady
}

func (r *originsRule) apply(a *Analysis) bool {
	progress := false

	for bb := a.board.All() & a.steady; bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		progress = a.updateOrigins(sq, board.BitMask(sq)) || progress
	}

	for bb := a.board.All() &^ a.steady; bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		origins := a.origins[sq] &^ a.steady &
			colorOrigins[a.pieceColorOn(sq)] &
			originsOfPieceOn(a.pieceTypeOn(sq), sq)
		progress = a.updateOrigins(sq, origins) || progress
	}

	return progress
}
