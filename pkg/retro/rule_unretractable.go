package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// unretractableRule: the dual of steadiness. Pieces are assumed unretractable until a
// predecessor square is empty or held by a retractable piece; the fixpoint leaves the
// truly stuck pieces. A stuck piece that is not a steady original cannot have gotten
// where it stands.
type unretractableRule struct {
	steadyCnt int
}

func (r *unretractableRule) update(a *Analysis) {
	r.steadyCnt = a.cnt.steady
}

func (r *unretractableRule) isApplicable(a *Analysis) bool {
	return r.steadyCnt != a.cnt.steady
}

func (r *unretractableRule) apply(a *Analysis) bool {
	// Steady originals are derived here as well, so the verdict does not depend on
	// whether the steady rule has run yet.
	steady := steadyPieces(&a.board, a.steady)
	if unretractablePieces(&a.board, steady)&^steady != 0 {
		a.result = lang.Some(Illegal)
	}
	return false
}

// unretractablePieces returns the pieces that cannot possibly retract: no predecessor
// square of theirs is empty or occupied by a retractable piece.
func unretractablePieces(b *RetractableBoard, steady board.Bitboard) board.Bitboard {
	retractable := ^b.All()

	for {
		before := retractable

		for c := board.ZeroColor; c < board.NumColors; c++ {
			for bb := b.ColorBitboard(c) &^ retractable &^ steady; bb != 0; bb &= bb - 1 {
				sq := bb.LastPopSquare()
				piece, _ := b.PieceOn(sq)
				if predecessors(piece, c, sq)&retractable != 0 {
					retractable |= board.BitMask(sq)
				}
			}
		}

		if retractable == before {
			return ^retractable
		}
	}
}
