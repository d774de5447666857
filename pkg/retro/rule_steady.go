package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// steadyRule identifies pieces that have certainly never moved and still occupy their
// starting square: rooks covered by castling rights and the corresponding king, pieces
// whose every predecessor square is steady, and a king-queen couple locked in by a
// steady cage.
type steadyRule struct {
	steadyCnt int
}

var (
	marriageCouple = [board.NumColors]board.Bitboard{
		board.BitMaskAll(board.D1, board.E1),
		board.BitMaskAll(board.D8, board.E8),
	}
	marriageCage = [board.NumColors]board.Bitboard{
		board.BitMaskAll(board.C1, board.C2, board.D2, board.E2, board.F2, board.F1),
		board.BitMaskAll(board.C8, board.C7, board.D7, board.E7, board.F7, board.F8),
	}
)

func (r *steadyRule) update(a *Analysis) {
	r.steadyCnt = a.cnt.steady
}

func (r *steadyRule) isApplicable(a *Analysis) bool {
	return r.steadyCnt != a.cnt.steady
}

func (r *steadyRule) apply(a *Analysis) bool {
	steady := steadyPieces(&a.board, a.steady)

	// A fully steady cage traps the queen for good: whatever happened to her, she
	// never left her starting square.
	for c := board.ZeroColor; c < board.NumColors; c++ {
		if cage := marriageCage[c]; cage&steady == cage {
			queen := board.NewSquare(board.FileD, c.BackRank())
			a.updateDestinies(queen, board.BitMask(queen))
		}
	}

	return a.updateSteady(steady)
}

// steadyPieces extends the given set of known-steady squares with every further piece
// that is provably steady on the board.
func steadyPieces(b *RetractableBoard, steady board.Bitboard) board.Bitboard {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		// (1) Castling rights pin the king and the corresponding rooks.

		if rights := b.Castling() & board.CastlingRights(c); rights != 0 {
			if rights.IsAllowed(board.KingSideCastleRight(c)) {
				steady |= board.BitMask(board.NewSquare(board.FileH, c.BackRank()))
			}
			if rights.IsAllowed(board.QueenSideCastleRight(c)) {
				steady |= board.BitMask(board.NewSquare(board.FileA, c.BackRank()))
			}
			steady |= b.PieceBitboard(c, board.King)
		}

		// (2) A piece whose every predecessor square is steady cannot have arrived:
		// it must always have been there. Iterate to a fixpoint.

		for {
			before := steady
			for bb := b.ColorBitboard(c) & colorOrigins[c] &^ steady; bb != 0; bb &= bb - 1 {
				sq := bb.LastPopSquare()
				piece, _ := b.PieceOn(sq)
				if preds := predecessors(piece, c, sq); preds&steady == preds {
					steady |= board.BitMask(sq)
				}
			}
			if steady == before {
				break
			}
		}

		// (3) A king-queen couple surrounded by a steady cage must be steady.

		couple, cage := marriageCouple[c], marriageCage[c]
		if cage&steady == cage && couple&b.ColorBitboard(c) == couple {
			steady |= couple
		}
	}
	return steady
}
