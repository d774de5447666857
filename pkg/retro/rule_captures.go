package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// capturesRule computes, for every pawn origin, the squares where that pawn must have
// captured on its way to its destinies. A capture square common to all candidate
// destinies is a certain tomb, and the cheapest route gives a capture lower bound.
type capturesRule struct {
	pawnDistancesCnt      int
	pawnForcedCnt         int
	reachableFromPromoCnt int
	destiniesCnt          int
	originsCnt            int
	capturesBoundsCnt     int
}

func (r *capturesRule) update(a *Analysis) {
	r.pawnDistancesCnt = a.cnt.pawnCaptureDistances
	r.pawnForcedCnt = a.cnt.pawnForcedCaptures
	r.reachableFromPromoCnt = a.cnt.reachableFromPromotion
	r.destiniesCnt = a.cnt.destinies
	r.originsCnt = a.cnt.origins
	r.capturesBoundsCnt = a.cnt.capturesBounds
}

func (r *capturesRule) isApplicable(a *Analysis) bool {
	return r.pawnDistancesCnt != a.cnt.pawnCaptureDistances ||
		r.pawnForcedCnt != a.cnt.pawnForcedCaptures ||
		r.reachableFromPromoCnt != a.cnt.reachableFromPromotion ||
		r.destiniesCnt != a.cnt.destinies ||
		r.originsCnt != a.cnt.origins ||
		r.capturesBoundsCnt != a.cnt.capturesBounds
}

func (r *capturesRule) apply(a *Analysis) bool {
	progress := false

	for bb := pawnRanks &^ a.steady; bb != 0; bb &= bb - 1 {
		origin := bb.LastPopSquare()

		// If the origin's piece is still standing and all its destinies hold the same
		// piece type, routes must end as that type.
		finalPiece, haveFinal := board.NoPiece, false
		if a.isDefinitelyOnBoard(origin) {
			finalPiece, haveFinal = commonPieceInAllSquares(&a.board, a.destinies[origin])
		}

		captures := board.FullBitboard
		minDistance := unreachableDistance
		for db := a.destinies[origin]; db != 0; db &= db - 1 {
			destiny := db.LastPopSquare()
			toDestiny, distance := capturesToTarget(a, origin, destiny, a.capturesUpper[origin], finalPiece, haveFinal)
			captures &= toDestiny
			if distance < minDistance {
				minDistance = distance
			}
		}

		if captures != board.FullBitboard {
			progress = a.updateCaptures(origin, captures) || progress
			progress = a.updateCapturesLowerBound(origin, minDistance) || progress
		}
	}

	return progress
}

// capturesToTarget returns the squares where the pawn from origin must have captured
// in order to reach target with at most the allowed captures, along with the minimum
// number of captures of any admissible route. If finalPiece is set, the piece landing
// on target must be of that type. An impossible route yields the empty set.
func capturesToTarget(a *Analysis, origin, target board.Square, allowed int, finalPiece board.Piece, haveFinal bool) (board.Bitboard, int) {
	color := originColor(origin)

	captures := board.FullBitboard
	minDistance := unreachableDistance
	file := origin.File()

	// The pawn goes directly to target.
	if !haveFinal || finalPiece == board.Pawn {
		if distance := a.PawnCaptureDistances(color, file, target); distance <= allowed {
			captures &= a.pawnForcedCaptures[color][file][target]
			if distance < minDistance {
				minDistance = distance
			}
		}
	}

	// The pawn promotes before going to target.
	if !haveFinal || finalPiece != board.Pawn {
		// Knights first: they are the most likely to reach any square after
		// promotion.
		candidates := board.PromotionPieces
		if haveFinal {
			candidates = []board.Piece{finalPiece}
		}
		for pb := board.BitRank(color.PromotionRank()) &^ a.steady; pb != 0 && captures != 0; pb &= pb - 1 {
			promoting := pb.LastPopSquare()
			d := a.PawnCaptureDistances(color, file, promoting)
			if d > allowed {
				continue
			}
			for _, piece := range candidates {
				if !a.ReachableFromPromotion(color, piece, promoting.File()).IsSet(target) {
					continue
				}
				captures &= a.pawnForcedCaptures[color][file][promoting]
				if d < minDistance {
					minDistance = d
				}
				// The promotion piece is unimportant once a route was found.
				break
			}
		}
	}

	// If no route intersected anything, every route was impossible.
	if captures == board.FullBitboard {
		return 0, minDistance
	}
	return captures, minDistance
}
