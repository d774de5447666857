package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// routeFromOriginsRule keeps, for every piece on the board, only the candidate origins
// from which a route to its current square fits within the origin's capture budget,
// promotion included.
type routeFromOriginsRule struct {
	pawnDistancesCnt       int
	pawnForcedCnt          int
	reachableFromPromoCnt  int
	capturesBoundsCnt      int
	steadyCnt              int
}

func (r *routeFromOriginsRule) update(a *Analysis) {
	r.pawnDistancesCnt = a.cnt.pawnCaptureDistances
	r.pawnForcedCnt = a.cnt.pawnForcedCaptures
	r.reachableFromPromoCnt = a.cnt.reachableFromPromotion
	r.capturesBoundsCnt = a.cnt.capturesBounds
	r.steadyCnt = a.cnt.steady
}

func (r *routeFromOriginsRule) isApplicable(a *Analysis) bool {
	return r.pawnDistancesCnt != a.cnt.pawnCaptureDistances ||
		r.pawnForcedCnt != a.cnt.pawnForcedCaptures ||
		r.reachableFromPromoCnt != a.cnt.reachableFromPromotion ||
		r.capturesBoundsCnt != a.cnt.capturesBounds ||
		r.steadyCnt != a.cnt.steady
}

func (r *routeFromOriginsRule) apply(a *Analysis) bool {
	progress := false

	for bb := a.board.All() &^ a.steady; bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		piece := a.pieceTypeOn(sq)
		color := a.pieceColorOn(sq)

		plausible := board.EmptyBitboard
		for ob := a.origins[sq]; ob != 0; ob &= ob - 1 {
			origin := ob.LastPopSquare()
			if origin == sq {
				plausible |= board.BitMask(origin)
				continue
			}
			if distanceFromOrigin(a, origin, sq, piece, color) <= a.capturesUpper[origin] {
				plausible |= board.BitMask(origin)
			}
		}
		progress = a.updateOrigins(sq, plausible) || progress
	}

	return progress
}

// distanceFromOrigin returns the minimum number of captures for the piece of the given
// color to go from the starting square origin to target and end up as the given piece
// type, promoting along the way if the origin is a pawn origin. 16 means the route is
// impossible.
func distanceFromOrigin(a *Analysis, origin, target board.Square, piece board.Piece, color board.Color) int {
	if piece == board.Pawn {
		return a.PawnCaptureDistances(color, origin.File(), target)
	}

	if origin.Rank() == color.BackRank() {
		if a.reachableFromOrigin[color][origin.File()].IsSet(target) {
			return 0
		}
		return unreachableDistance
	}

	// A king is never a promoted piece.
	if piece == board.King {
		return unreachableDistance
	}

	// A promoted piece: reach some promotion square as a pawn first.
	distance := unreachableDistance
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		promoting := board.NewSquare(f, color.PromotionRank())
		d := a.PawnCaptureDistances(color, origin.File(), promoting)
		if d >= distance {
			continue
		}
		if a.ReachableFromPromotion(color, piece, f).IsSet(target) {
			distance = d
		}
	}
	return distance
}

// routeToReachableRule is the symmetric filter: it keeps, for every origin, only the
// reachable squares for which a route from the origin fits within the capture budget.
type routeToReachableRule struct {
	mobilityCnt            int
	capturesBoundsCnt      int
	steadyCnt              int
	pawnDistancesCnt       int
	reachableFromOriginCnt int
}

func (r *routeToReachableRule) update(a *Analysis) {
	r.mobilityCnt = a.cnt.mobility
	r.capturesBoundsCnt = a.cnt.capturesBounds
	r.steadyCnt = a.cnt.steady
	r.pawnDistancesCnt = a.cnt.pawnCaptureDistances
	r.reachableFromOriginCnt = a.cnt.reachableFromOrigin
}

func (r *routeToReachableRule) isApplicable(a *Analysis) bool {
	return r.mobilityCnt != a.cnt.mobility ||
		r.capturesBoundsCnt != a.cnt.capturesBounds ||
		r.steadyCnt != a.cnt.steady ||
		r.pawnDistancesCnt != a.cnt.pawnCaptureDistances ||
		r.reachableFromOriginCnt != a.cnt.reachableFromOrigin
}

func (r *routeToReachableRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		for bb := colorOrigins[c]; bb != 0; bb &= bb - 1 {
			origin := bb.LastPopSquare()
			piece := startPieceOn(origin)

			targets := board.BitMask(origin)
			for tb := a.reachable[origin] &^ a.steady; tb != 0; tb &= tb - 1 {
				target := tb.LastPopSquare()
				if distanceToTarget(a, origin, target, piece, c) <= a.capturesUpper[origin] {
					targets |= board.BitMask(target)
				}
			}
			progress = a.updateReachable(origin, targets) || progress
		}
	}

	return progress
}

// distanceToTarget returns the minimum number of captures for the given piece of the
// given color to go from its starting square to target. A pawn that can promote is
// assumed to reach the target without further captures afterwards.
func distanceToTarget(a *Analysis, origin, target board.Square, piece board.Piece, color board.Color) int {
	if piece == board.Pawn {
		distance := a.PawnCaptureDistances(color, origin.File(), target)
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			promoting := board.NewSquare(f, color.PromotionRank())
			if d := a.PawnCaptureDistances(color, origin.File(), promoting); d < distance {
				distance = d
			}
		}
		return distance
	}

	if a.reachableFromOrigin[color][origin.File()].IsSet(target) {
		return 0
	}
	return unreachableDistance
}
