package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// mobilityRule pushes the mobility-graph state into the derived tables: the squares
// reachable from each back-rank origin and from each promotion square, the pawn
// capture distances and the forced capture squares of every pawn route within the
// current capture budget.
type mobilityRule struct {
	mobilityCnt       int
	pawnDistancesCnt  int
	capturesBoundsCnt int
}

func (r *mobilityRule) update(a *Analysis) {
	r.mobilityCnt = a.cnt.mobility
	r.pawnDistancesCnt = a.cnt.pawnCaptureDistances
	r.capturesBoundsCnt = a.cnt.capturesBounds
}

func (r *mobilityRule) isApplicable(a *Analysis) bool {
	return r.mobilityCnt != a.cnt.mobility ||
		r.pawnDistancesCnt != a.cnt.pawnCaptureDistances ||
		r.capturesBoundsCnt != a.cnt.capturesBounds
}

func (r *mobilityRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		// (1) Officer reachability from the back-rank origins.

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			origin := board.NewSquare(f, c.BackRank())
			piece := startPieceOn(origin)
			reachable := a.mobility[c][piece].ReachableFrom(origin)
			progress = a.updateReachableFromOrigin(c, f, reachable) || progress
		}

		// (2) Reachability from every possible promotion.

		for _, piece := range board.PromotionPieces {
			for f := board.ZeroFile; f < board.NumFiles; f++ {
				sq := board.NewSquare(f, c.PromotionRank())
				reachable := a.mobility[c][piece].ReachableFrom(sq)
				progress = a.updateReachableFromPromotion(c, piece, f, reachable) || progress
			}
		}

		// (3) Pawn capture distances.

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			origin := board.NewSquare(f, c.SecondRank())
			dist := a.mobility[c][board.Pawn].DistancesFrom(origin)
			for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
				d := dist[sq]
				if d > unreachableDistance {
					d = unreachableDistance
				}
				progress = a.updatePawnCaptureDistance(c, f, sq, uint8(d)) || progress
			}
		}

		// (4) Forced capture squares, for targets within the capture budget.

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			origin := board.NewSquare(f, c.SecondRank())
			for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
				n := a.PawnCaptureDistances(c, f, sq)
				if n == 0 || n > a.capturesUpper[origin] {
					continue
				}
				if forced, _, ok := a.mobility[c][board.Pawn].ForcedCaptures(origin, sq); ok {
					progress = a.updatePawnForcedCaptures(c, f, sq, forced) || progress
				}
			}
		}
	}

	return progress
}
