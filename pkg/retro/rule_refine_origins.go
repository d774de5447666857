package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// refineOriginsRule exploits k-groups: if k pieces of one color share a union of
// exactly k candidate origins, those origins belong to precisely those pieces. The
// group's origins vanish from everyone else's candidates, cannot be missing, and their
// destinies are the group's squares. A pawn-only k-group additionally admits capture
// accounting over the whole position.
type refineOriginsRule struct {
	originsCnt             int
	capturesBoundsCnt      int
	reachableFromOriginCnt int
	pawnDistancesCnt       int
}

func (r *refineOriginsRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
	r.capturesBoundsCnt = a.cnt.capturesBounds
	r.reachableFromOriginCnt = a.cnt.reachableFromOrigin
	r.pawnDistancesCnt = a.cnt.pawnCaptureDistances
}

func (r *refineOriginsRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins ||
		r.capturesBoundsCnt != a.cnt.capturesBounds ||
		r.reachableFromOriginCnt != a.cnt.reachableFromOrigin ||
		r.pawnDistancesCnt != a.cnt.pawnCaptureDistances
}

func (r *refineOriginsRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		// After the origins rule, no piece has more than 10 candidate origins.
		for k := 1; k <= 10; k++ {
			iter := a.board.ColorBitboard(c)
			for {
				group, remaining, ok := findKGroup(k, &a.origins, iter)
				if !ok {
					break
				}
				groupSquares := iter &^ remaining
				iter = remaining

				// The group owns its origins exclusively.
				for bb := iter; bb != 0; bb &= bb - 1 {
					sq := bb.LastPopSquare()
					progress = a.updateOrigins(sq, a.origins[sq]&^group) || progress
				}
				progress = a.updateCertainlyNotMissing(c, group) || progress
				for bb := group; bb != 0; bb &= bb - 1 {
					progress = a.updateDestinies(bb.LastPopSquare(), groupSquares) || progress
				}

				if groupSquares&a.board.Pieces(board.Pawn) == groupSquares && groupSquares.PopCount() > 1 {
					progress = r.applyPawnGroup(a, c, group, groupSquares) || progress
					if _, done := a.result.V(); done {
						return true
					}
				}
			}
		}
	}
	return progress
}

// applyPawnGroup runs the capture accounting for a k-group consisting of at least two
// pawns: if the global capture budget rules out cross-file journeys, origins and
// destinies pair up file by file; a 2-pawn group can further eliminate a matching
// whose capture cost exceeds the budget.
func (r *refineOriginsRule) applyPawnGroup(a *Analysis, c board.Color, group, groupSquares board.Bitboard) bool {
	progress := false

	nbOpponents := a.board.ColorBitboard(c.Opponent()).PopCount()
	nbOtherCaptures := sumCapturesLowerBounds(a, colorOrigins[c]&^group)

	// The group of pawns captured at most once in total: they stayed on their files.
	if nbOpponents+nbOtherCaptures >= 15 {
		for bb := group; bb != 0; bb &= bb - 1 {
			origin := bb.LastPopSquare()
			destinies := groupSquares & board.BitFile(origin.File())
			if destinies.PopCount() == 1 {
				progress = a.updateDestinies(origin, destinies) || progress
				progress = a.updateOrigins(destinies.LastPopSquare(), board.BitMask(origin)) || progress
			}
		}
	}

	if group.PopCount() != 2 {
		return progress
	}

	o1 := group.LastPopSquare()
	o2 := (group &^ board.BitMask(o1)).LastPopSquare()
	t1 := groupSquares.LastPopSquare()
	t2 := (groupSquares &^ board.BitMask(t1)).LastPopSquare()

	// Missing opponents that never left their back rank can never have fed a pawn
	// capture; they inflate the effective budget.
	backRankBound := 0
	for bb := a.missing[c.Opponent()].Certain() & board.BitRank(c.PromotionRank()); bb != 0; bb &= bb - 1 {
		missing := bb.LastPopSquare()
		if a.reachableFromOrigin[c.Opponent()][missing.File()]&^board.BitRank(c.PromotionRank()) == 0 {
			backRankBound++
		}
	}

	base := nbOpponents + nbOtherCaptures + backRankBound
	option1 := base + a.PawnCaptureDistances(c, o1.File(), t1) + a.PawnCaptureDistances(c, o2.File(), t2)
	option2 := base + a.PawnCaptureDistances(c, o1.File(), t2) + a.PawnCaptureDistances(c, o2.File(), t1)

	switch {
	case option1 > 16 && option2 > 16:
		a.result = lang.Some(Illegal)
		return true

	case option1 > 16:
		progress = a.updateDestinies(o1, board.BitMask(t2)) || progress
		progress = a.updateDestinies(o2, board.BitMask(t1)) || progress
		progress = a.updateOrigins(t2, board.BitMask(o1)) || progress
		progress = a.updateOrigins(t1, board.BitMask(o2)) || progress

	case option2 > 16:
		progress = a.updateDestinies(o1, board.BitMask(t1)) || progress
		progress = a.updateDestinies(o2, board.BitMask(t2)) || progress
		progress = a.updateOrigins(t1, board.BitMask(o1)) || progress
		progress = a.updateOrigins(t2, board.BitMask(o2)) || progress
	}

	return progress
}

// sumCapturesLowerBounds sums the capture lower bounds over the given origin squares.
func sumCapturesLowerBounds(a *Analysis, origins board.Bitboard) int {
	sum := 0
	for bb := origins; bb != 0; bb &= bb - 1 {
		sum += a.capturesLower[bb.LastPopSquare()]
	}
	return sum
}
