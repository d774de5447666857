package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// missingRule settles the membership of the missing sets: an origin square that no
// on-board piece claims belongs to a captured piece, and origins outside the starting
// array are never missing.
type missingRule struct {
	originsCnt int
}

func (r *missingRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
}

func (r *missingRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins
}

func (r *missingRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		progress = a.updateCertainlyNotMissing(c, ^colorOrigins[c]) || progress

		unclaimed := colorOrigins[c]
		for bb := a.board.ColorBitboard(c); bb != 0; bb &= bb - 1 {
			unclaimed &^= a.origins[bb.LastPopSquare()]
		}
		progress = a.updateCertainlyMissing(c, unclaimed) || progress
	}

	return progress
}
