package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// capturesBoundsRule tightens the capture bounds: steady pieces never captured, and no
// piece can have captured more than the missing opponents minus what its allies
// provably captured. Incompatible bounds prove illegality.
type capturesBoundsRule struct {
	capturesBoundsCnt int
	steadyCnt         int
}

func (r *capturesBoundsRule) update(a *Analysis) {
	r.capturesBoundsCnt = a.cnt.capturesBounds
	r.steadyCnt = a.cnt.steady
}

func (r *capturesBoundsRule) isApplicable(a *Analysis) bool {
	return r.capturesBoundsCnt != a.cnt.capturesBounds || r.steadyCnt != a.cnt.steady
}

func (r *capturesBoundsRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		nbMissingOpponents := 16 - a.board.ColorBitboard(c.Opponent()).PopCount()
		sumLower := sumCapturesLowerBounds(a, colorOrigins[c])

		for bb := colorOrigins[c]; bb != 0; bb &= bb - 1 {
			origin := bb.LastPopSquare()

			if a.IsSteady(origin) {
				progress = a.updateCapturesUpperBound(origin, 0) || progress
			}

			lower := a.capturesLower[origin]
			upper := nbMissingOpponents - (sumLower - lower)
			progress = a.updateCapturesUpperBound(origin, upper) || progress

			if upper < lower {
				a.result = lang.Some(Illegal)
			}
		}
	}

	return progress
}
