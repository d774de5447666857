package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// destiniesRule keeps destinies inside the reachable squares, and pins the destiny of
// an origin once it is the unique candidate origin of some on-board piece.
type destiniesRule struct {
	originsCnt   int
	reachableCnt int
}

func (r *destiniesRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
	r.reachableCnt = a.cnt.reachable
}

func (r *destiniesRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins || r.reachableCnt != a.cnt.reachable
}

func (r *destiniesRule) apply(a *Analysis) bool {
	progress := false

	for bb := allOrigins; bb != 0; bb &= bb - 1 {
		origin := bb.LastPopSquare()
		progress = a.updateDestinies(origin, a.reachable[origin]) || progress
	}

	for bb := a.board.All(); bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		if a.origins[sq].PopCount() == 1 {
			progress = a.updateDestinies(a.origins[sq].LastPopSquare(), board.BitMask(sq)) || progress
		}
	}

	return progress
}
