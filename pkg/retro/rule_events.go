package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// eventsRule derives forced past events from the pawn structure and logs them for
// other rules to consume. Only one pattern is recognized so far: white pawns standing
// on F3 and G2 mean the F1 bishop can only ever have entered play through E2.
//
// TODO(herohde): grow the pattern set into proper case analyses (mirrored corners,
// both colors) once a consumer rule exists.
type eventsRule struct {
	originsCnt int
	eventsCnt  int
}

func (r *eventsRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
	r.eventsCnt = a.cnt.events
}

func (r *eventsRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins || r.eventsCnt != a.cnt.events
}

func (r *eventsRule) apply(a *Analysis) bool {
	progress := false

	pattern := board.BitMaskAll(board.F3, board.G2)
	if a.board.PieceBitboard(board.White, board.Pawn)&pattern == pattern {
		progress = a.addEvent(Event{Passage: board.E2, Confined: board.F1}) || progress
	}

	return progress
}
