package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// royaltyOn1stRankRule: pieces that provably never left their back rank preserve a
// trace of their starting order. Castling scrambles the king and rooks, but the D-file
// piece must still appear in its sorted position among them.
type royaltyOn1stRankRule struct {
	originsCnt             int
	reachableFromOriginCnt int
}

func (r *royaltyOn1stRankRule) update(a *Analysis) {
	r.originsCnt = a.cnt.origins
	r.reachableFromOriginCnt = a.cnt.reachableFromOrigin
}

func (r *royaltyOn1stRankRule) isApplicable(a *Analysis) bool {
	return r.originsCnt != a.cnt.origins || r.reachableFromOriginCnt != a.cnt.reachableFromOrigin
}

func (r *royaltyOn1stRankRule) apply(a *Analysis) bool {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		files := backRankBoundFiles(a, c)

		position, sortedPosition := -1, -1
		before := 0
		for i, f := range files {
			if f == board.FileD && position < 0 {
				position = i
			} else if f > board.FileD {
				// File values are reversed: larger values are closer to the A file,
				// i.e. alphabetically before D.
				before++
			}
		}
		if position >= 0 {
			sortedPosition = before
		}

		if position != sortedPosition {
			a.result = lang.Some(Illegal)
		}
	}

	return false
}

// backRankBoundFiles returns the origin files, in board order of their current
// squares, of the given color's back-rank pieces with a unique origin that provably
// never left the back rank.
func backRankBoundFiles(a *Analysis, c board.Color) []board.File {
	var ret []board.File
	for i := board.NumFiles; i > 0; i-- {
		f := i - 1 // from the A file down, matching left-to-right board order
		sq := board.NewSquare(f, c.BackRank())
		origins := a.origins[sq]
		if origins.PopCount() != 1 {
			continue
		}
		origin := origins.LastPopSquare()
		if a.reachableFromOrigin[c][origin.File()]&^board.BitRank(c.BackRank()) == 0 {
			ret = append(ret, origin.File())
		}
	}
	return ret
}
