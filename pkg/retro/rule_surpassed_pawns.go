package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// surpassedPawnsRule: a white pawn above a black pawn on their shared original file
// means the two passed each other, which costs at least two captures between them.
// Adding these pairwise bonuses to the per-piece lower bounds must keep the total
// number of pieces within 32.
type surpassedPawnsRule struct {
	capturesBoundsCnt int
	originsCnt        int
}

func (r *surpassedPawnsRule) update(a *Analysis) {
	r.capturesBoundsCnt = a.cnt.capturesBounds
	r.originsCnt = a.cnt.origins
}

func (r *surpassedPawnsRule) isApplicable(a *Analysis) bool {
	return r.capturesBoundsCnt != a.cnt.capturesBounds || r.originsCnt != a.cnt.origins
}

func (r *surpassedPawnsRule) apply(a *Analysis) bool {
	minCaptures := sumCapturesLowerBounds(a, allOrigins)

	for _, f := range surpassedPawnFiles(a) {
		white := board.NewSquare(f, board.Rank2)
		black := board.NewSquare(f, board.Rank7)
		together := a.capturesLower[white] + a.capturesLower[black]
		minCaptures += max(0, 2-together)
	}

	if minCaptures+a.board.All().PopCount() > 32 {
		a.result = lang.Some(Illegal)
	}

	return false
}

// rankOfFilePawn returns the rank of a pawn of the given color on the given file that
// is known to have started on that file, if any.
func rankOfFilePawn(a *Analysis, f board.File, c board.Color) (board.Rank, bool) {
	for bb := board.BitFile(f) & a.board.PieceBitboard(c, board.Pawn); bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		origins := a.origins[sq]
		if origins.PopCount() == 1 && origins.LastPopSquare().File() == f {
			return sq.Rank(), true
		}
	}
	return 0, false
}

// surpassedPawnFiles returns the files holding a white and a black pawn, both known to
// originate on that file, with the black pawn on the lower rank.
func surpassedPawnFiles(a *Analysis) []board.File {
	var ret []board.File
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		white, okW := rankOfFilePawn(a, f, board.White)
		black, okB := rankOfFilePawn(a, f, board.Black)
		if okW && okB && black < white {
			ret = append(ret, f)
		}
	}
	return ret
}
