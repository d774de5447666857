package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// fileCountingRule counts closed files, i.e. files holding a pair of opposing pawns.
// Opening a file takes a capture: at most one file per officer capture and two per
// pawn capture. Too many open files for the missing material proves illegality.
// One-shot: it only depends on the pawn structure.
type fileCountingRule struct {
	applied bool
}

func (r *fileCountingRule) update(*Analysis) {
	r.applied = true
}

func (r *fileCountingRule) isApplicable(*Analysis) bool {
	return !r.applied
}

func (r *fileCountingRule) apply(a *Analysis) bool {
	pawns := a.board.Pieces(board.Pawn)
	officers := a.board.All() &^ pawns
	maxOpen := 2*(16-pawns.PopCount()) + (16 - officers.PopCount())

	if 8-len(closedFiles(&a.board)) > maxOpen {
		a.result = lang.Some(Illegal)
	}

	return false
}

// closedFiles returns the files where opposing pawns face each other.
func closedFiles(b *RetractableBoard) []board.File {
	whitePawns := b.PieceBitboard(board.White, board.Pawn)
	blackPawns := b.PieceBitboard(board.Black, board.Pawn)

	opposed := board.EmptyBitboard
	for i := 1; i < 8; i++ {
		opposed |= whitePawns & (blackPawns >> (8 * i))
	}

	var ret []board.File
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		if board.BitFile(f)&opposed != 0 {
			ret = append(ret, f)
		}
	}
	return ret
}
