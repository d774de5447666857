package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// A k-group is a collection of at least k sets whose union holds at most k elements.
// If k pieces share a union of exactly k candidate origins, those origins belong to
// precisely those pieces and to no others. Rules such as RefineOrigins and Tombs build
// on this observation.

// findKGroup searches the given sets, filtered by the given square indices, for a
// k-group. It returns the union of the group and the indices that do *not* form the
// group. False iff no k-group exists.
func findKGroup(k int, sets *[board.NumSquares]board.Bitboard, indices board.Bitboard) (board.Bitboard, board.Bitboard, bool) {
	return findKGroupFrom(k, sets, indices, 0, 0)
}

func findKGroupFrom(k int, sets *[board.NumSquares]board.Bitboard, remaining board.Bitboard, union board.Bitboard, count int) (board.Bitboard, board.Bitboard, bool) {
	if union.PopCount() > k {
		return 0, 0, false
	}
	if count >= k {
		return union, remaining, true
	}
	if remaining == 0 {
		return 0, 0, false
	}

	sq := remaining.LastPopSquare()
	rest := remaining &^ board.BitMask(sq)

	// Either sq joins the group...
	if group, indices, ok := findKGroupFrom(k, sets, rest, union|sets[sq], count+1); ok {
		return group, indices, true
	}
	// ...or it is left out and reported among the remaining indices.
	if group, indices, ok := findKGroupFrom(k, sets, rest, union, count); ok {
		return group, indices | board.BitMask(sq), true
	}
	return 0, 0, false
}
