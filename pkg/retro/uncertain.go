package retro

import (
	"fmt"

	"github.com/herohde/hindsight/pkg/board"
)

// UncertainSet is a set of squares of known cardinality whose membership is only
// partially determined: `certain` squares are definitely in the set, `candidates` may
// be. The true set always lies between the two. Whenever the size constraints saturate,
// the representation collapses: if |certain ∪ candidates| equals the size, all
// candidates become certain; if |certain| equals the size, the candidates vanish.
type UncertainSet struct {
	size       int
	certain    board.Bitboard
	candidates board.Bitboard
}

// NewUncertainSet returns a set of the given size about which nothing is known.
func NewUncertainSet(size int) UncertainSet {
	return UncertainSet{size: size, candidates: board.FullBitboard}
}

// Size returns the cardinality of the set.
func (u *UncertainSet) Size() int {
	return u.size
}

// Certain returns the squares certainly in the set.
func (u *UncertainSet) Certain() board.Bitboard {
	return u.certain
}

// Candidates returns the squares possibly, but not certainly, in the set.
func (u *UncertainSet) Candidates() board.Bitboard {
	return u.candidates
}

// All returns every square potentially in the set, certain or candidate.
func (u *UncertainSet) All() board.Bitboard {
	return u.certain | u.candidates
}

// Contains returns true iff the square is certainly in the set.
func (u *UncertainSet) Contains(sq board.Square) bool {
	return u.certain.IsSet(sq)
}

// Add marks the given squares as certainly in the set. Returns true iff it changed
// anything.
func (u *UncertainSet) Add(set board.Bitboard) bool {
	certain := u.certain | set
	if certain == u.certain {
		return false
	}
	u.certain = certain
	u.candidates &^= certain
	u.simplify()
	return true
}

// Remove drops the given squares from the candidates. Returns true iff it changed
// anything.
func (u *UncertainSet) Remove(set board.Bitboard) bool {
	candidates := u.candidates &^ set
	if candidates == u.candidates {
		return false
	}
	u.candidates = candidates
	u.simplify()
	return true
}

func (u *UncertainSet) simplify() {
	if (u.certain | u.candidates).PopCount() == u.size {
		u.certain |= u.candidates
	}
	if u.certain.PopCount() == u.size {
		u.candidates = 0
	}
}

func (u UncertainSet) String() string {
	return fmt.Sprintf("uncertain{size=%v, certain=%v, candidates=%v}", u.size, u.certain, u.candidates)
}
