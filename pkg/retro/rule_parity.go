package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// parityRule checks the parity of the total number of half-moves. The contribution of
// each color's two original knights follows from the square colors of their final
// squares; every other piece needs a unique destiny and a mobility component that
// admits paths of one parity only. If every contribution is determined and the total
// contradicts the side to move, the position is illegal. In duplex mode the expected
// parity is inverted.
type parityRule struct {
	mobilityCnt  int
	destiniesCnt int
}

func (r *parityRule) update(a *Analysis) {
	r.mobilityCnt = a.cnt.mobility
	r.destiniesCnt = a.cnt.destinies
}

func (r *parityRule) isApplicable(a *Analysis) bool {
	return r.mobilityCnt != a.cnt.mobility || r.destiniesCnt != a.cnt.destinies
}

func (r *parityRule) apply(a *Analysis) bool {
	parity := 0
	origins := allOrigins

	// (1) The original knights, as a pair. They start on opposite square colors and
	// every knight move flips square color, so once both final squares are known
	// (standing squares or tombs), the pair's total contribution is 1 + |final
	// squares that are light|, regardless of which knight went where.

	for c := board.ZeroColor; c < board.NumColors; c++ {
		b := board.NewSquare(board.FileB, c.BackRank())
		g := board.NewSquare(board.FileG, c.BackRank())

		if a.destinies[b].PopCount() == 2 {
			if a.destinies[b] != a.destinies[g] {
				return false
			}
			origins &^= board.BitMask(b) | board.BitMask(g)
			knightParity := (1 + (a.destinies[b] & board.LightSquares).PopCount()) % 2
			a.updateKnightParity(c, knightParity)
			parity += knightParity
		}
	}

	// (2) Every other piece needs a unique destiny, and a missing pawn that may have
	// promoted spoils the argument.

	for bb := origins; bb != 0; bb &= bb - 1 {
		origin := bb.LastPopSquare()
		if a.IsSteady(origin) {
			origins &^= board.BitMask(origin)
			continue
		}
		if a.destinies[origin].PopCount() != 1 {
			return false
		}

		color := originColor(origin)
		if origin.Rank() == color.SecondRank() &&
			!a.isDefinitelyOnBoard(origin) &&
			a.reachable[origin]&board.BitRank(color.PromotionRank()) != 0 {
			return false
		}
	}

	for bb := origins; bb != 0; bb &= bb - 1 {
		origin := bb.LastPopSquare()
		p, ok := pathParity(a, origin, a.destinies[origin].LastPopSquare())
		if !ok {
			return false
		}
		parity += p
	}

	// (3) The last move was by White iff Black is to move.

	if a.board.SideToMove() == board.Black {
		parity++
	}

	expected := 0
	if a.duplex {
		expected = 1
	}
	if parity%2 != expected {
		a.result = lang.Some(Illegal)
	}

	return false
}

// pathParity returns the parity of the number of moves on any path from origin to
// target in the piece's mobility graph, via a 2-coloring of the component of target
// restricted to the origin's reachable squares. False if paths of both parities exist
// or no path exists at all.
func pathParity(a *Analysis, origin, target board.Square) (int, bool) {
	piece := startPieceOn(origin)
	color := originColor(origin)
	mobility := a.mobility[color][piece]
	reachable := a.reachable[origin]

	if !reachable.IsSet(target) {
		return 0, false
	}

	var even, odd board.Bitboard
	current, currentEven := board.BitMask(target), true

	for current != 0 {
		next := board.EmptyBitboard
		for bb := current; bb != 0; bb &= bb - 1 {
			node := bb.LastPopSquare()
			switch {
			case currentEven && odd.IsSet(node), !currentEven && even.IsSet(node):
				return 0, false // both parities reachable
			case even.IsSet(node) || odd.IsSet(node):
				continue
			}
			if currentEven {
				even |= board.BitMask(node)
			} else {
				odd |= board.BitMask(node)
			}
			next |= mobility.Predecessors(node) & reachable
		}
		current, currentEven = next, !currentEven
	}

	switch {
	case even.IsSet(origin):
		return 0, true
	case odd.IsSet(origin):
		return 1, true
	default:
		return 0, false
	}
}
