package retro

import (
	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// tombsRule matches known capture squares with the enemy pieces destroyed there. A
// tomb with no candidate victim proves illegality. Tombs are then combined with the
// on-board enemy pieces whose candidate origins lie fully inside the missing
// candidates ("finals"), and k-group reasoning over the finals pins down destinies.
type tombsRule struct {
	destiniesCnt int
	missingCnt   int
	capturesCnt  int
}

func (r *tombsRule) update(a *Analysis) {
	r.destiniesCnt = a.cnt.destinies
	r.missingCnt = a.cnt.missing
	r.capturesCnt = a.cnt.captures
}

func (r *tombsRule) isApplicable(a *Analysis) bool {
	return r.destiniesCnt != a.cnt.destinies ||
		r.missingCnt != a.cnt.missing ||
		r.capturesCnt != a.cnt.captures
}

func (r *tombsRule) apply(a *Analysis) bool {
	progress := false

	for c := board.ZeroColor; c < board.NumColors; c++ {
		victim := c.Opponent()

		// Collect the tombs dug by color c, with the candidate victims of each.
		var finals []board.Square
		var victims [board.NumSquares]board.Bitboard
		for ob := colorOrigins[c]; ob != 0; ob &= ob - 1 {
			origin := ob.LastPopSquare()
			for tb := a.captures[origin]; tb != 0; tb &= tb - 1 {
				tomb := tb.LastPopSquare()
				victims[len(finals)] = missingWithCandidateDestiny(a, victim, tomb)
				finals = append(finals, tomb)
			}
		}

		// A tomb no victim can account for proves illegality.
		for i := range finals {
			if victims[i] == 0 {
				a.result = lang.Some(Illegal)
			}
		}

		// Extend the finals with on-board enemy pieces whose origins lie fully inside
		// the missing candidates: they compete for the same origins.
		for bb := a.board.ColorBitboard(victim); bb != 0; bb &= bb - 1 {
			sq := bb.LastPopSquare()
			if len(finals) >= int(board.NumSquares) {
				break
			}
			if a.origins[sq]&a.missing[victim].Candidates() == a.origins[sq] {
				victims[len(finals)] = a.origins[sq]
				finals = append(finals, sq)
			}
		}

		// k-group reasoning over the finals: a group of k finals with k combined
		// candidate origins fixes the destinies of those origins.
		for k := 1; k < len(finals); k++ {
			iter := lowBits(len(finals))
			for {
				group, remaining, ok := findKGroup(k, &victims, iter)
				if !ok {
					break
				}
				groupIndices := iter &^ remaining
				iter = remaining

				destinies := board.EmptyBitboard
				for ib := groupIndices; ib != 0; ib &= ib - 1 {
					destinies |= board.BitMask(finals[ib.LastPopSquare()])
				}
				for ob := group; ob != 0; ob &= ob - 1 {
					progress = a.updateDestinies(ob.LastPopSquare(), destinies) || progress
				}
			}
		}
	}

	return progress
}

// missingWithCandidateDestiny returns the origin squares of the given color's missing
// pieces whose destiny may have been the given square.
func missingWithCandidateDestiny(a *Analysis, c board.Color, target board.Square) board.Bitboard {
	candidates := board.EmptyBitboard
	for bb := a.missing[c].All(); bb != 0; bb &= bb - 1 {
		origin := bb.LastPopSquare()
		if a.destinies[origin].IsSet(target) {
			candidates |= board.BitMask(origin)
		}
	}
	return candidates
}

// lowBits returns a bitboard with the lowest n bits set, indexing into a finals list.
func lowBits(n int) board.Bitboard {
	if n >= 64 {
		return board.FullBitboard
	}
	return board.Bitboard(1<<n) - 1
}
