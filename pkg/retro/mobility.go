package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// MobilityGraph is a directed graph over the 64 squares for one colored piece type. An
// edge s→t means a piece of that kind can move from s to t in one move on an otherwise
// empty board; its weight is the number of captures the move requires (1 for pawn
// diagonal moves, 0 otherwise). Rules only ever remove edges, so every query result is
// monotone under refinement.
//
// The graph is represented as adjacency bitboards per node, with the weight-1 edges in
// a separate bitboard layer: constant-time edge removal and query at 1.5KiB per graph.
type MobilityGraph struct {
	out     [board.NumSquares]board.Bitboard // out[s]: targets of s
	in      [board.NumSquares]board.Bitboard // in[t]: sources into t
	capture [board.NumSquares]board.Bitboard // capture[s]: weight-1 subset of out[s]
}

const (
	// graphInfinity marks unreachable nodes in distance vectors.
	graphInfinity = 1 << 30

	// weightDelta is the cost bump used to probe whether a capture square is forced.
	weightDelta = 1000
)

// NewMobilityGraph returns the initial mobility graph for the given colored piece.
// Pawns have no nodes on their own back rank, quiet pushes of weight 0 and diagonal
// attacks of weight 1.
func NewMobilityGraph(piece board.Piece, color board.Color) *MobilityGraph {
	g := &MobilityGraph{}
	for src := board.ZeroSquare; src < board.NumSquares; src++ {
		if piece == board.Pawn {
			if src.Rank() == color.BackRank() {
				continue
			}
			for bb := board.PawnAttackboard(color, src); bb != 0; bb &= bb - 1 {
				target := bb.LastPopSquare()
				g.addEdge(src, target)
				g.capture[src] |= board.BitMask(target)
			}
		}
		for bb := movesOnEmptyBoard(piece, color, src); bb != 0; bb &= bb - 1 {
			g.addEdge(src, bb.LastPopSquare())
		}
	}
	return g
}

func (g *MobilityGraph) addEdge(src, target board.Square) {
	g.out[src] |= board.BitMask(target)
	g.in[target] |= board.BitMask(src)
}

// ExistsEdge returns true iff the edge between the given squares is present.
func (g *MobilityGraph) ExistsEdge(src, target board.Square) bool {
	return g.out[src].IsSet(target)
}

// EdgeCount returns the number of edges in the graph.
func (g *MobilityGraph) EdgeCount() int {
	ret := 0
	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		ret += g.out[s].PopCount()
	}
	return ret
}

// RemoveEdge removes the edge between the given squares, if present. Returns true iff
// the graph changed.
func (g *MobilityGraph) RemoveEdge(src, target board.Square) bool {
	if !g.out[src].IsSet(target) {
		return false
	}
	g.out[src] &^= board.BitMask(target)
	g.in[target] &^= board.BitMask(src)
	g.capture[src] &^= board.BitMask(target)
	return true
}

// RemoveOutgoing removes all edges leaving the given square. Returns true iff the graph
// changed.
func (g *MobilityGraph) RemoveOutgoing(src board.Square) bool {
	if g.out[src] == 0 {
		return false
	}
	for bb := g.out[src]; bb != 0; bb &= bb - 1 {
		g.in[bb.LastPopSquare()] &^= board.BitMask(src)
	}
	g.out[src] = 0
	g.capture[src] = 0
	return true
}

// RemoveIncoming removes all edges into the given square. Returns true iff the graph
// changed.
func (g *MobilityGraph) RemoveIncoming(target board.Square) bool {
	if g.in[target] == 0 {
		return false
	}
	for bb := g.in[target]; bb != 0; bb &= bb - 1 {
		src := bb.LastPopSquare()
		g.out[src] &^= board.BitMask(target)
		g.capture[src] &^= board.BitMask(target)
	}
	g.in[target] = 0
	return true
}

// RemoveEdgesThrough removes every edge u→v whose movement segment passes strictly
// through the given square. Returns true iff the graph changed.
func (g *MobilityGraph) RemoveEdgesThrough(sq board.Square) bool {
	progress := false
	for bb := board.RookRays(sq) | board.BishopRays(sq); bb != 0; bb &= bb - 1 {
		src := bb.LastPopSquare()
		for tb := board.Line(sq, src) &^ board.BitMask(sq) &^ board.BitMask(src); tb != 0; tb &= tb - 1 {
			target := tb.LastPopSquare()
			if board.Between(src, target).IsSet(sq) {
				progress = g.RemoveEdge(src, target) || progress
			}
		}
	}
	return progress
}

// RemoveEdgesThroughPair removes every edge whose movement segment, endpoints included,
// contains both given squares. The direct edge sq1→sq2 is removed as well. Returns true
// iff the graph changed.
func (g *MobilityGraph) RemoveEdgesThroughPair(sq1, sq2 board.Square) bool {
	progress := false
	squares := board.BitMask(sq1) | board.BitMask(sq2)
	for sb := board.Line(sq1, sq2); sb != 0; sb &= sb - 1 {
		src := sb.LastPopSquare()
		for tb := board.Line(sq1, sq2) &^ board.BitMask(src); tb != 0; tb &= tb - 1 {
			target := tb.LastPopSquare()
			segment := board.Between(src, target) | board.BitMask(src) | board.BitMask(target)
			if segment&squares == squares {
				progress = g.RemoveEdge(src, target) || progress
			}
		}
	}
	return progress
}

// Predecessors returns the incoming neighbors of the given square.
func (g *MobilityGraph) Predecessors(target board.Square) board.Bitboard {
	return g.in[target]
}

// ReachableFrom returns all squares reachable from the given square, itself included.
func (g *MobilityGraph) ReachableFrom(src board.Square) board.Bitboard {
	reached := board.BitMask(src)
	frontier := reached
	for frontier != 0 {
		next := board.EmptyBitboard
		for bb := frontier; bb != 0; bb &= bb - 1 {
			next |= g.out[bb.LastPopSquare()]
		}
		frontier = next &^ reached
		reached |= next
	}
	return reached
}

// Distance returns the minimum number of captures needed to move from src to target.
// False if the target is unreachable.
func (g *MobilityGraph) Distance(src, target board.Square) (int, bool) {
	dist, _ := g.shortest(src, board.NumSquares)
	if dist[target] >= graphInfinity {
		return 0, false
	}
	return dist[target], true
}

// DistancesFrom returns the 64-entry vector of minimum capture counts from the given
// square, with unreachable squares marked by a value of at least graphInfinity.
func (g *MobilityGraph) DistancesFrom(src board.Square) [board.NumSquares]int {
	dist, _ := g.shortest(src, board.NumSquares)
	return dist
}

// ForcedCaptures returns the squares that every minimum-capture path from src to target
// must traverse with a capture, along with the minimum capture count. False if target
// is unreachable.
//
// A square n on one shortest path is forced if bumping the weight of every capturing
// edge into n re-runs to exactly the bumped distance: no cheaper detour exists.
func (g *MobilityGraph) ForcedCaptures(src, target board.Square) (board.Bitboard, int, bool) {
	dist, parent := g.shortest(src, board.NumSquares)
	if dist[target] >= graphInfinity {
		return 0, 0, false
	}
	d := dist[target]

	forced := board.EmptyBitboard
	for n := target; n != src; n = parent[n] {
		bumped, _ := g.shortest(src, n)
		if bumped[target] == d+weightDelta {
			forced |= board.BitMask(n)
		}
	}
	return forced, d, true
}

// shortest runs Dijkstra from src. Capture edges into the bumped square (NumSquares for
// none) cost weightDelta extra. Returns the distance vector and a parent vector for
// path extraction.
func (g *MobilityGraph) shortest(src, bumped board.Square) ([board.NumSquares]int, [board.NumSquares]board.Square) {
	var dist [board.NumSquares]int
	var parent [board.NumSquares]board.Square
	for i := range dist {
		dist[i] = graphInfinity
		parent[i] = board.NumSquares
	}
	dist[src] = 0

	visited := board.EmptyBitboard
	for {
		u, best := board.NumSquares, graphInfinity
		for s := board.ZeroSquare; s < board.NumSquares; s++ {
			if !visited.IsSet(s) && dist[s] < best {
				u, best = s, dist[s]
			}
		}
		if u == board.NumSquares {
			return dist, parent
		}
		visited |= board.BitMask(u)

		for bb := g.out[u]; bb != 0; bb &= bb - 1 {
			t := bb.LastPopSquare()
			w := 0
			if g.capture[u].IsSet(t) {
				w = 1
				if t == bumped {
					w += weightDelta
				}
			}
			if dist[u]+w < dist[t] {
				dist[t] = dist[u] + w
				parent[t] = u
			}
		}
	}
}
