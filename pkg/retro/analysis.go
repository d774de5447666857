package retro

import (
	"errors"
	"fmt"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Legality is the verdict of an analysis.
type Legality uint8

const (
	// Legal positions are reachable from the starting array via legal moves.
	Legal Legality = iota
	// Illegal positions can never occur in an actual game.
	Illegal
)

func (l Legality) String() string {
	switch l {
	case Legal:
		return "legal"
	case Illegal:
		return "illegal"
	default:
		return "?"
	}
}

// ErrNotOriginSquare is returned by accessors that require a starting-array square when
// given a square outside ranks 1, 2, 7 and 8.
var ErrNotOriginSquare = errors.New("not an origin square")

// unreachableDistance marks impossible pawn routes in the capture-distance tables.
const unreachableDistance = 16

// Event records a forced past event derived from the pawn structure: the piece
// originally on Confined can only have left its home region after the pawn structure
// opened the Passage square.
type Event struct {
	Passage  board.Square
	Confined board.Square
}

// counters tracks a change counter per analysis field. A counter advances whenever its
// field is refined, which is what makes rules cheaply re-applicable.
type counters struct {
	steady                 int
	origins                int
	destinies              int
	reachable              int
	reachableFromOrigin    int
	reachableFromPromotion int
	pawnCaptureDistances   int
	pawnForcedCaptures     int
	captures               int
	capturesBounds         int
	missing                int
	mobility               int
	events                 int
}

// Analysis contains all the information derived about the legality of one position.
// Every field is monotone under refinement: candidate sets only shrink, certainty sets
// only grow, bounds only tighten, mobility edges only vanish. An analysis lives for a
// single Analyze call and is frozen when returned.
type Analysis struct {
	board RetractableBoard

	// steady holds the squares of pieces that have provably never moved.
	steady board.Bitboard

	// origins[s] holds the starting squares the piece currently on s may have had.
	origins [board.NumSquares]board.Bitboard

	// destinies[o] holds the squares where the piece that started on o may have ended
	// the game, captured or still standing.
	destinies [board.NumSquares]board.Bitboard

	// reachable[o] holds the squares the piece that started on o may ever have
	// occupied.
	reachable [board.NumSquares]board.Bitboard

	// reachableFromOrigin[c][f] holds the squares reachable by the officer starting on
	// file f of color c's back rank.
	reachableFromOrigin [board.NumColors][board.NumFiles]board.Bitboard

	// reachableFromPromotion[c][k][f] holds the squares reachable by a piece of color
	// c that promoted on file f into the promotion kind with index k.
	reachableFromPromotion [board.NumColors][4][board.NumFiles]board.Bitboard

	// pawnCaptureDistances[c][f][t] holds the minimum captures for the pawn starting
	// on file f to reach t as a pawn. 16 means unreachable.
	pawnCaptureDistances [board.NumColors][board.NumFiles][board.NumSquares]uint8

	// pawnForcedCaptures[c][f][t] holds the squares where that pawn must capture on
	// any minimum-capture route to t.
	pawnForcedCaptures [board.NumColors][board.NumFiles][board.NumSquares]board.Bitboard

	// captures[o] holds the tombs of o: squares where the piece from o certainly
	// captured an enemy.
	captures [board.NumSquares]board.Bitboard

	// capturesLower/capturesUpper[o] bound the captures performed by the piece from o.
	capturesLower [board.NumSquares]int
	capturesUpper [board.NumSquares]int

	// missing[c] holds the origin squares of color c's pieces no longer on the board.
	missing [board.NumColors]UncertainSet

	// mobility holds the 12 per-colored-piece mobility graphs.
	mobility [board.NumColors][board.NumPieces]*MobilityGraph

	// knightParity[c] holds the parity of moves made by color c's two original
	// knights, once determined.
	knightParity [board.NumColors]lang.Optional[int]

	// events log forced past events derived by the Events rule.
	events []Event

	cnt    counters
	duplex bool
	result lang.Optional[Legality]
}

// NewAnalysis returns a fresh analysis of the given board, with every field at its
// weakest value.
func NewAnalysis(b RetractableBoard) *Analysis {
	a := &Analysis{
		board: b,
		cnt: counters{
			steady: 1, origins: 1, destinies: 1, reachable: 1,
			reachableFromOrigin: 1, reachableFromPromotion: 1,
			pawnCaptureDistances: 1, pawnForcedCaptures: 1,
			captures: 1, capturesBounds: 1, missing: 1, mobility: 1, events: 1,
		},
	}

	for i := range a.origins {
		a.origins[i] = board.FullBitboard
		a.destinies[i] = board.FullBitboard
		a.reachable[i] = board.FullBitboard
		a.capturesUpper[i] = 15
	}
	for c := board.ZeroColor; c < board.NumColors; c++ {
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			a.reachableFromOrigin[c][f] = board.FullBitboard
			for k := 0; k < 4; k++ {
				a.reachableFromPromotion[c][k][f] = board.FullBitboard
			}
		}
		size := 16 - b.ColorBitboard(c).PopCount()
		if size < 0 {
			size = 0
		}
		a.missing[c] = NewUncertainSet(size)
		for _, p := range board.Pieces {
			a.mobility[c][p] = NewMobilityGraph(p, c)
		}
	}
	return a
}

// Board returns the position under analysis.
func (a *Analysis) Board() RetractableBoard {
	return a.board
}

// Result returns the verdict: Illegal once any contradiction was found, absent while
// undetermined.
func (a *Analysis) Result() lang.Optional[Legality] {
	return a.result
}

// IsSteady returns true iff the piece on the given square has provably never moved.
func (a *Analysis) IsSteady(sq board.Square) bool {
	return a.steady.IsSet(sq)
}

// Origins returns the candidate starting squares of the piece on the given square.
func (a *Analysis) Origins(sq board.Square) board.Bitboard {
	return a.origins[sq]
}

// Destinies returns the candidate final squares of the piece that started on the given
// square.
func (a *Analysis) Destinies(sq board.Square) board.Bitboard {
	return a.destinies[sq]
}

// Reachable returns the squares the piece that started on the given square may have
// occupied at some point.
func (a *Analysis) Reachable(sq board.Square) board.Bitboard {
	return a.reachable[sq]
}

// CapturesLowerBound returns the proven minimum number of captures by the piece that
// started on the given square.
func (a *Analysis) CapturesLowerBound(sq board.Square) int {
	return a.capturesLower[sq]
}

// CapturesUpperBound returns the proven maximum number of captures by the piece that
// started on the given square.
func (a *Analysis) CapturesUpperBound(sq board.Square) int {
	return a.capturesUpper[sq]
}

// CapturesBounds returns the inclusive bounds on the captures performed by the piece
// from the given origin. ErrNotOriginSquare if the square is not part of the starting
// array.
func (a *Analysis) CapturesBounds(o board.Square) (int, int, error) {
	if !allOrigins.IsSet(o) {
		return 0, 0, fmt.Errorf("captures bounds of %v: %w", o, ErrNotOriginSquare)
	}
	return a.capturesLower[o], a.capturesUpper[o], nil
}

// Tombs returns the squares where the piece from the given origin certainly captured
// an enemy. ErrNotOriginSquare if the square is not part of the starting array.
func (a *Analysis) Tombs(o board.Square) (board.Bitboard, error) {
	if !allOrigins.IsSet(o) {
		return 0, fmt.Errorf("tombs of %v: %w", o, ErrNotOriginSquare)
	}
	return a.captures[o], nil
}

// ReachableFromOrigin returns the squares reachable by the officer starting on the
// given file of the given color's back rank.
func (a *Analysis) ReachableFromOrigin(c board.Color, f board.File) board.Bitboard {
	return a.reachableFromOrigin[c][f]
}

// ReachableFromPromotion returns the squares reachable by a piece of the given color
// promoted into the given kind on the given file.
func (a *Analysis) ReachableFromPromotion(c board.Color, piece board.Piece, f board.File) board.Bitboard {
	return a.reachableFromPromotion[c][promIndex(piece)][f]
}

// PawnCaptureDistances returns the minimum captures for the given color's pawn from
// the given file to reach the target as a pawn. 16 if unreachable.
func (a *Analysis) PawnCaptureDistances(c board.Color, f board.File, target board.Square) int {
	return int(a.pawnCaptureDistances[c][f][target])
}

// PawnForcedCaptures returns the squares where the given color's pawn from the given
// file must capture on any minimum-capture route to the target.
func (a *Analysis) PawnForcedCaptures(c board.Color, f board.File, target board.Square) board.Bitboard {
	return a.pawnForcedCaptures[c][f][target]
}

// Missing returns the uncertain set of the given color's captured pieces, identified
// by their origin squares.
func (a *Analysis) Missing(c board.Color) UncertainSet {
	return a.missing[c]
}

// KnightParity returns the parity of moves made by the given color's two original
// knights, if determined.
func (a *Analysis) KnightParity(c board.Color) lang.Optional[int] {
	return a.knightParity[c]
}

// Events returns the forced past events derived so far.
func (a *Analysis) Events() []Event {
	return a.events
}

// Mobility returns the mobility graph of the given colored piece.
func (a *Analysis) Mobility(c board.Color, p board.Piece) *MobilityGraph {
	return a.mobility[c][p]
}

// pieceTypeOn returns the piece type on the given square. Panics if empty: internal
// callers only consult occupied squares.
func (a *Analysis) pieceTypeOn(sq board.Square) board.Piece {
	p, ok := a.board.PieceOn(sq)
	if !ok {
		panic(fmt.Sprintf("square %v is empty", sq))
	}
	return p
}

// pieceColorOn returns the piece color on the given square. Panics if empty: internal
// callers only consult occupied squares.
func (a *Analysis) pieceColorOn(sq board.Square) board.Color {
	c, ok := a.board.ColorOn(sq)
	if !ok {
		panic(fmt.Sprintf("square %v is empty", sq))
	}
	return c
}

// isDefinitelyOnBoard returns true iff the piece that started on the given origin is
// certainly still standing.
func (a *Analysis) isDefinitelyOnBoard(origin board.Square) bool {
	return !a.missing[originColor(origin)].All().IsSet(origin)
}

// The update methods below intersect-in (shrinking fields) or union-in (growing
// fields) the given value, bump the field counter on change, and return whether the
// call changed anything. A shrinking field that empties where non-emptiness is
// required flips the result to Illegal.

func (a *Analysis) updateSteady(value board.Bitboard) bool {
	if a.steady|value == a.steady {
		return false
	}
	a.steady |= value
	a.cnt.steady++
	return true
}

func (a *Analysis) updateOrigins(sq board.Square, value board.Bitboard) bool {
	next := a.origins[sq] & value
	if next == a.origins[sq] {
		return false
	}
	a.origins[sq] = next
	a.cnt.origins++
	if next == 0 {
		a.result = lang.Some(Illegal)
	}
	return true
}

func (a *Analysis) updateDestinies(sq board.Square, value board.Bitboard) bool {
	next := a.destinies[sq] & value
	if next == a.destinies[sq] {
		return false
	}
	a.destinies[sq] = next
	a.cnt.destinies++
	if next == 0 {
		a.result = lang.Some(Illegal)
	}
	return true
}

func (a *Analysis) updateReachable(sq board.Square, value board.Bitboard) bool {
	next := a.reachable[sq] & value
	if next == a.reachable[sq] {
		return false
	}
	a.reachable[sq] = next
	a.cnt.reachable++
	return true
}

func (a *Analysis) updateReachableFromOrigin(c board.Color, f board.File, value board.Bitboard) bool {
	next := a.reachableFromOrigin[c][f] & value
	if next == a.reachableFromOrigin[c][f] {
		return false
	}
	a.reachableFromOrigin[c][f] = next
	a.cnt.reachableFromOrigin++
	return true
}

func (a *Analysis) updateReachableFromPromotion(c board.Color, piece board.Piece, f board.File, value board.Bitboard) bool {
	k := promIndex(piece)
	next := a.reachableFromPromotion[c][k][f] & value
	if next == a.reachableFromPromotion[c][k][f] {
		return false
	}
	a.reachableFromPromotion[c][k][f] = next
	a.cnt.reachableFromPromotion++
	return true
}

func (a *Analysis) updatePawnCaptureDistance(c board.Color, f board.File, target board.Square, value uint8) bool {
	if value > unreachableDistance {
		value = unreachableDistance
	}
	if value <= a.pawnCaptureDistances[c][f][target] {
		return false
	}
	a.pawnCaptureDistances[c][f][target] = value
	a.cnt.pawnCaptureDistances++
	return true
}

func (a *Analysis) updatePawnForcedCaptures(c board.Color, f board.File, target board.Square, value board.Bitboard) bool {
	next := a.pawnForcedCaptures[c][f][target] | value
	if next == a.pawnForcedCaptures[c][f][target] {
		return false
	}
	a.pawnForcedCaptures[c][f][target] = next
	a.cnt.pawnForcedCaptures++
	return true
}

func (a *Analysis) updateCaptures(sq board.Square, value board.Bitboard) bool {
	next := a.captures[sq] | value
	if next == a.captures[sq] {
		return false
	}
	a.captures[sq] = next
	a.cnt.captures++
	return true
}

func (a *Analysis) updateCapturesLowerBound(sq board.Square, bound int) bool {
	if a.capturesLower[sq] >= bound {
		return false
	}
	a.capturesLower[sq] = bound
	a.cnt.capturesBounds++
	return true
}

func (a *Analysis) updateCapturesUpperBound(sq board.Square, bound int) bool {
	if a.capturesUpper[sq] <= bound {
		return false
	}
	a.capturesUpper[sq] = bound
	a.cnt.capturesBounds++
	return true
}

func (a *Analysis) updateCertainlyMissing(c board.Color, value board.Bitboard) bool {
	if !a.missing[c].Add(value) {
		return false
	}
	a.cnt.missing++
	return true
}

func (a *Analysis) updateCertainlyNotMissing(c board.Color, value board.Bitboard) bool {
	if !a.missing[c].Remove(value) {
		return false
	}
	a.cnt.missing++
	return true
}

func (a *Analysis) updateKnightParity(c board.Color, parity int) bool {
	if _, ok := a.knightParity[c].V(); ok {
		return false
	}
	a.knightParity[c] = lang.Some(parity)
	return true
}

func (a *Analysis) addEvent(e Event) bool {
	for _, old := range a.events {
		if old == e {
			return false
		}
	}
	a.events = append(a.events, e)
	a.cnt.events++
	return true
}

func (a *Analysis) removeOutgoingEdges(piece board.Piece, c board.Color, sq board.Square) bool {
	if !a.mobility[c][piece].RemoveOutgoing(sq) {
		return false
	}
	a.cnt.mobility++
	return true
}

func (a *Analysis) removeIncomingEdges(piece board.Piece, c board.Color, sq board.Square) bool {
	if !a.mobility[c][piece].RemoveIncoming(sq) {
		return false
	}
	a.cnt.mobility++
	return true
}

func (a *Analysis) removeEdge(piece board.Piece, c board.Color, src, target board.Square) bool {
	if !a.mobility[c][piece].RemoveEdge(src, target) {
		return false
	}
	a.cnt.mobility++
	return true
}

func (a *Analysis) removeEdgesThrough(piece board.Piece, c board.Color, sq board.Square) bool {
	if !a.mobility[c][piece].RemoveEdgesThrough(sq) {
		return false
	}
	a.cnt.mobility++
	return true
}

func (a *Analysis) removeEdgesThroughPair(piece board.Piece, c board.Color, sq1, sq2 board.Square) bool {
	if !a.mobility[c][piece].RemoveEdgesThroughPair(sq1, sq2) {
		return false
	}
	a.cnt.mobility++
	return true
}

func (a *Analysis) String() string {
	verdict := "undetermined"
	if v, ok := a.result.V(); ok {
		verdict = v.String()
	}
	return fmt.Sprintf("analysis{board=%v, steady=%v, result=%v}", &a.board, a.steady, verdict)
}
