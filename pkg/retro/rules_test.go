package retro

import (
	"testing"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, fen string) RetractableBoard {
	t.Helper()
	b, err := ParseRetractableBoard(fen)
	require.NoError(t, err)
	return b
}

func TestIllegalMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		{"4k3/8/8/8/4N3/8/QQQQQQQQ/3QK3 b - -", false},
		{"4k3/8/8/8/4P3/8/QQQQQQQQ/3QK3 b - -", true},
		{"4k3/8/8/8/3NNN2/8/QQQQQQQQ/3QK3 b - -", true},
		{"rnbqkbnr/ppppppp1/8/2b2b2/8/8/8/K7 w - -", true},
		{"rnbqkbnr/1pppppp1/8/2b2b2/8/8/8/K7 w - -", false},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBRR w - -", true},
		{"rnbqkbnr/pppppppp/8/8/8/8/1PPPPPPP/RNBQKBRR w - -", false},
		{"4k3/8/8/8/8/2B1B1B1/1B1B1B1B/B1BKB3 b - -", true},
		{"4k3/8/8/8/8/2B1B1B1/1B1B1B1B/B1BK1B2 b - -", false},
	}

	for _, tt := range tests {
		b := parse(t, tt.fen)
		assert.Equal(t, tt.expected, IllegalMaterial(&b), "material of %v", tt.fen)
	}
}

func TestSteadyPieces(t *testing.T) {
	tests := []struct {
		fen      string
		assumed  board.Bitboard
		expected board.Bitboard
	}{
		{
			"r2qkb2/8/8/6p1/6P1/8/1P1P4/2B1K2R w q -",
			0,
			board.BitMaskAll(board.C1, board.B2, board.D2, board.A8, board.E8),
		},
		{
			"2bqkb2/1pppppp1/p6p/8/4P3/2P5/8/R3K2R w Q -",
			0,
			board.BitMaskAll(board.A1, board.E1, board.B7, board.C7, board.D7, board.E7,
				board.F7, board.G7, board.C8, board.D8, board.E8, board.F8),
		},
		{
			"2bqkb2/1ppppp2/8/8/8/8/4P1P1/R3K2R w - -",
			0,
			board.BitMaskAll(board.E2, board.G2, board.B7, board.C7, board.D7, board.E7,
				board.F7, board.C8),
		},
		{
			"1n2k3/8/8/8/8/8/6P1/4K2B w - -",
			board.BitMaskAll(board.A6, board.C6, board.D7),
			board.BitMaskAll(board.G2, board.H1, board.B8),
		},
		{
			"k7/8/8/8/8/8/4P1PP/K5NR w - -",
			board.BitMaskAll(board.F3, board.H3),
			board.BitMaskAll(board.G1, board.H1, board.E2, board.G2, board.H2),
		},
	}

	for _, tt := range tests {
		b := parse(t, tt.fen)
		assert.Equal(t, tt.expected|tt.assumed, steadyPieces(&b, tt.assumed), "steady of %v", tt.fen)
	}
}

func TestUnretractablePieces(t *testing.T) {
	tests := []struct {
		fen      string
		expected board.Bitboard
	}{
		{
			"4k3/8/8/8/8/4P3/1K1PRP2/4b3 b - -",
			board.BitMaskAll(board.E1, board.D2, board.E2, board.F2, board.E3),
		},
		{
			"4k3/8/8/8/8/1P6/bPP5/1b2K3 b - -",
			board.BitMaskAll(board.B1, board.A2, board.B2, board.C2, board.B3),
		},
		{
			"5bbq/4prkb/5prp/6p1/8/8/8/4K3 b - -",
			board.BitMaskAll(board.G5, board.F6, board.G6, board.H6, board.E7, board.F7,
				board.G7, board.H7, board.F8, board.G8, board.H8),
		},
		{
			"4k2B/6pr/7p/8/8/8/8/4K3 b - -",
			board.BitMaskAll(board.H6, board.G7, board.H7, board.H8),
		},
	}

	for _, tt := range tests {
		b := parse(t, tt.fen)
		assert.Equal(t, tt.expected, unretractablePieces(&b, 0), "unretractable of %v", tt.fen)
	}
}

func TestClosedFiles(t *testing.T) {
	tests := []struct {
		fen      string
		expected []board.File
	}{
		{
			"4k3/2p5/PPp1Pp2/1P3P2/pp1p1P2/P2p4/3P4/4K3 w - -",
			[]board.File{board.FileA, board.FileD, board.FileF},
		},
		{
			"4k3/3p4/PP2Pp1P/2P3P1/pp2p3/2p2Ppp/3P4/4K3 w - -",
			[]board.File{board.FileD, board.FileF},
		},
		{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - -",
			[]board.File{board.FileA, board.FileB, board.FileC, board.FileD,
				board.FileE, board.FileF, board.FileG, board.FileH},
		},
	}

	for _, tt := range tests {
		b := parse(t, tt.fen)
		got := closedFiles(&b)
		assert.ElementsMatch(t, tt.expected, got, "closed files of %v", tt.fen)
	}
}

func TestCapturesBoundsRule(t *testing.T) {
	// White is missing 10 pieces, Black is missing 8.
	b := parse(t, "rnbqkbnr/8/8/8/8/8/8/1NBQKBN1 w - -")
	a := NewAnalysis(b)
	r := &capturesBoundsRule{}

	bounds := func(sq board.Square) (int, int) {
		return a.capturesLower[sq], a.capturesUpper[sq]
	}
	check := func(sq board.Square, lower, upper int) {
		t.Helper()
		l, u := bounds(sq)
		assert.Equal(t, lower, l, "lower of %v", sq)
		assert.Equal(t, upper, u, "upper of %v", sq)
	}

	r.apply(a)

	check(board.A1, 0, 8)
	check(board.G8, 0, 10)

	// Steady pieces never captured.
	a.updateSteady(board.BitMaskAll(board.A1, board.G8))
	r.apply(a)

	check(board.A1, 0, 0)
	check(board.G8, 0, 0)
	check(board.A2, 0, 8)
	check(board.D8, 0, 10)

	// Known lower bounds shrink everyone else's upper bound.
	a.updateCapturesLowerBound(board.B1, 2)
	a.updateCapturesLowerBound(board.B8, 3)
	r.apply(a)

	check(board.B1, 2, 8)
	check(board.B8, 3, 10)
	check(board.G1, 0, 6)
	check(board.D8, 0, 7)

	a.updateCapturesLowerBound(board.B1, 7)
	a.updateCapturesLowerBound(board.H8, 5)
	r.apply(a)

	check(board.B1, 7, 8)
	check(board.B8, 3, 5)
	check(board.H8, 5, 7)
	check(board.G1, 0, 1)
	check(board.D8, 0, 2)

	_, decided := a.result.V()
	assert.False(t, decided)

	// Pushing past the limit proves illegality.
	a.updateCapturesLowerBound(board.F8, 3)
	r.apply(a)

	v, decided := a.result.V()
	assert.True(t, decided)
	assert.Equal(t, Illegal, v)
}

func TestRefineOriginsRule(t *testing.T) {
	a := NewAnalysis(InitialBoard())
	r := &refineOriginsRule{}

	r.apply(a)

	// No information on destinies yet: every origin has full candidates.
	assert.Equal(t, board.FullBitboard, a.destinies[board.E7])

	// Learn that E1 is the only candidate origin of the piece on A1.
	a.updateOrigins(board.A1, board.BitMaskAll(board.E1))
	r.apply(a)

	assert.Equal(t, board.BitMaskAll(board.A1), a.destinies[board.E1])
	assert.Equal(t, board.FullBitboard, a.destinies[board.E7])
}

func TestSteadyMobilityRule(t *testing.T) {
	a := NewAnalysis(InitialBoard())
	(&originsRule{}).apply(a)
	(&mobilityRule{}).apply(a)
	(&steadyMobilityRule{}).apply(a)

	// Any square is reachable from H1 for a white rook.
	assert.Equal(t, 0, distanceToTarget(a, board.H1, board.H8, board.Rook, board.White))

	// A steady H7 is no obstacle: the rook goes around.
	a.updateSteady(board.BitMaskAll(board.H7))
	(&steadyMobilityRule{}).apply(a)
	(&mobilityRule{}).apply(a)
	assert.Equal(t, 0, distanceToTarget(a, board.H1, board.H8, board.Rook, board.White))

	// A fully steady 7th rank seals the 8th off.
	a.updateSteady(board.BitRank(board.Rank7))
	(&steadyMobilityRule{}).apply(a)
	(&mobilityRule{}).apply(a)
	assert.Equal(t, 16, distanceToTarget(a, board.H1, board.H8, board.Rook, board.White))
}

func TestSteadyKingMobility(t *testing.T) {
	a := NewAnalysis(InitialBoard())
	(&originsRule{}).apply(a)

	// Learn that the black king is steady.
	a.updateSteady(board.BitMaskAll(board.E8))
	(&steadyMobilityRule{}).apply(a)

	// A white pawn can still go E7 -> F8: quiet moves never checked from E7.
	assert.True(t, a.mobility[board.White][board.Pawn].ExistsEdge(board.E7, board.F8))

	// But not D7 -> C8: a pawn on D7 would have been checking.
	assert.False(t, a.mobility[board.White][board.Pawn].ExistsEdge(board.D7, board.C8))

	// A white knight can move to F6, but never from F6.
	assert.True(t, a.mobility[board.White][board.Knight].ExistsEdge(board.G4, board.F6))
	assert.False(t, a.mobility[board.White][board.Knight].ExistsEdge(board.F6, board.G4))

	// Black knights can do both.
	assert.True(t, a.mobility[board.Black][board.Knight].ExistsEdge(board.G4, board.F6))
	assert.True(t, a.mobility[board.Black][board.Knight].ExistsEdge(board.F6, board.G4))
}

func TestPawnOn3rdRankRule(t *testing.T) {
	b := parse(t, "rnbqkbnr/pppppppp/8/8/8/2P5/P1PPPPPP/RNBQKBNR w KQkq -")
	a := NewAnalysis(b)
	r := &pawnOn3rdRankRule{}

	r.apply(a)

	// The connection between A1 and H8 is enabled for white bishops.
	assert.True(t, a.mobility[board.White][board.Bishop].ExistsEdge(board.A1, board.H8))

	// Learn that B2 is the only origin of the pawn on C3.
	a.updateOrigins(board.C3, board.BitMaskAll(board.B2))
	r.apply(a)

	assert.False(t, a.mobility[board.White][board.Bishop].ExistsEdge(board.A1, board.H8))
	assert.False(t, a.mobility[board.White][board.Bishop].ExistsEdge(board.B2, board.C3))
	assert.False(t, a.mobility[board.White][board.Bishop].ExistsEdge(board.B2, board.C4))
	assert.False(t, a.mobility[board.White][board.Bishop].ExistsEdge(board.A1, board.C3))

	// For a white pawn the connection B2 -> C3 stays enabled.
	assert.True(t, a.mobility[board.White][board.Pawn].ExistsEdge(board.B2, board.C3))

	// The capturing arrival means the black king never entered C3.
	assert.False(t, a.mobility[board.Black][board.King].ExistsEdge(board.C4, board.C3))
}

func TestPawnOn2ndRankRule(t *testing.T) {
	b := parse(t, "rnbqkbnr/1pp1pp2/8/8/8/2PP4/P1P3PP/RNBQKBNR w KQkq -")
	a := NewAnalysis(b)

	(&pawnOn2ndRankRule{}).apply(a)

	assert.True(t, a.mobility[board.White][board.King].ExistsEdge(board.H5, board.H6))
	assert.False(t, a.mobility[board.White][board.King].ExistsEdge(board.H5, board.G6))
	assert.False(t, a.mobility[board.White][board.King].ExistsEdge(board.B5, board.A6))

	assert.True(t, a.mobility[board.Black][board.King].ExistsEdge(board.B4, board.A3))
	assert.True(t, a.mobility[board.Black][board.King].ExistsEdge(board.F4, board.E3))
	assert.False(t, a.mobility[board.Black][board.King].ExistsEdge(board.E3, board.D3))
}

func TestPathParity(t *testing.T) {
	a := NewAnalysis(InitialBoard())

	// White pawns.
	assertParity(t, a, board.C2, board.C3, 1)
	assertParity(t, a, board.C2, board.D3, 1)
	assertParityUnknown(t, a, board.C2, board.C4)

	// Black pawns.
	assertParityUnknown(t, a, board.C7, board.C2)

	// Knights: the knight graph is bipartite by square color.
	assertParity(t, a, board.B1, board.A1, 1)
	assertParity(t, a, board.G8, board.E4, 0)

	// Bishops reach D7 from C8 in either parity.
	assertParityUnknown(t, a, board.C8, board.D7)
}

func assertParity(t *testing.T, a *Analysis, origin, target board.Square, expected int) {
	t.Helper()
	p, ok := pathParity(a, origin, target)
	require.True(t, ok, "parity of %v->%v", origin, target)
	assert.Equal(t, expected, p, "parity of %v->%v", origin, target)
}

func assertParityUnknown(t *testing.T, a *Analysis, origin, target board.Square) {
	t.Helper()
	_, ok := pathParity(a, origin, target)
	assert.False(t, ok, "parity of %v->%v", origin, target)
}
