package board_test

import (
	"sort"
	"testing"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/herohde/hindsight/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, str string) (*board.Position, board.Color) {
	t.Helper()
	pos, turn, _, _, err := fen.Decode(str)
	require.NoError(t, err)
	return pos, turn
}

func TestSquareContents(t *testing.T) {
	pos, turn := decode(t, fen.Initial)

	assert.Equal(t, board.White, turn)
	assert.Equal(t, board.FullCastlingRights, pos.Castling())

	c, p, ok := pos.Square(board.E1)
	require.True(t, ok)
	assert.Equal(t, board.White, c)
	assert.Equal(t, board.King, p)

	c, p, ok = pos.Square(board.B8)
	require.True(t, ok)
	assert.Equal(t, board.Black, c)
	assert.Equal(t, board.Knight, p)

	_, _, ok = pos.Square(board.E4)
	assert.False(t, ok)
}

func TestPseudoLegalMoves(t *testing.T) {
	tests := []struct {
		fen      string
		turn     board.Color
		expected int
	}{
		// The starting array has 20 moves for either side.
		{fen.Initial, board.White, 20},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1", board.Black, 20},
		// Lone king in a corner.
		{"7k/8/8/8/8/8/8/K7 w - - 0 1", board.White, 3},
		// A pawn about to promote has 4 promotion choices.
		{"8/P6k/8/8/8/8/8/K7 w - - 0 1", board.White, 7},
	}

	for _, tt := range tests {
		pos, _ := decode(t, tt.fen)
		assert.Equal(t, tt.expected, len(pos.PseudoLegalMoves(tt.turn)), "moves of %v", tt.fen)
	}
}

func TestMoveLegality(t *testing.T) {
	// The white king is in check from the rook on e8: only moves off the e-file are legal.
	pos, _ := decode(t, "4r2k/8/8/8/8/8/4K3/8 w - - 0 1")

	var legal []string
	for _, m := range pos.LegalMoves(board.White) {
		legal = append(legal, m.String())
	}
	sort.Strings(legal)

	assert.Equal(t, []string{"e2d1", "e2d2", "e2d3", "e2f1", "e2f2", "e2f3"}, legal)
}

func TestEnPassant(t *testing.T) {
	pos, _ := decode(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")

	var ep *board.Move
	for _, m := range pos.PseudoLegalMoves(board.White) {
		if m.Type == board.EnPassant {
			m := m
			ep = &m
		}
	}
	require.NotNil(t, ep)
	assert.Equal(t, board.E5, ep.From)
	assert.Equal(t, board.D6, ep.To)

	next, ok := pos.Move(*ep)
	require.True(t, ok)
	assert.True(t, next.IsEmpty(board.D5), "the captured pawn must be gone")
	_, p, ok := next.Square(board.D6)
	require.True(t, ok)
	assert.Equal(t, board.Pawn, p)
}

func TestCastling(t *testing.T) {
	pos, _ := decode(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	count := func(c board.Color) int {
		n := 0
		for _, m := range pos.PseudoLegalMoves(c) {
			if m.Type == board.KingSideCastle || m.Type == board.QueenSideCastle {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 2, count(board.White))
	assert.Equal(t, 2, count(board.Black))

	// Castling moves the rook as well and clears the rights.
	var castle board.Move
	for _, m := range pos.PseudoLegalMoves(board.White) {
		if m.Type == board.KingSideCastle {
			castle = m
		}
	}
	next, ok := pos.Move(castle)
	require.True(t, ok)

	_, p, ok := next.Square(board.F1)
	require.True(t, ok)
	assert.Equal(t, board.Rook, p)
	assert.True(t, next.IsEmpty(board.H1))
	assert.False(t, next.Castling().IsAllowed(board.WhiteKingSideCastle|board.WhiteQueenSideCastle))
	assert.True(t, next.Castling().IsAllowed(board.BlackKingSideCastle))
}

func TestCheckersAndPinned(t *testing.T) {
	tests := []struct {
		fen      string
		color    board.Color
		checkers board.Bitboard
		pinned   board.Bitboard
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", board.White, 0, 0},
		{"4k3/8/8/8/7b/8/5P2/4K2R w - - 0 1", board.White, 0, board.BitMaskAll(board.F2)},
		{"4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1", board.White, 0, board.BitMaskAll(board.E2)},
		{"4k3/4r3/8/8/8/8/8/4K3 w - - 0 1", board.White, board.BitMaskAll(board.E7), 0},
		{"4k3/8/8/8/8/5n2/8/4K3 w - - 0 1", board.White, board.BitMaskAll(board.F3), 0},
		{"4k3/8/8/8/8/8/3p4/4K3 w - - 0 1", board.White, board.BitMaskAll(board.D2), 0},
	}

	for _, tt := range tests {
		pos, _ := decode(t, tt.fen)
		assert.Equal(t, tt.checkers, pos.Checkers(tt.color), "checkers of %v", tt.fen)
		assert.Equal(t, tt.pinned, pos.Pinned(tt.color), "pinned of %v", tt.fen)
	}
}

func TestFenRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"8/4n3/4P2p/3k3R/7P/7K/8/8 b - - 0 1",
	}

	for _, tt := range tests {
		pos, turn, np, fm, err := fen.Decode(tt)
		require.NoError(t, err)
		assert.Equal(t, tt, fen.Encode(pos, turn, np, fm))
	}
}
