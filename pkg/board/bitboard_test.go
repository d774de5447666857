package board_test

import (
	"testing"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBitboard(t *testing.T) {
	bb := board.BitMaskAll(board.A1, board.H8, board.E4)

	assert.Equal(t, 3, bb.PopCount())
	assert.Equal(t, board.A1, bb.LastPopSquare())
	assert.Equal(t, board.H8, bb.FirstPopSquare())
	assert.True(t, bb.IsSet(board.E4))
	assert.False(t, bb.IsSet(board.E5))
	assert.Equal(t, []board.Square{board.A1, board.E4, board.H8}, bb.Squares())
}

func TestSquareColors(t *testing.T) {
	assert.Equal(t, 32, board.LightSquares.PopCount())
	assert.Equal(t, 32, board.DarkSquares.PopCount())
	assert.Equal(t, board.FullBitboard, board.LightSquares|board.DarkSquares)

	assert.True(t, board.H1.IsLight())
	assert.True(t, board.B1.IsLight())
	assert.False(t, board.A1.IsLight())
	assert.False(t, board.G1.IsLight())
	assert.True(t, board.A8.IsLight())
}

func TestKingKnightAttackboards(t *testing.T) {
	assert.Equal(t, 3, board.KingAttackboard(board.A1).PopCount())
	assert.Equal(t, 5, board.KingAttackboard(board.A4).PopCount())
	assert.Equal(t, 8, board.KingAttackboard(board.E4).PopCount())

	assert.Equal(t, 2, board.KnightAttackboard(board.A1).PopCount())
	assert.Equal(t, 8, board.KnightAttackboard(board.E4).PopCount())
	assert.Equal(t, board.BitMaskAll(board.A3, board.C3, board.D2), board.KnightAttackboard(board.B1))
}

func TestSlidingAttackboards(t *testing.T) {
	// Empty board: full rays.
	assert.Equal(t, 14, board.RookAttackboard(0, board.E4).PopCount())
	assert.Equal(t, 13, board.BishopAttackboard(0, board.E4).PopCount())
	assert.Equal(t, 27, board.QueenAttackboard(0, board.E4).PopCount())
	assert.Equal(t, 7, board.BishopAttackboard(0, board.A1).PopCount())

	// Blockers cut the rays but are included themselves.
	all := board.BitMaskAll(board.E6, board.C4)
	rook := board.RookAttackboard(all, board.E4)
	assert.True(t, rook.IsSet(board.E6))
	assert.False(t, rook.IsSet(board.E7))
	assert.True(t, rook.IsSet(board.C4))
	assert.False(t, rook.IsSet(board.B4))
	assert.True(t, rook.IsSet(board.H4))
	assert.True(t, rook.IsSet(board.E1))
}

func TestBetweenAndLine(t *testing.T) {
	assert.Equal(t, board.BitMaskAll(board.F1, board.G1), board.Between(board.E1, board.H1))
	assert.Equal(t, board.BitMaskAll(board.D5, board.E6), board.Between(board.C4, board.F7))
	assert.Equal(t, board.EmptyBitboard, board.Between(board.E1, board.F3))
	assert.Equal(t, board.EmptyBitboard, board.Between(board.E1, board.E2))

	assert.Equal(t, board.BitFile(board.FileE), board.Line(board.E2, board.E7))
	assert.Equal(t, board.BitRank(board.Rank4), board.Line(board.A4, board.C4))
	assert.True(t, board.Line(board.A1, board.C3).IsSet(board.H8))
	assert.Equal(t, board.EmptyBitboard, board.Line(board.A1, board.B3))
}

func TestPawnBoards(t *testing.T) {
	assert.Equal(t, board.BitMaskAll(board.D3, board.F3), board.PawnAttackboard(board.White, board.E2))
	assert.Equal(t, board.BitMaskAll(board.B3, board.D3), board.PawnAttackboard(board.Black, board.C4))
	assert.Equal(t, board.BitMaskAll(board.B3), board.PawnAttackboard(board.White, board.A2))

	assert.Equal(t, board.BitMaskAll(board.E3, board.E4), board.PawnQuietboard(board.White, board.E2))
	assert.Equal(t, board.BitMaskAll(board.E5), board.PawnQuietboard(board.White, board.E4))
	assert.Equal(t, board.BitMaskAll(board.C6, board.C5), board.PawnQuietboard(board.Black, board.C7))
	assert.Equal(t, board.EmptyBitboard, board.PawnQuietboard(board.White, board.E1))
}

func TestAdjacentFiles(t *testing.T) {
	assert.Equal(t, board.BitFile(board.FileB), board.AdjacentFiles(board.FileA))
	assert.Equal(t, board.BitFile(board.FileG), board.AdjacentFiles(board.FileH))
	assert.Equal(t, board.BitFile(board.FileD)|board.BitFile(board.FileF), board.AdjacentFiles(board.FileE))
}
