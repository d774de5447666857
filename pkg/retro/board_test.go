package retro

import (
	"testing"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetractableBoardHash(t *testing.T) {
	b := parse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	plain := b.Hash()

	// The uncertain en-passant state hashes distinctly from the determined states.
	b.SetUncertainEnPassant()
	assert.NotEqual(t, plain, b.Hash())

	// Marking twice is a no-op.
	uncertain := b.Hash()
	b.SetUncertainEnPassant()
	assert.Equal(t, uncertain, b.Hash())

	// Boards differing only in the side to move hash differently.
	w := parse(t, "4k3/8/8/8/8/8/8/4K3 w - -")
	bl := parse(t, "4k3/8/8/8/8/8/8/4K3 b - -")
	assert.NotEqual(t, w.Hash(), bl.Hash())
}

func TestRetractableBoardQueries(t *testing.T) {
	b := parse(t, "r3k3/8/4n3/8/8/8/8/R3K2R w KQ -")

	assert.Equal(t, board.White, b.SideToMove())
	assert.Equal(t, board.E1, b.KingSquare(board.White))
	assert.Equal(t, board.E8, b.KingSquare(board.Black))

	piece, ok := b.PieceOn(board.E6)
	require.True(t, ok)
	assert.Equal(t, board.Knight, piece)
	color, ok := b.ColorOn(board.E6)
	require.True(t, ok)
	assert.Equal(t, board.Black, color)

	_, ok = b.PieceOn(board.E4)
	assert.False(t, ok)

	assert.Equal(t, board.BitMaskAll(board.A1, board.H1, board.E1), b.PieceBitboard(board.White, board.Rook)|b.PieceBitboard(board.White, board.King))
}

func TestEventsRule(t *testing.T) {
	// White pawns on F3 and G2 lock the F1 bishop in: it can only have entered play
	// through E2.
	b := parse(t, "rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR w KQkq -")
	a := NewAnalysis(b)
	r := &eventsRule{}

	assert.True(t, r.apply(a))
	require.Len(t, a.events, 1)
	assert.Equal(t, Event{Passage: board.E2, Confined: board.F1}, a.events[0])

	// Re-application adds nothing.
	assert.False(t, r.apply(a))

	// Without the pattern, no events are derived.
	b2 := parse(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	a2 := NewAnalysis(b2)
	assert.False(t, r.apply(a2))
	assert.Empty(t, a2.events)
}
