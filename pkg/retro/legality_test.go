package retro_test

import (
	"math/rand"
	"testing"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/herohde/hindsight/pkg/board/fen"
	"github.com/herohde/hindsight/pkg/retro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLegalStartingPosition(t *testing.T) {
	assert.True(t, retro.IsLegal(retro.InitialBoard()))
}

func TestAnalyzeStartingPosition(t *testing.T) {
	a := retro.Analyze(retro.InitialBoard())

	_, decided := a.Result().V()
	assert.False(t, decided)

	// Castling rights, pawn walls and the locked-in royal couple are steady. The
	// knights are not: they could have toured and returned.
	for _, sq := range []board.Square{board.A1, board.D1, board.E1, board.E2, board.C7, board.H8} {
		assert.True(t, a.IsSteady(sq), "steady %v", sq)
	}
	for _, sq := range []board.Square{board.B1, board.G1, board.B8, board.G8, board.E4} {
		assert.False(t, a.IsSteady(sq), "steady %v", sq)
	}

	// The knights share their two possible origins.
	assert.Equal(t, board.BitMaskAll(board.B1, board.G1), a.Origins(board.B1))
	assert.Equal(t, board.BitMaskAll(board.B1, board.G1), a.Origins(board.G1))
	assert.Equal(t, board.BitMaskAll(board.D1), a.Origins(board.D1))
}

func TestIsLegalVerdicts(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		// The starting array is legal, but not with Black to move: zero moves were
		// made, so White must be on turn.
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -", true},
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq -", false},

		// Three knights with all eight pawns still standing is impossible material.
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBNKBNR w - -", false},

		// With the black queen-side castling right, the steady king on E8 bars white
		// pawns from ever leaving D7 or F7, so no pawn can promote into the third
		// rook. Without the right, promotion is possible and the position survives.
		{"r3k3/ppp1p1pp/8/8/8/8/8/R1R1K2R b q -", false},
		{"r3k3/ppp1p1pp/8/8/8/8/8/R1R1K2R b - -", true},

		// Parity under castling rights: every determined piece fixes its move-count
		// parity, and the total comes out odd for White to move.
		{"r1bqkb1r/1ppppppp/8/2P5/8/8/PPPPP1PP/R1BQKB1R w Qq -", false},

		// Smullyan's "Two Bagatelles": the position is reachable without black
		// castling rights, and with the queen-side right alone, but the king-side
		// right is refutable.
		{"r1b1k2r/p1p1p1pp/1p3p2/8/8/P7/1PPPPPPP/2BQKB2 b - -", true},
		{"r1b1k2r/p1p1p1pp/1p3p2/8/8/P7/1PPPPPPP/2BQKB2 b q -", true},
		{"r1b1k2r/p1p1p1pp/1p3p2/8/8/P7/1PPPPPPP/2BQKB2 b k -", false},
		{"r1b1k2r/p1p1p1pp/1p3p2/8/8/P7/1PPPPPPP/2BQKB2 b kq -", false},

		// Smullyan's "Indian Chess Set": the same diagram is unreachable from one
		// orientation and reachable from the other.
		{"r1b1kb1r/pppppppp/2N5/5n2/6N1/2n5/PPPPPPPP/1RBK1B1R w - -", false},
		{"r1b1kbr1/pppppppp/5N2/1n6/2N5/5n2/PPPPPPPP/R1BK1B1R b - -", true},
	}

	for _, tt := range tests {
		b := parse(t, tt.fen)
		assert.Equal(t, tt.expected, retro.IsLegal(b), "legality of %v", tt.fen)
	}
}

// TestIsLegalMissingPiece reconstructs a retro-composition: on the given board, only a
// white bishop on H4 yields a reachable position.
func TestIsLegalMissingPiece(t *testing.T) {
	const template = "2nR3K/pk1Rp1p1/p2p4/P1p5/1Pp5/2PP2P1/4P2P/n7 b - -"

	base, _, _, _, err := fen.Decode(template + " 0 1")
	require.NoError(t, err)

	legal := map[retro.ColoredPiece]bool{}
	for _, cp := range retro.AllColoredPieces {
		if cp.Piece == board.King {
			continue
		}

		var placements []board.Placement
		for bb := base.All(); bb != 0; bb &= bb - 1 {
			sq := bb.LastPopSquare()
			c, p, _ := base.Square(sq)
			placements = append(placements, board.Placement{Square: sq, Color: c, Piece: p})
		}
		placements = append(placements, board.Placement{Square: board.H4, Color: cp.Color, Piece: cp.Piece})

		pos, err := board.NewPosition(placements, 0, board.ZeroSquare)
		require.NoError(t, err)

		legal[cp] = retro.IsLegal(retro.NewRetractableBoard(pos, board.Black))
	}

	for cp, got := range legal {
		expected := cp == (retro.ColoredPiece{Color: board.White, Piece: board.Bishop})
		assert.Equal(t, expected, got, "legality with %v %v on H4", cp.Color, cp.Piece)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"r1bqkb1r/1ppppppp/8/2P5/8/8/PPPPP1PP/R1BQKB1R w Qq -",
		"8/4n3/4P2p/3k3R/7P/7K/8/8 b - -",
	}

	for _, str := range fens {
		b := parse(t, str)

		first := retro.Analyze(b)
		second := retro.Analyze(b)

		assert.Equal(t, first.Result(), second.Result(), "result of %v", str)
		for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
			assert.Equal(t, first.Origins(sq), second.Origins(sq), "origins of %v in %v", sq, str)
			assert.Equal(t, first.Destinies(sq), second.Destinies(sq), "destinies of %v in %v", sq, str)
		}
	}
}

func TestAccessorErrors(t *testing.T) {
	a := retro.Analyze(retro.InitialBoard())

	_, err := a.Tombs(board.E4)
	assert.ErrorIs(t, err, retro.ErrNotOriginSquare)

	_, _, err = a.CapturesBounds(board.D5)
	assert.ErrorIs(t, err, retro.ErrNotOriginSquare)

	tombs, err := a.Tombs(board.E2)
	require.NoError(t, err)
	assert.Equal(t, board.EmptyBitboard, tombs)

	lower, upper, err := a.CapturesBounds(board.E2)
	require.NoError(t, err)
	assert.Equal(t, 0, lower)
	assert.Equal(t, 0, upper)
}

// TestIsLegalRandomGames plays random legal games from the starting array and checks
// that every visited position passes the legality analysis.
func TestIsLegalRandomGames(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for game := 0; game < 2; game++ {
		pos, turn, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		for ply := 0; ply < 20; ply++ {
			moves := pos.LegalMoves(turn)
			if len(moves) == 0 {
				break
			}
			m := moves[r.Intn(len(moves))]
			next, ok := pos.Move(m)
			require.True(t, ok)
			pos, turn = next, turn.Opponent()

			b := retro.NewRetractableBoard(pos, turn)
			assert.True(t, retro.IsLegal(b), "game %v ply %v: %v", game, ply, &b)
		}
	}
}
