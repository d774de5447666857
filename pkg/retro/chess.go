// Package retro decides whether chess positions are reachable from the starting
// array via a sequence of legal moves (retrograde analysis). The verdict is a
// semi-decision: Illegal is definitive, while the absence of Illegal means the
// position could not be refuted.
package retro

import (
	"github.com/herohde/hindsight/pkg/board"
)

// ColoredPiece is a (color, piece) pair.
type ColoredPiece struct {
	Color board.Color
	Piece board.Piece
}

// AllColoredPieces lists the 12 colored pieces.
var AllColoredPieces = []ColoredPiece{
	{board.White, board.Pawn}, {board.White, board.Bishop}, {board.White, board.Knight},
	{board.White, board.Rook}, {board.White, board.Queen}, {board.White, board.King},
	{board.Black, board.Pawn}, {board.Black, board.Bishop}, {board.Black, board.Knight},
	{board.Black, board.Rook}, {board.Black, board.Queen}, {board.Black, board.King},
}

var (
	// colorOrigins holds the starting squares of each color: ranks 1+2 and 7+8.
	colorOrigins = [board.NumColors]board.Bitboard{
		board.BitRank(board.Rank1) | board.BitRank(board.Rank2),
		board.BitRank(board.Rank7) | board.BitRank(board.Rank8),
	}

	// allOrigins holds the 32 squares of the starting array.
	allOrigins = colorOrigins[board.White] | colorOrigins[board.Black]

	kingOrigins   = board.BitMaskAll(board.E1, board.E8)
	queenOrigins  = board.BitMaskAll(board.D1, board.D8) | pawnRanks
	rookOrigins   = board.BitMaskAll(board.A1, board.H1, board.A8, board.H8) | pawnRanks
	knightOrigins = board.BitMaskAll(board.B1, board.G1, board.B8, board.G8) | pawnRanks

	// bishopOrigins is indexed by the square color of the bishop's current square:
	// light-squared bishops start on F1 or C8, dark-squared ones on C1 or F8. Either
	// may also be a promoted pawn.
	bishopOrigins = map[bool]board.Bitboard{
		true:  board.BitMaskAll(board.F1, board.C8) | pawnRanks,
		false: board.BitMaskAll(board.C1, board.F8) | pawnRanks,
	}

	pawnOrigins [board.NumSquares]board.Bitboard
)

const pawnRanks = board.Bitboard(0x00ff00000000ff00) // ranks 2 and 7

func init() {
	// A pawn on rank r may have started on any 2nd-rank square whose file offset does
	// not exceed the ranks it advanced, one capture per file shift.

	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		for _, c := range board.Colors {
			advance := int(sq.Rank()) - int(c.SecondRank())
			if c == board.Black {
				advance = -advance
			}
			if advance < 0 || sq.Rank() == board.Rank1 || sq.Rank() == board.Rank8 {
				continue
			}
			for f := board.ZeroFile; f < board.NumFiles; f++ {
				shift := int(f) - int(sq.File())
				if shift < 0 {
					shift = -shift
				}
				if shift <= advance {
					pawnOrigins[sq] |= board.BitMask(board.NewSquare(f, c.SecondRank()))
				}
			}
		}
	}
}

// originsOfPieceOn returns the candidate starting squares of a piece of the given type
// currently standing on the given square. Queens, rooks, bishops and knights may also
// come from their relative 2nd rank, as they may be promoted pawns.
func originsOfPieceOn(piece board.Piece, sq board.Square) board.Bitboard {
	switch piece {
	case board.King:
		return kingOrigins
	case board.Queen:
		return queenOrigins
	case board.Rook:
		return rookOrigins
	case board.Knight:
		return knightOrigins
	case board.Bishop:
		return bishopOrigins[sq.IsLight()]
	case board.Pawn:
		return pawnOrigins[sq]
	default:
		panic("invalid piece")
	}
}

// originColor returns the color owning the given starting square.
func originColor(origin board.Square) board.Color {
	if colorOrigins[board.White].IsSet(origin) {
		return board.White
	}
	return board.Black
}

// startPieceOn returns the piece of the initial array on the given starting square.
func startPieceOn(origin board.Square) board.Piece {
	switch origin.Rank() {
	case board.Rank2, board.Rank7:
		return board.Pawn
	}
	switch origin.File() {
	case board.FileA, board.FileH:
		return board.Rook
	case board.FileB, board.FileG:
		return board.Knight
	case board.FileC, board.FileF:
		return board.Bishop
	case board.FileD:
		return board.Queen
	default:
		return board.King
	}
}

// promIndex maps promotion piece kinds to a compact index.
func promIndex(piece board.Piece) int {
	switch piece {
	case board.Queen:
		return 0
	case board.Knight:
		return 1
	case board.Rook:
		return 2
	case board.Bishop:
		return 3
	default:
		panic("king or pawn are not valid promotion types")
	}
}

// movesOnEmptyBoard returns the squares a piece of the given type and color can move to
// from the given square on an otherwise empty board. Pawn captures are not included.
func movesOnEmptyBoard(piece board.Piece, color board.Color, sq board.Square) board.Bitboard {
	switch piece {
	case board.King:
		return board.KingAttackboard(sq)
	case board.Queen:
		return board.RookRays(sq) | board.BishopRays(sq)
	case board.Rook:
		return board.RookRays(sq)
	case board.Bishop:
		return board.BishopRays(sq)
	case board.Knight:
		return board.KnightAttackboard(sq)
	case board.Pawn:
		return board.PawnQuietboard(color, sq)
	default:
		panic("invalid piece")
	}
}

// predecessors returns the squares from which a piece of the given type and color can
// *immediately* reach the given square, i.e. squares at king-distance 1 (except for
// knight moves).
func predecessors(piece board.Piece, color board.Color, sq board.Square) board.Bitboard {
	// Negate the color to get pawn predecessors right.
	preds := movesOnEmptyBoard(piece, color.Opponent(), sq)
	if piece == board.Pawn {
		preds |= board.PawnAttackboard(color.Opponent(), sq)
		preds &^= board.BitRank(color.BackRank())
	}
	return preds & (board.KingAttackboard(sq) | board.KnightAttackboard(sq))
}

// checkingPredecessors returns the squares from which a piece of the given type and color
// always checks an opponent king on the given square, independently of the configuration
// of other pieces.
func checkingPredecessors(piece board.Piece, color board.Color, sq board.Square) board.Bitboard {
	preds := predecessors(piece, color, sq)
	if piece == board.Pawn {
		preds &^= board.BitFile(sq.File()) // quiet pawn moves never check
	}
	return preds
}

// commonPieceInAllSquares returns the piece type occupying every given square, if they
// all hold the same type. False if any square is empty or the types differ.
func commonPieceInAllSquares(b *RetractableBoard, squares board.Bitboard) (board.Piece, bool) {
	common := board.NoPiece
	for bb := squares; bb != 0; bb &= bb - 1 {
		piece, ok := b.PieceOn(bb.LastPopSquare())
		if !ok {
			return board.NoPiece, false
		}
		if common == board.NoPiece {
			common = piece
		} else if common != piece {
			return board.NoPiece, false
		}
	}
	return common, common != board.NoPiece
}
