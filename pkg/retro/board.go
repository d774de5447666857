package retro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/herohde/hindsight/pkg/board"
	"github.com/herohde/hindsight/pkg/board/fen"
)

// EPKind is the discriminator of the three-valued en-passant flag.
type EPKind uint8

const (
	// EPNone means the previous move was certainly not a 2-square pawn move.
	EPNone EPKind = iota
	// EPSquare means the previous move was a 2-square pawn move over the given target
	// square.
	EPSquare
	// EPAny means the en-passant state is uncertain, as after a retraction: the board
	// before some move could have had any en-passant target.
	EPAny
)

// EPFlag is the en-passant state of a retractable board. The Square field is only
// meaningful for the EPSquare kind and holds the FEN-style target square, i.e. the
// square behind the pawn that just jumped.
type EPFlag struct {
	Kind   EPKind
	Square board.Square
}

func (f EPFlag) String() string {
	switch f.Kind {
	case EPSquare:
		return f.Square.String()
	case EPAny:
		return "?"
	default:
		return "-"
	}
}

// RetractableBoard is a chess position extended for backward play: it carries the
// uncertain en-passant flag and supports making retractions (inverse moves). It is a
// value type, usable directly as a memoization key.
type RetractableBoard struct {
	pieces   [board.NumColors][board.NumPieces]board.Bitboard // NoPiece holds all of the color
	all      board.Bitboard
	turn     board.Color
	castling board.Castling
	checkers board.Bitboard // pieces checking the side to move
	pinned   board.Bitboard // sole blockers shielding the side to move's king
	ep       EPFlag
	hash     board.ZobristHash
}

// NewRetractableBoard returns a retractable board for the given position and side to
// move.
func NewRetractableBoard(pos *board.Position, turn board.Color) RetractableBoard {
	ret := RetractableBoard{turn: turn, castling: pos.Castling()}

	for c := board.ZeroColor; c < board.NumColors; c++ {
		ret.pieces[c][board.NoPiece] = pos.ColorBitboard(c)
		for _, p := range board.Pieces {
			ret.pieces[c][p] = pos.PieceBitboard(c, p)
		}
	}
	ret.all = pos.All()
	if sq, ok := pos.EnPassant(); ok {
		ret.ep = EPFlag{Kind: EPSquare, Square: sq}
	}
	ret.checkers = pos.Checkers(turn)
	ret.pinned = pos.Pinned(turn)
	ret.hash = ret.computeHash()
	return ret
}

// ParseRetractableBoard returns a retractable board from a FEN description.
func ParseRetractableBoard(str string) (RetractableBoard, error) {
	pos, turn, _, _, err := fen.Decode(str)
	if err != nil {
		return RetractableBoard{}, err
	}
	return NewRetractableBoard(pos, turn), nil
}

// InitialBoard returns the starting array, white to move.
func InitialBoard() RetractableBoard {
	b, err := ParseRetractableBoard(fen.Initial)
	if err != nil {
		panic(err)
	}
	return b
}

// SideToMove returns the color to move.
func (b *RetractableBoard) SideToMove() board.Color {
	return b.turn
}

// Castling returns the castling rights.
func (b *RetractableBoard) Castling() board.Castling {
	return b.castling
}

// EnPassant returns the en-passant flag.
func (b *RetractableBoard) EnPassant() EPFlag {
	return b.ep
}

// Checkers returns the pieces checking the side to move.
func (b *RetractableBoard) Checkers() board.Bitboard {
	return b.checkers
}

// Pinned returns the sole blockers between opposing sliders and the side to move's
// king, regardless of the blocker's color.
func (b *RetractableBoard) Pinned() board.Bitboard {
	return b.pinned
}

// Hash returns the Zobrist hash of the board, including the en-passant flag. The EPAny
// state folds in a distinct constant.
func (b *RetractableBoard) Hash() board.ZobristHash {
	return b.hash
}

// All returns the bitboard of all pieces.
func (b *RetractableBoard) All() board.Bitboard {
	return b.all
}

// ColorBitboard returns the bitboard of all pieces of the given color.
func (b *RetractableBoard) ColorBitboard(c board.Color) board.Bitboard {
	return b.pieces[c][board.NoPiece]
}

// PieceBitboard returns the bitboard of the given colored piece.
func (b *RetractableBoard) PieceBitboard(c board.Color, p board.Piece) board.Bitboard {
	return b.pieces[c][p]
}

// Pieces returns the bitboard of the given piece type for both colors.
func (b *RetractableBoard) Pieces(p board.Piece) board.Bitboard {
	return b.pieces[board.White][p] | b.pieces[board.Black][p]
}

// KingSquare returns the square of the given color's king.
func (b *RetractableBoard) KingSquare(c board.Color) board.Square {
	return b.pieces[c][board.King].LastPopSquare()
}

// PieceOn returns the piece on the given square, if any.
func (b *RetractableBoard) PieceOn(sq board.Square) (board.Piece, bool) {
	if !b.all.IsSet(sq) {
		return board.NoPiece, false
	}
	for _, p := range board.Pieces {
		if b.Pieces(p).IsSet(sq) {
			return p, true
		}
	}
	return board.NoPiece, false
}

// ColorOn returns the color of the piece on the given square, if any.
func (b *RetractableBoard) ColorOn(sq board.Square) (board.Color, bool) {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		if b.pieces[c][board.NoPiece].IsSet(sq) {
			return c, true
		}
	}
	return 0, false
}

// IsEmpty returns true iff the square is empty.
func (b *RetractableBoard) IsEmpty(sq board.Square) bool {
	return !b.all.IsSet(sq)
}

// SetUncertainEnPassant marks the en-passant state as uncertain. This only has an
// effect if the flag is currently EPNone.
func (b *RetractableBoard) SetUncertainEnPassant() {
	if b.ep.Kind == EPNone {
		b.ep = EPFlag{Kind: EPAny}
		b.hash ^= board.DefaultZobristTable.EPAny()
	}
}

// isAttacked returns true iff the square is attacked by a piece of the given color.
func (b *RetractableBoard) isAttacked(sq board.Square, by board.Color) bool {
	if bishops := b.pieces[by][board.Bishop] | b.pieces[by][board.Queen]; bishops != 0 && board.BishopAttackboard(b.all, sq)&bishops != 0 {
		return true
	}
	if rooks := b.pieces[by][board.Rook] | b.pieces[by][board.Queen]; rooks != 0 && board.RookAttackboard(b.all, sq)&rooks != 0 {
		return true
	}
	if board.KnightAttackboard(sq)&b.pieces[by][board.Knight] != 0 {
		return true
	}
	if board.KingAttackboard(sq)&b.pieces[by][board.King] != 0 {
		return true
	}
	return board.PawnCaptureboard(by, b.pieces[by][board.Pawn]).IsSet(sq)
}

// Position returns the board as a forward position, for replaying moves. The EPAny
// state has no forward equivalent and maps to no en-passant target.
func (b *RetractableBoard) Position() (*board.Position, error) {
	var placements []board.Placement
	for bb := b.all; bb != 0; bb &= bb - 1 {
		sq := bb.LastPopSquare()
		piece, _ := b.PieceOn(sq)
		color, _ := b.ColorOn(sq)
		placements = append(placements, board.Placement{Square: sq, Color: color, Piece: piece})
	}

	ep := board.ZeroSquare
	if b.ep.Kind == EPSquare {
		ep = b.ep.Square
	}
	return board.NewPosition(placements, b.castling, ep)
}

// castleRetractions holds the king squares involved in castling, used to recognize an
// uncastling retraction by its source and target alone.
var castleRetractions = board.BitMaskAll(board.C1, board.E1, board.G1, board.C8, board.E8, board.G8)

// MakeRetraction applies a retraction, returning the board as it stood before the
// retracted move. The en-passant flag of the result is EPAny unless the retraction
// itself determines it (en-passant uncapture).
func (b *RetractableBoard) MakeRetraction(r Retraction) RetractableBoard {
	ret := *b
	ret.turn = b.turn.Opponent()
	ret.ep = EPFlag{Kind: EPAny}
	ret.checkers = 0
	ret.pinned = 0

	retractor := ret.turn // the side that made the retracted move
	source, target := r.Source, r.Target
	sourceBB, targetBB := board.BitMask(source), board.BitMask(target)

	piece, ok := b.PieceOn(source)
	if !ok {
		panic(fmt.Sprintf("retraction source %v is empty", source))
	}

	// (1) Move the piece back, as a pawn if the retraction is an unpromotion, and
	// restore any uncaptured piece on the vacated square.

	if r.Unpromotion {
		ret.xor(retractor, piece, sourceBB)
		ret.xor(retractor, board.Pawn, targetBB)
	} else {
		ret.xor(retractor, piece, sourceBB|targetBB)
	}
	if r.Uncaptured != board.NoPiece {
		ret.xor(b.turn, r.Uncaptured, sourceBB)
	}

	// (2) Uncastling: a 2-square king retraction on the back rank returns the rook to
	// its corner and restores the castling rights of that side.

	if piece == board.King && (sourceBB|targetBB)&castleRetractions == sourceBB|targetBB && board.Between(source, target) != 0 {
		back := retractor.BackRank()

		var rookBB board.Bitboard
		var recovered board.Castling
		if source.File() == board.FileG {
			rookBB = board.BitMask(board.NewSquare(board.FileF, back)) | board.BitMask(board.NewSquare(board.FileH, back))
			recovered = board.KingSideCastleRight(retractor)
		} else {
			rookBB = board.BitMask(board.NewSquare(board.FileD, back)) | board.BitMask(board.NewSquare(board.FileA, back))
			recovered = board.QueenSideCastleRight(retractor)
		}
		ret.xor(retractor, board.Rook, rookBB)
		ret.castling |= recovered
	}

	// (3) En-passant uncapture: a diagonal pawn retraction without an uncaptured piece
	// restores the enemy pawn behind the source square and determines the flag.

	epUncapture := piece == board.Pawn && r.Uncaptured == board.NoPiece && source.File() != target.File()
	if epUncapture {
		reappearing := source.Backward(retractor)
		ret.xor(b.turn, board.Pawn, board.BitMask(reappearing))
		ret.ep = EPFlag{Kind: EPSquare, Square: source}
	}

	// (4) Recompute checkers and pins against the retractor's king. Knight and pawn
	// checks can only arise from pieces touched by the retraction: a pre-existing one
	// would have made this position unreachable in the first place.

	ksq := ret.KingSquare(retractor)

	if piece == board.King || r.Uncaptured == board.Knight {
		ret.checkers ^= board.KnightAttackboard(ksq) & ret.pieces[b.turn][board.Knight]
	}
	if piece == board.King || r.Uncaptured == board.Pawn || epUncapture {
		ret.checkers ^= board.PawnAttackboard(retractor, ksq) & ret.pieces[b.turn][board.Pawn]
	}

	bishops := ret.pieces[b.turn][board.Bishop] | ret.pieces[b.turn][board.Queen]
	rooks := ret.pieces[b.turn][board.Rook] | ret.pieces[b.turn][board.Queen]
	sliders := board.BishopRays(ksq)&bishops | board.RookRays(ksq)&rooks
	for bb := sliders; bb != 0; bb &= bb - 1 {
		slider := bb.LastPopSquare()
		blockers := board.Between(slider, ksq) & ret.all
		switch blockers.PopCount() {
		case 0:
			ret.checkers ^= board.BitMask(slider)
		case 1:
			ret.pinned ^= blockers
		}
	}

	ret.hash = ret.computeHash()
	return ret
}

func (b *RetractableBoard) xor(c board.Color, p board.Piece, bb board.Bitboard) {
	b.pieces[c][p] ^= bb
	b.pieces[c][board.NoPiece] ^= bb
	b.all ^= bb
}

func (b *RetractableBoard) computeHash() board.ZobristHash {
	z := board.DefaultZobristTable

	var hash board.ZobristHash
	for c := board.ZeroColor; c < board.NumColors; c++ {
		for _, p := range board.Pieces {
			for bb := b.pieces[c][p]; bb != 0; bb &= bb - 1 {
				hash ^= z.Piece(c, p, bb.LastPopSquare())
			}
		}
	}
	hash ^= z.Castling(b.castling)
	switch b.ep.Kind {
	case EPSquare:
		hash ^= z.EnPassant(b.ep.Square)
	case EPAny:
		hash ^= z.EPAny()
	}
	hash ^= z.Turn(b.turn)
	return hash
}

// String renders the board in FEN-like notation, with "?" for an uncertain
// en-passant state.
func (b *RetractableBoard) String() string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		blanks := 0
		for i := board.NumFiles; i > 0; i-- {
			sq := board.NewSquare(i-1, r-1)
			piece, ok := b.PieceOn(sq)
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			letter := piece.String()
			if c, _ := b.ColorOn(sq); c == board.White {
				letter = strings.ToUpper(letter)
			}
			sb.WriteString(letter)
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 1 {
			sb.WriteString("/")
		}
	}
	return fmt.Sprintf("%v %v %v %v", sb.String(), b.turn, b.castling, b.ep)
}
