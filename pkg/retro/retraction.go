package retro

import (
	"fmt"

	"github.com/herohde/hindsight/pkg/board"
)

// Retraction is a backward move: the inverse of a forward move. The piece on Source
// retracts to Target, optionally restoring an Uncaptured enemy piece on Source. An
// unpromotion retracts the piece back into a pawn.
type Retraction struct {
	Source, Target board.Square
	Uncaptured     board.Piece // NoPiece if nothing was captured
	Unpromotion    bool
}

func (r Retraction) String() string {
	ret := r.Target.String()
	if r.Uncaptured != board.NoPiece {
		ret += "x" + r.Uncaptured.String()
	}
	ret += r.Source.String()
	if r.Unpromotion {
		ret += "prom"
	}
	return ret
}

// UncaptureKind specifies whether a retraction record may, must or must not restore a
// captured piece.
type UncaptureKind uint8

const (
	// UncaptureOptional retractions may or may not have captured. The common case.
	UncaptureOptional UncaptureKind = iota
	// UncaptureNecessary retractions must restore a piece, e.g. a pawn retracting to
	// an adjacent file.
	UncaptureNecessary
	// UncaptureForbidden retractions never captured, e.g. pawn unpushes or uncastling.
	UncaptureForbidden
	// UncaptureEnPassant marks en-passant retractions, which restore a pawn on a
	// square other than the source.
	UncaptureEnPassant
)

// sourceTargets is a compact batch of retractions: one source square, a mask of target
// squares and the shared uncapture kind.
type sourceTargets struct {
	source      board.Square
	targets     board.Bitboard
	kind        UncaptureKind
	unpromotion bool
}

// uncaptureSlots lists what a retraction can restore: nothing, or any non-king piece.
var uncaptureSlots = [6]board.Piece{
	board.NoPiece, board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen,
}

// RetractionGen enumerates the legal retractions of a retractable board: backward moves
// whose forward counterpart leaves the non-retracting side not in check at the start.
type RetractionGen struct {
	retractions []sourceTargets
	index       int
	uncapIdx    int

	// uncaptured[i] holds the squares where uncaptureSlots[i] may be restored.
	uncaptured [6]board.Bitboard
}

// NewRetractionGen returns a generator over the legal retractions of the board.
func NewRetractionGen(b *RetractableBoard) *RetractionGen {
	return &RetractionGen{
		retractions: enumerateRetractions(b),
		uncaptured:  uncaptureCandidates(b),
	}
}

// Next returns the next legal retraction, expanding each record over the admissible
// uncapture possibilities. False when exhausted.
func (g *RetractionGen) Next() (Retraction, bool) {
	for g.index < len(g.retractions) {
		r := &g.retractions[g.index]
		if r.targets == 0 {
			g.index++
			g.uncapIdx = 0
			continue
		}
		target := r.targets.LastPopSquare()

		if r.kind == UncaptureEnPassant {
			r.targets &^= board.BitMask(target)
			return Retraction{Source: r.source, Target: target}, true
		}

		if g.uncapIdx >= len(uncaptureSlots) {
			r.targets &^= board.BitMask(target)
			g.uncapIdx = 0
			continue
		}

		i := g.uncapIdx
		g.uncapIdx++

		uncaptured := uncaptureSlots[i]
		switch {
		case !g.uncaptured[i].IsSet(r.source):
			continue
		case r.kind == UncaptureNecessary && uncaptured == board.NoPiece:
			continue
		case r.kind == UncaptureForbidden && uncaptured != board.NoPiece:
			continue
		}

		return Retraction{Source: r.source, Target: target, Uncaptured: uncaptured, Unpromotion: r.unpromotion}, true
	}
	return Retraction{}, false
}

// All drains the generator.
func (g *RetractionGen) All() []Retraction {
	var ret []Retraction
	for {
		r, ok := g.Next()
		if !ok {
			return ret
		}
		ret = append(ret, r)
	}
}

// limitedRetractionsBound is the cutoff for the "limited in retractions" predicate,
// the precondition of the recursive refinement branch.
const limitedRetractionsBound = 4

// LimitedRetractions returns true iff the board has at most limitedRetractionsBound
// legal retractions.
func LimitedRetractions(b *RetractableBoard) bool {
	g := NewRetractionGen(b)
	for i := 0; i <= limitedRetractionsBound; i++ {
		if _, ok := g.Next(); !ok {
			return true
		}
	}
	return false
}

// Refine narrows the uncapture candidates using a completed analysis: only pieces
// consistent with the opponent's missing set can be uncaptured, and uncapture squares
// must coincide with known tombs once the tombs account for every missing piece.
func (g *RetractionGen) Refine(a *Analysis) {
	color := a.board.SideToMove() // only the side to move can be uncaptured

	for i, piece := range uncaptureSlots {
		if piece == board.NoPiece {
			continue
		}
		possible := board.EmptyBitboard
		for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
			if a.missing[color].All()&originsOfPieceOn(piece, sq) != 0 {
				possible |= board.BitMask(sq)
			}
		}
		g.uncaptured[i] &= possible
	}

	tombs := board.EmptyBitboard
	nbTombs := 0
	for bb := colorOrigins[color.Opponent()]; bb != 0; bb &= bb - 1 {
		t := a.captures[bb.LastPopSquare()]
		nbTombs += t.PopCount()
		tombs |= t
	}
	if nbTombs == a.missing[color].Size() {
		for i := 1; i < len(uncaptureSlots); i++ {
			g.uncaptured[i] &= tombs
		}
	}
}

// uncaptureCandidates bounds the uncapture possibilities by a quick material check: if
// the side to be uncaptured is near its maximum original count for some piece kind,
// further instances of that kind cannot reappear. Pawns never reappear on the
// promotion ranks.
func uncaptureCandidates(b *RetractableBoard) [6]board.Bitboard {
	color := b.SideToMove()
	pawns := b.PieceBitboard(color, board.Pawn)
	knights := b.PieceBitboard(color, board.Knight)
	bishops := b.PieceBitboard(color, board.Bishop)
	rooks := b.PieceBitboard(color, board.Rook)
	queens := b.PieceBitboard(color, board.Queen)

	promoted := max(0, knights.PopCount()-2) +
		max(0, (bishops&board.LightSquares).PopCount()-1) +
		max(0, (bishops&board.DarkSquares).PopCount()-1) +
		max(0, rooks.PopCount()-2) +
		max(0, queens.PopCount()-1)
	pawnSouls := pawns.PopCount() + promoted

	if pawnSouls > 8 {
		return [6]board.Bitboard{}
	}

	promotionRanks := board.BitRank(board.Rank1) | board.BitRank(board.Rank8)
	ret := [6]board.Bitboard{
		board.FullBitboard,       // no uncapture
		^promotionRanks,          // pawns
		board.FullBitboard,       // knights
		board.FullBitboard,       // bishops
		board.FullBitboard,       // rooks
		board.FullBitboard,       // queens
	}

	if pawnSouls == 8 {
		ret[1] = 0
		if knights.PopCount() >= 2 {
			ret[2] = 0
		}
		if (bishops & board.DarkSquares).PopCount() >= 1 {
			ret[3] &= board.LightSquares
		}
		if (bishops & board.LightSquares).PopCount() >= 1 {
			ret[3] &= board.DarkSquares
		}
		if rooks.PopCount() >= 2 {
			ret[4] = 0
		}
		if queens.PopCount() >= 1 {
			ret[5] = 0
		}
	}
	return ret
}

// enumerateRetractions produces the retraction records of the board, dispatched on the
// number of checkers against the side to move.
func enumerateRetractions(b *RetractableBoard) []sourceTargets {
	var list []sourceTargets
	mask := ^b.ColorBitboard(b.SideToMove())

	// A determined en-passant flag pins down the previous move entirely: the only
	// retraction is the jump of the capturable pawn.
	if b.ep.Kind == EPSquare {
		jumper := b.SideToMove().Opponent()
		pawn := b.ep.Square.Forward(jumper)
		return []sourceTargets{{
			source:  pawn,
			targets: board.BitFile(pawn.File()) & board.BitRank(jumper.SecondRank()),
			kind:    UncaptureForbidden,
		}}
	}

	nb := b.Checkers().PopCount()
	switch {
	case nb == 0 || nb == 1:
		list = appendPawnRetractions(list, b, nb, mask)
		list = appendOfficerRetractions(list, b, board.Knight, nb, mask)
		list = appendOfficerRetractions(list, b, board.Bishop, nb, mask)
		list = appendOfficerRetractions(list, b, board.Rook, nb, mask)
		list = appendOfficerRetractions(list, b, board.Queen, nb, mask)
		list = appendKingRetractions(list, b, nb, mask)
	case nb == 2:
		// King moves cannot deliver double checks, and a queen uncovered by the other
		// checker would already have been checking before its move.
		list = appendPawnRetractions(list, b, nb, mask)
		list = appendOfficerRetractions(list, b, board.Knight, nb, mask)
		list = appendOfficerRetractions(list, b, board.Bishop, nb, mask)
		list = appendOfficerRetractions(list, b, board.Rook, nb, mask)
	}
	return list
}

// officerMoves returns the move board of the given officer type, over the given
// occupancy.
func officerMoves(piece board.Piece, sq board.Square, all board.Bitboard) board.Bitboard {
	switch piece {
	case board.Knight:
		return board.KnightAttackboard(sq)
	case board.Bishop:
		return board.BishopAttackboard(all, sq)
	case board.Rook:
		return board.RookAttackboard(all, sq)
	case board.Queen:
		return board.QueenAttackboard(all, sq)
	case board.King:
		return board.KingAttackboard(sq)
	default:
		panic(fmt.Sprintf("not an officer: %v", piece))
	}
}

// appendOfficerRetractions adds the retraction records of knights and sliding pieces.
func appendOfficerRetractions(list []sourceTargets, b *RetractableBoard, piece board.Piece, nb int, mask board.Bitboard) []sourceTargets {
	all := b.All()
	retractor := b.SideToMove().Opponent()
	oppKsq := b.KingSquare(b.SideToMove())
	pieces := b.PieceBitboard(retractor, piece)
	pinned := b.Pinned()
	checkers := b.Checkers()

	captureKind := func(src board.Square) UncaptureKind {
		if pinned.IsSet(src) {
			return UncaptureNecessary
		}
		return UncaptureOptional
	}

	// Rooks covered by castling rights have never moved and cannot retract.
	castlingRooks := board.EmptyBitboard
	if b.Castling().IsAllowed(board.KingSideCastleRight(retractor)) {
		castlingRooks |= board.BitMask(board.NewSquare(board.FileH, retractor.BackRank()))
	}
	if b.Castling().IsAllowed(board.QueenSideCastleRight(retractor)) {
		castlingRooks |= board.BitMask(board.NewSquare(board.FileA, retractor.BackRank()))
	}

	push := func(src board.Square, targets board.Bitboard, kind UncaptureKind) []sourceTargets {
		if targets != 0 {
			list = append(list, sourceTargets{source: src, targets: targets, kind: kind})
		}
		return list
	}

	if nb == 0 {
		// The retracting player must not check their opponent before the move.
		checkMask := officerMoves(piece, oppKsq, all)
		for bb := pieces &^ castlingRooks; bb != 0; bb &= bb - 1 {
			src := bb.LastPopSquare()
			targets := officerMoves(piece, src, all) &^ all & mask &^ checkMask
			list = push(src, targets, captureKind(src))
		}
	}

	if nb == 1 && checkers&pieces != 0 {
		// A piece of our own type is checking: it must be the retracting piece.
		src := checkers.LastPopSquare()

		removed := officerMoves(piece, oppKsq, all&^checkers)
		targets := officerMoves(piece, src, all) &^ all & mask &^ removed
		list = push(src, targets, captureKind(src))

		// Retracting along the check line requires an uncapture to explain why the
		// check did not exist before.
		checkMask := officerMoves(piece, oppKsq, all)
		targets = board.Line(oppKsq, src) & officerMoves(piece, src, all) &^ all & mask &^ checkMask
		list = push(src, targets, UncaptureNecessary)
	}

	if nb == 1 && piece != board.Queen && checkers&pieces == 0 {
		// A different piece is checking: we must have unblocked its ray.
		ray := board.Between(checkers.LastPopSquare(), oppKsq)
		for bb := pieces &^ castlingRooks; bb != 0; bb &= bb - 1 {
			src := bb.LastPopSquare()
			targets := officerMoves(piece, src, all) &^ all & mask & ray
			list = push(src, targets, captureKind(src))
		}
	}

	if nb == 2 && checkers&pieces != 0 && checkers&^pieces != 0 {
		// Double check: our checker retracted from the other checker's ray.
		if srcBB := checkers & pieces &^ castlingRooks; srcBB != 0 {
			src := srcBB.LastPopSquare()
			other := (checkers &^ pieces).LastPopSquare()
			targets := board.Between(other, oppKsq) & officerMoves(piece, src, all) &^ all & mask
			list = push(src, targets, captureKind(src))
		}
	}

	return list
}

// appendKingRetractions adds the retraction records of the retracting king, including
// uncastling.
func appendKingRetractions(list []sourceTargets, b *RetractableBoard, nb int, mask board.Bitboard) []sourceTargets {
	all := b.All()
	retractor := b.SideToMove().Opponent()
	oppKsq := b.KingSquare(b.SideToMove())
	pinned := b.Pinned()

	// Castling rights imply the king has never moved.
	if b.Castling().IsAllowed(board.CastlingRights(retractor)) {
		return list
	}

	src := b.KingSquare(retractor)
	targets := board.KingAttackboard(src) & mask &^ board.KingAttackboard(oppKsq) &^ all
	if nb == 1 {
		targets &= board.Between(b.Checkers().LastPopSquare(), oppKsq)
	}

	optional := targets
	if pinned.IsSet(src) {
		optional = targets & board.Between(src, oppKsq)
	}
	necessary := targets &^ optional

	if optional != 0 {
		list = append(list, sourceTargets{source: src, targets: optional, kind: UncaptureOptional})
	}
	if necessary != 0 {
		list = append(list, sourceTargets{source: src, targets: necessary, kind: UncaptureNecessary})
	}

	// Uncastling requires an after-castle shape: the king on the castled square, the
	// rook beside it, the vacated squares empty and not attacked, and the returning
	// rook not checking the opponent.
	back := retractor.BackRank()
	if src.Rank() != back {
		return list
	}
	rooks := b.PieceBitboard(retractor, board.Rook)
	stm := b.SideToMove()

	switch src.File() {
	case board.FileG:
		f := board.NewSquare(board.FileF, back)
		e := board.NewSquare(board.FileE, back)
		h := board.NewSquare(board.FileH, back)
		if rooks.IsSet(f) && b.IsEmpty(e) && b.IsEmpty(h) &&
			!b.isAttacked(f, stm) && !b.isAttacked(e, stm) &&
			board.RookAttackboard(all, oppKsq)&board.BitMask(h) == 0 &&
			(nb == 0 || b.Checkers().IsSet(f)) {
			list = append(list, sourceTargets{source: src, targets: board.BitMask(e), kind: UncaptureForbidden})
		}

	case board.FileC:
		d := board.NewSquare(board.FileD, back)
		e := board.NewSquare(board.FileE, back)
		bsq := board.NewSquare(board.FileB, back)
		a := board.NewSquare(board.FileA, back)
		if rooks.IsSet(d) && b.IsEmpty(e) && b.IsEmpty(bsq) && b.IsEmpty(a) &&
			!b.isAttacked(d, stm) && !b.isAttacked(e, stm) &&
			board.RookAttackboard(all, oppKsq)&board.BitMask(a) == 0 &&
			(nb == 0 || b.Checkers().IsSet(d)) {
			list = append(list, sourceTargets{source: src, targets: board.BitMask(e), kind: UncaptureForbidden})
		}
	}

	return list
}

// appendPawnRetractions adds the retraction records of pawns: unpushes, uncaptures,
// unpromotions and en-passant retractions.
func appendPawnRetractions(list []sourceTargets, b *RetractableBoard, nb int, mask board.Bitboard) []sourceTargets {
	all := b.All()
	retractor := b.SideToMove().Opponent()
	oppKsq := b.KingSquare(b.SideToMove())
	retracting := b.ColorBitboard(retractor)
	pawns := b.PieceBitboard(retractor, board.Pawn)
	pinned := b.Pinned()
	checkers := b.Checkers()

	// A pawn on any of these squares would have been checking before the move.
	checkMask := board.PawnAttackboard(b.SideToMove(), oppKsq)
	firstRank := board.BitRank(retractor.BackRank())
	lastRank := board.BitRank(retractor.PromotionRank())

	// Pieces on the promotion rank may retract as unpromoting pawns.
	var candidates board.Bitboard
	switch {
	case nb >= 1 && checkers&(pawns|lastRank) != 0:
		candidates = checkers & (pawns | lastRank)
	case nb <= 1:
		candidates = pawns | (lastRank & retracting &^ board.BitMask(b.KingSquare(retractor)))
	}

	for bb := candidates; bb != 0; bb &= bb - 1 {
		src := bb.LastPopSquare()

		otherRay := board.FullBitboard
		if nb >= 1 && !(nb == 1 && checkers.LastPopSquare() == src) {
			checker := (checkers &^ board.BitMask(src)).LastPopSquare()
			otherRay = board.Between(checker, oppKsq)
		}

		unpromotion := src.Rank() == retractor.PromotionRank()

		// Pawn unpushes, two ranks when the en-passant state admits a jump.
		targets := board.BitMask(src.Backward(retractor))
		if src.Rank() == retractor.FourthRank() && b.ep.Kind == EPAny {
			targets |= board.BitMask(src.Backward(retractor).Backward(retractor))
		}
		targets &= ^all &^ checkMask &^ firstRank & otherRay & mask
		if pinned.IsSet(src) {
			targets &= board.Line(src, oppKsq)
		}
		if targets != 0 {
			list = append(list, sourceTargets{source: src, targets: targets, kind: UncaptureForbidden, unpromotion: unpromotion})
		}

		// Pawn uncaptures: diagonal retractions must restore a piece.
		targets = board.PawnAttackboard(b.SideToMove(), src) &^ all &^ checkMask &^ firstRank & otherRay & mask
		if pinned.IsSet(src) {
			targets &= board.Line(src, oppKsq)
		}
		if targets != 0 {
			list = append(list, sourceTargets{source: src, targets: targets, kind: UncaptureNecessary, unpromotion: unpromotion})
		}
	}

	// En-passant retractions: a pawn on its relative 6th rank retracts diagonally
	// while the captured pawn reappears behind the source.
	epRank := board.Rank6
	if retractor == board.Black {
		epRank = board.Rank3
	}
	for bb := board.BitRank(epRank) & pawns; bb != 0; bb &= bb - 1 {
		src := bb.LastPopSquare()
		reappearing := src.Backward(retractor)
		if !b.IsEmpty(src.Forward(retractor)) || !b.IsEmpty(reappearing) {
			continue
		}

		targets := board.AdjacentFiles(src.File()) & board.BitRank(reappearing.Rank()) &^ all &^ checkMask & mask
		if pinned.IsSet(src) && !board.Line(src, oppKsq).IsSet(reappearing) {
			targets &= board.Line(src, oppKsq)
		}

		if nb == 1 && checkers.LastPopSquare() != src {
			ray := board.Between(checkers.LastPopSquare(), oppKsq)
			if !ray.IsSet(reappearing) {
				targets &= ray
			}
		} else if nb == 2 {
			if checkers.IsSet(src) {
				other := (checkers &^ board.BitMask(src)).LastPopSquare()
				if board.Between(other, oppKsq).IsSet(reappearing) {
					targets &= board.Between(other, oppKsq)
				}
			} else {
				// Two officers are checking: the reappearing pawn must block one ray
				// and the retraction the other.
				rays := board.EmptyBitboard
				for cb := checkers; cb != 0; cb &= cb - 1 {
					rays |= board.Between(cb.LastPopSquare(), oppKsq)
				}
				if !rays.IsSet(reappearing) {
					targets = 0
				}
				targets &= rays
			}
		}

		if targets != 0 {
			list = append(list, sourceTargets{source: src, targets: targets, kind: UncaptureEnPassant})
		}
	}

	return list
}
