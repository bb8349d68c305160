package board

import "strings"

// MoveKind tags the variant held by a Move.
type MoveKind uint8

const (
	// MoveNone is the "no move" sentinel; it is the only kind without an origin square.
	MoveNone MoveKind = iota
	MoveNormal
	MoveEnPassant
	// MoveCastle stores the king's origin in from and the rook's origin in to. King and
	// rook destinations are derived from the castling side and the king's rank.
	MoveCastle
	// MovePut drops a piece of the given role on a square. Standard chess never
	// generates it.
	MovePut
)

// CastlingSide distinguishes short and long castling.
type CastlingSide uint8

const (
	NoCastling CastlingSide = iota
	KingSide
	QueenSide
)

// KingFile returns the file the king lands on.
func (cs CastlingSide) KingFile() int {
	if cs == QueenSide {
		return 2
	}
	return 6
}

// RookFile returns the file the rook lands on.
func (cs CastlingSide) RookFile() int {
	if cs == QueenSide {
		return 3
	}
	return 5
}

// Move is a tagged variant over Normal, EnPassant, Castle and Put. The zero value is the
// no-move sentinel. Moves are comparable values.
type Move struct {
	kind      MoveKind
	role      Role
	from      Square
	to        Square
	capture   Role
	promotion Role
}

// NormalMove builds a plain move, optionally capturing and/or promoting.
func NormalMove(role Role, from, to Square, capture, promotion Role) Move {
	return Move{kind: MoveNormal, role: role, from: from, to: to, capture: capture, promotion: promotion}
}

// EnPassantMove builds an en passant capture; the captured pawn sits beside the origin.
func EnPassantMove(from, to Square) Move {
	return Move{kind: MoveEnPassant, role: Pawn, from: from, to: to, capture: Pawn}
}

// CastleMove builds a castling move from the king's and the rook's origin squares.
func CastleMove(king, rook Square) Move {
	return Move{kind: MoveCastle, role: King, from: king, to: rook}
}

// PutMove builds a drop.
func PutMove(role Role, to Square) Move {
	return Move{kind: MovePut, role: role, from: NoSquare, to: to}
}

// Kind returns the variant tag.
func (m Move) Kind() MoveKind { return m.kind }

// IsNone reports whether m is the no-move sentinel.
func (m Move) IsNone() bool { return m.kind == MoveNone }

// Role returns the role of the moving piece.
func (m Move) Role() Role { return m.role }

// From returns the origin square, or NoSquare for drops and the sentinel.
func (m Move) From() Square {
	if m.kind == MoveNone || m.kind == MovePut {
		return NoSquare
	}
	return m.from
}

// To returns the stored destination. For castling this is the rook's origin square.
func (m Move) To() Square {
	if m.kind == MoveNone {
		return NoSquare
	}
	return m.to
}

// Dest returns where the moving piece ends up: the king's destination for castling and
// the plain destination otherwise.
func (m Move) Dest() Square {
	if m.kind == MoveCastle {
		return m.KingDest()
	}
	return m.To()
}

// Capture returns the captured role, or NoRole.
func (m Move) Capture() Role { return m.capture }

// IsCapture reports whether the move takes a piece (en passant included).
func (m Move) IsCapture() bool { return m.capture != NoRole }

// Promotion returns the promotion role, or NoRole.
func (m Move) Promotion() Role { return m.promotion }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool { return m.promotion != NoRole }

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool { return m.kind == MoveEnPassant }

// IsCastle reports whether the move is castling.
func (m Move) IsCastle() bool { return m.kind == MoveCastle }

// CastlingSide returns the side for castling moves and NoCastling otherwise.
func (m Move) CastlingSide() CastlingSide {
	if m.kind != MoveCastle {
		return NoCastling
	}
	if m.to.File() > m.from.File() {
		return KingSide
	}
	return QueenSide
}

// KingDest returns the king's destination for castling moves.
func (m Move) KingDest() Square {
	if m.kind != MoveCastle {
		return NoSquare
	}
	return SquareAt(m.CastlingSide().KingFile(), m.from.Rank())
}

// RookFrom returns the rook's origin for castling moves.
func (m Move) RookFrom() Square {
	if m.kind != MoveCastle {
		return NoSquare
	}
	return m.to
}

// RookDest returns the rook's destination for castling moves.
func (m Move) RookDest() Square {
	if m.kind != MoveCastle {
		return NoSquare
	}
	return SquareAt(m.CastlingSide().RookFile(), m.from.Rank())
}

// EnPassantSquare returns the square of the pawn taken en passant: the destination file
// on the origin rank.
func (m Move) EnPassantSquare() Square {
	if m.kind != MoveEnPassant {
		return NoSquare
	}
	return SquareAt(m.to.File(), m.from.Rank())
}

// UCI produces the long algebraic form (e.g. "e2e4", "e7e8q", "e1g1"), or "0000".
func (m Move) UCI() string {
	switch m.kind {
	case MoveNone:
		return "0000"
	case MovePut:
		return string(m.role.Char()) + "@" + m.to.String()
	}
	str := m.from.String() + m.Dest().String()
	if m.promotion != NoRole {
		str += strings.ToLower(string(m.promotion.Char()))
	}
	return str
}

func (m Move) String() string { return m.UCI() }

// PendingPromotion is a legal promotion whose role has not been chosen yet.
type PendingPromotion struct {
	From    Square
	To      Square
	Capture Role
}

// StagePromotion strips the role from a promotion move. ok is false if m does not promote.
func StagePromotion(m Move) (p PendingPromotion, ok bool) {
	if m.kind != MoveNormal || !m.IsPromotion() {
		return PendingPromotion{}, false
	}
	return PendingPromotion{From: m.from, To: m.to, Capture: m.capture}, true
}

// Complete returns the promotion move with the given role.
func (p PendingPromotion) Complete(role Role) Move {
	return NormalMove(Pawn, p.From, p.To, p.Capture, role)
}
