package board

// Color of a side. The numbering follows the presentation wire format.
type Color uint8

const (
	Black Color = 0
	White Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return 1 - c }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Role is a colorless piece type. The values match dragontoothmg's piece codes.
type Role uint8

const (
	NoRole Role = 0
	Pawn   Role = 1
	Knight Role = 2
	Bishop Role = 3
	Rook   Role = 4
	Queen  Role = 5
	King   Role = 6
)

// Roles lists every role in index order; ChoosePromotion indices point into it.
var Roles = [6]Role{Pawn, Knight, Bishop, Rook, Queen, King}

// Promotable reports whether a pawn may promote to the role.
func (r Role) Promotable() bool { return r >= Knight && r <= Queen }

// Char returns the upper-case SAN letter of the role ('P' for pawns).
func (r Role) Char() byte {
	switch r {
	case Pawn:
		return 'P'
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	}
	return '?'
}

// RoleFromChar parses a role letter in either case.
func RoleFromChar(ch byte) Role {
	switch ch {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	}
	return NoRole
}

// Piece is an immutable colored piece. The zero value is "no piece".
type Piece struct {
	Color Color
	Role  Role
}

// NoPiece is the zero Piece.
var NoPiece = Piece{}

// IsNone reports whether p is the zero piece.
func (p Piece) IsNone() bool { return p.Role == NoRole }

// ID returns the wire id of the piece: White pieces are role-1 (0..5) and Black pieces
// role+9 (10..15).
func (p Piece) ID() uint8 {
	if p.Color == White {
		return uint8(p.Role) - 1
	}
	return uint8(p.Role) + 9
}

// PieceFromID inverts Piece.ID. Unknown ids give NoPiece.
func PieceFromID(id uint8) Piece {
	switch {
	case id <= 5:
		return Piece{Color: White, Role: Role(id + 1)}
	case id >= 10 && id <= 15:
		return Piece{Color: Black, Role: Role(id - 9)}
	}
	return NoPiece
}

// String gives the FEN letter of the piece (upper case for White).
func (p Piece) String() string {
	if p.IsNone() {
		return "."
	}
	ch := p.Role.Char()
	if p.Color == Black {
		ch += 'a' - 'A'
	}
	return string(ch)
}
