package board

import "errors"

// Square represents a board position (0-63), a1 = 0, h8 = 63.
type Square int8

// NoSquare marks the absence of a square on the wire.
const NoSquare Square = -1

var ErrInvalidSquare = errors.New("invalid square")

// SquareAt returns the square on the given file and rank, or NoSquare when either
// coordinate is off the board.
func SquareAt(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank<<3 | file)
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

// File returns the file index in [0,8).
func (s Square) File() int { return int(s) & 7 }

// Rank returns the rank index in [0,8).
func (s Square) Rank() int { return int(s) >> 3 }

// String produces the algebraic name of the square (e.g. "e4"), or "-" for NoSquare.
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '1' + byte(s.Rank())})
}

// ParseSquare converts an algebraic name such as "e4" into a Square.
func ParseSquare(alg string) (Square, error) {
	if len(alg) != 2 {
		return NoSquare, ErrInvalidSquare
	}
	file := alg[0]
	rank := alg[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, ErrInvalidSquare
	}
	return SquareAt(int(file-'a'), int(rank-'1')), nil
}

// bb returns a bitboard with the given square bit set.
func bb(sq Square) uint64 { return 1 << uint64(sq) }
