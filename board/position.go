package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

// FENStartPos is the standard initial position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

// Position is an immutable board snapshot plus side to move. Playing a move returns a
// new Position and leaves the receiver untouched.
type Position struct {
	b dragontoothmg.Board
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	return Position{b: dragontoothmg.ParseFen(FENStartPos)}
}

// ParseFEN builds a Position from a FEN string. The string is validated first since
// dragontoothmg's parser does not report errors.
func ParseFEN(fen string) (p Position, err error) {
	fen = strings.TrimSpace(fen)
	if _, err := chess.FEN(fen); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	defer func() {
		if r := recover(); r != nil {
			p = Position{}
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	return Position{b: dragontoothmg.ParseFen(fen)}, nil
}

// FEN renders the position.
func (p Position) FEN() string {
	b := p.b
	return b.ToFen()
}

// Turn returns the side to move.
func (p Position) Turn() Color {
	if p.b.Wtomove {
		return White
	}
	return Black
}

// FullmoveNumber returns the full move counter (incremented after Black's move).
func (p Position) FullmoveNumber() int { return int(p.b.Fullmoveno) }

// InCheck reports whether the side to move has its king in check.
func (p Position) InCheck() bool {
	b := p.b
	return b.OurKingInCheck()
}

// Hash returns the Zobrist key of the position.
func (p Position) Hash() uint64 {
	b := p.b
	return b.Hash()
}

func (p Position) sides() (us, them *dragontoothmg.Bitboards) {
	if p.b.Wtomove {
		return &p.b.White, &p.b.Black
	}
	return &p.b.Black, &p.b.White
}

// roleAt returns the role found on a square in one side's bitboards.
func roleAt(bitboards *dragontoothmg.Bitboards, sq Square) Role {
	mask := bb(sq)
	if bitboards.All&mask == 0 {
		return NoRole
	}
	switch {
	case bitboards.Pawns&mask != 0:
		return Pawn
	case bitboards.Knights&mask != 0:
		return Knight
	case bitboards.Bishops&mask != 0:
		return Bishop
	case bitboards.Rooks&mask != 0:
		return Rook
	case bitboards.Queens&mask != 0:
		return Queen
	case bitboards.Kings&mask != 0:
		return King
	}
	return NoRole
}

// PieceAt returns the piece on a square. ok is false for empty or invalid squares.
func (p Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return NoPiece, false
	}
	if r := roleAt(&p.b.White, sq); r != NoRole {
		return Piece{Color: White, Role: r}, true
	}
	if r := roleAt(&p.b.Black, sq); r != NoRole {
		return Piece{Color: Black, Role: r}, true
	}
	return NoPiece, false
}

// Board returns the piece placement as a map.
func (p Position) Board() map[Square]Piece {
	squares, pieces := p.Placements()
	m := make(map[Square]Piece, len(squares))
	for i, sq := range squares {
		m[sq] = pieces[i]
	}
	return m
}

// Placements returns the occupied squares in ascending order with their pieces.
func (p Position) Placements() (squares []Square, pieces []Piece) {
	occ := p.b.White.All | p.b.Black.All
	squares = make([]Square, 0, 32)
	pieces = make([]Piece, 0, 32)
	for sq := Square(0); sq < 64; sq++ {
		if occ&bb(sq) == 0 {
			continue
		}
		pc, _ := p.PieceAt(sq)
		squares = append(squares, sq)
		pieces = append(pieces, pc)
	}
	return squares, pieces
}

// ==========================
// Move generation
// ==========================

// convert translates a dragontoothmg move into our move variant. dragontoothmg encodes
// castling as a two-file king step and en passant as a diagonal pawn step onto an empty
// square.
func (p Position) convert(dm dragontoothmg.Move) Move {
	from := Square(dm.From())
	to := Square(dm.To())
	us, them := p.sides()
	role := roleAt(us, from)

	fileDelta := to.File() - from.File()
	if role == King && (fileDelta == 2 || fileDelta == -2) {
		rookFile := 7
		if fileDelta < 0 {
			rookFile = 0
		}
		return CastleMove(from, SquareAt(rookFile, from.Rank()))
	}
	captured := roleAt(them, to)
	if role == Pawn && fileDelta != 0 && captured == NoRole {
		return EnPassantMove(from, to)
	}
	return NormalMove(role, from, to, captured, Role(dm.Promote()))
}

// LegalMoves enumerates the legal moves of the side to move.
func (p Position) LegalMoves() []Move {
	b := p.b
	generated := b.GenerateLegalMoves()
	moves := make([]Move, 0, len(generated))
	for _, dm := range generated {
		moves = append(moves, p.convert(dm))
	}
	return moves
}

// lookup finds the dragontoothmg encoding of a legal move.
func (p Position) lookup(m Move) (dragontoothmg.Move, bool) {
	b := p.b
	for _, dm := range b.GenerateLegalMoves() {
		if p.convert(dm) == m {
			return dm, true
		}
	}
	return 0, false
}

// IsLegal reports whether m is legal in the position.
func (p Position) IsLegal(m Move) bool {
	_, ok := p.lookup(m)
	return ok
}

// Play returns the position after m. The receiver is not modified.
func (p Position) Play(m Move) (Position, error) {
	dm, ok := p.lookup(m)
	if !ok {
		return p, fmt.Errorf("%w: %s in %s", ErrIllegalMove, m, p.FEN())
	}
	next := p.b
	next.Apply(dm)
	return Position{b: next}, nil
}

// ParseUCI finds the legal move written in long algebraic form ("e2e4", "e7e8q").
// Castling is accepted as the king's two-square step.
func (p Position) ParseUCI(movestr string) (Move, error) {
	movestr = strings.TrimSpace(strings.ToLower(movestr))
	if len(movestr) < 4 || len(movestr) > 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, movestr)
	}
	from, err := ParseSquare(movestr[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(movestr[2:4])
	if err != nil {
		return Move{}, err
	}
	promo := NoRole
	if len(movestr) == 5 {
		promo = RoleFromChar(movestr[4])
		if !promo.Promotable() {
			return Move{}, fmt.Errorf("%w: invalid promotion piece in %q", ErrIllegalMove, movestr)
		}
	}
	for _, m := range p.LegalMoves() {
		if m.From() == from && m.Dest() == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s not found for position %s", ErrIllegalMove, movestr, p.FEN())
}

// Perft counts leaf nodes of the legal move tree to the given depth.
func Perft(p Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	b := p.b
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, dm := range moves {
		next := p.b
		next.Apply(dm)
		nodes += Perft(Position{b: next}, depth-1)
	}
	return nodes
}
