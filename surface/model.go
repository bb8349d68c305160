// Package surface keeps a presentation-side picture of the board, built only from the
// signals the controller emits. Front ends draw from it; tests compare it against the
// real position to check that the signal stream is complete.
package surface

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"disboard/board"
	"disboard/pipeline"
)

// Model is what a rendering surface would show. New returns an empty one. It
// must only be touched from the presentation goroutine.
type Model struct {
	pieces [64]board.Piece

	Phantom   board.Piece
	Hints     []board.Square
	Captures  []board.Square
	Highlight board.Square
	LastFrom  board.Square
	LastTo    board.Square
	// Promotion is the pending promotion file (plus 10 for Black), or -1.
	Promotion int8
	Movetext  string
	MoveList  pipeline.SetMoveList
}

// New returns an empty model with no highlight or pending promotion.
func New() *Model {
	return &Model{
		Highlight: board.NoSquare,
		LastFrom:  board.NoSquare,
		LastTo:    board.NoSquare,
		Promotion: -1,
	}
}

// Present applies one signal. It satisfies pipeline.Presenter.
func (m *Model) Present(s pipeline.Signal) {
	switch s := s.(type) {
	case pipeline.ResetBoard:
		m.pieces = [64]board.Piece{}
		for i, sq := range s.Squares {
			m.SetPiece(sq, s.Pieces[i])
		}
	case pipeline.PlacePiece:
		m.SetPiece(s.Square, s.Piece)
	case pipeline.MovePiece:
		m.MovePiece(s.Src, s.Dest)
	case pipeline.RemovePiece:
		m.ClearSquare(s.Square)
	case pipeline.ShowPhantom:
		m.Phantom = s.Piece
	case pipeline.SetHints:
		m.Hints = slices.Clone(s.Squares)
	case pipeline.SetCaptures:
		m.Captures = slices.Clone(s.Squares)
	case pipeline.SetHighlight:
		m.Highlight = s.Square
	case pipeline.SetLastMove:
		m.LastFrom, m.LastTo = s.Src, s.Dest
	case pipeline.SetPromotionPending:
		m.Promotion = s.File
	case pipeline.SetMovetext:
		m.Movetext = s.Text
	case pipeline.SetMoveList:
		m.MoveList = s
	default:
		panic(fmt.Sprintf("surface: unknown signal %T", s))
	}
}

// PieceAt returns the piece drawn on sq.
func (m *Model) PieceAt(sq board.Square) board.Piece {
	if !sq.Valid() {
		return board.NoPiece
	}
	return m.pieces[sq]
}

// SetPiece draws p on sq, replacing whatever was there.
func (m *Model) SetPiece(sq board.Square, p board.Piece) {
	if sq.Valid() {
		m.pieces[sq] = p
	}
}

// ClearSquare erases sq.
func (m *Model) ClearSquare(sq board.Square) { m.SetPiece(sq, board.NoPiece) }

// MovePiece moves the piece on from to to. Anything on to is overwritten.
func (m *Model) MovePiece(from, to board.Square) {
	if !from.Valid() || !to.Valid() || from == to {
		return
	}
	m.pieces[to] = m.pieces[from]
	m.pieces[from] = board.NoPiece
}

// Pending reports whether the role picker is open, and for which file and colour.
func (m *Model) Pending() (file int, color board.Color, ok bool) {
	if m.Promotion < 0 {
		return 0, board.White, false
	}
	if m.Promotion >= 10 {
		return int(m.Promotion) - 10, board.Black, true
	}
	return int(m.Promotion), board.White, true
}

// IsHint reports whether sq carries a quiet-move dot.
func (m *Model) IsHint(sq board.Square) bool { return slices.Contains(m.Hints, sq) }

// IsCapture reports whether sq carries a capture ring.
func (m *Model) IsCapture(sq board.Square) bool { return slices.Contains(m.Captures, sq) }

// Placement returns the drawn pieces as the piece placement field of a FEN string.
func (m *Model) Placement() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := m.pieces[board.SquareAt(file, rank)]
			if p.IsNone() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// Diagram draws the board as text, White at the bottom. Empty squares are dots, hinted
// squares '*', capture targets keep their piece inside brackets and the highlight is
// marked with angle brackets.
func (m *Model) Diagram() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sq := board.SquareAt(file, rank)
			sb.WriteString(m.cell(sq))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")
	return sb.String()
}

func (m *Model) cell(sq board.Square) string {
	glyph := "."
	if p := m.pieces[sq]; !p.IsNone() {
		glyph = p.String()
	} else if m.IsHint(sq) {
		glyph = "*"
	}
	switch {
	case sq == m.Highlight:
		return "<" + glyph + ">"
	case m.IsCapture(sq):
		return "[" + glyph + "]"
	case sq == m.LastFrom || sq == m.LastTo:
		return "(" + glyph + ")"
	default:
		return " " + glyph + " "
	}
}
