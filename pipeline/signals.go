package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"disboard/board"
	"disboard/gametree"
)

// Signal is a presentation update emitted by the controller. The set of signals is
// closed; presenters switch over the concrete types below. Optional squares use
// board.NoSquare and optional pieces board.NoPiece.
type Signal interface {
	signal()
}

// ResetBoard replaces the whole piece layout. Squares and Pieces are parallel slices.
type ResetBoard struct {
	Squares []board.Square
	Pieces  []board.Piece
}

// PlacePiece draws a piece on a square.
type PlacePiece struct {
	Piece  board.Piece
	Square board.Square
}

// MovePiece moves whatever is drawn on Src to Dest.
type MovePiece struct {
	Src, Dest board.Square
}

// RemovePiece erases the piece drawn on Square.
type RemovePiece struct {
	Square board.Square
}

// ShowPhantom shows the piece following the pointer during a drag, or hides it.
type ShowPhantom struct {
	Piece board.Piece
}

// SetHints replaces the quiet-move dots.
type SetHints struct {
	Squares []board.Square
}

// SetCaptures replaces the capture rings.
type SetCaptures struct {
	Squares []board.Square
}

// SetHighlight marks the selected square, or clears it.
type SetHighlight struct {
	Square board.Square
}

// SetLastMove marks the squares of the move that led to the shown position.
type SetLastMove struct {
	Src, Dest board.Square
}

// SetPromotionPending opens the role picker, or closes it with File -1. File is the
// promotion file, plus 10 when Black promotes.
type SetPromotionPending struct {
	File int8
}

// SetMovetext carries the serialized game tree.
type SetMovetext struct {
	Text string
}

// SetMoveList replaces the move list: the mainline from Root, two moves to a row, and the
// node the board currently shows.
type SetMoveList struct {
	Root       gametree.NodeID
	BlackFirst bool
	Entries    []gametree.ListEntry
	Current    gametree.NodeID
}

// Cell returns the row and column of entry i. When Black moves first the first row
// leaves White's column empty.
func (l SetMoveList) Cell(i int) (row, col int) {
	if l.BlackFirst {
		i++
	}
	return i / 2, i % 2
}

// Rows is the number of rows the list occupies.
func (l SetMoveList) Rows() int {
	if len(l.Entries) == 0 {
		return 0
	}
	row, _ := l.Cell(len(l.Entries) - 1)
	return row + 1
}

// At returns the entry index drawn at (row, col), or -1.
func (l SetMoveList) At(row, col int) int {
	i := row*2 + col
	if l.BlackFirst {
		i--
	}
	if col < 0 || col > 1 || i < 0 || i >= len(l.Entries) {
		return -1
	}
	return i
}

// Target returns the node at ply (0 is the root) and variation (0 is the mainline move,
// n the n-th alternative to it).
func (l SetMoveList) Target(ply, variation int) (gametree.NodeID, bool) {
	if ply == 0 && variation == 0 {
		return l.Root, l.Root != gametree.NilNode
	}
	if ply < 1 || ply > len(l.Entries) || variation < 0 {
		return gametree.NilNode, false
	}
	e := l.Entries[ply-1]
	if variation == 0 {
		return e.Node, true
	}
	if variation > len(e.Variations) {
		return gametree.NilNode, false
	}
	return e.Variations[variation-1].Node, true
}

// Locate is the inverse of Target. ok is false for nodes deeper inside a variation.
func (l SetMoveList) Locate(id gametree.NodeID) (ply, variation int, ok bool) {
	if id == l.Root {
		return 0, 0, true
	}
	for i, e := range l.Entries {
		if e.Node == id {
			return i + 1, 0, true
		}
		for j, v := range e.Variations {
			if v.Node == id {
				return i + 1, j + 1, true
			}
		}
	}
	return 0, 0, false
}

func (ResetBoard) signal()          {}
func (PlacePiece) signal()          {}
func (MovePiece) signal()           {}
func (RemovePiece) signal()         {}
func (ShowPhantom) signal()         {}
func (SetHints) signal()            {}
func (SetCaptures) signal()         {}
func (SetHighlight) signal()        {}
func (SetLastMove) signal()         {}
func (SetPromotionPending) signal() {}
func (SetMovetext) signal()         {}
func (SetMoveList) signal()         {}

func squareList(squares []board.Square) string {
	names := make([]string, len(squares))
	for i, sq := range squares {
		names[i] = sq.String()
	}
	return strings.Join(names, ",")
}

// Describe renders a signal as one line of text for logs and the text front end.
func Describe(s Signal) string {
	switch s := s.(type) {
	case ResetBoard:
		var sb strings.Builder
		for i, sq := range s.Squares {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(s.Pieces[i].String())
			sb.WriteString(sq.String())
		}
		return "reset " + sb.String()
	case PlacePiece:
		return fmt.Sprintf("place %s %s", s.Piece, s.Square)
	case MovePiece:
		return fmt.Sprintf("move %s %s", s.Src, s.Dest)
	case RemovePiece:
		return fmt.Sprintf("remove %s", s.Square)
	case ShowPhantom:
		if s.Piece.IsNone() {
			return "phantom -"
		}
		return fmt.Sprintf("phantom %s", s.Piece)
	case SetHints:
		return "hints " + squareList(s.Squares)
	case SetCaptures:
		return "captures " + squareList(s.Squares)
	case SetHighlight:
		return fmt.Sprintf("highlight %s", s.Square)
	case SetLastMove:
		return fmt.Sprintf("lastmove %s %s", s.Src, s.Dest)
	case SetPromotionPending:
		return fmt.Sprintf("promoting %d", s.File)
	case SetMovetext:
		return "movetext " + s.Text
	case SetMoveList:
		return "movelist " + describeMoveList(s)
	default:
		panic(fmt.Sprintf("pipeline: unknown signal %T", s))
	}
}

// describeMoveList gives the current ply (ply.variation inside an alternative, - when
// not listed) followed by the moves, alternatives in brackets.
func describeMoveList(l SetMoveList) string {
	cur := "-"
	if ply, v, ok := l.Locate(l.Current); ok {
		cur = strconv.Itoa(ply)
		if v > 0 {
			cur += "." + strconv.Itoa(v)
		}
	}
	parts := []string{cur}
	for _, e := range l.Entries {
		tok := e.SAN
		if len(e.Variations) > 0 {
			alts := make([]string, len(e.Variations))
			for i, v := range e.Variations {
				alts[i] = v.SAN
			}
			tok += "(" + strings.Join(alts, ",") + ")"
		}
		parts = append(parts, tok)
	}
	return strings.Join(parts, " ")
}
