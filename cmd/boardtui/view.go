package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"disboard/board"
	"disboard/gametree"
	"disboard/pipeline"
	"disboard/surface"
)

// Board cells are cellW columns wide and one row high, drawn from (originX, originY).
const (
	cellW   = 3
	originX = 2
	originY = 1
	panelX  = originX + 8*cellW + 3
)

// listColW is the width of one move column in the list.
const listColW = 9

var (
	lightSquare = tcell.NewRGBColor(240, 217, 181)
	darkSquare  = tcell.NewRGBColor(181, 136, 99)
	highlightBg = tcell.NewRGBColor(130, 151, 105)
	lastMoveBg  = tcell.NewRGBColor(205, 210, 106)
	captureBg   = tcell.NewRGBColor(200, 90, 80)
)

// cellSquare maps a screen cell to a board square, White at the bottom.
func cellSquare(col, row int) board.Square {
	if col < originX || row < originY {
		return board.NoSquare
	}
	return board.SquareAt((col-originX)/cellW, 7-(row-originY))
}

// cellPointer turns a screen cell into the pixel coordinates a pointer slot carries, for
// a board drawn with size pixels per square.
func cellPointer(col, row int, size uint32) (float32, float32) {
	x := (float32(col-originX) + 0.5) * float32(size) / cellW
	y := (float32(row-originY) + 0.5) * float32(size)
	return x, y
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// hit is a clickable stretch of one screen row that jumps to a node.
type hit struct {
	x0, x1, y int
	node      gametree.NodeID
}

func hitAt(hits []hit, col, row int) (gametree.NodeID, bool) {
	for _, h := range hits {
		if row == h.y && col >= h.x0 && col < h.x1 {
			return h.node, true
		}
	}
	return gametree.NilNode, false
}

// draw renders the model, the move list and a status line. It returns where the moves
// of the list were drawn.
func draw(s tcell.Screen, m *surface.Model, status string) []hit {
	s.Clear()
	for rank := 7; rank >= 0; rank-- {
		row := originY + 7 - rank
		drawText(s, 0, row, tcell.StyleDefault, string(rune('1'+rank)))
		for file := 0; file < 8; file++ {
			drawSquare(s, m, board.SquareAt(file, rank), originX+file*cellW, row)
		}
	}
	for file := 0; file < 8; file++ {
		drawText(s, originX+file*cellW+1, originY+8, tcell.StyleDefault, string(rune('a'+file)))
	}

	_, height := s.Size()
	hits := drawMoveList(s, m.MoveList, height-originY-1)

	if _, color, ok := m.Pending(); ok {
		status = "promote " + color.String() + ": q r b n"
	} else if !m.Phantom.IsNone() {
		status = "holding " + m.Phantom.String()
	}
	drawText(s, 0, originY+10, tcell.StyleDefault.Bold(true), status)
	drawText(s, 0, originY+11, tcell.StyleDefault.Dim(true), "mouse: move, pick from list  <- ->: browse  h: start  s: save  esc: quit")
	s.Show()
	return hits
}

// drawMoveList draws at most maxRows rows of the list beside the board, scrolled so the
// shown node stays visible.
func drawMoveList(s tcell.Screen, l pipeline.SetMoveList, maxRows int) []hit {
	if maxRows < 1 {
		return nil
	}
	first := 0
	if ply, _, ok := l.Locate(l.Current); ok && ply > 0 {
		if row, _ := l.Cell(ply - 1); row >= maxRows {
			first = row - maxRows + 1
		}
	}

	var hits []hit
	token := func(x, y int, e gametree.ListEntry, style tcell.Style) int {
		if e.Node == l.Current {
			style = style.Reverse(true)
		}
		drawText(s, x, y, style, e.SAN)
		hits = append(hits, hit{x0: x, x1: x + len(e.SAN), y: y, node: e.Node})
		return x + len(e.SAN)
	}
	for row := first; row < l.Rows() && row < first+maxRows; row++ {
		y := originY + row - first
		drawText(s, panelX, y, tcell.StyleDefault.Dim(true), fmt.Sprintf("%3d.", row+1))
		var alts []gametree.ListEntry
		for col := 0; col < 2; col++ {
			x := panelX + 5 + col*listColW
			i := l.At(row, col)
			if i < 0 {
				if col == 0 {
					drawText(s, x, y, tcell.StyleDefault.Dim(true), "...")
				}
				continue
			}
			token(x, y, l.Entries[i], tcell.StyleDefault)
			alts = append(alts, l.Entries[i].Variations...)
		}
		x := panelX + 5 + 2*listColW
		for _, v := range alts {
			x = token(x, y, v, tcell.StyleDefault.Italic(true)) + 1
		}
	}
	return hits
}

func drawSquare(s tcell.Screen, m *surface.Model, sq board.Square, x, y int) {
	bg := lightSquare
	if (sq.File()+sq.Rank())%2 == 0 {
		bg = darkSquare
	}
	switch {
	case sq == m.Highlight:
		bg = highlightBg
	case m.IsCapture(sq):
		bg = captureBg
	case sq == m.LastFrom || sq == m.LastTo:
		bg = lastMoveBg
	}
	style := tcell.StyleDefault.Background(bg)

	glyph := ' '
	if p := m.PieceAt(sq); !p.IsNone() {
		glyph = rune(p.String()[0])
		if p.Color == board.White {
			style = style.Foreground(tcell.ColorWhite).Bold(true)
		} else {
			style = style.Foreground(tcell.ColorBlack).Bold(true)
		}
	} else if m.IsHint(sq) {
		glyph = '·'
		style = style.Foreground(tcell.ColorDarkGreen)
	}
	s.SetContent(x, y, ' ', nil, style)
	s.SetContent(x+1, y, glyph, nil, style)
	s.SetContent(x+2, y, ' ', nil, style)
}
