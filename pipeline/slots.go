package pipeline

import (
	"disboard/board"
	"disboard/gametree"
)

// Slot is a command sent from the presentation layer to the controller. The set of
// slots is closed; handlers switch over the concrete types below.
type Slot interface {
	slot()
}

// Resync asks for the full piece layout of the current node.
type Resync struct{}

// Click is a pointer click at pixel coordinates on a board drawn with SquareSize pixels
// per square.
type Click struct {
	X, Y       float32
	SquareSize uint32
}

// DragStart is the pointer grabbing whatever sits under (X, Y).
type DragStart struct {
	X, Y       float32
	SquareSize uint32
}

// DragEnd is the pointer dropping the dragged piece at (X, Y).
type DragEnd struct {
	X, Y       float32
	SquareSize uint32
}

// ChoosePromotion picks the role for a staged promotion. Index points into board.Roles.
type ChoosePromotion struct {
	Index uint8
}

// TraverseForward moves to the mainline child of the current node.
type TraverseForward struct{}

// TraverseBackward moves to the parent of the current node.
type TraverseBackward struct{}

// Jump moves to an arbitrary node, e.g. one picked from a move list.
type Jump struct {
	Node gametree.NodeID
}

func (Resync) slot()           {}
func (Click) slot()            {}
func (DragStart) slot()        {}
func (DragEnd) slot()          {}
func (ChoosePromotion) slot()  {}
func (TraverseForward) slot()  {}
func (TraverseBackward) slot() {}
func (Jump) slot()             {}

// SquareAt converts pixel coordinates into a board square: file = x / size and
// rank = 7 - y / size. Coordinates off the board, or a zero size, give NoSquare.
func SquareAt(x, y float32, size uint32) board.Square {
	if size == 0 || x < 0 || y < 0 {
		return board.NoSquare
	}
	file := int(uint32(x) / size)
	rank := 7 - int(uint32(y)/size)
	return board.SquareAt(file, rank)
}

// SquareCenter returns the pixel coordinates of the centre of sq, the inverse of
// SquareAt.
func SquareCenter(sq board.Square, size uint32) (x, y float32) {
	x = float32(sq.File())*float32(size) + float32(size)/2
	y = float32(7-sq.Rank())*float32(size) + float32(size)/2
	return x, y
}
