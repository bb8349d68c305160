// Package controller turns pointer gestures into moves on a game tree and reports every
// visible consequence as an ordered stream of presentation signals.
//
// A Controller is owned by a single goroutine, normally the pipeline worker. It never
// blocks: every slot is handled synchronously against in-memory state.
package controller

import (
	"fmt"

	"github.com/rs/zerolog"

	"disboard/board"
	"disboard/gametree"
	"disboard/pipeline"
	"disboard/resolve"
)

// Sink receives the signals a controller emits.
type Sink interface {
	Emit(pipeline.Signal) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(pipeline.Signal) error

func (f SinkFunc) Emit(s pipeline.Signal) error { return f(s) }

type drag struct {
	from  board.Square
	piece board.Piece
}

// Controller is the interaction state machine. It is Idle when nothing below is set,
// Selected with a highlighted square, Dragging with a dragged piece and
// AwaitingPromotion with a pending promotion.
type Controller struct {
	tree    *gametree.Tree
	current gametree.NodeID
	sink    Sink
	log     zerolog.Logger

	highlighted board.Square
	dragged     *drag
	pending     *board.PendingPromotion

	// first emit failure of the slot being handled
	err error
}

// New returns a controller positioned at the root of tree.
func New(tree *gametree.Tree, sink Sink, log zerolog.Logger) *Controller {
	return &Controller{
		tree:        tree,
		current:     tree.Root(),
		sink:        sink,
		log:         log,
		highlighted: board.NoSquare,
	}
}

// Current returns the node the board shows.
func (c *Controller) Current() gametree.NodeID { return c.current }

// Root returns the root node of the tree.
func (c *Controller) Root() gametree.NodeID { return c.tree.Root() }

// Len returns the number of nodes in the tree, root included.
func (c *Controller) Len() int { return c.tree.Len() }

// Position returns the position at a node of the tree.
func (c *Controller) Position(id gametree.NodeID) (board.Position, error) {
	return c.tree.Position(id)
}

// PrevMove returns the move that produced a node.
func (c *Controller) PrevMove(id gametree.NodeID) (board.Move, bool) {
	return c.tree.PrevMove(id)
}

// Movetext returns the serialized tree.
func (c *Controller) Movetext() string { return c.tree.Movetext() }

// Pending returns the staged promotion, if any.
func (c *Controller) Pending() (board.PendingPromotion, bool) {
	if c.pending == nil {
		return board.PendingPromotion{}, false
	}
	return *c.pending, true
}

// Highlighted returns the selected square, or NoSquare.
func (c *Controller) Highlighted() board.Square { return c.highlighted }

// HandleSlot processes one slot. The only error it returns is a sink failure; gestures
// that do not make a legal move are ignored.
func (c *Controller) HandleSlot(s pipeline.Slot) error {
	c.err = nil
	c.log.Debug().Str("slot", fmt.Sprintf("%T", s)).Msg("handle slot")

	switch s := s.(type) {
	case pipeline.Resync:
		c.Resync()
	case pipeline.Click:
		c.Click(pipeline.SquareAt(s.X, s.Y, s.SquareSize))
	case pipeline.DragStart:
		c.DragStart(pipeline.SquareAt(s.X, s.Y, s.SquareSize))
	case pipeline.DragEnd:
		c.DragEnd(pipeline.SquareAt(s.X, s.Y, s.SquareSize))
	case pipeline.ChoosePromotion:
		c.ChoosePromotion(s.Index)
	case pipeline.TraverseForward:
		c.TraverseForward()
	case pipeline.TraverseBackward:
		c.TraverseBackward()
	case pipeline.Jump:
		c.Jump(s.Node)
	default:
		panic(fmt.Sprintf("controller: unknown slot %T", s))
	}
	return c.err
}

func (c *Controller) emit(s pipeline.Signal) {
	if err := c.sink.Emit(s); err != nil && c.err == nil {
		c.err = err
	}
}

// position returns the position at the current node. The controller only ever holds ids
// minted by its own tree, so a lookup failure is a broken invariant.
func (c *Controller) position() board.Position {
	pos, err := c.tree.Position(c.current)
	if err != nil {
		c.log.Panic().Err(err).Str("node", c.current.String()).Msg("current node lost")
	}
	return pos
}

// Resync emits the full piece layout of the current node.
func (c *Controller) Resync() {
	squares, pieces := c.position().Placements()
	c.emit(pipeline.ResetBoard{Squares: squares, Pieces: pieces})
}

// Click handles a click on sq, which may be NoSquare for clicks off the board.
func (c *Controller) Click(sq board.Square) {
	c.dropDrag()
	c.resetOverlays()
	prior := c.highlighted
	c.highlighted = board.NoSquare
	c.cancelPromotion()

	if prior == sq {
		return
	}
	pos := c.position()
	if prior.Valid() {
		if m, ok := resolve.Resolve(pos, prior, sq); ok {
			c.emit(pipeline.MovePiece{Src: m.From(), Dest: m.Dest()})
			c.applyOrStage(pos, m)
			return
		}
	}
	if _, ok := pos.PieceAt(sq); !ok {
		return
	}
	c.highlighted = sq
	c.emit(pipeline.SetHighlight{Square: sq})
	c.showHints(pos, sq)
}

// DragStart lifts the piece on sq, if any.
func (c *Controller) DragStart(sq board.Square) {
	c.dropDrag()
	c.resetOverlays()
	c.highlighted = board.NoSquare
	c.cancelPromotion()

	pos := c.position()
	piece, ok := pos.PieceAt(sq)
	if !ok {
		return
	}
	c.highlighted = sq
	c.dragged = &drag{from: sq, piece: piece}

	c.emit(pipeline.RemovePiece{Square: sq})
	c.emit(pipeline.SetHighlight{Square: sq})
	c.emit(pipeline.ShowPhantom{Piece: piece})
	c.showHints(pos, sq)
}

// DragEnd drops the dragged piece on sq. A drop that is not a legal move puts the piece
// back where it came from.
func (c *Controller) DragEnd(sq board.Square) {
	c.emit(pipeline.ShowPhantom{Piece: board.NoPiece})

	d := c.dragged
	c.dragged = nil
	if d == nil {
		return
	}
	pos := c.position()
	m, ok := resolve.Resolve(pos, d.from, sq)
	if !ok {
		c.log.Debug().Stringer("from", d.from).Stringer("to", sq).Msg("drag rejected")
		c.emit(pipeline.PlacePiece{Piece: d.piece, Square: d.from})
		return
	}

	c.highlighted = board.NoSquare
	c.emit(pipeline.SetHints{Squares: []board.Square{}})
	c.emit(pipeline.SetCaptures{Squares: []board.Square{}})
	c.emit(pipeline.SetHighlight{Square: board.NoSquare})
	c.emit(pipeline.PlacePiece{Piece: d.piece, Square: m.Dest()})
	c.applyOrStage(pos, m)
}

// ChoosePromotion completes the staged promotion. index is the role number minus one,
// so Knight is 1 and Queen is 4; anything that cannot be promoted to means Queen.
func (c *Controller) ChoosePromotion(index uint8) {
	if c.pending == nil {
		c.log.Warn().Uint8("index", index).Msg("nothing to promote")
		return
	}
	p := *c.pending
	c.pending = nil

	role := board.Queen
	if int(index) < len(board.Roles) && board.Roles[index].Promotable() {
		role = board.Roles[index]
	}
	pos := c.position()
	m := p.Complete(role)

	c.emit(pipeline.SetPromotionPending{File: -1})
	c.emit(pipeline.PlacePiece{Piece: board.Piece{Color: pos.Turn(), Role: role}, Square: p.To})
	c.commit(m)
}

// TraverseForward moves to the mainline child of the current node.
func (c *Controller) TraverseForward() {
	child, ok := c.tree.MainlineChild(c.current)
	if !ok {
		return
	}
	c.moveTo(child)
}

// TraverseBackward moves to the parent of the current node.
func (c *Controller) TraverseBackward() {
	parent, ok := c.tree.Parent(c.current)
	if !ok {
		return
	}
	c.moveTo(parent)
}

// Jump moves to any node of the tree.
func (c *Controller) Jump(id gametree.NodeID) {
	if !c.tree.Contains(id) {
		c.log.Warn().Str("node", id.String()).Msg("jump to unknown node")
		return
	}
	if id == c.current {
		return
	}
	c.moveTo(id)
}

func (c *Controller) moveTo(id gametree.NodeID) {
	c.resetOverlays()
	c.highlighted = board.NoSquare
	c.dragged = nil
	c.cancelPromotion()

	c.current = id
	c.Resync()
	if m, ok := c.tree.PrevMove(id); ok {
		c.emit(pipeline.SetLastMove{Src: m.From(), Dest: m.Dest()})
	} else {
		c.emit(pipeline.SetLastMove{Src: board.NoSquare, Dest: board.NoSquare})
	}
	c.emitMoveList()
}

func (c *Controller) emitMoveList() {
	c.emit(pipeline.SetMoveList{
		Root:       c.tree.Root(),
		BlackFirst: c.tree.BlackFirst(),
		Entries:    c.tree.MoveList(),
		Current:    c.current,
	})
}

// dropDrag puts a piece lifted by a drag that never ended back on its square.
func (c *Controller) dropDrag() {
	d := c.dragged
	if d == nil {
		return
	}
	c.dragged = nil
	c.emit(pipeline.PlacePiece{Piece: d.piece, Square: d.from})
}

// resetOverlays hides the phantom piece, hint dots, capture rings and highlight.
func (c *Controller) resetOverlays() {
	c.emit(pipeline.ShowPhantom{Piece: board.NoPiece})
	c.emit(pipeline.SetHints{Squares: []board.Square{}})
	c.emit(pipeline.SetCaptures{Squares: []board.Square{}})
	c.emit(pipeline.SetHighlight{Square: board.NoSquare})
}

func (c *Controller) showHints(pos board.Position, sq board.Square) {
	plain, captures := resolve.Hints(pos, sq)
	c.emit(pipeline.SetHints{Squares: plain})
	c.emit(pipeline.SetCaptures{Squares: captures})
}

// cancelPromotion undoes the staged promotion on screen: the pawn goes back to its
// origin and a captured piece is redrawn. It reports whether anything was pending.
func (c *Controller) cancelPromotion() bool {
	if c.pending == nil {
		return false
	}
	p := *c.pending
	c.pending = nil

	c.emit(pipeline.SetPromotionPending{File: -1})
	c.emit(pipeline.MovePiece{Src: p.To, Dest: p.From})
	if piece, ok := c.position().PieceAt(p.To); ok {
		c.emit(pipeline.PlacePiece{Piece: piece, Square: p.To})
	}
	return true
}

// applyOrStage expects the moving piece to be drawn on its destination already.
// Promotions wait for a role; everything else is committed.
func (c *Controller) applyOrStage(pos board.Position, m board.Move) {
	if p, ok := board.StagePromotion(m); ok {
		file := int8(p.To.File())
		if pos.Turn() == board.Black {
			file += 10
		}
		c.pending = &p
		c.emit(pipeline.SetPromotionPending{File: file})
		return
	}
	c.commit(m)
}

func (c *Controller) commit(m board.Move) {
	c.emit(pipeline.SetLastMove{Src: m.From(), Dest: m.Dest()})
	if m.IsEnPassant() {
		c.emit(pipeline.RemovePiece{Square: m.EnPassantSquare()})
	}
	if m.IsCastle() {
		c.emit(pipeline.MovePiece{Src: m.RookFrom(), Dest: m.RookDest()})
	}

	id, err := c.tree.AddNode(c.current, m)
	if err != nil {
		c.log.Panic().Err(err).Str("move", m.UCI()).Msg("add node")
	}
	c.current = id
	c.log.Debug().Str("move", m.UCI()).Str("node", id.String()).Msg("move played")
	c.emit(pipeline.SetMovetext{Text: c.tree.Movetext()})
	c.emitMoveList()
}
