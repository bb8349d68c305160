// Package gametree holds an append-only tree of positions reached by moves from a root.
// Nodes are addressed by random 128-bit identities; the first child of a node is its
// mainline continuation and later children are variations.
//
// A Tree is not safe for concurrent use. The controller owns it exclusively.
package gametree

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"disboard/board"
)

// ErrInvalidNode reports a node id the tree does not know, or a move that is not legal in
// the node's position.
var ErrInvalidNode = errors.New("invalid node")

// NodeID identifies a node. It carries no ordering; never sort by it.
type NodeID uuid.UUID

// NilNode is the zero id; no tree ever mints it.
var NilNode NodeID

func (id NodeID) String() string { return uuid.UUID(id).String() }

// ParseNodeID parses the textual form produced by NodeID.String.
func ParseNodeID(s string) (NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilNode, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return NodeID(u), nil
}

type node struct {
	id       NodeID
	parent   *node
	move     board.Move // zero at the root
	san      string
	pos      board.Position
	ply      int
	children []*node
}

// Tree is a rooted game tree.
type Tree struct {
	root  *node
	nodes map[NodeID]*node
}

// New returns a tree rooted at the standard starting position.
func New() *Tree {
	return newTree(board.NewPosition())
}

// NewFromFEN returns a tree rooted at the given position.
func NewFromFEN(fen string) (*Tree, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newTree(pos), nil
}

func newTree(pos board.Position) *Tree {
	root := &node{id: NodeID(uuid.New()), pos: pos}
	return &Tree{
		root:  root,
		nodes: map[NodeID]*node{root.id: root},
	}
}

func (t *Tree) lookup(id NodeID) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidNode, id)
	}
	return n, nil
}

// Root returns the fixed starting node.
func (t *Tree) Root() NodeID { return t.root.id }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Contains reports whether id belongs to this tree.
func (t *Tree) Contains(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Position returns the position at a node.
func (t *Tree) Position(id NodeID) (board.Position, error) {
	n, err := t.lookup(id)
	if err != nil {
		return board.Position{}, err
	}
	return n.pos, nil
}

// Parent returns the parent of a node; ok is false at the root and for unknown ids.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.parent == nil {
		return NilNode, false
	}
	return n.parent.id, true
}

// MainlineChild returns the first child added to a node.
func (t *Tree) MainlineChild(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || len(n.children) == 0 {
		return NilNode, false
	}
	return n.children[0].id, true
}

// Children returns every child in creation order.
func (t *Tree) Children(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return ids(n.children)
}

// Variations returns the children of a node other than its mainline child.
func (t *Tree) Variations(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok || len(n.children) < 2 {
		return nil
	}
	return ids(n.children[1:])
}

// Siblings returns the other children of the node's parent.
func (t *Tree) Siblings(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok || n.parent == nil {
		return nil
	}
	var out []NodeID
	for _, c := range n.parent.children {
		if c != n {
			out = append(out, c.id)
		}
	}
	return out
}

// MainlineNodes follows mainline children from id to the end of the line. id itself is
// not included.
func (t *Tree) MainlineNodes(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	var out []NodeID
	for len(n.children) > 0 {
		n = n.children[0]
		out = append(out, n.id)
	}
	return out
}

// Path returns the nodes from the root down to id, both included.
func (t *Tree) Path(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, n.ply+1)
	for ; n != nil; n = n.parent {
		out[n.ply] = n.id
	}
	return out
}

// Ply returns the number of moves between the root and id.
func (t *Tree) Ply(id NodeID) (int, error) {
	n, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return n.ply, nil
}

// PrevMove returns the move that produced a node; ok is false at the root.
func (t *Tree) PrevMove(id NodeID) (board.Move, bool) {
	n, ok := t.nodes[id]
	if !ok || n.parent == nil {
		return board.Move{}, false
	}
	return n.move, true
}

// PrevSAN returns the move that produced a node in standard algebraic notation.
func (t *Tree) PrevSAN(id NodeID) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.san
}

// AddNode plays m from parent and appends the result as a new child. The first child of
// a node becomes its mainline; later children are variations.
func (t *Tree) AddNode(parent NodeID, m board.Move) (NodeID, error) {
	p, err := t.lookup(parent)
	if err != nil {
		return NilNode, err
	}
	pos, err := p.pos.Play(m)
	if err != nil {
		return NilNode, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	san, err := p.pos.SAN(m)
	if err != nil {
		return NilNode, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	child := &node{
		id:     NodeID(uuid.New()),
		parent: p,
		move:   m,
		san:    san,
		pos:    pos,
		ply:    p.ply + 1,
	}
	p.children = append(p.children, child)
	t.nodes[child.id] = child
	return child.id, nil
}

func ids(nodes []*node) []NodeID {
	out := make([]NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}
