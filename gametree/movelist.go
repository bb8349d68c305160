package gametree

import "disboard/board"

// ListEntry is one move of a move list: the node it leads to, its SAN, and for mainline
// entries the moves that were played instead of it.
type ListEntry struct {
	Node       NodeID
	SAN        string
	Variations []ListEntry
}

// MoveList returns the mainline from the root. Each entry lists its siblings as
// variations, in creation order.
func (t *Tree) MoveList() []ListEntry {
	line := t.MainlineNodes(t.root.id)
	out := make([]ListEntry, len(line))
	for i, id := range line {
		out[i] = ListEntry{Node: id, SAN: t.PrevSAN(id)}
		for _, v := range t.Siblings(id) {
			out[i].Variations = append(out[i].Variations, ListEntry{Node: v, SAN: t.PrevSAN(v)})
		}
	}
	return out
}

// BlackFirst reports whether Black is to move at the root.
func (t *Tree) BlackFirst() bool { return t.root.pos.Turn() == board.Black }
