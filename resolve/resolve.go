// Package resolve turns a (source, destination) square pair into one legal move and
// computes the hint overlays a board view draws for a selected square.
package resolve

import (
	"golang.org/x/exp/slices"

	"disboard/board"
)

// MoveLister is the part of the rules collaborator the resolver needs.
type MoveLister interface {
	LegalMoves() []board.Move
}

// fromSquare returns the legal moves that start on src.
func fromSquare(p MoveLister, src board.Square) []board.Move {
	if !src.Valid() {
		return nil
	}
	var moves []board.Move
	for _, m := range p.LegalMoves() {
		if m.From() == src {
			moves = append(moves, m)
		}
	}
	return moves
}

// matches reports whether m connects to dest. Castling also answers to the rook's own
// square so that dropping the king on its rook selects the castle.
func matches(m board.Move, dest board.Square) bool {
	if m.IsCastle() {
		return m.KingDest() == dest || m.RookFrom() == dest
	}
	return m.To() == dest
}

// Resolve returns the first legal move from src that matches dest. Promotions come back
// with whichever role the generator listed first; callers stage them and ask for the role.
func Resolve(p MoveLister, src, dest board.Square) (board.Move, bool) {
	if !dest.Valid() {
		return board.Move{}, false
	}
	for _, m := range fromSquare(p, src) {
		if matches(m, dest) {
			return m, true
		}
	}
	return board.Move{}, false
}

// dedupPromotions keeps one promotion per destination square.
func dedupPromotions(moves []board.Move) []board.Move {
	out := moves[:0:0]
	seen := map[board.Square]bool{}
	for _, m := range moves {
		if m.IsPromotion() {
			if seen[m.To()] {
				continue
			}
			seen[m.To()] = true
		}
		out = append(out, m)
	}
	return out
}

// Hints partitions the moves from src into quiet destinations and capture destinations.
// A castle contributes its king destination to plain and its rook square to captures.
// Both slices are sorted and free of duplicates.
func Hints(p MoveLister, src board.Square) (plain, captures []board.Square) {
	plain = []board.Square{}
	captures = []board.Square{}
	for _, m := range dedupPromotions(fromSquare(p, src)) {
		switch {
		case m.IsCastle():
			plain = append(plain, m.KingDest())
			captures = append(captures, m.RookFrom())
		case m.IsCapture():
			captures = append(captures, m.To())
		default:
			plain = append(plain, m.To())
		}
	}
	slices.Sort(plain)
	slices.Sort(captures)
	return slices.Compact(plain), slices.Compact(captures)
}
