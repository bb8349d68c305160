package resolve_test

import (
	"testing"

	"golang.org/x/exp/slices"

	"disboard/board"
	"disboard/resolve"
)

func sq(t *testing.T, alg string) board.Square {
	t.Helper()
	s, err := board.ParseSquare(alg)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", alg, err)
	}
	return s
}

func mustFEN(t *testing.T, fen string) board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

var positions = []string{
	board.FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
	"1r5k/P7/8/8/8/8/8/K7 w - - 0 1",
}

// Resolve finds a move exactly when some legal move connects the pair.
func TestResolveAgreesWithLegalMoves(t *testing.T) {
	for _, fen := range positions {
		pos := mustFEN(t, fen)
		legal := pos.LegalMoves()
		for src := board.Square(0); src < 64; src++ {
			for dest := board.Square(0); dest < 64; dest++ {
				want := false
				for _, m := range legal {
					if m.From() != src {
						continue
					}
					if m.Dest() == dest || (m.IsCastle() && m.RookFrom() == dest) {
						want = true
						break
					}
				}
				m, ok := resolve.Resolve(pos, src, dest)
				if ok != want {
					t.Fatalf("%s: Resolve(%v,%v) ok=%v want %v", fen, src, dest, ok, want)
				}
				if ok && !slices.Contains(legal, m) {
					t.Fatalf("%s: Resolve(%v,%v) returned non-legal move %v", fen, src, dest, m)
				}
			}
		}
	}
}

func TestResolveCastling(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	for _, dest := range []string{"g1", "h1"} {
		m, ok := resolve.Resolve(pos, sq(t, "e1"), sq(t, dest))
		if !ok || !m.IsCastle() || m.CastlingSide() != board.KingSide {
			t.Fatalf("e1->%s: got %v ok=%v, want short castle", dest, m, ok)
		}
	}
	m, ok := resolve.Resolve(pos, sq(t, "e1"), sq(t, "a1"))
	if !ok || m.CastlingSide() != board.QueenSide {
		t.Fatalf("e1->a1: got %v ok=%v, want long castle", m, ok)
	}
}

func TestResolveRejects(t *testing.T) {
	pos := board.NewPosition()
	cases := [][2]board.Square{
		{sq(t, "e2"), sq(t, "e5")},
		{sq(t, "e7"), sq(t, "e5")}, // not black's turn
		{sq(t, "e4"), sq(t, "e5")}, // empty origin
		{board.NoSquare, sq(t, "e4")},
		{sq(t, "e2"), board.NoSquare},
	}
	for _, c := range cases {
		if m, ok := resolve.Resolve(pos, c[0], c[1]); ok {
			t.Errorf("Resolve(%v,%v) = %v, want no match", c[0], c[1], m)
		}
	}
}

func TestResolvePromotionCollapses(t *testing.T) {
	pos := mustFEN(t, "1r5k/P7/8/8/8/8/8/K7 w - - 0 1")
	m, ok := resolve.Resolve(pos, sq(t, "a7"), sq(t, "b8"))
	if !ok || !m.IsPromotion() || m.Capture() != board.Rook {
		t.Fatalf("a7xb8: got %v ok=%v", m, ok)
	}
	plain, captures := resolve.Hints(pos, sq(t, "a7"))
	if !slices.Equal(plain, []board.Square{sq(t, "a8")}) {
		t.Fatalf("plain hints = %v want [a8]", plain)
	}
	if !slices.Equal(captures, []board.Square{sq(t, "b8")}) {
		t.Fatalf("capture hints = %v want [b8]", captures)
	}
}

func TestHintsStartPosition(t *testing.T) {
	pos := board.NewPosition()
	plain, captures := resolve.Hints(pos, sq(t, "e2"))
	if !slices.Equal(plain, []board.Square{sq(t, "e3"), sq(t, "e4")}) {
		t.Fatalf("e2 hints = %v", plain)
	}
	if len(captures) != 0 {
		t.Fatalf("e2 captures = %v", captures)
	}
	plain, _ = resolve.Hints(pos, sq(t, "g1"))
	if !slices.Equal(plain, []board.Square{sq(t, "f3"), sq(t, "h3")}) {
		t.Fatalf("g1 hints = %v", plain)
	}
	plain, captures = resolve.Hints(pos, sq(t, "e4"))
	if len(plain) != 0 || len(captures) != 0 {
		t.Fatalf("empty square should have no hints")
	}
}

func TestHintsCastlingBorrowsCaptureRing(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	plain, captures := resolve.Hints(pos, sq(t, "e1"))
	if !slices.Contains(plain, sq(t, "g1")) {
		t.Fatalf("king destination g1 missing from %v", plain)
	}
	if !slices.Equal(captures, []board.Square{sq(t, "h1")}) {
		t.Fatalf("captures = %v want [h1]", captures)
	}
}

func TestHintsEnPassantIsCapture(t *testing.T) {
	pos := mustFEN(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	plain, captures := resolve.Hints(pos, sq(t, "e5"))
	if !slices.Equal(plain, []board.Square{sq(t, "e6")}) {
		t.Fatalf("plain = %v want [e6]", plain)
	}
	if !slices.Equal(captures, []board.Square{sq(t, "d6")}) {
		t.Fatalf("captures = %v want [d6]", captures)
	}
}

type fixedMoves []board.Move

func (f fixedMoves) LegalMoves() []board.Move { return f }

func TestResolveFirstMatchWins(t *testing.T) {
	a7, a8 := sq(t, "a7"), sq(t, "a8")
	moves := fixedMoves{
		board.NormalMove(board.Pawn, a7, a8, board.NoRole, board.Knight),
		board.NormalMove(board.Pawn, a7, a8, board.NoRole, board.Queen),
	}
	m, ok := resolve.Resolve(moves, a7, a8)
	if !ok || m.Promotion() != board.Knight {
		t.Fatalf("got %v ok=%v, want first listed promotion", m, ok)
	}
	plain, _ := resolve.Hints(moves, a7)
	if len(plain) != 1 {
		t.Fatalf("promotions should collapse to one hint, got %v", plain)
	}
}
