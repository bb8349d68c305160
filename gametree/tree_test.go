package gametree_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"disboard/board"
	"disboard/gametree"
)

// play adds a sequence of UCI moves starting at from and returns the last node.
func play(t *testing.T, tree *gametree.Tree, from gametree.NodeID, moves ...string) gametree.NodeID {
	t.Helper()
	cur := from
	for _, uci := range moves {
		pos, err := tree.Position(cur)
		if err != nil {
			t.Fatal(err)
		}
		m, err := pos.ParseUCI(uci)
		if err != nil {
			t.Fatal(err)
		}
		if cur, err = tree.AddNode(cur, m); err != nil {
			t.Fatalf("AddNode(%s): %v", uci, err)
		}
	}
	return cur
}

func TestAddNodeLinksParentAndMove(t *testing.T) {
	tree := gametree.New()
	root := tree.Root()
	pos, _ := tree.Position(root)
	m, _ := pos.ParseUCI("e2e4")

	child, err := tree.AddNode(root, m)
	if err != nil {
		t.Fatal(err)
	}
	if child == root || child == gametree.NilNode {
		t.Fatalf("AddNode returned %v", child)
	}
	if p, ok := tree.Parent(child); !ok || p != root {
		t.Fatalf("Parent(child) = %v, %v", p, ok)
	}
	if prev, ok := tree.PrevMove(child); !ok || prev != m {
		t.Fatalf("PrevMove(child) = %v, %v", prev, ok)
	}
	if mc, ok := tree.MainlineChild(root); !ok || mc != child {
		t.Fatalf("first child is not the mainline child")
	}
	if _, ok := tree.Parent(root); ok {
		t.Fatalf("root has no parent")
	}
	if _, ok := tree.PrevMove(root); ok {
		t.Fatalf("root has no incoming move")
	}
	childPos, _ := tree.Position(child)
	if childPos.Turn() != board.Black {
		t.Fatalf("position at child not derived from move")
	}
	if ply, _ := tree.Ply(child); ply != 1 {
		t.Fatalf("Ply(child) = %d", ply)
	}
}

func TestVariationsAndSiblings(t *testing.T) {
	tree := gametree.New()
	root := tree.Root()
	e4 := play(t, tree, root, "e2e4")
	d4 := play(t, tree, root, "d2d4")
	c4 := play(t, tree, root, "c2c4")

	if mc, _ := tree.MainlineChild(root); mc != e4 {
		t.Fatalf("mainline should stay with the first child")
	}
	vars := tree.Variations(root)
	if len(vars) != 2 || vars[0] != d4 || vars[1] != c4 {
		t.Fatalf("Variations(root) = %v", vars)
	}
	sibs := tree.Siblings(d4)
	if len(sibs) != 2 || sibs[0] != e4 || sibs[1] != c4 {
		t.Fatalf("Siblings(d4) = %v", sibs)
	}
	if len(tree.Siblings(root)) != 0 {
		t.Fatalf("root has no siblings")
	}
	if tree.Len() != 4 {
		t.Fatalf("Len = %d", tree.Len())
	}
}

func TestInvalidNode(t *testing.T) {
	tree := gametree.New()
	other := gametree.New()
	stranger := other.Root()

	if _, err := tree.Position(stranger); !errors.Is(err, gametree.ErrInvalidNode) {
		t.Fatalf("Position(unknown) err = %v", err)
	}
	pos := board.NewPosition()
	m, _ := pos.ParseUCI("e2e4")
	if _, err := tree.AddNode(stranger, m); !errors.Is(err, gametree.ErrInvalidNode) {
		t.Fatalf("AddNode(unknown) err = %v", err)
	}
	black, _ := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	m2, _ := black.ParseUCI("e7e5")
	if _, err := tree.AddNode(tree.Root(), m2); !errors.Is(err, gametree.ErrInvalidNode) {
		t.Fatalf("AddNode(illegal move) err = %v", err)
	}
	if tree.Len() != 1 {
		t.Fatalf("failed AddNode must not grow the tree")
	}
	if _, err := tree.Ply(gametree.NodeID(uuid.New())); !errors.Is(err, gametree.ErrInvalidNode) {
		t.Fatalf("Ply(unknown) err = %v", err)
	}
}

func TestIdentitiesAreUnique(t *testing.T) {
	a, b := gametree.New(), gametree.New()
	if a.Root() == b.Root() {
		t.Fatalf("two trees share a root id")
	}
	seen := map[gametree.NodeID]bool{a.Root(): true}
	cur := a.Root()
	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3"} {
		cur = play(t, a, cur, uci)
		if seen[cur] {
			t.Fatalf("duplicate node id %v", cur)
		}
		seen[cur] = true
	}
	parsed, err := gametree.ParseNodeID(cur.String())
	if err != nil || parsed != cur {
		t.Fatalf("ParseNodeID round trip: %v, %v", parsed, err)
	}
}

func TestMainlineNodesAndPath(t *testing.T) {
	tree := gametree.New()
	root := tree.Root()
	last := play(t, tree, root, "e2e4", "e7e5", "g1f3")
	play(t, tree, root, "d2d4")

	line := tree.MainlineNodes(root)
	if len(line) != 3 || line[2] != last {
		t.Fatalf("MainlineNodes(root) = %v", line)
	}
	path := tree.Path(last)
	if len(path) != 4 || path[0] != root || path[3] != last {
		t.Fatalf("Path(last) = %v", path)
	}
	if tree.PrevSAN(last) != "Nf3" {
		t.Fatalf("PrevSAN = %q", tree.PrevSAN(last))
	}
}

func TestMovetext(t *testing.T) {
	tree := gametree.New()
	root := tree.Root()
	if got := tree.Movetext(); got != "" {
		t.Fatalf("empty tree movetext = %q", got)
	}

	e4 := play(t, tree, root, "e2e4")
	if got := tree.Movetext(); got != "1. e4" {
		t.Fatalf("movetext = %q want %q", got, "1. e4")
	}

	e5 := play(t, tree, e4, "e7e5")
	play(t, tree, e4, "c7c5", "g1f3")
	play(t, tree, e5, "g1f3", "b8c6")
	play(t, tree, root, "d2d4", "d7d5")

	want := "1. e4 (1. d4 d5) 1... e5 (1... c5 2. Nf3) 2. Nf3 Nc6"
	if got := tree.Movetext(); got != want {
		t.Fatalf("movetext = %q\nwant       %q", got, want)
	}
}

func TestMovetextNestedVariations(t *testing.T) {
	tree := gametree.New()
	root := tree.Root()
	e4 := play(t, tree, root, "e2e4", "e7e5")
	nf3 := play(t, tree, e4, "g1f3")
	play(t, tree, e4, "f1c4", "g8f6")
	c4 := tree.Variations(e4)[0]
	play(t, tree, c4, "b8c6")
	play(t, tree, nf3, "b8c6")

	want := "1. e4 e5 2. Nf3 (2. Bc4 Nf6 (2... Nc6)) 2... Nc6"
	if got := tree.Movetext(); got != want {
		t.Fatalf("movetext = %q\nwant       %q", got, want)
	}
}

func TestMovetextFromBlackToMove(t *testing.T) {
	tree, err := gametree.NewFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	play(t, tree, tree.Root(), "c7c5", "g1f3")
	if got := tree.Movetext(); got != "1... c5 2. Nf3" {
		t.Fatalf("movetext = %q", got)
	}
}

func TestWritePGN(t *testing.T) {
	tree := gametree.New()
	play(t, tree, tree.Root(), "f2f3", "e7e5", "g2g4", "d8h4")

	var buf bytes.Buffer
	if err := tree.WritePGN(&buf, map[string]string{"White": "Fool", "Result": "0-1", "Annotator": "x"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"[Event \"?\"]\n",
		"[White \"Fool\"]\n",
		"[Result \"0-1\"]\n[Annotator \"x\"]\n",
		"\n1. f3 e5 2. g4 Qh4# 0-1\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("PGN missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[FEN") {
		t.Fatalf("standard root must not carry a FEN tag:\n%s", out)
	}
}

func TestMoveList(t *testing.T) {
	tree := gametree.New()
	if got := tree.MoveList(); len(got) != 0 || tree.BlackFirst() {
		t.Fatalf("fresh tree: %v, black first %v", got, tree.BlackFirst())
	}
	e4 := play(t, tree, tree.Root(), "e2e4")
	e5 := play(t, tree, e4, "e7e5")
	c5 := play(t, tree, e4, "c7c5")
	d5 := play(t, tree, e4, "d7d5")
	play(t, tree, c5, "g1f3") // inside a variation, not listed

	list := tree.MoveList()
	if len(list) != 2 || list[0].Node != e4 || list[0].SAN != "e4" || list[1].Node != e5 {
		t.Fatalf("mainline = %+v", list)
	}
	if len(list[0].Variations) != 0 {
		t.Fatalf("e4 has no alternatives, got %+v", list[0].Variations)
	}
	vars := list[1].Variations
	if len(vars) != 2 || vars[0].Node != c5 || vars[0].SAN != "c5" || vars[1].Node != d5 {
		t.Fatalf("variations of e5 = %+v", vars)
	}
}

func TestMoveListBlackFirst(t *testing.T) {
	tree, err := gametree.NewFromFEN("4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	play(t, tree, tree.Root(), "e8d7")
	if !tree.BlackFirst() || tree.MoveList()[0].SAN != "Kd7" {
		t.Fatalf("list = %+v", tree.MoveList())
	}
}
