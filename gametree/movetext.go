package gametree

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"disboard/board"
)

// Movetext renders the whole tree as PGN movetext: numbered SAN moves along the mainline
// with variations in brackets, recursively, in creation order. A Black move gets an
// "N..." number at the start of a variation and right after one.
func (t *Tree) Movetext() string {
	return strings.Join(t.line(t.root, true), " ")
}

func (t *Tree) String() string { return t.Movetext() }

// line returns the tokens of the game continuing from n.
func (t *Tree) line(n *node, forceNumber bool) []string {
	var tokens []string
	for len(n.children) > 0 {
		main := n.children[0]
		tokens = append(tokens, moveTokens(n, main, forceNumber)...)
		forceNumber = false
		for _, v := range n.children[1:] {
			sub := append(moveTokens(n, v, true), t.line(v, false)...)
			tokens = append(tokens, "("+strings.Join(sub, " ")+")")
			forceNumber = true
		}
		n = main
	}
	return tokens
}

// moveTokens returns the optional move number and the SAN of child, played from parent.
func moveTokens(parent, child *node, forceNumber bool) []string {
	number := strconv.Itoa(parent.pos.FullmoveNumber())
	if parent.pos.Turn() == board.White {
		return []string{number + ".", child.san}
	}
	if forceNumber {
		return []string{number + "...", child.san}
	}
	return []string{child.san}
}

var sevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

var defaultTags = map[string]string{
	"Event":  "?",
	"Site":   "?",
	"Date":   "????.??.??",
	"Round":  "?",
	"White":  "?",
	"Black":  "?",
	"Result": "*",
}

// WritePGN writes the tree as a complete PGN game. See WriteGame.
func (t *Tree) WritePGN(w io.Writer, tags map[string]string) error {
	return WriteGame(w, tags, t.root.pos.FEN(), t.Movetext())
}

// WriteGame writes a complete PGN game: the seven tag roster (filled with defaults where
// tags does not say otherwise), any extra tags in name order, then the movetext and the
// result token. Games that do not start from the standard position get SetUp/FEN tags.
func WriteGame(w io.Writer, tags map[string]string, rootFEN, movetext string) error {
	merged := maps.Clone(defaultTags)
	for k, v := range tags {
		merged[k] = v
	}
	if rootFEN != "" && rootFEN != board.FENStartPos && rootFEN != board.NewPosition().FEN() {
		merged["SetUp"] = "1"
		merged["FEN"] = rootFEN
	}

	var extra []string
	for _, k := range maps.Keys(merged) {
		if !slices.Contains(sevenTagRoster, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)

	for _, k := range append(slices.Clone(sevenTagRoster), extra...) {
		if _, err := fmt.Fprintf(w, "[%s %q]\n", k, merged[k]); err != nil {
			return err
		}
	}
	if movetext != "" {
		movetext += " "
	}
	_, err := fmt.Fprintf(w, "\n%s%s\n", movetext, merged["Result"])
	return err
}
