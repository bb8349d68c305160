// Command perft counts leaf nodes of the legal move tree, to check the rules engine the
// board backend resolves moves against.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"disboard/board"
)

type options struct {
	fen        string
	moves      string
	depth      int
	repeat     int
	divide     bool
	label      string
	cpuProfile string
	memProfile string
}

func main() {
	var o options
	flag.StringVar(&o.fen, "fen", board.FENStartPos, "FEN string (defaults to initial position)")
	flag.StringVar(&o.moves, "moves", "", "UCI moves to play from the FEN before counting, space separated")
	flag.IntVar(&o.depth, "depth", 0, "Perft depth (required)")
	flag.IntVar(&o.repeat, "repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	flag.BoolVar(&o.divide, "divide", false, "Print per-move node counts at root")
	flag.StringVar(&o.label, "label", "", "Optional label prefix for one-line output")
	flag.StringVar(&o.cpuProfile, "cpuprofile", "", "Write CPU profile to file during run")
	flag.StringVar(&o.memProfile, "memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "perft:", err)
		os.Exit(2)
	}
}

func run(o options, w io.Writer) error {
	if o.depth <= 0 {
		return errors.New("-depth must be > 0")
	}
	if o.repeat < 1 {
		o.repeat = 1
	}
	pos, err := startPosition(o.fen, o.moves)
	if err != nil {
		return err
	}
	if o.divide {
		return writeDivide(w, pos, o.depth)
	}

	if o.cpuProfile != "" {
		stop, err := startCPUProfile(o.cpuProfile)
		if err != nil {
			return err
		}
		defer stop()
	}

	var nodes uint64
	start := time.Now()
	for i := 0; i < o.repeat; i++ {
		nodes += board.Perft(pos, o.depth)
	}
	elapsed := time.Since(start)
	// Label Depth Nodes Time NPS
	fmt.Fprintf(w, "%s \t%d \t\t%d \t\t%s \t%.0f\n", o.label, o.depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())

	if o.memProfile != "" {
		return writeHeapProfile(o.memProfile)
	}
	return nil
}

// startPosition parses fen and plays the UCI moves in moves from it.
func startPosition(fen, moves string) (board.Position, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return pos, err
	}
	for _, uci := range strings.Fields(moves) {
		m, err := pos.ParseUCI(uci)
		if err != nil {
			return pos, err
		}
		if pos, err = pos.Play(m); err != nil {
			return pos, err
		}
	}
	return pos, nil
}

// perftDivide counts nodes below each root move, keyed by UCI.
func perftDivide(pos board.Position, depth int) (map[string]uint64, error) {
	div := make(map[string]uint64)
	for _, m := range pos.LegalMoves() {
		next, err := pos.Play(m)
		if err != nil {
			return nil, err
		}
		div[m.UCI()] += board.Perft(next, depth-1)
	}
	return div, nil
}

func writeDivide(w io.Writer, pos board.Position, depth int) error {
	div, err := perftDivide(pos, depth)
	if err != nil {
		return err
	}
	moves := maps.Keys(div)
	slices.Sort(moves)
	var total uint64
	for _, m := range moves {
		fmt.Fprintf(w, "%s: %d\n", m, div[m])
		total += div[m]
	}
	fmt.Fprintf(w, "Total: %d\n", total)
	return nil
}

func startCPUProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating cpuprofile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating memprofile: %w", err)
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}
