package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"disboard/board"
	"disboard/gametree"
	"disboard/pipeline"
)

var errQuit = errors.New("quit")

func (fe *frontEnd) readCommands(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		err := fe.command(ctx, strings.ToLower(tokens[0]), tokens[1:])
		if errors.Is(err, errQuit) || errors.Is(err, pipeline.ErrDisconnected) {
			return
		}
		if err != nil {
			fe.log.Debug().Err(err).Str("command", tokens[0]).Msg("rejected command")
			msg := fmt.Sprintf("error %s: %v", tokens[0], err)
			if fe.session.Sync(func() { fmt.Fprintln(fe.out, msg) }) != nil {
				return
			}
		}
	}
}

func (fe *frontEnd) command(ctx context.Context, name string, args []string) error {
	switch name {
	case "quit":
		return errQuit
	case "resync":
		return fe.session.Send(pipeline.Resync{})
	case "next":
		return fe.session.Send(pipeline.TraverseForward{})
	case "prev":
		return fe.session.Send(pipeline.TraverseBackward{})
	case "click":
		sqs, err := squares(args, 1)
		if err != nil {
			return err
		}
		return fe.click(sqs[0])
	case "dragstart":
		sqs, err := squares(args, 1)
		if err != nil {
			return err
		}
		x, y := fe.pointer(sqs[0])
		return fe.session.Send(pipeline.DragStart{X: x, Y: y, SquareSize: fe.cfg.SquareSize})
	case "dragend":
		sqs, err := squares(args, 1)
		if err != nil {
			return err
		}
		x, y := fe.pointer(sqs[0])
		return fe.session.Send(pipeline.DragEnd{X: x, Y: y, SquareSize: fe.cfg.SquareSize})
	case "drag":
		sqs, err := squares(args, 2)
		if err != nil {
			return err
		}
		return fe.drag(sqs[0], sqs[1])
	case "promote":
		if len(args) != 1 {
			return errors.New("usage: promote <q|r|b|n|index>")
		}
		index, err := promotionIndex(args[0])
		if err != nil {
			return err
		}
		return fe.session.Send(pipeline.ChoosePromotion{Index: index})
	case "play":
		if len(args) == 0 {
			return errors.New("usage: play <uci>...")
		}
		for _, mv := range args {
			if err := fe.playUCI(mv); err != nil {
				return err
			}
		}
		return nil
	case "jump":
		if len(args) != 1 {
			return errors.New("usage: jump <ply>[.<variation>]")
		}
		ply, variation, err := parsePly(args[0])
		if err != nil {
			return err
		}
		var id gametree.NodeID
		var ok bool
		if err := fe.query(func() { id, ok = fe.model.MoveList.Target(ply, variation) }); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no move at %s", args[0])
		}
		return fe.session.Send(pipeline.Jump{Node: id})
	case "moves":
		return fe.session.Sync(func() { fmt.Fprint(fe.out, moveRows(fe.model.MoveList)) })
	case "board":
		return fe.session.Sync(func() { fmt.Fprint(fe.out, fe.model.Diagram()) })
	case "pgn":
		return fe.session.Sync(func() {
			if err := fe.writePGN(fe.out, nil); err != nil {
				fe.log.Error().Err(err).Msg("write pgn")
			}
		})
	case "save":
		name := time.Now().Format("20060102-150405")
		if len(args) > 0 {
			name = args[0]
		}
		return fe.session.Sync(func() { fe.save(ctx, name) })
	case "list":
		return fe.session.Sync(func() {
			names, err := fe.store.List(ctx)
			if err != nil {
				fmt.Fprintf(fe.out, "error list: %v\n", err)
				return
			}
			fmt.Fprintf(fe.out, "games %s\n", strings.Join(names, " "))
		})
	default:
		return errors.New("unknown command")
	}
}

// pointer returns the pixel coordinates of the centre of sq.
func (fe *frontEnd) pointer(sq board.Square) (float32, float32) {
	return pipeline.SquareCenter(sq, fe.cfg.SquareSize)
}

func (fe *frontEnd) click(sq board.Square) error {
	x, y := fe.pointer(sq)
	return fe.session.Send(pipeline.Click{X: x, Y: y, SquareSize: fe.cfg.SquareSize})
}

func (fe *frontEnd) drag(from, to board.Square) error {
	x, y := fe.pointer(from)
	if err := fe.session.Send(pipeline.DragStart{X: x, Y: y, SquareSize: fe.cfg.SquareSize}); err != nil {
		return err
	}
	x, y = fe.pointer(to)
	return fe.session.Send(pipeline.DragEnd{X: x, Y: y, SquareSize: fe.cfg.SquareSize})
}

// playUCI plays a move in UCI notation as a drag, plus a role choice for promotions.
func (fe *frontEnd) playUCI(mv string) error {
	if len(mv) != 4 && len(mv) != 5 {
		return fmt.Errorf("bad move %q", mv)
	}
	from, err := board.ParseSquare(mv[0:2])
	if err != nil {
		return err
	}
	to, err := board.ParseSquare(mv[2:4])
	if err != nil {
		return err
	}
	if err := fe.drag(from, to); err != nil {
		return err
	}
	if len(mv) == 5 {
		index, err := promotionIndex(mv[4:])
		if err != nil {
			return err
		}
		return fe.session.Send(pipeline.ChoosePromotion{Index: index})
	}
	return nil
}

// query runs fn on the presentation goroutine once everything sent before it has been
// presented, and waits for it.
func (fe *frontEnd) query(fn func()) error {
	done := make(chan struct{})
	if err := fe.session.Sync(func() {
		fn()
		close(done)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-fe.session.Done():
		select {
		case <-done:
			return nil
		default:
			return pipeline.ErrDisconnected
		}
	}
}

// parsePly accepts "3" for the third move of the mainline and "3.1" for the first
// alternative to it. "0" is the starting position.
func parsePly(arg string) (ply, variation int, err error) {
	p, v, hasVariation := strings.Cut(arg, ".")
	if ply, err = strconv.Atoi(p); err != nil || ply < 0 {
		return 0, 0, fmt.Errorf("bad ply %q", arg)
	}
	if hasVariation {
		if variation, err = strconv.Atoi(v); err != nil || variation < 1 {
			return 0, 0, fmt.Errorf("bad ply %q", arg)
		}
	}
	return ply, variation, nil
}

// moveRows lays the move list out two moves to a row, alternatives in brackets after
// the move they replace. The shown node is starred.
func moveRows(l pipeline.SetMoveList) string {
	mark := func(e gametree.ListEntry) string {
		if e.Node == l.Current {
			return "*" + e.SAN
		}
		return e.SAN
	}
	var sb strings.Builder
	for row := 0; row < l.Rows(); row++ {
		fmt.Fprintf(&sb, "%d.", row+1)
		for col := 0; col < 2; col++ {
			i := l.At(row, col)
			if i < 0 {
				if col == 0 {
					sb.WriteString(" ...")
				}
				continue
			}
			e := l.Entries[i]
			sb.WriteString(" " + mark(e))
			if len(e.Variations) > 0 {
				alts := make([]string, len(e.Variations))
				for j, v := range e.Variations {
					alts[j] = mark(v)
				}
				sb.WriteString(" (" + strings.Join(alts, " ") + ")")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func squares(args []string, n int) ([]board.Square, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d squares, got %d", n, len(args))
	}
	out := make([]board.Square, n)
	for i, a := range args {
		sq, err := board.ParseSquare(a)
		if err != nil {
			return nil, err
		}
		out[i] = sq
	}
	return out, nil
}

// promotionIndex accepts a role letter or a raw role index.
func promotionIndex(arg string) (uint8, error) {
	if len(arg) == 1 {
		if r := board.RoleFromChar(arg[0]); r != board.NoRole {
			if !r.Promotable() {
				return 0, fmt.Errorf("cannot promote to %c", r.Char())
			}
			return uint8(r) - 1, nil
		}
	}
	n, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad promotion %q", arg)
	}
	return uint8(n), nil
}

func (fe *frontEnd) writePGN(w io.Writer, tags map[string]string) error {
	return gametree.WriteGame(w, tags, fe.cfg.StartFEN, fe.model.Movetext)
}

func (fe *frontEnd) save(ctx context.Context, name string) {
	var buf bytes.Buffer
	tags := map[string]string{"Date": time.Now().Format("2006.01.02")}
	if err := fe.writePGN(&buf, tags); err != nil {
		fmt.Fprintf(fe.out, "error save: %v\n", err)
		return
	}
	path, err := fe.store.Save(ctx, name, buf.Bytes())
	if err != nil {
		fmt.Fprintf(fe.out, "error save: %v\n", err)
		return
	}
	fe.log.Info().Str("path", path).Msg("game saved")
	fmt.Fprintf(fe.out, "saved %s\n", path)
}
