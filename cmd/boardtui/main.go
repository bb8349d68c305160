// Command boardtui is a terminal chessboard driven by the mouse. The tcell event loop is
// the presentation thread: signals reach it as interrupt events.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"disboard/board"
	"disboard/config"
	"disboard/controller"
	"disboard/gametree"
	"disboard/pipeline"
	"disboard/statsview"
	"disboard/storage"
	"disboard/surface"
)

// screenDispatcher posts tasks into the screen's event queue.
type screenDispatcher struct {
	screen tcell.Screen
}

func (d screenDispatcher) Dispatch(fn func()) error {
	d.screen.PostEventWait(tcell.NewEventInterrupt(fn))
	return nil
}

type app struct {
	cfg     config.Config
	log     zerolog.Logger
	screen  tcell.Screen
	session *pipeline.Session
	model   *surface.Model
	store   *storage.FS
	status  string
	hits    []hit

	pressed            board.Square
	pressCol, pressRow int
	held               bool
}

func main() {
	logFile := flag.String("logfile", "", "write the log to this file")
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	log := cfg.Logger(w)
	if cfg.StatsAddr != "" && statsview.Available() {
		if srv, err := statsview.Start(cfg.StatsAddr, log); err == nil {
			defer srv.Stop()
			log.Info().Str("url", srv.URL()).Msg("stats viewer")
		}
	}

	screen, err := tcell.NewScreen()
	if err == nil {
		err = screen.Init()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	if err := run(screen, cfg, log); err != nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(screen tcell.Screen, cfg config.Config, log zerolog.Logger) error {
	tree, err := gametree.NewFromFEN(cfg.StartFEN)
	if err != nil {
		return err
	}
	a := &app{
		cfg:     cfg,
		log:     log,
		screen:  screen,
		session: pipeline.NewSession(),
		model:   surface.New(),
		store:   storage.NewFS(cfg.SaveDir),
		pressed: board.NoSquare,
	}
	a.session.Start(controller.New(tree, a.session, log), screenDispatcher{screen}, a)
	defer a.session.Close()

	if err := a.session.Send(pipeline.Resync{}); err != nil {
		return err
	}
	for {
		quit, err := a.handle(screen.PollEvent())
		if err != nil {
			if errors.Is(err, pipeline.ErrDisconnected) {
				return nil
			}
			return err
		}
		if quit {
			return nil
		}
	}
}

// Present applies a signal to the model. Redrawing happens once the interrupt that
// carried it has run.
func (a *app) Present(s pipeline.Signal) {
	a.model.Present(s)
}

func (a *app) handle(ev tcell.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case nil:
		return true, nil
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
		a.redraw()
	case *tcell.EventResize:
		a.screen.Sync()
		a.redraw()
	case *tcell.EventMouse:
		return false, a.mouse(ev)
	case *tcell.EventKey:
		return a.key(ev)
	}
	return false, nil
}

func (a *app) redraw() {
	a.hits = draw(a.screen, a.model, a.status)
}

// mouse turns a press and release on one square into a click and a press and release on
// two different squares into a drag. A press on a move in the list jumps to it.
func (a *app) mouse(ev *tcell.EventMouse) error {
	col, row := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0
	switch {
	case down && !a.held:
		if node, ok := hitAt(a.hits, col, row); ok {
			return a.session.Send(pipeline.Jump{Node: node})
		}
		a.held = true
		a.pressed = cellSquare(col, row)
		a.pressCol, a.pressRow = col, row
		return nil
	case !down && a.held:
		a.held = false
		size := a.cfg.SquareSize
		if cellSquare(col, row) == a.pressed {
			x, y := cellPointer(col, row, size)
			return a.session.Send(pipeline.Click{X: x, Y: y, SquareSize: size})
		}
		x, y := cellPointer(a.pressCol, a.pressRow, size)
		if err := a.session.Send(pipeline.DragStart{X: x, Y: y, SquareSize: size}); err != nil {
			return err
		}
		x, y = cellPointer(col, row, size)
		return a.session.Send(pipeline.DragEnd{X: x, Y: y, SquareSize: size})
	}
	return nil
}

func (a *app) key(ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyLeft:
		return false, a.session.Send(pipeline.TraverseBackward{})
	case tcell.KeyRight:
		return false, a.session.Send(pipeline.TraverseForward{})
	case tcell.KeyRune:
	default:
		return false, nil
	}

	r := ev.Rune()
	if _, _, pending := a.model.Pending(); pending {
		role := board.RoleFromChar(byte(r))
		if role.Promotable() {
			return false, a.session.Send(pipeline.ChoosePromotion{Index: uint8(role) - 1})
		}
		return false, nil
	}
	switch r {
	case 's':
		a.save()
		a.redraw()
	case 'r':
		return false, a.session.Send(pipeline.Resync{})
	case 'h':
		if root, ok := a.model.MoveList.Target(0, 0); ok {
			return false, a.session.Send(pipeline.Jump{Node: root})
		}
	}
	return false, nil
}

func (a *app) save() {
	var buf bytes.Buffer
	tags := map[string]string{"Date": time.Now().Format("2006.01.02")}
	if err := gametree.WriteGame(&buf, tags, a.cfg.StartFEN, a.model.Movetext); err != nil {
		a.status = "save failed: " + err.Error()
		return
	}
	path, err := a.store.Save(context.Background(), time.Now().Format("20060102-150405"), buf.Bytes())
	if err != nil {
		a.log.Error().Err(err).Msg("save game")
		a.status = "save failed: " + err.Error()
		return
	}
	a.log.Info().Str("path", path).Msg("game saved")
	a.status = "saved " + path
}
