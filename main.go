// Command disboard is a line-oriented front end for the board backend. It reads gesture
// commands on stdin, turns them into pointer events and prints every presentation signal
// the backend answers with, one per line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"disboard/config"
	"disboard/controller"
	"disboard/gametree"
	"disboard/pipeline"
	"disboard/statsview"
	"disboard/storage"
	"disboard/surface"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr)
	if cfg.StatsAddr != "" && statsview.Available() {
		srv, err := statsview.Start(cfg.StatsAddr, log)
		if err != nil {
			log.Error().Err(err).Msg("stats viewer")
		} else {
			defer srv.Stop()
			log.Info().Str("url", srv.URL()).Msg("stats viewer")
		}
	}
	if err := run(context.Background(), os.Stdin, os.Stdout, cfg, log); err != nil {
		log.Error().Err(err).Msg("session ended")
		os.Exit(1)
	}
}

// frontEnd owns everything on the presentation side. model and out are only touched
// from the goroutine running the service queue.
type frontEnd struct {
	cfg     config.Config
	log     zerolog.Logger
	out     io.Writer
	session *pipeline.Session
	model   *surface.Model
	store   *storage.FS
}

func (fe *frontEnd) Present(s pipeline.Signal) {
	fe.model.Present(s)
	fmt.Fprintln(fe.out, pipeline.Describe(s))
}

// run drives one session until in is exhausted or a quit command arrives.
func run(ctx context.Context, in io.Reader, out io.Writer, cfg config.Config, log zerolog.Logger) error {
	tree, err := gametree.NewFromFEN(cfg.StartFEN)
	if err != nil {
		return err
	}
	session := pipeline.NewSession()
	fe := &frontEnd{
		cfg:     cfg,
		log:     log,
		out:     out,
		session: session,
		model:   surface.New(),
		store:   storage.NewFS(cfg.SaveDir),
	}
	service := pipeline.NewServiceQueue(64)
	session.Start(controller.New(tree, session, log), service, fe)

	done := make(chan error, 1)
	go func() {
		if err := session.Send(pipeline.Resync{}); err == nil {
			fe.readCommands(ctx, in)
		}
		session.Close()
		done <- session.Wait()
		service.Stop()
	}()

	if err := service.Run(ctx); err != nil {
		return err
	}
	err = <-done
	if errors.Is(err, pipeline.ErrDisconnected) {
		return nil
	}
	return err
}
