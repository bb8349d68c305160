//go:build statsview

package statsview

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/rs/zerolog"
)

// Server is a running stats viewer.
type Server struct {
	addr string
	mgr  *statsview.ViewManager
}

// Available reports whether this build can start a viewer.
func Available() bool { return true }

// Start serves the viewer on addr in its own goroutine. Serve failures after startup
// are logged.
func Start(addr string, log zerolog.Logger) (*Server, error) {
	if addr == "" {
		return nil, errors.New("statsview: empty address")
	}
	viewer.SetConfiguration(viewer.WithAddr(addr), viewer.WithTimeInterval(2000))
	s := &Server{addr: addr, mgr: statsview.New()}
	go func() {
		if err := s.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("stats viewer stopped")
		}
	}()
	return s, nil
}

// URL is where the graphs are served.
func (s *Server) URL() string { return "http://" + s.addr + graphPath }

// Stop shuts the viewer down.
func (s *Server) Stop() { s.mgr.Stop() }
