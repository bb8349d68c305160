//go:build !statsview

package statsview

import "github.com/rs/zerolog"

// Server stands in for the viewer in builds without it.
type Server struct{}

// Available reports whether this build can start a viewer.
func Available() bool { return false }

// Start always fails with ErrUnavailable.
func Start(addr string, log zerolog.Logger) (*Server, error) { return nil, ErrUnavailable }

func (s *Server) URL() string { return "" }

func (s *Server) Stop() {}
