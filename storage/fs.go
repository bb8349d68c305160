// Package storage keeps saved games as PGN files in a directory.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// ErrInvalidName reports a game name that is empty or would escape the directory.
var ErrInvalidName = errors.New("storage: invalid game name")

const ext = ".pgn"

// FS stores one game per file.
type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) pathFor(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, strings.TrimSuffix(name, ext)+ext), nil
}

// Save writes a game under name, creating the directory if needed, and returns the
// file path. An existing game of the same name is replaced.
func (s *FS) Save(ctx context.Context, name string, pgn []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.pathFor(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(pgn); err != nil {
		f.Close()
		return "", err
	}
	return target, f.Close()
}

// Load returns the PGN text of a saved game.
func (s *FS) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(target)
}

// List returns the names of saved games in name order. A missing directory holds no
// games.
func (s *FS) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	slices.Sort(out)
	return out, nil
}
