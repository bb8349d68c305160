// Package config holds the settings shared by the front ends: an optional YAML file,
// overridden by command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"disboard/board"
)

// Config is the front-end configuration.
type Config struct {
	// SquareSize is the pixel size of one board square used to turn pointer coordinates
	// into squares.
	SquareSize uint32 `yaml:"square_size"`
	StartFEN   string `yaml:"start_fen"`
	LogLevel   string `yaml:"log_level"`
	// SaveDir is where saved games are written.
	SaveDir string `yaml:"save_dir"`
	// StatsAddr is where the runtime stats viewer listens in builds that include it.
	// Empty turns it off.
	StatsAddr string `yaml:"stats_addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SquareSize: 8,
		StartFEN:   board.FENStartPos,
		LogLevel:   "info",
		SaveDir:    "games",
		StatsAddr:  "localhost:12600",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error. An empty path
// gives the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	if c.SquareSize == 0 {
		return errors.New("config: square_size must be > 0")
	}
	if _, err := board.ParseFEN(c.StartFEN); err != nil {
		return fmt.Errorf("config: start_fen: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.SaveDir == "" {
		return errors.New("config: save_dir must not be empty")
	}
	return nil
}

// Parse defines the configuration flags on fs, parses args, loads the file named by
// -config and applies every flag that was set explicitly on top of it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	def := Default()
	path := fs.String("config", "", "YAML configuration file")
	size := fs.Uint("square-size", uint(def.SquareSize), "Pixels per board square")
	fen := fs.String("fen", def.StartFEN, "FEN of the starting position")
	level := fs.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	saveDir := fs.String("save-dir", def.SaveDir, "Directory for saved games")
	statsAddr := fs.String("stats-addr", def.StatsAddr, "Address of the stats viewer, empty to disable")
	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg, err := Load(*path)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "square-size":
			cfg.SquareSize = uint32(*size)
		case "fen":
			cfg.StartFEN = *fen
		case "log-level":
			cfg.LogLevel = *level
		case "save-dir":
			cfg.SaveDir = *saveDir
		case "stats-addr":
			cfg.StatsAddr = *statsAddr
		}
	})
	return cfg, cfg.Validate()
}

// Logger returns a console logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
