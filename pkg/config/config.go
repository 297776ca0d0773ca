// Package config loads facet settings from TOML files.
//
// A missing key keeps its default; unknown keys are rejected so typos do not
// silently fall back to defaults.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chazu/facet/pkg/normals"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the configuration file the CLI looks for when none is given.
const DefaultFile = "facet.toml"

// Config is the full facet configuration.
type Config struct {
	Normals      normals.Options `toml:"normals"`
	Tessellation Tessellation    `toml:"tessellation"`
	Log          Log             `toml:"log"`
}

// Kernel names accepted by Tessellation.Kernel.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

// Tessellation configures the geometry kernel.
type Tessellation struct {
	// Kernel selects the geometry backend: "sdfx" or "manifold".
	Kernel string `toml:"kernel"`
	// Cells is the marching cubes resolution along the longest axis.
	Cells int `toml:"cells"`
	// WeldTolerance is the absolute distance under which triangle corners are
	// merged. Zero selects a tolerance relative to the part size.
	WeldTolerance float64 `toml:"weld_tolerance"`
}

// Log configures logging.
type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Normals:      normals.DefaultOptions(),
		Tessellation: Tessellation{Kernel: KernelSdfx, Cells: 200},
		Log:          Log{Level: "info"},
	}
}

// Load reads the TOML file at path on top of the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(bufio.NewReader(f))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes TOML from r on top of the defaults and validates the result.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", sme.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Normals = cfg.Normals.Normalize()
	return cfg, nil
}

// Validate reports settings that cannot be clamped into range.
func (c Config) Validate() error {
	switch c.Tessellation.Kernel {
	case KernelSdfx, KernelManifold:
	default:
		return fmt.Errorf("tessellation.kernel must be %q or %q, got %q", KernelSdfx, KernelManifold, c.Tessellation.Kernel)
	}
	if c.Tessellation.Cells <= 0 {
		return fmt.Errorf("tessellation.cells must be positive, got %d", c.Tessellation.Cells)
	}
	if c.Tessellation.WeldTolerance < 0 {
		return fmt.Errorf("tessellation.weld_tolerance must not be negative, got %g", c.Tessellation.WeldTolerance)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel converts the configured level name to a slog.Level.
func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	name := strings.TrimSpace(l.Level)
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
