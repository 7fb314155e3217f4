// Package config loads renderer settings from a TOML file and watches it
// for changes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Render holds the tunables of the frame pipeline.
type Render struct {
	// ScrollShiftMax is the largest scroll distance executed as a
	// scroll-region shift before escalating to a full repaint.
	ScrollShiftMax int `toml:"scroll_shift_max"`
	// EscalationThreshold is the candidate-set fraction of the text area at
	// which a lines-partial frame becomes a full repaint.
	EscalationThreshold float64 `toml:"escalation_threshold"`
	// OverlayLines bounds the metrics overlay height.
	OverlayLines int `toml:"overlay_lines"`
}

// Config is the root configuration document.
type Config struct {
	Render Render `toml:"render"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: Render{
			ScrollShiftMax:      12,
			EscalationThreshold: 0.60,
			OverlayLines:        3,
		},
	}
}

// Load reads a TOML config from path, layered over the defaults. A missing
// file yields the defaults without error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps out-of-range values back to their defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Render.ScrollShiftMax <= 0 {
		c.Render.ScrollShiftMax = def.Render.ScrollShiftMax
	}
	if c.Render.EscalationThreshold <= 0 || c.Render.EscalationThreshold > 1 {
		c.Render.EscalationThreshold = def.Render.EscalationThreshold
	}
	if c.Render.OverlayLines <= 0 {
		c.Render.OverlayLines = def.Render.OverlayLines
	}
}
