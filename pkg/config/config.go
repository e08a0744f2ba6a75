// Package config holds fbterm's tunable constants. Every default below
// matches a number spec.md names explicitly; the YAML override file is
// a developer/tuning knob, never part of the documented external
// interface (§6: CLI is two positional args, nothing else).
//
// Modeled on the teacher's own Config/DefaultConfig/LoadConfig split
// (pkg/config/config.go), minus the parts of that struct that described
// a multi-session web dashboard this program doesn't have.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TerminalConfig collects every numeric knob the implementer is free to
// choose, per spec.md §4.1 and §9. Defaults reproduce spec.md's own
// numbers; nothing here changes observable terminal behavior.
type TerminalConfig struct {
	// MinCols/MaxCols/MinRows/MaxRows are the grid clamp range from
	// spec.md §3: COLS clamped to [40..MAX_COLS], ROWS to [10..MAX_ROWS].
	MinCols int `yaml:"min_cols"`
	MaxCols int `yaml:"max_cols"`
	MinRows int `yaml:"min_rows"`
	MaxRows int `yaml:"max_rows"`

	// MarginPx is the screen margin subtracted before dividing by cell
	// metrics to derive COLS/ROWS (spec.md §3).
	MarginPx int `yaml:"margin_px"`

	// FrameIntervalMs bounds the event loop's multiplexer wait, pacing
	// rendering to roughly 60fps (spec.md §4.4, §5).
	FrameIntervalMs int `yaml:"frame_interval_ms"`

	// MinFontSizePx/MaxFontSizePx bound the font_size_px CLI argument
	// (spec.md §6): rejected outside [6, 72].
	MinFontSizePx float64 `yaml:"min_font_size_px"`
	MaxFontSizePx float64 `yaml:"max_font_size_px"`

	// DefaultFontSizePx is used when font_size_px is omitted.
	DefaultFontSizePx float64 `yaml:"default_font_size_px"`

	// MaxFonts caps the font table size: one primary plus K fallbacks
	// (spec.md §3: "an ordered list of up to 4 entries").
	MaxFonts int `yaml:"max_fonts"`

	// MaxCSIParams caps the parser's parameter array (spec.md §3: "up
	// to 16 non-negative integers").
	MaxCSIParams int `yaml:"max_csi_params"`
}

// Default returns the configuration spec.md itself specifies.
func Default() TerminalConfig {
	return TerminalConfig{
		MinCols:           40,
		MaxCols:           400,
		MinRows:           10,
		MaxRows:           200,
		MarginPx:          0,
		FrameIntervalMs:   16,
		MinFontSizePx:     6,
		MaxFontSizePx:     72,
		DefaultFontSizePx: 16,
		MaxFonts:          4,
		MaxCSIParams:      16,
	}
}

// Load reads an optional YAML override file and merges it over Default.
// Any read or parse failure is silently absorbed and Default is
// returned unchanged — this file tunes implementation knobs the spec
// leaves open, it never gates startup the way a malformed font or a
// framebuffer failure does.
func Load(path string) TerminalConfig {
	cfg := Default()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}

	return cfg
}
