// Command fbterm paints an ANSI/VT terminal onto a Linux framebuffer
// device and drives an interactive shell through a PTY (spec.md §1).
//
// Usage: fbterm <font.ttf> [font_size_px]
//
// Argument parsing here is deliberately minimal — spec.md §1 places
// "argument parsing and startup banners" outside the core, and §6
// specifies exactly two positional arguments with no flags. See
// DESIGN.md for why this program does not pull in a CLI framework the
// way the teacher's cmd/vibetunnel did.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fbterm/fbterm/pkg/config"
	"github.com/fbterm/fbterm/pkg/diag"
	"github.com/fbterm/fbterm/pkg/fb"
	"github.com/fbterm/fbterm/pkg/ferr"
	"github.com/fbterm/fbterm/pkg/glyph"
	"github.com/fbterm/fbterm/pkg/host"
	"github.com/fbterm/fbterm/pkg/palette"
	"github.com/fbterm/fbterm/pkg/terminal"
)

const fbDevice = "/dev/fb0"

func main() {
	if diag.Enabled() {
		fmt.Fprintln(os.Stderr, "fbterm: debug run", diag.RunID())
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fbterm:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a returned error onto spec.md §6's exit-status contract:
// 0 on clean quit, 1 on argument or device errors. Every error that
// actually propagates out of run() today belongs to the fatal-at-startup
// tier, but this still asks ferr.IsFatal rather than assuming it, so a
// future non-fatal error type doesn't silently start exiting 1.
func exitCode(err error) int {
	var fe *ferr.Error
	if errors.As(err, &fe) && !ferr.IsFatal(fe.Code) {
		return 0
	}
	return 1
}

func run() error {
	cfg := config.Load(os.Getenv("FBTERM_CONFIG"))

	fontPath, sizePx, err := parseArgs(os.Args[1:], cfg)
	if err != nil {
		return err
	}

	surface, err := fb.Open(fbDevice)
	if err != nil {
		return err
	}
	defer surface.Close()

	fonts, err := glyph.LoadTable(fontPath, nil, cfg.MaxFonts)
	if err != nil {
		return err
	}

	metrics, err := fonts.Metrics(sizePx)
	if err != nil {
		return ferr.Wrap(ferr.ErrFatalFont, "compute cell metrics", err)
	}

	cols, rows := terminal.ComputeGridSize(surface.Width, surface.Height, metrics.CellW, metrics.CellH, cfg.MarginPx, cfg)

	pal := palette.Build()

	return buildAndRunHost(cfg, cols, rows, pal, surface, fonts, metrics)
}

// buildAndRunHost wires up the terminal model and the event loop and
// runs it to completion. Split out of run so the PTY-writer dependency
// cycle (Terminal needs a writer that is the PTY master, which host.New
// needs the Terminal's grid size to create) stays in one place.
func buildAndRunHost(cfg config.TerminalConfig, cols, rows int, pal palette.Table, surface *fb.Surface, fonts *glyph.Table, metrics glyph.CellMetrics) error {
	// The terminal needs a reply writer before the PTY exists; host.New
	// creates the PTY and hands back its master, so we build the
	// terminal first with a deferred writer and patch it in.
	t := terminal.New(cols, rows, pal, nil, cfg)

	h, err := host.New(cfg, t, surface, fonts, metrics)
	if err != nil {
		return err
	}
	t.SetReply(h.PTYMaster())

	return h.Run()
}

// parseArgs implements spec.md §6's CLI contract: one required
// positional argument (the primary font) and one optional decimal
// font_size_px, validated against [MinFontSizePx, MaxFontSizePx].
func parseArgs(args []string, cfg config.TerminalConfig) (fontPath string, sizePx float64, err error) {
	if len(args) < 1 {
		return "", 0, ferr.New(ferr.ErrFatalArgs, "usage: fbterm <font.ttf> [font_size_px]")
	}
	fontPath = args[0]
	sizePx = cfg.DefaultFontSizePx

	if len(args) >= 2 {
		v, perr := strconv.ParseFloat(args[1], 64)
		if perr != nil {
			return "", 0, ferr.Wrap(ferr.ErrFatalArgs, "font_size_px must be a number", perr)
		}
		sizePx = v
	}

	if sizePx < cfg.MinFontSizePx || sizePx > cfg.MaxFontSizePx {
		return "", 0, ferr.New(ferr.ErrFatalArgs, fmt.Sprintf("font_size_px %.1f out of range [%.0f, %.0f]", sizePx, cfg.MinFontSizePx, cfg.MaxFontSizePx))
	}

	return fontPath, sizePx, nil
}
