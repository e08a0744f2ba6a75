package terminal

import (
	"io"

	"github.com/fbterm/fbterm/pkg/config"
	"github.com/fbterm/fbterm/pkg/palette"
)

// Terminal is the terminal model and parser (TM) of spec.md §4.3: the
// character grid, cursor, SGR state, scrolling region, and the byte
// parser that drives them, bundled into one value so the scroll region
// and SGR defaults used by grid-mutating operations are always the
// current ones rather than threaded separately (spec.md §9's preferred
// explicit-config replacement for the teacher's package-global state).
//
// Reply bytes produced by device-status and device-attribute queries
// are written synchronously to reply before the CSI that produced them
// returns, preserving query/reply ordering relative to surrounding
// shell output (spec.md §5).
type Terminal struct {
	Grid      *Grid
	Cursor    Cursor
	SGR       SGR
	ScrollTop int
	ScrollBottom int

	palette palette.Table
	reply   io.Writer

	state     parserState
	params    []int
	private   bool
	maxParams int

	utf8Buf      [4]byte
	utf8Len      int
	utf8Expected int
}

// New builds a Terminal over a fresh cols×rows grid, blank at the
// default SGR. reply is the PTY master's write side; it may be nil in
// tests that don't exercise device queries.
func New(cols, rows int, pal palette.Table, reply io.Writer, cfg config.TerminalConfig) *Terminal {
	sgr := DefaultSGR()
	return &Terminal{
		Grid:         NewGrid(cols, rows, sgr.Fg, sgr.Bg),
		Cursor:       Cursor{Visible: true},
		SGR:          sgr,
		ScrollTop:    0,
		ScrollBottom: rows - 1,
		palette:      pal,
		reply:        reply,
		state:        stateNormal,
		params:       make([]int, 0, cfg.MaxCSIParams),
		maxParams:    cfg.MaxCSIParams,
	}
}

// SetReply sets the writer device-status and device-attribute replies
// go to. It exists because the PTY master that owns that writer is
// only available after the event loop has spawned the child, which
// happens after the Terminal has already been constructed with the
// grid size the PTY needs to be sized to.
func (t *Terminal) SetReply(w io.Writer) {
	t.reply = w
}

// param returns the i'th CSI parameter, or def if it was omitted or
// given as zero — the "p[n]?:default" shorthand spec.md §4.3 uses
// throughout its CSI dispatch table.
func (t *Terminal) param(i, def int) int {
	if i >= len(t.params) || t.params[i] == 0 {
		return def
	}
	return t.params[i]
}

func (t *Terminal) carriageReturn() {
	t.Cursor.X = 0
}

func (t *Terminal) newline() {
	t.Cursor.Y++
	if t.Cursor.Y > t.ScrollBottom {
		t.Cursor.Y = t.ScrollBottom
		t.Grid.ScrollUp(t.ScrollTop, t.ScrollBottom, t.SGR.Fg, t.SGR.Bg)
	}
}

func (t *Terminal) backspace() {
	if t.Cursor.X > 0 {
		t.Cursor.X--
	}
}

func (t *Terminal) tab() {
	next := (t.Cursor.X + 8) &^ 7
	if next >= t.Grid.Cols {
		t.carriageReturn()
		t.newline()
		return
	}
	t.Cursor.X = next
}

// putCodepoint implements spec.md §4.3's put_codepoint: wrap first if
// the cursor is sitting in the pending-wrap column, then write and
// advance.
func (t *Terminal) putCodepoint(cp rune) {
	if t.Cursor.X >= t.Grid.Cols {
		t.carriageReturn()
		t.newline()
	}
	t.Cursor.Y = clamp(t.Cursor.Y, 0, t.Grid.Rows-1)
	t.Grid.Set(t.Cursor.X, t.Cursor.Y, Cell{Rune: cp, Fg: t.SGR.Fg, Bg: t.SGR.Bg, Bold: t.SGR.Bold})
	t.Cursor.X++
}

// ComputeGridSize applies spec.md §3's grid-sizing formula and clamp.
func ComputeGridSize(screenW, screenH, cellW, cellH, marginPx int, cfg config.TerminalConfig) (cols, rows int) {
	cols = (screenW - marginPx) / cellW
	rows = (screenH - marginPx) / cellH
	cols = clamp(cols, cfg.MinCols, cfg.MaxCols)
	rows = clamp(rows, cfg.MinRows, cfg.MaxRows)
	return cols, rows
}
