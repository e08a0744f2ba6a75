package terminal

import (
	"bytes"
	"testing"

	"github.com/fbterm/fbterm/pkg/config"
	"github.com/fbterm/fbterm/pkg/palette"
)

func newTestTerminal(t *testing.T, cols, rows int) (*Terminal, *bytes.Buffer) {
	t.Helper()
	reply := &bytes.Buffer{}
	return New(cols, rows, palette.Build(), reply, config.Default()), reply
}

func feedString(term *Terminal, s string) {
	for i := 0; i < len(s); i++ {
		term.Feed(s[i])
	}
}

func TestHelloNewlineScenario(t *testing.T) {
	term, _ := newTestTerminal(t, 80, 24)
	feedString(term, "hi\n")

	if c := term.Grid.At(0, 0); c.Rune != 'h' {
		t.Fatalf("cell(0,0) = %q, want 'h'", c.Rune)
	}
	if c := term.Grid.At(1, 0); c.Rune != 'i' {
		t.Fatalf("cell(1,0) = %q, want 'i'", c.Rune)
	}
	if term.Cursor.X != 0 || term.Cursor.Y != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", term.Cursor.X, term.Cursor.Y)
	}
}

func TestClearAndHomeScenario(t *testing.T) {
	term, _ := newTestTerminal(t, 80, 24)
	feedString(term, "garbage")
	feedString(term, "\x1b[2J\x1b[H")

	for y := 0; y < term.Grid.Rows; y++ {
		for x := 0; x < term.Grid.Cols; x++ {
			c := term.Grid.At(x, y)
			if c.Rune != ' ' || c.Fg != DefaultSGR().Fg || c.Bg != DefaultSGR().Bg {
				t.Fatalf("cell(%d,%d) = %+v, want blank default", x, y, c)
			}
		}
	}
	if term.Cursor.X != 0 || term.Cursor.Y != 0 {
		t.Fatalf("cursor = (%d,%d), want (0,0)", term.Cursor.X, term.Cursor.Y)
	}
}

func TestSGRColorScenario(t *testing.T) {
	term, _ := newTestTerminal(t, 80, 24)
	feedString(term, "\x1b[31mX\x1b[0mY")

	x := term.Grid.At(0, 0)
	if x.Rune != 'X' || x.Fg != 0xCD0000 {
		t.Fatalf("cell(0,0) = %+v, want X with fg 0xCD0000", x)
	}
	y := term.Grid.At(1, 0)
	if y.Rune != 'Y' || y.Fg != 0xFFFFFF {
		t.Fatalf("cell(1,0) = %+v, want Y with fg 0xFFFFFF", y)
	}
}

func TestDeviceStatusReportScenario(t *testing.T) {
	term, reply := newTestTerminal(t, 80, 24)
	term.Cursor.X, term.Cursor.Y = 3, 5
	feedString(term, "\x1b[6n")

	if got := reply.String(); got != "\x1b[6;4R" {
		t.Fatalf("reply = %q, want \\x1b[6;4R", got)
	}
}

func TestUTF8CodepointScenario(t *testing.T) {
	term, _ := newTestTerminal(t, 80, 24)
	for _, b := range []byte{0xF0, 0x9F, 0x98, 0x80} {
		term.Feed(b)
	}

	c := term.Grid.At(0, 0)
	if c.Rune != 0x1F600 {
		t.Fatalf("cell(0,0).Rune = %U, want U+1F600", c.Rune)
	}
	if term.Cursor.X != 1 {
		t.Fatalf("cursor.X = %d, want 1", term.Cursor.X)
	}
}

func TestScrollRegionNewlineScenario(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 6)
	for y := 0; y < term.Grid.Rows; y++ {
		term.Grid.Set(0, y, Cell{Rune: rune('0' + y), Fg: term.SGR.Fg, Bg: term.SGR.Bg})
	}
	feedString(term, "\x1b[2;4r")
	term.Cursor.Y = 3

	row0Before := term.Grid.At(0, 0)
	feedString(term, "\n")

	if got := term.Grid.At(0, 0); got != row0Before {
		t.Fatalf("row 0 outside the region changed: %+v -> %+v", row0Before, got)
	}
	if got := term.Grid.At(0, 2).Rune; got != '3' {
		t.Fatalf("row 2 should now hold old row 3's contents, got %q", got)
	}
	if got := term.Grid.At(0, 3).Rune; got != ' ' {
		t.Fatalf("row 3 should be blanked, got %q", got)
	}
	if term.Cursor.Y != 3 {
		t.Fatalf("cursor.Y = %d, want 3 (unchanged)", term.Cursor.Y)
	}
}

func TestCursorBoundsInvariant(t *testing.T) {
	term, _ := newTestTerminal(t, 5, 3)
	feedString(term, "\x1b[999;999H")
	if term.Cursor.X < 0 || term.Cursor.X >= term.Grid.Cols {
		t.Fatalf("cursor.X = %d out of bounds", term.Cursor.X)
	}
	if term.Cursor.Y < 0 || term.Cursor.Y >= term.Grid.Rows {
		t.Fatalf("cursor.Y = %d out of bounds", term.Cursor.Y)
	}
}

func TestSGRResetIdempotent(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 2)
	feedString(term, "\x1b[31;44;1m")
	feedString(term, "\x1b[0m\x1b[0m")

	want := DefaultSGR()
	if term.SGR != want {
		t.Fatalf("SGR = %+v, want %+v", term.SGR, want)
	}
}

func TestDoubleCursorHomeIdempotent(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 10)
	term.Cursor.X, term.Cursor.Y = 7, 8
	feedString(term, "\x1b[H")
	if term.Cursor.X != 0 || term.Cursor.Y != 0 {
		t.Fatalf("first CSI H: cursor = (%d,%d), want (0,0)", term.Cursor.X, term.Cursor.Y)
	}
	feedString(term, "\x1b[H")
	if term.Cursor.X != 0 || term.Cursor.Y != 0 {
		t.Fatalf("second CSI H: cursor = (%d,%d), want (0,0)", term.Cursor.X, term.Cursor.Y)
	}
}

func TestEraseDisplayTwiceIdentical(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 5)
	feedString(term, "hello world this wraps a bit")
	feedString(term, "\x1b[2J")
	snapshot := gridSnapshot(term.Grid)

	feedString(term, "\x1b[2J")
	if got := gridSnapshot(term.Grid); !cellsEqual(got, snapshot) {
		t.Fatalf("second CSI 2J changed the grid")
	}
}

func gridSnapshot(g *Grid) [][]Cell {
	out := make([][]Cell, g.Rows)
	for y := range out {
		out[y] = make([]Cell, g.Cols)
		for x := range out[y] {
			out[y][x] = g.At(x, y)
		}
	}
	return out
}

func cellsEqual(a, b [][]Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return false
		}
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return false
			}
		}
	}
	return true
}

func TestCursorPositionRowBeforeColumn(t *testing.T) {
	term, _ := newTestTerminal(t, 20, 10)
	feedString(term, "\x1b[3;7H")

	if term.Cursor.X != 6 || term.Cursor.Y != 2 {
		t.Fatalf("cursor = (%d,%d), want (6,2) for row=3;col=7", term.Cursor.X, term.Cursor.Y)
	}
}

func TestCSISplitAcrossChunksMatchesWhole(t *testing.T) {
	whole, _ := newTestTerminal(t, 20, 5)
	feedString(whole, "\x1b[3;7H")

	split, _ := newTestTerminal(t, 20, 5)
	seq := "\x1b[3;7H"
	for i := 0; i < 3; i++ {
		split.Feed(seq[i])
	}
	for i := 3; i < len(seq); i++ {
		split.Feed(seq[i])
	}

	if whole.Cursor != split.Cursor {
		t.Fatalf("split cursor = %+v, whole cursor = %+v", split.Cursor, whole.Cursor)
	}
}

func TestWriteAtLastColumnPendsWrap(t *testing.T) {
	term, _ := newTestTerminal(t, 5, 3)
	feedString(term, "1234")
	if term.Cursor.X != 4 || term.Cursor.Y != 0 {
		t.Fatalf("cursor before boundary write = (%d,%d), want (4,0)", term.Cursor.X, term.Cursor.Y)
	}
	term.Feed('5')
	if term.Cursor.X != 5 {
		t.Fatalf("cursor.X after filling last column = %d, want 5 (pending)", term.Cursor.X)
	}
	term.Feed('6')
	if term.Cursor.X != 1 || term.Cursor.Y != 1 {
		t.Fatalf("cursor after next write = (%d,%d), want (1,1)", term.Cursor.X, term.Cursor.Y)
	}
	if got := term.Grid.At(0, 1).Rune; got != '6' {
		t.Fatalf("cell(0,1) = %q, want '6'", got)
	}
}

func TestNewlineAtScrollBottomScrollsRegionOnly(t *testing.T) {
	term, _ := newTestTerminal(t, 5, 5)
	feedString(term, "\x1b[2;4r")
	for y := 0; y < term.Grid.Rows; y++ {
		term.Grid.Set(0, y, Cell{Rune: rune('a' + y), Fg: term.SGR.Fg, Bg: term.SGR.Bg})
	}
	term.Cursor.Y = term.ScrollBottom

	term.Feed('\n')

	if got := term.Grid.At(0, 0).Rune; got != 'a' {
		t.Fatalf("row 0 outside region changed: %q", got)
	}
	if got := term.Grid.At(0, 4).Rune; got != 'e' {
		t.Fatalf("row 4 outside region changed: %q", got)
	}
	if got := term.Grid.At(0, 1).Rune; got != 'c' {
		t.Fatalf("row 1 should hold old row 2's contents, got %q", got)
	}
	if got := term.Grid.At(0, 3).Rune; got != ' ' {
		t.Fatalf("row 3 should be blanked after scroll, got %q", got)
	}
}

func TestBackspaceAtColumnZeroIsNoop(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 3)
	term.Feed('\b')
	if term.Cursor.X != 0 {
		t.Fatalf("cursor.X = %d after backspace at 0, want 0", term.Cursor.X)
	}
}

func TestMalformedUTF8EmitsReplacementAndAdvances(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 3)
	term.Feed(0x80) // stray continuation byte, no lead byte
	if got := term.Grid.At(0, 0).Rune; got != 0xFFFD {
		t.Fatalf("cell(0,0).Rune = %U, want U+FFFD", got)
	}
	if term.Cursor.X != 1 {
		t.Fatalf("cursor.X = %d, want 1", term.Cursor.X)
	}
}

func TestDeviceAttributesReply(t *testing.T) {
	term, reply := newTestTerminal(t, 10, 3)
	feedString(term, "\x1b[c")
	if got := reply.String(); got != "\x1b[?1;2c" {
		t.Fatalf("reply = %q, want \\x1b[?1;2c", got)
	}
}

func TestCursorVisibilityPrivateMode(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 3)
	feedString(term, "\x1b[?25l")
	if term.Cursor.Visible {
		t.Fatal("expected cursor hidden after CSI ?25l")
	}
	feedString(term, "\x1b[?25h")
	if !term.Cursor.Visible {
		t.Fatal("expected cursor shown after CSI ?25h")
	}
}

func TestComputeGridSizeClamps(t *testing.T) {
	cfg := config.Default()
	cols, rows := ComputeGridSize(100, 100, 8, 16, 0, cfg)
	if cols < cfg.MinCols || rows < cfg.MinRows {
		t.Fatalf("got cols=%d rows=%d, expected clamped to minimums %d/%d", cols, rows, cfg.MinCols, cfg.MinRows)
	}
}
