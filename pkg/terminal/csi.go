package terminal

import (
	"fmt"
	"io"
)

// dispatchCSI implements the CSI dispatch table of spec.md §4.3.
// Unknown final bytes fall through every case and are silently
// absorbed, matching the failure semantics that close that section.
func (t *Terminal) dispatchCSI(final byte) {
	switch final {
	case 'H', 'f':
		t.Cursor.Y = clamp(t.param(0, 1)-1, 0, t.Grid.Rows-1)
		t.Cursor.X = clamp(t.param(1, 1)-1, 0, t.Grid.Cols-1)
	case 'A':
		t.Cursor.Y = clamp(t.Cursor.Y-t.param(0, 1), 0, t.Grid.Rows-1)
	case 'B':
		t.Cursor.Y = clamp(t.Cursor.Y+t.param(0, 1), 0, t.Grid.Rows-1)
	case 'C':
		t.Cursor.X = clamp(t.Cursor.X+t.param(0, 1), 0, t.Grid.Cols-1)
	case 'D':
		t.Cursor.X = clamp(t.Cursor.X-t.param(0, 1), 0, t.Grid.Cols-1)
	case 'G':
		t.Cursor.X = clamp(t.param(0, 1)-1, 0, t.Grid.Cols-1)
	case 'd':
		t.Cursor.Y = clamp(t.param(0, 1)-1, 0, t.Grid.Rows-1)
	case 'J':
		t.eraseDisplay(t.param(0, 0))
	case 'K':
		t.eraseLine(t.param(0, 0))
	case 'S':
		n := t.param(0, 1)
		for i := 0; i < n; i++ {
			t.Grid.ScrollUp(t.ScrollTop, t.ScrollBottom, t.SGR.Fg, t.SGR.Bg)
		}
	case 'T':
		n := t.param(0, 1)
		for i := 0; i < n; i++ {
			t.Grid.ScrollDown(t.ScrollTop, t.ScrollBottom, t.SGR.Fg, t.SGR.Bg)
		}
	case 'L':
		t.Grid.InsertLines(t.Cursor.Y, t.ScrollBottom, t.param(0, 1), t.SGR.Fg, t.SGR.Bg)
	case 'M':
		t.Grid.DeleteLines(t.Cursor.Y, t.ScrollBottom, t.param(0, 1), t.SGR.Fg, t.SGR.Bg)
	case '@':
		t.Grid.InsertCells(t.Cursor.X, t.Cursor.Y, t.param(0, 1), t.SGR.Fg, t.SGR.Bg)
	case 'P':
		t.Grid.DeleteCells(t.Cursor.X, t.Cursor.Y, t.param(0, 1), t.SGR.Fg, t.SGR.Bg)
	case 'X':
		n := t.param(0, 1)
		t.Grid.BlankRange(t.Cursor.Y, t.Cursor.X, t.Cursor.X+n, t.SGR.Fg, t.SGR.Bg)
	case 'r':
		t.setScrollRegion(t.param(0, 1)-1, t.param(1, t.Grid.Rows)-1)
	case 'm':
		t.dispatchSGR()
	case 'h':
		t.setPrivateModes(true)
	case 'l':
		t.setPrivateModes(false)
	case 'n':
		t.deviceStatus(t.param(0, 0))
	case 'c':
		t.writeReply("\x1b[?1;2c")
	}
}

func (t *Terminal) eraseDisplay(mode int) {
	switch mode {
	case 0:
		t.Grid.BlankRange(t.Cursor.Y, t.Cursor.X, t.Grid.Cols, t.SGR.Fg, t.SGR.Bg)
		for y := t.Cursor.Y + 1; y < t.Grid.Rows; y++ {
			t.Grid.BlankRow(y, t.SGR.Fg, t.SGR.Bg)
		}
	case 1:
		for y := 0; y < t.Cursor.Y; y++ {
			t.Grid.BlankRow(y, t.SGR.Fg, t.SGR.Bg)
		}
		t.Grid.BlankRange(t.Cursor.Y, 0, t.Cursor.X+1, t.SGR.Fg, t.SGR.Bg)
	case 2, 3:
		for y := 0; y < t.Grid.Rows; y++ {
			t.Grid.BlankRow(y, t.SGR.Fg, t.SGR.Bg)
		}
	}
}

func (t *Terminal) eraseLine(mode int) {
	switch mode {
	case 0:
		t.Grid.BlankRange(t.Cursor.Y, t.Cursor.X, t.Grid.Cols, t.SGR.Fg, t.SGR.Bg)
	case 1:
		t.Grid.BlankRange(t.Cursor.Y, 0, t.Cursor.X+1, t.SGR.Fg, t.SGR.Bg)
	case 2:
		t.Grid.BlankRow(t.Cursor.Y, t.SGR.Fg, t.SGR.Bg)
	}
}

func (t *Terminal) setScrollRegion(top, bottom int) {
	if top < 0 || bottom >= t.Grid.Rows || top > bottom {
		return // invalid region: ignored, current region unchanged
	}
	t.ScrollTop = top
	t.ScrollBottom = bottom
}

// dispatchSGR implements the `m` family of spec.md §4.3. A bare `m`
// with no parameters resets, same as an explicit `0`.
func (t *Terminal) dispatchSGR() {
	if len(t.params) == 0 {
		t.SGR = DefaultSGR()
		return
	}
	for _, p := range t.params {
		switch {
		case p == 0:
			t.SGR = DefaultSGR()
		case p == 1:
			t.SGR.Bold = true
		case p == 22:
			t.SGR.Bold = false
		case p >= 30 && p <= 37:
			t.SGR.Fg = uint32(t.palette.At(p - 30))
		case p == 39:
			t.SGR.Fg = DefaultSGR().Fg
		case p >= 40 && p <= 47:
			t.SGR.Bg = uint32(t.palette.At(p - 40))
		case p == 49:
			t.SGR.Bg = DefaultSGR().Bg
		case p >= 90 && p <= 97:
			t.SGR.Fg = uint32(t.palette.At(p - 90 + 8))
		case p >= 100 && p <= 107:
			t.SGR.Bg = uint32(t.palette.At(p - 100 + 8))
		}
	}
}

// setPrivateModes implements the `h`/`l` private-mode subset of
// spec.md §4.3: only meaningful when the CSI carried a `?`, and only
// code 25 (cursor visibility) has an observable effect here.
func (t *Terminal) setPrivateModes(enable bool) {
	if !t.private {
		return
	}
	for _, p := range t.params {
		switch p {
		case 25:
			t.Cursor.Visible = enable
		case 47, 1047, 1049:
			// alternate screen buffer: accepted and ignored (spec.md §9)
		}
	}
}

func (t *Terminal) deviceStatus(mode int) {
	switch mode {
	case 5:
		t.writeReply("\x1b[0n")
	case 6:
		t.writeReply(fmt.Sprintf("\x1b[%d;%dR", t.Cursor.Y+1, t.Cursor.X+1))
	}
}

func (t *Terminal) writeReply(s string) {
	if t.reply == nil {
		return
	}
	io.WriteString(t.reply, s)
}
