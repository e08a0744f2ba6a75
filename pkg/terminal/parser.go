package terminal

import "unicode/utf8"

// parserState is the tagged state spec.md §3 and §4.3 describe:
// {NORMAL, ESC, CSI, OSC}, plus one extra state of our own (stateCharset)
// to consume the single byte that follows ESC '(' — the table in §4.3
// sends ESC '(' straight to NORMAL but notes "next byte also discarded
// in practice"; modeling that as its own transient state is the only
// way to actually discard it rather than reinterpreting it as a fresh
// NORMAL-state byte.
type parserState int

const (
	stateNormal parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateCharset
)

// Feed implements spec.md §4.3/§5: one byte at a time, so a multi-byte
// UTF-8 codepoint or a CSI sequence split across two PTY reads produces
// the same end state as feeding it in one chunk.
func (t *Terminal) Feed(b byte) {
	switch t.state {
	case stateNormal:
		t.feedNormal(b)
	case stateEscape:
		t.feedEscape(b)
	case stateCSI:
		t.feedCSI(b)
	case stateOSC:
		t.feedOSC(b)
	case stateCharset:
		t.state = stateNormal // the designator byte itself is discarded
	}
}

func (t *Terminal) feedNormal(b byte) {
	if t.utf8Expected > 0 {
		if b >= 0x80 && b <= 0xBF {
			t.utf8Buf[t.utf8Len] = b
			t.utf8Len++
			if t.utf8Len == t.utf8Expected {
				cp, _ := utf8.DecodeRune(t.utf8Buf[:t.utf8Len])
				t.resetUTF8()
				t.putCodepoint(cp)
			}
			return
		}
		// Lead byte promised more continuation bytes than we got.
		t.resetUTF8()
		t.putCodepoint(utf8.RuneError)
		// b itself still needs to be processed below.
	}

	switch {
	case b == 0x1b:
		t.state = stateEscape
	case b == '\n':
		t.carriageReturn()
		t.newline()
	case b == '\r':
		t.carriageReturn()
	case b == '\b':
		t.backspace()
	case b == '\t':
		t.tab()
	case b < 0x20:
		// other C0 controls are ignored
	case b < 0x80:
		t.putCodepoint(rune(b))
	case b&0xE0 == 0xC0:
		t.utf8Buf[0] = b
		t.utf8Len = 1
		t.utf8Expected = 2
	case b&0xF0 == 0xE0:
		t.utf8Buf[0] = b
		t.utf8Len = 1
		t.utf8Expected = 3
	case b&0xF8 == 0xF0:
		t.utf8Buf[0] = b
		t.utf8Len = 1
		t.utf8Expected = 4
	default:
		// stray continuation byte, or a lead byte with no valid form
		t.putCodepoint(utf8.RuneError)
	}
}

func (t *Terminal) resetUTF8() {
	t.utf8Len = 0
	t.utf8Expected = 0
}

func (t *Terminal) feedEscape(b byte) {
	switch b {
	case '[':
		t.params = t.params[:0]
		t.private = false
		t.state = stateCSI
	case ']':
		t.state = stateOSC
	case '(':
		t.state = stateCharset
	default:
		t.state = stateNormal
	}
}

func (t *Terminal) feedCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if len(t.params) == 0 {
			t.params = append(t.params, 0)
		}
		last := len(t.params) - 1
		t.params[last] = t.params[last]*10 + int(b-'0')
	case b == ';':
		if len(t.params) == 0 {
			t.params = append(t.params, 0) // omitted first parameter
		}
		if len(t.params) < t.maxParams {
			t.params = append(t.params, 0)
		}
	case b == '?':
		t.private = true
	case b >= 0x20 && b <= 0x2f:
		// intermediate byte, ignored
	case b >= 0x40 && b <= 0x7e:
		t.dispatchCSI(b)
		t.state = stateNormal
	default:
		t.state = stateNormal
	}
}

func (t *Terminal) feedOSC(b byte) {
	if b == 0x07 || b == 0x1b {
		t.state = stateNormal
	}
}
