// Package terminal implements the terminal model and parser (TM) of
// spec.md §4.3: the character grid, cursor, SGR attributes, scrolling
// region, and the byte-oriented ANSI/VT parser that mutates them.
//
// The parser is modeled on the teacher's AnsiParser
// (pkg/terminal/ansi_parser.go): a tagged state enum dispatched through
// a switch, carrying a parameter slice and an intermediate buffer. It
// differs from the teacher in one structural way the spec requires:
// the teacher's Parse([]byte) assumes whole chunks and decodes UTF-8
// with utf8.DecodeRune directly, which cannot split a multi-byte
// codepoint across two Feed calls. This package instead exposes
// Feed(byte) and keeps its own UTF-8 accumulator (spec.md §3, §4.3),
// so a CSI sequence or a UTF-8 codepoint split across any two chunks
// still produces the same final state (spec.md §8).
package terminal

// Cell is one grid cell: a Unicode scalar value plus SGR attributes.
// Every cell is always fully initialized; there is no "empty" cell,
// only a space cell (spec.md §3).
type Cell struct {
	Rune rune
	Fg   uint32 // 24-bit RGB
	Bg   uint32 // 24-bit RGB
	Bold bool
}

func blankCell(fg, bg uint32) Cell {
	return Cell{Rune: ' ', Fg: fg, Bg: bg}
}
