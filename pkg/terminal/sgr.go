package terminal

// SGR holds the current Select Graphic Rendition attributes applied to
// every subsequently written cell (spec.md §3).
type SGR struct {
	Fg   uint32
	Bg   uint32
	Bold bool
}

// DefaultSGR returns the reset state: white on black, not bold.
func DefaultSGR() SGR {
	return SGR{Fg: 0xFFFFFF, Bg: 0x000000}
}
