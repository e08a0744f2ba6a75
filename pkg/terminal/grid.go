package terminal

// Grid is the fixed ROWS×COLS array of cells (spec.md §3). It is
// created once at startup from the screen dimensions and cell metrics
// and never resized.
type Grid struct {
	Cols, Rows int
	rows       [][]Cell
}

// NewGrid allocates a COLS×ROWS grid with every cell blanked to fg/bg.
func NewGrid(cols, rows int, fg, bg uint32) *Grid {
	g := &Grid{Cols: cols, Rows: rows, rows: make([][]Cell, rows)}
	for y := range g.rows {
		g.rows[y] = make([]Cell, cols)
		for x := range g.rows[y] {
			g.rows[y][x] = blankCell(fg, bg)
		}
	}
	return g
}

// At returns the cell at (x, y). Callers are expected to pass in-bounds
// coordinates; out-of-range access is a programmer error in this
// package, not a runtime condition callers must handle.
func (g *Grid) At(x, y int) Cell {
	return g.rows[y][x]
}

// Set writes a cell at (x, y).
func (g *Grid) Set(x, y int, c Cell) {
	g.rows[y][x] = c
}

// BlankRow fills an entire row with space cells at fg/bg.
func (g *Grid) BlankRow(y int, fg, bg uint32) {
	for x := 0; x < g.Cols; x++ {
		g.rows[y][x] = blankCell(fg, bg)
	}
}

// BlankRange fills [xStart, xEnd) of row y with space cells at fg/bg.
func (g *Grid) BlankRange(y, xStart, xEnd int, fg, bg uint32) {
	if xStart < 0 {
		xStart = 0
	}
	if xEnd > g.Cols {
		xEnd = g.Cols
	}
	for x := xStart; x < xEnd; x++ {
		g.rows[y][x] = blankCell(fg, bg)
	}
}

// ScrollUp shifts every row in [top, bottom] one position toward top,
// blanking the row that scrolls in at the bottom (spec.md §4.3).
func (g *Grid) ScrollUp(top, bottom int, fg, bg uint32) {
	for y := top; y < bottom; y++ {
		copy(g.rows[y], g.rows[y+1])
	}
	g.BlankRow(bottom, fg, bg)
}

// ScrollDown mirrors ScrollUp, blanking the row that scrolls in at top.
func (g *Grid) ScrollDown(top, bottom int, fg, bg uint32) {
	for y := bottom; y > top; y-- {
		copy(g.rows[y], g.rows[y-1])
	}
	g.BlankRow(top, fg, bg)
}

// InsertLines inserts n blank lines at y, shifting [y, bottom] down and
// discarding rows that fall off the bottom of the region.
func (g *Grid) InsertLines(y, bottom, n int, fg, bg uint32) {
	for i := 0; i < n; i++ {
		g.ScrollDown(y, bottom, fg, bg)
	}
}

// DeleteLines deletes n lines at y, shifting [y, bottom] up and blanking
// the rows that scroll in at the bottom of the region.
func (g *Grid) DeleteLines(y, bottom, n int, fg, bg uint32) {
	for i := 0; i < n; i++ {
		g.ScrollUp(y, bottom, fg, bg)
	}
}

// InsertCells shifts cells [x, Cols) of row y right by n, discarding
// cells that fall off the right edge, and blanks the n cells at x. n is
// clamped to the space remaining on the row (spec.md §4.3: "trailing
// cells fall off").
func (g *Grid) InsertCells(x, y, n int, fg, bg uint32) {
	if n > g.Cols-x {
		n = g.Cols - x
	}
	if n <= 0 {
		return
	}
	row := g.rows[y]
	for i := g.Cols - 1; i >= x+n; i-- {
		row[i] = row[i-n]
	}
	g.BlankRange(y, x, x+n, fg, bg)
}

// DeleteCells shifts cells [x+n, Cols) of row y left by n and blanks the
// n cells that scroll in at the right edge. n is clamped the same way
// as InsertCells.
func (g *Grid) DeleteCells(x, y, n int, fg, bg uint32) {
	if n > g.Cols-x {
		n = g.Cols - x
	}
	if n <= 0 {
		return
	}
	row := g.rows[y]
	for i := x; i+n < g.Cols; i++ {
		row[i] = row[i+n]
	}
	g.BlankRange(y, g.Cols-n, g.Cols, fg, bg)
}
