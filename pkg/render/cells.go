package render

import "math"

// Cell is one character position of a terminal projection.
type Cell struct {
	Rune  rune
	Style Style
	Color string // stroke or fill colour of the shape that wrote the cell
	Bg    string // last fill under the cell
	Ref   string
}

// Grid is a scene rasterised onto character cells.
type Grid struct {
	Cols, Rows   int
	CellW, CellH float64 // scene units per cell
	Cells        [][]Cell
}

// Default cell size in scene units. Pins must stay within PinHitRadius of
// a cell centre, so cells are kept small.
const (
	DefaultCellW = 8.0
	DefaultCellH = 12.0
)

// NewGrid creates an empty grid.
func NewGrid(cols, rows int, cellW, cellH float64) *Grid {
	if cellW <= 0 {
		cellW = DefaultCellW
	}
	if cellH <= 0 {
		cellH = DefaultCellH
	}
	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
	}
	return &Grid{Cols: cols, Rows: rows, CellW: cellW, CellH: cellH, Cells: cells}
}

// Cells rasterises a scene onto a cols x rows grid. Later shapes overwrite
// earlier ones.
func Cells(sc Scene, cols, rows int, cellW, cellH float64) *Grid {
	g := NewGrid(cols, rows, cellW, cellH)
	for _, sh := range sc.Shapes {
		switch s := sh.(type) {
		case Rect:
			g.rect(s)
		case Circle:
			g.circle(s)
		case Line:
			g.line(s)
		case Text:
			g.text(s)
		}
	}
	return g
}

// CellCentre returns the scene position at the centre of a cell.
func (g *Grid) CellCentre(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * g.CellW, (float64(row) + 0.5) * g.CellH
}

// At returns the cell at (col, row), or the zero cell when out of range.
func (g *Grid) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return Cell{}
	}
	return g.Cells[row][col]
}

func (g *Grid) set(col, row int, r rune, style Style, color, ref string) {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return
	}
	bg := g.Cells[row][col].Bg
	g.Cells[row][col] = Cell{Rune: r, Style: style, Color: color, Bg: bg, Ref: ref}
}

func (g *Grid) fill(col, row int, r rune, style Style, color, ref string) {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return
	}
	g.Cells[row][col] = Cell{Rune: r, Style: style, Color: color, Bg: color, Ref: ref}
}

func (g *Grid) col(x float64) int { return int(math.Floor(x / g.CellW)) }
func (g *Grid) row(y float64) int { return int(math.Floor(y / g.CellH)) }

func (g *Grid) rect(r Rect) {
	c0, r0 := g.col(r.X), g.row(r.Y)
	c1, r1 := g.col(r.X+r.W-0.001), g.row(r.Y+r.H-0.001)

	// Too small for a border: a solid block.
	if c1-c0 < 1 || r1-r0 < 1 {
		color := r.Fill
		if color == "" {
			color = r.Stroke
		}
		for y := r0; y <= r1; y++ {
			for x := c0; x <= c1; x++ {
				g.fill(x, y, '█', r.Style, color, r.Ref)
			}
		}
		return
	}

	if r.Fill != "" {
		for y := r0 + 1; y < r1; y++ {
			for x := c0 + 1; x < c1; x++ {
				g.fill(x, y, ' ', r.Style, r.Fill, r.Ref)
			}
		}
	}
	color := r.Stroke
	if color == "" {
		color = r.Fill
	}
	h, v := '─', '│'
	if r.Dashed {
		h, v = '┄', '┆'
	}
	for x := c0 + 1; x < c1; x++ {
		g.set(x, r0, h, r.Style, color, r.Ref)
		g.set(x, r1, h, r.Style, color, r.Ref)
	}
	for y := r0 + 1; y < r1; y++ {
		g.set(c0, y, v, r.Style, color, r.Ref)
		g.set(c1, y, v, r.Style, color, r.Ref)
	}
	g.set(c0, r0, '┌', r.Style, color, r.Ref)
	g.set(c1, r0, '┐', r.Style, color, r.Ref)
	g.set(c0, r1, '└', r.Style, color, r.Ref)
	g.set(c1, r1, '┘', r.Style, color, r.Ref)
}

func (g *Grid) circle(c Circle) {
	color := c.Fill
	if color == "" {
		color = c.Stroke
	}
	r := '●'
	switch c.Style {
	case StylePin:
		r = '•'
	case StylePinHover, StylePinActive:
		r = '◉'
	case StyleIndicator:
		r = '○'
	}
	g.set(g.col(c.CX), g.row(c.CY), r, c.Style, color, c.Ref)
}

// line walks the segment one cell at a time and picks a box-drawing rune from
// its slope.
func (g *Grid) line(l Line) {
	x0, y0 := l.X1/g.CellW, l.Y1/g.CellH
	x1, y1 := l.X2/g.CellW, l.Y2/g.CellH
	dx, dy := x1-x0, y1-y0

	r := '·'
	switch {
	case math.Abs(dy) < 0.5*math.Abs(dx):
		r = '─'
	case math.Abs(dx) < 0.5*math.Abs(dy):
		r = '│'
	case dx*dy > 0:
		r = '╲'
	default:
		r = '╱'
	}
	if l.Dashed {
		switch r {
		case '─':
			r = '┄'
		case '│':
			r = '┆'
		}
	}

	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		g.set(int(math.Floor(x0)), int(math.Floor(y0)), '·', l.Style, l.Stroke, l.Ref)
		return
	}
	for i := 0; i <= steps; i++ {
		if l.Dashed && i%3 == 2 {
			continue
		}
		t := float64(i) / float64(steps)
		g.set(int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), r, l.Style, l.Stroke, l.Ref)
	}
}

func (g *Grid) text(t Text) {
	if t.Value == "" {
		return
	}
	runes := []rune(t.Value)
	start := g.col(t.X) - len(runes)/2
	row := g.row(t.Y)
	for i, r := range runes {
		g.set(start+i, row, r, t.Style, t.Fill, t.Ref)
	}
}
