package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/circuitsim/pkg/sim"
)

func TestCellsRectBorder(t *testing.T) {
	sc := Scene{Shapes: []Shape{
		Rect{X: 8, Y: 12, W: 40, H: 36, Fill: "#fff", Stroke: "#000", Style: StyleBody, Ref: "c1"},
	}}
	g := Cells(sc, 10, 6, 8, 12)

	assert.Equal(t, '┌', g.At(1, 1).Rune)
	assert.Equal(t, '┐', g.At(5, 1).Rune)
	assert.Equal(t, '└', g.At(1, 3).Rune)
	assert.Equal(t, '┘', g.At(5, 3).Rune)
	assert.Equal(t, '─', g.At(3, 1).Rune)
	assert.Equal(t, '│', g.At(1, 2).Rune)
	assert.Equal(t, ' ', g.At(3, 2).Rune)
	assert.Equal(t, "c1", g.At(3, 2).Ref)
	assert.Equal(t, Cell{}, g.At(0, 0))
	assert.Equal(t, Cell{}, g.At(-1, 99), "out of range is the zero cell")
}

func TestCellsSmallRectIsBlock(t *testing.T) {
	sc := Scene{Shapes: []Shape{Rect{X: 0, Y: 0, W: 4, H: 4, Fill: "#f00", Style: StyleBodyDetail}}}
	g := Cells(sc, 2, 2, 8, 12)
	assert.Equal(t, '█', g.At(0, 0).Rune)
	assert.Equal(t, "#f00", g.At(0, 0).Color)
}

func TestCellsLineRunes(t *testing.T) {
	tests := []struct {
		name   string
		line   Line
		col    int
		row    int
		expect rune
	}{
		{"horizontal", Line{X1: 0, Y1: 6, X2: 80, Y2: 6}, 5, 0, '─'},
		{"vertical", Line{X1: 4, Y1: 0, X2: 4, Y2: 120}, 0, 5, '│'},
		{"falling", Line{X1: 0, Y1: 0, X2: 80, Y2: 120}, 5, 5, '╲'},
		{"rising", Line{X1: 0, Y1: 120, X2: 80, Y2: 0}, 1, 9, '╱'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Cells(Scene{Shapes: []Shape{tt.line}}, 12, 12, 8, 12)
			assert.Equal(t, tt.expect, g.At(tt.col, tt.row).Rune)
		})
	}
}

func TestCellsDashedLineHasGaps(t *testing.T) {
	l := Line{X1: 0, Y1: 6, X2: 80, Y2: 6, Dashed: true, Style: StyleWireDraft}
	g := Cells(Scene{Shapes: []Shape{l}}, 12, 1, 8, 12)
	assert.Equal(t, '┄', g.At(0, 0).Rune)
	assert.Equal(t, rune(0), g.At(2, 0).Rune)
}

func TestCellsTextCentred(t *testing.T) {
	g := Cells(Scene{Shapes: []Shape{Text{X: 40, Y: 6, Value: "LED"}}}, 10, 1, 8, 12)
	assert.Equal(t, 'L', g.At(4, 0).Rune)
	assert.Equal(t, 'E', g.At(5, 0).Rune)
	assert.Equal(t, 'D', g.At(6, 0).Rune)
}

func TestCellsPinsLandUnderTheirPositions(t *testing.T) {
	g, _, led := ledGraph(t, false)
	sc := Render(g, sim.Result{}, DefaultView(), Interaction{})
	grid := Cells(sc, 120, 60, DefaultCellW, DefaultCellH)

	for _, pin := range []string{"anode", "cathode"} {
		p, ok := g.PinWorldPosition(led, pin)
		require.True(t, ok)
		cell := grid.At(int(p.X/DefaultCellW), int(p.Y/DefaultCellH))
		assert.Equal(t, StylePin, cell.Style, pin)
		assert.Equal(t, led+"/"+pin, cell.Ref)
	}
}

func TestCellCentreWithinPinRadius(t *testing.T) {
	grid := NewGrid(1, 1, 0, 0)
	x, y := grid.CellCentre(0, 0)
	assert.LessOrEqual(t, x*x+y*y, 8.0*8.0)

	// Every point of a cell is within 8 units of its centre.
	assert.LessOrEqual(t, (DefaultCellW/2)*(DefaultCellW/2)+(DefaultCellH/2)*(DefaultCellH/2), 64.0)
}

func TestCellsTextKeepsFillBehind(t *testing.T) {
	sc := Scene{Shapes: []Shape{
		Rect{X: 0, Y: 0, W: 80, H: 48, Fill: "#0f766e", Stroke: "#000", Style: StyleBody},
		Text{X: 40, Y: 18, Value: "UNO", Fill: "#fff", Style: StyleLabel},
	}}
	g := Cells(sc, 10, 4, 8, 12)
	c := g.At(5, 1)
	assert.Equal(t, 'N', c.Rune)
	assert.Equal(t, "#fff", c.Color)
	assert.Equal(t, "#0f766e", c.Bg)
}
