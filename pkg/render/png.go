// Raster output for circuit scenes.
// Draws the same primitives as the SVG writer using Go's image packages.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width      int
	Height     int
	Background string
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:      1000,
		Height:     700,
		Background: "#f5efe6",
	}
}

// supersample is the factor the scene is drawn at before downsampling.
const supersample = 4

// rasterContext holds the target image, the supersampling factor and the
// loaded font.
type rasterContext struct {
	img   *image.RGBA
	scale float64
	font  *opentype.Font
	faces map[int]font.Face
}

func newRasterContext(img *image.RGBA, scale int) (*rasterContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &rasterContext{
		img:   img,
		scale: float64(scale),
		font:  fnt,
		faces: make(map[int]font.Face),
	}, nil
}

// face returns a face for a scene font size, cached per rounded pixel size.
func (ctx *rasterContext) face(size float64) (font.Face, error) {
	px := int(math.Round(size * ctx.scale))
	if px < 1 {
		px = 1
	}
	if f, ok := ctx.faces[px]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(ctx.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	ctx.faces[px] = f
	return f, nil
}

// RenderPNG draws a scene into an image of the requested size. The scene is
// drawn at 4x and downsampled for smoother edges.
func RenderPNG(sc Scene, opts PNGOptions) (*image.RGBA, error) {
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 700
	}
	bg := parseColor(opts.Background)
	if opts.Background == "" {
		bg = parseColor("#f5efe6")
	}

	large := image.NewRGBA(image.Rect(0, 0, opts.Width*supersample, opts.Height*supersample))
	draw.Draw(large, large.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	ctx, err := newRasterContext(large, supersample)
	if err != nil {
		return nil, err
	}
	for _, sh := range sc.Shapes {
		switch s := sh.(type) {
		case Rect:
			fillRect(ctx, s)
		case Circle:
			fillCircle(ctx, s)
		case Line:
			drawSegment(ctx, s.X1, s.Y1, s.X2, s.Y2, s.StrokeWidth, s.Dashed, parseColor(s.Stroke))
		case Text:
			if err := drawTextCentered(ctx, s); err != nil {
				return nil, err
			}
		}
	}

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final, nil
}

// WritePNG renders a scene as PNG to w.
func WritePNG(w io.Writer, sc Scene, opts PNGOptions) error {
	img, err := RenderPNG(sc, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func fillRect(ctx *rasterContext, r Rect) {
	k := ctx.scale
	x0, y0 := r.X*k, r.Y*k
	x1, y1 := (r.X+r.W)*k, (r.Y+r.H)*k
	if r.Fill != "" {
		fill := parseColor(r.Fill)
		rad := r.Radius * k
		for y := math.Floor(y0); y < y1; y++ {
			for x := math.Floor(x0); x < x1; x++ {
				if outsideCorner(x, y, x0, y0, x1, y1, rad) {
					continue
				}
				ctx.img.Set(int(x), int(y), fill)
			}
		}
	}
	if r.Stroke != "" {
		c := parseColor(r.Stroke)
		drawSegment(ctx, r.X, r.Y, r.X+r.W, r.Y, r.StrokeWidth, r.Dashed, c)
		drawSegment(ctx, r.X+r.W, r.Y, r.X+r.W, r.Y+r.H, r.StrokeWidth, r.Dashed, c)
		drawSegment(ctx, r.X+r.W, r.Y+r.H, r.X, r.Y+r.H, r.StrokeWidth, r.Dashed, c)
		drawSegment(ctx, r.X, r.Y+r.H, r.X, r.Y, r.StrokeWidth, r.Dashed, c)
	}
}

// outsideCorner reports whether (x, y) falls in a rounded-off corner.
func outsideCorner(x, y, x0, y0, x1, y1, rad float64) bool {
	if rad <= 0 {
		return false
	}
	var cx, cy float64
	switch {
	case x < x0+rad && y < y0+rad:
		cx, cy = x0+rad, y0+rad
	case x > x1-rad && y < y0+rad:
		cx, cy = x1-rad, y0+rad
	case x < x0+rad && y > y1-rad:
		cx, cy = x0+rad, y1-rad
	case x > x1-rad && y > y1-rad:
		cx, cy = x1-rad, y1-rad
	default:
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > rad*rad
}

func fillCircle(ctx *rasterContext, c Circle) {
	k := ctx.scale
	cx, cy, r := c.CX*k, c.CY*k, c.R*k
	if c.Fill != "" {
		fill := parseColor(c.Fill)
		for dy := -r; dy <= r; dy++ {
			ext := math.Sqrt(math.Max(0, r*r-dy*dy))
			for dx := -ext; dx <= ext; dx++ {
				ctx.img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}
	if c.Stroke != "" {
		stroke := parseColor(c.Stroke)
		thickness := math.Max(c.StrokeWidth*k, 1)
		for angle := 0.0; angle < 2*math.Pi; angle += 0.005 {
			nx, ny := math.Cos(angle), math.Sin(angle)
			for t := -thickness / 2; t <= thickness/2; t += 0.5 {
				ctx.img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), stroke)
			}
		}
	}
}

// drawSegment draws a thick line in scene coordinates. Dashed lines use an
// 8-on 4-off pattern in scene units.
func drawSegment(ctx *rasterContext, sx1, sy1, sx2, sy2, width float64, dashed bool, c color.Color) {
	k := ctx.scale
	x1, y1, x2, y2 := sx1*k, sy1*k, sx2*k, sy2*k
	halfThick := math.Max(width*k, 1) / 2

	dx, dy := x2-x1, y2-y1
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				ctx.img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX, perpY := -dy/dist, dx/dist
	dashOn, period := 8*k, 12*k
	for i := 0.0; i <= dist; i++ {
		if dashed && math.Mod(i, period) >= dashOn {
			continue
		}
		t := i / dist
		px, py := x1+dx*t, y1+dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			ctx.img.Set(int(px+perpX*offset), int(py+perpY*offset), c)
		}
	}
}

// drawTextCentered draws text centred on (X, Y) using Go Regular.
func drawTextCentered(ctx *rasterContext, t Text) error {
	if t.Value == "" {
		return nil
	}
	face, err := ctx.face(t.Size)
	if err != nil {
		return err
	}
	width := font.MeasureString(face, t.Value).Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	x := int(t.X*ctx.scale) - width/2
	baseline := int(t.Y*ctx.scale) + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(parseColor(t.Fill)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)},
	}
	d.DrawString(t.Value)
	return nil
}

// parseColor reads "#rgb" or "#rrggbb". Anything else is opaque black.
func parseColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
