package render

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// SVGOptions controls SVG output.
type SVGOptions struct {
	Width      int    // canvas width in pixels
	Height     int    // canvas height in pixels
	Title      string // optional heading
	Background string // canvas fill
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      1000,
		Height:     700,
		Background: "#f5efe6",
	}
}

// GenerateSVG renders a scene to an SVG document.
func GenerateSVG(sc Scene, opts SVGOptions) string {
	if opts.Width == 0 {
		opts.Width = 1000
	}
	if opts.Height == 0 {
		opts.Height = 700
	}
	if opts.Background == "" {
		opts.Background = "#f5efe6"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<style>
  .label { font-family: sans-serif; text-anchor: middle; dominant-baseline: middle; }
  .title { font-family: sans-serif; font-size: 18px; font-weight: bold; text-anchor: middle; }
  .wire, .wire-hover, .wire-draft { stroke-linecap: round; }
</style>
`, opts.Width, opts.Height, opts.Width, opts.Height))

	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="%s"/>
`, opts.Width, opts.Height, opts.Background))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="25" class="title">%s</text>
`, opts.Width/2, html.EscapeString(opts.Title)))
	}

	for _, sh := range sc.Shapes {
		switch s := sh.(type) {
		case Rect:
			sb.WriteString(fmt.Sprintf(`<rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s"%s/>
`, s.Style, s.X, s.Y, s.W, s.H, s.Radius, paint(s.Fill), strokeAttrs(s.Stroke, s.StrokeWidth, s.Dashed)))
		case Circle:
			sb.WriteString(fmt.Sprintf(`<circle class="%s" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"%s/>
`, s.Style, s.CX, s.CY, s.R, paint(s.Fill), strokeAttrs(s.Stroke, s.StrokeWidth, false)))
		case Line:
			sb.WriteString(fmt.Sprintf(`<line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>
`, s.Style, s.X1, s.Y1, s.X2, s.Y2, strokeAttrs(s.Stroke, s.StrokeWidth, s.Dashed)))
		case Text:
			if s.Value == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<text class="label %s" x="%.1f" y="%.1f" font-size="%.1f" fill="%s">%s</text>
`, s.Style, s.X, s.Y, s.Size, paint(s.Fill), html.EscapeString(s.Value)))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG renders a scene as SVG to w.
func WriteSVG(w io.Writer, sc Scene, opts SVGOptions) error {
	_, err := io.WriteString(w, GenerateSVG(sc, opts))
	return err
}

func paint(c string) string {
	if c == "" {
		return "none"
	}
	return c
}

func strokeAttrs(stroke string, width float64, dashed bool) string {
	if stroke == "" {
		return ""
	}
	attrs := fmt.Sprintf(` stroke="%s" stroke-width="%.1f"`, stroke, width)
	if dashed {
		attrs += ` stroke-dasharray="8,4"`
	}
	return attrs
}
