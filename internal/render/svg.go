package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"
	"strings"
)

// SVG renders the code as a standalone SVG document with the same
// geometry as Image.
func (c *Code) SVG() string {
	var sb strings.Builder
	s := c.size

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s, s, s, s))

	if c.colors.background.A > 0 {
		sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%"%s/>
`, svgFill(c.colors.background)))
	}

	// Data modules as one path
	var path strings.Builder
	for y, row := range c.cells {
		for x, cell := range row {
			if cell != Dark {
				continue
			}
			px, py := c.origin(x, y)
			svgRect(&path, px, py, c.dot, c.dot, moduleRadii(c.cfg.Dots.Shape, c.neighbors(x, y), c.dot))
		}
	}
	if path.Len() > 0 {
		sb.WriteString(fmt.Sprintf(`<path d="%s"%s/>
`, path.String(), svgFill(c.colors.dots)))
	}

	d := c.dot
	for _, f := range c.finders() {
		x, y := c.origin(f.X, f.Y)
		side := finderSize * d

		var ring strings.Builder
		switch c.cfg.CornerSquares.Shape {
		case ShapeDot:
			svgCircle(&ring, x+side/2, y+side/2, side/2)
			svgCircle(&ring, x+side/2, y+side/2, side/2-d)
		case ShapeExtraRounded:
			outer, inner := 2.5*d, 1.5*d
			svgRect(&ring, x, y, side, side, radii{outer, outer, outer, outer})
			svgRect(&ring, x+d, y+d, side-2*d, side-2*d, radii{inner, inner, inner, inner})
		default:
			svgRect(&ring, x, y, side, side, radii{})
			svgRect(&ring, x+d, y+d, side-2*d, side-2*d, radii{})
		}
		sb.WriteString(fmt.Sprintf(`<path fill-rule="evenodd" d="%s"%s/>
`, ring.String(), svgFill(c.colors.cornerSquares)))

		var center strings.Builder
		cx, cy, cs := x+2*d, y+2*d, 3*d
		if c.cfg.CornerDots.Shape == ShapeDot {
			svgCircle(&center, cx+cs/2, cy+cs/2, cs/2)
		} else {
			svgRect(&center, cx, cy, cs, cs, radii{})
		}
		sb.WriteString(fmt.Sprintf(`<path d="%s"%s/>
`, center.String(), svgFill(c.colors.cornerDots)))
	}

	if thumb := c.logoImage(); thumb != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, thumb); err == nil {
			x, y, side := c.logoRect()
			b := thumb.Bounds()
			sb.WriteString(fmt.Sprintf(`<image x="%.2f" y="%.2f" width="%d" height="%d" href="data:image/png;base64,%s"/>
`,
				x+(side-float64(b.Dx()))/2, y+(side-float64(b.Dy()))/2,
				b.Dx(), b.Dy(),
				base64.StdEncoding.EncodeToString(buf.Bytes())))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func svgFill(c color.NRGBA) string {
	fill := fmt.Sprintf(` fill="#%02x%02x%02x"`, c.R, c.G, c.B)
	if c.A < 0xff {
		fill += fmt.Sprintf(` fill-opacity="%.3f"`, float64(c.A)/255)
	}
	return fill
}

func svgRect(sb *strings.Builder, x, y, w, h float64, r radii) {
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	fmt.Fprintf(sb, "M%.2f %.2fH%.2f", x+tl, y, x+w-tr)
	if tr > 0 {
		fmt.Fprintf(sb, "A%.2f %.2f 0 0 1 %.2f %.2f", tr, tr, x+w, y+tr)
	}
	fmt.Fprintf(sb, "V%.2f", y+h-br)
	if br > 0 {
		fmt.Fprintf(sb, "A%.2f %.2f 0 0 1 %.2f %.2f", br, br, x+w-br, y+h)
	}
	fmt.Fprintf(sb, "H%.2f", x+bl)
	if bl > 0 {
		fmt.Fprintf(sb, "A%.2f %.2f 0 0 1 %.2f %.2f", bl, bl, x, y+h-bl)
	}
	fmt.Fprintf(sb, "V%.2f", y+tl)
	if tl > 0 {
		fmt.Fprintf(sb, "A%.2f %.2f 0 0 1 %.2f %.2f", tl, tl, x+tl, y)
	}
	sb.WriteString("Z")
}

func svgCircle(sb *strings.Builder, cx, cy, r float64) {
	fmt.Fprintf(sb, "M%.2f %.2fa%.2f %.2f 0 1 0 %.2f 0a%.2f %.2f 0 1 0 %.2f 0Z",
		cx-r, cy, r, r, 2*r, r, r, -2*r)
}
