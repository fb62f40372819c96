package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

// Image rasterizes the code at its configured size.
func (c *Code) Image() image.Image {
	dc := gg.NewContext(c.size, c.size)
	dc.SetColor(c.colors.background)
	dc.Clear()

	dc.SetColor(c.colors.dots)
	for y, row := range c.cells {
		for x, cell := range row {
			if cell != Dark {
				continue
			}
			px, py := c.origin(x, y)
			r := moduleRadii(c.cfg.Dots.Shape, c.neighbors(x, y), c.dot)
			roundedRect(dc, px, py, c.dot, c.dot, r)
		}
	}
	dc.Fill()

	d := c.dot
	for _, f := range c.finders() {
		x, y := c.origin(f.X, f.Y)

		dc.SetColor(c.colors.cornerSquares)
		cornerSquare(dc, c.cfg.CornerSquares.Shape, x, y, finderSize*d, d)

		dc.SetColor(c.colors.cornerDots)
		cornerDot(dc, c.cfg.CornerDots.Shape, x+2*d, y+2*d, 3*d)
	}

	if thumb := c.logoImage(); thumb != nil {
		x, y, side := c.logoRect()
		b := thumb.Bounds()
		dx := x + (side-float64(b.Dx()))/2
		dy := y + (side-float64(b.Dy()))/2
		dc.DrawImage(thumb, int(math.Round(dx)), int(math.Round(dy)))
	}

	return dc.Image()
}

// logoImage scales the logo to fit its reserved area, keeping aspect.
func (c *Code) logoImage() image.Image {
	if c.logo == nil {
		return nil
	}
	_, _, side := c.logoRect()
	if side < 1 {
		return nil
	}
	return resize.Thumbnail(uint(side), uint(side), c.logo, resize.Lanczos3)
}

func roundedRect(dc *gg.Context, x, y, w, h float64, r radii) {
	if r.zero() {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	dc.NewSubPath()
	dc.MoveTo(x+tl, y)
	dc.LineTo(x+w-tr, y)
	if tr > 0 {
		dc.DrawArc(x+w-tr, y+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x+w, y+h-br)
	if br > 0 {
		dc.DrawArc(x+w-br, y+h-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x+bl, y+h)
	if bl > 0 {
		dc.DrawArc(x+bl, y+h-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.DrawArc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}

// cornerSquare fills the finder ring of outer edge side and thickness d.
func cornerSquare(dc *gg.Context, shape string, x, y, side, d float64) {
	dc.SetFillRuleEvenOdd()
	defer dc.SetFillRuleWinding()

	switch shape {
	case ShapeDot:
		cx, cy := x+side/2, y+side/2
		dc.DrawCircle(cx, cy, side/2)
		dc.DrawCircle(cx, cy, side/2-d)
	case ShapeExtraRounded:
		outer, inner := 2.5*d, 1.5*d
		roundedRect(dc, x, y, side, side, radii{outer, outer, outer, outer})
		roundedRect(dc, x+d, y+d, side-2*d, side-2*d, radii{inner, inner, inner, inner})
	default:
		dc.DrawRectangle(x, y, side, side)
		dc.DrawRectangle(x+d, y+d, side-2*d, side-2*d)
	}
	dc.Fill()
}

func cornerDot(dc *gg.Context, shape string, x, y, side float64) {
	if shape == ShapeDot {
		dc.DrawCircle(x+side/2, y+side/2, side/2)
	} else {
		dc.DrawRectangle(x, y, side, side)
	}
	dc.Fill()
}
