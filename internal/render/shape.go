package render

import (
	"fmt"
	"slices"
)

const (
	ShapeSquare        = "square"
	ShapeDots          = "dots"
	ShapeDot           = "dot"
	ShapeRounded       = "rounded"
	ShapeClassy        = "classy"
	ShapeClassyRounded = "classy-rounded"
	ShapeExtraRounded  = "extra-rounded"
)

var (
	DotShapes          = []string{ShapeSquare, ShapeDots, ShapeRounded, ShapeClassy, ShapeClassyRounded, ShapeExtraRounded}
	CornerSquareShapes = []string{ShapeSquare, ShapeDot, ShapeExtraRounded}
	CornerDotShapes    = []string{ShapeSquare, ShapeDot}
)

func ValidDotShape(s string) bool          { return slices.Contains(DotShapes, s) }
func ValidCornerSquareShape(s string) bool { return slices.Contains(CornerSquareShapes, s) }
func ValidCornerDotShape(s string) bool    { return slices.Contains(CornerDotShapes, s) }

// CheckShapes rejects unknown shape names. Empty names select defaults.
func CheckShapes(dots, cornerSquares, cornerDots string) error {
	if dots != "" && !ValidDotShape(dots) {
		return fmt.Errorf("%w: dots %q", ErrInvalidShape, dots)
	}
	if cornerSquares != "" && !ValidCornerSquareShape(cornerSquares) {
		return fmt.Errorf("%w: corner square %q", ErrInvalidShape, cornerSquares)
	}
	if cornerDots != "" && !ValidCornerDotShape(cornerDots) {
		return fmt.Errorf("%w: corner dot %q", ErrInvalidShape, cornerDots)
	}
	return nil
}

// radii holds per-corner radii: top-left, top-right, bottom-right, bottom-left.
type radii [4]float64

func (r radii) zero() bool {
	return r == radii{}
}

// neighbors reports which orthogonal neighbors of a module are dark.
type neighbors struct {
	top, right, bottom, left bool
}

// moduleRadii returns the corner rounding for one data module of side d.
func moduleRadii(shape string, n neighbors, d float64) radii {
	half := d / 2
	free := [4]bool{
		!n.top && !n.left,
		!n.top && !n.right,
		!n.bottom && !n.right,
		!n.bottom && !n.left,
	}

	var r radii
	switch shape {
	case ShapeDots:
		return radii{half, half, half, half}
	case ShapeRounded, ShapeExtraRounded:
		rad := d * 0.3
		if shape == ShapeExtraRounded {
			rad = half
		}
		for i, f := range free {
			if f {
				r[i] = rad
			}
		}
	case ShapeClassy, ShapeClassyRounded:
		if free[0] {
			r[0] = half
		}
		if free[2] {
			r[2] = half
		}
		if shape == ShapeClassyRounded {
			if free[1] {
				r[1] = d * 0.25
			}
			if free[3] {
				r[3] = d * 0.25
			}
		}
	}
	return r
}
