package tui

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qryx/internal/render"
)

// preview is a terminal rendition of a code: two modules per text row
// drawn with half blocks.
type preview struct {
	rows  []string
	width int
}

// previewQuiet is the light border drawn around the modules.
const previewQuiet = 1

func newPreview(code *render.Code) preview {
	if code == nil {
		return preview{}
	}
	bg, dots, squares, centers := code.Colors()
	cells := code.Cells()
	n := len(cells)
	size := n + 2*previewQuiet

	at := func(x, y int) (lipgloss.Color, bool) {
		x -= previewQuiet
		y -= previewQuiet
		if x < 0 || y < 0 || x >= n || y >= n {
			return termColor(bg)
		}
		switch cells[y][x] {
		case render.Dark:
			return termColor(dots)
		case render.CornerSquare:
			return termColor(squares)
		case render.CornerDot:
			return termColor(centers)
		case render.Covered:
			return coveredBg, true
		default:
			return termColor(bg)
		}
	}

	p := preview{width: size}
	for y := 0; y < size; y += 2 {
		var sb strings.Builder
		for x := 0; x < size; x++ {
			top, topOK := at(x, y)
			bottom, bottomOK := lipgloss.Color(""), false
			if y+1 < size {
				bottom, bottomOK = at(x, y+1)
			}
			sb.WriteString(halfBlock(top, topOK, bottom, bottomOK))
		}
		p.rows = append(p.rows, sb.String())
	}
	return p
}

func halfBlock(top lipgloss.Color, topOK bool, bottom lipgloss.Color, bottomOK bool) string {
	switch {
	case topOK && bottomOK:
		return lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀")
	case topOK:
		return lipgloss.NewStyle().Foreground(top).Render("▀")
	case bottomOK:
		return lipgloss.NewStyle().Foreground(bottom).Render("▄")
	default:
		return " "
	}
}

// termColor maps a code color to a terminal color. Fully transparent
// colors are not drawn.
func termColor(c color.NRGBA) (lipgloss.Color, bool) {
	if c.A == 0 {
		return "", false
	}
	return lipgloss.Color(render.Hex(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})), true
}

func (p preview) height() int { return len(p.rows) }

// view returns the first reveal rows followed by a scan line.
func (p preview) view(reveal int, scan lipgloss.Color) string {
	if len(p.rows) == 0 {
		return ""
	}
	if reveal >= len(p.rows) {
		return strings.Join(p.rows, "\n")
	}
	if reveal < 0 {
		reveal = 0
	}
	out := make([]string, 0, len(p.rows))
	out = append(out, p.rows[:reveal]...)
	out = append(out, lipgloss.NewStyle().Foreground(scan).Render(strings.Repeat("▔", p.width)))
	for i := reveal + 1; i < len(p.rows); i++ {
		out = append(out, strings.Repeat(" ", p.width))
	}
	return strings.Join(out, "\n")
}
