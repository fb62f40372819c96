package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/qryx/internal/session"
)

const (
	heroTitle    = "HELLO EVERYONE"
	heroSubtitle = "Build a system for generating customizable QR codes."
	logLines     = 8
	plotHeight   = 4
)

var commandHints = []struct{ cmd, arg string }{
	{"/generate ", "[URL]"},
	{"/color -bg ", "[HEX]"},
	{"/color -fg ", "[HEX]"},
	{"/add logo ", "[URL]"},
}

func (c *Console) View() string {
	if c.preloading {
		return c.preloaderView()
	}
	if c.compact() {
		return c.compactView()
	}
	left, right := c.panelWidths()
	var l, r string
	if c.state.TerminalActive {
		l, r = c.terminalView(left), c.previewPanel(right)
	} else {
		l, r = c.landingView(left), c.statusPanel(right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(left).Render(l),
		lipgloss.NewStyle().Width(right).Render(r),
	)
}

func (c *Console) preloaderView() string {
	msg := c.spin.View() + " " + greenB.Render("INITIALIZING QRYX")
	return lipgloss.Place(c.width, c.height, lipgloss.Center, lipgloss.Center, msg)
}

func (c *Console) landingView(w int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(hero.Render(heroTitle+"\n"+subtitle.Render(heroSubtitle)) + "\n\n")
	b.WriteString(redB.Render("COMMANDS") + "\n")
	for _, h := range commandHints {
		b.WriteString("  " + plain.Render(h.cmd) + dim.Render(h.arg) + "\n")
	}
	b.WriteString(dim.Render("  tab cycles commands · /help lists them all") + "\n\n")
	b.WriteString(c.inputView(w))
	return b.String()
}

func (c *Console) terminalView(w int) string {
	var b strings.Builder
	b.WriteString(redB.Render("▰▰▰▰▰ TERMINAL_ACCESS") + "\n")
	b.WriteString(c.scroll.View() + "\n")
	b.WriteString(c.inputView(w))
	return b.String()
}

func (c *Console) inputView(w int) string {
	return panel.Width(max(w-4, 10)).Render(c.input.View())
}

func (c *Console) refreshTranscript() {
	c.scroll.SetContent(c.transcriptView(c.scroll.Width))
	c.scroll.GotoBottom()
}

func (c *Console) transcriptView(w int) string {
	var b strings.Builder
	for _, e := range c.state.Transcript {
		b.WriteString(redB.Render("qryx:~") + " " + plain.Render(e.Command) + "\n")

		badge, style := badgeOK.Render("SUCCESS"), green
		if e.Outcome == session.OutcomeError {
			badge, style = badgeErr.Render("ERROR"), plain
		}
		resp := style.Width(max(w-lipgloss.Width(badge)-1, 10)).Render(e.Response)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, badge, " ", resp) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Console) statusPanel(w int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(redB.Render("● LIVE") + "\n")
	b.WriteString(dim.Render("SESSION ") + plain.Render(shortID(c.state.ID)) + "\n")
	b.WriteString(dim.Render("UPTIME  ") + plain.Render(clock(c.state.Uptime())) + "\n\n")

	b.WriteString(c.logView(w, logLines))
	b.WriteString("\n")

	b.WriteString(dim.Render(c.mem.Label()) + "\n")
	if plot := c.mem.Plot(max(w-12, 10), plotHeight); plot != "" {
		b.WriteString(green.Render(plot) + "\n")
	}
	return b.String()
}

func (c *Console) logView(w, n int) string {
	var b strings.Builder
	b.WriteString(redB.Render("SYSTEM LOGS") + "\n")
	logs := c.state.Log
	if len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	for _, e := range logs {
		style := dim
		switch e.Outcome {
		case session.OutcomeSuccess:
			style = green
		case session.OutcomeError:
			style = red
		}
		line := fmt.Sprintf("[%s] %s", e.Clock(), strings.ToUpper(e.Message))
		b.WriteString(style.Render(truncate(line, max(w-2, 10))) + "\n")
	}
	return b.String()
}

func (c *Console) previewPanel(w int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(greenB.Render("■ MODE: [PREVIEW]") + "\n\n")
	b.WriteString(c.codeView() + "\n\n")

	verify := "> VERIFYING CHECKSUM... OK\n> OPTIMIZING PIXELS... OK"
	if c.renderErr != nil {
		verify = "> VERIFYING CHECKSUM... FAILED"
	}
	b.WriteString(verifyBox.Width(max(w-6, 20)).Render(verify) + "\n")
	b.WriteString(c.formatView() + "\n")
	return b.String()
}

func (c *Console) codeView() string {
	switch {
	case c.renderErr != nil:
		return red.Render("render failed: " + c.renderErr.Error())
	case c.prev.height() == 0:
		return dim.Render("RENDERING...")
	}
	return c.prev.view(c.reveal, neonGreen)
}

func (c *Console) formatView() string {
	var b strings.Builder
	b.WriteString(dim.Render("EXPORT "))
	for i, f := range exportFormats {
		if i == c.format {
			b.WriteString(greenB.Render("[" + f + "]"))
		} else {
			b.WriteString(dim.Render(" " + f + " "))
		}
	}
	b.WriteString(dim.Render("  ctrl+f format · ctrl+e export"))
	return b.String()
}

// compactView stacks the panels for narrow terminals.
func (c *Console) compactView() string {
	var b strings.Builder
	if c.state.TerminalActive {
		b.WriteString(redB.Render("▰▰ TERMINAL_ACCESS") + "  " + dim.Render(sparkline(c.mem.Values(), 12)) + "\n")
		b.WriteString(c.codeView() + "\n")
		b.WriteString(c.scroll.View() + "\n")
		b.WriteString(c.inputView(c.width))
		return b.String()
	}
	b.WriteString(hero.Render(heroTitle+"\n"+subtitle.Render(heroSubtitle)) + "\n\n")
	b.WriteString(c.logView(c.width, 3) + "\n")
	b.WriteString(c.inputView(c.width))
	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	var sb strings.Builder
	for _, v := range data {
		idx := int((v - lo) / span * 7)
		sb.WriteRune(chars[min(max(idx, 0), 7)])
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

func clock(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}
