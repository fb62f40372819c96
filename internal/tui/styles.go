package tui

import "github.com/charmbracelet/lipgloss"

const (
	neonGreen = lipgloss.Color("#00ff41")
	alertRed  = lipgloss.Color("#ff3333")
	textMain  = lipgloss.Color("#e0e0e0")
	textDim   = lipgloss.Color("#888888")
	textMuted = lipgloss.Color("#555555")
	panelLine = lipgloss.Color("#1a1a1a")
	coveredBg = lipgloss.Color("#3a3a3a")
)

var (
	subtitle = lipgloss.NewStyle().Foreground(textDim)
	dim      = lipgloss.NewStyle().Foreground(textMuted)
	green    = lipgloss.NewStyle().Foreground(neonGreen)
	greenB   = lipgloss.NewStyle().Foreground(neonGreen).Bold(true)
	red      = lipgloss.NewStyle().Foreground(alertRed)
	redB     = lipgloss.NewStyle().Foreground(alertRed).Bold(true)
	plain    = lipgloss.NewStyle().Foreground(textMain)

	badgeOK  = lipgloss.NewStyle().Bold(true).Foreground(neonGreen).Background(lipgloss.Color("#0f291e")).Padding(0, 1)
	badgeErr = lipgloss.NewStyle().Bold(true).Foreground(alertRed).Background(lipgloss.Color("#2a0d0d")).Padding(0, 1)

	hero = lipgloss.NewStyle().
		Bold(true).
		Foreground(textMain).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(alertRed).
		PaddingLeft(1)

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(panelLine).
		Padding(0, 1)

	verifyBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#222222")).
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)
)
