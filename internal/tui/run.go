package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/qryx/internal/logger"
	"github.com/san-kum/qryx/internal/session"
)

// Run starts the full-screen console and blocks until the user quits.
// Warnings and errors from the logger are mirrored into the system log.
func Run(opts Options, boot []session.BootStep) error {
	sched := &programScheduler{}
	opts.Scheduler = sched

	c := New(opts)
	defer c.Close()

	p := tea.NewProgram(c, tea.WithAltScreen())
	sched.bind(p)

	logger.SetHook(func(e logger.Entry) {
		if e.Level < zapcore.WarnLevel {
			return
		}
		msg := e.Message
		// Entries may be logged from inside Update.
		go sched.Post(func() {
			c.state.AppendLog(msg, session.OutcomeError)
		})
	})
	defer logger.SetHook(nil)

	c.StartBoot(boot)

	_, err := p.Run()
	return err
}
