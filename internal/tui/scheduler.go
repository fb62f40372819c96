package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// postMsg carries a state mutation into Update.
type postMsg func()

// programScheduler delivers continuations as messages, so they run on
// the Bubble Tea event loop like any key press.
type programScheduler struct {
	mu sync.Mutex
	p  *tea.Program
}

func (s *programScheduler) bind(p *tea.Program) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *programScheduler) program() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// Post must not be called from Update itself; Send blocks until the
// loop reads the message. Work posted before bind is dropped.
func (s *programScheduler) Post(fn func()) {
	if p := s.program(); p != nil {
		p.Send(postMsg(fn))
	}
}

func (s *programScheduler) Go(work func() func()) {
	go func() {
		if k := work(); k != nil {
			s.Post(k)
		}
	}()
}
