package session

import (
	"sync"
	"time"
)

// BootStep is one scheduled system log line.
type BootStep struct {
	Delay   time.Duration
	Message string
	Outcome Outcome
}

// DefaultBootSequence is replayed once at the start of every session.
var DefaultBootSequence = []BootStep{
	{Delay: 500 * time.Millisecond, Message: "Daemon initialized", Outcome: OutcomeInfo},
	{Delay: 1200 * time.Millisecond, Message: "Loading core modules... OK", Outcome: OutcomeInfo},
	{Delay: 2000 * time.Millisecond, Message: "Mounting file system... OK", Outcome: OutcomeInfo},
	{Delay: 2800 * time.Millisecond, Message: "User session created", Outcome: OutcomeInfo},
	{Delay: 3500 * time.Millisecond, Message: "Ready for commands", Outcome: OutcomeSuccess},
}

// Boot is a running boot sequence. Each step is an independent one-shot
// timer measured from StartBoot.
type Boot struct {
	mu      sync.Mutex
	timers  []*time.Timer
	stopped bool
}

// StartBoot schedules steps against state. Log entries are appended on the
// owner goroutine via sched.
func StartBoot(state *State, sched Scheduler, steps []BootStep) *Boot {
	b := &Boot{timers: make([]*time.Timer, 0, len(steps))}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, step := range steps {
		step := step
		t := time.AfterFunc(step.Delay, func() {
			sched.Post(func() {
				if b.Stopped() {
					return
				}
				state.AppendLog(step.Message, step.Outcome)
			})
		})
		b.timers = append(b.timers, t)
	}
	return b
}

// Stop cancels pending steps. A step whose timer already fired but whose
// log entry has not been applied yet is suppressed as well.
func (b *Boot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	for _, t := range b.timers {
		t.Stop()
	}
}

func (b *Boot) Stopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}
