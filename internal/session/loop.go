package session

import (
	"context"
	"sync"
	"sync/atomic"
)

// Scheduler moves work back onto the goroutine that owns a State.
type Scheduler interface {
	// Post queues fn to run on the owner goroutine.
	Post(fn func())
	// Go runs work on another goroutine and posts the continuation it
	// returns. A nil continuation is allowed.
	Go(work func() func())
}

// Loop is a mailbox-style Scheduler for callers without an event loop of
// their own, such as the headless runner. The owner drains it explicitly.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
	inflight  atomic.Int64
}

func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

func (l *Loop) Go(work func() func()) {
	l.inflight.Add(1)
	go func() {
		k := work()
		l.Post(func() {
			defer l.inflight.Add(-1)
			if k != nil {
				k()
			}
		})
	}()
}

// Drain runs every queued function without waiting for new ones.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			fn()
			n++
		default:
			return n
		}
	}
}

// Flush runs queued functions until no work started with Go is
// outstanding, or ctx ends.
func (l *Loop) Flush(ctx context.Context) error {
	for {
		if l.inflight.Load() == 0 {
			l.Drain()
			if l.inflight.Load() == 0 {
				return nil
			}
		}
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending reports how many Go calls have not completed yet.
func (l *Loop) Pending() int {
	return int(l.inflight.Load())
}

// Close releases goroutines blocked in Post. Queued work is dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
