package session

import (
	"context"
	"testing"
	"time"
)

func TestLoopGoFlush(t *testing.T) {
	loop := NewLoop(4)
	defer loop.Close()

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		loop.Go(func() func() {
			time.Sleep(time.Duration(i) * time.Millisecond)
			return func() { got = append(got, i) }
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := loop.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 continuations, got %d", len(got))
	}
	if loop.Pending() != 0 {
		t.Errorf("expected no pending work, got %d", loop.Pending())
	}
}

func TestLoopNilContinuation(t *testing.T) {
	loop := NewLoop(1)
	defer loop.Close()

	loop.Go(func() func() { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := loop.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
}

func TestBootSequence(t *testing.T) {
	state := New()
	loop := NewLoop(8)
	defer loop.Close()

	steps := []BootStep{
		{Delay: 1 * time.Millisecond, Message: "one", Outcome: OutcomeInfo},
		{Delay: 5 * time.Millisecond, Message: "two", Outcome: OutcomeSuccess},
	}
	boot := StartBoot(state, loop, steps)
	defer boot.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(state.Log) < 2 && time.Now().Before(deadline) {
		loop.Drain()
		time.Sleep(time.Millisecond)
	}

	if len(state.Log) != 2 {
		t.Fatalf("expected 2 boot entries, got %d", len(state.Log))
	}
	if state.Log[0].Message != "one" || state.Log[1].Outcome != OutcomeSuccess {
		t.Errorf("unexpected boot log: %+v", state.Log)
	}
}

func TestBootStopBeforeDelay(t *testing.T) {
	state := New()
	loop := NewLoop(8)
	defer loop.Close()

	boot := StartBoot(state, loop, DefaultBootSequence)
	boot.Stop()

	time.Sleep(20 * time.Millisecond)
	loop.Drain()
	if len(state.Log) != 0 {
		t.Errorf("expected no entries after stop, got %d", len(state.Log))
	}
}

func TestBootStopSuppressesQueuedStep(t *testing.T) {
	state := New()
	loop := NewLoop(8)
	defer loop.Close()

	boot := StartBoot(state, loop, []BootStep{{Delay: 0, Message: "late"}})
	deadline := time.Now().Add(time.Second)
	for len(loop.queue) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	boot.Stop()
	loop.Drain()

	if len(state.Log) != 0 {
		t.Errorf("queued step applied after stop: %+v", state.Log)
	}
}

func TestDefaultBootSequence(t *testing.T) {
	want := []time.Duration{500, 1200, 2000, 2800, 3500}
	if len(DefaultBootSequence) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(DefaultBootSequence))
	}
	for i, step := range DefaultBootSequence {
		if step.Delay != want[i]*time.Millisecond {
			t.Errorf("step %d: expected %v, got %v", i, want[i]*time.Millisecond, step.Delay)
		}
	}
	if DefaultBootSequence[4].Outcome != OutcomeSuccess {
		t.Error("last boot step should be success")
	}
}
