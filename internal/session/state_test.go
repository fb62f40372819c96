package session

import (
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestNewState(t *testing.T) {
	s := New(WithClock(fixedClock()))

	if s.Config.Content != DefaultContent {
		t.Errorf("expected content %q, got %q", DefaultContent, s.Config.Content)
	}
	if s.TerminalActive {
		t.Error("new session should not be active")
	}
	if len(s.Transcript) != 0 || len(s.Log) != 0 {
		t.Error("new session should have empty transcript and log")
	}
	if s.ID == "" {
		t.Error("expected session id")
	}
}

func TestAppend(t *testing.T) {
	s := New(WithClock(fixedClock()))

	s.AppendLog("> /help", OutcomeInfo)
	s.AppendTranscript("/help", "ok", OutcomeSuccess)
	s.AppendTranscript("/nope", "bad", OutcomeError)

	if len(s.Log) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(s.Log))
	}
	if s.Log[0].Clock() != "12:00:00" {
		t.Errorf("expected clock 12:00:00, got %s", s.Log[0].Clock())
	}
	if len(s.Transcript) != 2 || s.Transcript[1].Command != "/nope" {
		t.Errorf("unexpected transcript order: %+v", s.Transcript)
	}
	if got := s.Snapshot().Errors(); got != 1 {
		t.Errorf("expected 1 error, got %d", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	s.Config.Logo = &Logo{Source: LogoSource{Data: []byte{1, 2, 3}}, Margin: 10, SizeRatio: 0.4}
	s.AppendTranscript("a", "b", OutcomeSuccess)

	snap := s.Snapshot()
	snap.Config.Logo.Source.Data[0] = 9
	snap.Transcript[0].Response = "changed"

	if s.Config.Logo.Source.Data[0] != 1 {
		t.Error("snapshot aliases logo bytes")
	}
	if s.Transcript[0].Response != "b" {
		t.Error("snapshot aliases transcript")
	}
}

func TestConfigurationEqual(t *testing.T) {
	a := DefaultConfiguration()
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal")
	}

	b.Dots.Color = "#00ff00"
	if a.Equal(b) {
		t.Error("different dots color should not be equal")
	}

	c := a.Clone()
	c.Logo = &Logo{Source: LogoSource{URL: "https://a.com/logo.png"}, Margin: 5, SizeRatio: 0.9}
	if a.Equal(c) {
		t.Error("logo presence should matter")
	}
	d := c.Clone()
	if !c.Equal(d) {
		t.Error("cloned logo should be equal")
	}
}

func TestActivateIsOneWay(t *testing.T) {
	s := New()
	s.Activate()
	s.Activate()
	if !s.TerminalActive {
		t.Error("expected active")
	}
}
