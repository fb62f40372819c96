package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the mutable session aggregate. It has a single owner; other
// goroutines reach it only through a Scheduler.
type State struct {
	ID               string
	StartedAt        time.Time
	Config           Configuration
	TerminalActive   bool
	Transcript       []TranscriptEntry
	Log              []LogEntry
	AnimationTrigger int

	now func() time.Time
}

// Option customizes a new State.
type Option func(*State)

// WithClock overrides the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithConfiguration seeds the session with cfg instead of the default.
func WithConfiguration(cfg Configuration) Option {
	return func(s *State) { s.Config = cfg.Clone() }
}

func New(opts ...Option) *State {
	s := &State{
		ID:         uuid.New().String(),
		Config:     DefaultConfiguration(),
		Transcript: make([]TranscriptEntry, 0, 16),
		Log:        make([]LogEntry, 0, 16),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.StartedAt = s.now()
	return s
}

// Activate flips the terminal flag. It never flips back.
func (s *State) Activate() {
	s.TerminalActive = true
}

func (s *State) AppendLog(msg string, outcome Outcome) {
	s.Log = append(s.Log, LogEntry{Timestamp: s.now(), Message: msg, Outcome: outcome})
}

func (s *State) AppendTranscript(cmd, response string, outcome Outcome) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Command: cmd, Response: response, Outcome: outcome})
}

// BumpAnimation signals the presentation layer to replay the reveal.
func (s *State) BumpAnimation() {
	s.AnimationTrigger++
}

// Uptime is measured from session creation.
func (s *State) Uptime() time.Duration {
	return s.now().Sub(s.StartedAt)
}

// Snapshot is a read-only copy handed to presentation layers.
type Snapshot struct {
	ID               string
	Config           Configuration
	TerminalActive   bool
	Transcript       []TranscriptEntry
	Log              []LogEntry
	AnimationTrigger int
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		ID:               s.ID,
		Config:           s.Config.Clone(),
		TerminalActive:   s.TerminalActive,
		Transcript:       append([]TranscriptEntry(nil), s.Transcript...),
		Log:              append([]LogEntry(nil), s.Log...),
		AnimationTrigger: s.AnimationTrigger,
	}
}

// Errors counts transcript entries with an error outcome.
func (s Snapshot) Errors() int {
	n := 0
	for _, e := range s.Transcript {
		if e.Outcome == OutcomeError {
			n++
		}
	}
	return n
}
