package report

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/san-kum/qryx/internal/session"
)

// Report is the JSON document written after a headless run.
type Report struct {
	Session    string                    `json:"session"`
	StartedAt  time.Time                 `json:"started_at"`
	Duration   string                    `json:"duration"`
	Commands   int                       `json:"commands"`
	Errors     int                       `json:"errors"`
	Config     session.Configuration     `json:"config"`
	Transcript []session.TranscriptEntry `json:"transcript"`
	Log        []session.LogEntry        `json:"log"`
}

func New(state *session.State) Report {
	snap := state.Snapshot()
	return Report{
		Session:    snap.ID,
		StartedAt:  state.StartedAt,
		Duration:   state.Uptime().Round(time.Millisecond).String(),
		Commands:   len(snap.Transcript),
		Errors:     snap.Errors(),
		Config:     snap.Config,
		Transcript: snap.Transcript,
		Log:        snap.Log,
	}
}

func Write(w io.Writer, r Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// ExportJSON writes r to path, or to stdout when path is "-".
func ExportJSON(path string, r Report) error {
	if path == "-" {
		return Write(os.Stdout, r)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return Write(file, r)
}
