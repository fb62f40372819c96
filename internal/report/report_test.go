package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/qryx/internal/session"
)

func fixedState() *session.State {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := session.New(session.WithClock(func() time.Time { return now }))
	s.AppendLog("> /generate https://go.dev", session.OutcomeInfo)
	s.Config.Content = "https://go.dev"
	s.AppendTranscript("/generate https://go.dev", "qr code generated (version 6, ecc: h)", session.OutcomeSuccess)
	s.AppendTranscript("/nope", "command not found: /nope. Type /help for options.", session.OutcomeError)
	return s
}

func TestNew(t *testing.T) {
	r := New(fixedState())

	if r.Commands != 2 {
		t.Errorf("commands = %d, want 2", r.Commands)
	}
	if r.Errors != 1 {
		t.Errorf("errors = %d, want 1", r.Errors)
	}
	if r.Config.Content != "https://go.dev" {
		t.Errorf("content = %q", r.Config.Content)
	}
	if len(r.Log) != 1 {
		t.Errorf("log entries = %d, want 1", len(r.Log))
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	want := New(fixedState())

	if err := ExportJSON(path, want); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Session != want.Session || len(got.Transcript) != 2 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Transcript[1].Outcome != session.OutcomeError {
		t.Errorf("outcome = %q", got.Transcript[1].Outcome)
	}
}

func TestWriteOmitsLogoData(t *testing.T) {
	s := fixedState()
	s.Config.Logo = &session.Logo{
		Source:    session.LogoSource{Name: "logo.png", Data: []byte("secret-bytes")},
		Margin:    10,
		SizeRatio: 0.4,
	}

	var buf bytes.Buffer
	if err := Write(&buf, New(s)); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte("secret-bytes")) {
		t.Error("logo bytes leaked into the report")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"logo.png"`)) {
		t.Error("logo name missing from the report")
	}
}
