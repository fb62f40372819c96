package session

import (
	"bytes"
	"time"
)

// DefaultContent is the payload a fresh session encodes.
const DefaultContent = "https://example.com"

// Outcome classifies transcript and log entries.
type Outcome string

const (
	OutcomeInfo    Outcome = "info"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// TranscriptEntry is one user command and its human-readable result.
type TranscriptEntry struct {
	Command  string  `json:"command" yaml:"command"`
	Response string  `json:"response" yaml:"response"`
	Outcome  Outcome `json:"outcome" yaml:"outcome"`
}

// LogEntry is one line of the system log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Message   string    `json:"message" yaml:"message"`
	Outcome   Outcome   `json:"outcome" yaml:"outcome"`
}

// Clock formats the timestamp the way the console displays it.
func (e LogEntry) Clock() string {
	return e.Timestamp.Format("15:04:05")
}

// Fill is a color-only style record. An empty Color means renderer default.
type Fill struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Style is a color and shape record. Empty fields mean renderer default.
type Style struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Shape string `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// LogoSource holds exactly one of URL or Data.
type LogoSource struct {
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Data []byte `json:"-" yaml:"-"`
}

// IsURL reports whether the logo is fetched lazily by the renderer.
func (s LogoSource) IsURL() bool { return s.URL != "" }

// Logo is an image embedded in the center of the code.
type Logo struct {
	Source    LogoSource `json:"source" yaml:"source"`
	Margin    int        `json:"margin" yaml:"margin"`
	SizeRatio float64    `json:"size_ratio" yaml:"size_ratio"`
}

// Configuration is the styling document consumed by the renderer.
type Configuration struct {
	Content       string `json:"content" yaml:"content"`
	Background    Fill   `json:"background" yaml:"background"`
	Dots          Style  `json:"dots" yaml:"dots"`
	CornerSquares Style  `json:"corner_squares" yaml:"corner_squares"`
	CornerDots    Style  `json:"corner_dots" yaml:"corner_dots"`
	Logo          *Logo  `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// DefaultConfiguration returns the configuration a new session starts with.
func DefaultConfiguration() Configuration {
	return Configuration{Content: DefaultContent}
}

// Clone returns a deep copy. Logo bytes are copied too, so a snapshot
// never aliases the live document.
func (c Configuration) Clone() Configuration {
	out := c
	if c.Logo != nil {
		logo := *c.Logo
		if c.Logo.Source.Data != nil {
			logo.Source.Data = append([]byte(nil), c.Logo.Source.Data...)
		}
		out.Logo = &logo
	}
	return out
}

// Equal compares two configurations field by field, including logo bytes.
func (c Configuration) Equal(o Configuration) bool {
	if c.Content != o.Content || c.Background != o.Background ||
		c.Dots != o.Dots || c.CornerSquares != o.CornerSquares || c.CornerDots != o.CornerDots {
		return false
	}
	if (c.Logo == nil) != (o.Logo == nil) {
		return false
	}
	if c.Logo == nil {
		return true
	}
	a, b := c.Logo, o.Logo
	return a.Margin == b.Margin &&
		a.SizeRatio == b.SizeRatio &&
		a.Source.URL == b.Source.URL &&
		a.Source.Name == b.Source.Name &&
		bytes.Equal(a.Source.Data, b.Source.Data)
}
