package interp

import (
	"errors"
	"testing"
)

func TestCommandError(t *testing.T) {
	tests := []struct {
		kind error
		msg  string
	}{
		{ErrMissingArgument, errMissingURL},
		{ErrUsage, usageColor},
		{ErrCapabilityUnavailable, errFileInput},
		{ErrInvalidFormat, "error: invalid format 'gif'. use png, jpg, or svg."},
		{ErrUnknownCommand, "command not found: x. Type /help for options."},
	}
	for _, tt := range tests {
		err := error(fail("cmd", tt.kind, tt.msg))
		if !errors.Is(err, tt.kind) {
			t.Errorf("expected %v to wrap %v", err, tt.kind)
		}
		if err.Error() != tt.msg {
			t.Errorf("expected message %q, got %q", tt.msg, err.Error())
		}
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Command != "cmd" {
			t.Errorf("expected CommandError for cmd, got %#v", err)
		}
	}
}

func TestLogoURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/logo.png": true,
		"http://example.com/a.jpg":     true,
		"data:image/png;base64,AAAA":   true,
		"ftp://example.com/x.png":      false,
		"logo.png":                     false,
		"https://":                     false,
	}
	for raw, want := range tests {
		if got := logoURL(raw); got != want {
			t.Errorf("logoURL(%q) = %v, want %v", raw, got, want)
		}
	}
}
