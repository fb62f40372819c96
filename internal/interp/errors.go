package interp

import "errors"

// Command error kinds. None of them is fatal; the interpreter turns each
// into an error transcript entry.
var (
	// ErrMissingArgument indicates a required argument was not given.
	ErrMissingArgument = errors.New("interp: missing argument")

	// ErrInvalidFormat indicates a value outside an enumerated set or a
	// malformed file name.
	ErrInvalidFormat = errors.New("interp: invalid format")

	// ErrUsage indicates the arguments did not match any accepted form.
	ErrUsage = errors.New("interp: usage")

	// ErrCapabilityUnavailable indicates an external capability is not wired.
	ErrCapabilityUnavailable = errors.New("interp: capability unavailable")

	// ErrUnknownCommand indicates the first token is not a command.
	ErrUnknownCommand = errors.New("interp: unknown command")
)

// CommandError carries the transcript text for a failed command.
type CommandError struct {
	Command string
	Kind    error
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Kind
}

func fail(cmd string, kind error, msg string) *CommandError {
	return &CommandError{Command: cmd, Kind: kind, Message: msg}
}
