package render

import "errors"

var (
	// ErrNotReady indicates no preview has been mounted yet.
	ErrNotReady = errors.New("render: engine not ready")

	ErrInvalidColor = errors.New("render: invalid color")

	ErrInvalidShape = errors.New("render: invalid shape")

	ErrInvalidFormat = errors.New("render: invalid export format")

	// ErrInvalidName indicates an export name that is not a plain file name.
	ErrInvalidName = errors.New("render: invalid file name")

	ErrEmptyContent = errors.New("render: empty content")

	ErrContentTooLong = errors.New("render: content too long")
)

// LogoError reports a logo that could not be loaded. The code is still
// rendered without it.
type LogoError struct {
	Source  string
	Wrapped error
}

func (e *LogoError) Error() string {
	return "render: logo " + e.Source + ": " + e.Wrapped.Error()
}

func (e *LogoError) Unwrap() error {
	return e.Wrapped
}
