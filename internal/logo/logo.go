package logo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"
)

// MaxSize caps logo payloads read from disk or the network.
const MaxSize = 4 << 20

var (
	ErrCanceled = errors.New("logo: selection canceled")
	ErrTooLarge = errors.New("logo: file exceeds 4 MiB")
	ErrNotImage = errors.New("logo: unsupported image type")
)

// Extensions accepted by the pickers.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// File is a logo read from local storage.
type File struct {
	Name string
	Data []byte
}

// Picker asks the user for a logo image. Pick may block; callers run it
// off the session owner.
type Picker interface {
	Pick(ctx context.Context) (File, error)
}

// DialogPicker opens the native file chooser.
type DialogPicker struct {
	Title string
}

func NewDialogPicker() *DialogPicker {
	return &DialogPicker{Title: "Select Logo"}
}

func (p *DialogPicker) Pick(ctx context.Context) (File, error) {
	patterns := make([]string, len(Extensions))
	for i, ext := range Extensions {
		patterns[i] = "*" + ext
	}
	filename, err := zenity.SelectFile(
		zenity.Context(ctx),
		zenity.Title(p.Title),
		zenity.FileFilters{{
			Name:     "Images",
			Patterns: patterns,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return File{}, ErrCanceled
		}
		return File{}, err
	}
	return ReadFile(filename)
}

// PathPicker always returns the same file. It backs non-interactive runs.
type PathPicker struct {
	Path string
}

func (p PathPicker) Pick(ctx context.Context) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	return ReadFile(p.Path)
}

// ReadFile loads a logo from disk after checking its extension and size.
func ReadFile(path string) (File, error) {
	if !Supported(path) {
		return File{}, fmt.Errorf("%w: %s", ErrNotImage, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.Size() > MaxSize {
		return File{}, ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// Supported reports whether path has an accepted image extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
