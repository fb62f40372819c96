package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/san-kum/qryx/internal/session"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatSVG  = "svg"
)

// NormalizeFormat maps user-facing format names to encoder names.
func NormalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(format); f {
	case FormatPNG, FormatJPEG, FormatSVG:
		return f, nil
	case "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

// ValidName reports whether name is a plain file name that stays inside
// the export directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Encode writes the code in the given format. JPEG output is flattened
// onto white.
func (c *Code) Encode(w io.Writer, format string) error {
	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case FormatSVG:
		_, err = io.WriteString(w, c.SVG())
		return err
	case FormatJPEG:
		img := c.Image()
		flat := image.NewRGBA(img.Bounds())
		draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
		return jpeg.Encode(w, flat, &jpeg.Options{Quality: c.jpegQuality})
	default:
		return png.Encode(w, c.Image())
	}
}

// Export writes dir/name.<format> and returns the path.
func (c *Code) Export(dir, name, format string) (string, error) {
	f, err := NormalizeFormat(format)
	if err != nil {
		return "", err
	}
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+"."+f)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := c.Encode(file, f); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Engine is the mounted renderer handle. It remembers the last code shown
// to the user and exports on request.
type Engine struct {
	renderer *Renderer
	dir      string

	mu      sync.Mutex
	current *Code
}

func NewEngine(r *Renderer, dir string) *Engine {
	return &Engine{renderer: r, dir: dir}
}

func (e *Engine) Dir() string { return e.dir }

// Render renders cfg without changing the current code.
func (e *Engine) Render(ctx context.Context, cfg session.Configuration) (*Code, error) {
	return e.renderer.Render(ctx, cfg)
}

// Mount renders cfg and makes it the current code.
func (e *Engine) Mount(ctx context.Context, cfg session.Configuration) (*Code, error) {
	code, err := e.renderer.Render(ctx, cfg)
	if err != nil {
		return nil, err
	}
	e.Set(code)
	return code, nil
}

// Set replaces the current code with one rendered elsewhere.
func (e *Engine) Set(code *Code) {
	e.mu.Lock()
	e.current = code
	e.mu.Unlock()
}

func (e *Engine) Current() *Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Engine) Ready() bool {
	return e.Current() != nil
}

// Export writes the code for cfg. The current code is reused when it
// matches; otherwise cfg is rendered first so the file never lags behind
// the latest command.
func (e *Engine) Export(ctx context.Context, cfg session.Configuration, name, format string) (string, error) {
	code := e.Current()
	if code == nil {
		return "", ErrNotReady
	}
	if !code.cfg.Equal(cfg) {
		var err error
		if code, err = e.Mount(ctx, cfg); err != nil {
			return "", err
		}
	}
	return code.Export(e.dir, name, format)
}
