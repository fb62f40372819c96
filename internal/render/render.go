package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sync"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/san-kum/qryx/internal/session"
)

const (
	DefaultSize        = 300
	DefaultQuietZone   = 2
	DefaultJPEGQuality = 92

	// Share of modules level H can lose and still decode.
	eccCapacity = 0.30
	finderSize  = 7
)

// LogoFetcher resolves a logo URL to image bytes.
type LogoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	Size        int // output edge in pixels
	QuietZone   int // modules of padding on each side
	JPEGQuality int
	Fetcher     LogoFetcher
	Logger      *zap.SugaredLogger
}

// Renderer turns a session configuration into a styled code. It is safe
// for concurrent use. URL logos are cached per URL, failures included, so
// a broken link is fetched once per renderer.
type Renderer struct {
	opts Options
	log  *zap.SugaredLogger

	mu     sync.Mutex
	logos  map[string]image.Image
	failed map[string]error
}

func New(opts Options) *Renderer {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.QuietZone < 0 {
		opts.QuietZone = 0
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Renderer{
		opts:  opts,
		log:   log,
		logos:  make(map[string]image.Image),
		failed: make(map[string]error),
	}
}

func (r *Renderer) Size() int { return r.opts.Size }

// CheckContent reports whether content fits a code at level H.
func CheckContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if _, err := qrcode.New(content, qrcode.High); err != nil {
		return ErrContentTooLong
	}
	return nil
}

// Render encodes cfg.Content at error correction level H and lays out the
// module grid. A logo that fails to load is reported through
// Code.LogoErr and the code is rendered without it.
func (r *Renderer) Render(ctx context.Context, cfg session.Configuration) (*Code, error) {
	if cfg.Content == "" {
		return nil, ErrEmptyContent
	}
	if err := CheckShapes(cfg.Dots.Shape, cfg.CornerSquares.Shape, cfg.CornerDots.Shape); err != nil {
		return nil, err
	}

	q, err := qrcode.New(cfg.Content, qrcode.High)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	code := newCode(cfg.Clone(), bitmap, r.opts)
	code.version = q.VersionNumber

	if cfg.Logo != nil {
		img, cached, err := r.loadLogo(ctx, cfg.Logo.Source)
		if err != nil {
			code.LogoErr = &LogoError{Source: logoLabel(cfg.Logo.Source), Wrapped: err}
			if !cached {
				r.log.Warnw("Logo unavailable: "+logoLabel(cfg.Logo.Source), "error", err)
			}
		} else {
			code.setLogo(img, cfg.Logo.Margin, cfg.Logo.SizeRatio)
		}
	}

	r.log.Debugw("rendered code",
		"version", code.version,
		"modules", code.n,
		"logo", code.logo != nil,
	)
	return code, nil
}

// loadLogo decodes the logo for src. cached reports whether a URL result
// came from an earlier fetch.
func (r *Renderer) loadLogo(ctx context.Context, src session.LogoSource) (img image.Image, cached bool, err error) {
	if !src.IsURL() {
		img, _, err = image.Decode(bytes.NewReader(src.Data))
		return img, false, err
	}

	r.mu.Lock()
	img, ok := r.logos[src.URL]
	ferr, bad := r.failed[src.URL]
	r.mu.Unlock()
	switch {
	case ok:
		return img, true, nil
	case bad:
		return nil, true, ferr
	}

	if r.opts.Fetcher == nil {
		return nil, false, ErrNotReady
	}
	img, err = r.fetchLogo(ctx, src.URL)
	if err != nil {
		// A cancelled render says nothing about the URL.
		if ctx.Err() == nil {
			r.mu.Lock()
			r.failed[src.URL] = err
			r.mu.Unlock()
		}
		return nil, false, err
	}

	r.mu.Lock()
	r.logos[src.URL] = img
	r.mu.Unlock()
	return img, false, nil
}

func (r *Renderer) fetchLogo(ctx context.Context, url string) (image.Image, error) {
	data, err := r.opts.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func logoLabel(src session.LogoSource) string {
	if src.IsURL() {
		return src.URL
	}
	if src.Name != "" {
		return src.Name
	}
	return "local file"
}

// Cell classifies one module of the grid.
type Cell uint8

const (
	Light Cell = iota
	Dark
	CornerSquare // finder pattern outer ring
	CornerDot    // finder pattern center
	Covered      // hidden under the logo
)

type palette struct {
	background    color.NRGBA
	dots          color.NRGBA
	cornerSquares color.NRGBA
	cornerDots    color.NRGBA
}

// Code is one rendered QR code. It is immutable once returned.
type Code struct {
	cfg     session.Configuration
	version int
	n       int
	cells   [][]Cell
	colors  palette

	size        int
	dot         float64
	offset      float64
	jpegQuality int

	logo       image.Image
	logoBox    image.Rectangle // in modules
	logoMargin int

	// LogoErr is set when the configured logo could not be loaded.
	LogoErr error
}

func newCode(cfg session.Configuration, bitmap [][]bool, opts Options) *Code {
	n := len(bitmap)
	c := &Code{
		cfg:         cfg,
		n:           n,
		size:        opts.Size,
		jpegQuality: opts.JPEGQuality,
	}
	c.dot = float64(opts.Size) / float64(n+2*opts.QuietZone)
	c.offset = float64(opts.QuietZone) * c.dot

	dots := colorOr(cfg.Dots.Color, DefaultDotColor)
	squares := colorOr(cfg.CornerSquares.Color, dots)
	c.colors = palette{
		background:    colorOr(cfg.Background.Color, DefaultBackgroundColor),
		dots:          dots,
		cornerSquares: squares,
		cornerDots:    colorOr(cfg.CornerDots.Color, squares),
	}

	c.cells = make([][]Cell, n)
	for y := 0; y < n; y++ {
		c.cells[y] = make([]Cell, n)
		for x := 0; x < n; x++ {
			c.cells[y][x] = c.classify(x, y, bitmap[y][x])
		}
	}
	return c
}

func (c *Code) classify(x, y int, dark bool) Cell {
	for _, f := range c.finders() {
		dx, dy := x-f.X, y-f.Y
		if dx < 0 || dy < 0 || dx >= finderSize || dy >= finderSize {
			continue
		}
		switch {
		case dx == 0 || dy == 0 || dx == finderSize-1 || dy == finderSize-1:
			return CornerSquare
		case dx >= 2 && dx <= 4 && dy >= 2 && dy <= 4:
			return CornerDot
		default:
			return Light
		}
	}
	if dark {
		return Dark
	}
	return Light
}

// finders returns the top-left module of each finder pattern.
func (c *Code) finders() []image.Point {
	return []image.Point{
		{0, 0},
		{c.n - finderSize, 0},
		{0, c.n - finderSize},
	}
}

// setLogo reserves a centered square of modules sized so the hidden area
// stays within the error correction budget.
func (c *Code) setLogo(img image.Image, margin int, ratio float64) {
	if ratio <= 0 {
		return
	}
	ratio = math.Min(ratio, 1)

	side := int(math.Sqrt(ratio * eccCapacity * float64(c.n*c.n)))
	if (c.n-side)%2 != 0 {
		side--
	}
	// Keep clear of the finder patterns and separators.
	if limit := c.n - 2*(finderSize+1); side > limit {
		side = limit
		if (c.n-side)%2 != 0 {
			side--
		}
	}
	if side <= 0 {
		return
	}

	start := (c.n - side) / 2
	c.logo = img
	c.logoMargin = max(margin, 0)
	c.logoBox = image.Rect(start, start, start+side, start+side)
	for y := start; y < start+side; y++ {
		for x := start; x < start+side; x++ {
			c.cells[y][x] = Covered
		}
	}
}

func (c *Code) Version() int { return c.version }

// Modules is the edge length of the grid.
func (c *Code) Modules() int { return c.n }

// Size is the raster edge length in pixels.
func (c *Code) Size() int { return c.size }

func (c *Code) Config() session.Configuration { return c.cfg.Clone() }

func (c *Code) HasLogo() bool { return c.logo != nil }

// Cells returns a copy of the classified module grid.
func (c *Code) Cells() [][]Cell {
	out := make([][]Cell, c.n)
	for y := range c.cells {
		out[y] = append([]Cell(nil), c.cells[y]...)
	}
	return out
}

// Matrix returns the dark modules, counting finder patterns as dark and
// covered modules as light.
func (c *Code) Matrix() [][]bool {
	out := make([][]bool, c.n)
	for y, row := range c.cells {
		out[y] = make([]bool, c.n)
		for x, cell := range row {
			out[y][x] = cell == Dark || cell == CornerSquare || cell == CornerDot
		}
	}
	return out
}

// Colors returns the resolved background, dots, corner square and corner
// dot colors.
func (c *Code) Colors() (background, dots, cornerSquares, cornerDots color.NRGBA) {
	p := c.colors
	return p.background, p.dots, p.cornerSquares, p.cornerDots
}

func (c *Code) dark(x, y int) bool {
	if x < 0 || y < 0 || x >= c.n || y >= c.n {
		return false
	}
	return c.cells[y][x] == Dark
}

func (c *Code) neighbors(x, y int) neighbors {
	return neighbors{
		top:    c.dark(x, y-1),
		right:  c.dark(x+1, y),
		bottom: c.dark(x, y+1),
		left:   c.dark(x-1, y),
	}
}

// origin converts module coordinates to pixel coordinates.
func (c *Code) origin(x, y int) (float64, float64) {
	return c.offset + float64(x)*c.dot, c.offset + float64(y)*c.dot
}

// logoRect returns the pixel area the logo image may occupy.
func (c *Code) logoRect() (x, y, side float64) {
	x, y = c.origin(c.logoBox.Min.X, c.logoBox.Min.Y)
	side = float64(c.logoBox.Dx())*c.dot - 2*float64(c.logoMargin)
	return x + float64(c.logoMargin), y + float64(c.logoMargin), side
}
