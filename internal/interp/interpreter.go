package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/san-kum/qryx/internal/logo"
	"github.com/san-kum/qryx/internal/render"
	"github.com/san-kum/qryx/internal/session"
)

const (
	urlLogoMargin    = 5
	urlLogoRatio     = 0.9
	localLogoMargin  = 10
	localLogoRatio   = 0.4
	defaultExportAs  = "qr-code"
	defaultExportFmt = "png"
)

var exportFormats = []string{"png", "svg", "jpg", "jpeg"}

// visual commands replay the reveal animation.
var visual = map[string]bool{
	"/generate": true,
	"/color":    true,
	"/style":    true,
	"/add":      true,
	"/remove":   true,
	"qr":        true,
}

// Exporter is the mounted render engine as seen by "qr export".
type Exporter interface {
	Ready() bool
	Export(ctx context.Context, cfg session.Configuration, name, format string) (string, error)
}

// Interpreter turns console lines into session mutations. All methods
// must be called on the goroutine that owns the state; blocking
// capabilities run through the scheduler and re-enter as continuations.
type Interpreter struct {
	state    *session.State
	sched    session.Scheduler
	picker   logo.Picker
	exporter Exporter
	log      *zap.SugaredLogger
}

type Option func(*Interpreter)

func WithPicker(p logo.Picker) Option {
	return func(in *Interpreter) { in.picker = p }
}

func WithExporter(e Exporter) Option {
	return func(in *Interpreter) { in.exporter = e }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(in *Interpreter) { in.log = l }
}

func New(state *session.State, sched session.Scheduler, opts ...Option) *Interpreter {
	in := &Interpreter{
		state: state,
		sched: sched,
		log:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Interpreter) State() *session.State { return in.state }

// Handle runs one console line with a background context.
func (in *Interpreter) Handle(raw string) {
	in.HandleContext(context.Background(), raw)
}

// HandleContext runs one console line. ctx bounds any capability the
// command starts.
func (in *Interpreter) HandleContext(ctx context.Context, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	s := in.state
	s.Activate()

	fields := strings.Fields(raw)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	s.AppendLog("> "+raw, session.OutcomeInfo)
	if visual[cmd] {
		s.BumpAnimation()
	}

	resp, err := in.dispatch(ctx, raw, cmd, args)
	if errors.Is(err, errPending) {
		in.log.Debugw("command pending", "command", cmd)
		return
	}

	var ce *CommandError
	if errors.As(err, &ce) {
		switch {
		case errors.Is(ce, ErrMissingArgument):
			s.AppendLog(logMissingURL, session.OutcomeError)
		case errors.Is(ce, ErrUnknownCommand):
			s.AppendLog("Command not found: "+cmd, session.OutcomeError)
		}
		in.log.Debugw("command failed", "command", cmd, "kind", ce.Kind, "message", ce.Message)
		s.AppendTranscript(raw, ce.Message, session.OutcomeError)
		return
	}

	in.log.Debugw("command ok", "command", cmd)
	s.AppendTranscript(raw, resp, session.OutcomeSuccess)
}

// errPending marks a command whose transcript entry comes from a
// continuation.
var errPending = errors.New("interp: pending")

func (in *Interpreter) dispatch(ctx context.Context, raw, cmd string, args []string) (string, error) {
	switch cmd {
	case "/generate":
		return in.generate(cmd, args)
	case "/color":
		return in.color(cmd, args)
	case "/style":
		return in.style(cmd, args)
	case "/add":
		return in.add(ctx, raw, cmd, args)
	case "/remove":
		return in.remove(cmd, args)
	case "/help":
		return HelpText, nil
	case "qr":
		return in.qr(ctx, cmd, args)
	default:
		return "", fail(cmd, ErrUnknownCommand,
			fmt.Sprintf("command not found: %s. Type /help for options.", cmd))
	}
}

func (in *Interpreter) generate(cmd string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fail(cmd, ErrMissingArgument, errMissingURL)
	}
	content := strings.Join(args, " ")
	if err := render.CheckContent(content); err != nil {
		return "", fail(cmd, ErrInvalidFormat, errContentTooLong)
	}
	in.state.Config.Content = content
	return msgGenerated, nil
}

// color applies every recognized flag followed by a valid color. Value
// tokens are not skipped, so "-bg -fg #fff" only sets the dots color.
func (in *Interpreter) color(cmd string, args []string) (string, error) {
	cfg := in.state.Config
	updates := 0
	for i := 0; i+1 < len(args); i++ {
		val := args[i+1]
		if !render.ValidColor(val) {
			continue
		}
		switch args[i] {
		case "-bg":
			cfg.Background.Color = val
		case "-fg", "-dots":
			cfg.Dots.Color = val
		case "-corners":
			cfg.CornerSquares.Color = val
		case "-corners-dot":
			cfg.CornerDots.Color = val
		default:
			continue
		}
		updates++
	}

	if updates == 0 {
		return "", fail(cmd, ErrUsage, usageColor)
	}
	in.state.Config = cfg
	return msgColorsApplied, nil
}

func (in *Interpreter) style(cmd string, args []string) (string, error) {
	if len(args) < 2 {
		return "", fail(cmd, ErrUsage, usageStyle)
	}
	part, shape := args[0], args[1]

	switch part {
	case "dots":
		if !render.ValidDotShape(shape) {
			return "", invalidShape(cmd, part, shape, render.DotShapes)
		}
		in.state.Config.Dots.Shape = shape
	case "corners":
		if !render.ValidCornerSquareShape(shape) {
			return "", invalidShape(cmd, part, shape, render.CornerSquareShapes)
		}
		in.state.Config.CornerSquares.Shape = shape
		if shape == render.ShapeDot {
			in.state.Config.CornerDots.Shape = render.ShapeDot
		} else {
			in.state.Config.CornerDots.Shape = ""
		}
	default:
		return "", fail(cmd, ErrUsage, usageStyle)
	}
	return fmt.Sprintf("%s style set to %s", part, shape), nil
}

func invalidShape(cmd, part, shape string, valid []string) error {
	return fail(cmd, ErrInvalidFormat,
		fmt.Sprintf("error: invalid %s style '%s'. use %s.", part, shape, strings.Join(valid, ", ")))
}

func (in *Interpreter) add(ctx context.Context, raw, cmd string, args []string) (string, error) {
	if len(args) == 0 || args[0] != "logo" {
		return "", fail(cmd, ErrUsage, usageAdd)
	}

	if len(args) > 1 {
		u := args[1]
		if !logoURL(u) {
			return "", fail(cmd, ErrInvalidFormat,
				fmt.Sprintf("error: invalid logo url '%s'. use http, https, or data.", u))
		}
		in.setLogo(session.LogoSource{URL: u}, urlLogoMargin, urlLogoRatio)
		return msgLogoSafe, nil
	}

	if in.picker == nil || in.sched == nil {
		return "", fail(cmd, ErrCapabilityUnavailable, errFileInput)
	}

	picker := in.picker
	in.sched.Go(func() func() {
		f, err := picker.Pick(ctx)
		if err == nil {
			_, _, err = image.DecodeConfig(bytes.NewReader(f.Data))
			if err != nil {
				err = fmt.Errorf("%w: %s", logo.ErrNotImage, f.Name)
			}
		}
		return func() { in.completePick(raw, f, err) }
	})
	return "", errPending
}

// completePick is the continuation of a bare "/add logo". It runs on the
// owner goroutine and records the command as it was typed.
func (in *Interpreter) completePick(raw string, f logo.File, err error) {
	s := in.state
	switch {
	case errors.Is(err, logo.ErrCanceled), errors.Is(err, context.Canceled):
		in.log.Debugw("logo pick canceled")
		return
	case err != nil:
		in.log.Warnw("logo pick failed", "error", err)
		s.AppendTranscript(raw, "error: "+err.Error(), session.OutcomeError)
		return
	}

	in.setLogo(session.LogoSource{Name: f.Name, Data: f.Data}, localLogoMargin, localLogoRatio)
	s.AppendLog(logLocalLogoLoaded+f.Name, session.OutcomeSuccess)
	s.AppendTranscript(raw, msgLogoSafe, session.OutcomeSuccess)
}

// setLogo is the single entry for a newly acquired logo, whatever its
// origin.
func (in *Interpreter) setLogo(src session.LogoSource, margin int, ratio float64) {
	in.state.Config.Logo = &session.Logo{
		Source:    src,
		Margin:    margin,
		SizeRatio: ratio,
	}
}

func logoURL(raw string) bool {
	if strings.HasPrefix(raw, "data:image/") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (in *Interpreter) remove(cmd string, args []string) (string, error) {
	if len(args) == 0 || args[0] != "logo" {
		return "", fail(cmd, ErrUsage, usageRemove)
	}
	in.state.Config.Logo = nil
	return msgLogoCleared, nil
}

func (in *Interpreter) qr(ctx context.Context, cmd string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fail(cmd, ErrUsage, errUnknownQR)
	}
	switch args[0] {
	case "test":
		return msgQRTest, nil
	case "export":
		return in.export(ctx, cmd, args[1:])
	default:
		return "", fail(cmd, ErrUsage, errUnknownQR)
	}
}

// export validates and answers synchronously. The file is written off
// the owner; a late write failure only reaches the system log.
func (in *Interpreter) export(ctx context.Context, cmd string, args []string) (string, error) {
	name, format := defaultExportAs, defaultExportFmt
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		format = strings.ToLower(args[1])
	}

	valid := false
	for _, f := range exportFormats {
		if f == format {
			valid = true
			break
		}
	}
	if !valid {
		return "", fail(cmd, ErrInvalidFormat,
			fmt.Sprintf("error: invalid format '%s'. use png, jpg, or svg.", format))
	}
	if !render.ValidName(name) {
		return "", fail(cmd, ErrInvalidFormat,
			fmt.Sprintf("error: invalid file name '%s'. use a plain name without paths.", name))
	}

	if in.exporter == nil || in.sched == nil || !in.exporter.Ready() {
		return "", fail(cmd, ErrCapabilityUnavailable, errEngineNotReady)
	}

	encoder := format
	if encoder == "jpg" {
		encoder = render.FormatJPEG
	}
	cfg := in.state.Config.Clone()
	exporter := in.exporter

	in.sched.Go(func() func() {
		path, err := exporter.Export(ctx, cfg, name, encoder)
		return func() { in.completeExport(name, format, path, err) }
	})
	return fmt.Sprintf("files exported: %s.%s", name, format), nil
}

// completeExport runs on the owner once the write finished.
func (in *Interpreter) completeExport(name, format, path string, err error) {
	if err == nil {
		in.log.Infow("exported", "path", path)
		return
	}
	in.log.Warnw("export failed", "name", name, "format", format, "error", err)
	msg := err.Error()
	if errors.Is(err, render.ErrNotReady) {
		msg = "engine not ready"
	}
	in.state.AppendLog(fmt.Sprintf("%s%s.%s: %s", LogExportFailed, name, format, msg), session.OutcomeError)
}
