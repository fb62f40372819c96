package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/san-kum/qryx/internal/interp"
	"github.com/san-kum/qryx/internal/logo"
	"github.com/san-kum/qryx/internal/render"
	"github.com/san-kum/qryx/internal/session"
	"github.com/san-kum/qryx/internal/telemetry"
)

const (
	preloadDuration   = 2500 * time.Millisecond
	revealInterval    = 40 * time.Millisecond
	telemetryInterval = time.Second

	defaultCompactWidth = 96
)

var exportFormats = []string{"png", "jpg", "svg"}

// suggestions are offered with tab, one per press.
var suggestions = []string{"/generate ", "/color -bg ", "/color -fg ", "/add logo "}

type Options struct {
	State        *session.State
	Engine       *render.Engine
	Picker       logo.Picker
	Scheduler    session.Scheduler
	Logger       *zap.SugaredLogger
	CompactWidth int
	Preloader    bool
}

// Console is the Bubble Tea model. Update is the only goroutine that
// touches the session state.
type Console struct {
	state  *session.State
	interp *interp.Interpreter
	engine *render.Engine
	sched  session.Scheduler
	boot   *session.Boot
	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc

	input  textinput.Model
	scroll viewport.Model
	spin   spinner.Model
	mem    *telemetry.Memory

	width, height int
	compactWidth  int
	preloading    bool

	code      *render.Code
	prev      preview
	renderErr error
	renderSeq int
	requested session.Configuration
	reqActive bool
	started   bool

	trigger   int
	active    bool
	reveal    int
	revealing bool

	format     int
	inputs     []string
	inputIdx   int
	suggestIdx int
	shown      int
}

type (
	preloadDoneMsg struct{}
	memTickMsg     time.Time
	revealTickMsg  struct{}
	renderedMsg    struct {
		seq  int
		code *render.Code
		err  error
	}
)

func New(opts Options) *Console {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	state := opts.State
	if state == nil {
		state = session.New()
	}
	compact := opts.CompactWidth
	if compact <= 0 {
		compact = defaultCompactWidth
	}

	ctx, cancel := context.WithCancel(context.Background())

	iopts := []interp.Option{interp.WithLogger(log.Named("interp"))}
	if opts.Engine != nil {
		iopts = append(iopts, interp.WithExporter(opts.Engine))
	}
	if opts.Picker != nil {
		iopts = append(iopts, interp.WithPicker(opts.Picker))
	}

	ti := textinput.New()
	ti.Placeholder = "Type A Command"
	ti.Prompt = "qryx:~ "
	ti.PromptStyle = redB
	ti.TextStyle = plain
	ti.PlaceholderStyle = dim
	ti.CharLimit = 2048
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = green

	c := &Console{
		state:        state,
		interp:       interp.New(state, opts.Scheduler, iopts...),
		engine:       opts.Engine,
		sched:        opts.Scheduler,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		input:        ti,
		scroll:       viewport.New(60, 10),
		spin:         sp,
		mem:          telemetry.NewMemory(telemetry.DefaultWindow),
		width:        120,
		height:       36,
		compactWidth: compact,
		preloading:   opts.Preloader,
		reveal:       1 << 30,
	}
	c.layout()
	return c
}

// StartBoot schedules the boot log. The scheduler must already deliver
// messages to the running program.
func (c *Console) StartBoot(steps []session.BootStep) {
	c.boot = session.StartBoot(c.state, c.sched, steps)
}

// Close stops the boot timers and cancels pending capabilities.
func (c *Console) Close() {
	if c.boot != nil {
		c.boot.Stop()
	}
	c.cancel()
}

func (c *Console) State() *session.State { return c.state }

func (c *Console) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, memTick(), c.sync()}
	if c.preloading {
		cmds = append(cmds, c.spin.Tick, tea.Tick(preloadDuration, func(time.Time) tea.Msg {
			return preloadDoneMsg{}
		}))
	}
	return tea.Batch(cmds...)
}

func memTick() tea.Cmd {
	return tea.Tick(telemetryInterval, func(t time.Time) tea.Msg { return memTickMsg(t) })
}

func revealTick() tea.Cmd {
	return tea.Tick(revealInterval, func(time.Time) tea.Msg { return revealTickMsg{} })
}

func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return c.handleKey(msg)

	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		c.layout()
		return c, nil

	case postMsg:
		msg()
		return c, c.sync()

	case renderedMsg:
		c.applyRender(msg)
		return c, nil

	case revealTickMsg:
		return c, c.advanceReveal()

	case memTickMsg:
		c.mem.Sample()
		return c, memTick()

	case preloadDoneMsg:
		c.preloading = false
		return c, nil

	case spinner.TickMsg:
		if !c.preloading {
			return c, nil
		}
		var cmd tea.Cmd
		c.spin, cmd = c.spin.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Console) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		c.Close()
		return c, tea.Quit
	}
	if c.preloading {
		return c, nil
	}

	switch msg.String() {
	case "enter":
		line := c.input.Value()
		c.input.Reset()
		c.submit(line)
		return c, c.sync()
	case "ctrl+e":
		c.submit("qr export qr-code " + exportFormats[c.format])
		return c, c.sync()
	case "ctrl+f":
		c.format = (c.format + 1) % len(exportFormats)
		return c, nil
	case "up":
		c.recall(-1)
		return c, nil
	case "down":
		c.recall(1)
		return c, nil
	case "tab":
		c.input.SetValue(suggestions[c.suggestIdx%len(suggestions)])
		c.input.CursorEnd()
		c.suggestIdx++
		return c, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		c.scroll, cmd = c.scroll.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Console) submit(line string) {
	if strings.TrimSpace(line) != "" {
		c.inputs = append(c.inputs, line)
	}
	c.inputIdx = len(c.inputs)
	c.interp.HandleContext(c.ctx, line)
}

// recall walks the input history; moving past the newest entry clears
// the prompt.
func (c *Console) recall(delta int) {
	if len(c.inputs) == 0 {
		return
	}
	c.inputIdx += delta
	if c.inputIdx < 0 {
		c.inputIdx = 0
	}
	if c.inputIdx >= len(c.inputs) {
		c.inputIdx = len(c.inputs)
		c.input.Reset()
		return
	}
	c.input.SetValue(c.inputs[c.inputIdx])
	c.input.CursorEnd()
}

// sync reacts to state changes made by the interpreter or by a
// continuation.
func (c *Console) sync() tea.Cmd {
	s := c.state
	var cmds []tea.Cmd

	if len(s.Transcript) != c.shown {
		c.shown = len(s.Transcript)
		c.refreshTranscript()
	}

	if !c.started || !s.Config.Equal(c.requested) || s.TerminalActive != c.reqActive {
		cmds = append(cmds, c.renderCmd())
	}

	replay := s.AnimationTrigger != c.trigger || s.TerminalActive != c.active
	c.trigger = s.AnimationTrigger
	c.active = s.TerminalActive
	if replay && s.TerminalActive {
		c.reveal = 0
		if !c.revealing {
			c.revealing = true
			cmds = append(cmds, revealTick())
		}
	}

	return tea.Batch(cmds...)
}

func (c *Console) renderCmd() tea.Cmd {
	if c.engine == nil {
		return nil
	}
	c.started = true
	c.renderSeq++
	c.requested = c.state.Config.Clone()
	c.reqActive = c.state.TerminalActive

	seq, cfg := c.renderSeq, c.requested.Clone()
	return func() tea.Msg { return c.renderJob(seq, cfg) }
}

// renderJob runs off the event loop.
func (c *Console) renderJob(seq int, cfg session.Configuration) tea.Msg {
	code, err := c.engine.Render(c.ctx, cfg)
	return renderedMsg{seq: seq, code: code, err: err}
}

func (c *Console) applyRender(msg renderedMsg) {
	if msg.seq != c.renderSeq {
		return
	}
	if msg.err != nil {
		c.renderErr = msg.err
		c.log.Errorw("render failed", "error", msg.err)
		return
	}
	c.renderErr = nil
	c.code = msg.code
	c.prev = newPreview(msg.code)
	c.engine.Set(msg.code)
	c.layout()
}

func (c *Console) advanceReveal() tea.Cmd {
	h := c.prev.height()
	if h == 0 {
		c.revealing = false
		c.reveal = 1 << 30
		return nil
	}
	c.reveal++
	if c.reveal >= h {
		c.revealing = false
		return nil
	}
	return revealTick()
}

func (c *Console) compact() bool {
	return c.width < c.compactWidth
}

// panelWidths splits the screen; compact layouts use one column.
func (c *Console) panelWidths() (left, right int) {
	if c.compact() {
		return c.width, c.width
	}
	left = c.width * 55 / 100
	return left, c.width - left
}

func (c *Console) layout() {
	left, _ := c.panelWidths()
	inner := max(left-4, 20)

	c.input.Width = max(inner-len(c.input.Prompt)-1, 10)
	c.scroll.Width = inner

	// header, input box and spacing
	h := c.height - 7
	if c.compact() {
		h -= c.prev.height() + 2
	}
	c.scroll.Height = max(h, 3)
	c.refreshTranscript()
}
