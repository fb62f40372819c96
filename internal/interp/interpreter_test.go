package interp_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/qryx/internal/interp"
	"github.com/san-kum/qryx/internal/logo"
	"github.com/san-kum/qryx/internal/render"
	"github.com/san-kum/qryx/internal/session"
)

type exportCall struct {
	name, format string
	cfg          session.Configuration
}

type fakeExporter struct {
	mu    sync.Mutex
	ready bool
	err   error
	calls []exportCall

	// gate holds every write until it is closed.
	gate chan struct{}
}

func (f *fakeExporter) Ready() bool { return f.ready }

func (f *fakeExporter) Export(_ context.Context, cfg session.Configuration, name, format string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, exportCall{name: name, format: format, cfg: cfg})
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/" + name + "." + format, nil
}

func (f *fakeExporter) Calls() []exportCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]exportCall(nil), f.calls...)
}

type fakePicker struct {
	file logo.File
	err  error
}

func (p fakePicker) Pick(context.Context) (logo.File, error) {
	return p.file, p.err
}

func pngBytes() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))).To(Succeed())
	return buf.Bytes()
}

func last(s *session.State) session.TranscriptEntry {
	ExpectWithOffset(1, s.Transcript).NotTo(BeEmpty())
	return s.Transcript[len(s.Transcript)-1]
}

var _ = Describe("Interpreter", func() {
	var (
		state    *session.State
		loop     *session.Loop
		exporter *fakeExporter
		in       *interp.Interpreter
	)

	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		Expect(loop.Flush(ctx)).To(Succeed())
	}

	BeforeEach(func() {
		state = session.New()
		loop = session.NewLoop(8)
		exporter = &fakeExporter{ready: true}
		in = interp.New(state, loop, interp.WithExporter(exporter))
	})

	AfterEach(func() {
		loop.Close()
	})

	Describe("input handling", func() {
		It("ignores empty and whitespace-only input", func() {
			in.Handle("")
			in.Handle("   \t  ")
			Expect(state.Transcript).To(BeEmpty())
			Expect(state.Log).To(BeEmpty())
			Expect(state.TerminalActive).To(BeFalse())
		})

		It("activates the terminal on the first command and keeps it active", func() {
			in.Handle("/help")
			Expect(state.TerminalActive).To(BeTrue())
			in.Handle("foobar")
			Expect(state.TerminalActive).To(BeTrue())
		})

		It("echoes the trimmed input as an info log entry", func() {
			in.Handle("  /help  ")
			Expect(state.Log).To(HaveLen(1))
			Expect(state.Log[0].Message).To(Equal("> /help"))
			Expect(state.Log[0].Outcome).To(Equal(session.OutcomeInfo))
		})

		It("matches commands case-insensitively", func() {
			in.Handle("/GENERATE https://go.dev")
			Expect(state.Config.Content).To(Equal("https://go.dev"))
			Expect(last(state).Command).To(Equal("/GENERATE https://go.dev"))
		})

		It("appends exactly one transcript entry per command", func() {
			in.Handle("/help")
			in.Handle("qr test")
			in.Handle("nope")
			Expect(state.Transcript).To(HaveLen(3))
		})
	})

	DescribeTable("animation trigger",
		func(input string, delta int) {
			before := state.AnimationTrigger
			in.Handle(input)
			Expect(state.AnimationTrigger - before).To(Equal(delta))
		},
		Entry("generate", "/generate https://a.com", 1),
		Entry("generate without args", "/generate", 1),
		Entry("color", "/color -bg #000", 1),
		Entry("bad color", "/color -x y", 1),
		Entry("style", "/style dots rounded", 1),
		Entry("add without logo", "/add", 1),
		Entry("remove", "/remove logo", 1),
		Entry("qr test", "qr test", 1),
		Entry("qr unknown", "qr nope", 1),
		Entry("help", "/help", 0),
		Entry("unknown", "foobar", 0),
	)

	Describe("/generate", func() {
		It("joins arguments with single spaces", func() {
			in.Handle("/generate  https://a.com   path")
			Expect(state.Config.Content).To(Equal("https://a.com path"))
			Expect(last(state)).To(Equal(session.TranscriptEntry{
				Command:  "/generate  https://a.com   path",
				Response: "qr code generated (version 6, ecc: h)",
				Outcome:  session.OutcomeSuccess,
			}))
		})

		It("reports a missing argument without touching the configuration", func() {
			before := state.Config.Clone()
			in.Handle("/generate")
			Expect(state.Config.Equal(before)).To(BeTrue())
			Expect(last(state).Response).To(Equal("error: missing url argument"))
			Expect(last(state).Outcome).To(Equal(session.OutcomeError))
			Expect(state.Log).To(HaveLen(2))
			Expect(state.Log[1].Outcome).To(Equal(session.OutcomeError))
		})

		It("refuses content that no code can hold", func() {
			before := state.Config.Clone()
			in.Handle("/generate " + strings.Repeat("x", 3000))
			Expect(state.Config.Equal(before)).To(BeTrue())
			Expect(last(state).Response).To(Equal("error: content too long for a qr code"))
			Expect(last(state).Outcome).To(Equal(session.OutcomeError))
		})
	})

	Describe("/color", func() {
		It("updates background and dots", func() {
			in.Handle("/color -bg #111111 -fg #00ff00")
			Expect(state.Config.Background.Color).To(Equal("#111111"))
			Expect(state.Config.Dots.Color).To(Equal("#00ff00"))
			Expect(last(state).Response).To(Equal("colors applied"))
		})

		It("maps every flag to its style", func() {
			in.Handle("/color -dots #010101 -corners #020202 -corners-dot #030303")
			Expect(state.Config.Dots.Color).To(Equal("#010101"))
			Expect(state.Config.CornerSquares.Color).To(Equal("#020202"))
			Expect(state.Config.CornerDots.Color).To(Equal("#030303"))
		})

		It("prints usage when nothing was applied", func() {
			in.Handle("/color -unknownflag x")
			Expect(last(state)).To(Equal(session.TranscriptEntry{
				Command:  "/color -unknownflag x",
				Response: "usage: /color -bg [hex] -fg [hex] -corners [hex]",
				Outcome:  session.OutcomeError,
			}))
		})

		It("accepts css color names", func() {
			in.Handle("/color -bg red -fg white")
			Expect(state.Config.Background.Color).To(Equal("red"))
			Expect(state.Config.Dots.Color).To(Equal("white"))
			Expect(last(state).Response).To(Equal("colors applied"))
		})

		It("rejects values that are not colors", func() {
			in.Handle("/color -bg notacolor")
			Expect(state.Config.Background.Color).To(BeEmpty())
			Expect(last(state).Outcome).To(Equal(session.OutcomeError))
		})

		It("does not skip value tokens", func() {
			in.Handle("/color -bg -fg #ffffff")
			Expect(state.Config.Background.Color).To(BeEmpty())
			Expect(state.Config.Dots.Color).To(Equal("#ffffff"))
		})

		It("is idempotent", func() {
			in.Handle("/color -bg #222 -corners #333")
			once := state.Config.Clone()
			in.Handle("/color -bg #222 -corners #333")
			Expect(state.Config.Equal(once)).To(BeTrue())
		})
	})

	Describe("/style", func() {
		It("sets the dots shape", func() {
			in.Handle("/style dots classy")
			Expect(state.Config.Dots.Shape).To(Equal("classy"))
			Expect(last(state).Response).To(Equal("dots style set to classy"))
		})

		It("links corner dots to the dot corner style", func() {
			in.Handle("/style corners dot")
			Expect(state.Config.CornerSquares.Shape).To(Equal("dot"))
			Expect(state.Config.CornerDots.Shape).To(Equal("dot"))
			Expect(last(state).Response).To(Equal("corners style set to dot"))

			in.Handle("/style corners square")
			Expect(state.Config.CornerSquares.Shape).To(Equal("square"))
			Expect(state.Config.CornerDots.Shape).To(BeEmpty())
		})

		It("prints usage for missing parts", func() {
			for _, input := range []string{"/style", "/style dots", "/style eyes round"} {
				in.Handle(input)
				Expect(last(state).Response).To(Equal("usage: /style dots [type] | /style corners [type]"))
			}
		})

		It("rejects shapes the renderer cannot draw", func() {
			in.Handle("/style corners rounded")
			Expect(state.Config.CornerSquares.Shape).To(BeEmpty())
			Expect(last(state).Response).To(Equal("error: invalid corners style 'rounded'. use square, dot, extra-rounded."))
		})
	})

	Describe("/add and /remove", func() {
		It("sets a URL logo", func() {
			in.Handle("/add logo https://example.com/logo.png")
			Expect(state.Config.Logo).NotTo(BeNil())
			Expect(state.Config.Logo.Source.URL).To(Equal("https://example.com/logo.png"))
			Expect(state.Config.Logo.Margin).To(Equal(5))
			Expect(state.Config.Logo.SizeRatio).To(Equal(0.9))
			Expect(last(state).Response).To(Equal("logo obstruction: safe"))
		})

		It("rejects URLs it cannot fetch", func() {
			in.Handle("/add logo ftp://example.com/x.png")
			Expect(state.Config.Logo).To(BeNil())
			Expect(last(state).Outcome).To(Equal(session.OutcomeError))
		})

		It("prints usage for anything but logo", func() {
			in.Handle("/add banner")
			Expect(last(state).Response).To(Equal("usage: /add logo [url] (or empty for local)"))
		})

		It("reports a missing file picker", func() {
			in.Handle("/add logo")
			Expect(last(state).Response).To(Equal("error: file input not ready"))
		})

		It("defers the transcript entry until the pick completes", func() {
			data := pngBytes()
			in = interp.New(state, loop,
				interp.WithPicker(fakePicker{file: logo.File{Name: "brand.png", Data: data}}))

			in.Handle("/add logo")
			Expect(state.Transcript).To(BeEmpty())
			Expect(state.Config.Logo).To(BeNil())

			flush()
			Expect(state.Config.Logo).NotTo(BeNil())
			Expect(state.Config.Logo.Source.Data).To(Equal(data))
			Expect(state.Config.Logo.Margin).To(Equal(10))
			Expect(state.Config.Logo.SizeRatio).To(Equal(0.4))
			Expect(last(state)).To(Equal(session.TranscriptEntry{
				Command:  "/add logo",
				Response: "logo obstruction: safe",
				Outcome:  session.OutcomeSuccess,
			}))
			Expect(state.Log[len(state.Log)-1].Message).To(Equal("Local logo loaded: brand.png"))
		})

		It("records the command as typed once the pick completes", func() {
			in = interp.New(state, loop,
				interp.WithPicker(fakePicker{file: logo.File{Name: "brand.png", Data: pngBytes()}}))

			in.Handle("  /ADD   logo ")
			flush()
			Expect(state.Transcript).To(HaveLen(1))
			Expect(last(state).Command).To(Equal("/ADD   logo"))
		})

		It("records nothing when the pick is canceled", func() {
			in = interp.New(state, loop, interp.WithPicker(fakePicker{err: logo.ErrCanceled}))
			in.Handle("/add logo")
			flush()
			Expect(state.Transcript).To(BeEmpty())
			Expect(state.Config.Logo).To(BeNil())
		})

		It("reports files that are not images", func() {
			in = interp.New(state, loop,
				interp.WithPicker(fakePicker{file: logo.File{Name: "x.png", Data: []byte("nope")}}))
			in.Handle("/add logo")
			flush()
			Expect(state.Config.Logo).To(BeNil())
			Expect(last(state).Outcome).To(Equal(session.OutcomeError))
		})

		It("clears the logo", func() {
			in.Handle("/add logo https://example.com/logo.png")
			in.Handle("/remove logo")
			Expect(state.Config.Logo).To(BeNil())
			Expect(last(state).Response).To(Equal("logo layer cleared"))

			in.Handle("/remove everything")
			Expect(last(state).Response).To(Equal("usage: /remove logo"))
		})
	})

	Describe("qr", func() {
		It("prints the diagnostic", func() {
			in.Handle("qr test")
			Expect(last(state).Response).To(Equal("scan reliability: 98.6%\nerror tolerance: high"))
		})

		It("exports with the given name and format", func() {
			in.Handle("qr export report svg")
			Expect(last(state)).To(Equal(session.TranscriptEntry{
				Command:  "qr export report svg",
				Response: "files exported: report.svg",
				Outcome:  session.OutcomeSuccess,
			}))

			flush()
			Expect(exporter.Calls()).To(HaveLen(1))
			Expect(exporter.Calls()[0].name).To(Equal("report"))
			Expect(exporter.Calls()[0].format).To(Equal("svg"))
			Expect(state.Transcript).To(HaveLen(1))
		})

		It("keeps transcript order while a slow write is running", func() {
			exporter.gate = make(chan struct{})
			in.Handle("qr export report svg")
			in.Handle("/help")

			Expect(state.Transcript).To(HaveLen(2))
			Expect(state.Transcript[0].Command).To(Equal("qr export report svg"))
			Expect(state.Transcript[1].Command).To(Equal("/help"))

			close(exporter.gate)
			flush()
			Expect(exporter.Calls()).To(HaveLen(1))
			Expect(state.Transcript).To(HaveLen(2))
			Expect(state.Transcript[0].Command).To(Equal("qr export report svg"))
		})

		It("refuses names that leave the export directory", func() {
			for _, input := range []string{"qr export ../x png", "qr export a/b svg", "qr export .. png"} {
				in.Handle(input)
				Expect(last(state).Outcome).To(Equal(session.OutcomeError))
			}
			Expect(state.Transcript[0].Response).To(Equal("error: invalid file name '../x'. use a plain name without paths."))
			flush()
			Expect(exporter.Calls()).To(BeEmpty())
		})

		It("defaults the name and format", func() {
			in.Handle("qr export")
			flush()
			Expect(exporter.Calls()[0].name).To(Equal("qr-code"))
			Expect(exporter.Calls()[0].format).To(Equal("png"))
		})

		It("normalizes jpg for the exporter only", func() {
			in.Handle("qr export shot JPG")
			flush()
			Expect(exporter.Calls()[0].format).To(Equal("jpeg"))
			Expect(last(state).Response).To(Equal("files exported: shot.jpg"))
		})

		It("exports the configuration at the time of the command", func() {
			in.Handle("/generate https://one.example")
			in.Handle("qr export")
			in.Handle("/generate https://two.example")
			flush()
			Expect(exporter.Calls()[0].cfg.Content).To(Equal("https://one.example"))
		})

		It("rejects unknown formats without exporting", func() {
			in.Handle("qr export x badfmt")
			flush()
			Expect(exporter.Calls()).To(BeEmpty())
			Expect(last(state).Response).To(Equal("error: invalid format 'badfmt'. use png, jpg, or svg."))
		})

		It("reports an engine that is not ready", func() {
			exporter.ready = false
			in.Handle("qr export")
			Expect(last(state).Response).To(Equal("export failed: engine not ready"))

			in = interp.New(state, loop)
			in.Handle("qr export")
			Expect(last(state).Response).To(Equal("export failed: engine not ready"))
		})

		It("reports late write failures in the system log", func() {
			exporter.err = errors.New("disk full")
			in.Handle("qr export")
			flush()
			Expect(state.Transcript).To(HaveLen(1))
			Expect(last(state).Outcome).To(Equal(session.OutcomeSuccess))
			failed := state.Log[len(state.Log)-1]
			Expect(failed.Message).To(Equal(interp.LogExportFailed + "qr-code.png: disk full"))
			Expect(failed.Outcome).To(Equal(session.OutcomeError))

			exporter.err = render.ErrNotReady
			in.Handle("qr export shot jpg")
			flush()
			Expect(state.Log[len(state.Log)-1].Message).To(Equal(interp.LogExportFailed + "shot.jpg: engine not ready"))
		})

		It("rejects other subcommands", func() {
			in.Handle("qr")
			Expect(last(state).Response).To(Equal("unknown qr command"))
		})
	})

	Describe("unknown commands", func() {
		It("reports the command and leaves the configuration alone", func() {
			before := state.Config.Clone()
			in.Handle("foobar baz")
			Expect(state.Config.Equal(before)).To(BeTrue())
			Expect(last(state).Response).To(Equal("command not found: foobar. Type /help for options."))
			Expect(state.Log[len(state.Log)-1].Message).To(Equal("Command not found: foobar"))
		})
	})

	It("prints the command reference", func() {
		in.Handle("/help")
		Expect(last(state).Response).To(Equal(interp.HelpText))
		Expect(last(state).Outcome).To(Equal(session.OutcomeSuccess))
	})
})
