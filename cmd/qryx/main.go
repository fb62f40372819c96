package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/qryx/internal/config"
	"github.com/san-kum/qryx/internal/interp"
	"github.com/san-kum/qryx/internal/logger"
	"github.com/san-kum/qryx/internal/logo"
	"github.com/san-kum/qryx/internal/render"
	"github.com/san-kum/qryx/internal/report"
	"github.com/san-kum/qryx/internal/session"
	"github.com/san-kum/qryx/internal/tui"
)

var (
	configFile string
	logoPath   string
	reportPath string
	quiet      bool

	v   *viper.Viper
	cfg *config.Config
)

// main registers the commands and starts the console when no subcommand
// is given.
func main() {
	v = config.New()

	rootCmd := &cobra.Command{
		Use:           "qryx",
		Short:         "terminal console for styled qr codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(v, configFile)
			return err
		},
		RunE: runConsole,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (yaml)")
	flags.String("preset", "", "style preset for the initial code")
	flags.String("export-dir", config.DefaultExportDir, "directory exported files are written to")
	flags.Bool("debug", false, "enable debug logging")
	_ = v.BindPFlag("qr.preset", flags.Lookup("preset"))
	_ = v.BindPFlag("export.dir", flags.Lookup("export-dir"))
	_ = v.BindPFlag("settings.debug", flags.Lookup("debug"))

	execCmd := &cobra.Command{
		Use:   "exec [command]...",
		Short: "run console commands without the terminal ui",
		Example: `  qryx exec "/generate https://go.dev" "/color -fg #ff8800" "qr export gopher png"
  qryx exec --logo ./logo.png "/add logo" "qr export branded svg"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExec,
	}
	execCmd.Flags().StringVar(&logoPath, "logo", "", "image returned by the local file picker")
	execCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print errors only")
	execCmd.Flags().StringVar(&reportPath, "json", "", "write a json session report to this path (- for stdout)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  printConfig,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list style presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(execCmd, configCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newEngine() *render.Engine {
	r := render.New(render.Options{
		Size:        cfg.Export.Size,
		QuietZone:   render.DefaultQuietZone,
		JPEGQuality: cfg.Export.JPEGQuality,
		Fetcher:     logo.NewFetcher(),
		Logger:      logger.Sugar("render"),
	})
	return render.NewEngine(r, cfg.Export.Dir)
}

func initLogger(console io.Writer, toFile bool) error {
	err := logger.Init(logger.Config{
		Debug:     cfg.Settings.Debug,
		Console:   console,
		LogToFile: toFile,
		LogsDir:   cfg.Settings.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// runConsole starts the full-screen console. The terminal belongs to the
// ui, so logs only go to file.
func runConsole(cmd *cobra.Command, args []string) error {
	if err := initLogger(nil, cfg.Settings.LogToFile); err != nil {
		return err
	}
	defer logger.Close()

	log := logger.Sugar("console")
	log.Infow("starting console", "export_dir", cfg.Export.Dir, "preset", cfg.QR.Preset)

	state := session.New(session.WithConfiguration(cfg.Session()))
	err := tui.Run(tui.Options{
		State:        state,
		Engine:       newEngine(),
		Picker:       logo.NewDialogPicker(),
		Logger:       log,
		CompactWidth: cfg.UI.CompactWidth,
		Preloader:    cfg.UI.Preloader,
	}, session.DefaultBootSequence)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	log.Infow("console closed", "session", state.ID, "commands", len(state.Transcript))
	return nil
}

// runExec feeds each argument to the interpreter as one console line and
// waits for deferred work before the next one.
func runExec(cmd *cobra.Command, args []string) error {
	if err := initLogger(os.Stderr, false); err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	state := session.New(session.WithConfiguration(cfg.Session()))
	eng := newEngine()
	if _, err := eng.Mount(ctx, state.Config); err != nil {
		return fmt.Errorf("mount %q: %w", state.Config.Content, err)
	}

	loop := session.NewLoop(16)
	defer loop.Close()

	opts := []interp.Option{
		interp.WithExporter(eng),
		interp.WithLogger(logger.Sugar("interp")),
	}
	if logoPath != "" {
		opts = append(opts, interp.WithPicker(logo.PathPicker{Path: logoPath}))
	}
	in := interp.New(state, loop, opts...)

	for _, line := range args {
		in.HandleContext(ctx, line)
		if err := loop.Flush(ctx); err != nil {
			return fmt.Errorf("exec %q: %w", line, err)
		}
	}

	snap := state.Snapshot()
	if reportPath != "-" {
		printTranscript(cmd.OutOrStdout(), snap.Transcript)
	}
	if reportPath != "" {
		if err := report.ExportJSON(reportPath, report.New(state)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if n := snap.Errors(); n > 0 {
		return fmt.Errorf("%d of %d commands failed", n, len(snap.Transcript))
	}
	if failed := exportFailures(snap.Log); len(failed) > 0 {
		return fmt.Errorf("%d exports failed: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// exportFailures collects writes that failed after their command answered.
func exportFailures(logs []session.LogEntry) []string {
	var failed []string
	for _, e := range logs {
		if e.Outcome == session.OutcomeError && strings.HasPrefix(e.Message, interp.LogExportFailed) {
			failed = append(failed, strings.TrimPrefix(e.Message, interp.LogExportFailed))
		}
	}
	return failed
}

func printTranscript(w io.Writer, entries []session.TranscriptEntry) {
	for _, e := range entries {
		if quiet && e.Outcome != session.OutcomeError {
			continue
		}
		mark := "ok "
		if e.Outcome == session.OutcomeError {
			mark = "err"
		}
		fmt.Fprintf(w, "%s  qryx:~ %s\n", mark, e.Command)
		for _, line := range strings.Split(e.Response, "\n") {
			fmt.Fprintf(w, "     %s\n", line)
		}
	}
}

func printConfig(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDOTS\tCORNERS\tBACKGROUND")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s %s\t%s %s\t%s\n",
			name,
			orDefault(p.Dots.Shape), orDefault(p.Dots.Color),
			orDefault(p.CornerSquares.Shape), orDefault(p.CornerSquares.Color),
			orDefault(p.Background.Color))
	}
	return w.Flush()
}

func orDefault(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
