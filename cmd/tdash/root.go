package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dkoosis/tdash/internal/config"
	"github.com/dkoosis/tdash/internal/logging"
	"github.com/dkoosis/tdash/pkg/gotest"
	"github.com/dkoosis/tdash/pkg/sink"
)

// Color modes accepted by --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// app carries the I/O streams and flag values shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	exitCode int

	configPath string
	logLevel   string
	colorMode  string
	noColor    bool
	width      int
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tdash",
		Short: "Live console dashboard for go test -json output",
		Long: `tdash reads go test -json events from stdin and renders a dashboard:
a colored status bar followed by pass, slow, pending and failure counts
and the messages of slow and failing tests.

  go test -json ./... | tdash`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDashboard(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to config file (default: ./"+config.FileName+")")
	pf.StringVar(&a.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	pf.StringVar(&a.colorMode, "color", colorAuto, "color output: auto, always, never")
	pf.BoolVar(&a.noColor, "no-color", false, "disable color output (same as --color=never)")
	pf.IntVar(&a.width, "width", 0, "status bar width in columns (default: terminal width)")

	root.AddCommand(a.watchCmd(), a.versionCmd())
	return root
}

// resolve loads the config file and applies flag and environment overrides.
func (a *app) resolve(cmd *cobra.Command, flags config.CliFlags) (config.Resolved, error) {
	switch a.colorMode {
	case colorAuto, colorAlways, colorNever:
	default:
		return config.Resolved{}, fmt.Errorf("invalid --color %q: want auto, always or never", a.colorMode)
	}
	if a.width < 0 {
		return config.Resolved{}, fmt.Errorf("invalid --width %d: must not be negative", a.width)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Resolved{}, err
	}
	flags.LogLevel = a.logLevel
	flags.BarWidth = a.width
	flags.NoColor = a.noColor || a.colorMode == colorNever
	flags.NoColorSet = cmd.Flags().Changed("no-color") || a.colorMode == colorNever
	return config.Resolve(cfg, flags), nil
}

// newLogger returns the diagnostic logger for one invocation, tagged with a
// run id so interleaved watch runs can be told apart.
func (a *app) newLogger(r config.Resolved) *log.Logger {
	return logging.New(a.stderr, r.LogLevel).With("run", uuid.NewString()[:8])
}

// useColor reports whether stdout gets escape sequences: only terminals,
// unless --color=always is given, and never when color is disabled.
func (a *app) useColor(r config.Resolved) bool {
	return !r.NoColor && (a.colorMode == colorAlways || isTTYWriter(a.stdout))
}

// newSink picks the dashboard renderer.
func (a *app) newSink(r config.Resolved) sink.Sink {
	if !a.useColor(r) {
		return sink.NewPlain(a.stdout)
	}
	width := r.BarWidth
	if width == 0 {
		width, _ = termSize(a.stdout)
	}
	return sink.NewTerminal(a.stdout, width)
}

func (a *app) runDashboard(cmd *cobra.Command) error {
	r, err := a.resolve(cmd, config.CliFlags{})
	if err != nil {
		a.exitCode = ExitUsageError
		fmt.Fprintf(a.stderr, "tdash: %v\n", err)
		return err
	}
	logger := a.newLogger(r)
	logger.Debug("resolved config", "no_color", r.NoColor, "no_color_source", r.NoColorSource,
		"log_level", r.LogLevel, "log_level_source", r.LogLevelSource, "width", r.BarWidth)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// Unblock the scanner on interrupt when stdin supports closing.
	if closer, ok := a.stdin.(io.Closer); ok {
		cancelClose := context.AfterFunc(ctx, func() { _ = closer.Close() })
		defer cancelClose()
	}

	summary, _, err := gotest.Run(ctx, a.stdin, a.newSink(r), logger)
	switch {
	case ctx.Err() != nil:
		a.exitCode = ExitInterrupted
		return nil
	case err != nil && !errors.Is(err, os.ErrClosed):
		a.exitCode = ExitUsageError
		fmt.Fprintf(a.stderr, "tdash: reading input: %v\n", err)
		return err
	}
	a.exitCode = summary.ExitCode()
	return nil
}

func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func termSize(w io.Writer) (width, height int) {
	if f, ok := w.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil {
			return w, h
		}
	}
	return sink.DefaultBarWidth, 24
}
