package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoosis/tdash/internal/config"
	"github.com/dkoosis/tdash/internal/watch"
	"github.com/dkoosis/tdash/pkg/gotest"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		command  string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [pattern...]",
		Short: "Re-run a test command and redraw the dashboard when files change",
		Long: `watch runs the test command once, then again whenever a file matching
one of the patterns is written, created, removed or renamed. Patterns are
doublestar globs relative to the working directory.

  tdash watch
  tdash watch --cmd "go test -json ./pkg/..." "pkg/**/*.go"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolve(cmd, config.CliFlags{Command: command, Watch: args, Debounce: debounce})
			if err != nil {
				a.exitCode = ExitUsageError
				fmt.Fprintf(a.stderr, "tdash: %v\n", err)
				return err
			}
			return a.runWatch(cmd.Context(), r)
		},
	}
	cmd.Flags().StringVar(&command, "cmd", "", "test command producing go test -json output (default \""+config.DefaultCommand+"\")")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period after a change before re-running (default "+config.DefaultDebounce.String()+")")
	return cmd
}

func (a *app) runWatch(parent context.Context, r config.Resolved) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	width := r.BarWidth
	if width == 0 {
		width, _ = termSize(a.stdout)
	}
	notify := watch.NewNotifier(a.stdout, width, !a.useColor(r))

	w := &watch.Watcher{
		Patterns: r.Watch,
		Debounce: r.Debounce,
		Logger:   a.newLogger(r),
	}
	err := w.Run(ctx, func(ctx context.Context, trigger string) error {
		if trigger != "" {
			notify.Changed(trigger)
		}
		if err := a.runOnce(ctx, r, notify); err != nil {
			fmt.Fprintf(a.stderr, "tdash: %v\n", err)
		}
		notify.Watching(r.Watch)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.exitCode = ExitUsageError
		fmt.Fprintf(a.stderr, "tdash: %v\n", err)
		return err
	}
	a.exitCode = ExitSuccess
	return nil
}

// runOnce starts the test command and renders its output into a fresh dashboard.
func (a *app) runOnce(ctx context.Context, r config.Resolved, notify *watch.Notifier) error {
	logger := a.newLogger(r)
	proc, err := watch.Command{Line: r.Command, Stderr: a.stderr}.Start(ctx)
	if err != nil {
		return err
	}
	summary, _, streamErr := gotest.Run(ctx, proc.Stdout, a.newSink(r), logger)
	// Output left unread after a decode error would block the command on a
	// full pipe and Wait would never return.
	_, _ = io.Copy(io.Discard, proc.Stdout)
	code, err := proc.Wait()
	if err != nil {
		return err
	}
	if code != 0 && summary.Total() == 0 && ctx.Err() == nil {
		notify.CommandFailed(r.Command, code)
	}
	logger.Debug("run finished", "exit", code, "passing", summary.Passing, "failing", summary.Failing)
	if streamErr != nil && !errors.Is(streamErr, context.Canceled) && !errors.Is(streamErr, context.DeadlineExceeded) {
		return fmt.Errorf("reading %q output: %w", r.Command, streamErr)
	}
	return nil
}
