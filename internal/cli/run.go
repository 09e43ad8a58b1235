package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/engine"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config       string
	TickInterval time.Duration
	MaxDepth     int

	// Runner allows wiring a real command runner (for embedding and
	// tests). If nil the engine's default refusing runner is used.
	Runner engine.CommandRunner
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler loop",
		Long: `Start the scheduler: replay the log, then evaluate entries on a fixed
tick until interrupted. Due time triggers fire, converged event triggers
fire, lapsed ones expire, and emitted events cascade breadth-first.

Example:
  wick run --log ./wick.jsonl
  wick run --config ./wick.yaml --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.Flags().DurationVar(&opts.TickInterval, "tick-interval", 0, "override tick interval")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "override cascade depth cap")

	return cmd
}

func runScheduler(opts *RunOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	// Flags override file values; the persistent flags only win when the
	// user actually set them.
	if cmd.Flags().Changed("tick-interval") {
		cfg.TickInterval = Duration(opts.TickInterval)
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxCascadeDepth = opts.MaxDepth
	}
	if cmd.InheritedFlags().Changed("log") {
		cfg.Log = opts.Log
	}
	if cmd.InheritedFlags().Changed("pause-file") {
		cfg.PauseFile = opts.PauseFile
	}

	engineOpts := []engine.Option{
		engine.WithTickInterval(time.Duration(cfg.TickInterval)),
		engine.WithMaxCascadeDepth(cfg.MaxCascadeDepth),
		engine.WithLimits(cfg.EngineLimits()),
	}
	if opts.Runner != nil {
		engineOpts = append(engineOpts, engine.WithRunner(opts.Runner))
	}

	eng, cleanup, err := openEngine(&RootOptions{
		Verbose:   opts.Verbose,
		Format:    opts.Format,
		Log:       cfg.Log,
		PauseFile: cfg.PauseFile,
	}, engineOpts...)
	if err != nil {
		return err
	}
	defer cleanup()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Press Ctrl-C to stop.")

	if err := eng.Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "scheduler error", err)
	}

	slog.Info("scheduler stopped gracefully")
	return nil
}
