package cli

import (
	"log/slog"
	"os"

	"github.com/calder/wick/internal/engine"
	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
)

// configureLogging routes slog to stderr at the level the verbose flag
// selects, keeping stdout clean for formatted command output.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openEngine opens the log and pause state named by the global flags and
// builds an engine over them. The returned cleanup closes the log.
func openEngine(opts *RootOptions, extra ...engine.Option) (*engine.Engine, func(), error) {
	log, err := store.Open(opts.Log, sched.UUIDv7Generator{}, sched.SystemClock{})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open log", err)
	}
	if err := log.Init(); err != nil {
		_ = log.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to replay log", err)
	}

	pause, err := store.OpenPauseState(opts.PauseFile)
	if err != nil {
		_ = log.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to read pause state", err)
	}

	eng := engine.New(log, pause, extra...)
	cleanup := func() {
		if closeErr := log.Close(); closeErr != nil {
			slog.Error("error closing log", "error", closeErr)
		}
	}
	return eng, cleanup, nil
}
