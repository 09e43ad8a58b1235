package cli

import (
	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/store"
)

// NewPauseCommand creates the pause command.
func NewPauseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause trigger evaluation",
		Long: `Pause the scheduler. Entries can still be created, cancelled, and
inspected while paused, and events are still recorded; nothing fires
until the scheduler is resumed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPaused(rootOpts, cmd, true)
		},
	}
}

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume trigger evaluation",
		Long: `Resume a paused scheduler. The next tick evaluates everything that
became due or converged during the pause.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPaused(rootOpts, cmd, false)
		},
	}
}

func setPaused(opts *RootOptions, cmd *cobra.Command, paused bool) error {
	configureLogging(opts.Verbose)

	pause, err := store.OpenPauseState(opts.PauseFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read pause state", err)
	}
	if err := pause.SetPaused(paused); err != nil {
		return WrapExitError(ExitCommandError, "failed to write pause state", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(map[string]bool{"paused": paused})
	}
	if paused {
		return formatter.Success("scheduler paused")
	}
	return formatter.Success("scheduler resumed")
}
