package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Message string
	Origin  string
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <kind>",
		Short: "Record a bus event",
		Long: `Append a bus event to the log. The scheduler evaluates event triggers
against it on its next tick; this command never executes entries itself.

Example:
  wick emit tests_passed --message "CI run 4182 green" --origin ci`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitEvent(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Message, "message", "", "human-readable event payload")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "who or what produced the event")

	return cmd
}

func emitEvent(opts *EmitOptions, kind string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	log, err := store.Open(opts.Log, sched.UUIDv7Generator{}, sched.SystemClock{})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log", err)
	}
	defer func() { _ = log.Close() }()
	if err := log.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to replay log", err)
	}

	rec, err := log.Append(cmd.Context(), sched.NewBusEmitted(kind, opts.Message, opts.Origin))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record event", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(map[string]string{"event_id": rec.ID, "kind": kind})
	}
	return formatter.Success(fmt.Sprintf("recorded event %s (%s)", kind, rec.ID))
}
