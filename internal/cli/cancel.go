package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/engine"
)

// CancelOptions holds flags for the cancel command.
type CancelOptions struct {
	*RootOptions
	Reason string
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CancelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cancel <entry-id>",
		Short: "Cancel a pending entry",
		Long: `Cancel a pending entry. Cancellation is terminal: the entry will never
fire, and a cancelled entry cannot be revived.

Example:
  wick cancel 0195f3a2-... --reason "plans changed"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cancelEntry(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reason, "reason", "", "why the entry is cancelled")

	return cmd
}

func cancelEntry(opts *CancelOptions, entryID string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	eng, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if err := eng.CancelEntry(cmd.Context(), entryID, opts.Reason); err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			_ = formatter.Error("not_found", err.Error(), nil)
			return WrapExitError(ExitFailure, "cancel failed", err)
		case errors.Is(err, engine.ErrNotPending):
			_ = formatter.Error("not_pending", err.Error(), nil)
			return WrapExitError(ExitFailure, "cancel failed", err)
		default:
			return WrapExitError(ExitCommandError, "cancel failed", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"entry_id": entryID, "status": "cancelled"})
	}
	return formatter.Success(fmt.Sprintf("cancelled entry %s", entryID))
}
