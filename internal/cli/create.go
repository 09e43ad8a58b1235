package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/sched"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Trigger string
	Action  string
	Reason  string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a scheduled entry",
		Long: `Create a scheduled entry from a trigger and an action, both given as
JSON. The entry is validated, checked against the safety limits, and
appended to the log as pending.

Example:
  wick create \
    --trigger '{"type":"time","execute_at":"2026-03-01T15:00:00Z"}' \
    --action '{"type":"command","target":"dev","command":"prompt","args":"check CI"}' \
    --reason "afternoon check-in"

  wick create \
    --trigger '{"type":"event","kinds":["tests_passed","review_done"],"match":"all"}' \
    --action '{"type":"emit","kind":"merge_ready"}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createEntry(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Trigger, "trigger", "", "trigger definition as JSON (required)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "action definition as JSON (required)")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "why this entry exists")
	_ = cmd.MarkFlagRequired("trigger")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

func createEntry(opts *CreateOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	var trigger sched.Trigger
	if err := json.Unmarshal([]byte(opts.Trigger), &trigger); err != nil {
		return WrapExitError(ExitCommandError, "invalid --trigger JSON", err)
	}
	var action sched.Action
	if err := json.Unmarshal([]byte(opts.Action), &action); err != nil {
		return WrapExitError(ExitCommandError, "invalid --action JSON", err)
	}

	eng, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	entry, viol, err := eng.CreateEntry(cmd.Context(), trigger, action, opts.Reason)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create entry", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if viol != nil {
		_ = formatter.Error(string(viol.Rule), viol.Message, nil)
		return NewExitError(ExitFailure, "entry refused: "+viol.Message)
	}

	if opts.Format == "json" {
		return formatter.Success(entry)
	}
	return formatter.Success(fmt.Sprintf("created entry %s (%s trigger, %s action)",
		entry.ID, entry.Trigger.Type, entry.Action.Type))
}
