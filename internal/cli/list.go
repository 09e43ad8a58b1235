package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/engine"
	"github.com/calder/wick/internal/sched"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Statuses []string
	Limit    int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Long: `List entries in creation order, optionally filtered by status.

Example:
  wick list --status pending
  wick list --status failed --status expired --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listEntries(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Statuses, "status", nil, "filter by status (repeatable)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to print (0 = all)")

	return cmd
}

func listEntries(opts *ListOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	filter := engine.EntryFilter{Limit: opts.Limit}
	for _, s := range opts.Statuses {
		status := sched.Status(s)
		switch status {
		case sched.StatusPending, sched.StatusExecuted, sched.StatusCancelled,
			sched.StatusFailed, sched.StatusExpired:
			filter.Statuses = append(filter.Statuses, status)
		default:
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown status %q", s))
		}
	}

	eng, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	entries := eng.Entries(filter)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		return formatter.Success("no entries")
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-9s  %-28s  %s\n", e.ID, e.Status, triggerSummary(e.Trigger), actionSummary(e.Action))
		if opts.Verbose && e.StatusDetail != "" {
			fmt.Fprintf(out, "  detail: %s\n", e.StatusDetail)
		}
	}
	return nil
}

func triggerSummary(tr sched.Trigger) string {
	switch tr.Type {
	case sched.TriggerTime:
		return "at " + tr.ExecuteAt.Format("2006-01-02 15:04:05")
	case sched.TriggerEvent:
		s := fmt.Sprintf("on %s %s", sched.NormalizeMatch(tr.Match), strings.Join(tr.Kinds, ","))
		if tr.ExpiresAt != nil {
			s += " until " + tr.ExpiresAt.Format("15:04:05")
		}
		return s
	default:
		return string(tr.Type)
	}
}

func actionSummary(a sched.Action) string {
	switch a.Type {
	case sched.ActionCommand:
		return fmt.Sprintf("command %s -> %s", a.Command, a.Target)
	case sched.ActionEmit:
		return "emit " + a.Kind
	case sched.ActionCancel:
		return "cancel " + a.EntryID
	case sched.ActionSchedule:
		if a.Next != nil {
			return "schedule " + string(a.Next.Type)
		}
		return "schedule"
	default:
		return string(a.Type)
	}
}
