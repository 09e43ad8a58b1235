package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/engine"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Kind  string
	Since string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List bus events",
		Long: `List bus events in emission order, optionally filtered by kind or time.

Example:
  wick events --kind tests_passed
  wick events --since 2026-03-01T12:00:00Z --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listEvents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by event kind")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only events at or after this RFC 3339 time")

	return cmd
}

func listEvents(opts *EventsOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	filter := engine.BusFilter{Kind: opts.Kind}
	if opts.Since != "" {
		since, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since time", err)
		}
		filter.Since = since
	}

	eng, cleanup, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	events := eng.BusEvents(filter)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(events)
	}

	if len(events) == 0 {
		return formatter.Success("no events")
	}
	out := cmd.OutOrStdout()
	for _, ev := range events {
		line := fmt.Sprintf("%s  %-20s", ev.Timestamp.Format(time.RFC3339), ev.Kind)
		if ev.Origin != "" {
			line += "  from " + ev.Origin
		}
		if ev.Message != "" {
			line += "  " + ev.Message
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
