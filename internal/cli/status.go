package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder/wick/internal/engine"
	"github.com/calder/wick/internal/sched"
)

// StatusSummary is the status command's payload.
type StatusSummary struct {
	Paused    bool           `json:"paused"`
	Entries   map[string]int `json:"entries"`
	BusEvents int            `json:"bus_events"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize scheduler state",
		Long: `Print entry counts by status, the number of recorded bus events, and
whether the scheduler is paused.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(rootOpts, cmd)
		},
	}
}

func showStatus(opts *RootOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	eng, cleanup, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	summary := StatusSummary{
		Paused:  eng.Paused(),
		Entries: map[string]int{},
	}
	for _, e := range eng.Entries(engine.EntryFilter{}) {
		summary.Entries[string(e.Status)]++
	}
	summary.BusEvents = len(eng.BusEvents(engine.BusFilter{}))

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(summary)
	}

	out := cmd.OutOrStdout()
	state := "running"
	if summary.Paused {
		state = "paused"
	}
	fmt.Fprintf(out, "scheduler: %s\n", state)
	for _, status := range []sched.Status{
		sched.StatusPending, sched.StatusExecuted, sched.StatusCancelled,
		sched.StatusFailed, sched.StatusExpired,
	} {
		if n := summary.Entries[string(status)]; n > 0 {
			fmt.Fprintf(out, "%-10s %d\n", status, n)
		}
	}
	fmt.Fprintf(out, "bus events %d\n", summary.BusEvents)
	return nil
}
