package harness

import (
	"fmt"
	"strings"

	"github.com/calder/wick/internal/sched"
)

// Verify checks a run's final state against the scenario's expectations,
// returning the first mismatch.
func Verify(result *Result, expect Expectations) error {
	byID := make(map[string]sched.Entry, len(result.Entries))
	for _, e := range result.Entries {
		byID[e.ID] = e
	}

	for _, want := range expect.Entries {
		got, ok := byID[want.ID]
		if !ok {
			return fmt.Errorf("entry %s: not found", want.ID)
		}
		if string(got.Status) != want.Status {
			return fmt.Errorf("entry %s: status %s, want %s", want.ID, got.Status, want.Status)
		}
		if want.DetailContains != "" && !strings.Contains(got.StatusDetail, want.DetailContains) {
			return fmt.Errorf("entry %s: detail %q does not contain %q", want.ID, got.StatusDetail, want.DetailContains)
		}
	}

	if expect.Events != nil {
		var kinds []string
		for _, ev := range result.Events {
			kinds = append(kinds, ev.Kind)
		}
		if err := matchSequence("events", kinds, expect.Events); err != nil {
			return err
		}
	}

	if expect.Commands != nil {
		var targets []string
		for _, req := range result.Commands {
			targets = append(targets, req.Target)
		}
		if err := matchSequence("commands", targets, expect.Commands); err != nil {
			return err
		}
	}

	return nil
}

func matchSequence(what string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: got %v, want %v", what, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%s[%d]: got %s, want %s", what, i, got[i], want[i])
		}
	}
	return nil
}
