package harness

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calder/wick/internal/sched"
)

// Scenario defines a deterministic scheduler run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// FailTargets lists command targets whose delivery the scripted
	// runner refuses, for exercising failure paths.
	FailTargets []string `yaml:"fail_targets,omitempty"`

	// Steps is the ordered list of operations to perform.
	Steps []Step `yaml:"steps"`

	// Expect validates the final state after all steps ran.
	Expect Expectations `yaml:"expect"`
}

// Step is one scenario operation. Exactly one field must be set.
type Step struct {
	Create  *CreateStep `yaml:"create,omitempty"`
	Emit    *EmitStep   `yaml:"emit,omitempty"`
	Cancel  *CancelStep `yaml:"cancel,omitempty"`
	Advance string      `yaml:"advance,omitempty"` // duration, e.g. "1m"
	Tick    bool        `yaml:"tick,omitempty"`
	Pause   *bool       `yaml:"pause,omitempty"`
}

// CreateStep admits a new entry.
type CreateStep struct {
	Trigger TriggerSpec `yaml:"trigger"`
	Action  ActionSpec  `yaml:"action"`
	Reason  string      `yaml:"reason,omitempty"`
}

// EmitStep records a bus event and drains any cascade it triggers.
type EmitStep struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message,omitempty"`
	Origin  string `yaml:"origin,omitempty"`
}

// CancelStep cancels a pending entry by its deterministic id.
type CancelStep struct {
	Entry  string `yaml:"entry"`
	Reason string `yaml:"reason,omitempty"`
}

// TriggerSpec is the YAML form of a trigger. Times are RFC 3339 or
// "+duration" relative to the scenario epoch.
type TriggerSpec struct {
	Type      string   `yaml:"type"`
	ExecuteAt string   `yaml:"execute_at,omitempty"`
	Kinds     []string `yaml:"kinds,omitempty"`
	Match     string   `yaml:"match,omitempty"`
	ExpiresAt string   `yaml:"expires_at,omitempty"`
}

// ActionSpec is the YAML form of an action, with the schedule variant
// nesting another trigger/action pair.
type ActionSpec struct {
	Type    string `yaml:"type"`
	Target  string `yaml:"target,omitempty"`
	Command string `yaml:"command,omitempty"`
	Args    string `yaml:"args,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Message string `yaml:"message,omitempty"`
	Entry   string `yaml:"entry,omitempty"`
	Reason  string `yaml:"reason,omitempty"`

	Schedule *struct {
		Trigger TriggerSpec `yaml:"trigger"`
		Action  ActionSpec  `yaml:"action"`
	} `yaml:"schedule,omitempty"`
}

// Expectations validate the run's final state.
type Expectations struct {
	// Entries checks individual entries by id.
	Entries []EntryExpect `yaml:"entries,omitempty"`
	// Events is the expected sequence of bus-event kinds, in order.
	Events []string `yaml:"events,omitempty"`
	// Commands is the expected sequence of delivered command targets.
	Commands []string `yaml:"commands,omitempty"`
}

// EntryExpect checks one entry's terminal state.
type EntryExpect struct {
	ID             string `yaml:"id"`
	Status         string `yaml:"status"`
	DetailContains string `yaml:"detail_contains,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one step is required", s.Name)
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", s.Name, i+1, err)
		}
	}
	return &s, nil
}

func validateStep(step Step) error {
	set := 0
	if step.Create != nil {
		set++
	}
	if step.Emit != nil {
		set++
	}
	if step.Cancel != nil {
		set++
	}
	if step.Advance != "" {
		set++
	}
	if step.Tick {
		set++
	}
	if step.Pause != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of create/emit/cancel/advance/tick/pause must be set, got %d", set)
	}
	if step.Advance != "" {
		if _, err := time.ParseDuration(step.Advance); err != nil {
			return fmt.Errorf("invalid advance duration %q: %w", step.Advance, err)
		}
	}
	if step.Emit != nil && step.Emit.Kind == "" {
		return fmt.Errorf("emit step requires a kind")
	}
	if step.Cancel != nil && step.Cancel.Entry == "" {
		return fmt.Errorf("cancel step requires an entry id")
	}
	return nil
}

// trigger resolves a TriggerSpec against the scenario epoch.
func (ts TriggerSpec) trigger(epoch time.Time) (sched.Trigger, error) {
	tr := sched.Trigger{
		Type:  sched.TriggerType(ts.Type),
		Kinds: ts.Kinds,
		Match: sched.MatchMode(ts.Match),
	}
	if ts.ExecuteAt != "" {
		at, err := resolveTime(ts.ExecuteAt, epoch)
		if err != nil {
			return tr, fmt.Errorf("execute_at: %w", err)
		}
		tr.ExecuteAt = at
	}
	if ts.ExpiresAt != "" {
		at, err := resolveTime(ts.ExpiresAt, epoch)
		if err != nil {
			return tr, fmt.Errorf("expires_at: %w", err)
		}
		tr.ExpiresAt = &at
	}
	return tr, nil
}

// action resolves an ActionSpec against the scenario epoch.
func (as ActionSpec) action(epoch time.Time) (sched.Action, error) {
	a := sched.Action{
		Type:    sched.ActionType(as.Type),
		Target:  as.Target,
		Command: as.Command,
		Args:    as.Args,
		Kind:    as.Kind,
		Message: as.Message,
		EntryID: as.Entry,
		Reason:  as.Reason,
	}
	if as.Schedule != nil {
		tr, err := as.Schedule.Trigger.trigger(epoch)
		if err != nil {
			return a, fmt.Errorf("schedule trigger: %w", err)
		}
		next, err := as.Schedule.Action.action(epoch)
		if err != nil {
			return a, fmt.Errorf("schedule action: %w", err)
		}
		a.NextTrigger = &tr
		a.Next = &next
	}
	return a, nil
}

// resolveTime parses an absolute RFC 3339 time or a "+duration" offset
// from the epoch.
func resolveTime(raw string, epoch time.Time) (time.Time, error) {
	if strings.HasPrefix(raw, "+") {
		d, err := time.ParseDuration(raw[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", raw, err)
		}
		return epoch.Add(d), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	return at.UTC(), nil
}
