package sched

import "fmt"

// ValidateTrigger checks that a trigger carries exactly the fields its
// variant requires. Returns nil for a well-formed trigger.
func ValidateTrigger(tr Trigger) error {
	switch tr.Type {
	case TriggerTime:
		if tr.ExecuteAt.IsZero() {
			return fmt.Errorf("time trigger requires execute_at")
		}
		if len(tr.Kinds) > 0 {
			return fmt.Errorf("time trigger must not list event kinds")
		}
		return nil

	case TriggerEvent:
		if len(tr.Kinds) == 0 {
			return fmt.Errorf("event trigger requires at least one kind")
		}
		for i, k := range tr.Kinds {
			if k == "" {
				return fmt.Errorf("event trigger kind %d is empty", i)
			}
		}
		switch tr.Match {
		case MatchAny, MatchAll, "":
		default:
			return fmt.Errorf("unknown match mode %q", tr.Match)
		}
		return nil

	default:
		return fmt.Errorf("unknown trigger type %q", tr.Type)
	}
}

// ValidateAction checks that an action carries exactly the fields its
// variant requires. Schedule actions are validated recursively, so a
// malformed nested definition is rejected at admission, not at fire time.
func ValidateAction(a Action) error {
	switch a.Type {
	case ActionCommand:
		if a.Target == "" {
			return fmt.Errorf("command action requires a target")
		}
		if a.Command == "" {
			return fmt.Errorf("command action requires a command name")
		}
		return nil

	case ActionEmit:
		if a.Kind == "" {
			return fmt.Errorf("emit action requires a kind")
		}
		return nil

	case ActionCancel:
		if a.EntryID == "" {
			return fmt.Errorf("cancel action requires a target entry id")
		}
		return nil

	case ActionSchedule:
		if a.Next == nil || a.NextTrigger == nil {
			return fmt.Errorf("schedule action requires a nested action and trigger")
		}
		if err := ValidateTrigger(*a.NextTrigger); err != nil {
			return fmt.Errorf("schedule action nested trigger: %w", err)
		}
		if err := ValidateAction(*a.Next); err != nil {
			return fmt.Errorf("schedule action nested action: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// NormalizeMatch returns the effective match mode, defaulting to any.
func NormalizeMatch(m MatchMode) MatchMode {
	if m == "" {
		return MatchAny
	}
	return m
}
