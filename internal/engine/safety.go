package engine

import (
	"fmt"
	"time"

	"github.com/calder/wick/internal/sched"
)

// Rule identifies which safety limit a rejected admission tripped.
type Rule string

const (
	RuleMaxPending    Rule = "max_pending"
	RuleTargetPending Rule = "target_pending"
	RuleTimeSpacing   Rule = "time_spacing"
	RuleKindPending   Rule = "kind_pending"
	RulePaused        Rule = "paused"
)

// Violation describes why an admission was refused. A violation is an
// expected outcome, not an error: the caller reports it and the log is
// left untouched (for direct creations) or gains a failed record (for
// cascade-scheduled entries).
type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// Limits bounds what the scheduler will accept as pending work.
type Limits struct {
	MaxPending            int
	MaxPendingPerTarget   int
	MinTimeTriggerSpacing time.Duration
	MaxPendingPerKind     int
}

// DefaultLimits returns the stock admission limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPending:            50,
		MaxPendingPerTarget:   10,
		MinTimeTriggerSpacing: 30 * time.Second,
		MaxPendingPerKind:     10,
	}
}

type validator struct {
	limits Limits
}

func newValidator(limits Limits) *validator {
	return &validator{limits: limits}
}

// checkCreate admits or refuses a new entry against the current pending
// population. The first tripped rule wins; rules are checked from the
// coarsest (total pending) to the most specific.
func (v *validator) checkCreate(entries []sched.Entry, trigger sched.Trigger, action sched.Action) *Violation {
	pending := 0
	for _, e := range entries {
		if e.Status == sched.StatusPending {
			pending++
		}
	}
	if pending >= v.limits.MaxPending {
		return &Violation{
			Rule:    RuleMaxPending,
			Message: fmt.Sprintf("pending entry limit reached (%d)", v.limits.MaxPending),
		}
	}

	if action.Type == sched.ActionCommand {
		if viol := v.checkTarget(entries, action.Target); viol != nil {
			return viol
		}
	}

	switch trigger.Type {
	case sched.TriggerTime:
		return v.checkSpacing(entries, trigger.ExecuteAt)
	case sched.TriggerEvent:
		return v.checkKinds(entries, trigger.Kinds)
	}
	return nil
}

func (v *validator) checkTarget(entries []sched.Entry, target string) *Violation {
	n := 0
	for _, e := range entries {
		if e.Status == sched.StatusPending && e.Action.Type == sched.ActionCommand && e.Action.Target == target {
			n++
		}
	}
	if n >= v.limits.MaxPendingPerTarget {
		return &Violation{
			Rule:    RuleTargetPending,
			Message: fmt.Sprintf("target %q already has %d pending commands", target, n),
		}
	}
	return nil
}

func (v *validator) checkSpacing(entries []sched.Entry, at time.Time) *Violation {
	for _, e := range entries {
		if e.Status != sched.StatusPending || e.Trigger.Type != sched.TriggerTime {
			continue
		}
		gap := at.Sub(e.Trigger.ExecuteAt)
		if gap < 0 {
			gap = -gap
		}
		if gap < v.limits.MinTimeTriggerSpacing {
			return &Violation{
				Rule: RuleTimeSpacing,
				Message: fmt.Sprintf("execute_at within %s of pending entry %s",
					v.limits.MinTimeTriggerSpacing, e.ID),
			}
		}
	}
	return nil
}

func (v *validator) checkKinds(entries []sched.Entry, kinds []string) *Violation {
	for _, kind := range kinds {
		n := 0
		for _, e := range entries {
			if e.Status == sched.StatusPending && e.Trigger.Type == sched.TriggerEvent && hasKind(e.Trigger.Kinds, kind) {
				n++
			}
		}
		if n >= v.limits.MaxPendingPerKind {
			return &Violation{
				Rule:    RuleKindPending,
				Message: fmt.Sprintf("event kind %q already has %d pending watchers", kind, n),
			}
		}
	}
	return nil
}
