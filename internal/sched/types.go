package sched

import "time"

// Status is the lifecycle state of an entry.
type Status string

const (
	// StatusPending means the entry is waiting for its trigger.
	StatusPending Status = "pending"
	// StatusExecuted means the entry's action ran to completion.
	StatusExecuted Status = "executed"
	// StatusCancelled means the entry was cancelled while still pending.
	StatusCancelled Status = "cancelled"
	// StatusFailed means the entry's action ran and failed.
	StatusFailed Status = "failed"
	// StatusExpired means an event trigger's wait window elapsed unmatched.
	StatusExpired Status = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// TriggerType discriminates the trigger union.
type TriggerType string

const (
	// TriggerTime fires once wall-clock time reaches ExecuteAt.
	TriggerTime TriggerType = "time"
	// TriggerEvent fires when bus activity satisfies the match mode.
	TriggerEvent TriggerType = "event"
)

// MatchMode is the convergence policy for event triggers with multiple kinds.
type MatchMode string

const (
	// MatchAny fires on the first bus event whose kind is in Kinds.
	MatchAny MatchMode = "any"
	// MatchAll fires only when every kind in Kinds has been observed
	// since the entry was created.
	MatchAll MatchMode = "all"
)

// Trigger is the tagged union of firing conditions.
//
// Type selects the variant; only that variant's fields are meaningful:
//
//	time:  ExecuteAt
//	event: Kinds, Match, ExpiresAt (optional)
type Trigger struct {
	Type TriggerType `json:"type"`

	// ExecuteAt is the fire time for time triggers.
	ExecuteAt time.Time `json:"execute_at,omitzero"`

	// Kinds is the ordered set of required bus-event kinds.
	Kinds []string `json:"kinds,omitempty"`
	// Match is the convergence policy over Kinds. Defaults to any.
	Match MatchMode `json:"match,omitempty"`
	// ExpiresAt, when set, terminalizes a still-pending event trigger
	// as expired once it passes.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ActionType discriminates the action union.
type ActionType string

const (
	// ActionCommand invokes an external capability. May block the wave.
	ActionCommand ActionType = "command"
	// ActionEmit appends a bus event. The only source of cascade fan-out.
	ActionEmit ActionType = "emit"
	// ActionCancel cancels another pending entry.
	ActionCancel ActionType = "cancel"
	// ActionSchedule creates a brand-new entry from a nested trigger/action.
	ActionSchedule ActionType = "schedule"
)

// NewSessionTarget is the sentinel command target requesting that the
// external collaborator create a fresh session for the command.
const NewSessionTarget = "new"

// Action is the tagged union of effects.
//
// Type selects the variant; only that variant's fields are meaningful:
//
//	command:  Target, Command, Args
//	emit:     Kind, Message
//	cancel:   EntryID, Reason
//	schedule: Next, NextTrigger, Reason
//
// The schedule variant is the single recursive case: Next and NextTrigger
// describe the entry it creates. Recursion is bounded structurally, not by
// depth limits on the type — a scheduled entry can never fire inside the
// drain wave that created it.
type Action struct {
	Type ActionType `json:"type"`

	// Target names the session the command runs against, or
	// NewSessionTarget to request a fresh one.
	Target string `json:"target,omitempty"`
	// Command is the capability name passed to the external runner.
	Command string `json:"command,omitempty"`
	// Args is the opaque argument payload for the command.
	Args string `json:"args,omitempty"`

	// Kind and Message describe the bus event an emit action appends.
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`

	// EntryID is the cancellation target.
	EntryID string `json:"entry_id,omitempty"`

	// Next and NextTrigger describe the entry a schedule action creates.
	Next        *Action  `json:"action,omitempty"`
	NextTrigger *Trigger `json:"trigger,omitempty"`

	// Reason annotates cancel and schedule actions.
	Reason string `json:"reason,omitempty"`
}

// Entry is one materialized unit of scheduled work.
//
// Entries exist only as a fold over the log: they are created by a created
// record and move to a terminal status by exactly one later record.
type Entry struct {
	ID      string  `json:"id"`
	Trigger Trigger `json:"trigger"`
	Action  Action  `json:"action"`
	Status  Status  `json:"status"`
	// Reason is the creation reason supplied at admission.
	Reason string `json:"reason,omitempty"`
	// StatusDetail carries the terminal detail: the verbatim error text
	// for failed, or the cancellation reason for cancelled.
	StatusDetail string    `json:"status_detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BusEvent is one observed event on the bus. Bus events are append-only
// and never mutated; convergence checks query them by kind and time.
type BusEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
