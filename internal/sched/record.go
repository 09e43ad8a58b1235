package sched

import "time"

// RecordType discriminates the log-record union.
type RecordType string

const (
	// RecordCreated introduces a new pending entry.
	RecordCreated RecordType = "created"
	// RecordExecuted marks an entry's action as run successfully.
	RecordExecuted RecordType = "executed"
	// RecordCancelled marks a pending entry as cancelled.
	RecordCancelled RecordType = "cancelled"
	// RecordFailed marks an entry's action as run and failed.
	RecordFailed RecordType = "failed"
	// RecordExpired marks an event trigger's wait window as elapsed.
	RecordExpired RecordType = "expired"
	// RecordBusEmitted appends a bus event.
	RecordBusEmitted RecordType = "bus_emitted"
)

// Record is one line of the append-only log — the only persisted unit.
//
// A record is immutable once appended; an entry's current state is purely a
// left-fold of its records in log order. The union is encoded as a flat
// struct with a type tag:
//
//	created:                          EntryID, Trigger, Action, Reason
//	executed/cancelled/failed/expired: EntryID, Detail (optional)
//	bus_emitted:                      Kind, Message, Origin
//
// ID and At are assigned by the log at append time, never by callers.
type Record struct {
	ID   string     `json:"id"`
	Type RecordType `json:"type"`
	At   time.Time  `json:"at"`

	// EntryID references the entry this record concerns. Absent for
	// bus_emitted records.
	EntryID string `json:"entry_id,omitempty"`

	// Trigger, Action, and Reason are present only on created records.
	Trigger *Trigger `json:"trigger,omitempty"`
	Action  *Action  `json:"action,omitempty"`
	Reason  string   `json:"reason,omitempty"`

	// Detail carries the verbatim failure text or cancellation reason on
	// terminal records.
	Detail string `json:"detail,omitempty"`

	// Kind, Message, and Origin are present only on bus_emitted records.
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Origin  string `json:"origin,omitempty"`
}

// TerminalStatus maps a terminal record type to the entry status it
// establishes. Returns "" for record types that are not terminal
// transitions (created, bus_emitted).
func (t RecordType) TerminalStatus() Status {
	switch t {
	case RecordExecuted:
		return StatusExecuted
	case RecordCancelled:
		return StatusCancelled
	case RecordFailed:
		return StatusFailed
	case RecordExpired:
		return StatusExpired
	default:
		return ""
	}
}

// NewCreated builds a created record for the given entry definition.
// The log assigns ID and At on append.
func NewCreated(entryID string, trigger Trigger, action Action, reason string) Record {
	return Record{
		Type:    RecordCreated,
		EntryID: entryID,
		Trigger: &trigger,
		Action:  &action,
		Reason:  reason,
	}
}

// NewTerminal builds a terminal-transition record of the given type.
func NewTerminal(t RecordType, entryID, detail string) Record {
	return Record{Type: t, EntryID: entryID, Detail: detail}
}

// NewBusEmitted builds a bus_emitted record.
func NewBusEmitted(kind, message, origin string) Record {
	return Record{Type: RecordBusEmitted, Kind: kind, Message: message, Origin: origin}
}
