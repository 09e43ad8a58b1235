package engine

import (
	"time"

	"github.com/calder/wick/internal/sched"
)

// dueTimeEntries returns pending time-triggered entries whose execute_at
// is at or before now.
func dueTimeEntries(entries []sched.Entry, now time.Time) []sched.Entry {
	var due []sched.Entry
	for _, e := range entries {
		if e.Status != sched.StatusPending || e.Trigger.Type != sched.TriggerTime {
			continue
		}
		if !e.Trigger.ExecuteAt.After(now) {
			due = append(due, e)
		}
	}
	return due
}

// expiredEventEntries returns pending event-triggered entries whose
// expires_at has passed. Expiry is resolved before any match detection so
// that an entry never fires in the same pass it lapses.
func expiredEventEntries(entries []sched.Entry, now time.Time) []sched.Entry {
	var expired []sched.Entry
	for _, e := range entries {
		if e.Status != sched.StatusPending || e.Trigger.Type != sched.TriggerEvent {
			continue
		}
		if e.Trigger.ExpiresAt != nil && !e.Trigger.ExpiresAt.After(now) {
			expired = append(expired, e)
		}
	}
	return expired
}

// matchingEventEntries returns pending event-triggered entries satisfied by
// a just-emitted event of the given kind. The emitted event is expected to
// already be present in bus. In "any" mode listing the kind is enough; in
// "all" mode every required kind must have a bus event observed at or after
// the entry was created.
func matchingEventEntries(entries []sched.Entry, bus []sched.BusEvent, kind string, now time.Time) []sched.Entry {
	var matched []sched.Entry
	for _, e := range entries {
		if !liveEventEntry(e, now) || !hasKind(e.Trigger.Kinds, kind) {
			continue
		}
		if sched.NormalizeMatch(e.Trigger.Match) == sched.MatchAll && !allKindsSeen(e, bus) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// convergedEventEntries returns pending event-triggered entries whose
// conditions are already satisfied by the bus history. This catches entries
// whose events arrived while evaluation was suppressed, e.g. during a
// paused window.
func convergedEventEntries(entries []sched.Entry, bus []sched.BusEvent, now time.Time) []sched.Entry {
	var matched []sched.Entry
	for _, e := range entries {
		if !liveEventEntry(e, now) {
			continue
		}
		switch sched.NormalizeMatch(e.Trigger.Match) {
		case sched.MatchAll:
			if allKindsSeen(e, bus) {
				matched = append(matched, e)
			}
		default:
			if anyKindSeen(e, bus) {
				matched = append(matched, e)
			}
		}
	}
	return matched
}

func liveEventEntry(e sched.Entry, now time.Time) bool {
	if e.Status != sched.StatusPending || e.Trigger.Type != sched.TriggerEvent {
		return false
	}
	if e.Trigger.ExpiresAt != nil && !e.Trigger.ExpiresAt.After(now) {
		return false
	}
	return true
}

func hasKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// allKindsSeen reports whether every required kind has a bus event observed
// at or after the entry was created.
func allKindsSeen(e sched.Entry, bus []sched.BusEvent) bool {
	for _, k := range e.Trigger.Kinds {
		if !kindSeenSince(bus, k, e.CreatedAt) {
			return false
		}
	}
	return true
}

func anyKindSeen(e sched.Entry, bus []sched.BusEvent) bool {
	for _, k := range e.Trigger.Kinds {
		if kindSeenSince(bus, k, e.CreatedAt) {
			return true
		}
	}
	return false
}

func kindSeenSince(bus []sched.BusEvent, kind string, since time.Time) bool {
	for _, ev := range bus {
		if ev.Kind == kind && !ev.Timestamp.Before(since) {
			return true
		}
	}
	return false
}
