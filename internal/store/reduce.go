package store

import "github.com/calder/wick/internal/sched"

// cache is the materialized fold of the log: current entries keyed by id,
// plus the full bus-event history in log order.
//
// The cache is owned by Log; all access goes through Log's mutex.
type cache struct {
	entries map[string]*sched.Entry
	order   []string // entry ids in creation order
	bus     []sched.BusEvent
}

func newCache() *cache {
	return &cache{entries: make(map[string]*sched.Entry)}
}

// apply folds one record into the cache. Records that cannot apply —
// duplicate creations, transitions on unknown ids, transitions out of a
// terminal state — are ignored, keeping the fold total over any log.
func (c *cache) apply(rec sched.Record) {
	switch rec.Type {
	case sched.RecordCreated:
		if rec.EntryID == "" || rec.Trigger == nil || rec.Action == nil {
			return
		}
		if _, exists := c.entries[rec.EntryID]; exists {
			// At most one created record per id; later ones are noise.
			return
		}
		c.entries[rec.EntryID] = &sched.Entry{
			ID:        rec.EntryID,
			Trigger:   *rec.Trigger,
			Action:    *rec.Action,
			Status:    sched.StatusPending,
			Reason:    rec.Reason,
			CreatedAt: rec.At,
		}
		c.order = append(c.order, rec.EntryID)

	case sched.RecordExecuted, sched.RecordCancelled, sched.RecordFailed, sched.RecordExpired:
		entry, ok := c.entries[rec.EntryID]
		if !ok {
			return
		}
		if entry.Status.Terminal() {
			// The first terminal record wins; no transition leaves
			// a terminal state.
			return
		}
		entry.Status = rec.Type.TerminalStatus()
		entry.StatusDetail = rec.Detail

	case sched.RecordBusEmitted:
		c.bus = append(c.bus, sched.BusEvent{
			ID:        rec.ID,
			Kind:      rec.Kind,
			Message:   rec.Message,
			Origin:    rec.Origin,
			Timestamp: rec.At,
		})
	}
}

func (c *cache) entry(id string) (sched.Entry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return sched.Entry{}, false
	}
	return *e, true
}

func (c *cache) entriesSnapshot() []sched.Entry {
	out := make([]sched.Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.entries[id])
	}
	return out
}

func (c *cache) busSnapshot() []sched.BusEvent {
	out := make([]sched.BusEvent, len(c.bus))
	copy(out, c.bus)
	return out
}
