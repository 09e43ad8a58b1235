package engine

import "sync"

// queued is a single admission into the cascade queue: the entry to fire
// and the event kind that triggered it ("" for time firings).
type queued struct {
	EntryID string
	ByKind  string
}

// cascadeQueue holds entry ids awaiting execution during a drain. Admission
// is idempotent: an id enqueued twice in the same drain is fired once, no
// matter how many events matched it. Insertion order is preserved so waves
// execute deterministically.
type cascadeQueue struct {
	mu    sync.Mutex
	seen  map[string]string
	order []string
}

func newCascadeQueue() *cascadeQueue {
	return &cascadeQueue{seen: make(map[string]string)}
}

// Enqueue admits an entry id. It reports false when the id is already
// queued; the original admission's kind is kept.
func (q *cascadeQueue) Enqueue(entryID, byKind string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[entryID]; ok {
		return false
	}
	q.seen[entryID] = byKind
	q.order = append(q.order, entryID)
	return true
}

// TakeWave removes and returns everything currently queued, in insertion
// order. Ids enqueued while the wave executes form the next wave.
func (q *cascadeQueue) TakeWave() []queued {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return nil
	}
	wave := make([]queued, 0, len(q.order))
	for _, id := range q.order {
		wave = append(wave, queued{EntryID: id, ByKind: q.seen[id]})
	}
	q.seen = make(map[string]string)
	q.order = nil
	return wave
}

func (q *cascadeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
