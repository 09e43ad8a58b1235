package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCascadeQueue_EnqueueIsIdempotent(t *testing.T) {
	q := newCascadeQueue()

	assert.True(t, q.Enqueue("a", "tests_passed"))
	assert.False(t, q.Enqueue("a", "review_done"))
	assert.Equal(t, 1, q.Len())

	wave := q.TakeWave()
	assert.Equal(t, []queued{{EntryID: "a", ByKind: "tests_passed"}}, wave)
}

func TestCascadeQueue_PreservesInsertionOrder(t *testing.T) {
	q := newCascadeQueue()
	q.Enqueue("c", "")
	q.Enqueue("a", "x")
	q.Enqueue("b", "")

	wave := q.TakeWave()
	assert.Equal(t, []queued{
		{EntryID: "c"},
		{EntryID: "a", ByKind: "x"},
		{EntryID: "b"},
	}, wave)
}

func TestCascadeQueue_TakeWaveClears(t *testing.T) {
	q := newCascadeQueue()
	q.Enqueue("a", "")
	q.TakeWave()

	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.TakeWave())

	// The same id may be re-admitted in a later wave; the pending guard
	// at execution time is what enforces at-most-one firing.
	assert.True(t, q.Enqueue("a", ""))
}
