package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
	"github.com/calder/wick/internal/testutil"
)

var testEpoch = testutil.Epoch

// newTestEngine builds an engine over a fresh log with a frozen clock and
// sequential entry ids (entry-01, entry-02, ...). Extra options are applied
// after the deterministic defaults, so tests can override limits or wiring.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *sched.ManualClock) {
	t.Helper()

	dir := t.TempDir()
	clock := sched.NewManualClock(testEpoch)

	log, err := store.Open(filepath.Join(dir, "schedule.jsonl"), testutil.NewSeqGenerator("rec"), clock)
	require.NoError(t, err)
	require.NoError(t, log.Init())
	t.Cleanup(func() { _ = log.Close() })

	pause, err := store.OpenPauseState(filepath.Join(dir, "paused.json"))
	require.NoError(t, err)

	defaults := []Option{
		WithClock(clock),
		WithIDGenerator(testutil.NewSeqGenerator("entry")),
		WithNotifier(nil),
	}
	return New(log, pause, append(defaults, opts...)...), clock
}

func timeTrigger(offset time.Duration) sched.Trigger {
	return sched.Trigger{Type: sched.TriggerTime, ExecuteAt: testEpoch.Add(offset)}
}

func eventTrigger(match sched.MatchMode, kinds ...string) sched.Trigger {
	return sched.Trigger{Type: sched.TriggerEvent, Kinds: kinds, Match: match}
}

func expiringEventTrigger(expiry time.Duration, kinds ...string) sched.Trigger {
	at := testEpoch.Add(expiry)
	return sched.Trigger{Type: sched.TriggerEvent, Kinds: kinds, ExpiresAt: &at}
}

func emitAction(kind string) sched.Action {
	return sched.Action{Type: sched.ActionEmit, Kind: kind, Message: "test " + kind}
}

func commandAction(target string) sched.Action {
	return sched.Action{Type: sched.ActionCommand, Target: target, Command: "prompt", Args: "check in"}
}

func cancelAction(entryID string) sched.Action {
	return sched.Action{Type: sched.ActionCancel, EntryID: entryID, Reason: "superseded"}
}

func scheduleAction(trigger sched.Trigger, next sched.Action) sched.Action {
	return sched.Action{Type: sched.ActionSchedule, NextTrigger: &trigger, Next: &next, Reason: "follow-up"}
}

// mustCreate admits an entry and fails the test on refusal or error.
func mustCreate(t *testing.T, e *Engine, trigger sched.Trigger, action sched.Action) sched.Entry {
	t.Helper()
	entry, viol, err := e.CreateEntry(context.Background(), trigger, action, "test entry")
	require.NoError(t, err)
	require.Nil(t, viol)
	return entry
}

// recordingRunner captures command requests and returns a configurable
// per-target error.
type recordingRunner struct {
	mu     sync.Mutex
	reqs   []CommandRequest
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, req CommandRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	if r.failOn != "" && req.Target == r.failOn {
		return fmt.Errorf("session %s unreachable", req.Target)
	}
	return nil
}

func (r *recordingRunner) requests() []CommandRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CommandRequest(nil), r.reqs...)
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.notes))
	for _, note := range n.notes {
		out = append(out, note.Event)
	}
	return out
}
