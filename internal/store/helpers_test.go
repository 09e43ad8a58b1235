package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/calder/wick/internal/sched"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// openTestLog creates an initialized log in a temp dir with deterministic
// ids (rec-1, rec-2, ...) and a manual clock starting at testEpoch.
func openTestLog(t *testing.T) (*Log, *sched.ManualClock) {
	t.Helper()

	ids := make([]string, 0, 64)
	for i := 1; i <= 64; i++ {
		ids = append(ids, "rec-"+string(rune('0'+i/10))+string(rune('0'+i%10)))
	}
	clock := sched.NewManualClock(testEpoch)

	l, err := Open(filepath.Join(t.TempDir(), "wick.log"), sched.NewFixedGenerator(ids...), clock)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	if err := l.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return l, clock
}

// timeTrigger builds a time trigger firing at the given offset from testEpoch.
func timeTrigger(offset time.Duration) sched.Trigger {
	return sched.Trigger{Type: sched.TriggerTime, ExecuteAt: testEpoch.Add(offset)}
}

// emitAction builds an emit action for the given kind.
func emitAction(kind string) sched.Action {
	return sched.Action{Type: sched.ActionEmit, Kind: kind}
}
