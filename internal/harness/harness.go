package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/calder/wick/internal/engine"
	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
	"github.com/calder/wick/internal/testutil"
)

// Result captures the final state of a scenario run.
type Result struct {
	Scenario string
	Entries  []sched.Entry
	Events   []sched.BusEvent
	Commands []engine.CommandRequest
	// Matched records EmitEvent match counts in step order.
	Matched []int
	// LogPath is the scenario's log file, for golden comparison.
	LogPath string
}

// scriptedRunner accepts every command except those aimed at a scenario's
// fail targets.
type scriptedRunner struct {
	mu   sync.Mutex
	fail map[string]bool
	reqs []engine.CommandRequest
}

func (r *scriptedRunner) Run(_ context.Context, req engine.CommandRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	if r.fail[req.Target] {
		return fmt.Errorf("delivery to %s refused by scenario", req.Target)
	}
	return nil
}

// Run executes a scenario in dir. The engine gets a frozen clock starting
// at the scenario epoch and sequential ids (rec-NN for records, entry-NN
// for entries), so two runs of the same scenario produce identical logs.
func Run(scenario *Scenario, dir string) (*Result, error) {
	clock := sched.NewManualClock(testutil.Epoch)

	logPath := filepath.Join(dir, scenario.Name+".jsonl")
	log, err := store.Open(logPath, testutil.NewSeqGenerator("rec"), clock)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Close() }()
	if err := log.Init(); err != nil {
		return nil, fmt.Errorf("init log: %w", err)
	}

	pause, err := store.OpenPauseState(filepath.Join(dir, scenario.Name+".paused"))
	if err != nil {
		return nil, fmt.Errorf("open pause state: %w", err)
	}

	runner := &scriptedRunner{fail: map[string]bool{}}
	for _, target := range scenario.FailTargets {
		runner.fail[target] = true
	}

	eng := engine.New(log, pause,
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSeqGenerator("entry")),
		engine.WithRunner(runner),
		engine.WithNotifier(nil),
	)

	result := &Result{Scenario: scenario.Name, LogPath: logPath}
	ctx := context.Background()

	for i, step := range scenario.Steps {
		if err := applyStep(ctx, eng, clock, step, result); err != nil {
			return nil, fmt.Errorf("scenario %s step %d: %w", scenario.Name, i+1, err)
		}
	}

	result.Entries = eng.Entries(engine.EntryFilter{})
	result.Events = eng.BusEvents(engine.BusFilter{})
	result.Commands = runner.reqs
	return result, nil
}

func applyStep(ctx context.Context, eng *engine.Engine, clock *sched.ManualClock, step Step, result *Result) error {
	switch {
	case step.Create != nil:
		trigger, err := step.Create.Trigger.trigger(testutil.Epoch)
		if err != nil {
			return err
		}
		action, err := step.Create.Action.action(testutil.Epoch)
		if err != nil {
			return err
		}
		_, viol, err := eng.CreateEntry(ctx, trigger, action, step.Create.Reason)
		if err != nil {
			return err
		}
		if viol != nil {
			return fmt.Errorf("entry refused: %s", viol.Message)
		}
		return nil

	case step.Emit != nil:
		// A paused violation is expected scenario behavior: the event is
		// recorded and evaluation waits for the post-resume tick.
		matched, _, err := eng.EmitEvent(ctx, step.Emit.Kind, step.Emit.Message, step.Emit.Origin)
		if err != nil {
			return err
		}
		result.Matched = append(result.Matched, matched)
		return nil

	case step.Cancel != nil:
		return eng.CancelEntry(ctx, step.Cancel.Entry, step.Cancel.Reason)

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		clock.Advance(d)
		return nil

	case step.Tick:
		return eng.Tick(ctx)

	case step.Pause != nil:
		return eng.SetPaused(*step.Pause)

	default:
		return fmt.Errorf("empty step")
	}
}
