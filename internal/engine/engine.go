package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
)

const (
	// DefaultTickInterval is how often the scheduler wakes to evaluate
	// pending entries.
	DefaultTickInterval = 5 * time.Second

	// DefaultMaxCascadeDepth bounds how many waves a single drain may
	// run. Entries still queued at the cap are left for the next tick.
	DefaultMaxCascadeDepth = 8
)

// Engine drives the scheduler: it admits entries, evaluates triggers on a
// tick, and drains cascades. Exactly one Engine should own a log at a time.
type Engine struct {
	log      *store.Log
	pause    *store.PauseState
	check    *validator
	queue    *cascadeQueue
	exec     *executor
	clock    sched.Clock
	ids      sched.IDGenerator
	notifier Notifier

	tickInterval time.Duration
	maxDepth     int

	// runMu serializes trigger evaluation and drains. Tick fires skip
	// rather than queue behind a slow drain.
	runMu sync.Mutex
}

// Option adjusts Engine construction.
type Option func(*Engine)

func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickInterval = d }
}

func WithMaxCascadeDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

func WithLimits(l Limits) Option {
	return func(e *Engine) { e.check = newValidator(l) }
}

func WithClock(c sched.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithIDGenerator(g sched.IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

func WithRunner(r CommandRunner) Option {
	return func(e *Engine) { e.exec.runner = r }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// New builds an Engine over an initialized log and pause state.
func New(log *store.Log, pause *store.PauseState, opts ...Option) *Engine {
	e := &Engine{
		log:          log,
		pause:        pause,
		check:        newValidator(DefaultLimits()),
		queue:        newCascadeQueue(),
		exec:         &executor{log: log, runner: UnavailableRunner{}},
		clock:        sched.SystemClock{},
		ids:          sched.UUIDv7Generator{},
		notifier:     LogNotifier{},
		tickInterval: DefaultTickInterval,
		maxDepth:     DefaultMaxCascadeDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.exec.log = e.log
	e.exec.validator = e.check
	e.exec.ids = e.ids
	e.exec.clock = e.clock
	e.exec.notifier = e.notifier
	return e
}

// CreateEntry validates and admits a new entry. A safety refusal comes back
// as a Violation with a nil error; the log gains nothing in that case.
func (e *Engine) CreateEntry(ctx context.Context, trigger sched.Trigger, action sched.Action, reason string) (sched.Entry, *Violation, error) {
	if err := sched.ValidateTrigger(trigger); err != nil {
		return sched.Entry{}, nil, err
	}
	if err := sched.ValidateAction(action); err != nil {
		return sched.Entry{}, nil, err
	}
	if viol := e.check.checkCreate(e.log.Entries(), trigger, action); viol != nil {
		slog.Info("entry refused", "rule", viol.Rule, "message", viol.Message)
		return sched.Entry{}, viol, nil
	}

	id := e.ids.Generate()
	if _, err := e.log.Append(ctx, sched.NewCreated(id, trigger, action, reason)); err != nil {
		return sched.Entry{}, nil, fmt.Errorf("append created record: %w", err)
	}
	entry, ok := e.log.Entry(id)
	if !ok {
		return sched.Entry{}, nil, fmt.Errorf("entry %s missing after append", id)
	}
	slog.Info("entry created", "entry_id", id, "trigger", trigger.Type, "action", action.Type)
	notify(e.notifier, Notification{Event: NotifyCreated, EntryID: id, Detail: reason})
	return entry, nil, nil
}

// CancelEntry marks a pending entry cancelled.
func (e *Engine) CancelEntry(ctx context.Context, entryID, reason string) error {
	entry, ok := e.log.Entry(entryID)
	if !ok {
		return fmt.Errorf("cancel %s: %w", entryID, ErrNotFound)
	}
	if entry.Status.Terminal() {
		return fmt.Errorf("cancel %s (status %s): %w", entryID, entry.Status, ErrNotPending)
	}
	if _, err := e.log.Append(ctx, sched.NewTerminal(sched.RecordCancelled, entryID, reason)); err != nil {
		return fmt.Errorf("append cancelled record: %w", err)
	}
	slog.Info("entry cancelled", "entry_id", entryID, "reason", reason)
	notify(e.notifier, Notification{Event: NotifyCancelled, EntryID: entryID, Detail: reason})
	return nil
}

// EmitEvent appends a bus event and immediately drains any cascade it
// triggers, returning how many entries the event matched. While paused the
// event is still recorded but nothing is evaluated; that comes back as a
// paused violation so the caller can tell deferral from a miss.
func (e *Engine) EmitEvent(ctx context.Context, kind, message, origin string) (int, *Violation, error) {
	if kind == "" {
		return 0, nil, fmt.Errorf("event kind is required")
	}
	if _, err := e.log.Append(ctx, sched.NewBusEmitted(kind, message, origin)); err != nil {
		return 0, nil, fmt.Errorf("append bus event: %w", err)
	}
	notify(e.notifier, Notification{Event: NotifyEmitted, Kind: kind, Detail: message})
	if e.pause.Paused() {
		slog.Info("event recorded while paused, evaluation deferred", "kind", kind)
		return 0, &Violation{Rule: RulePaused, Message: "scheduler paused, evaluation deferred"}, nil
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	now := e.clock.Now()
	if err := e.expireLapsed(ctx, now); err != nil {
		return 0, nil, err
	}
	matched := 0
	for _, m := range matchingEventEntries(e.log.Entries(), e.log.BusEvents(), kind, now) {
		if e.queue.Enqueue(m.ID, kind) {
			matched++
		}
	}
	e.drain(ctx)
	return matched, nil, nil
}

// Tick runs one evaluation pass: lapse expired entries, queue due and
// converged ones, then drain. Overlapping invocations skip instead of
// stacking up. Per-entry failures are logged, never returned.
func (e *Engine) Tick(ctx context.Context) error {
	if e.pause.Paused() {
		slog.Debug("tick skipped, scheduler paused")
		return nil
	}
	if !e.runMu.TryLock() {
		slog.Warn("tick skipped, previous evaluation still running")
		return nil
	}
	defer e.runMu.Unlock()

	now := e.clock.Now()
	if err := e.expireLapsed(ctx, now); err != nil {
		return err
	}

	entries := e.log.Entries()
	for _, d := range dueTimeEntries(entries, now) {
		e.queue.Enqueue(d.ID, "")
	}
	for _, m := range convergedEventEntries(entries, e.log.BusEvents(), now) {
		e.queue.Enqueue(m.ID, latestKind(e.log.BusEvents(), m))
	}

	e.drain(ctx)
	return nil
}

// Run ticks at the configured interval until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("scheduler running", "interval", e.tickInterval, "log", e.log.Path())
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				slog.Error("tick failed", "error", err)
			}
		}
	}
}

// SetPaused toggles the pause gate.
func (e *Engine) SetPaused(paused bool) error {
	if err := e.pause.SetPaused(paused); err != nil {
		return err
	}
	slog.Info("pause state changed", "paused", paused)
	return nil
}

func (e *Engine) Paused() bool { return e.pause.Paused() }

// EntryFilter narrows Entries output. Zero value means everything.
type EntryFilter struct {
	Statuses []sched.Status
	Limit    int
}

func (e *Engine) Entries(f EntryFilter) []sched.Entry {
	all := e.log.Entries()
	var out []sched.Entry
	for _, entry := range all {
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, entry.Status) {
			continue
		}
		out = append(out, entry)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func (e *Engine) Entry(id string) (sched.Entry, bool) { return e.log.Entry(id) }

// BusFilter narrows BusEvents output. Zero value means everything.
type BusFilter struct {
	Kind  string
	Since time.Time
}

func (e *Engine) BusEvents(f BusFilter) []sched.BusEvent {
	var out []sched.BusEvent
	for _, ev := range e.log.BusEvents() {
		if f.Kind != "" && ev.Kind != f.Kind {
			continue
		}
		if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// expireLapsed terminalizes event entries past their deadline. Runs before
// any match detection so a lapsed entry can never fire.
func (e *Engine) expireLapsed(ctx context.Context, now time.Time) error {
	for _, exp := range expiredEventEntries(e.log.Entries(), now) {
		detail := fmt.Sprintf("expired at %s", exp.Trigger.ExpiresAt.UTC().Format(time.RFC3339))
		if _, err := e.log.Append(ctx, sched.NewTerminal(sched.RecordExpired, exp.ID, detail)); err != nil {
			return fmt.Errorf("append expired record: %w", err)
		}
		slog.Info("entry expired", "entry_id", exp.ID)
		notify(e.notifier, Notification{Event: NotifyExpired, EntryID: exp.ID, Detail: detail})
	}
	return nil
}

// drain executes queued entries in breadth-first waves until the queue is
// empty or the depth cap is hit. Caller must hold runMu.
//
// Only entries that existed when the drain began may join follow-up waves:
// an entry created by a schedule action mid-drain waits for the next
// tick's due/match evaluation, no matter what its siblings emit.
func (e *Engine) drain(ctx context.Context) {
	eligible := make(map[string]bool)
	for _, entry := range e.log.Entries() {
		eligible[entry.ID] = true
	}

	for depth := 0; depth < e.maxDepth; depth++ {
		wave := e.queue.TakeWave()
		if len(wave) == 0 {
			return
		}
		var emitted []string
		for _, q := range wave {
			entry, ok := e.log.Entry(q.EntryID)
			if !ok || entry.Status.Terminal() {
				continue
			}
			kinds, err := e.exec.Execute(ctx, entry, q.ByKind)
			if err != nil {
				slog.Error("entry execution aborted", "entry_id", entry.ID, "error", err)
				continue
			}
			emitted = append(emitted, kinds...)
		}
		now := e.clock.Now()
		for _, kind := range emitted {
			for _, m := range matchingEventEntries(e.log.Entries(), e.log.BusEvents(), kind, now) {
				if !eligible[m.ID] {
					continue
				}
				e.queue.Enqueue(m.ID, kind)
			}
		}
	}
	if n := e.queue.Len(); n > 0 {
		slog.Warn("cascade depth cap reached", "deferred", n, "max_depth", e.maxDepth)
	}
}

func hasStatus(statuses []sched.Status, s sched.Status) bool {
	for _, want := range statuses {
		if want == s {
			return true
		}
	}
	return false
}

// latestKind picks the most recent bus kind that satisfies an entry, for
// attribution when a converged entry is queued at tick time.
func latestKind(bus []sched.BusEvent, e sched.Entry) string {
	kind := ""
	var at time.Time
	for _, ev := range bus {
		if !hasKind(e.Trigger.Kinds, ev.Kind) || ev.Timestamp.Before(e.CreatedAt) {
			continue
		}
		if kind == "" || !ev.Timestamp.Before(at) {
			kind = ev.Kind
			at = ev.Timestamp
		}
	}
	return kind
}
