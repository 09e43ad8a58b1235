package engine

import (
	"context"
	"fmt"

	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/store"
)

// executor resolves a firing entry's action against the log. One entry's
// failure never touches another: action failures become failed records,
// and only log append errors propagate to the caller.
type executor struct {
	log       *store.Log
	validator *validator
	ids       sched.IDGenerator
	clock     sched.Clock
	runner    CommandRunner
	notifier  Notifier
}

// Execute fires a single entry and returns the event kinds it emitted, so
// the drain can match them against remaining watchers. byKind names the
// bus-event kind that triggered the firing ("" for time firings) and is
// carried on the terminal notification for attribution.
func (x *executor) Execute(ctx context.Context, e sched.Entry, byKind string) ([]string, error) {
	switch e.Action.Type {
	case sched.ActionCommand:
		return nil, x.runCommand(ctx, e, byKind)
	case sched.ActionEmit:
		return x.emit(ctx, e, byKind)
	case sched.ActionCancel:
		return nil, x.cancel(ctx, e, byKind)
	case sched.ActionSchedule:
		return nil, x.schedule(ctx, e, byKind)
	default:
		return nil, x.fail(ctx, e.ID, fmt.Sprintf("unknown action type %q", e.Action.Type), byKind)
	}
}

func (x *executor) runCommand(ctx context.Context, e sched.Entry, byKind string) error {
	req := CommandRequest{
		Target:     e.Action.Target,
		Command:    e.Action.Command,
		Args:       e.Action.Args,
		NewSession: e.Action.Target == sched.NewSessionTarget,
	}
	if err := x.runner.Run(ctx, req); err != nil {
		return x.fail(ctx, e.ID, err.Error(), byKind)
	}
	return x.execute(ctx, e.ID, fmt.Sprintf("command delivered to %s", e.Action.Target), byKind)
}

func (x *executor) emit(ctx context.Context, e sched.Entry, byKind string) ([]string, error) {
	_, err := x.log.Append(ctx, sched.NewBusEmitted(e.Action.Kind, e.Action.Message, e.ID))
	if err != nil {
		return nil, err
	}
	notify(x.notifier, Notification{Event: NotifyEmitted, Kind: e.Action.Kind, Detail: e.Action.Message})
	if err := x.execute(ctx, e.ID, fmt.Sprintf("emitted %s", e.Action.Kind), byKind); err != nil {
		return nil, err
	}
	return []string{e.Action.Kind}, nil
}

func (x *executor) cancel(ctx context.Context, e sched.Entry, byKind string) error {
	target, ok := x.log.Entry(e.Action.EntryID)
	switch {
	case !ok:
		return x.execute(ctx, e.ID, fmt.Sprintf("cancel target %s not found", e.Action.EntryID), byKind)
	case target.Status.Terminal():
		return x.execute(ctx, e.ID, fmt.Sprintf("cancel target %s already %s", target.ID, target.Status), byKind)
	}
	if _, err := x.log.Append(ctx, sched.NewTerminal(sched.RecordCancelled, target.ID, e.Action.Reason)); err != nil {
		return err
	}
	notify(x.notifier, Notification{Event: NotifyCancelled, EntryID: target.ID, Detail: e.Action.Reason})
	return x.execute(ctx, e.ID, fmt.Sprintf("cancelled %s", target.ID), byKind)
}

// schedule creates a new entry from a firing one. The nested entry passes
// through the same admission checks as a direct creation; a refusal fails
// the invoking entry instead of silently dropping the request.
func (x *executor) schedule(ctx context.Context, e sched.Entry, byKind string) error {
	trigger := *e.Action.NextTrigger
	action := *e.Action.Next
	if viol := x.validator.checkCreate(x.log.Entries(), trigger, action); viol != nil {
		return x.fail(ctx, e.ID, fmt.Sprintf("scheduled entry refused: %s", viol.Message), byKind)
	}
	id := x.ids.Generate()
	if _, err := x.log.Append(ctx, sched.NewCreated(id, trigger, action, e.Action.Reason)); err != nil {
		return err
	}
	notify(x.notifier, Notification{Event: NotifyCreated, EntryID: id, Detail: e.Action.Reason})
	return x.execute(ctx, e.ID, fmt.Sprintf("scheduled %s", id), byKind)
}

func (x *executor) execute(ctx context.Context, entryID, detail, byKind string) error {
	if _, err := x.log.Append(ctx, sched.NewTerminal(sched.RecordExecuted, entryID, detail)); err != nil {
		return err
	}
	notify(x.notifier, Notification{Event: NotifyExecuted, EntryID: entryID, Kind: byKind, Detail: detail})
	return nil
}

func (x *executor) fail(ctx context.Context, entryID, detail, byKind string) error {
	if _, err := x.log.Append(ctx, sched.NewTerminal(sched.RecordFailed, entryID, detail)); err != nil {
		return err
	}
	notify(x.notifier, Notification{Event: NotifyFailed, EntryID: entryID, Kind: byKind, Detail: detail})
	return nil
}
