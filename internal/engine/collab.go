package engine

import (
	"context"
	"errors"
	"log/slog"
)

// CommandRequest is a resolved command action ready for delivery to an
// agent session.
type CommandRequest struct {
	Target     string
	Command    string
	Args       string
	NewSession bool
}

// CommandRunner delivers commands to agent sessions. Implementations are
// provided by the embedding program; the engine only records whether the
// delivery succeeded.
type CommandRunner interface {
	Run(ctx context.Context, req CommandRequest) error
}

// RunnerFunc adapts a function to the CommandRunner interface.
type RunnerFunc func(ctx context.Context, req CommandRequest) error

func (f RunnerFunc) Run(ctx context.Context, req CommandRequest) error {
	return f(ctx, req)
}

// UnavailableRunner is the default runner: it refuses every command. A
// deployment that wants command actions to do anything must wire a real
// runner; refusing loudly beats pretending the command was delivered.
type UnavailableRunner struct{}

func (UnavailableRunner) Run(context.Context, CommandRequest) error {
	return errors.New("no command runner configured")
}

// Notification describes a lifecycle transition for observers. Entry
// events carry the entry id; bus emissions carry the kind instead. An
// executed or failed notification for an event firing also carries the
// bus-event kind that triggered it.
type Notification struct {
	Event   string
	EntryID string
	Kind    string
	Detail  string
}

const (
	NotifyCreated   = "created"
	NotifyExecuted  = "executed"
	NotifyCancelled = "cancelled"
	NotifyFailed    = "failed"
	NotifyExpired   = "expired"
	NotifyEmitted   = "emitted"
)

// Notifier receives best-effort lifecycle notifications. Delivery happens
// after the corresponding record is durable; a notifier can never veto or
// corrupt scheduler state.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	slog.Info("schedule notification",
		"event", n.Event,
		"entry_id", n.EntryID,
		"kind", n.Kind,
		"detail", n.Detail,
	)
}

// notify delivers a notification, swallowing panics so a misbehaving
// observer cannot take down a drain.
func notify(n Notifier, note Notification) {
	if n == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notifier panicked", "event", note.Event, "panic", r)
		}
	}()
	n.Notify(note)
}
