package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTrigger_Time(t *testing.T) {
	tr := Trigger{Type: TriggerTime, ExecuteAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	assert.NoError(t, ValidateTrigger(tr))
}

func TestValidateTrigger_Time_MissingExecuteAt(t *testing.T) {
	err := ValidateTrigger(Trigger{Type: TriggerTime})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute_at")
}

func TestValidateTrigger_Time_RejectsKinds(t *testing.T) {
	tr := Trigger{
		Type:      TriggerTime,
		ExecuteAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Kinds:     []string{"build.done"},
	}
	assert.Error(t, ValidateTrigger(tr))
}

func TestValidateTrigger_Event(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		wantErr bool
	}{
		{
			name:    "single kind, default match",
			trigger: Trigger{Type: TriggerEvent, Kinds: []string{"build.done"}},
		},
		{
			name:    "multiple kinds, all mode",
			trigger: Trigger{Type: TriggerEvent, Kinds: []string{"a", "b"}, Match: MatchAll},
		},
		{
			name:    "no kinds",
			trigger: Trigger{Type: TriggerEvent},
			wantErr: true,
		},
		{
			name:    "empty kind",
			trigger: Trigger{Type: TriggerEvent, Kinds: []string{"a", ""}},
			wantErr: true,
		},
		{
			name:    "unknown match mode",
			trigger: Trigger{Type: TriggerEvent, Kinds: []string{"a"}, Match: "some"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrigger(tt.trigger)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTrigger_UnknownType(t *testing.T) {
	assert.Error(t, ValidateTrigger(Trigger{Type: "cron"}))
}

func TestValidateAction_Variants(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{
			name:   "command",
			action: Action{Type: ActionCommand, Target: "session-1", Command: "summarize"},
		},
		{
			name:    "command missing target",
			action:  Action{Type: ActionCommand, Command: "summarize"},
			wantErr: true,
		},
		{
			name:    "command missing name",
			action:  Action{Type: ActionCommand, Target: "session-1"},
			wantErr: true,
		},
		{
			name:   "emit",
			action: Action{Type: ActionEmit, Kind: "build.done"},
		},
		{
			name:    "emit missing kind",
			action:  Action{Type: ActionEmit, Message: "done"},
			wantErr: true,
		},
		{
			name:   "cancel",
			action: Action{Type: ActionCancel, EntryID: "entry-1"},
		},
		{
			name:    "cancel missing target",
			action:  Action{Type: ActionCancel, Reason: "superseded"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			action:  Action{Type: "noop"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAction(tt.action)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAction_Schedule_Recursive(t *testing.T) {
	// A schedule wrapping a schedule wrapping an emit: the whole chain
	// must validate at admission.
	inner := Action{Type: ActionEmit, Kind: "ping"}
	innerTrigger := Trigger{Type: TriggerEvent, Kinds: []string{"pong"}}
	mid := Action{Type: ActionSchedule, Next: &inner, NextTrigger: &innerTrigger, Reason: "inner"}
	midTrigger := Trigger{Type: TriggerTime, ExecuteAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	outer := Action{Type: ActionSchedule, Next: &mid, NextTrigger: &midTrigger, Reason: "outer"}

	assert.NoError(t, ValidateAction(outer))
}

func TestValidateAction_Schedule_RejectsMalformedNested(t *testing.T) {
	// The nested emit is missing its kind: rejected at admission time,
	// not when the schedule action later fires.
	bad := Action{Type: ActionEmit}
	trigger := Trigger{Type: TriggerEvent, Kinds: []string{"x"}}
	a := Action{Type: ActionSchedule, Next: &bad, NextTrigger: &trigger}

	err := ValidateAction(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested action")
}

func TestValidateAction_Schedule_MissingParts(t *testing.T) {
	a := Action{Type: ActionSchedule}
	assert.Error(t, ValidateAction(a))
}

func TestNormalizeMatch(t *testing.T) {
	assert.Equal(t, MatchAny, NormalizeMatch(""))
	assert.Equal(t, MatchAny, NormalizeMatch(MatchAny))
	assert.Equal(t, MatchAll, NormalizeMatch(MatchAll))
}
