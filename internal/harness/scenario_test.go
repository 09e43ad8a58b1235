package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder/wick/internal/sched"
	"github.com/calder/wick/internal/testutil"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/merge_gate.yaml")
	require.NoError(t, err)

	assert.Equal(t, "merge_gate", scenario.Name)
	assert.Len(t, scenario.Steps, 7)
	require.NotNil(t, scenario.Steps[0].Create)
	assert.Equal(t, "all", scenario.Steps[0].Create.Trigger.Match)
	assert.Equal(t, "1m", scenario.Steps[3].Advance)
	assert.True(t, scenario.Steps[6].Tick)
	assert.Equal(t, []string{"tests_passed", "review_done", "merge_ready"}, scenario.Expect.Events)
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenario(t, "steps:\n  - tick: true\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_NoSteps(t *testing.T) {
	path := writeScenario(t, "name: empty\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one step")
}

func TestLoadScenario_AmbiguousStep(t *testing.T) {
	path := writeScenario(t, `
name: ambiguous
steps:
  - tick: true
    advance: 1m
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
}

func TestLoadScenario_BadAdvanceDuration(t *testing.T) {
	path := writeScenario(t, `
name: bad_advance
steps:
  - advance: fast
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid advance duration")
}

func TestTriggerSpec_RelativeTime(t *testing.T) {
	spec := TriggerSpec{Type: "time", ExecuteAt: "+90s"}

	tr, err := spec.trigger(testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, sched.TriggerTime, tr.Type)
	assert.Equal(t, testutil.Epoch.Add(90*time.Second), tr.ExecuteAt)
}

func TestTriggerSpec_AbsoluteTimeAndExpiry(t *testing.T) {
	spec := TriggerSpec{
		Type:      "event",
		Kinds:     []string{"done"},
		ExpiresAt: "2026-03-01T13:00:00Z",
	}

	tr, err := spec.trigger(testutil.Epoch)
	require.NoError(t, err)
	require.NotNil(t, tr.ExpiresAt)
	assert.Equal(t, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC), *tr.ExpiresAt)
}

func TestTriggerSpec_BadTime(t *testing.T) {
	spec := TriggerSpec{Type: "time", ExecuteAt: "noon"}

	_, err := spec.trigger(testutil.Epoch)
	require.Error(t, err)
}

func TestActionSpec_NestedSchedule(t *testing.T) {
	spec := ActionSpec{
		Type:   "schedule",
		Reason: "follow-up",
	}
	spec.Schedule = &struct {
		Trigger TriggerSpec `yaml:"trigger"`
		Action  ActionSpec  `yaml:"action"`
	}{
		Trigger: TriggerSpec{Type: "time", ExecuteAt: "+1h"},
		Action:  ActionSpec{Type: "emit", Kind: "later"},
	}

	a, err := spec.action(testutil.Epoch)
	require.NoError(t, err)
	assert.Equal(t, sched.ActionSchedule, a.Type)
	require.NotNil(t, a.NextTrigger)
	require.NotNil(t, a.Next)
	assert.Equal(t, testutil.Epoch.Add(time.Hour), a.NextTrigger.ExecuteAt)
	assert.Equal(t, "later", a.Next.Kind)
}
