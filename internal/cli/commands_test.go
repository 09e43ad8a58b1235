package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder/wick/internal/sched"
)

// execWick runs the CLI against a per-test log and pause file, returning
// combined output.
func execWick(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{
		"--log", filepath.Join(dir, "wick.jsonl"),
		"--pause-file", filepath.Join(dir, "wick.paused"),
	}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

const (
	farFutureTrigger = `{"type":"time","execute_at":"2099-01-01T00:00:00Z"}`
	emitReadyAction  = `{"type":"emit","kind":"ready"}`
)

func createTestEntry(t *testing.T, dir string) sched.Entry {
	t.Helper()
	out, err := execWick(t, dir, "--format", "json", "create",
		"--trigger", farFutureTrigger,
		"--action", emitReadyAction,
		"--reason", "integration test")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   sched.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestCreateCommand(t *testing.T) {
	dir := t.TempDir()

	entry := createTestEntry(t, dir)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, sched.StatusPending, entry.Status)
	assert.Equal(t, "integration test", entry.Reason)
}

func TestCreateCommand_InvalidJSON(t *testing.T) {
	dir := t.TempDir()

	_, err := execWick(t, dir, "create", "--trigger", "{not json", "--action", emitReadyAction)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCreateCommand_SpacingRefusal(t *testing.T) {
	dir := t.TempDir()
	createTestEntry(t, dir)

	out, err := execWick(t, dir, "create",
		"--trigger", `{"type":"time","execute_at":"2099-01-01T00:00:10Z"}`,
		"--action", emitReadyAction)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "time_spacing")
}

func TestCancelCommand(t *testing.T) {
	dir := t.TempDir()
	entry := createTestEntry(t, dir)

	out, err := execWick(t, dir, "cancel", entry.ID, "--reason", "plans changed")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled entry "+entry.ID)

	// Terminal entries cannot be cancelled again.
	_, err = execWick(t, dir, "cancel", entry.ID)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = execWick(t, dir, "cancel", "no-such-id")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestEmitAndEventsCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execWick(t, dir, "emit", "tests_passed", "--message", "run 42 green", "--origin", "ci")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded event tests_passed")

	out, err = execWick(t, dir, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "tests_passed")
	assert.Contains(t, out, "from ci")
	assert.Contains(t, out, "run 42 green")

	out, err = execWick(t, dir, "events", "--kind", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "no events")
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	entry := createTestEntry(t, dir)

	out, err := execWick(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, entry.ID)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "emit ready")

	_, err = execWick(t, dir, "list", "--status", "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execWick(t, dir, "list", "--status", "executed")
	require.NoError(t, err)
	assert.Contains(t, out, "no entries")
}

func TestListCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	entry := createTestEntry(t, dir)

	out, err := execWick(t, dir, "--format", "json", "list", "--status", "pending")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []sched.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, entry.ID, resp.Data[0].ID)
}

func TestPauseResumeAndStatusCommands(t *testing.T) {
	dir := t.TempDir()
	createTestEntry(t, dir)

	out, err := execWick(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "scheduler: running")
	assert.Contains(t, out, "pending")

	out, err = execWick(t, dir, "pause")
	require.NoError(t, err)
	assert.Contains(t, out, "scheduler paused")

	out, err = execWick(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "scheduler: paused")

	out, err = execWick(t, dir, "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "scheduler resumed")

	out, err = execWick(t, dir, "--format", "json", "status")
	require.NoError(t, err)
	var resp struct {
		Status string        `json:"status"`
		Data   StatusSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Paused)
	assert.Equal(t, 1, resp.Data.Entries["pending"])
}
