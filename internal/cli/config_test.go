package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wick.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "wick.jsonl", cfg.Log)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.TickInterval))
	assert.Equal(t, 8, cfg.MaxCascadeDepth)
	assert.Equal(t, 50, cfg.Limits.MaxPending)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Limits.MinTimeTriggerSpacing))
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log: /var/lib/wick/schedule.jsonl
tick_interval: 1s
max_cascade_depth: 3
limits:
  max_pending: 5
  max_pending_per_target: 2
  min_time_trigger_spacing: 10s
  max_pending_per_kind: 4
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/wick/schedule.jsonl", cfg.Log)
	assert.Equal(t, time.Second, time.Duration(cfg.TickInterval))
	assert.Equal(t, 3, cfg.MaxCascadeDepth)

	limits := cfg.EngineLimits()
	assert.Equal(t, 5, limits.MaxPending)
	assert.Equal(t, 2, limits.MaxPendingPerTarget)
	assert.Equal(t, 10*time.Second, limits.MinTimeTriggerSpacing)
	assert.Equal(t, 4, limits.MaxPendingPerKind)

	// Unset fields keep their defaults.
	assert.Equal(t, "wick.paused", cfg.PauseFile)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "tick_interval: fast\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
