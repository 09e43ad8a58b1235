package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calder/wick/internal/engine"
)

// Duration decodes "30s"-style strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// LimitsConfig mirrors engine.Limits with YAML-friendly durations.
type LimitsConfig struct {
	MaxPending            int      `yaml:"max_pending"`
	MaxPendingPerTarget   int      `yaml:"max_pending_per_target"`
	MinTimeTriggerSpacing Duration `yaml:"min_time_trigger_spacing"`
	MaxPendingPerKind     int      `yaml:"max_pending_per_kind"`
}

// Config is the run command's file-based configuration. Flags override
// file values; file values override defaults.
type Config struct {
	Log             string       `yaml:"log"`
	PauseFile       string       `yaml:"pause_file"`
	TickInterval    Duration     `yaml:"tick_interval"`
	MaxCascadeDepth int          `yaml:"max_cascade_depth"`
	Limits          LimitsConfig `yaml:"limits"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	limits := engine.DefaultLimits()
	return Config{
		Log:             "wick.jsonl",
		PauseFile:       "wick.paused",
		TickInterval:    Duration(engine.DefaultTickInterval),
		MaxCascadeDepth: engine.DefaultMaxCascadeDepth,
		Limits: LimitsConfig{
			MaxPending:            limits.MaxPending,
			MaxPendingPerTarget:   limits.MaxPendingPerTarget,
			MinTimeTriggerSpacing: Duration(limits.MinTimeTriggerSpacing),
			MaxPendingPerKind:     limits.MaxPendingPerKind,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// EngineLimits converts the YAML form back to engine.Limits.
func (c Config) EngineLimits() engine.Limits {
	return engine.Limits{
		MaxPending:            c.Limits.MaxPending,
		MaxPendingPerTarget:   c.Limits.MaxPendingPerTarget,
		MinTimeTriggerSpacing: time.Duration(c.Limits.MinTimeTriggerSpacing),
		MaxPendingPerKind:     c.Limits.MaxPendingPerKind,
	}
}
