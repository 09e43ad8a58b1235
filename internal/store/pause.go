package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PauseState persists the global pause flag across restarts.
//
// The flag lives in a small JSON file `{"paused":bool}` that is read once
// when the state is opened and rewritten atomically (temp file + rename)
// on every SetPaused. An absent file means unpaused, never an error.
type PauseState struct {
	mu     sync.Mutex
	path   string
	paused bool
}

type pauseFile struct {
	Paused bool `json:"paused"`
}

// OpenPauseState reads the pause flag from path, defaulting to unpaused
// when the file does not exist.
func OpenPauseState(path string) (*PauseState, error) {
	p := &PauseState{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("read pause state: %w", err)
	}

	var pf pauseFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pause state %s: %w", path, err)
	}
	p.paused = pf.Paused
	return p, nil
}

// Paused reports the current pause flag.
func (p *PauseState) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetPaused updates the flag and rewrites the state file. The write goes
// through a temp file and rename so a crash never leaves a torn file.
func (p *PauseState) SetPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.Marshal(pauseFile{Paused: paused})
	if err != nil {
		return fmt.Errorf("marshal pause state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create pause state directory: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write pause state: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace pause state: %w", err)
	}

	p.paused = paused
	return nil
}
