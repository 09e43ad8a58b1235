package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/calder/wick/internal/sched"
)

// Log is the append-only record log plus its materialized cache.
//
// Single-writer discipline: all mutation flows through Append. Snapshot
// accessors never touch the disk — they copy out of the cache built by
// Init and maintained incrementally by Append.
//
// Thread-safety: all exported methods are safe for concurrent use; a
// single mutex orders appends against snapshot reads.
type Log struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	ids         sched.IDGenerator
	clock       sched.Clock
	initialized bool
	cache       *cache
}

// Open creates or opens the log file at path. The parent directory is
// created if needed. Callers must Init before appending or reading.
func Open(path string, ids sched.IDGenerator, clock sched.Clock) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	return &Log{
		path:  path,
		file:  f,
		ids:   ids,
		clock: clock,
		cache: newCache(),
	}, nil
}

// Close closes the underlying log file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Init replays the persisted log into the in-memory cache.
//
// Exactly one replay happens per Log; subsequent calls are no-ops. A
// missing or empty file yields an empty cache. A line that fails to parse
// is a fatal bootstrap error carrying the line number — the log is the
// only source of truth and must not be partially interpreted.
func (l *Log) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.initialized = true
			return nil
		}
		return fmt.Errorf("open log for replay: %w", err)
	}
	defer f.Close()

	if err := l.replay(f); err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// replay folds every line of r into the cache, strictly in file order.
func (l *Log) replay(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			// Tolerate blank lines (typically a trailing newline).
			continue
		}

		var rec sched.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("replay %s line %d: %w", l.path, lineNo, err)
		}
		if rec.Type == "" {
			return fmt.Errorf("replay %s line %d: record missing type tag", l.path, lineNo)
		}
		l.cache.apply(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("replay %s: %w", l.path, err)
	}
	return nil
}

// Append durably persists one record and applies it to the cache,
// returning the stored record with its generated id and timestamp.
//
// Persist-then-cache: the line is written and fsynced before the cache
// sees it. Callers never assign ID or At — the log owns both.
func (l *Log) Append(ctx context.Context, rec sched.Record) (sched.Record, error) {
	if err := ctx.Err(); err != nil {
		return sched.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return sched.Record{}, fmt.Errorf("append before init")
	}
	if l.file == nil {
		return sched.Record{}, fmt.Errorf("append on closed log")
	}

	rec.ID = l.ids.Generate()
	rec.At = l.clock.Now()

	line, err := json.Marshal(rec)
	if err != nil {
		return sched.Record{}, fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	if _, err := l.file.Write(line); err != nil {
		return sched.Record{}, fmt.Errorf("append record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return sched.Record{}, fmt.Errorf("sync log: %w", err)
	}

	l.cache.apply(rec)
	return rec, nil
}

// Entries returns a point-in-time copy of all materialized entries in
// creation (log) order. Never touches the disk.
func (l *Log) Entries() []sched.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.entriesSnapshot()
}

// Entry returns a copy of a single entry by id.
func (l *Log) Entry(id string) (sched.Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.entry(id)
}

// BusEvents returns a point-in-time copy of all bus events in log order.
// Never touches the disk.
func (l *Log) BusEvents() []sched.BusEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.busSnapshot()
}

// Path returns the log file path. Used for diagnostics.
func (l *Log) Path() string {
	return l.path
}
