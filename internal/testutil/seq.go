// Package testutil provides deterministic test doubles shared across
// packages: sequential id generation for log records and entries, so that
// scenario runs and golden files are byte-for-byte reproducible.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the fixed instant deterministic scenarios start from.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// SeqGenerator produces prefix-01, prefix-02, ... without a preset pool.
// Unlike sched.FixedGenerator it never exhausts, which suits runs where
// the exact record count is not the thing under test.
//
// Safe for concurrent use via internal mutex.
type SeqGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqGenerator creates a generator with the given id prefix.
func NewSeqGenerator(prefix string) *SeqGenerator {
	return &SeqGenerator{prefix: prefix}
}

// Generate returns the next sequential id.
func (g *SeqGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%02d", g.prefix, g.n)
}
