// Package engine evaluates scheduled entries against clock time and bus
// events, executes their actions, and cascades emitted events through an
// idempotent per-tick queue. All durable state lives in the store; the
// engine keeps only transient coordination state (the cascade queue and a
// run lock) between ticks.
package engine
