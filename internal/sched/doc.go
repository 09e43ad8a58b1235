// Package sched defines the domain types for the wick scheduling engine.
//
// The vocabulary is small and closed:
//
//   - Trigger: the condition gating an entry (a wall-clock deadline, or a
//     convergent set of bus-event kinds with any/all matching).
//   - Action: the effect performed when the trigger fires (run an external
//     command, emit a bus event, cancel another entry, or schedule a brand
//     new entry — the one recursive case).
//   - Entry: one unit of scheduled work (trigger + action + status).
//   - Record: one line of the append-only log; the only persisted unit.
//   - BusEvent: one observed event on the bus, queried for convergence.
//
// Triggers, actions, and records are tagged unions encoded as flat structs
// with a type tag and per-variant fields. Validation enforces that each
// variant carries exactly the fields it needs.
//
// Entry status is terminal-once: pending transitions to exactly one of
// executed, cancelled, failed, or expired, and never transitions again.
// The reducer in internal/store enforces this when folding the log.
package sched
