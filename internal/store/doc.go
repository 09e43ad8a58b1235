// Package store provides the durable append-only log and its materialized
// view for the wick scheduling engine.
//
// The log is the single source of truth: one self-describing JSON record
// per line, append-only, replayed strictly in file order. Entries and bus
// events are never edited in place — cancellation, expiry, and execution
// are themselves further records, and an entry's current state is purely a
// left-fold of its records.
//
// # Durability Ordering
//
// Append persists the record (write + fsync) before applying it to the
// in-memory cache. Readers therefore never observe state the log does not
// already contain, and a crash between the two steps loses nothing: replay
// rebuilds the cache from the persisted line.
//
// # Bootstrap
//
// Init performs exactly one full read-and-replay into the cache; later
// calls are no-ops. A missing or empty log yields an empty cache, not an
// error. A structurally invalid line is a fatal bootstrap error — the log
// cannot be partially replayed without silently corrupting the schedule,
// so Init surfaces the offending line number and stops.
//
// # Reducer Rules
//
//   - At most one created record establishes an entry; duplicates are
//     ignored.
//   - Terminal records (executed, cancelled, failed, expired) apply only
//     to a known, still-pending entry; the first terminal record wins and
//     later ones are ignored. This enforces the terminal-once status
//     machine at the fold, regardless of what was appended.
//   - bus_emitted records accumulate in log order.
package store
