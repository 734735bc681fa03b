// Package store provides a SQLite-backed derivation log for prodsys
// sessions.
//
// The log is append-only and write-mostly: engines never read it back, and
// a new session always starts from an empty fact store. It exists so a
// host can audit how a fact was derived after the process has exited
// (see `prodsys trace`).
//
// # Tables
//
//   - sessions: one row per engine session (id, engine and schema version)
//   - events: every ir.Event, keyed by (session, seq); fact_id holds
//     ir.Fact.ID of the event's fact, if any
//
// # Ordering
//
// Events are ordered by the engine's logical clock (seq), never by wall
// time. Every read is ordered by (session, seq), so a trace reads back in
// the order it happened. EventFilter builds those reads with bound
// parameters only.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING, so replaying the same events into the
// log is harmless.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: events reference sessions
package store
