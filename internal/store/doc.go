// Package store provides SQLite-backed durable storage for batch results.
//
// The store is an append-only log with three tables:
//   - Runs: one row per batch invocation (dimensions, quantity, offset)
//   - Problems: problem instances keyed by content ID
//   - Results: one row per (run, problem, solver)
//
// Writes are idempotent: every insert uses ON CONFLICT DO NOTHING, so a
// retried batch item never duplicates rows.
//
// Runs are ordered by started_seq, a logical counter assigned by the store.
// Wall-clock time is never used for ordering. Result queries order by the
// insertion sequence so reports are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
