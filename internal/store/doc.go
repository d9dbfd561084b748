// Package store provides the SQLite-backed rename journal.
//
// Every executed batch is recorded with its flattened pipeline, its
// normalization options, and one row per requested file:
//   - batches: one row per executor call
//   - renames: one row per file, keyed by (batch_id, seq)
//
// # Ordering
//
// Reads are deterministic: batches are listed newest first with ties broken
// by id, and renames are returned in request order (seq ASC).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
