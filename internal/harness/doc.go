// Package harness runs rename scenarios end to end and compares their traces
// against golden files.
//
// A scenario is a YAML file naming settings (rules, groups, steps,
// normalization), the files to select, and assertions on the outcome. Run
// creates the files in a fresh temporary directory, previews every file with
// the Preview backend, then drives a batch.Coordinator with the real local
// executor and an in-memory journal. Every observable event (previews,
// notices, the confirmation prompt, the executor call, per-file results, the
// journaled batch) is appended to the trace in order.
//
// Traces contain file names only, never temporary paths, and batch ids and
// timestamps come from deterministic generators, so the same scenario always
// produces the same trace.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
