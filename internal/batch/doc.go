// Package batch coordinates a rename batch: it owns the file selection,
// resolves the active steps, refuses pipelines the executor cannot run,
// asks for confirmation, calls the executor once, and folds the results back
// into the selection.
//
// The coordinator never touches the filesystem itself. Everything with side
// effects (the executor, the confirmation prompt, user notices, settings
// persistence) is injected.
//
// A Coordinator is not reentrant. Callers serialize ExecuteRename calls; the
// CLI does so with a file lock.
package batch
