package testutil

import (
	"context"
	"sync"

	"github.com/roach88/rxrename/internal/batch"
	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
)

// FakeExecutor records requests and answers with a scripted response.
//
// When Results is nil and Err is nil, every file is reported renamed to the
// name the Strict backend computes, so coordinator tests need no filesystem.
type FakeExecutor struct {
	mu       sync.Mutex
	Requests []ir.RenameRequest
	Results  []ir.RenameResult
	Err      error
}

// Execute implements engine.Executor.
func (f *FakeExecutor) Execute(_ context.Context, req ir.RenameRequest) ([]ir.RenameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Results != nil {
		return f.Results, nil
	}

	applier := &engine.Applier{Backend: engine.Strict}
	results := make([]ir.RenameResult, 0, len(req.Files))
	for _, path := range req.Files {
		oldName, _, _ := engine.SplitName(path)
		newName := applier.Apply(path, req.Steps, req.Normalization)
		if newName == oldName {
			results = append(results, ir.RenameResult{OldName: oldName, Error: engine.ReasonUnchanged})
			continue
		}
		results = append(results, ir.RenameResult{Success: true, OldName: oldName, NewName: newName})
	}
	return results, nil
}

// Calls returns the number of Execute calls.
func (f *FakeExecutor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// ScriptedConfirmer answers every prompt with Answer, or fails with Err.
type ScriptedConfirmer struct {
	Answer  bool
	Err     error
	Prompts []batch.Prompt
}

// Confirm implements batch.Confirmer.
func (c *ScriptedConfirmer) Confirm(_ context.Context, p batch.Prompt) (bool, error) {
	c.Prompts = append(c.Prompts, p)
	return c.Answer, c.Err
}

// RecordingNotifier keeps every notice.
type RecordingNotifier struct {
	Notices []batch.Notice
}

// Notify implements batch.Notifier.
func (n *RecordingNotifier) Notify(notice batch.Notice) {
	n.Notices = append(n.Notices, notice)
}

// Last returns the most recent notice, or the zero Notice.
func (n *RecordingNotifier) Last() batch.Notice {
	if len(n.Notices) == 0 {
		return batch.Notice{}
	}
	return n.Notices[len(n.Notices)-1]
}

// MemoryStore is an in-memory batch.SettingsStore.
type MemoryStore struct {
	Settings ir.Settings
	LoadErr  error
	SaveErr  error
	Saves    int
}

// Load implements batch.SettingsStore.
func (m *MemoryStore) Load(context.Context) (ir.Settings, error) {
	if m.LoadErr != nil {
		return ir.Settings{}, m.LoadErr
	}
	return m.Settings, nil
}

// Save implements batch.SettingsStore.
func (m *MemoryStore) Save(_ context.Context, s ir.Settings) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Settings = s
	return nil
}
