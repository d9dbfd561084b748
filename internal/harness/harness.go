package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/roach88/rxrename/internal/batch"
	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/store"
	"github.com/roach88/rxrename/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios in a private directory with a deterministic journal.
type Harness struct {
	dir     string
	journal *store.Store
	logger  zerolog.Logger
	result  *Result
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory and a fresh in-memory
// journal, both discarded afterwards.
//
// Execution flow:
// 1. Create the scenario's files
// 2. Flatten the active steps and preview every selected file
// 3. Run the coordinator with the local executor
// 4. Record the journaled batch and the directory listing
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "rxrename-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	journal, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequenceGenerator("batch")),
		store.WithClock(testutil.NewStepClock().Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer journal.Close()

	h := &Harness{
		dir:     dir,
		journal: journal,
		logger:  zerolog.Nop(), // Suppress logs in tests
		result:  NewResult(),
	}

	if err := h.createFiles(scenario); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := h.execute(ctx, scenario); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func (h *Harness) createFiles(s *Scenario) error {
	for _, name := range append(append([]string{}, s.Files...), s.Existing...) {
		if err := os.WriteFile(filepath.Join(h.dir, name), []byte(name), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, s *Scenario) error {
	st := s.Settings
	r := h.result

	r.Pipeline = compiler.Flatten(st.ActiveSteps(), st.RegexLibrary, st.Groups)

	applier := engine.NewApplier()
	paths := make([]string, len(s.Files))
	for i, name := range s.Files {
		paths[i] = filepath.Join(h.dir, name)
		tr := applier.Trace(paths[i], r.Pipeline, st.Normalization)
		r.add(TraceEvent{
			Type:    EventPreview,
			File:    name,
			Stems:   tr.Stems,
			NewName: tr.NewName,
			Error:   tr.Error,
		})
	}

	executor := &tracingExecutor{
		next:   engine.NewLocalExecutor(h.journal, h.logger),
		result: r,
	}
	coord := &batch.Coordinator{
		Selection: batch.NewSelection(paths...),
		Executor:  executor,
		Confirmer: batch.ConfirmerFunc(func(_ context.Context, p batch.Prompt) (bool, error) {
			answer := s.ConfirmAnswer()
			r.add(TraceEvent{Type: EventConfirm, Message: p.Message, Count: p.FileCount, Answer: boolPtr(answer)})
			return answer, nil
		}),
		Notifier: batch.NotifierFunc(func(n batch.Notice) {
			r.add(TraceEvent{Type: EventNotice, Level: string(n.Level), Message: n.Message, Details: n.Details})
		}),
		Logger: h.logger,
	}

	out, err := coord.ExecuteRename(ctx, st.ActiveSteps(), st.RegexLibrary, st.Groups, st.Normalization)
	if err != nil {
		return fmt.Errorf("failed to execute rename: %w", err)
	}
	r.Outcome = out
	r.ExecutorCalls = executor.calls

	for _, p := range coord.Selection.Paths() {
		name, _, _ := engine.SplitName(p)
		r.Selection = append(r.Selection, name)
	}

	batches, err := h.journal.ListBatches(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	for i := len(batches) - 1; i >= 0; i-- {
		b := batches[i]
		r.add(TraceEvent{Type: EventJournal, BatchID: b.ID, Count: b.FileCount, Message: fmt.Sprintf("%d renamed, %d failed", b.Succeeded, b.Failed)})
	}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return fmt.Errorf("failed to list scenario directory: %w", err)
	}
	for _, e := range entries {
		r.Files = append(r.Files, e.Name())
	}
	sort.Strings(r.Files)
	return nil
}

// tracingExecutor records the executor call and its results in the trace.
type tracingExecutor struct {
	next   engine.Executor
	result *Result
	calls  int
}

func (e *tracingExecutor) Execute(ctx context.Context, req ir.RenameRequest) ([]ir.RenameResult, error) {
	e.calls++
	e.result.add(TraceEvent{Type: EventExecute, Count: len(req.Files)})
	results, err := e.next.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		e.result.add(TraceEvent{
			Type:    EventResult,
			File:    res.OldName,
			NewName: res.NewName,
			Success: boolPtr(res.Success),
			Error:   res.Error,
		})
	}
	return results, nil
}
