package harness

import (
	"github.com/roach88/rxrename/internal/batch"
	"github.com/roach88/rxrename/internal/ir"
)

// Trace event types.
const (
	EventPreview = "preview"
	EventNotice  = "notice"
	EventConfirm = "confirm"
	EventExecute = "execute"
	EventResult  = "result"
	EventJournal = "journal"
)

// TraceEvent is one observable step of a scenario run. Fields not used by
// an event type are left empty.
type TraceEvent struct {
	Seq     int      `json:"seq"`
	Type    string   `json:"type"`
	File    string   `json:"file,omitempty"`
	Stems   []string `json:"stems,omitempty"`
	NewName string   `json:"new_name,omitempty"`
	Success *bool    `json:"success,omitempty"`
	Error   string   `json:"error,omitempty"`
	Level   string   `json:"level,omitempty"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
	Answer  *bool    `json:"answer,omitempty"`
	Count   int      `json:"count,omitempty"`
	BatchID string   `json:"batch_id,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Pipeline is the flattened pipeline of the active steps.
	Pipeline ir.Pipeline `json:"pipeline"`

	// Trace lists events in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Outcome is what the coordinator returned.
	Outcome *batch.Outcome `json:"outcome,omitempty"`

	// ExecutorCalls counts calls that reached the executor.
	ExecutorCalls int `json:"executor_calls"`

	// Selection is the selection after the batch, as file names.
	Selection []string `json:"selection"`

	// Files lists the names in the scenario directory after the batch,
	// sorted.
	Files []string `json:"files"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Pipeline:  ir.Pipeline{},
		Trace:     []TraceEvent{},
		Selection: []string{},
		Files:     []string{},
		Errors:    []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// add appends an event, numbering it.
func (r *Result) add(e TraceEvent) {
	e.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, e)
}

// Preview returns the preview event for file, if any.
func (r *Result) Preview(file string) (TraceEvent, bool) {
	for _, e := range r.Trace {
		if e.Type == EventPreview && e.File == file {
			return e, true
		}
	}
	return TraceEvent{}, false
}

// Events returns the events of the given type, in order.
func (r *Result) Events(typ string) []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
