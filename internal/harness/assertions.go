package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Type)
		if event.File != "" {
			fmt.Fprintf(&buf, " %s", event.File)
		}
		if event.NewName != "" {
			fmt.Fprintf(&buf, " -> %s", event.NewName)
		}
		if event.Message != "" {
			fmt.Fprintf(&buf, " %q", event.Message)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertStatus:
		return assertStatus(r, a)
	case AssertPreview:
		return assertPreview(r, a)
	case AssertRenamed:
		return assertRenamed(r, a)
	case AssertNotRenamed:
		return assertNotRenamed(r, a)
	case AssertPipelineLength:
		return assertCount(r, a, "pipeline_length", len(r.Pipeline))
	case AssertExecutorCalls:
		return assertCount(r, a, "executor_calls", r.ExecutorCalls)
	case AssertNotice:
		return assertNotice(r, a)
	case AssertSelection:
		return assertSelection(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStatus(r *Result, a Assertion) error {
	actual := "<none>"
	if r.Outcome != nil {
		actual = string(r.Outcome.Status)
	}
	if actual != a.Equals {
		return &AssertionError{Type: a.Type, Expected: a.Equals, Actual: actual, Trace: r.Trace}
	}
	return nil
}

func assertPreview(r *Result, a Assertion) error {
	e, ok := r.Preview(a.File)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("preview of %s", a.File), Actual: "file not previewed", Trace: r.Trace}
	}
	if e.NewName != a.Equals {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s -> %s", a.File, a.Equals), Actual: fmt.Sprintf("%s -> %s", a.File, e.NewName), Trace: r.Trace}
	}
	return nil
}

func assertRenamed(r *Result, a Assertion) error {
	hasOld := slices.Contains(r.Files, a.File)
	hasNew := slices.Contains(r.Files, a.Equals)
	if hasOld || !hasNew {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s renamed to %s", a.File, a.Equals),
			Actual:   fmt.Sprintf("directory holds %v", r.Files),
			Trace:    r.Trace,
		}
	}
	return nil
}

func assertNotRenamed(r *Result, a Assertion) error {
	if !slices.Contains(r.Files, a.File) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s still present", a.File),
			Actual:   fmt.Sprintf("directory holds %v", r.Files),
			Trace:    r.Trace,
		}
	}
	return nil
}

func assertCount(r *Result, a Assertion, what string, actual int) error {
	if actual != *a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s = %d", what, *a.Count), Actual: fmt.Sprintf("%s = %d", what, actual), Trace: r.Trace}
	}
	return nil
}

func assertNotice(r *Result, a Assertion) error {
	for _, e := range r.Events(EventNotice) {
		if e.Level != a.Level {
			continue
		}
		if a.Contains == "" || strings.Contains(e.Message, a.Contains) {
			return nil
		}
		for _, d := range e.Details {
			if strings.Contains(d, a.Contains) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s notice containing %q", a.Level, a.Contains),
		Actual:   "not found in trace",
		Trace:    r.Trace,
	}
}

func assertSelection(r *Result, a Assertion) error {
	if !slices.Equal(r.Selection, a.Names) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%v", a.Names), Actual: fmt.Sprintf("%v", r.Selection), Trace: r.Trace}
	}
	return nil
}
