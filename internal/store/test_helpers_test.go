package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/testutil"
)

// createTestStore creates a store on a temp file with deterministic ids and
// timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequenceGenerator("batch")),
		WithClock(testutil.NewStepClock().Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRequest creates a request over files with a single regex op.
func createTestRequest(files ...string) ir.RenameRequest {
	return ir.RenameRequest{
		Files:         files,
		Steps:         ir.Pipeline{ir.RegexOp{Pattern: `(\d+)`, Replacement: "<$1>"}, ir.NormalizeOp{}},
		Normalization: ir.DefaultNormalization(),
	}
}
