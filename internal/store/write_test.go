package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/testutil"
)

func TestRecordBatch_ReturnsGeneratedID(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	id1, err := s.RecordBatch(ctx, createTestRequest("/tmp/a1.txt"), nil)
	require.NoError(t, err)
	id2, err := s.RecordBatch(ctx, createTestRequest("/tmp/a2.txt"), nil)
	require.NoError(t, err)

	assert.Equal(t, "batch-0001", id1)
	assert.Equal(t, "batch-0002", id2)
}

func TestRecordBatch_StoresCountsAndRows(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	req := createTestRequest("/shows/ep1.mkv", "/shows/ep2.mkv", "C:\\clips\\x.mp4")
	results := []ir.RenameResult{
		{Success: true, OldName: "ep1.mkv", NewName: "ep<1>.mkv"},
		{Success: false, OldName: "ep2.mkv", Error: "target exists"},
		{Success: true, OldName: "x.mp4", NewName: "x.mp4"},
	}

	id, err := s.RecordBatch(ctx, req, results)
	require.NoError(t, err)

	b, err := s.ReadBatch(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 3, b.FileCount)
	assert.Equal(t, 2, b.Succeeded)
	assert.Equal(t, 1, b.Failed)
	assert.Equal(t, testutil.Epoch, b.CreatedAt)
	assert.Equal(t, req.Steps, b.Pipeline)
	assert.Equal(t, req.Normalization, b.Normalization)

	require.Len(t, b.Renames, 3)
	assert.Equal(t, Rename{Seq: 0, Directory: "/shows/", OldName: "ep1.mkv", NewName: "ep<1>.mkv", Success: true}, b.Renames[0])
	assert.Equal(t, Rename{Seq: 1, Directory: "/shows/", OldName: "ep2.mkv", Error: "target exists"}, b.Renames[1])
	assert.Equal(t, "C:\\clips\\", b.Renames[2].Directory)
	assert.Equal(t, "/shows/ep<1>.mkv", b.Renames[0].NewPath())
	assert.Equal(t, "", b.Renames[1].NewPath())
	assert.Equal(t, "/shows/ep2.mkv", b.Renames[1].OldPath())
}

func TestRecordBatch_StoresPatternsUnescaped(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	id, err := s.RecordBatch(ctx, createTestRequest("/tmp/a.txt"), nil)
	require.NoError(t, err)

	var raw string
	require.NoError(t, s.db.QueryRow("SELECT pipeline FROM batches WHERE id = ?", id).Scan(&raw))
	assert.Contains(t, raw, `"replacement":"<$1>"`)
}

func TestRecordBatch_MoreResultsThanFiles(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	results := []ir.RenameResult{
		{Success: true, OldName: "a.txt", NewName: "b.txt"},
		{Success: false, OldName: "stray.txt", Error: "unexpected"},
	}
	id, err := s.RecordBatch(ctx, createTestRequest("/tmp/a.txt"), results)
	require.NoError(t, err)

	b, err := s.ReadBatch(ctx, id)
	require.NoError(t, err)
	require.Len(t, b.Renames, 2)
	assert.Equal(t, "", b.Renames[1].Directory)
}

func TestRecordBatch_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.RecordBatch(ctx, createTestRequest("/tmp/a.txt"), nil)
	require.Error(t, err)

	batches, err := s.ListBatches(t.Context(), 0)
	require.NoError(t, err)
	assert.Empty(t, batches, "a failed write must leave no batch row")
}
