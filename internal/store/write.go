package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
)

// timeLayout is the stored form of created_at. It sorts lexically in
// time order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var _ engine.Journal = (*Store)(nil)

// RecordBatch writes one executed batch and its per-file results in a single
// transaction and returns the new batch id. Results are paired with
// req.Files by position; results beyond the request keep an empty
// directory. It implements engine.Journal.
func (s *Store) RecordBatch(ctx context.Context, req ir.RenameRequest, results []ir.RenameResult) (string, error) {
	pipeline, err := marshalJSON("pipeline", req.Steps)
	if err != nil {
		return "", fmt.Errorf("record batch: %w", err)
	}
	normalization, err := marshalJSON("normalization", req.Normalization)
	if err != nil {
		return "", fmt.Errorf("record batch: %w", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	id := s.ids.NewID()
	createdAt := s.now().UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record batch: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches
		(id, created_at, pipeline, normalization, file_count, succeeded, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		createdAt,
		pipeline,
		normalization,
		len(results),
		succeeded,
		len(results)-succeeded,
	)
	if err != nil {
		return "", fmt.Errorf("record batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO renames
		(batch_id, seq, directory, old_name, new_name, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("record batch: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		dir := ""
		if i < len(req.Files) {
			dir = engine.DirPrefix(req.Files[i])
		}
		if _, err := stmt.ExecContext(ctx, id, i, dir, r.OldName, r.NewName, r.Success, r.Error); err != nil {
			return "", fmt.Errorf("record rename %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record batch: commit: %w", err)
	}
	return id, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	return t, nil
}
