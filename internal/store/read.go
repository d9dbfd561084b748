package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/rxrename/internal/ir"
)

// ErrBatchNotFound is returned when no batch matches an id.
var ErrBatchNotFound = errors.New("batch not found")

// Batch is one journaled executor call.
type Batch struct {
	ID            string                  `json:"id"`
	CreatedAt     time.Time               `json:"created_at"`
	Pipeline      ir.Pipeline             `json:"pipeline"`
	Normalization ir.NormalizationOptions `json:"normalization"`
	FileCount     int                     `json:"file_count"`
	Succeeded     int                     `json:"succeeded"`
	Failed        int                     `json:"failed"`
	Renames       []Rename                `json:"renames,omitempty"`
}

// Rename is one file of a batch.
type Rename struct {
	Seq       int    `json:"seq"`
	Directory string `json:"directory"`
	OldName   string `json:"old_name"`
	NewName   string `json:"new_name,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// OldPath returns the path the file had before the batch.
func (r Rename) OldPath() string { return r.Directory + r.OldName }

// NewPath returns the path after the batch, or "" when the rename failed.
func (r Rename) NewPath() string {
	if !r.Success {
		return ""
	}
	return r.Directory + r.NewName
}

// ListBatches returns up to limit batches, newest first, without their
// renames. Ties on created_at are broken by id. A limit of zero or less
// returns every batch.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, pipeline, normalization, file_count, succeeded, failed
		FROM batches
		ORDER BY created_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// ReadBatch returns the batch with the given id, or the only batch whose id
// starts with it, together with its renames in request order.
func (s *Store) ReadBatch(ctx context.Context, id string) (*Batch, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, pipeline, normalization, file_count, succeeded, failed
		FROM batches
		WHERE id = ?
	`, fullID)
	b, err := scanBatch(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, directory, old_name, new_name, success, error
		FROM renames
		WHERE batch_id = ?
		ORDER BY seq ASC
	`, fullID)
	if err != nil {
		return nil, fmt.Errorf("query renames: %w", err)
	}
	defer rows.Close()

	b.Renames = []Rename{}
	for rows.Next() {
		var r Rename
		if err := rows.Scan(&r.Seq, &r.Directory, &r.OldName, &r.NewName, &r.Success, &r.Error); err != nil {
			return nil, fmt.Errorf("scan rename: %w", err)
		}
		b.Renames = append(b.Renames, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renames: %w", err)
	}
	return &b, nil
}

// resolveID expands a unique id prefix to the full batch id.
func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrBatchNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM batches
		WHERE id = ? OR substr(id, 1, length(?)) = ?
		ORDER BY id = ? DESC, id COLLATE BINARY ASC
		LIMIT 2
	`, id, id, id, id)
	if err != nil {
		return "", fmt.Errorf("query batch id: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("scan batch id: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate batch ids: %w", err)
	}

	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("%w: %q", ErrBatchNotFound, id)
	case matches[0] == id || len(matches) == 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("batch id %q is ambiguous", id)
	}
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (Batch, error) {
	var (
		b                       Batch
		createdAt, p, normalize string
	)
	err := row.Scan(&b.ID, &createdAt, &p, &normalize, &b.FileCount, &b.Succeeded, &b.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrBatchNotFound
	}
	if err != nil {
		return b, fmt.Errorf("scan batch: %w", err)
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return b, err
	}
	if b.Pipeline, err = unmarshalPipeline(p); err != nil {
		return b, err
	}
	if b.Normalization, err = unmarshalNormalization(normalize); err != nil {
		return b, err
	}
	return b, nil
}
