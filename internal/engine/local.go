package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/roach88/rxrename/internal/ir"
)

// Executor performs a batch rename. Results are in request order, one per
// file. An error means the call as a whole failed and no result is usable.
type Executor interface {
	Execute(ctx context.Context, req ir.RenameRequest) ([]ir.RenameResult, error)
}

// Journal records executed batches.
type Journal interface {
	RecordBatch(ctx context.Context, req ir.RenameRequest, results []ir.RenameResult) (string, error)
}

// Per-file failure messages reported by LocalExecutor.
const (
	ReasonUnchanged     = "name unchanged"
	ReasonEmptyName     = "new name is empty"
	ReasonSeparator     = "new name contains a path separator"
	ReasonTargetExists  = "target already exists"
	ReasonSourceMissing = "source does not exist"
)

// LocalExecutor renames files on the local filesystem.
//
// The pipeline is compiled once with the Strict backend; a pattern that does
// not compile fails the whole call before any file is touched. Files are
// then renamed in request order, within their own directory. Context
// cancellation is checked between files and stops the batch with an error,
// leaving completed renames in place.
type LocalExecutor struct {
	// Journal, if set, records every batch that produced results.
	Journal Journal

	Logger zerolog.Logger
}

// NewLocalExecutor returns an executor that records to journal, which may
// be nil.
func NewLocalExecutor(journal Journal, logger zerolog.Logger) *LocalExecutor {
	return &LocalExecutor{Journal: journal, Logger: logger}
}

// Execute implements Executor.
func (e *LocalExecutor) Execute(ctx context.Context, req ir.RenameRequest) ([]ir.RenameResult, error) {
	prog, err := Compile(req.Steps, Strict)
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	results := make([]ir.RenameResult, 0, len(req.Files))
	for _, path := range req.Files {
		if err := ctx.Err(); err != nil {
			e.record(ctx, req, results)
			return nil, fmt.Errorf("rename cancelled after %d of %d files: %w", len(results), len(req.Files), err)
		}
		results = append(results, e.renameOne(prog, path, req.Normalization))
	}

	e.record(ctx, req, results)
	return results, nil
}

func (e *LocalExecutor) renameOne(prog *Program, path string, opts ir.NormalizationOptions) ir.RenameResult {
	fileName, stem, ext := SplitName(path)
	res := ir.RenameResult{OldName: fileName}

	fail := func(reason string) ir.RenameResult {
		res.Error = reason
		e.Logger.Debug().Str("file", path).Str("reason", reason).Msg("rename skipped")
		return res
	}

	newStem, err := prog.Apply(stem, opts)
	if err != nil {
		return fail(err.Error())
	}
	newName := newStem + ext

	switch {
	case newName == "":
		return fail(ReasonEmptyName)
	case containsSeparator(newName):
		return fail(ReasonSeparator)
	case newName == fileName:
		return fail(ReasonUnchanged)
	}

	oldInfo, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(ReasonSourceMissing)
		}
		return fail(err.Error())
	}

	target := DirPrefix(path) + newName
	// A case-only rename on a case-insensitive filesystem finds the source
	// itself at the target path.
	if info, err := os.Lstat(target); err == nil && !os.SameFile(oldInfo, info) {
		return fail(ReasonTargetExists)
	}

	if err := os.Rename(path, target); err != nil {
		return fail(err.Error())
	}

	e.Logger.Info().Str("from", path).Str("to", newName).Msg("renamed")
	res.Success = true
	res.NewName = newName
	return res
}

// record writes the batch to the journal. A journal failure never fails the
// batch, since the renames have already happened.
func (e *LocalExecutor) record(ctx context.Context, req ir.RenameRequest, results []ir.RenameResult) {
	if e.Journal == nil || len(results) == 0 {
		return
	}
	// The batch is recorded even when ctx was cancelled mid-run.
	id, err := e.Journal.RecordBatch(context.WithoutCancel(ctx), req, results)
	if err != nil {
		e.Logger.Warn().Err(err).Msg("journal write failed")
		return
	}
	e.Logger.Debug().Str("batch", id).Int("files", len(results)).Msg("batch journaled")
}
