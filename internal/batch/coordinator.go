package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
)

// ErrExecutor wraps every error returned by the executor call itself.
var ErrExecutor = errors.New("rename executor failed")

// DefaultMaxListed is the number of patterns or failures listed in a notice
// before the rest are summarized.
const DefaultMaxListed = 5

// Notice messages for batches that stop before the executor is called.
const (
	MsgNothingSelected = "nothing selected"
	MsgNoActiveSteps   = "no active steps"
	MsgNoEffectiveOps  = "no effective operations"
	MsgUnsupported     = "rename refused: look-around is not supported by the rename backend"
	MsgPartialFailure  = "some files were not renamed"
	MsgExecutorFailed  = "rename failed"
)

// Status is how a batch ended.
type Status string

const (
	StatusNothingSelected Status = "nothing_selected"
	StatusNoActiveSteps   Status = "no_active_steps"
	StatusNoEffectiveOps  Status = "no_effective_ops"
	StatusRejected        Status = "rejected"
	StatusDeclined        Status = "declined"
	StatusCompleted       Status = "completed"
	StatusPartial         Status = "partial"
	StatusFailed          Status = "failed"
)

// Outcome reports a batch.
type Outcome struct {
	Status      Status            `json:"status"`
	Pipeline    ir.Pipeline       `json:"pipeline,omitempty"`
	Unsupported []string          `json:"unsupported,omitempty"`
	Results     []ir.RenameResult `json:"results,omitempty"`
	Renamed     int               `json:"renamed"`
	Failed      int               `json:"failed"`

	// Updated counts selection entries replaced by their new paths.
	Updated int `json:"updated"`
}

// Coordinator runs rename batches over its selection.
type Coordinator struct {
	Selection *Selection
	Executor  engine.Executor
	Confirmer Confirmer
	Notifier  Notifier

	// MaxListed caps the patterns or failures listed in a notice.
	// Zero means DefaultMaxListed.
	MaxListed int

	Logger zerolog.Logger
}

// ExecuteRename resolves steps, checks the pipeline, confirms, executes, and
// updates the selection with the new names.
//
// Batches that stop early (empty selection, no steps, nothing effective,
// unsupported patterns, declined confirmation) return an Outcome and a nil
// error after notifying the user. The executor is called at most once. A
// confirmer error is returned as is; an executor error is returned wrapped
// with ErrExecutor and leaves the selection untouched.
func (c *Coordinator) ExecuteRename(
	ctx context.Context,
	steps []ir.Step,
	library []ir.RegexRule,
	groups []ir.Group,
	opts ir.NormalizationOptions,
) (*Outcome, error) {
	if c.Selection == nil || c.Selection.Len() == 0 {
		c.notify(NoticeInfo, MsgNothingSelected, nil)
		return &Outcome{Status: StatusNothingSelected}, nil
	}
	if len(steps) == 0 {
		c.notify(NoticeInfo, MsgNoActiveSteps, nil)
		return &Outcome{Status: StatusNoActiveSteps}, nil
	}

	pipeline := compiler.Flatten(steps, library, groups)
	if len(pipeline) == 0 {
		c.Logger.Debug().Int("steps", len(steps)).Msg("steps resolved to no operations")
		c.notify(NoticeInfo, MsgNoEffectiveOps, nil)
		return &Outcome{Status: StatusNoEffectiveOps}, nil
	}

	if bad := compiler.UnsupportedPatterns(pipeline); len(bad) > 0 {
		c.Logger.Warn().Strs("patterns", bad).Msg("rename refused")
		c.notify(NoticeError, MsgUnsupported, listLimited(bad, c.maxListed()))
		return &Outcome{Status: StatusRejected, Pipeline: pipeline, Unsupported: bad}, nil
	}

	files := c.Selection.Paths()
	ok, err := c.Confirmer.Confirm(ctx, NewRenamePrompt(len(files)))
	if err != nil {
		return nil, fmt.Errorf("confirm rename: %w", err)
	}
	if !ok {
		c.Logger.Info().Int("files", len(files)).Msg("rename declined")
		return &Outcome{Status: StatusDeclined, Pipeline: pipeline}, nil
	}

	req := ir.RenameRequest{Files: files, Steps: pipeline, Normalization: opts}
	c.Logger.Debug().Int("files", len(files)).Int("ops", len(pipeline)).Msg("calling executor")
	results, err := c.Executor.Execute(ctx, req)
	if err != nil {
		c.Logger.Error().Err(err).Msg("executor call failed")
		c.notify(NoticeError, MsgExecutorFailed, []string{err.Error()})
		return &Outcome{Status: StatusFailed, Pipeline: pipeline}, fmt.Errorf("%w: %w", ErrExecutor, err)
	}

	out := &Outcome{Status: StatusCompleted, Pipeline: pipeline, Results: results}

	var failures []string
	for _, r := range results {
		if !r.Success {
			out.Failed++
			failures = append(failures, fmt.Sprintf("%s: %s", r.OldName, r.Error))
			continue
		}
		out.Renamed++
	}
	if out.Failed > 0 {
		out.Status = StatusPartial
		c.notify(NoticeWarning, MsgPartialFailure, listLimited(failures, c.maxListed()))
	}

	out.Updated = c.applyResults(files, results)
	c.Logger.Info().Int("renamed", out.Renamed).Int("failed", out.Failed).Msg("batch finished")
	return out, nil
}

// applyResults replaces each successfully renamed selection entry with its
// new path and returns the number of entries replaced.
//
// A result is matched positionally when the entry at its index has its file
// name, otherwise to the first entry not yet updated whose file name equals
// OldName. The directory prefix of the entry is kept byte for byte.
func (c *Coordinator) applyResults(files []string, results []ir.RenameResult) int {
	updated := make([]bool, len(files))
	match := func(i int, oldName string) int {
		if i < len(files) && !updated[i] {
			if name, _, _ := engine.SplitName(files[i]); name == oldName {
				return i
			}
		}
		for j, f := range files {
			if name, _, _ := engine.SplitName(f); !updated[j] && name == oldName {
				return j
			}
		}
		return -1
	}

	renamed := 0
	for i, r := range results {
		if !r.Success || r.NewName == "" {
			continue
		}
		j := match(i, r.OldName)
		if j < 0 {
			c.Logger.Warn().Str("old_name", r.OldName).Msg("result matches no selected file")
			continue
		}
		updated[j] = true
		newPath := engine.DirPrefix(files[j]) + r.NewName
		if !c.Selection.Replace(j, newPath) {
			c.Logger.Warn().Str("path", newPath).Msg("renamed path already selected")
			continue
		}
		renamed++
	}
	return renamed
}

func (c *Coordinator) notify(level NoticeLevel, msg string, details []string) {
	if c.Notifier == nil {
		return
	}
	c.Notifier.Notify(Notice{Level: level, Message: msg, Details: details})
}

func (c *Coordinator) maxListed() int {
	if c.MaxListed == 0 {
		return DefaultMaxListed
	}
	return c.MaxListed
}
