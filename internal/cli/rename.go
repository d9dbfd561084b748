package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/batch"
	"github.com/roach88/rxrename/internal/config"
	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/logging"
	"github.com/roach88/rxrename/internal/settings"
	"github.com/roach88/rxrename/internal/store"
)

// lockTimeout bounds the wait for a concurrent batch to finish.
const lockTimeout = 2 * time.Second

// RenameOptions holds flags for the rename command.
type RenameOptions struct {
	*RootOptions
	Yes bool

	// Executor overrides the local executor (for testing).
	Executor engine.Executor
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename [paths...]",
		Short: "Rename files with the active steps",
		Long: `Rename files by applying the active group (or the ungrouped steps).

Without paths the saved selection is renamed and, afterwards, updated in the
settings file to the new names. The pipeline is refused before any file is
touched if a pattern uses look-around.

A confirmation prompt is shown when stdin is a terminal. Use --yes to skip
it; a non-interactive run without --yes renames nothing.

Examples:
  rxrename rename
  rxrename rename --yes ./downloads/*.mp4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "rename without asking for confirmation")

	return cmd
}

// RenameReport is the output of the rename command.
type RenameReport struct {
	*batch.Outcome
	Saved     bool   `json:"saved"`
	SaveError string `json:"save_error,omitempty"`
}

func runRename(opts *RenameOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)
	logger := logging.Get("rename")

	cfg, err := opts.Config()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to load config", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	unlock, err := settings.BatchLock(lockCtx, cfg.SettingsPath)
	cancel()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeLocked, "another rename is in progress", err)
	}
	defer unlock()

	s, err := openSession(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}

	executor := opts.Executor
	if executor == nil {
		journal, closeJournal, err := openJournal(cfg)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer closeJournal()
		executor = engine.NewLocalExecutor(journal, logging.Get("executor"))
	}

	coord := &batch.Coordinator{
		Executor:  executor,
		Confirmer: confirmerFor(cmd, opts.Yes, cfg.Interactive),
		Notifier:  noticeWriter(f.GetErrWriter()),
		MaxListed: cfg.MaxListed,
		Logger:    logger,
	}

	var out *batch.Outcome
	fromSettings := len(args) == 0
	if fromSettings {
		out, err = coord.RunSession(ctx, s)
	} else {
		coord.Selection = batch.NewSelection(args...)
		st := s.Settings
		out, err = coord.ExecuteRename(ctx, st.ActiveSteps(), st.RegexLibrary, st.Groups, st.Normalization)
	}
	if err != nil {
		if errors.Is(err, batch.ErrExecutor) {
			return f.Fail(ExitCommandError, ErrCodeExecutor, "rename failed", err)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, "rename aborted", err)
	}

	report := RenameReport{Outcome: out}
	if fromSettings && out.Updated > 0 {
		// the files are already renamed; report them even if the selection
		// cannot be written back
		if err := s.Save(ctx); err != nil {
			report.SaveError = err.Error()
		} else {
			report.Saved = true
		}
	}

	if f.JSON() {
		if err := f.Success(report); err != nil {
			return err
		}
	} else {
		writeRenameReport(f.Writer, report)
	}

	switch out.Status {
	case batch.StatusRejected:
		return NewExitError(ExitFailure, ErrCodeRejected+": "+batch.MsgUnsupported)
	case batch.StatusPartial:
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed", out.Failed, len(out.Results)))
	}
	return nil
}

// openJournal opens the journal named by cfg, or returns a nil journal when
// recording is off.
func openJournal(cfg *config.Config) (engine.Journal, func(), error) {
	if !cfg.Journal {
		return nil, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.JournalPath), 0o755); err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.JournalPath)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { st.Close() }, nil
}

func writeRenameReport(w io.Writer, r RenameReport) {
	switch r.Status {
	case batch.StatusDeclined:
		fmt.Fprintln(w, dimStyle.Render("rename cancelled"))
		return
	case batch.StatusCompleted, batch.StatusPartial:
	default:
		// the notice already explained why nothing ran
		return
	}

	for _, res := range r.Results {
		if res.Success {
			fmt.Fprintf(w, "%s %s %s %s\n", okStyle.Render(markOK), res.OldName, markArrow, res.NewName)
		} else {
			fmt.Fprintf(w, "%s %s %s\n", errorStyle.Render(markFail), res.OldName, dimStyle.Render(res.Error))
		}
	}
	summary := fmt.Sprintf("%d renamed, %d failed", r.Renamed, r.Failed)
	if r.Failed > 0 {
		fmt.Fprintln(w, warningStyle.Render(summary))
	} else {
		fmt.Fprintln(w, okStyle.Render(summary))
	}
	if r.Saved {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("selection updated (%d)", r.Updated)))
	}
	if r.SaveError != "" {
		fmt.Fprintln(w, warningStyle.Render("selection not saved: "+r.SaveError))
	}
}
