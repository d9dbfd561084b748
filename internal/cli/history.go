package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "Show journaled rename batches",
		Long: `Show rename batches recorded in the journal, newest first.

With a batch id (or a unique prefix of one) the batch is shown in full:
its pipeline, normalization options, and every file it touched.

Examples:
  rxrename history
  rxrename history --limit 5
  rxrename history 0199a3c2`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum batches to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	cfg, err := opts.Config()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to load config", err)
	}

	// Reading must not create an empty journal.
	if _, err := os.Stat(cfg.JournalPath); errors.Is(err, os.ErrNotExist) {
		if len(args) == 1 {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("batch %q not found", args[0]), store.ErrBatchNotFound)
		}
		if f.JSON() {
			return f.Success([]store.Batch{})
		}
		fmt.Fprintln(f.Writer, dimStyle.Render("no batches recorded"))
		return nil
	}

	st, err := store.Open(cfg.JournalPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer st.Close()

	if len(args) == 1 {
		b, err := st.ReadBatch(ctx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrBatchNotFound) {
				return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("batch %q not found", args[0]), err)
			}
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to read batch", err)
		}
		if f.JSON() {
			return f.Success(b)
		}
		writeBatch(f.Writer, b)
		return nil
	}

	batches, err := st.ListBatches(ctx, opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "failed to list batches", err)
	}
	if f.JSON() {
		return f.Success(batches)
	}
	if len(batches) == 0 {
		fmt.Fprintln(f.Writer, dimStyle.Render("no batches recorded"))
		return nil
	}
	for _, b := range batches {
		status := okStyle.Render(markOK)
		if b.Failed > 0 {
			status = warningStyle.Render(markFail)
		}
		fmt.Fprintf(f.Writer, "%s %s  %s  %d renamed, %d failed\n",
			status, headerStyle.Render(b.ID), b.CreatedAt.Local().Format("2006-01-02 15:04:05"), b.Succeeded, b.Failed)
	}
	return nil
}

func writeBatch(w io.Writer, b *store.Batch) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("batch"), b.ID)
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("at"), b.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s %d renamed, %d failed of %d\n", headerStyle.Render("files"), b.Succeeded, b.Failed, b.FileCount)
	fmt.Fprintln(w, headerStyle.Render("pipeline"))
	for i, op := range b.Pipeline {
		fmt.Fprintf(w, "  %d. %s\n", i+1, describeOp(op))
	}
	fmt.Fprintln(w, headerStyle.Render("renames"))
	for _, r := range b.Renames {
		if r.Success {
			fmt.Fprintf(w, "  %s %s %s %s\n", okStyle.Render(markOK), r.OldPath(), markArrow, r.NewName)
		} else {
			fmt.Fprintf(w, "  %s %s %s\n", errorStyle.Render(markFail), r.OldPath(), dimStyle.Render(r.Error))
		}
	}
}
