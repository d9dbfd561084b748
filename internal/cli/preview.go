package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Explain bool
}

// PreviewEntry is the computed name of one file.
type PreviewEntry struct {
	Path    string   `json:"path"`
	OldName string   `json:"old_name"`
	NewName string   `json:"new_name"`
	Changed bool     `json:"changed"`
	Stems   []string `json:"stems,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// PreviewResult is the output of the preview command.
type PreviewResult struct {
	Pipeline    ir.Pipeline    `json:"pipeline"`
	Unsupported []string       `json:"unsupported,omitempty"`
	Entries     []PreviewEntry `json:"entries"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview [paths...]",
		Short: "Show the new name of each file without renaming",
		Long: `Show the name each file would get from the active steps.

Without paths the saved selection is previewed. Patterns using look-around
are evaluated for preview but rename will refuse them.

Examples:
  rxrename preview
  rxrename preview ~/shows/*.mkv --explain
  rxrename preview --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "show the stem after each operation")

	return cmd
}

func runPreview(opts *PreviewOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts.RootOptions, f)
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files = s.Settings.Selection
	}
	if len(files) == 0 {
		return f.Fail(ExitCommandError, ErrCodeUsage, "nothing selected", nil)
	}

	st := s.Settings
	pipeline := compiler.Flatten(st.ActiveSteps(), st.RegexLibrary, st.Groups)
	result := PreviewResult{
		Pipeline:    pipeline,
		Unsupported: compiler.UnsupportedPatterns(pipeline),
		Entries:     make([]PreviewEntry, 0, len(files)),
	}

	applier := engine.NewApplier()
	for _, path := range files {
		tr := applier.Trace(path, pipeline, st.Normalization)
		entry := PreviewEntry{
			Path:    path,
			OldName: tr.FileName,
			NewName: tr.NewName,
			Changed: tr.NewName != tr.FileName,
			Error:   tr.Error,
		}
		if opts.Explain {
			entry.Stems = tr.Stems
		}
		result.Entries = append(result.Entries, entry)
	}

	if f.JSON() {
		return f.Success(result)
	}
	writePreview(f.Writer, result)
	if len(result.Unsupported) > 0 {
		fmt.Fprintln(f.GetErrWriter(), warningStyle.Render("warning: look-around is preview only; rename will refuse:"))
		for _, p := range result.Unsupported {
			fmt.Fprintf(f.GetErrWriter(), "  %s %s\n", markSkipped, p)
		}
	}
	return nil
}

func writePreview(w io.Writer, r PreviewResult) {
	if len(r.Pipeline) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no effective operations"))
	}
	for _, e := range r.Entries {
		if !e.Changed {
			fmt.Fprintf(w, "%s %s\n", dimStyle.Render(e.OldName), dimStyle.Render("(unchanged)"))
		} else {
			fmt.Fprintf(w, "%s %s %s\n", e.OldName, markArrow, changedStyle.Render(e.NewName))
		}
		if e.Error != "" {
			fmt.Fprintf(w, "  %s\n", errorStyle.Render(e.Error))
		}
		for i, stem := range e.Stems {
			if i >= len(r.Pipeline) {
				break
			}
			fmt.Fprintf(w, "  %d. %-32s %s\n", i+1, describeOp(r.Pipeline[i]), stem)
		}
	}
}

// describeOp renders an op for --explain and history output.
func describeOp(op ir.Op) string {
	switch o := op.(type) {
	case ir.RegexOp:
		return fmt.Sprintf("s/%s/%s/", o.Pattern, o.Replacement)
	case ir.NormalizeOp:
		return "normalize"
	default:
		return fmt.Sprintf("%T", op)
	}
}
