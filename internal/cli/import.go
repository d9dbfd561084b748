package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/settings"
)

// ImportResult is the output of the import command.
type ImportResult struct {
	settings.ImportSummary
	Findings []compiler.ValidationError `json:"findings,omitempty"`
	Cycles   []compiler.CycleWarning    `json:"cycles,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <pack-dir>",
		Short: "Import rules and groups from a CUE rule pack",
		Long: `Import rules and groups from a directory of CUE files.

A pack declares rules and groups by id:

  rule: date: {
      name:        "Date"
      pattern:     "(\\d{4})-(\\d{2})"
      replacement: "$1年$2月"
  }
  group: tv: {
      name: "TV"
      steps: [{regex: "date"}, {normalize: true}]
  }

Entries replace library entries with the same id; everything else in the
settings is kept. The merged settings must pass lint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], dryRun, cmd)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check the pack without saving")

	return cmd
}

func runImport(opts *RootOptions, dir string, dryRun bool, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	pack, err := settings.LoadRulePack(dir)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodePackInvalid, "failed to load rule pack", err)
	}

	summary := settings.Import(&s.Settings, pack)
	findings := compiler.Lint(s.Settings)
	cycles := compiler.AnalyzeCycles(s.Settings.Groups)
	if compiler.HasErrors(findings) {
		return reportFindings(f, findings, cycles)
	}

	if !dryRun {
		if err := saveSession(cmd.Context(), s, f); err != nil {
			return err
		}
	}

	result := ImportResult{ImportSummary: summary, Findings: findings, Cycles: cycles}
	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintln(f.Writer, okStyle.Render(fmt.Sprintf("%s rules: %d added, %d updated; groups: %d added, %d updated",
		markOK, summary.RulesAdded, summary.RulesUpdated, summary.GroupsAdded, summary.GroupsUpdated)))
	if dryRun {
		fmt.Fprintln(f.Writer, dimStyle.Render("dry run; settings not saved"))
	}
	writeFindings(f.GetErrWriter(), findings)
	writeCycles(f.GetErrWriter(), cycles)
	return nil
}
