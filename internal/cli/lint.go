package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/compiler"
)

// LintResult holds lint findings.
type LintResult struct {
	Valid    bool                       `json:"valid"`
	Findings []compiler.ValidationError `json:"findings,omitempty"`
	Cycles   []compiler.CycleWarning    `json:"cycles,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the rule library and groups",
		Long: `Check the rule library and groups for problems.

Errors (duplicate ids, empty or invalid patterns, look-around) make the
command exit with status 1. Warnings (dangling references, malformed steps,
rules that leave their sample unchanged, group cycles) are reported but do
not fail: the pipeline still runs with them skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, cmd)
		},
	}

	return cmd
}

func runLint(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	findings := compiler.Lint(s.Settings)
	cycles := compiler.AnalyzeCycles(s.Settings.Groups)

	if compiler.HasErrors(findings) {
		return reportFindings(f, findings, cycles)
	}

	result := LintResult{Valid: true, Findings: findings, Cycles: cycles}
	if f.JSON() {
		return f.Success(result)
	}

	writeFindings(f.Writer, findings)
	writeCycles(f.Writer, cycles)
	if len(findings) == 0 && len(cycles) == 0 {
		fmt.Fprintln(f.Writer, okStyle.Render(markOK+" no problems found"))
	} else {
		fmt.Fprintln(f.Writer, okStyle.Render(fmt.Sprintf("%s no errors (%d warning(s))", markOK, len(findings)+len(cycles))))
	}
	return nil
}

// reportFindings outputs error-level findings and returns an ExitFailure.
func reportFindings(f *OutputFormatter, findings []compiler.ValidationError, cycles []compiler.CycleWarning) error {
	errCount := 0
	var first compiler.ValidationError
	for _, v := range findings {
		if v.IsError() {
			if errCount == 0 {
				first = v
			}
			errCount++
		}
	}
	msg := fmt.Sprintf("lint failed with %d error(s)", errCount)

	if f.JSON() {
		result := LintResult{Valid: false, Findings: findings, Cycles: cycles}
		if err := f.ErrorWithData(first.Code, first.Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(f.Writer, errorStyle.Render(markFail+" Lint failed"))
	fmt.Fprintln(f.Writer)
	writeFindings(f.Writer, findings)
	writeCycles(f.Writer, cycles)
	return NewExitError(ExitFailure, msg)
}

func writeFindings(w io.Writer, findings []compiler.ValidationError) {
	for _, v := range findings {
		style := warningStyle
		if v.IsError() {
			style = errorStyle
		}
		fmt.Fprintf(w, "%s %s\n", style.Render(fmt.Sprintf("%s %s", v.Level, v.Code)), v.Field)
		fmt.Fprintf(w, "  %s\n", v.Message)
	}
}

func writeCycles(w io.Writer, cycles []compiler.CycleWarning) {
	for _, c := range cycles {
		fmt.Fprintf(w, "%s %s\n", warningStyle.Render("warning cycle"), strings.Join(c.Path, " "+markArrow+" "))
		fmt.Fprintf(w, "  %s\n", c.Message)
	}
}
