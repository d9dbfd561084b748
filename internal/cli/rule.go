package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/settings"
)

// RuleOptions holds flags for rule add.
type RuleOptions struct {
	*RootOptions
	ID          string
	Name        string
	Pattern     string
	Replacement string
	Sample      string
	Tags        []string

	// IDs generates ids for new rules (for testing). Defaults to UUIDv7.
	IDs ir.IDGenerator
}

// RuleChange is the output of rule add and rule rm.
type RuleChange struct {
	Rule     ir.RegexRule               `json:"rule"`
	Added    bool                       `json:"added"`
	Findings []compiler.ValidationError `json:"findings,omitempty"`
}

// NewRuleCommand creates the rule command and its subcommands.
func NewRuleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage the regex rule library",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "ls",
		Short:         "List rules",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(newRuleAddCommand(&RuleOptions{RootOptions: rootOpts}))
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a rule",
		Long: `Remove a rule from the library.

Steps that reference the rule stay in their groups and are skipped until a
rule with the same id is added again. Run lint to find them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleRemove(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func newRuleAddCommand(opts *RuleOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a rule",
		Long: `Add a rule to the library, or replace the rule with the same --id.

Replacements use $1, ${1}, and ${name} for captured groups and $$ for a
literal dollar sign.

Examples:
  rxrename rule add --name Date --pattern '(\d{4})-(\d{2})' --replacement '$1年$2月' --sample 2023-12
  rxrename rule add --id spaces --pattern '_' --replacement ' '`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "rule id (default: generated)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "regular expression (required)")
	cmd.Flags().StringVar(&opts.Replacement, "replacement", "", "replacement template")
	cmd.Flags().StringVar(&opts.Sample, "sample", "", "sample input checked by lint")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("pattern")

	return cmd
}

func runRuleList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	rules := s.Settings.RegexLibrary
	if f.JSON() {
		return f.Success(rules)
	}
	if len(rules) == 0 {
		fmt.Fprintln(f.Writer, dimStyle.Render("no rules"))
		return nil
	}
	for _, r := range rules {
		fmt.Fprintf(f.Writer, "%s  %s\n", headerStyle.Render(r.ID), r.DisplayName())
		fmt.Fprintf(f.Writer, "    %s %s %s\n", r.Pattern, markArrow, r.Replacement)
		if len(r.Tags) > 0 {
			fmt.Fprintf(f.Writer, "    %s\n", dimStyle.Render("tags: "+strings.Join(r.Tags, ", ")))
		}
	}
	return nil
}

func runRuleAdd(opts *RuleOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts.RootOptions, f)
	if err != nil {
		return err
	}

	ids := opts.IDs
	if ids == nil {
		ids = ir.UUIDv7Generator{}
	}
	rule := ir.RegexRule{
		ID:          opts.ID,
		Name:        opts.Name,
		Pattern:     opts.Pattern,
		Replacement: opts.Replacement,
		Sample:      opts.Sample,
		Tags:        opts.Tags,
	}
	if rule.ID == "" {
		rule.ID = ids.NewID()
	}

	findings := compiler.Lint(ir.Settings{RegexLibrary: []ir.RegexRule{rule}})
	if compiler.HasErrors(findings) {
		return reportFindings(f, findings, nil)
	}

	added := settings.UpsertRule(&s.Settings, rule)
	if err := saveSession(cmd.Context(), s, f); err != nil {
		return err
	}

	change := RuleChange{Rule: rule, Added: added, Findings: findings}
	if f.JSON() {
		return f.Success(change)
	}
	verb := "updated"
	if added {
		verb = "added"
	}
	fmt.Fprintln(f.Writer, okStyle.Render(fmt.Sprintf("%s %s rule %s", markOK, verb, rule.ID)))
	writeFindings(f.GetErrWriter(), findings)
	return nil
}

func runRuleRemove(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	if err := settings.RemoveRule(&s.Settings, id); err != nil {
		if errors.Is(err, settings.ErrRuleNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to remove rule", err)
	}
	if err := saveSession(cmd.Context(), s, f); err != nil {
		return err
	}
	if f.JSON() {
		return f.Success(map[string]string{"removed": id})
	}
	fmt.Fprintln(f.Writer, okStyle.Render(fmt.Sprintf("%s removed rule %s", markOK, id)))
	return nil
}
