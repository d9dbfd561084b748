package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/compiler"
	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/settings"
)

// GroupView is one group as listed by group ls.
type GroupView struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Active bool            `json:"active"`
	Steps  []ir.StepRecord `json:"steps"`
}

// GroupListing is the output of group ls.
type GroupListing struct {
	ActiveGroupID  string          `json:"active_group_id"`
	Groups         []GroupView     `json:"groups"`
	UngroupedSteps []ir.StepRecord `json:"ungrouped_steps"`
}

// StepOptions holds flags for group step add.
type StepOptions struct {
	*RootOptions
	RegexID   string
	GroupID   string
	Normalize bool
	Disabled  bool
}

// NewGroupCommand creates the group command and its subcommands.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups and their steps",
		Long: `Manage groups: ordered lists of rule steps, normalization steps, and
references to other groups.

Wherever a group id is expected, "ungrouped" names the list of steps that
runs when no group is active. Step indices are 1-based.

Examples:
  rxrename group add tv --name "TV episodes"
  rxrename group step add tv --regex date
  rxrename group step add tv --group cleanup
  rxrename group step add tv --normalize
  rxrename group step disable tv 2
  rxrename group use tv`,
	}

	var name string
	add := &cobra.Command{
		Use:           "add <id>",
		Short:         "Create a group, or rename an existing one",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupAdd(rootOpts, args[0], name, cmd)
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name (default: the id)")

	cmd.AddCommand(
		&cobra.Command{
			Use:           "ls",
			Short:         "List groups and ungrouped steps",
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGroupList(rootOpts, cmd)
			},
		},
		add,
		&cobra.Command{
			Use:           "rm <id>",
			Short:         "Remove a group",
			Args:          cobra.ExactArgs(1),
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGroupEdit(rootOpts, cmd, func(s *ir.Settings) (string, error) {
					return "removed group " + args[0], settings.RemoveGroup(s, args[0])
				})
			},
		},
		&cobra.Command{
			Use:           "use <id|ungrouped>",
			Short:         "Set the active group",
			Args:          cobra.ExactArgs(1),
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGroupEdit(rootOpts, cmd, func(s *ir.Settings) (string, error) {
					return "active: " + args[0], settings.SetActiveGroup(s, args[0])
				})
			},
		},
		newStepCommand(rootOpts),
	)

	return cmd
}

func newStepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Edit the steps of a group",
	}

	opts := &StepOptions{RootOptions: rootOpts}
	add := &cobra.Command{
		Use:           "add <group|ungrouped>",
		Short:         "Append a step",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := opts.step()
			if err != nil {
				return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
			}
			return runGroupEdit(rootOpts, cmd, func(s *ir.Settings) (string, error) {
				return "added step to " + args[0], settings.AddStep(s, args[0], step)
			})
		},
	}
	add.Flags().StringVar(&opts.RegexID, "regex", "", "rule id to run")
	add.Flags().StringVar(&opts.GroupID, "group", "", "group id to run")
	add.Flags().BoolVar(&opts.Normalize, "normalize", false, "run the normalizer")
	add.Flags().BoolVar(&opts.Disabled, "disabled", false, "add the step disabled")
	add.MarkFlagsOneRequired("regex", "group", "normalize")
	add.MarkFlagsMutuallyExclusive("regex", "group", "normalize")

	indexed := func(use, short, verb string, edit func(s *ir.Settings, target string, index int) error) *cobra.Command {
		return &cobra.Command{
			Use:           use + " <group|ungrouped> <index>",
			Short:         short,
			Args:          cobra.ExactArgs(2),
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return rootOpts.formatter(cmd).Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("bad index %q", args[1]), nil)
				}
				return runGroupEdit(rootOpts, cmd, func(s *ir.Settings) (string, error) {
					return fmt.Sprintf("%s step %d of %s", verb, n, args[0]), edit(s, args[0], n-1)
				})
			},
		}
	}

	cmd.AddCommand(
		add,
		indexed("rm", "Remove a step", "removed", settings.RemoveStep),
		indexed("enable", "Enable a step", "enabled", func(s *ir.Settings, target string, i int) error {
			return settings.SetStepEnabled(s, target, i, true)
		}),
		indexed("disable", "Disable a step", "disabled", func(s *ir.Settings, target string, i int) error {
			return settings.SetStepEnabled(s, target, i, false)
		}),
	)
	return cmd
}

// step builds the step described by the flags.
func (o *StepOptions) step() (ir.Step, error) {
	switch {
	case o.RegexID != "":
		return ir.RegexStep{RegexID: o.RegexID, Disabled: o.Disabled}, nil
	case o.GroupID != "":
		return ir.GroupRefStep{GroupID: o.GroupID, Disabled: o.Disabled}, nil
	case o.Normalize:
		return ir.NormalizeStep{Disabled: o.Disabled}, nil
	default:
		return nil, errors.New("one of --regex, --group, or --normalize is required")
	}
}

func runGroupAdd(opts *RootOptions, id, name string, cmd *cobra.Command) error {
	return runGroupEdit(opts, cmd, func(s *ir.Settings) (string, error) {
		g := ir.Group{ID: id, Name: name, Steps: ir.Steps{}}
		if g.Name == "" {
			g.Name = id
		}
		if id == settings.UngroupedTarget || id == ir.NoActiveGroup {
			return "", fmt.Errorf("%q is reserved", id)
		}
		for _, existing := range s.Groups {
			if existing.ID == id {
				g.Steps = existing.Steps
				if name == "" {
					g.Name = existing.Name
				}
			}
		}
		if settings.UpsertGroup(s, g) {
			return "added group " + id, nil
		}
		return "updated group " + id, nil
	})
}

// runGroupEdit loads settings, applies edit, reports new cycles, and saves.
func runGroupEdit(opts *RootOptions, cmd *cobra.Command, edit func(s *ir.Settings) (string, error)) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	msg, err := edit(&s.Settings)
	if err != nil {
		code := ErrCodeUsage
		if errors.Is(err, settings.ErrGroupNotFound) || errors.Is(err, settings.ErrStepIndex) {
			code = ErrCodeNotFound
		}
		return f.Fail(ExitCommandError, code, err.Error(), nil)
	}
	if err := saveSession(cmd.Context(), s, f); err != nil {
		return err
	}

	cycles := compiler.AnalyzeCycles(s.Settings.Groups)
	if f.JSON() {
		return f.Success(map[string]any{"message": msg, "cycles": cycles})
	}
	fmt.Fprintln(f.Writer, okStyle.Render(markOK+" "+msg))
	writeCycles(f.GetErrWriter(), cycles)
	return nil
}

func runGroupList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	st := s.Settings
	listing := GroupListing{
		ActiveGroupID:  st.ActiveGroupID,
		Groups:         make([]GroupView, 0, len(st.Groups)),
		UngroupedSteps: st.UngroupedSteps.Records(),
	}
	for _, g := range st.Groups {
		listing.Groups = append(listing.Groups, GroupView{
			ID:     g.ID,
			Name:   g.Name,
			Active: g.ID == st.ActiveGroupID,
			Steps:  g.Steps.Records(),
		})
	}

	if f.JSON() {
		return f.Success(listing)
	}

	cat := compiler.NewCatalog(st.RegexLibrary, st.Groups)
	for _, g := range st.Groups {
		mark := " "
		if g.ID == st.ActiveGroupID {
			mark = markActive
		}
		fmt.Fprintf(f.Writer, "%s %s  %s\n", mark, headerStyle.Render(g.ID), g.Name)
		writeSteps(f.Writer, cat, g.Steps)
	}
	mark := " "
	if _, ok := st.ActiveGroup(); !ok {
		mark = markActive
	}
	fmt.Fprintf(f.Writer, "%s %s\n", mark, headerStyle.Render(settings.UngroupedTarget))
	writeSteps(f.Writer, cat, st.UngroupedSteps)
	return nil
}

func writeSteps(w io.Writer, cat *compiler.Catalog, steps ir.Steps) {
	for i, step := range steps {
		line := describeStep(cat, step)
		if step == nil || !step.Enabled() {
			line = dimStyle.Render(line + " (disabled)")
		}
		fmt.Fprintf(w, "    %d. %s\n", i+1, line)
	}
}

// describeStep names a step and flags dangling references.
func describeStep(cat *compiler.Catalog, step ir.Step) string {
	switch st := step.(type) {
	case ir.RegexStep:
		r, ok := cat.Rule(st.RegexID)
		if !ok {
			return fmt.Sprintf("rule %s %s", st.RegexID, warningStyle.Render("(missing)"))
		}
		return fmt.Sprintf("rule %s  %s %s %s", r.DisplayName(), r.Pattern, markArrow, r.Replacement)
	case ir.GroupRefStep:
		if _, ok := cat.Group(st.GroupID); !ok {
			return fmt.Sprintf("group %s %s", st.GroupID, warningStyle.Render("(missing)"))
		}
		return "group " + st.GroupID
	case ir.NormalizeStep:
		return "normalize"
	default:
		return "malformed step"
	}
}
