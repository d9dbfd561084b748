package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/batch"
)

// SelectionResult is the output of the select commands.
type SelectionResult struct {
	Changed   int      `json:"changed"`
	Selection []string `json:"selection"`
}

// NewSelectCommand creates the select command and its subcommands.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Manage the saved file selection",
		Long: `Manage the files that rename and preview work on by default.

Paths are stored as absolute paths. Patterns may use ** to match any
number of directories.

Examples:
  rxrename select add '~/shows/**/*.mkv'
  rxrename select ls
  rxrename select rm 2 3
  rxrename select clear`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <path|pattern>...",
		Short:         "Add files to the selection",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectAdd(rootOpts, args, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "rm <index|path>...",
		Short:         "Remove files by 1-based index or path",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectRemove(rootOpts, args, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "ls",
		Short:         "List the selection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Empty the selection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectClear(rootOpts, cmd)
		},
	})

	return cmd
}

func runSelectAdd(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	var paths []string
	for _, arg := range args {
		matches, err := expandPattern(arg)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("bad pattern %q", arg), err)
		}
		if len(matches) == 0 {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no files match %q", arg), nil)
		}
		paths = append(paths, matches...)
	}

	sel := batch.NewSelection(s.Settings.Selection...)
	added := sel.Add(paths...)
	return finishSelection(cmd, f, s, sel, added, "added")
}

// expandPattern returns the regular files named by arg as absolute paths.
// Arguments without glob metacharacters must name an existing file.
func expandPattern(arg string) ([]string, error) {
	arg = expandHome(arg)
	if !hasMeta(arg) {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", arg)
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		return []string{abs}, nil
	}

	matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	slices.Sort(out)
	return out, nil
}

func hasMeta(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func expandHome(p string) string {
	if p != "~" && (len(p) < 2 || p[:2] != "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func runSelectRemove(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}

	sel := batch.NewSelection(s.Settings.Selection...)
	paths := sel.Paths()
	var indices []int
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			if n < 1 || n > len(paths) {
				return f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("index %d out of range 1..%d", n, len(paths)), nil)
			}
			indices = append(indices, n-1)
			continue
		}
		abs, err := filepath.Abs(expandHome(arg))
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("bad path %q", arg), err)
		}
		i := slices.Index(paths, abs)
		if i < 0 {
			i = slices.Index(paths, arg)
		}
		if i < 0 {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s is not selected", arg), nil)
		}
		indices = append(indices, i)
	}

	removed := sel.Remove(indices...)
	return finishSelection(cmd, f, s, sel, removed, "removed")
}

func runSelectClear(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	sel := batch.NewSelection(s.Settings.Selection...)
	n := sel.Len()
	sel.Clear()
	return finishSelection(cmd, f, s, sel, n, "removed")
}

func runSelectList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts, f)
	if err != nil {
		return err
	}
	paths := s.Settings.Selection
	if paths == nil {
		paths = []string{}
	}
	if f.JSON() {
		return f.Success(SelectionResult{Selection: paths})
	}
	writeSelection(cmd, paths)
	return nil
}

func finishSelection(cmd *cobra.Command, f *OutputFormatter, s *batch.Session, sel *batch.Selection, changed int, verb string) error {
	paths := sel.Paths()
	if len(paths) == 0 {
		paths = nil
	}
	s.Settings.Selection = paths
	if changed > 0 {
		if err := saveSession(cmd.Context(), s, f); err != nil {
			return err
		}
	}

	if paths == nil {
		paths = []string{}
	}
	if f.JSON() {
		return f.Success(SelectionResult{Changed: changed, Selection: paths})
	}
	fmt.Fprintln(f.Writer, okStyle.Render(fmt.Sprintf("%s %d file(s); %d selected", verb, changed, len(paths))))
	return nil
}

func writeSelection(cmd *cobra.Command, paths []string) {
	w := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintln(w, dimStyle.Render("nothing selected"))
		return
	}
	for i, p := range paths {
		fmt.Fprintf(w, "%3d  %s\n", i+1, p)
	}
}
