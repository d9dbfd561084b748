package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/normalize"
)

// NormalizeResult is one normalized input.
type NormalizeResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var nfkcOnly bool

	cmd := &cobra.Command{
		Use:   "normalize <text>...",
		Short: "Run the Unicode normalizer on text",
		Long: `Run the Unicode normalizer on each argument with the normalization
options from the settings file, printing one result per line.

NFKC always runs first; --nfkc-only turns every symbol rule off.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, err := openSession(cmd.Context(), rootOpts, f)
			if err != nil {
				return err
			}
			opts := s.Settings.Normalization
			if nfkcOnly {
				opts = ir.NormalizationOptions{}
			}

			results := make([]NormalizeResult, 0, len(args))
			for _, in := range args {
				results = append(results, NormalizeResult{Input: in, Output: normalize.Normalize(in, opts)})
			}
			if f.JSON() {
				return f.Success(results)
			}
			for _, r := range results {
				fmt.Fprintln(f.Writer, r.Output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&nfkcOnly, "nfkc-only", false, "apply NFKC only")

	return cmd
}
