package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/config"
	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath   string
	SettingsPath string
	Verbosity    int
	Format       string // "json" | "text"

	cfgOnce sync.Once
	cfg     *config.Config
	cfgErr  error

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rxrename CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute runs the CLI with os.Args. The log file opened for the command is
// closed whether or not the command succeeds.
func Execute(ctx context.Context) error {
	opts := &RootOptions{}
	return execute(ctx, newRootCommand(opts), opts)
}

func execute(ctx context.Context, cmd *cobra.Command, opts *RootOptions) error {
	defer opts.closeLog()
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rxrename",
		Version: ir.ToolVersion,
		Short:   "Batch-rename files with regex rules and nestable groups",
		Long: `rxrename renames files in batches by running a pipeline of regular
expression substitutions and Unicode normalization over each file stem.

Rules live in a library; groups are ordered lists of rules, normalization
steps, and references to other groups. The active group (or the ungrouped
steps) is flattened into a pipeline, checked, confirmed, and applied to the
selected files. Extensions are never changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := opts.Config()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			closer, err := logging.Setup(max(opts.Verbosity, cfg.Verbosity), cmd.ErrOrStderr(), cfg.LogFile)
			opts.logCloser = closer
			if err != nil {
				logger := logging.Get("cli")
				logger.Warn().Err(err).Msg("log file unavailable")
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/rxrename/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.SettingsPath, "settings", "", "settings file (overrides settings_path)")
	cmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewRuleCommand(opts))
	cmd.AddCommand(NewGroupCommand(opts))
	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Config loads the configuration once, applying the --settings override.
func (o *RootOptions) Config() (*config.Config, error) {
	o.cfgOnce.Do(func() {
		o.cfg, o.cfgErr = config.Load(o.ConfigPath)
		if o.cfgErr == nil && o.SettingsPath != "" {
			o.cfg.SettingsPath = o.SettingsPath
		}
	})
	return o.cfg, o.cfgErr
}

// closeLog releases the log file opened by the last run, if any.
func (o *RootOptions) closeLog() {
	if o.logCloser == nil {
		return
	}
	if err := o.logCloser.Close(); err != nil {
		logger := logging.Get("cli")
		logger.Debug().Err(err).Msg("close log file")
	}
	o.logCloser = nil
}

// formatter returns an output formatter bound to the command's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
