package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/roach88/rxrename/internal/batch"
	"github.com/roach88/rxrename/internal/logging"
	"github.com/roach88/rxrename/internal/settings"
)

// openSession loads the settings file named by the configuration.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*batch.Session, error) {
	cfg, err := opts.Config()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to load config", err)
	}
	logger := logging.Get("settings")
	s := batch.NewSession(settings.NewFileStore(cfg.SettingsPath, logger), logger)
	if err := s.Load(ctx); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeSettings, "failed to load settings", err)
	}
	return s, nil
}

// saveSession writes the session back to its settings file.
func saveSession(ctx context.Context, s *batch.Session, f *OutputFormatter) error {
	if err := s.Save(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeSettings, "failed to save settings", err)
	}
	return nil
}

// noticeWriter prints coordinator notices to w.
func noticeWriter(w io.Writer) batch.Notifier {
	return batch.NotifierFunc(func(n batch.Notice) {
		style := dimStyle
		switch n.Level {
		case batch.NoticeWarning:
			style = warningStyle
		case batch.NoticeError:
			style = errorStyle
		}
		fmt.Fprintln(w, style.Render(fmt.Sprintf("%s: %s", n.Level, n.Message)))
		for _, d := range n.Details {
			fmt.Fprintf(w, "  %s %s\n", markSkipped, d)
		}
	})
}

// confirmerFor picks how a rename is confirmed: --yes accepts, a terminal
// gets a prompt, and anything else declines.
func confirmerFor(cmd *cobra.Command, yes, interactive bool) batch.Confirmer {
	switch {
	case yes:
		return batch.ConfirmerFunc(func(context.Context, batch.Prompt) (bool, error) { return true, nil })
	case interactive && logging.IsTerminal(cmd.InOrStdin()):
		return &promptConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
	default:
		w := cmd.ErrOrStderr()
		return batch.ConfirmerFunc(func(_ context.Context, p batch.Prompt) (bool, error) {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%s (not a terminal; pass --yes to confirm)", p.Message)))
			return false, nil
		})
	}
}

// promptConfirmer asks on the terminal.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (c *promptConfirmer) Confirm(ctx context.Context, p batch.Prompt) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(p.Title).
		Description(p.Message).
		Affirmative(p.Affirmative).
		Negative(p.Negative).
		Value(&ok)
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(c.in).
		WithOutput(c.out)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
