package batch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/rxrename/internal/ir"
)

// SettingsStore loads and saves settings.
type SettingsStore interface {
	Load(ctx context.Context) (ir.Settings, error)
	Save(ctx context.Context, s ir.Settings) error
}

// Session holds the settings of one run along with the store they came from.
type Session struct {
	Settings ir.Settings
	Store    SettingsStore
	Logger   zerolog.Logger
}

// NewSession returns a session holding default settings.
func NewSession(store SettingsStore, logger zerolog.Logger) *Session {
	return &Session{Settings: ir.DefaultSettings(), Store: store, Logger: logger}
}

// Load replaces the session settings with the stored ones. When the store
// fails the current settings are kept, the failure is logged, and the error
// is returned.
func (s *Session) Load(ctx context.Context) error {
	loaded, err := s.Store.Load(ctx)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("settings load failed; keeping current settings")
		return fmt.Errorf("load settings: %w", err)
	}
	s.Settings = loaded
	return nil
}

// Save writes the session settings to the store. Failures are logged and
// returned.
func (s *Session) Save(ctx context.Context) error {
	if err := s.Store.Save(ctx, s.Settings); err != nil {
		s.Logger.Error().Err(err).Msg("settings save failed")
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// RunSession runs a batch over the session's selection with its active
// steps, then writes the updated selection back into the session. The
// session is not saved.
func (c *Coordinator) RunSession(ctx context.Context, s *Session) (*Outcome, error) {
	c.Selection = NewSelection(s.Settings.Selection...)
	out, err := c.ExecuteRename(
		ctx,
		s.Settings.ActiveSteps(),
		s.Settings.RegexLibrary,
		s.Settings.Groups,
		s.Settings.Normalization,
	)
	if paths := c.Selection.Paths(); len(paths) > 0 {
		s.Settings.Selection = paths
	} else {
		s.Settings.Selection = nil
	}
	return out, err
}
