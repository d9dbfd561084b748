package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/roach88/rxrename/internal/ir"
)

// lockRetry is the polling interval while waiting for a settings lock.
const lockRetry = 50 * time.Millisecond

// FileStore loads and saves settings at Path.
// It implements batch.SettingsStore.
type FileStore struct {
	Path   string
	Logger zerolog.Logger
}

// NewFileStore returns a store for path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{Path: path, Logger: logger}
}

// Load reads the settings file. A missing file yields ir.DefaultSettings.
func (s *FileStore) Load(ctx context.Context) (ir.Settings, error) {
	format, err := FormatOf(s.Path)
	if err != nil {
		return ir.DefaultSettings(), err
	}
	if err := ctx.Err(); err != nil {
		return ir.DefaultSettings(), err
	}

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.Debug().Str("path", s.Path).Msg("no settings file; using defaults")
		return ir.DefaultSettings(), nil
	}
	if err != nil {
		return ir.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	settings, err := Decode(format, data)
	if err != nil {
		return settings, fmt.Errorf("%s: %w", s.Path, err)
	}
	s.Logger.Debug().
		Str("path", s.Path).
		Int("rules", len(settings.RegexLibrary)).
		Int("groups", len(settings.Groups)).
		Msg("settings loaded")
	return settings, nil
}

// Save writes settings atomically: the file is written to a temporary file
// in the same directory and renamed over Path while holding an exclusive
// lock on Path + ".lock".
func (s *FileStore) Save(ctx context.Context, settings ir.Settings) error {
	format, err := FormatOf(s.Path)
	if err != nil {
		return err
	}
	data, err := Encode(format, settings)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	unlock, err := lockFile(ctx, s.Path+".lock")
	if err != nil {
		return err
	}
	defer unlock()

	if err := writeAtomic(s.Path, data); err != nil {
		return err
	}
	s.Logger.Debug().Str("path", s.Path).Int("bytes", len(data)).Msg("settings saved")
	return nil
}

// BatchLock takes the lock that serializes rename batches against the
// settings at path. The returned function releases it.
func BatchLock(ctx context.Context, path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	return lockFile(ctx, path+".batch.lock")
}

func lockFile(ctx context.Context, path string) (func(), error) {
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: not acquired", path)
	}
	return func() { _ = lock.Unlock() }, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
