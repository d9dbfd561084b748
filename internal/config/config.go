// Package config loads rxrename's runtime configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. the TOML config file ($XDG_CONFIG_HOME/rxrename/config.toml, or --config)
//  3. RXRENAME_* environment variables
//  4. command-line flags (applied by the cli package)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppName names the XDG subdirectories.
const AppName = "rxrename"

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "RXRENAME_"

// Config is the runtime configuration.
type Config struct {
	// SettingsPath is the rule library and group file. Its extension picks
	// the format (.json, .yaml, .yml, .toml).
	SettingsPath string `koanf:"settings_path"`

	// JournalPath is the SQLite rename journal.
	JournalPath string `koanf:"journal_path"`

	// Journal turns batch recording on or off.
	Journal bool `koanf:"journal"`

	// MaxListed caps how many names a notice lists before "and N more".
	MaxListed int `koanf:"max_listed"`

	// LogFile receives JSON logs in addition to the console, if set.
	LogFile string `koanf:"log_file"`

	// Verbosity is the default log verbosity (0 warn, 1 info, 2 debug, 3 trace).
	Verbosity int `koanf:"verbosity"`

	// Interactive enables confirmation prompts when stdin is a terminal.
	Interactive bool `koanf:"interactive"`
}

// DefaultPath returns the config file location under XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// defaults returns the base layer.
func defaults() map[string]any {
	return map[string]any{
		"settings_path": filepath.Join(xdg.ConfigHome, AppName, "settings.yaml"),
		"journal_path":  filepath.Join(xdg.DataHome, AppName, "journal.db"),
		"journal":       true,
		"max_listed":    5,
		"log_file":      "",
		"verbosity":     0,
		"interactive":   true,
	}
}

// Load builds the configuration. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	// Unknown RXRENAME_* variables are ignored; unknown file keys are not.
	known := defaults()
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				expandHomeHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.SettingsPath == "" {
		return errors.New("settings_path must not be empty")
	}
	if c.Journal && c.JournalPath == "" {
		return errors.New("journal_path must not be empty while the journal is on")
	}
	if c.MaxListed < 1 {
		return fmt.Errorf("max_listed must be at least 1, got %d", c.MaxListed)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative, got %d", c.Verbosity)
	}
	return nil
}

// expandHomeHookFunc expands a leading "~/" in string values.
func expandHomeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.String {
			return data, nil
		}
		s := data.(string)
		if s != "~" && !strings.HasPrefix(s, "~/") {
			return data, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", s, err)
		}
		return filepath.Join(home, strings.TrimPrefix(s, "~")), nil
	}
}
