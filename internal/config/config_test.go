package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG at a temp dir and clears RXRENAME_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	xdg.Reload()
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config", "rxrename", "settings.yaml"), cfg.SettingsPath)
	assert.Equal(t, filepath.Join(dir, "data", "rxrename", "journal.db"), cfg.JournalPath)
	assert.True(t, cfg.Journal)
	assert.True(t, cfg.Interactive)
	assert.Equal(t, 5, cfg.MaxListed)
	assert.Equal(t, 0, cfg.Verbosity)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_DefaultFileOverrides(t *testing.T) {
	isolate(t)
	writeConfig(t, DefaultPath(), `
settings_path = "/srv/rules.yaml"
max_listed = 3
journal = false
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/rules.yaml", cfg.SettingsPath)
	assert.Equal(t, 3, cfg.MaxListed)
	assert.False(t, cfg.Journal)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeConfig(t, path, `verbosity = 2`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Verbosity)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.toml")
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	isolate(t)
	writeConfig(t, DefaultPath(), `max_listed = 3`)
	t.Setenv("RXRENAME_MAX_LISTED", "9")
	t.Setenv("RXRENAME_JOURNAL", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxListed)
	assert.False(t, cfg.Journal)
}

func TestLoad_ExpandsHome(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RXRENAME_SETTINGS_PATH", "~/rules.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "rules.json"), cfg.SettingsPath)
}

func TestLoad_UnknownKey(t *testing.T) {
	isolate(t)
	writeConfig(t, DefaultPath(), `colour = "blue"`)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoad_UnknownEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("RXRENAME_COLOUR", "blue")

	_, err := Load("")
	assert.NoError(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	writeConfig(t, DefaultPath(), `max_listed = `)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestValidate(t *testing.T) {
	valid := Config{SettingsPath: "s.json", JournalPath: "j.db", Journal: true, MaxListed: 5}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no settings", func(c *Config) { c.SettingsPath = "" }, "settings_path"},
		{"journal without path", func(c *Config) { c.JournalPath = "" }, "journal_path"},
		{"max listed zero", func(c *Config) { c.MaxListed = 0 }, "max_listed"},
		{"negative verbosity", func(c *Config) { c.Verbosity = -1 }, "verbosity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	off := valid
	off.Journal = false
	off.JournalPath = ""
	assert.NoError(t, off.Validate(), "an unused journal path may be empty")
}
