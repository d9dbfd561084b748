package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxrename/internal/ir"
)

func sampleSettings() ir.Settings {
	s := ir.DefaultSettings()
	s.RegexLibrary = []ir.RegexRule{
		{ID: "date", Name: "Date", Pattern: `(\d{4})-(\d{2})-(\d{2})`, Replacement: "$1年$2月$3日", Sample: "2023-12-25", Tags: []string{"date"}},
		{ID: "prefix", Pattern: `^`, Replacement: "[重要]_"},
	}
	s.Groups = []ir.Group{
		{ID: "g1", Name: "One", Steps: ir.Steps{
			ir.RegexStep{RegexID: "date"},
			ir.GroupRefStep{GroupID: "g2", Disabled: true},
			ir.NormalizeStep{},
		}},
		{ID: "g2", Name: "Two", Steps: ir.Steps{}},
	}
	s.UngroupedSteps = ir.Steps{ir.RegexStep{RegexID: "prefix"}}
	s.ActiveGroupID = "g1"
	s.Normalization.Colon = false
	s.Selection = []string{"/tmp/a.txt", `C:\b.txt`}
	return s
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			store := NewFileStore(filepath.Join(t.TempDir(), "nested", "settings"+ext), zerolog.Nop())
			want := sampleSettings()

			require.NoError(t, store.Save(context.Background(), want))
			got, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFileStore_MissingFileIsDefault(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"), zerolog.Nop())
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultSettings(), got)
}

func TestFileStore_UnsupportedFormat(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.ini"), zerolog.Nop())

	_, err := store.Load(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.ErrorIs(t, store.Save(context.Background(), ir.DefaultSettings()), ErrUnsupportedFormat)
}

func TestFileStore_DesktopJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	desktop := `{
  "groups": [],
  "ungroupedSteps": [{ "regexId": "rx1", "enabled": true }, { "normalize": true, "enabled": false }],
  "activeGroupId": "none",
  "regexLibrary": [{ "id": "rx1", "name": "Date", "pattern": "(\\d+)", "replacement": "<$1>" }],
  "normalization": { "space": false }
}`
	require.NoError(t, os.WriteFile(path, []byte(desktop), 0o644))

	got, err := NewFileStore(path, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ir.Steps{ir.RegexStep{RegexID: "rx1"}, ir.NormalizeStep{Disabled: true}}, got.UngroupedSteps)
	assert.False(t, got.Normalization.Space)
	assert.True(t, got.Normalization.Dash, "missing toggles keep their defaults")
	assert.Equal(t, "<$1>", got.RegexLibrary[0].Replacement)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: [unterminated"), 0o644))

	got, err := NewFileStore(path, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, ir.DefaultSettings(), got)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "settings.json"), zerolog.Nop())
	require.NoError(t, store.Save(context.Background(), sampleSettings()))
	require.NoError(t, store.Save(context.Background(), ir.DefaultSettings()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"settings.json", "settings.json.lock"}, names)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultSettings(), got)
}

func TestFileStore_EmptyActiveGroupBecomesNone(t *testing.T) {
	got, err := Decode(FormatYAML, []byte("activeGroupId: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ir.NoActiveGroup, got.ActiveGroupID)
}

func TestBatchLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	unlock, err := BatchLock(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = BatchLock(ctx, path)
	assert.Error(t, err, "second holder must not acquire the lock")

	unlock()
	unlock2, err := BatchLock(context.Background(), path)
	require.NoError(t, err)
	unlock2()
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.json": FormatJSON,
		"a.toml": FormatTOML,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("settings")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
