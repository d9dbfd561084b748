package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxrename/internal/config"
)

// testEnv runs the root command against a private settings file, journal,
// and XDG tree, with prompts disabled.
type testEnv struct {
	t        *testing.T
	dir      string
	settings string
	journal  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	xdg.Reload()

	env := &testEnv{
		t:        t,
		dir:      dir,
		settings: filepath.Join(dir, "settings.yaml"),
		journal:  filepath.Join(dir, "journal.db"),
	}
	t.Setenv("RXRENAME_JOURNAL_PATH", env.journal)
	t.Setenv("RXRENAME_INTERACTIVE", "false")
	return env
}

func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--settings", e.settings}, args...))
	err := execute(e.t.Context(), cmd, opts)
	return out.String(), errOut.String(), err
}

// mustRun runs a command that is expected to succeed.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	require.NoError(e.t, err, "stderr: %s", errOut)
	return out
}

// file creates name under the env's files directory.
func (e *testEnv) file(name string) string {
	e.t.Helper()
	dir := filepath.Join(e.dir, "files")
	require.NoError(e.t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(name), 0o644))
	return path
}

func (e *testEnv) writeSettings(content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.settings, []byte(content), 0o644))
}

func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestNormalizeCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("normalize", "ＮＨＫ　2025:12-25")
	assert.Equal(t, "NHK 2025：12-25\n", out)

	out = env.mustRun("normalize", "--nfkc-only", "ＮＨＫ　2025:12-25")
	assert.Equal(t, "NHK 2025:12-25\n", out)
}

func TestRenameWorkflow(t *testing.T) {
	env := newTestEnv(t)
	path := env.file("2023-12-25.txt")

	env.mustRun("rule", "add", "--id", "date", "--name", "Date",
		"--pattern", `(\d{4})-(\d{2})-(\d{2})`, "--replacement", "$1年$2月$3日", "--sample", "2023-12-25")
	env.mustRun("group", "step", "add", "ungrouped", "--regex", "date")
	env.mustRun("select", "add", filepath.Join(env.dir, "files", "*.txt"))

	var preview PreviewResult
	decodeData(t, env.mustRun("--format", "json", "preview"), &preview)
	require.Len(t, preview.Entries, 1)
	assert.Equal(t, "2023年12月25日.txt", preview.Entries[0].NewName)
	assert.True(t, preview.Entries[0].Changed)

	// without a terminal or --yes nothing is renamed
	_, errOut, err := env.run("rename")
	require.NoError(t, err)
	assert.Contains(t, errOut, "pass --yes")
	assert.FileExists(t, path)

	out := env.mustRun("rename", "--yes")
	assert.Contains(t, out, "1 renamed, 0 failed")
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(env.dir, "files", "2023年12月25日.txt"))

	var sel SelectionResult
	decodeData(t, env.mustRun("--format", "json", "select", "ls"), &sel)
	assert.Equal(t, []string{filepath.Join(env.dir, "files", "2023年12月25日.txt")}, sel.Selection)

	var batches []map[string]any
	decodeData(t, env.mustRun("--format", "json", "history"), &batches)
	require.Len(t, batches, 1)
	assert.EqualValues(t, 1, batches[0]["succeeded"])

	id := batches[0]["id"].(string)
	out = env.mustRun("history", id[:8])
	assert.Contains(t, out, "2023-12-25.txt")
	assert.Contains(t, out, "s/"+`(\d{4})-(\d{2})-(\d{2})`+"/$1年$2月$3日/")
}

func TestRenameCommand_RejectsLookAround(t *testing.T) {
	env := newTestEnv(t)
	path := env.file("ab.txt")
	env.writeSettings(`regexLibrary:
  - id: ahead
    pattern: '(?=a)b'
    replacement: x
ungroupedSteps:
  - regexId: ahead
`)

	_, errOut, err := env.run("rename", "--yes", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeRejected)
	assert.Contains(t, errOut, "look-around")
	assert.Contains(t, errOut, "(?=a)b")
	assert.FileExists(t, path)
}

func TestRenameCommand_PartialFailure(t *testing.T) {
	env := newTestEnv(t)
	a1 := env.file("a1.txt")
	a2 := env.file("a2.txt")
	env.file("b1.txt")
	env.writeSettings(`regexLibrary:
  - id: swap
    pattern: '^a'
    replacement: b
ungroupedSteps:
  - regexId: swap
`)

	out, errOut, err := env.run("rename", "--yes", a1, a2)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 renamed, 1 failed")
	assert.Contains(t, errOut, "a1.txt: target already exists")
	assert.FileExists(t, a1)
	assert.NoFileExists(t, a2)
}

func TestRenameCommand_ReportsWhenSelectionNotSaved(t *testing.T) {
	env := newTestEnv(t)
	path := env.file("2023-12-25.txt")
	env.writeSettings(`regexLibrary:
  - id: date
    pattern: '(\d{4})-(\d{2})-(\d{2})'
    replacement: '$1年$2月$3日'
ungroupedSteps:
  - regexId: date
selection:
  - ` + path + `
`)
	// a directory where the settings lock file belongs makes every save fail
	require.NoError(t, os.Mkdir(env.settings+".lock", 0o755))

	out, _, err := env.run("rename", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "1 renamed, 0 failed")
	assert.Contains(t, out, "selection not saved")
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(env.dir, "files", "2023年12月25日.txt"))

	next := env.file("2024-01-02.txt")
	env.writeSettings(`regexLibrary:
  - id: date
    pattern: '(\d{4})-(\d{2})-(\d{2})'
    replacement: '$1年$2月$3日'
ungroupedSteps:
  - regexId: date
selection:
  - ` + next + `
`)
	var report struct {
		Renamed   int    `json:"renamed"`
		Saved     bool   `json:"saved"`
		SaveError string `json:"save_error"`
	}
	decodeData(t, env.mustRun("--format", "json", "rename", "--yes"), &report)
	assert.Equal(t, 1, report.Renamed)
	assert.False(t, report.Saved)
	assert.NotEmpty(t, report.SaveError)
}

func TestRenameCommand_NothingSelected(t *testing.T) {
	env := newTestEnv(t)
	_, errOut, err := env.run("rename", "--yes")
	require.NoError(t, err)
	assert.Contains(t, errOut, "nothing selected")
}

func TestPreviewCommand_MutualCycle(t *testing.T) {
	env := newTestEnv(t)
	path := env.file("file.txt")
	env.writeSettings(`groups:
  - id: g1
    name: First
    steps: [{groupRefId: g2}]
  - id: g2
    name: Second
    steps: [{groupRefId: g1}]
activeGroupId: g1
`)

	var preview PreviewResult
	decodeData(t, env.mustRun("--format", "json", "preview", path), &preview)
	assert.Empty(t, preview.Pipeline)
	assert.Equal(t, "file.txt", preview.Entries[0].NewName)
	assert.False(t, preview.Entries[0].Changed)

	_, _, err := env.run("lint")
	require.NoError(t, err, "cycles are warnings")
}

func TestPreviewCommand_NothingSelected(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("preview")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLintCommand_LookAroundFails(t *testing.T) {
	env := newTestEnv(t)
	env.writeSettings(`regexLibrary:
  - id: ahead
    pattern: '(?<=a)b'
    replacement: x
`)

	out, _, err := env.run("lint")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Lint failed")
}

func TestRuleAdd_RejectsInvalidPattern(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("rule", "add", "--id", "bad", "--pattern", "(")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NoFileExists(t, env.settings)
}

func TestRuleAdd_GeneratesID(t *testing.T) {
	env := newTestEnv(t)

	var change RuleChange
	decodeData(t, env.mustRun("--format", "json", "rule", "add", "--pattern", "x", "--replacement", "y"), &change)
	assert.True(t, change.Added)
	assert.Len(t, change.Rule.ID, 36)

	_, _, err := env.run("rule", "rm", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecute_ClosesLogFileOnFailure(t *testing.T) {
	env := newTestEnv(t)
	logFile := filepath.Join(env.dir, "logs", "rxrename.log")
	t.Setenv("RXRENAME_LOG_FILE", logFile)

	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--settings", env.settings, "rule", "rm", "missing"})

	err := execute(t.Context(), cmd, opts)
	require.Error(t, err)
	assert.FileExists(t, logFile)
	assert.Nil(t, opts.logCloser, "log file must be released after a failed command")
}

func TestGroupCommands(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun("group", "add", "tv", "--name", "TV")
	env.mustRun("group", "step", "add", "tv", "--normalize")
	env.mustRun("group", "step", "disable", "tv", "1")
	env.mustRun("group", "use", "tv")

	out := env.mustRun("group", "ls")
	assert.Contains(t, out, "tv")
	assert.Contains(t, out, "normalize")

	_, _, err := env.run("group", "add", "ungrouped")
	require.Error(t, err)

	_, _, err = env.run("group", "step", "rm", "tv", "5")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSelectCommands(t *testing.T) {
	env := newTestEnv(t)
	a := env.file("a.txt")
	b := env.file("b.txt")

	env.mustRun("select", "add", a, b)

	var sel SelectionResult
	decodeData(t, env.mustRun("--format", "json", "select", "add", a), &sel)
	assert.Equal(t, 0, sel.Changed, "duplicates are not added")
	assert.Equal(t, []string{a, b}, sel.Selection)

	_, _, err := env.run("select", "rm", "3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	decodeData(t, env.mustRun("--format", "json", "select", "rm", "1"), &sel)
	assert.Equal(t, []string{b}, sel.Selection)

	decodeData(t, env.mustRun("--format", "json", "select", "clear"), &sel)
	assert.Empty(t, sel.Selection)

	_, _, err = env.run("select", "add", filepath.Join(env.dir, "files", "*.mkv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImportCommand(t *testing.T) {
	env := newTestEnv(t)
	pack := filepath.Join(env.dir, "pack")
	require.NoError(t, os.MkdirAll(pack, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pack, "rules.cue"), []byte(`package rules

rule: date: {
	pattern:     #"(\d{4})-(\d{2})-(\d{2})"#
	replacement: "$1年$2月$3日"
}

group: tv: {
	name: "TV"
	steps: [{regex: "date"}, {normalize: true}]
}
`), 0o644))

	var res ImportResult
	decodeData(t, env.mustRun("--format", "json", "import", "--dry-run", pack), &res)
	assert.Equal(t, 1, res.RulesAdded)
	assert.Equal(t, 1, res.GroupsAdded)
	assert.NoFileExists(t, env.settings)

	env.mustRun("import", pack)
	decodeData(t, env.mustRun("--format", "json", "import", pack), &res)
	assert.Equal(t, 1, res.RulesUpdated)
	assert.Equal(t, 1, res.GroupsUpdated)
}

func TestHistoryCommand_NoJournal(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("history")
	assert.Contains(t, out, "no batches recorded")
	assert.NoFileExists(t, env.journal)

	_, _, err := env.run("history", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_RunsScenarios(t *testing.T) {
	env := newTestEnv(t)

	var res TestResult
	decodeData(t, env.mustRun("--format", "json", "test", "../harness/testdata/scenarios"), &res)
	assert.Equal(t, 8, res.Total)
	assert.Equal(t, 8, res.Passed)
}

func TestTestCommand_Filter(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("test", "../harness/testdata/scenarios", "--filter", "date-*")
	assert.Contains(t, out, "date-japanese")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_UpdateAndMismatch(t *testing.T) {
	env := newTestEnv(t)
	scenarios := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "one.yaml"), []byte(`name: one
description: normalize a name
settings:
  ungroupedSteps: [{normalize: true}]
files: ["Ａ.txt"]
assertions:
  - type: renamed
    file: "Ａ.txt"
    equals: A.txt
`), 0o644))
	golden := filepath.Join(env.dir, "golden", "one.golden")

	env.mustRun("test", scenarios, "--update")
	require.FileExists(t, golden)
	env.mustRun("test", scenarios)

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, _, err := env.run("test", scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_MissingDir(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("test", filepath.Join(env.dir, "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
