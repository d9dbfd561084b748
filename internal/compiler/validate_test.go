package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxrename/internal/ir"
)

func codes(findings []ValidationError) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Code)
	}
	return out
}

func TestLint_Clean(t *testing.T) {
	s := ir.DefaultSettings()
	s.RegexLibrary = []ir.RegexRule{{ID: "date", Pattern: `(\d{4})-(\d{2})`, Replacement: "$1年$2月", Sample: "2023-12"}}
	s.Groups = []ir.Group{{ID: "g", Name: "G", Steps: ir.Steps{ir.RegexStep{RegexID: "date"}, ir.NormalizeStep{}}}}
	s.UngroupedSteps = ir.Steps{ir.GroupRefStep{GroupID: "g"}}
	s.ActiveGroupID = "g"

	assert.Empty(t, Lint(s))
}

func TestLint_Library(t *testing.T) {
	s := ir.DefaultSettings()
	s.RegexLibrary = []ir.RegexRule{
		{ID: "a", Pattern: `a`},
		{ID: "a", Pattern: `b`},
		{ID: "empty", Pattern: "  "},
		{ID: "bad", Pattern: `(`},
		{ID: "look", Pattern: `(?=a)b`},
		{ID: "sample", Pattern: `x`, Replacement: "y", Sample: "abc"},
	}

	findings := Lint(s)
	assert.Equal(t, []string{
		ErrDuplicateRuleID,
		ErrEmptyPattern,
		ErrInvalidPattern,
		ErrLookaround,
		ErrSampleUnchanged,
	}, codes(findings))

	assert.Equal(t, "regexLibrary[1].id", findings[0].Field)
	assert.Equal(t, LevelWarning, findings[4].Level)
	assert.True(t, HasErrors(findings))
}

func TestLint_Steps(t *testing.T) {
	s := ir.DefaultSettings()
	s.Groups = []ir.Group{
		{ID: "g", Steps: ir.Steps{nil, ir.RegexStep{RegexID: "nope"}}},
		{ID: "g"},
	}
	s.UngroupedSteps = ir.Steps{ir.GroupRefStep{GroupID: "ghost"}}
	s.ActiveGroupID = "missing"

	findings := Lint(s)
	assert.Equal(t, []string{
		ErrMalformedStep,
		ErrDanglingRule,
		ErrDuplicateGroupID,
		ErrDanglingGroup,
		ErrActiveGroup,
	}, codes(findings))

	require.Len(t, findings, 5)
	assert.Equal(t, "groups[0].steps[0]", findings[0].Field)
	assert.Equal(t, "groups[0].steps[1].regexId", findings[1].Field)
	assert.Equal(t, "ungroupedSteps[0].groupRefId", findings[3].Field)
}

func TestLint_WarningsOnlyHasNoErrors(t *testing.T) {
	s := ir.DefaultSettings()
	s.UngroupedSteps = ir.Steps{ir.RegexStep{RegexID: "nope"}}

	findings := Lint(s)
	require.Len(t, findings, 1)
	assert.False(t, HasErrors(findings))
	assert.Equal(t, `[E106] ungroupedSteps[0].regexId: rule "nope" not found; step is skipped`, findings[0].Error())
}

func TestLint_DisabledDanglingStillReported(t *testing.T) {
	s := ir.DefaultSettings()
	s.UngroupedSteps = ir.Steps{ir.GroupRefStep{GroupID: "nope", Disabled: true}}
	assert.Equal(t, []string{ErrDanglingGroup}, codes(Lint(s)))
}
