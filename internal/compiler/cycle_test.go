package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxrename/internal/ir"
)

func ref(id string) ir.Step { return ir.GroupRefStep{GroupID: id} }

// TestAnalyzeCycles_Empty tests that empty input produces no warnings.
func TestAnalyzeCycles_Empty(t *testing.T) {
	warnings := AnalyzeCycles(nil)
	require.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

// TestAnalyzeCycles_DAG tests that an acyclic graph produces no warnings.
func TestAnalyzeCycles_DAG(t *testing.T) {
	groups := []ir.Group{
		{ID: "top", Steps: ir.Steps{ref("left"), ref("right")}},
		{ID: "left", Steps: ir.Steps{ref("leaf")}},
		{ID: "right", Steps: ir.Steps{ref("leaf")}},
		{ID: "leaf", Steps: ir.Steps{ir.NormalizeStep{}}},
	}
	assert.Empty(t, AnalyzeCycles(groups))
}

// TestAnalyzeCycles_SelfLoop tests detection of a group that references itself.
func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	groups := []ir.Group{{ID: "g", Steps: ir.Steps{ir.RegexStep{RegexID: "r"}, ref("g")}}}

	warnings := AnalyzeCycles(groups)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"g", "g"}, warnings[0].Path)
	assert.Equal(t, LevelWarning, warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "references itself")
}

// TestAnalyzeCycles_Mutual tests the two-group cycle g1 → g2 → g1.
func TestAnalyzeCycles_Mutual(t *testing.T) {
	groups := []ir.Group{
		{ID: "g1", Steps: ir.Steps{ref("g2")}},
		{ID: "g2", Steps: ir.Steps{ref("g1")}},
	}

	warnings := AnalyzeCycles(groups)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"g1", "g2", "g1"}, warnings[0].Path)
	assert.Equal(t, "Group cycle detected: g1 → g2 → g1", warnings[0].Message)
}

// TestAnalyzeCycles_ThreeNode tests a longer cycle with a branch out of it.
func TestAnalyzeCycles_ThreeNode(t *testing.T) {
	groups := []ir.Group{
		{ID: "a", Steps: ir.Steps{ref("b")}},
		{ID: "b", Steps: ir.Steps{ref("side"), ref("c")}},
		{ID: "c", Steps: ir.Steps{ref("a")}},
		{ID: "side"},
	}

	warnings := AnalyzeCycles(groups)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, warnings[0].Path)
}

// TestAnalyzeCycles_ShortestPath tests that the reported path closes the cycle
// even when the first reference leads deeper into the component.
func TestAnalyzeCycles_ShortestPath(t *testing.T) {
	groups := []ir.Group{
		{ID: "a", Steps: ir.Steps{ref("b")}},
		{ID: "b", Steps: ir.Steps{ref("c"), ref("a")}},
		{ID: "c", Steps: ir.Steps{ref("b")}},
	}

	warnings := AnalyzeCycles(groups)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"a", "b", "a"}, warnings[0].Path)
}

// TestAnalyzeCycles_IgnoresDisabledAndDangling tests that edges the resolver
// never follows do not form cycles.
func TestAnalyzeCycles_IgnoresDisabledAndDangling(t *testing.T) {
	groups := []ir.Group{
		{ID: "a", Steps: ir.Steps{ir.GroupRefStep{GroupID: "b", Disabled: true}, ref("ghost")}},
		{ID: "b", Steps: ir.Steps{ref("a")}},
	}
	assert.Empty(t, AnalyzeCycles(groups))
}

// TestAnalyzeCycles_Multiple tests independent cycles sorted by path.
func TestAnalyzeCycles_Multiple(t *testing.T) {
	groups := []ir.Group{
		{ID: "z", Steps: ir.Steps{ref("z")}},
		{ID: "m", Steps: ir.Steps{ref("n")}},
		{ID: "n", Steps: ir.Steps{ref("m")}},
	}

	warnings := AnalyzeCycles(groups)
	require.Len(t, warnings, 2)
	assert.Equal(t, []string{"m", "n", "m"}, warnings[0].Path)
	assert.Equal(t, []string{"z", "z"}, warnings[1].Path)
}
