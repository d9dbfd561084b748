package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_AddSkipsDuplicates(t *testing.T) {
	s := NewSelection("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, s.Paths())

	assert.Equal(t, 1, s.Add("b", "c", "c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Paths())
}

func TestSelection_RemoveHighestFirst(t *testing.T) {
	s := NewSelection("a", "b", "c", "d", "e")
	assert.Equal(t, 3, s.Remove(1, 3, 1, 99, -1, 4))
	assert.Equal(t, []string{"a", "c"}, s.Paths())
}

func TestSelection_Replace(t *testing.T) {
	s := NewSelection("a", "b")
	assert.True(t, s.Replace(0, "x"))
	assert.False(t, s.Replace(1, "x"), "would duplicate")
	assert.False(t, s.Replace(2, "y"))
	assert.True(t, s.Replace(1, "b"), "same entry")
	assert.Equal(t, []string{"x", "b"}, s.Paths())
}

func TestSelection_PathsIsACopy(t *testing.T) {
	s := NewSelection("a")
	p := s.Paths()
	p[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Paths())
}

func TestSelection_ZeroValue(t *testing.T) {
	var s Selection
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Paths())
	s.Add("a")
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestListLimited(t *testing.T) {
	items := []string{"1", "2", "3", "4"}
	assert.Equal(t, items, listLimited(items, 4))
	assert.Equal(t, []string{"1", "2", "and 2 more"}, listLimited(items, 2))
	assert.Equal(t, items, listLimited(items, 0))
}

func TestNewRenamePrompt(t *testing.T) {
	assert.Equal(t, "Rename 1 selected file?", NewRenamePrompt(1).Message)
	p := NewRenamePrompt(3)
	assert.Equal(t, "Rename 3 selected files?", p.Message)
	assert.Equal(t, 3, p.FileCount)
}
