package settings

import (
	"errors"
	"fmt"

	"github.com/roach88/rxrename/internal/ir"
)

var (
	ErrRuleNotFound  = errors.New("rule not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrStepIndex     = errors.New("step index out of range")
)

// UngroupedTarget names the ungrouped step list wherever a group id is
// expected.
const UngroupedTarget = "ungrouped"

// UpsertRule replaces the rule with r.ID, or appends r. It reports whether
// the rule was added.
func UpsertRule(s *ir.Settings, r ir.RegexRule) bool {
	for i := range s.RegexLibrary {
		if s.RegexLibrary[i].ID == r.ID {
			s.RegexLibrary[i] = r
			return false
		}
	}
	s.RegexLibrary = append(s.RegexLibrary, r)
	return true
}

// RemoveRule deletes every rule with id. Steps that reference it are left
// in place and are skipped when resolved.
func RemoveRule(s *ir.Settings, id string) error {
	kept := s.RegexLibrary[:0]
	for _, r := range s.RegexLibrary {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(s.RegexLibrary) {
		return fmt.Errorf("%w: %q", ErrRuleNotFound, id)
	}
	s.RegexLibrary = kept
	return nil
}

// UpsertGroup replaces the group with g.ID, or appends g. It reports whether
// the group was added.
func UpsertGroup(s *ir.Settings, g ir.Group) bool {
	for i := range s.Groups {
		if s.Groups[i].ID == g.ID {
			s.Groups[i] = g
			return false
		}
	}
	s.Groups = append(s.Groups, g)
	return true
}

// RemoveGroup deletes every group with id. Removing the active group makes
// the ungrouped steps active.
func RemoveGroup(s *ir.Settings, id string) error {
	kept := s.Groups[:0]
	for _, g := range s.Groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(s.Groups) {
		return fmt.Errorf("%w: %q", ErrGroupNotFound, id)
	}
	s.Groups = kept
	if s.ActiveGroupID == id {
		s.ActiveGroupID = ir.NoActiveGroup
	}
	return nil
}

// SetActiveGroup makes the group with id active. UngroupedTarget and
// ir.NoActiveGroup select the ungrouped steps.
func SetActiveGroup(s *ir.Settings, id string) error {
	if id == UngroupedTarget || id == ir.NoActiveGroup {
		s.ActiveGroupID = ir.NoActiveGroup
		return nil
	}
	if _, err := findGroup(s, id); err != nil {
		return err
	}
	s.ActiveGroupID = id
	return nil
}

// Steps returns the step list of the group with id, or the ungrouped steps
// for UngroupedTarget. The pointer addresses s, so edits through it are
// edits of s.
func Steps(s *ir.Settings, target string) (*ir.Steps, error) {
	if target == UngroupedTarget {
		return &s.UngroupedSteps, nil
	}
	i, err := findGroup(s, target)
	if err != nil {
		return nil, err
	}
	return &s.Groups[i].Steps, nil
}

// AddStep appends step to the target's steps.
func AddStep(s *ir.Settings, target string, step ir.Step) error {
	steps, err := Steps(s, target)
	if err != nil {
		return err
	}
	*steps = append(*steps, step)
	return nil
}

// RemoveStep deletes the step at index from the target's steps.
func RemoveStep(s *ir.Settings, target string, index int) error {
	steps, err := Steps(s, target)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*steps) {
		return fmt.Errorf("%w: %d of %d", ErrStepIndex, index, len(*steps))
	}
	*steps = append((*steps)[:index], (*steps)[index+1:]...)
	return nil
}

// SetStepEnabled enables or disables the step at index.
func SetStepEnabled(s *ir.Settings, target string, index int, enabled bool) error {
	steps, err := Steps(s, target)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*steps) {
		return fmt.Errorf("%w: %d of %d", ErrStepIndex, index, len(*steps))
	}
	switch st := (*steps)[index].(type) {
	case ir.RegexStep:
		st.Disabled = !enabled
		(*steps)[index] = st
	case ir.GroupRefStep:
		st.Disabled = !enabled
		(*steps)[index] = st
	case ir.NormalizeStep:
		st.Disabled = !enabled
		(*steps)[index] = st
	default:
		return fmt.Errorf("step %d is malformed", index)
	}
	return nil
}

func findGroup(s *ir.Settings, id string) (int, error) {
	for i := range s.Groups {
		if s.Groups[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrGroupNotFound, id)
}
