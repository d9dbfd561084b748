package ir

// NoActiveGroup is the ActiveGroupID value the desktop application writes
// when the ungrouped steps are active.
const NoActiveGroup = "none"

// Settings is the aggregate persisted between runs: the rule library, the
// groups, which steps are active, the normalization options, and the
// working selection of file paths.
type Settings struct {
	Groups         []Group              `json:"groups" yaml:"groups"`
	UngroupedSteps Steps                `json:"ungroupedSteps" yaml:"ungroupedSteps"`
	ActiveGroupID  string               `json:"activeGroupId,omitempty" yaml:"activeGroupId,omitempty"`
	RegexLibrary   []RegexRule          `json:"regexLibrary" yaml:"regexLibrary"`
	Normalization  NormalizationOptions `json:"normalization" yaml:"normalization"`
	Selection      []string             `json:"selection,omitempty" yaml:"selection,omitempty"`
}

// DefaultSettings returns empty settings with every normalization rule on.
func DefaultSettings() Settings {
	return Settings{
		Groups:         []Group{},
		UngroupedSteps: Steps{},
		ActiveGroupID:  NoActiveGroup,
		RegexLibrary:   []RegexRule{},
		Normalization:  DefaultNormalization(),
	}
}

// ActiveGroup returns the active group, if one is set and exists.
func (s *Settings) ActiveGroup() (Group, bool) {
	if s.ActiveGroupID == "" || s.ActiveGroupID == NoActiveGroup {
		return Group{}, false
	}
	for _, g := range s.Groups {
		if g.ID == s.ActiveGroupID {
			return g, true
		}
	}
	return Group{}, false
}

// ActiveSteps returns the steps a rename runs.
//
// With an active group the result is a single reference to it, so the group
// itself is on the cycle-guard path during resolution. Otherwise the
// ungrouped steps are returned.
func (s *Settings) ActiveSteps() Steps {
	if g, ok := s.ActiveGroup(); ok {
		return Steps{GroupRefStep{GroupID: g.ID}}
	}
	return s.UngroupedSteps
}
