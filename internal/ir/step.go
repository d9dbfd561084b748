package ir

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Step is one configured operation in a rename pipeline.
// Sealed: only RegexStep, GroupRefStep, and NormalizeStep implement it.
//
// A nil Step is a malformed entry and is treated as a no-op everywhere.
type Step interface {
	// Enabled reports whether the step takes part in resolution.
	// A disabled group reference skips its whole subtree.
	Enabled() bool

	step()
}

// RegexStep applies a rule from the regex library.
type RegexStep struct {
	RegexID  string
	Disabled bool
}

// Enabled implements Step.
func (s RegexStep) Enabled() bool { return !s.Disabled }

func (RegexStep) step() {}

// GroupRefStep expands another group's steps in place.
type GroupRefStep struct {
	GroupID  string
	Disabled bool
}

// Enabled implements Step.
func (s GroupRefStep) Enabled() bool { return !s.Disabled }

func (GroupRefStep) step() {}

// NormalizeStep runs the Unicode normalizer with the configured options.
type NormalizeStep struct {
	Disabled bool
}

// Enabled implements Step.
func (s NormalizeStep) Enabled() bool { return !s.Disabled }

func (NormalizeStep) step() {}

// StepRecord is the serialized form of a Step.
// Exactly one of RegexID, GroupRefID, and Normalize is set on a valid record.
type StepRecord struct {
	RegexID    string `json:"regexId,omitempty" yaml:"regexId,omitempty"`
	GroupRefID string `json:"groupRefId,omitempty" yaml:"groupRefId,omitempty"`
	Normalize  bool   `json:"normalize,omitempty" yaml:"normalize,omitempty"`
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Record converts a step to its serialized form.
// A nil step produces an empty record.
func Record(s Step) StepRecord {
	var rec StepRecord
	switch v := s.(type) {
	case RegexStep:
		rec.RegexID = v.RegexID
	case GroupRefStep:
		rec.GroupRefID = v.GroupID
	case NormalizeStep:
		rec.Normalize = true
	default:
		return rec
	}
	enabled := s.Enabled()
	rec.Enabled = &enabled
	return rec
}

// Step converts a record back to a Step.
// Returns nil when the record sets zero or several discriminators.
func (r StepRecord) Step() Step {
	set := 0
	if r.RegexID != "" {
		set++
	}
	if r.GroupRefID != "" {
		set++
	}
	if r.Normalize {
		set++
	}
	if set != 1 {
		return nil
	}

	disabled := r.Enabled != nil && !*r.Enabled
	switch {
	case r.Normalize:
		return NormalizeStep{Disabled: disabled}
	case r.RegexID != "":
		return RegexStep{RegexID: r.RegexID, Disabled: disabled}
	default:
		return GroupRefStep{GroupID: r.GroupRefID, Disabled: disabled}
	}
}

// Steps is an ordered list of steps with wire encodings.
type Steps []Step

// Records converts the list to serialized records.
func (s Steps) Records() []StepRecord {
	recs := make([]StepRecord, len(s))
	for i, step := range s {
		recs[i] = Record(step)
	}
	return recs
}

// StepsFromRecords converts serialized records to steps.
// Malformed records become nil entries.
func StepsFromRecords(recs []StepRecord) Steps {
	steps := make(Steps, len(recs))
	for i, rec := range recs {
		steps[i] = rec.Step()
	}
	return steps
}

// MarshalJSON implements json.Marshaler.
func (s Steps) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Records())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Steps) UnmarshalJSON(data []byte) error {
	var recs []StepRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("decode steps: %w", err)
	}
	*s = StepsFromRecords(recs)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Steps) MarshalYAML() (interface{}, error) {
	return s.Records(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Steps) UnmarshalYAML(value *yaml.Node) error {
	var recs []StepRecord
	if err := value.Decode(&recs); err != nil {
		return fmt.Errorf("decode steps: %w", err)
	}
	*s = StepsFromRecords(recs)
	return nil
}
