package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/rxrename/internal/engine"
	"github.com/roach88/rxrename/internal/ir"
)

// Lint codes (E100-E199)
const (
	// Rule library (E101-E104, E110)
	ErrDuplicateRuleID = "E101" // two rules share an id; the first wins
	ErrEmptyPattern    = "E102" // pattern is empty
	ErrInvalidPattern  = "E103" // pattern does not compile
	ErrLookaround      = "E104" // look-around; rename will refuse it
	ErrSampleUnchanged = "E110" // rule leaves its own sample unchanged

	// Groups and steps (E105-E109)
	ErrDuplicateGroupID = "E105" // two groups share an id; the first wins
	ErrDanglingRule     = "E106" // step references an unknown rule
	ErrDanglingGroup    = "E107" // step references an unknown group
	ErrMalformedStep    = "E108" // step has zero or several discriminators
	ErrActiveGroup      = "E109" // active group id does not exist
)

// Finding levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// ValidationError is one lint finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Level   string `json:"level"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsError reports whether the finding is error level.
func (e ValidationError) IsError() bool { return e.Level == LevelError }

// HasErrors reports whether any finding is error level.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.IsError() {
			return true
		}
	}
	return false
}

// Lint checks settings and returns every finding, in library then group
// then ungrouped-step order. It does not fail fast.
//
// Dangling references and malformed steps are warnings: the resolver skips
// them, so a pipeline containing them still runs. Group cycles are reported
// separately by AnalyzeCycles.
func Lint(s ir.Settings) []ValidationError {
	var errs []ValidationError
	errs = append(errs, lintLibrary(s.RegexLibrary)...)

	cat := NewCatalog(s.RegexLibrary, s.Groups)

	seenGroups := make(map[string]bool, len(s.Groups))
	for i, g := range s.Groups {
		field := fmt.Sprintf("groups[%d]", i)
		if seenGroups[g.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate group id %q; only the first definition is used", g.ID),
				Code:    ErrDuplicateGroupID,
				Level:   LevelError,
			})
		}
		seenGroups[g.ID] = true
		errs = append(errs, lintSteps(cat, field+".steps", g.Steps)...)
	}

	errs = append(errs, lintSteps(cat, "ungroupedSteps", s.UngroupedSteps)...)

	if s.ActiveGroupID != "" && s.ActiveGroupID != ir.NoActiveGroup {
		if _, ok := cat.Group(s.ActiveGroupID); !ok {
			errs = append(errs, ValidationError{
				Field:   "activeGroupId",
				Message: fmt.Sprintf("active group %q does not exist; ungrouped steps are used", s.ActiveGroupID),
				Code:    ErrActiveGroup,
				Level:   LevelWarning,
			})
		}
	}

	return errs
}

func lintLibrary(library []ir.RegexRule) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(library))

	for i, r := range library {
		field := fmt.Sprintf("regexLibrary[%d]", i)

		if seen[r.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate rule id %q; only the first definition is used", r.ID),
				Code:    ErrDuplicateRuleID,
				Level:   LevelError,
			})
		}
		seen[r.ID] = true

		if strings.TrimSpace(r.Pattern) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".pattern",
				Message: fmt.Sprintf("rule %q has an empty pattern", r.DisplayName()),
				Code:    ErrEmptyPattern,
				Level:   LevelError,
			})
			continue
		}

		if HasLookaround(r.Pattern) {
			errs = append(errs, ValidationError{
				Field:   field + ".pattern",
				Message: fmt.Sprintf("rule %q uses look-around, which rename refuses (preview only)", r.DisplayName()),
				Code:    ErrLookaround,
				Level:   LevelError,
			})
			continue
		}

		sub, err := engine.Strict.Compile(r.Pattern, r.Replacement)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".pattern",
				Message: fmt.Sprintf("rule %q: %v", r.DisplayName(), err),
				Code:    ErrInvalidPattern,
				Level:   LevelError,
			})
			continue
		}

		if r.Sample != "" {
			out, err := sub.ReplaceAll(r.Sample)
			if err == nil && out == r.Sample {
				errs = append(errs, ValidationError{
					Field:   field + ".sample",
					Message: fmt.Sprintf("rule %q does not change its sample %q", r.DisplayName(), r.Sample),
					Code:    ErrSampleUnchanged,
					Level:   LevelWarning,
				})
			}
		}
	}
	return errs
}

func lintSteps(cat *Catalog, field string, steps []ir.Step) []ValidationError {
	var errs []ValidationError
	for i, step := range steps {
		f := fmt.Sprintf("%s[%d]", field, i)
		switch s := step.(type) {
		case nil:
			errs = append(errs, ValidationError{
				Field:   f,
				Message: "step must set exactly one of regexId, groupRefId, normalize; it is ignored",
				Code:    ErrMalformedStep,
				Level:   LevelWarning,
			})
		case ir.RegexStep:
			if _, ok := cat.Rule(s.RegexID); !ok {
				errs = append(errs, ValidationError{
					Field:   f + ".regexId",
					Message: fmt.Sprintf("rule %q not found; step is skipped", s.RegexID),
					Code:    ErrDanglingRule,
					Level:   LevelWarning,
				})
			}
		case ir.GroupRefStep:
			if _, ok := cat.Group(s.GroupID); !ok {
				errs = append(errs, ValidationError{
					Field:   f + ".groupRefId",
					Message: fmt.Sprintf("group %q not found; step is skipped", s.GroupID),
					Code:    ErrDanglingGroup,
					Level:   LevelWarning,
				})
			}
		}
	}
	return errs
}
