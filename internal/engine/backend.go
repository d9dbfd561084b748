package engine

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// PreviewTimeout bounds a single regexp2 match during preview. regexp2
// backtracks, so a hostile pattern could otherwise stall the caller.
const PreviewTimeout = time.Second

// Backend compiles a rule's pattern and replacement into a Substitution.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Compile parses pattern and replacement. The replacement template is
	// parsed once here and reused for every input.
	Compile(pattern, replacement string) (Substitution, error)
}

// Substitution replaces every match of a compiled pattern.
type Substitution interface {
	ReplaceAll(input string) (string, error)
}

// PatternError reports a pattern a backend could not compile.
type PatternError struct {
	Pattern string
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: compile %q: %v", e.Backend, e.Pattern, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *PatternError) Unwrap() error { return e.Err }

var (
	// Strict compiles with RE2 only. It is the execution backend and has no
	// look-around support.
	Strict Backend = strictBackend{}

	// Preview compiles with RE2 and falls back to regexp2 in ECMAScript mode
	// for patterns RE2 rejects, so look-around rules can still be previewed.
	Preview Backend = previewBackend{timeout: PreviewTimeout}
)

type strictBackend struct{}

func (strictBackend) Name() string { return "re2" }

func (b strictBackend) Compile(pattern, replacement string) (Substitution, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Backend: b.Name(), Err: err}
	}
	return &re2Substitution{
		re:   re,
		tmpl: ParseTemplate(replacement, re.NumSubexp(), re.SubexpNames()),
	}, nil
}

type re2Substitution struct {
	re   *regexp.Regexp
	tmpl Template
}

func (s *re2Substitution) ReplaceAll(input string) (string, error) {
	matches := s.re.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return input, nil
	}
	out := make([]byte, 0, len(input))
	last := 0
	for _, m := range matches {
		out = append(out, input[last:m[0]]...)
		out = s.tmpl.Expand(out, input, m)
		last = m[1]
	}
	out = append(out, input[last:]...)
	return string(out), nil
}

type previewBackend struct {
	timeout time.Duration
}

func (previewBackend) Name() string { return "preview" }

func (b previewBackend) Compile(pattern, replacement string) (Substitution, error) {
	sub, strictErr := Strict.Compile(pattern, replacement)
	if strictErr == nil {
		return sub, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		// Report the RE2 error; it is the one rename would hit.
		return nil, &PatternError{Pattern: pattern, Backend: b.Name(), Err: strictErr}
	}
	re.MatchTimeout = b.timeout

	names := re.GetGroupNames()
	return &ecmaSubstitution{
		re:   re,
		tmpl: ParseTemplate(replacement, len(names)-1, names),
	}, nil
}

type ecmaSubstitution struct {
	re   *regexp2.Regexp
	tmpl Template
}

func (s *ecmaSubstitution) ReplaceAll(input string) (string, error) {
	m, err := s.re.FindStringMatch(input)
	if err != nil {
		return "", err
	}
	if m == nil {
		return input, nil
	}

	// regexp2 reports rune offsets; the template works on bytes.
	offsets := runeOffsets(input)
	out := make([]byte, 0, len(input))
	last := 0
	for m != nil {
		groups := m.Groups()
		idx := make([]int, 2*len(groups))
		for i, g := range groups {
			if len(g.Captures) == 0 {
				idx[2*i], idx[2*i+1] = -1, -1
				continue
			}
			idx[2*i] = offsets[g.Index]
			idx[2*i+1] = offsets[g.Index+g.Length]
		}

		out = append(out, input[last:idx[0]]...)
		out = s.tmpl.Expand(out, input, idx)
		last = idx[1]

		if m, err = s.re.FindNextMatch(m); err != nil {
			return "", err
		}
	}
	out = append(out, input[last:]...)
	return string(out), nil
}

// runeOffsets maps rune index to byte offset, with one trailing entry for
// the end of the string.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
