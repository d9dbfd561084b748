package compiler

import (
	"strings"

	"github.com/roach88/rxrename/internal/ir"
)

// lookaroundOpeners are the group openers of lookahead and lookbehind
// assertions, matched immediately after an unescaped '('.
var lookaroundOpeners = []string{"?=", "?!", "?<=", "?<!"}

// UnsupportedPatterns returns the regex patterns in p that use look-around
// assertions, in pipeline order and without duplicates. A non-empty result
// means the pipeline cannot be executed by the rename backend.
func UnsupportedPatterns(p ir.Pipeline) []string {
	var out []string
	seen := make(map[string]bool)
	for _, op := range p {
		re, ok := op.(ir.RegexOp)
		if !ok || seen[re.Pattern] {
			continue
		}
		if HasLookaround(re.Pattern) {
			seen[re.Pattern] = true
			out = append(out, re.Pattern)
		}
	}
	return out
}

// HasLookaround reports whether pattern opens a look-around group.
//
// Detection is structural: escaped characters and character classes are
// skipped, so `\(?=` and `[(?=]` are literals, and `(?<name>` is a named
// group. The pattern is never compiled.
func HasLookaround(pattern string) bool {
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			i++ // escaped byte, whatever it is
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			// A ']' right after '[' or '[^' is a literal member.
			if strings.HasPrefix(pattern[i+1:], "^") {
				i++
			}
			if strings.HasPrefix(pattern[i+1:], "]") {
				i++
			}
		case c == '(':
			rest := pattern[i+1:]
			for _, opener := range lookaroundOpeners {
				if strings.HasPrefix(rest, opener) {
					return true
				}
			}
		}
	}
	return false
}
