package engine

import "strconv"

// Template is a parsed replacement string.
//
// Syntax:
//
//	$$        a literal '$'
//	$n        group n; the longest run of ASCII digits is taken, then digits
//	          are dropped from the right while the number exceeds the group
//	          count, so "$12" with two groups is group 1 followed by "2"
//	${n}      group n
//	${name}   the named group
//
// Groups that do not exist or did not participate in the match expand to the
// empty string. Any other '$' is literal. "$1年" is therefore group 1
// followed by "年", unlike regexp.Expand, which reads "1年" as a group name.
type Template struct {
	parts []templatePart
}

// templatePart is a literal when group is literalPart, otherwise a group
// reference.
type templatePart struct {
	literal string
	group   int
}

// ParseTemplate parses repl against a pattern with numSubexp capture groups
// and the given group names, indexed by group number as returned by
// regexp.SubexpNames.
func ParseTemplate(repl string, numSubexp int, names []string) Template {
	var t Template
	lit := make([]byte, 0, len(repl))
	flush := func() {
		if len(lit) > 0 {
			t.parts = append(t.parts, templatePart{literal: string(lit), group: literalPart})
			lit = lit[:0]
		}
	}
	ref := func(group int) {
		flush()
		t.parts = append(t.parts, templatePart{group: group})
	}

	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '$' || i+1 == len(repl) {
			lit = append(lit, c)
			continue
		}

		next := repl[i+1]
		switch {
		case next == '$':
			lit = append(lit, '$')
			i++

		case isDigit(next):
			end := i + 1
			for end < len(repl) && isDigit(repl[end]) {
				end++
			}
			digits := repl[i+1 : end]
			for len(digits) > 1 && exceeds(digits, numSubexp) {
				digits = digits[:len(digits)-1]
			}
			ref(resolveNumber(digits, numSubexp))
			i += len(digits)

		case next == '{':
			closing := -1
			for j := i + 2; j < len(repl); j++ {
				if repl[j] == '}' {
					closing = j
					break
				}
			}
			if closing < 0 || closing == i+2 {
				lit = append(lit, c)
				continue
			}
			ref(resolveName(repl[i+2:closing], numSubexp, names))
			i = closing

		default:
			lit = append(lit, c)
		}
	}
	flush()
	return t
}

// Expand appends the expansion of t for one match to dst. src is the input
// and match holds byte offset pairs per group, -1 for groups that did not
// participate.
func (t Template) Expand(dst []byte, src string, match []int) []byte {
	for _, p := range t.parts {
		if p.group == literalPart {
			dst = append(dst, p.literal...)
			continue
		}
		if p.group < 0 || 2*p.group+1 >= len(match) {
			continue
		}
		start, end := match[2*p.group], match[2*p.group+1]
		if start >= 0 && end >= 0 {
			dst = append(dst, src[start:end]...)
		}
	}
	return dst
}

const (
	literalPart = -1
	// noGroup marks a reference that always expands to the empty string.
	noGroup = -2
)

func resolveNumber(digits string, numSubexp int) int {
	n, err := strconv.Atoi(digits)
	if err != nil || n > numSubexp {
		return noGroup
	}
	return n
}

func resolveName(name string, numSubexp int, names []string) int {
	if allDigits(name) {
		return resolveNumber(name, numSubexp)
	}
	for i, n := range names {
		if i > 0 && n == name {
			return i
		}
	}
	return noGroup
}

func exceeds(digits string, numSubexp int) bool {
	n, err := strconv.Atoi(digits)
	return err != nil || n > numSubexp
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
