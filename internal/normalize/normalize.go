// Package normalize unifies Unicode width and form in file names and
// canonicalizes a configurable set of symbols.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rxrename/internal/ir"
)

// Symbol rules, applied in this order after NFKC. Colon and slash map ASCII
// to full width because the raw characters are illegal or act as separators
// in file names on some platforms; the other rules map toward ASCII.
var (
	ideographicSpace = strings.NewReplacer("\u3000", " ")

	waveDashes = strings.NewReplacer(
		"\u301c", "\uff5e", // WAVE DASH
		"\u223c", "\uff5e", // TILDE OPERATOR
	)

	dashes = strings.NewReplacer(
		"\u2010", "-", // HYPHEN
		"\u2011", "-", // NON-BREAKING HYPHEN
		"\u2013", "-", // EN DASH
		"\u2014", "-", // EM DASH
		"\u2015", "-", // HORIZONTAL BAR
		"\uff0d", "-", // FULLWIDTH HYPHEN-MINUS
	)

	middleDots = strings.NewReplacer(
		"\uff65", "\u30fb", // HALFWIDTH KATAKANA MIDDLE DOT
		"\u00b7", "\u30fb", // MIDDLE DOT
		"\u0387", "\u30fb", // GREEK ANO TELEIA
		"\u2022", "\u30fb", // BULLET
	)

	brackets = strings.NewReplacer("\uff08", "(", "\uff09", ")")

	colons = strings.NewReplacer(":", "\uff1a")

	slashes = strings.NewReplacer("/", "\uff0f")
)

// Normalize applies NFKC and then every enabled symbol rule.
// It never fails and is safe for concurrent use.
func Normalize(input string, opts ir.NormalizationOptions) string {
	s := norm.NFKC.String(input)

	if opts.Space {
		s = collapseSpaces(ideographicSpace.Replace(s))
	}
	if opts.WaveDash {
		// U+FF5E is already canonical; NFKC folds it to ASCII tilde, which
		// is left alone.
		s = waveDashes.Replace(s)
	}
	if opts.Dash {
		s = dashes.Replace(s)
	}
	if opts.MiddleDot {
		s = middleDots.Replace(s)
	}
	if opts.Brackets {
		s = brackets.Replace(s)
	}
	if opts.Colon {
		s = colons.Replace(s)
	}
	if opts.Slash {
		s = slashes.Replace(s)
	}

	return s
}

// collapseSpaces replaces runs of ASCII spaces with a single space.
func collapseSpaces(s string) string {
	if !strings.Contains(s, "  ") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
