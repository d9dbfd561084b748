package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/rxrename/internal/ir"
)

func TestHasLookaround(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{`(?=a)b`, true},
		{`a(?!b)`, true},
		{`(?<=x)y`, true},
		{`(?<!x)y`, true},
		{`((?=a))`, true},
		{`[a-z]+(?=\.)`, true},
		{`\\(?=a)`, true}, // escaped backslash, then a real group
		{`(\d{4})-(\d{2})`, false},
		{`(?:non)capturing`, false},
		{`(?i)case`, false},
		{`(?P<year>\d{4})`, false},
		{`(?<year>\d{4})`, false},
		{`\(?=a`, false},
		{`[(?=]`, false},
		{`[](?=]`, false},
		{`[^](?!]`, false},
		{`[\](?=]`, false},
		{`a?=b`, false},
		{``, false},
		{`(`, false},
		{`\`, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, HasLookaround(tt.pattern))
		})
	}
}

func TestUnsupportedPatterns(t *testing.T) {
	p := ir.Pipeline{
		ir.RegexOp{Pattern: `(?=a)b`},
		ir.NormalizeOp{},
		ir.RegexOp{Pattern: `plain`},
		ir.RegexOp{Pattern: `x(?<!y)`},
		ir.RegexOp{Pattern: `(?=a)b`, Replacement: "different"},
	}
	assert.Equal(t, []string{`(?=a)b`, `x(?<!y)`}, UnsupportedPatterns(p))
}

func TestUnsupportedPatterns_NoneIsEmpty(t *testing.T) {
	assert.Empty(t, UnsupportedPatterns(ir.Pipeline{ir.RegexOp{Pattern: `a`}, ir.NormalizeOp{}}))
	assert.Empty(t, UnsupportedPatterns(nil))
}
