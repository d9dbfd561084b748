package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rxrename/internal/ir"
)

func TestNormalize_AllRules(t *testing.T) {
	got := Normalize("ＮＨＫ　2025:12-25", ir.DefaultNormalization())
	assert.Equal(t, "NHK 2025：12-25", got)
}

func TestNormalize_Toggles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  ir.NormalizationOptions
		want  string
	}{
		{"space on", "a\u3000 b", ir.NormalizationOptions{Space: true}, "a b"},
		{"space off", "a\u3000 b", ir.NormalizationOptions{}, "a  b"},
		{"space collapses long runs", "a    b  c", ir.NormalizationOptions{Space: true}, "a b c"},
		{"wave dash on", "1\u301c2\u223c3", ir.NormalizationOptions{WaveDash: true}, "1\uff5e2\uff5e3"},
		{"wave dash off", "1\u301c2", ir.NormalizationOptions{}, "1\u301c2"},
		{"dash on", "a\u2010b\u2013c\u2014d\u2015e", ir.NormalizationOptions{Dash: true}, "a-b-c-d-e"},
		{"dash off", "a\u2014b", ir.NormalizationOptions{}, "a\u2014b"},
		{"middle dot on", "a\u00b7b\u2022c", ir.NormalizationOptions{MiddleDot: true}, "a\u30fbb\u30fbc"},
		{"middle dot off", "a\u00b7b", ir.NormalizationOptions{}, "a\u00b7b"},
		{"halfwidth middle dot folds under NFKC", "a\uff65b", ir.NormalizationOptions{}, "a\u30fbb"},
		{"brackets fold under NFKC", "\uff08a\uff09", ir.NormalizationOptions{}, "(a)"},
		{"colon on", "a:b", ir.NormalizationOptions{Colon: true}, "a\uff1ab"},
		{"colon off", "a\uff1ab", ir.NormalizationOptions{}, "a:b"},
		{"slash on", "a/b", ir.NormalizationOptions{Slash: true}, "a\uff0fb"},
		{"slash off", "a\uff0fb", ir.NormalizationOptions{}, "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input, tt.opts))
		})
	}
}

func TestNormalize_AllFalseIsNFKC(t *testing.T) {
	inputs := []string{
		"",
		"plain.txt",
		"ＡＢＣ１２３",
		"ｶﾀｶﾅ",
		"e\u0301",
		"a\u3000\u3000b:/\u2014",
		"①②③",
	}
	for _, in := range inputs {
		assert.Equal(t, norm.NFKC.String(in), Normalize(in, ir.NormalizationOptions{}), "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	opts := ir.DefaultNormalization()
	inputs := []string{"ＮＨＫ　2025:12-25", "a\u2014c\u00b7d/e", "x    y"}
	for _, in := range inputs {
		once := Normalize(in, opts)
		assert.Equal(t, once, Normalize(once, opts), "input %q", in)
	}
}
