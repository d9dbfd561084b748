package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/rxrename/internal/ir"
)

var (
	dateToJapanese = ir.RegexOp{Pattern: `(\d{4})-(\d{2})-(\d{2})`, Replacement: "$1年$2月$3日"}
	importantTag   = ir.RegexOp{Pattern: `^`, Replacement: "[重要]_"}
)

func TestApplier_Scenarios(t *testing.T) {
	a := NewApplier()
	opts := ir.DefaultNormalization()

	tests := []struct {
		name     string
		path     string
		pipeline ir.Pipeline
		want     string
	}{
		{"date to japanese", "2023-12-25.txt", ir.Pipeline{dateToJapanese}, "2023年12月25日.txt"},
		{"chained prefix", "2023-12-25.txt", ir.Pipeline{dateToJapanese, importantTag}, "[重要]_2023年12月25日.txt"},
		{"prefix only", "2023-12-25.txt", ir.Pipeline{importantTag}, "[重要]_2023-12-25.txt"},
		{"empty pipeline", "file.txt", ir.Pipeline{}, "file.txt"},
		{"normalize only", "ＮＨＫ　2025:12-25.txt", ir.Pipeline{ir.NormalizeOp{}}, "NHK 2025：12-25.txt"},
		{"directory is dropped", "/videos/2023-12-25.mkv", ir.Pipeline{dateToJapanese}, "2023年12月25日.mkv"},
		{
			"episode padding then title",
			"20260116_ドラマ (ep:2) (station:MX).mkv",
			ir.Pipeline{
				ir.RegexOp{Pattern: `(\(ep[:：])(\d)\)([^0-9]|$)`, Replacement: "${1}0$2)$3"},
				ir.RegexOp{Pattern: `\(ep[:：](\d+)\)`, Replacement: "第$1話"},
			},
			"20260116_ドラマ 第02話 (station:MX).mkv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Apply(tt.path, tt.pipeline, opts))
		})
	}
}

func TestApplier_ExtensionNeverTransformed(t *testing.T) {
	a := NewApplier()
	p := ir.Pipeline{ir.RegexOp{Pattern: `t`, Replacement: "T"}, ir.RegexOp{Pattern: `$`, Replacement: ".bak"}}
	assert.Equal(t, "docs.bak.txt", a.Apply("docs.txt", p, ir.NormalizationOptions{}))
	assert.Equal(t, "TesT.bak.txt", a.Apply("test.txt", p, ir.NormalizationOptions{}))
}

func TestApplier_InvalidPatternFallsBack(t *testing.T) {
	a := NewApplier()
	p := ir.Pipeline{importantTag, ir.RegexOp{Pattern: `(`, Replacement: "x"}}
	assert.Equal(t, "2023-12-25.txt", a.Apply("dir/2023-12-25.txt", p, ir.DefaultNormalization()))
}

func TestApplier_StrictRejectsLookaroundPreviewAllows(t *testing.T) {
	p := ir.Pipeline{ir.RegexOp{Pattern: `(?=a)a`, Replacement: "b"}}
	assert.Equal(t, "bb.txt", NewApplier().Apply("aa.txt", p, ir.NormalizationOptions{}))
	assert.Equal(t, "aa.txt", (&Applier{Backend: Strict}).Apply("aa.txt", p, ir.NormalizationOptions{}))
}

func TestApplier_SecondApplicationIsNoop(t *testing.T) {
	a := NewApplier()
	p := ir.Pipeline{dateToJapanese}
	once := a.Apply("2023-12-25.txt", p, ir.DefaultNormalization())
	assert.Equal(t, once, a.Apply(once, p, ir.DefaultNormalization()))
}

func TestApplier_Trace(t *testing.T) {
	a := NewApplier()
	res := a.Trace("in/2023-12-25.txt", ir.Pipeline{dateToJapanese, importantTag}, ir.DefaultNormalization())
	assert.Equal(t, TraceResult{
		FileName: "2023-12-25.txt",
		Stem:     "2023-12-25",
		Ext:      ".txt",
		Stems:    []string{"2023年12月25日", "[重要]_2023年12月25日"},
		NewName:  "[重要]_2023年12月25日.txt",
	}, res)
}

func TestApplier_TraceReportsCompileError(t *testing.T) {
	res := NewApplier().Trace("a.txt", ir.Pipeline{ir.RegexOp{Pattern: `[`}}, ir.NormalizationOptions{})
	assert.Equal(t, "a.txt", res.NewName)
	assert.Empty(t, res.Stems)
	assert.Contains(t, res.Error, "op 0")
}

func TestApplier_NilUsesPreview(t *testing.T) {
	var a *Applier
	assert.Equal(t, "b.txt", a.Apply("a.txt", ir.Pipeline{ir.RegexOp{Pattern: `a`, Replacement: "b"}}, ir.NormalizationOptions{}))
}
