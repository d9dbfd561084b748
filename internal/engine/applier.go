package engine

import "github.com/roach88/rxrename/internal/ir"

// Applier computes new file names for preview.
//
// Apply never fails: when any pattern fails to compile or match, the
// original file name is returned unchanged.
type Applier struct {
	// Backend compiles the regex ops. Nil means Preview.
	Backend Backend
}

// NewApplier returns an Applier using the Preview backend.
func NewApplier() *Applier {
	return &Applier{Backend: Preview}
}

// Apply returns the last path component of oldPath with p folded over its
// stem. The extension is never transformed.
func (a *Applier) Apply(oldPath string, p ir.Pipeline, opts ir.NormalizationOptions) string {
	fileName, stem, ext := SplitName(oldPath)
	prog, err := Compile(p, a.backend())
	if err != nil {
		return fileName
	}
	out, err := prog.Apply(stem, opts)
	if err != nil {
		return fileName
	}
	return out + ext
}

// TraceResult is the step-by-step evaluation of a pipeline on one path.
type TraceResult struct {
	FileName string   `json:"file_name" yaml:"file_name"`
	Stem     string   `json:"stem" yaml:"stem"`
	Ext      string   `json:"ext" yaml:"ext"`
	Stems    []string `json:"stems" yaml:"stems"`
	NewName  string   `json:"new_name" yaml:"new_name"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Trace evaluates p on oldPath and records the stem after each op.
// NewName matches what Apply returns for the same input.
func (a *Applier) Trace(oldPath string, p ir.Pipeline, opts ir.NormalizationOptions) TraceResult {
	fileName, stem, ext := SplitName(oldPath)
	res := TraceResult{FileName: fileName, Stem: stem, Ext: ext, Stems: []string{}, NewName: fileName}

	prog, err := Compile(p, a.backend())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	stems, err := prog.Trace(stem, opts)
	res.Stems = stems
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(stems) > 0 {
		res.NewName = stems[len(stems)-1] + ext
	} else {
		res.NewName = stem + ext
	}
	return res
}

func (a *Applier) backend() Backend {
	if a == nil || a.Backend == nil {
		return Preview
	}
	return a.Backend
}
