package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Op is a primitive operation of a flattened pipeline.
// Sealed: only RegexOp and NormalizeOp implement it. A pipeline never
// contains group references.
type Op interface {
	op()
}

// RegexOp replaces every match of Pattern in the stem with Replacement.
type RegexOp struct {
	Pattern     string
	Replacement string
}

func (RegexOp) op() {}

// NormalizeOp runs the Unicode normalizer over the stem.
type NormalizeOp struct{}

func (NormalizeOp) op() {}

// Op type names on the wire.
const (
	OpTypeRegex     = "regex"
	OpTypeNormalize = "normalize"
)

type opRecord struct {
	Type        string `json:"type"`
	Pattern     string `json:"pattern,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}

// Pipeline is the flat, ordered list of ops produced by resolution.
type Pipeline []Op

// Patterns returns the regex patterns of the pipeline in order.
func (p Pipeline) Patterns() []string {
	var patterns []string
	for _, op := range p {
		if rx, ok := op.(RegexOp); ok {
			patterns = append(patterns, rx.Pattern)
		}
	}
	return patterns
}

// MarshalJSON implements json.Marshaler. Patterns are written without HTML
// escaping; an enclosing encoder may still escape them.
func (p Pipeline) MarshalJSON() ([]byte, error) {
	recs := make([]opRecord, 0, len(p))
	for i, op := range p {
		switch v := op.(type) {
		case RegexOp:
			recs = append(recs, opRecord{Type: OpTypeRegex, Pattern: v.Pattern, Replacement: v.Replacement})
		case NormalizeOp:
			recs = append(recs, opRecord{Type: OpTypeNormalize})
		default:
			return nil, fmt.Errorf("pipeline[%d]: unsupported op %T", i, op)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(recs); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	var recs []opRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("decode pipeline: %w", err)
	}
	ops := make(Pipeline, 0, len(recs))
	for i, rec := range recs {
		switch rec.Type {
		case OpTypeRegex:
			ops = append(ops, RegexOp{Pattern: rec.Pattern, Replacement: rec.Replacement})
		case OpTypeNormalize:
			ops = append(ops, NormalizeOp{})
		default:
			return fmt.Errorf("pipeline[%d]: unknown op type %q", i, rec.Type)
		}
	}
	*p = ops
	return nil
}
