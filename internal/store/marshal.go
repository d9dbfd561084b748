package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/rxrename/internal/ir"
)

// marshalJSON converts v to compact JSON TEXT for storage.
// HTML escaping is disabled so patterns like `<$1>` are stored as written.
func marshalJSON(what string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalPipeline parses a stored pipeline.
func unmarshalPipeline(data string) (ir.Pipeline, error) {
	p := ir.Pipeline{}
	if data == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal pipeline: %w", err)
	}
	return p, nil
}

// unmarshalNormalization parses stored normalization options.
func unmarshalNormalization(data string) (ir.NormalizationOptions, error) {
	var opts ir.NormalizationOptions
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		return opts, fmt.Errorf("unmarshal normalization: %w", err)
	}
	return opts, nil
}
