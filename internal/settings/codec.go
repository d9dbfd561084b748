package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rxrename/internal/ir"
)

// ErrUnsupportedFormat is returned for settings paths with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// Format is a settings file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf returns the format for path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses data over ir.DefaultSettings, so absent fields keep their
// defaults.
func Decode(f Format, data []byte) (ir.Settings, error) {
	s := ir.DefaultSettings()
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	case FormatTOML:
		err = decodeTOML(data, &s)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return ir.DefaultSettings(), fmt.Errorf("decode %s settings: %w", f, err)
	}
	fillDefaults(&s)
	return s, nil
}

// Encode serializes s.
func Encode(f Format, s ir.Settings) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encode yaml settings: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml settings: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json settings: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		return encodeTOML(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// TOML goes through the JSON form so the step wire format, which is
// implemented by json and yaml marshalers, stays the single source of truth.
func decodeTOML(data []byte, s *ir.Settings) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	bridge, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(bridge, s)
}

func encodeTOML(s ir.Settings) ([]byte, error) {
	bridge, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode toml settings: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(bridge, &doc); err != nil {
		return nil, fmt.Errorf("encode toml settings: %w", err)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode toml settings: %w", err)
	}
	return data, nil
}

func fillDefaults(s *ir.Settings) {
	if s.Groups == nil {
		s.Groups = []ir.Group{}
	}
	if s.UngroupedSteps == nil {
		s.UngroupedSteps = ir.Steps{}
	}
	if s.RegexLibrary == nil {
		s.RegexLibrary = []ir.RegexRule{}
	}
	if s.ActiveGroupID == "" {
		s.ActiveGroupID = ir.NoActiveGroup
	}
	for i := range s.Groups {
		if s.Groups[i].Steps == nil {
			s.Groups[i].Steps = ir.Steps{}
		}
	}
}
