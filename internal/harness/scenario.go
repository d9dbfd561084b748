package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rxrename/internal/ir"
)

// Scenario defines a rename scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Settings holds the rule library, groups, active steps, and
	// normalization options. Normalization defaults to every rule on.
	Settings ir.Settings `yaml:"settings"`

	// Files are the names to create and select, in selection order.
	Files []string `yaml:"files"`

	// Existing are extra names created but not selected, used to make
	// rename targets collide.
	Existing []string `yaml:"existing,omitempty"`

	// Confirm is the answer to the confirmation prompt. Defaults to true.
	Confirm *bool `yaml:"confirm,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "status": Outcome status equals Equals
	// - "preview": preview of File gives Equals
	// - "renamed": File was renamed to Equals on disk
	// - "not_renamed": File is still on disk under its name
	// - "pipeline_length": flattened pipeline has Count ops
	// - "executor_calls": executor was called Count times
	// - "notice": a notice at Level whose message or details contain Contains
	// - "selection": selection after the batch equals Names
	Type string `yaml:"type"`

	File     string   `yaml:"file,omitempty"`
	Equals   string   `yaml:"equals,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
	Level    string   `yaml:"level,omitempty"`
	Contains string   `yaml:"contains,omitempty"`
	Names    []string `yaml:"names,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus         = "status"
	AssertPreview        = "preview"
	AssertRenamed        = "renamed"
	AssertNotRenamed     = "not_renamed"
	AssertPipelineLength = "pipeline_length"
	AssertExecutorCalls  = "executor_calls"
	AssertNotice         = "notice"
	AssertSelection      = "selection"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Settings: ir.DefaultSettings()}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}
	var out []*Scenario
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// ConfirmAnswer returns the scripted answer to the confirmation prompt.
func (s *Scenario) ConfirmAnswer() bool {
	return s.Confirm == nil || *s.Confirm
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, name := range append(append([]string{}, s.Files...), s.Existing...) {
		if err := validateFileName(name); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
		if seen[name] {
			return fmt.Errorf("file %q is listed twice", name)
		}
		seen[name] = true
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid file name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("file name %q must not contain a separator", name)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStatus:
		if a.Equals == "" {
			return fmt.Errorf("assertions[%d]: equals is required for status", index)
		}
	case AssertPreview, AssertRenamed:
		if a.File == "" || a.Equals == "" {
			return fmt.Errorf("assertions[%d]: file and equals are required for %s", index, a.Type)
		}
	case AssertNotRenamed:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for not_renamed", index)
		}
	case AssertPipelineLength, AssertExecutorCalls:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertNotice:
		if a.Level == "" {
			return fmt.Errorf("assertions[%d]: level is required for notice", index)
		}
	case AssertSelection:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for selection (use [] for empty)", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
