package ir

// RegexRule is a reusable substitution in the rule library.
type RegexRule struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Pattern     string   `json:"pattern" yaml:"pattern"`
	Replacement string   `json:"replacement" yaml:"replacement"`
	Sample      string   `json:"sample,omitempty" yaml:"sample,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// DisplayName returns the rule name, or its id when unnamed.
func (r RegexRule) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Group is a named, ordered list of steps. Groups may reference each other
// and the reference graph may contain cycles.
type Group struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Steps Steps  `json:"steps" yaml:"steps"`
}

// NormalizationOptions toggles the symbol rules applied after NFKC.
type NormalizationOptions struct {
	Space     bool `json:"space" yaml:"space" koanf:"space"`
	WaveDash  bool `json:"waveDash" yaml:"waveDash" koanf:"wave_dash"`
	Dash      bool `json:"dash" yaml:"dash" koanf:"dash"`
	MiddleDot bool `json:"middleDot" yaml:"middleDot" koanf:"middle_dot"`
	Brackets  bool `json:"brackets" yaml:"brackets" koanf:"brackets"`
	Colon     bool `json:"colon" yaml:"colon" koanf:"colon"`
	Slash     bool `json:"slash" yaml:"slash" koanf:"slash"`
}

// DefaultNormalization enables every symbol rule.
func DefaultNormalization() NormalizationOptions {
	return NormalizationOptions{
		Space:     true,
		WaveDash:  true,
		Dash:      true,
		MiddleDot: true,
		Brackets:  true,
		Colon:     true,
		Slash:     true,
	}
}

// RenameRequest is the single call made to a rename executor.
type RenameRequest struct {
	Files         []string             `json:"files"`
	Steps         Pipeline             `json:"steps"`
	Normalization NormalizationOptions `json:"normalization"`
}

// RenameResult reports the outcome for one requested file.
// OldName is the file name (not the full path) of the request entry.
type RenameResult struct {
	Success bool   `json:"success"`
	OldName string `json:"oldName"`
	NewName string `json:"newName,omitempty"`
	Error   string `json:"error,omitempty"`
}
