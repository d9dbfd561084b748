package settings

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/rxrename/internal/ir"
)

//go:embed pack_schema.cue
var packSchema string

// RulePack is a set of rules and groups loaded from CUE, in declaration
// order.
type RulePack struct {
	Rules  []ir.RegexRule
	Groups []ir.Group
}

// PackError is a rule pack problem with its CUE source position.
type PackError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *PackError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

type packRule struct {
	Name        string   `json:"name"`
	Pattern     string   `json:"pattern"`
	Replacement string   `json:"replacement"`
	Sample      string   `json:"sample"`
	Tags        []string `json:"tags"`
}

type packStep struct {
	Regex     string `json:"regex"`
	Group     string `json:"group"`
	Normalize bool   `json:"normalize"`
	Enabled   *bool  `json:"enabled"`
}

type packGroup struct {
	Name  string     `json:"name"`
	Steps []packStep `json:"steps"`
}

// LoadRulePack loads the CUE package in dir. The package may declare
//
//	rule: <id>: {name?, pattern, replacement?, sample?, tags?}
//	group: <id>: {name?, steps: [...{regex | group | normalize, enabled?}]}
//
// and nothing else at those paths. The first error is returned, positioned
// in the source when CUE knows where it came from.
func LoadRulePack(dir string) (*RulePack, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("rule pack: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rule pack: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("rule pack: no CUE instances in %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return nil, formatCUEError(err)
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compilePack(ctx, value)
}

// CompileRulePack compiles a single CUE source, for tests and stdin.
func CompileRulePack(filename string, src []byte) (*RulePack, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compilePack(ctx, value)
}

func compilePack(ctx *cue.Context, value cue.Value) (*RulePack, error) {
	schema := ctx.CompileString(packSchema, cue.Filename("pack_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("rule pack schema: %w", err)
	}
	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	pack := &RulePack{}

	rules, err := value.LookupPath(cue.ParsePath("rule")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for rules.Next() {
		var r packRule
		if err := rules.Value().Decode(&r); err != nil {
			return nil, formatCUEError(err)
		}
		pack.Rules = append(pack.Rules, ir.RegexRule{
			ID:          rules.Label(),
			Name:        r.Name,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Sample:      r.Sample,
			Tags:        r.Tags,
		})
	}

	groups, err := value.LookupPath(cue.ParsePath("group")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for groups.Next() {
		id := groups.Label()
		var g packGroup
		if err := groups.Value().Decode(&g); err != nil {
			return nil, formatCUEError(err)
		}
		group := ir.Group{ID: id, Name: g.Name, Steps: ir.Steps{}}
		if group.Name == "" {
			group.Name = id
		}

		stepsVal := groups.Value().LookupPath(cue.ParsePath("steps"))
		for i, ps := range g.Steps {
			step := ir.StepRecord{
				RegexID:    ps.Regex,
				GroupRefID: ps.Group,
				Normalize:  ps.Normalize,
				Enabled:    ps.Enabled,
			}.Step()
			if step == nil {
				return nil, &PackError{
					Path:    fmt.Sprintf("group.%s.steps[%d]", id, i),
					Message: "step must set exactly one of regex, group, normalize",
					Pos:     stepsVal.LookupPath(cue.MakePath(cue.Index(i))).Pos(),
				}
			}
			group.Steps = append(group.Steps, step)
		}
		pack.Groups = append(pack.Groups, group)
	}

	return pack, nil
}

// ImportSummary counts what Import changed.
type ImportSummary struct {
	RulesAdded    int `json:"rules_added"`
	RulesUpdated  int `json:"rules_updated"`
	GroupsAdded   int `json:"groups_added"`
	GroupsUpdated int `json:"groups_updated"`
}

// Import upserts the pack's rules and groups into s by id. Nothing else in
// s changes.
func Import(s *ir.Settings, pack *RulePack) ImportSummary {
	var sum ImportSummary
	for _, r := range pack.Rules {
		if UpsertRule(s, r) {
			sum.RulesAdded++
		} else {
			sum.RulesUpdated++
		}
	}
	for _, g := range pack.Groups {
		if UpsertGroup(s, g) {
			sum.GroupsAdded++
		} else {
			sum.GroupsUpdated++
		}
	}
	return sum
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &PackError{
			Path:    "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
