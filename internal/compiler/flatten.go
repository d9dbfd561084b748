package compiler

import "github.com/roach88/rxrename/internal/ir"

// Flatten resolves steps against a library and groups into a flat pipeline.
// See (*Catalog).Flatten.
func Flatten(steps []ir.Step, library []ir.RegexRule, groups []ir.Group) ir.Pipeline {
	return NewCatalog(library, groups).Flatten(steps)
}

// Flatten expands steps depth-first and left to right into primitive ops.
//
//   - disabled steps are skipped; a disabled group reference skips its
//     whole subtree
//   - a rule reference appends the rule's pattern and replacement verbatim
//   - a group reference expands the group's steps in place
//   - unknown ids and nil steps are skipped
//   - a group already on the current ancestor path is skipped
//
// The cycle guard covers the ancestor path only, so sibling branches may
// each expand the same group. Resolution terminates for any finite graph.
// Always returns a non-nil pipeline.
func (c *Catalog) Flatten(steps []ir.Step) ir.Pipeline {
	out := ir.Pipeline{}
	path := make(map[string]bool)
	c.flatten(steps, path, &out)
	return out
}

func (c *Catalog) flatten(steps []ir.Step, path map[string]bool, out *ir.Pipeline) {
	for _, step := range steps {
		if step == nil || !step.Enabled() {
			continue
		}

		switch s := step.(type) {
		case ir.NormalizeStep:
			*out = append(*out, ir.NormalizeOp{})

		case ir.RegexStep:
			rule, ok := c.Rule(s.RegexID)
			if !ok {
				continue
			}
			*out = append(*out, ir.RegexOp{Pattern: rule.Pattern, Replacement: rule.Replacement})

		case ir.GroupRefStep:
			if path[s.GroupID] {
				continue
			}
			group, ok := c.Group(s.GroupID)
			if !ok {
				continue
			}
			// The id leaves the path when the subtree is done, which keeps
			// the guard local to the ancestor chain.
			path[s.GroupID] = true
			c.flatten(group.Steps, path, out)
			delete(path, s.GroupID)
		}
	}
}
