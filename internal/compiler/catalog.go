package compiler

import "github.com/roach88/rxrename/internal/ir"

// Catalog is a read-only view of a rule library and its groups, indexed by
// id. The first definition of a duplicated id wins.
type Catalog struct {
	rules  map[string]ir.RegexRule
	groups map[string]ir.Group
}

// NewCatalog indexes the given library and groups.
// The slices are not retained; later changes to them are not observed.
func NewCatalog(library []ir.RegexRule, groups []ir.Group) *Catalog {
	c := &Catalog{
		rules:  make(map[string]ir.RegexRule, len(library)),
		groups: make(map[string]ir.Group, len(groups)),
	}
	for _, r := range library {
		if _, dup := c.rules[r.ID]; !dup {
			c.rules[r.ID] = r
		}
	}
	for _, g := range groups {
		if _, dup := c.groups[g.ID]; !dup {
			c.groups[g.ID] = g
		}
	}
	return c
}

// Rule returns the rule with the given id.
func (c *Catalog) Rule(id string) (ir.RegexRule, bool) {
	r, ok := c.rules[id]
	return r, ok
}

// Group returns the group with the given id.
func (c *Catalog) Group(id string) (ir.Group, bool) {
	g, ok := c.groups[id]
	return g, ok
}
