package engine

import (
	"fmt"

	"github.com/roach88/rxrename/internal/ir"
	"github.com/roach88/rxrename/internal/normalize"
)

// Program is a pipeline whose regex ops have been compiled by one backend.
// A Program is immutable and safe for concurrent use.
type Program struct {
	ops []step
}

// step is one compiled op; sub is nil for normalization.
type step struct {
	op  ir.Op
	sub Substitution
}

// Compile compiles every regex op of p with backend. The first pattern that
// fails to compile aborts compilation.
func Compile(p ir.Pipeline, backend Backend) (*Program, error) {
	prog := &Program{ops: make([]step, 0, len(p))}
	for i, op := range p {
		switch o := op.(type) {
		case ir.NormalizeOp:
			prog.ops = append(prog.ops, step{op: o})
		case ir.RegexOp:
			sub, err := backend.Compile(o.Pattern, o.Replacement)
			if err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
			prog.ops = append(prog.ops, step{op: o, sub: sub})
		default:
			return nil, fmt.Errorf("op %d: unsupported op %T", i, op)
		}
	}
	return prog, nil
}

// Len returns the number of ops in the program.
func (p *Program) Len() int { return len(p.ops) }

// Apply folds the program over stem in order.
func (p *Program) Apply(stem string, opts ir.NormalizationOptions) (string, error) {
	var err error
	for i, s := range p.ops {
		if stem, err = s.apply(stem, opts); err != nil {
			return "", fmt.Errorf("op %d: %w", i, err)
		}
	}
	return stem, nil
}

// Trace folds the program over stem and returns the stem after each op.
// On error the trace holds the stems produced before the failing op.
func (p *Program) Trace(stem string, opts ir.NormalizationOptions) ([]string, error) {
	trace := make([]string, 0, len(p.ops))
	var err error
	for i, s := range p.ops {
		if stem, err = s.apply(stem, opts); err != nil {
			return trace, fmt.Errorf("op %d: %w", i, err)
		}
		trace = append(trace, stem)
	}
	return trace, nil
}

func (s step) apply(stem string, opts ir.NormalizationOptions) (string, error) {
	if s.sub == nil {
		return normalize.Normalize(stem, opts), nil
	}
	return s.sub.ReplaceAll(stem)
}
