// Package jsopt optimizes the output tree: it folds statically known conditions, inlines
// small top-level functions and removes functions nothing refers to any more.
package jsopt

import (
	"context"
	"fmt"

	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pass is one output-tree rewrite. Run returns the number of changes it made.
type Pass interface {
	Name() string
	Run(prog *js.Program) int
}

// Stats summarizes one optimizer run.
type Stats struct {
	Iterations int
	Changes    int
	Capped     bool
}

// Optimizer runs the output-level passes to a fixpoint.
type Optimizer struct {
	maxIterations int
	logger        ports.Logger
}

// New returns an optimizer bounded to maxIterations iterations.
func New(maxIterations int, logger ports.Logger) *Optimizer {
	if maxIterations <= 0 {
		maxIterations = domain.DefaultMaxOptimizeIterations
	}
	return &Optimizer{maxIterations: maxIterations, logger: logger}
}

// Passes returns the passes of one iteration in order.
func (o *Optimizer) Passes() []Pass {
	return []Pass{StaticEval{}, Inliner{}, UnusedFunctions{}}
}

// Run repeats every pass until an iteration changes nothing. Cancellation is checked before
// each iteration.
func (o *Optimizer) Run(ctx context.Context, prog *js.Program) (Stats, error) {
	var stats Stats
	passes := o.Passes()
	for {
		if err := ctx.Err(); err != nil {
			return stats, zerr.With(zerr.Wrap(domain.ErrCancelled, "output optimization aborted"),
				"iteration", stats.Iterations)
		}
		if stats.Iterations >= o.maxIterations {
			stats.Capped = true
			if o.logger != nil {
				o.logger.Warn(fmt.Sprintf("output optimization stopped after %d iterations without reaching a fixpoint", o.maxIterations))
			}
			return stats, nil
		}
		stats.Iterations++
		changes := 0
		for _, p := range passes {
			changes += p.Run(prog)
		}
		stats.Changes += changes
		if changes == 0 {
			return stats, nil
		}
	}
}

// functions indexes the top-level function declarations of prog by name.
func functions(prog *js.Program) map[*js.Name]*js.Func {
	out := make(map[*js.Name]*js.Func)
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok {
			out[fd.Fn.Name] = fd.Fn
		}
	}
	return out
}
