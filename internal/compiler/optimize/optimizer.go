// Package optimize holds the source-level passes and the fixpoint driver that repeats them
// until an iteration makes no change.
package optimize

import (
	"context"
	"fmt"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pass is one semantics-preserving rewrite. Run returns the number of changes it made;
// zero means the program was left untouched.
type Pass interface {
	Name() string
	Run(p *ast.Program, trail *ast.Provenance) int
}

// Stats summarizes one optimizer run.
type Stats struct {
	Iterations int
	Changes    int
	// Passes maps a pass name to the changes it made across every iteration.
	Passes map[string]int
	// Capped is set when the iteration bound stopped a loop that was still changing the program.
	Capped bool
}

// Optimizer drives the source-level fixpoint loop.
type Optimizer struct {
	opts   domain.CompileOptions
	types  *typeinfo.Registry
	logger ports.Logger
	trail  *ast.Provenance
}

// New creates an Optimizer whose hierarchy queries go to types, a registry built from the
// program the optimizer will rewrite. logger and trail may be nil.
func New(opts domain.CompileOptions, types *typeinfo.Registry, logger ports.Logger, trail *ast.Provenance) *Optimizer {
	return &Optimizer{opts: opts, types: types, logger: logger, trail: trail}
}

// Passes returns the passes of one iteration in execution order.
func (o *Optimizer) Passes() []Pass {
	passes := []Pass{
		Pruner{Types: o.types},
		Finalizer{Types: o.types},
		MakeCallsStatic{Types: o.types},
		TypeTightener{Types: o.types},
		MethodCallTightener{Types: o.types},
		DeadCodeElimination{},
	}
	if o.opts.AggressivelyOptimize {
		passes = append(passes, Inliner{})
	}
	return passes
}

// Run repeats every pass until one full iteration reports no change, the iteration bound is
// reached, or ctx is cancelled. In draft mode it runs a single iteration.
func (o *Optimizer) Run(ctx context.Context, p *ast.Program) (Stats, error) {
	passes := o.Passes()
	limit := o.opts.MaxOptimizeIterations
	if limit <= 0 {
		limit = domain.DefaultMaxOptimizeIterations
	}
	if o.opts.IsDraft() {
		limit = 1
	}

	stats := Stats{Passes: make(map[string]int, len(passes))}
	for {
		if err := ctx.Err(); err != nil {
			return stats, zerr.With(zerr.Wrap(domain.ErrCancelled, "source optimization aborted"),
				"iteration", stats.Iterations)
		}
		if stats.Iterations >= limit {
			if !o.opts.IsDraft() {
				stats.Capped = true
				if o.logger != nil {
					o.logger.Warn(fmt.Sprintf("source optimization stopped after %d iterations without reaching a fixpoint", limit))
				}
			}
			return stats, nil
		}
		stats.Iterations++

		changes := 0
		for _, pass := range passes {
			o.trail.Enter(pass.Name())
			n := pass.Run(p, o.trail)
			o.trail.Leave()
			stats.Passes[pass.Name()] += n
			changes += n
		}
		stats.Changes += changes
		if changes == 0 {
			return stats, nil
		}
	}
}

// liveMethods returns every method that is not dead and has a body.
func liveMethods(p *ast.Program) []ast.MethodID {
	out := make([]ast.MethodID, 0, len(p.Methods))
	for i := range p.Methods {
		m := &p.Methods[i]
		if m.Dead || p.Classes[m.Class].Dead || m.Body == ast.NoStmt {
			continue
		}
		out = append(out, ast.MethodID(i))
	}
	return out
}

// forEachCall visits the call expressions of every live method, with the trail positioned on
// the enclosing method.
func forEachCall(p *ast.Program, trail *ast.Provenance, visit func(caller ast.MethodID, call ast.ExprID)) {
	for _, m := range liveMethods(p) {
		trail.EnterMethod(p, m)
		var calls []ast.ExprID
		for x := range p.MethodExprs(m) {
			if p.Exprs[x].Kind == ast.ExprCall {
				calls = append(calls, x)
			}
		}
		for _, x := range calls {
			visit(m, x)
		}
		trail.Leave()
	}
}

func isClassType(t ast.TypeRef) bool {
	return t.Kind == ast.TypeClass && t.Dims == 0 && t.Class != ast.NoClass
}
