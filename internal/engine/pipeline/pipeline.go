// Package pipeline compiles one permutation. Every step runs once, in order, on a tree the
// caller checked out of the shared cache:
//
//	resolve-rebinds → optimize → normalizers → generate → optimize-output → naming → split → emit
//
// Failures of any step are handled at one boundary: resource exhaustion and cancellation are
// returned unmodified, compile diagnostics are returned as they are, and every other failure,
// panics included, is logged with its provenance trail and reported as a compile failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/codegen"
	"go.trai.ch/permc/internal/compiler/emit"
	"go.trai.ch/permc/internal/compiler/jsopt"
	"go.trai.ch/permc/internal/compiler/naming"
	"go.trai.ch/permc/internal/compiler/normalize"
	"go.trai.ch/permc/internal/compiler/optimize"
	"go.trai.ch/permc/internal/compiler/split"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/compiler/unified"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
)

// Step names, in execution order. The normalizers run between StepOptimize and StepGenerate
// under their own names.
const (
	StepResolveRebinds = "resolve-rebinds"
	StepOptimize       = "optimize"
	StepGenerate       = "generate"
	StepOptimizeOutput = "optimize-output"
	StepNaming         = "naming"
	StepSplit          = "split"
	StepEmit           = "emit"
)

// Pipeline compiles permutations with one set of options. It holds no per-permutation state,
// so one Pipeline may compile several permutations concurrently.
type Pipeline struct {
	opts     domain.CompileOptions
	renderer ports.Renderer
	logger   ports.Logger
	tracer   ports.Tracer
}

// New creates a Pipeline. tracer may be nil. Pass metrics are only collected when compiler
// metrics are enabled; spans are started whenever a tracer is set.
func New(opts domain.CompileOptions, renderer ports.Renderer, logger ports.Logger, tracer ports.Tracer) *Pipeline {
	return &Pipeline{opts: opts, renderer: renderer, logger: logger, tracer: tracer}
}

// Options returns the options the pipeline compiles with.
func (p *Pipeline) Options() domain.CompileOptions {
	return p.opts
}

// compilation is the state of one Compile call.
type compilation struct {
	*Pipeline
	perm   domain.Permutation
	tree   *unified.Tree
	types  *typeinfo.Registry
	trail  *ast.Provenance
	result *domain.PermutationResult

	gen   *codegen.Result
	parts *split.Result
}

// Compile runs every step on tree, which the caller hands over, and returns the result for
// perm. The returned error is a *domain.ResourceExhaustedError, an error matching
// domain.ErrCancelled, or a *domain.CompileError.
func (p *Pipeline) Compile(ctx context.Context, tree *unified.Tree, perm domain.Permutation) (res *domain.PermutationResult, err error) {
	c := &compilation{
		Pipeline: p,
		perm:     perm,
		tree:     tree,
		trail:    &ast.Provenance{},
		result:   &domain.PermutationResult{Permutation: perm},
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, c.fail(recovered(r))
		}
	}()

	if err := c.run(ctx); err != nil {
		return nil, c.fail(err)
	}
	return c.result, nil
}

func (c *compilation) run(ctx context.Context) error {
	src := c.tree.Source

	if err := c.step(ctx, StepResolveRebinds, func(context.Context) (int, int, error) {
		requests := len(normalize.RebindRequests(src))
		return 0, requests, normalize.ResolveRebinds(src, c.perm.Answer, c.trail)
	}); err != nil {
		return err
	}

	if err := c.step(ctx, StepOptimize, func(ctx context.Context) (int, int, error) {
		// The optimizer and the normalizers query the hierarchy of this copy. Declaration
		// problems were already reported when the program was loaded.
		types, _, err := typeinfo.FromProgram(src, nil)
		if err != nil {
			return 0, 0, err
		}
		c.types = types
		stats, err := optimize.New(c.opts, c.types, c.logger, c.trail).Run(ctx, src)
		return stats.Iterations, stats.Changes, err
	}); err != nil {
		return err
	}

	for _, n := range normalize.Sequence(c.opts, c.types) {
		if err := c.step(ctx, n.Name(), func(context.Context) (int, int, error) {
			return 0, n.Run(src, c.trail), nil
		}); err != nil {
			return err
		}
	}

	if err := c.step(ctx, StepGenerate, func(context.Context) (int, int, error) {
		gen, err := codegen.Generate(src, c.tree.Output, c.opts, c.trail)
		if err != nil {
			return 0, 0, err
		}
		c.gen = gen
		return 0, len(gen.Program.Stmts), nil
	}); err != nil {
		return err
	}
	// The source tree is not needed past generation.
	c.tree.Source = nil

	if c.opts.AggressivelyOptimize {
		if err := c.step(ctx, StepOptimizeOutput, func(ctx context.Context) (int, int, error) {
			stats, err := jsopt.New(c.opts.MaxOptimizeIterations, c.logger).Run(ctx, c.gen.Program)
			return stats.Iterations, stats.Changes, err
		}); err != nil {
			return err
		}
	}

	if err := c.step(ctx, StepNaming, func(context.Context) (int, int, error) {
		strategy, err := naming.For(c.opts.OutputMode)
		if err != nil {
			return 0, 0, err
		}
		stats := strategy.Apply(c.gen.Program)
		return 0, stats.Renamed + stats.Interned, nil
	}); err != nil {
		return err
	}

	if err := c.step(ctx, StepSplit, func(context.Context) (int, int, error) {
		if c.opts.SplittingEnabled() && len(c.gen.Program.Splits) > 0 {
			c.parts = split.Split(c.gen.Program)
		} else {
			c.parts = split.Single(c.gen.Program)
		}
		return 0, len(c.parts.Fragments) - 1, nil
	}); err != nil {
		return err
	}

	return c.step(ctx, StepEmit, func(context.Context) (int, int, error) {
		return 0, 0, c.emit()
	})
}

func (c *compilation) emit() error {
	pretty := c.opts.OutputMode != domain.OutputModeObfuscated
	fragments, err := emit.Fragments(c.parts, c.renderer, pretty)
	if err != nil {
		return err
	}
	symbols, err := emit.SymbolTable(c.gen.Names, c.parts)
	if err != nil {
		return err
	}
	c.result.Fragments = fragments
	c.result.SymbolTable = symbols

	if !c.opts.SoycEnabled {
		return nil
	}
	reports, err := emit.Reports(c.parts, c.gen.Names, c.renderer, pretty, c.opts.SoycExtra)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("permutation %d: skipping diagnostic reports: %v", c.perm.ID, err))
		return nil
	}
	c.result.Diagnostics = reports
	return nil
}

// stepFunc runs one step and returns its iteration and change counts.
type stepFunc func(ctx context.Context) (iterations, changes int, err error)

// step runs fn with name pushed on the provenance trail. On failure the trail is left as it
// is, so the boundary reports where the step stopped.
func (c *compilation) step(ctx context.Context, name string, fn stepFunc) error {
	c.trail.Enter(name)
	start := time.Now()

	var span ports.Span
	if c.tracer != nil {
		ctx, span = c.tracer.Start(ctx, name, ports.WithAttribute("permutation", c.perm.ID))
		defer span.End()
	}

	iterations, changes, err := fn(ctx)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		return err
	}
	c.trail.Leave()

	if span != nil {
		span.SetAttribute("changes", changes)
		if iterations > 0 {
			span.SetAttribute("iterations", iterations)
		}
	}
	if c.opts.CompilerMetricsEnabled {
		c.result.Metrics = append(c.result.Metrics, domain.PassMetrics{
			Name:       name,
			Duration:   time.Since(start),
			Iterations: iterations,
			Changes:    changes,
		})
	}
	c.logger.Debug(fmt.Sprintf("permutation %d: %s done (%d changes)", c.perm.ID, name, changes))
	return nil
}

// fail applies the failure policy to err.
func (c *compilation) fail(err error) error {
	var exhausted *domain.ResourceExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted
	}
	if errors.Is(err, domain.ErrCancelled) {
		return err
	}

	var compileErr *domain.CompileError
	if errors.As(err, &compileErr) {
		c.logger.Error(compileErr)
		return compileErr
	}

	c.logger.Error(&domain.InternalCompilerError{Cause: err, Trail: c.trail.Trail()})
	return &domain.CompileError{Diagnostics: []domain.Diagnostic{{
		Message: fmt.Sprintf("internal compiler error in permutation %d (%s)", c.perm.ID, c.perm.Label()),
	}}}
}

func recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
