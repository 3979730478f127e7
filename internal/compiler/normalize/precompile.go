package normalize

import (
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/optimize"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
)

// Roots names the program roots contributed by the module descriptor and the rebind oracle.
type Roots struct {
	EntryPoints []string
	ExtraRoots  []string
	// Answers maps each rebind request to every answer some permutation chooses.
	Answers map[string][]string
}

// RebindRequests returns the sorted qualified names of every rebind request in p.
func RebindRequests(p *ast.Program) []string {
	set := make(map[string]struct{})
	for i := range p.Exprs {
		if p.Exprs[i].Kind == ast.ExprRebind {
			set[p.Exprs[i].Name] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Precompile prepares a freshly loaded program for the shared cache: it resolves the roots,
// validates every rebind answer, lowers assertions and, when several permutations will share
// the program, prunes it once. All root problems are reported together in one
// *domain.CompileError. types must be built from p.
func Precompile(p *ast.Program, types *typeinfo.Registry, roots Roots, opts domain.CompileOptions, permutations int,
	logger ports.Logger,
) error {
	var diags []domain.Diagnostic
	report := func(src ast.SourceRange, format string, args ...any) {
		diags = append(diags, domain.Diagnostic{File: src.File, Line: src.Line, Message: fmt.Sprintf(format, args...)})
	}

	for _, name := range roots.EntryPoints {
		c, ok := p.FindClass(name)
		if !ok {
			report(ast.SourceRange{}, "entry point type %s not found", name)
			continue
		}
		m, ok := p.FindMethod(c, "main", 0)
		if !ok || !p.Methods[m].Is(ast.MethodStatic) {
			report(p.Classes[c].Source, "entry point type %s has no static zero-argument main method", name)
			continue
		}
		if !slices.Contains(p.EntryPoints, m) {
			p.EntryPoints = append(p.EntryPoints, m)
		}
	}
	if len(p.EntryPoints) == 0 && len(diags) == 0 {
		report(ast.SourceRange{}, "program has no entry points")
	}

	for _, name := range roots.ExtraRoots {
		c, ok := p.FindClass(name)
		if !ok {
			if opts.Strict {
				report(ast.SourceRange{}, "extra root type %s not found", name)
			} else if logger != nil {
				logger.Warn(fmt.Sprintf("ignoring unknown extra root %s", name))
			}
			continue
		}
		if !slices.Contains(p.ExtraRoots, c) {
			p.ExtraRoots = append(p.ExtraRoots, c)
		}
	}

	for _, request := range slices.Sorted(maps.Keys(roots.Answers)) {
		rc, ok := p.FindClass(request)
		if !ok {
			report(ast.SourceRange{}, "rebind request type %s not found", request)
			continue
		}
		for _, answer := range roots.Answers[request] {
			ac, ok := p.FindClass(answer)
			if !ok {
				report(p.Classes[rc].Source, "rebind answer %s for %s not found", answer, request)
				continue
			}
			src := p.Classes[ac].Source
			switch _, hasCtor := p.DefaultConstructor(ac); {
			case !types.IsSubclass(ac, rc):
				report(src, "rebind answer %s is not assignable to %s", answer, request)
			case p.Classes[ac].Is(ast.ClassAbstract):
				report(src, "rebind answer %s is abstract", answer)
			case !hasCtor:
				report(src, "rebind answer %s has no zero-argument constructor", answer)
			case !slices.Contains(p.RebindAnswers, ac):
				p.RebindAnswers = append(p.RebindAnswers, ac)
			}
		}
	}
	if len(diags) > 0 {
		return &domain.CompileError{Diagnostics: diags}
	}

	lowerAssertions(p, opts.EnableAssertions)
	if permutations > 1 {
		optimize.Prune(p, types, nil)
	}
	return nil
}

// lowerAssertions strips assert statements, or turns them into checked runtime calls.
func lowerAssertions(p *ast.Program, enabled bool) {
	for i := range len(p.Stmts) {
		s := p.Stmts[i]
		if s.Kind != ast.StmtAssert {
			continue
		}
		if !enabled {
			p.Stmts[i] = ast.NewStmt(ast.StmtEmpty)
			p.Stmts[i].Pos = s.Pos
			continue
		}
		args := []ast.ExprID{s.X}
		if s.Y != ast.NoExpr {
			args = append(args, s.Y)
		}
		check := ast.NewStmt(ast.StmtExpr)
		check.X = runtimeCall(p, js.RTAssert, ast.Prim(ast.TypeVoid), s.Pos, args...)
		check.Pos = s.Pos
		p.Stmts[i] = check
	}
}
