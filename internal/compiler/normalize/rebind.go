package normalize

import (
	"fmt"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
)

// ResolveRebinds replaces every rebind request reachable from a live body with an allocation
// of the class answer chooses for it. The expression keeps the requested static type. After
// resolution the answers no longer need to be held live.
func ResolveRebinds(p *ast.Program, answer func(request string) string, trail *ast.Provenance) error {
	var diags []domain.Diagnostic
	for _, m := range bodies(p) {
		trail.EnterMethod(p, m)
		var requests []ast.ExprID
		for x := range p.MethodExprs(m) {
			if p.Exprs[x].Kind == ast.ExprRebind {
				requests = append(requests, x)
			}
		}
		for _, x := range requests {
			if d, ok := resolveRebind(p, x, answer); !ok {
				diags = append(diags, d)
			}
		}
		trail.Leave()
	}
	for i := range p.Fields {
		if p.Fields[i].Dead || p.Fields[i].Init == ast.NoExpr {
			continue
		}
		var requests []ast.ExprID
		for x := range p.ExprsOf(p.Fields[i].Init) {
			if p.Exprs[x].Kind == ast.ExprRebind {
				requests = append(requests, x)
			}
		}
		for _, x := range requests {
			if d, ok := resolveRebind(p, x, answer); !ok {
				diags = append(diags, d)
			}
		}
	}
	if len(diags) > 0 {
		return &domain.CompileError{Diagnostics: diags}
	}
	p.RebindAnswers = nil
	return nil
}

func resolveRebind(p *ast.Program, x ast.ExprID, answer func(string) string) (domain.Diagnostic, bool) {
	e := &p.Exprs[x]
	fail := func(format string, args ...any) (domain.Diagnostic, bool) {
		return domain.Diagnostic{File: e.Pos.File, Line: e.Pos.Line, Message: fmt.Sprintf(format, args...)}, false
	}
	name := answer(e.Name)
	c, ok := p.FindClass(name)
	if !ok || p.Classes[c].Dead {
		return fail("rebind answer %s for %s is not part of the program", name, e.Name)
	}
	ctor, ok := p.DefaultConstructor(c)
	if !ok || p.Methods[ctor].Dead {
		return fail("rebind answer %s has no zero-argument constructor", name)
	}
	e.Kind, e.Class, e.Method, e.Args = ast.ExprNew, c, ctor, nil
	return domain.Diagnostic{}, true
}
