package optimize

import "go.trai.ch/permc/internal/compiler/ast"

// maxInlineSize bounds the number of expression nodes an inlined body may have.
const maxInlineSize = 12

// Inliner replaces static and direct calls of small single-expression methods with a copy of
// the returned expression. Arguments must be free of side effects, and each parameter may be
// used at most once, so evaluation order and count are unchanged.
type Inliner struct{}

func (Inliner) Name() string { return "inline" }

func (Inliner) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	forEachCall(p, trail, func(caller ast.MethodID, x ast.ExprID) {
		e := p.Exprs[x]
		if e.Dispatch == ast.DispatchVirtual || e.Method == caller {
			return
		}
		ret, ok := inlineBody(p, e.Method)
		if !ok {
			return
		}
		if e.Dispatch == ast.DispatchDirect && (e.X == ast.NoExpr || p.HasSideEffects(e.X)) {
			return
		}
		for _, a := range e.Args {
			if p.HasSideEffects(a) {
				return
			}
		}
		callee := &p.Methods[e.Method]
		params := make(map[ast.LocalID]ast.ExprID, len(callee.Params))
		for i, l := range callee.Params {
			if i < len(e.Args) {
				params[l] = e.Args[i]
			}
		}
		copied := p.CopyExpr(ret, func(id ast.ExprID) (ast.ExprID, bool) {
			switch src := p.Exprs[id]; src.Kind {
			case ast.ExprLocal:
				if arg, ok := params[src.Local]; ok {
					return p.CopyExpr(arg, nil), true
				}
			case ast.ExprThis:
				return p.CopyExpr(e.X, nil), true
			}
			return ast.NoExpr, false
		})
		t := e.Type
		p.Exprs[x] = p.Exprs[copied]
		p.Exprs[x].Type = t
		n++
	})
	return n
}

// inlineBody returns the returned expression of m when m qualifies for inlining.
func inlineBody(p *ast.Program, m ast.MethodID) (ast.ExprID, bool) {
	meth := &p.Methods[m]
	if meth.Dead || meth.Body == ast.NoStmt || meth.Is(ast.MethodNative|ast.MethodConstructor|ast.MethodAbstract) {
		return ast.NoExpr, false
	}
	body := &p.Stmts[meth.Body]
	if body.Kind != ast.StmtBlock || len(body.Body) != 1 {
		return ast.NoExpr, false
	}
	ret := &p.Stmts[body.Body[0]]
	if ret.Kind != ast.StmtReturn || ret.X == ast.NoExpr || p.ExprSize(ret.X) > maxInlineSize {
		return ast.NoExpr, false
	}
	thisUses := 0
	for x := range p.ExprsOf(ret.X) {
		switch e := &p.Exprs[x]; e.Kind {
		case ast.ExprLocal:
			if !p.Locals[e.Local].Is(ast.LocalParam) || p.Locals[e.Local].Method != m {
				return ast.NoExpr, false
			}
		case ast.ExprThis:
			thisUses++
		case ast.ExprRebind, ast.ExprRunAsync, ast.ExprAssign:
			return ast.NoExpr, false
		}
	}
	if thisUses > 1 || (thisUses > 0 && meth.Is(ast.MethodStatic)) {
		return ast.NoExpr, false
	}
	for _, l := range meth.Params {
		if p.CountLocalRefs(ret.X, l) > 1 {
			return ast.NoExpr, false
		}
	}
	return ret.X, true
}
