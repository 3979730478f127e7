package normalize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/typeinfo"
)

// Emulator lowers the remaining reference casts, type tests, integer division, reference
// equality and array allocation onto runtime helpers and output-language operators.
type Emulator struct {
	// Types decides which casts are statically safe.
	Types *typeinfo.Registry
	// CastCheckingDisabled drops reference casts instead of checking them at run time.
	CastCheckingDisabled bool
}

func (Emulator) Name() string { return "emulate" }

func (em Emulator) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	rewriteProgram(p, trail, func(ast.MethodID) ast.Rewriter {
		return ast.Rewriter{Expr: func(x ast.ExprID) ast.ExprID {
			out, changed := em.lower(p, x)
			if changed {
				n++
			}
			return out
		}}
	})
	return n
}

func (em Emulator) lower(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	switch e.Kind {
	case ast.ExprCast:
		return em.lowerCast(p, x)
	case ast.ExprInstanceOf:
		return lowerInstanceOf(p, x)
	case ast.ExprBinary:
		xt, yt := p.Exprs[e.X].Type, p.Exprs[e.Y].Type
		switch {
		case (e.Op == ast.OpDiv || e.Op == ast.OpRem) && e.Type.IsIntegral():
			helper := js.RTIntDiv
			if e.Op == ast.OpRem {
				helper = js.RTIntRem
			}
			return runtimeCall(p, helper, e.Type, e.Pos, e.X, e.Y), true
		case (e.Op == ast.OpEq || e.Op == ast.OpNe) && xt.IsReference() && yt.IsReference():
			p.Exprs[x].Op = ast.OpRefEq
			if e.Op == ast.OpNe {
				p.Exprs[x].Op = ast.OpRefNe
			}
			return x, true
		}
	case ast.ExprNewArray:
		elem := e.Type.Elem()
		return runtimeCall(p, js.RTNewArray, e.Type, e.Pos, e.X, zeroValue(p, elem, e.Pos)), true
	}
	return x, false
}

func (em Emulator) lowerCast(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	to, from := e.Target, p.Exprs[e.X].Type
	if !to.IsReference() {
		return x, false
	}
	switch {
	case from.Kind == ast.TypeNull && from.Dims == 0:
		return e.X, true
	case to.Dims == 0 && to.Class == p.ObjectClass:
		return e.X, true
	case !to.IsArray() && !from.IsArray() && from.Kind == ast.TypeClass && em.Types.IsSubclass(from.Class, to.Class):
		return e.X, true
	case em.CastCheckingDisabled || to.IsArray():
		return e.X, true
	case to.Class == p.StringClass:
		return runtimeCall(p, js.RTCastToString, to, e.Pos, e.X), true
	default:
		return classCheck(p, js.RTDynamicCast, to, to.Class, e.Pos, e.X), true
	}
}

func lowerInstanceOf(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	to := e.Target
	switch {
	case to.IsArray():
		return runtimeCall(p, js.RTIsArray, e.Type, e.Pos, e.X), true
	case to.Class == p.ObjectClass:
		null := literal(p, ast.Prim(ast.TypeNull), ast.Literal{Kind: ast.LitNull}, e.Pos)
		return binary(p, ast.OpNe, e.Type, e.Pos, e.X, null), true
	case to.Class == p.StringClass:
		return runtimeCall(p, js.RTIsString, e.Type, e.Pos, e.X), true
	default:
		return classCheck(p, js.RTInstanceOf, e.Type, to.Class, e.Pos, e.X), true
	}
}

// zeroValue is the default element of a new array of t.
func zeroValue(p *ast.Program, t ast.TypeRef, pos ast.Pos) ast.ExprID {
	switch {
	case t.IsReference():
		return literal(p, ast.Prim(ast.TypeNull), ast.Literal{Kind: ast.LitNull}, pos)
	case t.Kind == ast.TypeBoolean:
		return literal(p, t, ast.Literal{Kind: ast.LitBool}, pos)
	case t.IsLong():
		return literal(p, t, ast.Literal{Kind: ast.LitLong}, pos)
	case t.IsFloating():
		return literal(p, t, ast.Literal{Kind: ast.LitDouble}, pos)
	default:
		return literal(p, t, ast.Literal{Kind: ast.LitInt}, pos)
	}
}
