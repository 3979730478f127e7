package normalize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
)

// LongEmulation maps 64-bit integer arithmetic onto big integers. Results that can leave the
// 64-bit range are wrapped, division and remainder go through checked helpers, and every
// conversion between long and the other numeric types becomes an explicit helper call.
type LongEmulation struct{}

func (LongEmulation) Name() string { return "long-emulation" }

func (LongEmulation) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	rewriteProgram(p, trail, func(ast.MethodID) ast.Rewriter {
		return ast.Rewriter{
			Expr: func(x ast.ExprID) ast.ExprID {
				out, changed := lowerLong(p, x)
				if changed {
					n++
				}
				return out
			},
			Stmt: func(s ast.StmtID) ast.StmtID {
				st := &p.Stmts[s]
				if st.Kind == ast.StmtLocal && st.X != ast.NoExpr && p.Locals[st.Local].Type.IsLong() {
					x, changed := toLong(p, st.X)
					p.Stmts[s].X = x
					if changed {
						n++
					}
				}
				return s
			},
		}
	})
	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Dead || f.Init == ast.NoExpr || !f.Type.IsLong() {
			continue
		}
		x, changed := toLong(p, f.Init)
		p.Fields[i].Init = x
		if changed {
			n++
		}
	}
	return n
}

// lowerLong rewrites one expression whose operands are already lowered.
func lowerLong(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	switch e.Kind {
	case ast.ExprBinary:
		return lowerLongBinary(p, x)
	case ast.ExprUnary:
		if e.Type.IsLong() && e.Op == ast.OpNeg {
			return runtimeCall(p, js.RTLongWrap, e.Type, e.Pos, x), true
		}
	case ast.ExprAssign:
		if p.Exprs[e.X].Type.IsLong() {
			y, changed := toLong(p, e.Y)
			p.Exprs[x].Y = y
			return x, changed
		}
	case ast.ExprCast:
		return lowerLongCast(p, x)
	}
	return x, false
}

func lowerLongBinary(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	xt, yt := p.Exprs[e.X].Type, p.Exprs[e.Y].Type
	if !xt.IsLong() && !yt.IsLong() {
		return x, false
	}
	if e.Op == ast.OpAdd && !e.Type.IsPrimitive() {
		// String concatenation renders big integers correctly.
		return x, false
	}

	switch e.Op {
	case ast.OpShl, ast.OpShr, ast.OpUshr:
		if !xt.IsLong() {
			p.Exprs[x].Y = runtimeCall(p, js.RTLongToInt, ast.Prim(ast.TypeInt), e.Pos, e.Y)
			return x, true
		}
		count, _ := toLong(p, e.Y)
		masked := binary(p, ast.OpBitAnd, ast.Prim(ast.TypeLong), e.Pos, count,
			literal(p, ast.Prim(ast.TypeLong), ast.Literal{Kind: ast.LitLong, Int: 63}, e.Pos))
		p.Exprs[x].Y = masked
		switch e.Op {
		case ast.OpShl:
			return runtimeCall(p, js.RTLongWrap, e.Type, e.Pos, x), true
		case ast.OpUshr:
			return runtimeCall(p, js.RTLongUshr, e.Type, e.Pos, p.Exprs[x].X, masked), true
		}
		return x, true
	}

	lx, _ := toLong(p, e.X)
	ly, _ := toLong(p, e.Y)
	p.Exprs[x].X, p.Exprs[x].Y = lx, ly
	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul:
		return runtimeCall(p, js.RTLongWrap, e.Type, e.Pos, x), true
	case ast.OpDiv:
		return runtimeCall(p, js.RTLongDiv, e.Type, e.Pos, lx, ly), true
	case ast.OpRem:
		return runtimeCall(p, js.RTLongRem, e.Type, e.Pos, lx, ly), true
	default:
		return x, true
	}
}

func lowerLongCast(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := p.Exprs[x]
	from, to := p.Exprs[e.X].Type, e.Target
	switch {
	case from.IsLong() && to.IsLong():
		return e.X, true
	case to.IsLong() && from.IsFloating():
		return runtimeCall(p, js.RTLongFromFloat, to, e.Pos, e.X), true
	case to.IsLong():
		out, _ := toLong(p, e.X)
		return out, true
	case from.IsLong() && to.IsFloating():
		return runtimeCall(p, js.RTLongToDouble, to, e.Pos, e.X), true
	case from.IsLong() && to.IsIntegral():
		narrowed := runtimeCall(p, js.RTLongToInt, ast.Prim(ast.TypeInt), e.Pos, e.X)
		if to.Kind == ast.TypeInt {
			return narrowed, true
		}
		p.Exprs[x].X = narrowed
		return x, true
	}
	return x, false
}

// toLong converts an int-typed operand to long. Integer literals are retyped in place.
func toLong(p *ast.Program, x ast.ExprID) (ast.ExprID, bool) {
	e := &p.Exprs[x]
	if e.Type.IsLong() || !e.Type.IsIntegral() {
		return x, false
	}
	if e.Kind == ast.ExprLiteral {
		e.Type = ast.Prim(ast.TypeLong)
		e.Lit.Kind = ast.LitLong
		return x, true
	}
	return runtimeCall(p, js.RTLongFromInt, ast.Prim(ast.TypeLong), e.Pos, x), true
}
