package codegen

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
)

func (g *generator) exprs(ids []ast.ExprID) []js.Expr {
	out := make([]js.Expr, len(ids))
	for i, x := range ids {
		out[i] = g.expr(x)
	}
	return out
}

func (g *generator) expr(id ast.ExprID) js.Expr {
	e := &g.p.Exprs[id]
	switch e.Kind {
	case ast.ExprLiteral:
		return literal(e.Lit)
	case ast.ExprLocal:
		return &js.NameRef{Name: g.local(e.Local)}
	case ast.ExprField:
		name := g.names.field(g.p, e.Field)
		if e.X == ast.NoExpr || g.p.Fields[e.Field].Is(ast.FieldStatic) {
			return &js.NameRef{Name: name}
		}
		return &js.Dot{X: g.expr(e.X), Prop: name}
	case ast.ExprThis:
		return &js.ThisRef{}
	case ast.ExprBinary:
		return g.binary(e)
	case ast.ExprUnary:
		x := &js.Unary{Op: e.Op.Symbol(), X: g.expr(e.X)}
		if e.Op == ast.OpNeg && e.Type.IsIntegral() {
			return int32Wrap(x)
		}
		return x
	case ast.ExprAssign:
		op := "="
		if e.Op != ast.OpAssign {
			op = e.Op.Symbol() + "="
		}
		return &js.Assign{Op: op, X: g.expr(e.X), Y: g.expr(e.Y)}
	case ast.ExprCall:
		return g.call(e)
	case ast.ExprNew:
		ctor := g.names.method(g.p, e.Method)
		alloc := &js.New{Ctor: &js.NameRef{Name: g.names.class(g.p, e.Class)}}
		return &js.Call{
			Fn:   &js.Dot{X: &js.NameRef{Name: ctor}, Prop: js.PropCall},
			Args: append([]js.Expr{alloc}, g.exprs(e.Args)...),
		}
	case ast.ExprArrayRef:
		return &js.Index{X: g.expr(e.X), I: g.expr(e.Y)}
	case ast.ExprArrayLength:
		return &js.Dot{X: g.expr(e.X), Prop: js.PropLength}
	case ast.ExprCast:
		return g.cast(e)
	case ast.ExprConditional:
		return &js.Cond{C: g.expr(e.X), X: g.expr(e.Y), Y: g.expr(e.Z)}
	case ast.ExprRunAsync:
		return &js.Call{Fn: g.rt(js.RTRunAsync), Args: []js.Expr{&js.NumberLit{Value: float64(e.Index)}}}
	case ast.ExprRuntime:
		args := g.exprs(e.Args)
		if e.Class != ast.NoClass {
			args = append(args, &js.NameRef{Name: g.names.class(g.p, e.Class)})
		}
		return &js.Call{Fn: g.rt(e.Name), Args: args}
	case ast.ExprNewArray:
		panic(invalid("unlowered array allocation"))
	case ast.ExprInstanceOf:
		panic(invalid("unlowered instanceof"))
	case ast.ExprRebind:
		panic(invalid("unresolved rebind request " + e.Name))
	default:
		panic(ast.UnknownKind(e.Kind))
	}
}

func literal(l ast.Literal) js.Expr {
	switch l.Kind {
	case ast.LitNull:
		return &js.NullLit{}
	case ast.LitBool:
		return &js.BoolLit{Value: l.Bool}
	case ast.LitInt, ast.LitChar:
		return &js.NumberLit{Value: float64(l.Int)}
	case ast.LitLong:
		return &js.BigIntLit{Value: l.Int}
	case ast.LitDouble:
		return &js.NumberLit{Value: l.Float}
	case ast.LitString:
		return &js.StringLit{Value: l.Str}
	default:
		panic(invalid("unknown literal kind"))
	}
}

func (g *generator) binary(e *ast.Expr) js.Expr {
	x, y := g.expr(e.X), g.expr(e.Y)
	if e.Op == ast.OpAdd && e.Type.Kind == ast.TypeClass {
		// Characters concatenate as text, not as their code.
		x, y = g.charText(e.X, x), g.charText(e.Y, y)
		return &js.Binary{Op: "+", X: x, Y: y}
	}
	if e.Type.IsIntegral() {
		switch e.Op {
		case ast.OpMul:
			imul := &js.Dot{X: g.hostName("Math"), Prop: js.Fixed("imul", js.NameProperty)}
			return &js.Call{Fn: imul, Args: []js.Expr{x, y}}
		case ast.OpAdd, ast.OpSub, ast.OpUshr:
			return int32Wrap(&js.Binary{Op: e.Op.Symbol(), X: x, Y: y})
		}
	}
	return &js.Binary{Op: e.Op.Symbol(), X: x, Y: y}
}

func (g *generator) charText(id ast.ExprID, x js.Expr) js.Expr {
	t := g.p.Exprs[id].Type
	if t.Dims != 0 || t.Kind != ast.TypeChar {
		return x
	}
	if lit, ok := x.(*js.NumberLit); ok {
		return &js.StringLit{Value: string(rune(int32(lit.Value)))}
	}
	fromCharCode := &js.Dot{X: g.hostName("String"), Prop: js.Fixed("fromCharCode", js.NameProperty)}
	return &js.Call{Fn: fromCharCode, Args: []js.Expr{x}}
}

func (g *generator) call(e *ast.Expr) js.Expr {
	args := g.exprs(e.Args)
	switch e.Dispatch {
	case ast.DispatchStatic:
		return &js.Call{Fn: &js.NameRef{Name: g.names.method(g.p, e.Method)}, Args: args}
	case ast.DispatchDirect:
		fn := &js.Dot{X: &js.NameRef{Name: g.names.method(g.p, e.Method)}, Prop: js.PropCall}
		return &js.Call{Fn: fn, Args: append([]js.Expr{g.expr(e.X)}, args...)}
	default:
		slot := g.names.slot(g.p, e.Method)
		g.virtual[slot] = true
		return &js.Call{Fn: &js.Dot{X: g.expr(e.X), Prop: slot}, Args: args}
	}
}

// cast converts between primitive representations. Reference casts were lowered to checks
// or removed by normalization, so any that remain are unchecked.
func (g *generator) cast(e *ast.Expr) js.Expr {
	x := g.expr(e.X)
	from, to := g.p.Exprs[e.X].Type, e.Target
	if !to.IsPrimitive() || !from.IsPrimitive() {
		return x
	}
	switch to.Kind {
	case ast.TypeInt:
		if from.IsFloating() {
			return &js.Binary{Op: "|", X: x, Y: &js.NumberLit{}}
		}
	case ast.TypeShort:
		return signExtend(x, 16)
	case ast.TypeByte:
		return signExtend(x, 24)
	case ast.TypeChar:
		return &js.Binary{Op: "&", X: x, Y: &js.NumberLit{Value: 0xFFFF}}
	case ast.TypeFloat:
		if from.IsFloating() || from.IsIntegral() {
			return &js.Call{
				Fn:   &js.Dot{X: g.hostName("Math"), Prop: js.Fixed("fround", js.NameProperty)},
				Args: []js.Expr{x},
			}
		}
	}
	return x
}

func int32Wrap(x js.Expr) js.Expr {
	return &js.Binary{Op: "|", X: x, Y: &js.NumberLit{}}
}

func signExtend(x js.Expr, bits float64) js.Expr {
	shift := &js.NumberLit{Value: bits}
	return &js.Binary{Op: ">>", X: &js.Binary{Op: "<<", X: x, Y: shift}, Y: shift}
}
