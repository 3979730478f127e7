package optimize

import (
	"math"

	"go.trai.ch/permc/internal/compiler/ast"
)

// DeadCodeElimination folds constant expressions, removes branches and loops whose condition
// is a literal, drops side-effect-free expression statements and removes statements that can
// never run because an earlier statement of the same block always completes abruptly.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dead-code" }

func (DeadCodeElimination) Run(p *ast.Program, trail *ast.Provenance) int {
	d := &dce{p: p}
	r := ast.Rewriter{Expr: d.expr, Stmt: d.stmt}
	for _, m := range liveMethods(p) {
		trail.EnterMethod(p, m)
		p.RewriteMethod(m, r)
		trail.Leave()
	}
	for i := range p.Fields {
		if !p.Fields[i].Dead && p.Fields[i].Init != ast.NoExpr {
			p.RewriteField(ast.FieldID(i), ast.Rewriter{Expr: d.expr})
		}
	}
	return d.changes
}

type dce struct {
	p       *ast.Program
	changes int
}

func (d *dce) lit(id ast.ExprID) (ast.Literal, bool) {
	if id == ast.NoExpr {
		return ast.Literal{}, false
	}
	e := &d.p.Exprs[id]
	if e.Kind != ast.ExprLiteral {
		return ast.Literal{}, false
	}
	return e.Lit, true
}

func (d *dce) replaceWith(id, with ast.ExprID) ast.ExprID {
	t := d.p.Exprs[id].Type
	d.p.Exprs[id] = d.p.Exprs[with]
	if t.Kind != ast.TypeNull {
		d.p.Exprs[id].Type = t
	}
	d.changes++
	return id
}

func (d *dce) setLiteral(id ast.ExprID, t ast.TypeRef, l ast.Literal) ast.ExprID {
	e := ast.NewExpr(ast.ExprLiteral, t)
	e.Lit = l
	e.Pos = d.p.Exprs[id].Pos
	d.p.Exprs[id] = e
	d.changes++
	return id
}

func (d *dce) expr(id ast.ExprID) ast.ExprID {
	e := d.p.Exprs[id]
	switch e.Kind {
	case ast.ExprBinary:
		return d.binary(id, e)
	case ast.ExprUnary:
		x, ok := d.lit(e.X)
		if !ok {
			return id
		}
		switch {
		case e.Op == ast.OpNot && x.Kind == ast.LitBool:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitBool, Bool: !x.Bool})
		case e.Op == ast.OpNeg && x.Kind == ast.LitInt && e.Type.Kind == ast.TypeInt:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitInt, Int: int64(-int32(x.Int))})
		case e.Op == ast.OpBitNot && x.Kind == ast.LitInt && e.Type.Kind == ast.TypeInt:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitInt, Int: int64(^int32(x.Int))})
		}
	case ast.ExprConditional:
		if c, ok := d.lit(e.X); ok && c.Kind == ast.LitBool {
			if c.Bool {
				return d.replaceWith(id, e.Y)
			}
			return d.replaceWith(id, e.Z)
		}
	}
	return id
}

func (d *dce) binary(id ast.ExprID, e ast.Expr) ast.ExprID {
	x, xok := d.lit(e.X)
	y, yok := d.lit(e.Y)

	if xok && x.Kind == ast.LitBool {
		switch {
		case e.Op == ast.OpAnd && x.Bool, e.Op == ast.OpOr && !x.Bool:
			return d.replaceWith(id, e.Y)
		case e.Op == ast.OpAnd || e.Op == ast.OpOr:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitBool, Bool: x.Bool})
		}
	}
	if !xok || !yok {
		return id
	}

	switch {
	case x.Kind == ast.LitBool && y.Kind == ast.LitBool:
		switch e.Op {
		case ast.OpEq:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitBool, Bool: x.Bool == y.Bool})
		case ast.OpNe:
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitBool, Bool: x.Bool != y.Bool})
		}
	case x.Kind == ast.LitString && y.Kind == ast.LitString && e.Op == ast.OpAdd:
		return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitString, Str: x.Str + y.Str})
	case isIntLit(x) && isIntLit(y):
		if v, ok := foldInt(e.Op, int32(x.Int), int32(y.Int)); ok && e.Type.Kind == ast.TypeInt {
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitInt, Int: int64(v)})
		}
		if b, ok := compareInt(e.Op, int32(x.Int), int32(y.Int)); ok {
			return d.setLiteral(id, e.Type, ast.Literal{Kind: ast.LitBool, Bool: b})
		}
	}
	return id
}

func isIntLit(l ast.Literal) bool {
	return l.Kind == ast.LitInt || l.Kind == ast.LitChar
}

// foldInt evaluates a 32-bit integer operation with two's-complement wrapping.
func foldInt(op ast.Op, a, b int32) (int32, bool) {
	switch op {
	case ast.OpAdd:
		return a + b, true
	case ast.OpSub:
		return a - b, true
	case ast.OpMul:
		return a * b, true
	case ast.OpDiv:
		if b == 0 {
			return 0, false
		}
		if a == math.MinInt32 && b == -1 {
			return a, true
		}
		return a / b, true
	case ast.OpRem:
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return 0, true
		}
		return a % b, true
	case ast.OpBitAnd:
		return a & b, true
	case ast.OpBitOr:
		return a | b, true
	case ast.OpBitXor:
		return a ^ b, true
	case ast.OpShl:
		return a << (uint32(b) & 31), true
	case ast.OpShr:
		return a >> (uint32(b) & 31), true
	case ast.OpUshr:
		return int32(uint32(a) >> (uint32(b) & 31)), true
	default:
		return 0, false
	}
}

func compareInt(op ast.Op, a, b int32) (bool, bool) {
	switch op {
	case ast.OpEq:
		return a == b, true
	case ast.OpNe:
		return a != b, true
	case ast.OpLt:
		return a < b, true
	case ast.OpLe:
		return a <= b, true
	case ast.OpGt:
		return a > b, true
	case ast.OpGe:
		return a >= b, true
	default:
		return false, false
	}
}

func (d *dce) stmt(id ast.StmtID) ast.StmtID {
	p := d.p
	s := p.Stmts[id]
	switch s.Kind {
	case ast.StmtIf:
		c, ok := d.lit(s.X)
		if !ok || c.Kind != ast.LitBool {
			return id
		}
		branch := s.Else
		if c.Bool {
			branch = s.Then
		}
		if branch == ast.NoStmt {
			d.empty(id)
		} else {
			p.Stmts[id] = p.Stmts[branch]
			d.changes++
		}
	case ast.StmtWhile:
		if c, ok := d.lit(s.X); ok && c.Kind == ast.LitBool && !c.Bool {
			d.empty(id)
		}
	case ast.StmtExpr:
		if !p.HasSideEffects(s.X) {
			d.empty(id)
		}
	case ast.StmtBlock:
		d.block(id)
	}
	return id
}

func (d *dce) empty(id ast.StmtID) {
	e := ast.NewStmt(ast.StmtEmpty)
	e.Pos = d.p.Stmts[id].Pos
	d.p.Stmts[id] = e
	d.changes++
}

// block removes empty statements, splices nested blocks into their parent and truncates the
// block after its first abrupt completion.
func (d *dce) block(id ast.StmtID) {
	p := d.p
	body := p.Stmts[id].Body
	out := make([]ast.StmtID, 0, len(body))
	changed := false
	for _, c := range body {
		switch p.Stmts[c].Kind {
		case ast.StmtEmpty:
			changed = true
			continue
		case ast.StmtBlock:
			out = append(out, p.Stmts[c].Body...)
			changed = true
			continue
		}
		out = append(out, c)
	}
	for i, c := range out {
		if abrupt(p.Stmts[c].Kind) && i < len(out)-1 {
			out = out[:i+1]
			changed = true
			break
		}
	}
	if changed {
		p.Stmts[id].Body = out
		d.changes++
	}
}

func abrupt(k ast.StmtKind) bool {
	switch k {
	case ast.StmtReturn, ast.StmtThrow, ast.StmtBreak, ast.StmtContinue:
		return true
	default:
		return false
	}
}
