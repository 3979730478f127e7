package normalize

import (
	"maps"
	"slices"

	"go.trai.ch/permc/internal/compiler/ast"
)

// CompoundNormalizer expands x op= y into x = x op y, so the expanded operator gets the same
// emulation as any other binary expression. Narrowing back to the target type becomes an
// explicit cast. A target whose receiver or index has side effects first stores them in
// temporaries, giving (t1 = a)[t2 = i] = t1[t2] op y.
type CompoundNormalizer struct{}

func (CompoundNormalizer) Name() string { return "compound-normalize" }

func (CompoundNormalizer) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	temps := make(map[ast.MethodID][]ast.LocalID)
	rewriteProgram(p, trail, func(owner ast.MethodID) ast.Rewriter {
		return ast.Rewriter{Expr: func(x ast.ExprID) ast.ExprID {
			e := p.Exprs[x]
			if e.Kind != ast.ExprAssign || e.Op == ast.OpAssign {
				return x
			}
			var read ast.ExprID
			switch {
			case pureTarget(p, e.X):
				read = p.CopyExpr(e.X, nil)
			case owner != ast.NoMethod && hoistable(p, e.X):
				var locals []ast.LocalID
				read, locals = hoistTarget(p, owner, e.X)
				temps[owner] = append(temps[owner], locals...)
			default:
				// Field initializers have no body to declare temporaries in.
				return x
			}

			target := p.Exprs[e.X].Type
			t := target
			switch {
			case e.Op == ast.OpAdd && !target.IsPrimitive():
			case e.Op == ast.OpShl || e.Op == ast.OpShr || e.Op == ast.OpUshr:
			default:
				t = ast.Promote(target, p.Exprs[e.Y].Type)
			}
			value := binary(p, e.Op, t, e.Pos, read, e.Y)
			if lowered, ok := lowerLong(p, value); ok {
				value = lowered
			}
			if !t.Same(target) && target.IsPrimitive() {
				cast := ast.NewExpr(ast.ExprCast, target)
				cast.Target, cast.X, cast.Pos = target, value, e.Pos
				value = p.AddExpr(cast)
				if lowered, ok := lowerLong(p, value); ok {
					value = lowered
				}
			}
			p.Exprs[x].Op, p.Exprs[x].Y = ast.OpAssign, value
			n++
			return x
		}}
	})
	for _, m := range slices.Sorted(maps.Keys(temps)) {
		declareTemps(p, m, temps[m])
	}
	return n
}

// pureTarget reports whether the assignment target x can be evaluated twice.
func pureTarget(p *ast.Program, x ast.ExprID) bool {
	e := &p.Exprs[x]
	switch e.Kind {
	case ast.ExprLocal:
		return true
	case ast.ExprField:
		return !p.HasSideEffects(e.X)
	case ast.ExprArrayRef:
		return !p.HasSideEffects(e.X) && !p.HasSideEffects(e.Y)
	default:
		return false
	}
}

func hoistable(p *ast.Program, x ast.ExprID) bool {
	e := &p.Exprs[x]
	return e.Kind == ast.ExprArrayRef || (e.Kind == ast.ExprField && e.X != ast.NoExpr)
}

// hoistTarget rewrites the receiver and index of target into assignments to fresh locals of m
// and returns a second read of the same location through those locals. JavaScript evaluates
// the target of an assignment before its value, so the stores run first and exactly once.
func hoistTarget(p *ast.Program, m ast.MethodID, target ast.ExprID) (ast.ExprID, []ast.LocalID) {
	pos := p.Exprs[target].Pos
	var locals []ast.LocalID
	store := func(sub ast.ExprID) (ast.ExprID, ast.ExprID) {
		t := p.Exprs[sub].Type
		l := p.AddLocal(m, ast.Local{Name: "$t", Type: t})
		locals = append(locals, l)
		set := ast.NewExpr(ast.ExprAssign, t)
		set.Op, set.X, set.Y, set.Pos = ast.OpAssign, localRef(p, l, pos), sub, pos
		return p.AddExpr(set), localRef(p, l, pos)
	}

	setX, getX := store(p.Exprs[target].X)
	p.Exprs[target].X = setX
	read := p.Exprs[target]
	read.X = getX
	if read.Kind == ast.ExprArrayRef {
		setY, getY := store(p.Exprs[target].Y)
		p.Exprs[target].Y = setY
		read.Y = getY
	}
	return p.AddExpr(read), locals
}

// declareTemps declares locals at the top of m's body.
func declareTemps(p *ast.Program, m ast.MethodID, locals []ast.LocalID) {
	body := p.Methods[m].Body
	pos := p.Stmts[body].Pos
	decls := make([]ast.StmtID, 0, len(locals)+1)
	for _, l := range locals {
		s := ast.NewStmt(ast.StmtLocal)
		s.Local = l
		decls = append(decls, stmt(p, s, pos))
	}
	if p.Stmts[body].Kind == ast.StmtBlock {
		p.Stmts[body].Body = append(decls, p.Stmts[body].Body...)
		return
	}
	block := ast.NewStmt(ast.StmtBlock)
	block.Body = append(decls, body)
	p.Methods[m].Body = stmt(p, block, pos)
}
