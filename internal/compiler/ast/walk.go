package ast

import (
	"iter"
	"slices"
)

// Rewriter replaces nodes bottom-up. A nil callback keeps the node.
type Rewriter struct {
	Expr func(ExprID) ExprID
	Stmt func(StmtID) StmtID
}

// RewriteExpr rewrites the operands of id, then id itself.
// Callbacks may append to the arena; the walk never holds pointers into it across calls.
func (p *Program) RewriteExpr(id ExprID, r Rewriter) ExprID {
	if id == NoExpr {
		return NoExpr
	}
	e := p.Exprs[id]
	switch e.Kind {
	case ExprLiteral, ExprLocal, ExprThis, ExprRebind, ExprRunAsync:
	case ExprField, ExprUnary, ExprArrayLength, ExprCast, ExprInstanceOf, ExprNewArray:
		x := p.RewriteExpr(e.X, r)
		p.Exprs[id].X = x
	case ExprBinary, ExprAssign, ExprArrayRef:
		x := p.RewriteExpr(e.X, r)
		y := p.RewriteExpr(e.Y, r)
		p.Exprs[id].X, p.Exprs[id].Y = x, y
	case ExprConditional:
		x := p.RewriteExpr(e.X, r)
		y := p.RewriteExpr(e.Y, r)
		z := p.RewriteExpr(e.Z, r)
		p.Exprs[id].X, p.Exprs[id].Y, p.Exprs[id].Z = x, y, z
	case ExprCall:
		x := p.RewriteExpr(e.X, r)
		args := p.rewriteArgs(e.Args, r)
		p.Exprs[id].X, p.Exprs[id].Args = x, args
	case ExprNew, ExprRuntime:
		args := p.rewriteArgs(e.Args, r)
		p.Exprs[id].Args = args
	default:
		panic(UnknownKind(e.Kind))
	}
	if r.Expr != nil {
		return r.Expr(id)
	}
	return id
}

func (p *Program) rewriteArgs(args []ExprID, r Rewriter) []ExprID {
	if len(args) == 0 {
		return args
	}
	out := slices.Clone(args)
	for i := range out {
		out[i] = p.RewriteExpr(out[i], r)
	}
	return out
}

// RewriteStmt rewrites every expression and nested statement of id, then id itself.
func (p *Program) RewriteStmt(id StmtID, r Rewriter) StmtID {
	if id == NoStmt {
		return NoStmt
	}
	s := p.Stmts[id]
	switch s.Kind {
	case StmtBlock:
		body := slices.Clone(s.Body)
		for i := range body {
			body[i] = p.RewriteStmt(body[i], r)
		}
		p.Stmts[id].Body = body
	case StmtExpr, StmtReturn, StmtThrow, StmtLocal:
		x := p.RewriteExpr(s.X, r)
		p.Stmts[id].X = x
	case StmtIf:
		x := p.RewriteExpr(s.X, r)
		then := p.RewriteStmt(s.Then, r)
		els := p.RewriteStmt(s.Else, r)
		p.Stmts[id].X, p.Stmts[id].Then, p.Stmts[id].Else = x, then, els
	case StmtWhile:
		x := p.RewriteExpr(s.X, r)
		body := p.RewriteStmt(s.Then, r)
		p.Stmts[id].X, p.Stmts[id].Then = x, body
	case StmtTry:
		then := p.RewriteStmt(s.Then, r)
		catches := slices.Clone(s.Catches)
		for i := range catches {
			catches[i].Body = p.RewriteStmt(catches[i].Body, r)
		}
		fin := p.RewriteStmt(s.Finally, r)
		p.Stmts[id].Then, p.Stmts[id].Catches, p.Stmts[id].Finally = then, catches, fin
	case StmtAssert:
		x := p.RewriteExpr(s.X, r)
		y := p.RewriteExpr(s.Y, r)
		p.Stmts[id].X, p.Stmts[id].Y = x, y
	case StmtBreak, StmtContinue, StmtEmpty:
	default:
		panic(UnknownKind(s.Kind))
	}
	if r.Stmt != nil {
		return r.Stmt(id)
	}
	return id
}

// RewriteMethod rewrites the body of m.
func (p *Program) RewriteMethod(m MethodID, r Rewriter) {
	body := p.RewriteStmt(p.Methods[m].Body, r)
	p.Methods[m].Body = body
}

// RewriteField rewrites the initializer of f.
func (p *Program) RewriteField(f FieldID, r Rewriter) {
	init := p.RewriteExpr(p.Fields[f].Init, r)
	p.Fields[f].Init = init
}

// Operands returns the direct expression children of id in evaluation order.
func (p *Program) Operands(id ExprID) []ExprID {
	e := &p.Exprs[id]
	var out []ExprID
	switch e.Kind {
	case ExprLiteral, ExprLocal, ExprThis, ExprRebind, ExprRunAsync:
	case ExprField, ExprUnary, ExprArrayLength, ExprCast, ExprInstanceOf, ExprNewArray:
		out = append(out, e.X)
	case ExprBinary, ExprAssign, ExprArrayRef:
		out = append(out, e.X, e.Y)
	case ExprConditional:
		out = append(out, e.X, e.Y, e.Z)
	case ExprCall:
		out = append(out, e.X)
		out = append(out, e.Args...)
	case ExprNew, ExprRuntime:
		out = append(out, e.Args...)
	default:
		panic(UnknownKind(e.Kind))
	}
	return slices.DeleteFunc(out, func(x ExprID) bool { return x == NoExpr })
}

// ExprsOf yields every expression reachable from the expression root in pre-order.
func (p *Program) ExprsOf(root ExprID) iter.Seq[ExprID] {
	return func(yield func(ExprID) bool) {
		p.walkExpr(root, yield)
	}
}

func (p *Program) walkExpr(id ExprID, yield func(ExprID) bool) bool {
	if id == NoExpr {
		return true
	}
	if !yield(id) {
		return false
	}
	for _, c := range p.Operands(id) {
		if !p.walkExpr(c, yield) {
			return false
		}
	}
	return true
}

// StmtsOf yields every statement reachable from root in pre-order.
func (p *Program) StmtsOf(root StmtID) iter.Seq[StmtID] {
	return func(yield func(StmtID) bool) {
		p.walkStmt(root, yield, nil)
	}
}

// ExprsIn yields every expression inside the statement tree rooted at root.
func (p *Program) ExprsIn(root StmtID) iter.Seq[ExprID] {
	return func(yield func(ExprID) bool) {
		p.walkStmt(root, func(StmtID) bool { return true }, yield)
	}
}

func (p *Program) walkStmt(id StmtID, ys func(StmtID) bool, ye func(ExprID) bool) bool {
	if id == NoStmt {
		return true
	}
	if !ys(id) {
		return false
	}
	s := &p.Stmts[id]
	exprs := func(ids ...ExprID) bool {
		if ye == nil {
			return true
		}
		for _, x := range ids {
			if !p.walkExpr(x, ye) {
				return false
			}
		}
		return true
	}
	switch s.Kind {
	case StmtBlock:
		for _, c := range s.Body {
			if !p.walkStmt(c, ys, ye) {
				return false
			}
		}
	case StmtExpr, StmtReturn, StmtThrow, StmtLocal:
		return exprs(s.X)
	case StmtIf:
		return exprs(s.X) && p.walkStmt(s.Then, ys, ye) && p.walkStmt(s.Else, ys, ye)
	case StmtWhile:
		return exprs(s.X) && p.walkStmt(s.Then, ys, ye)
	case StmtTry:
		if !p.walkStmt(s.Then, ys, ye) {
			return false
		}
		for _, c := range s.Catches {
			if !p.walkStmt(c.Body, ys, ye) {
				return false
			}
		}
		return p.walkStmt(s.Finally, ys, ye)
	case StmtAssert:
		return exprs(s.X, s.Y)
	case StmtBreak, StmtContinue, StmtEmpty:
	default:
		panic(UnknownKind(s.Kind))
	}
	return true
}

// MethodExprs yields every expression in the body of m.
func (p *Program) MethodExprs(m MethodID) iter.Seq[ExprID] {
	return p.ExprsIn(p.Methods[m].Body)
}

// CopyExpr deep-copies the subtree rooted at id. subst is consulted first at every node and
// may return a replacement for it.
func (p *Program) CopyExpr(id ExprID, subst func(ExprID) (ExprID, bool)) ExprID {
	if id == NoExpr {
		return NoExpr
	}
	if subst != nil {
		if r, ok := subst(id); ok {
			return r
		}
	}
	e := p.Exprs[id]
	switch e.Kind {
	case ExprLiteral, ExprLocal, ExprThis, ExprRebind, ExprRunAsync:
	case ExprField, ExprUnary, ExprArrayLength, ExprCast, ExprInstanceOf, ExprNewArray:
		e.X = p.CopyExpr(e.X, subst)
	case ExprBinary, ExprAssign, ExprArrayRef:
		e.X = p.CopyExpr(e.X, subst)
		e.Y = p.CopyExpr(e.Y, subst)
	case ExprConditional:
		e.X = p.CopyExpr(e.X, subst)
		e.Y = p.CopyExpr(e.Y, subst)
		e.Z = p.CopyExpr(e.Z, subst)
	case ExprCall:
		e.X = p.CopyExpr(e.X, subst)
		e.Args = p.copyArgs(e.Args, subst)
	case ExprNew, ExprRuntime:
		e.Args = p.copyArgs(e.Args, subst)
	default:
		panic(UnknownKind(e.Kind))
	}
	return p.AddExpr(e)
}

func (p *Program) copyArgs(args []ExprID, subst func(ExprID) (ExprID, bool)) []ExprID {
	if len(args) == 0 {
		return nil
	}
	out := make([]ExprID, len(args))
	for i, a := range args {
		out[i] = p.CopyExpr(a, subst)
	}
	return out
}

// HasSideEffects reports whether evaluating id may do anything other than produce a value.
// Reading fields, array elements or locals counts as pure; casts count as effects because
// a failing check throws.
func (p *Program) HasSideEffects(id ExprID) bool {
	if id == NoExpr {
		return false
	}
	switch p.Exprs[id].Kind {
	case ExprLiteral, ExprLocal, ExprThis:
		return false
	case ExprField, ExprBinary, ExprUnary, ExprArrayRef, ExprArrayLength, ExprInstanceOf, ExprConditional:
		for _, c := range p.Operands(id) {
			if p.HasSideEffects(c) {
				return true
			}
		}
		return false
	case ExprAssign, ExprCall, ExprNew, ExprNewArray, ExprCast, ExprRebind, ExprRunAsync, ExprRuntime:
		return true
	default:
		panic(UnknownKind(p.Exprs[id].Kind))
	}
}

// CountLocalRefs counts reads and writes of l in the subtree rooted at id.
func (p *Program) CountLocalRefs(id ExprID, l LocalID) int {
	n := 0
	for x := range p.ExprsOf(id) {
		if p.Exprs[x].Kind == ExprLocal && p.Exprs[x].Local == l {
			n++
		}
	}
	return n
}

// ExprSize counts the nodes of the subtree rooted at id.
func (p *Program) ExprSize(id ExprID) int {
	n := 0
	for range p.ExprsOf(id) {
		n++
	}
	return n
}
