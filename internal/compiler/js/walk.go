package js

// Walk visits n and its descendants in pre-order. Returning false from visit skips the
// children of that node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch n := n.(type) {
	case *NameRef, *NumberLit, *BigIntLit, *StringLit, *BoolLit, *NullLit, *ThisRef,
		*Break, *Continue, *Empty:
	case *Binary:
		Walk(n.X, visit)
		Walk(n.Y, visit)
	case *Unary:
		Walk(n.X, visit)
	case *Assign:
		Walk(n.X, visit)
		Walk(n.Y, visit)
	case *Call:
		Walk(n.Fn, visit)
		walkExprs(n.Args, visit)
	case *New:
		Walk(n.Ctor, visit)
		walkExprs(n.Args, visit)
	case *Dot:
		Walk(n.X, visit)
	case *Index:
		Walk(n.X, visit)
		Walk(n.I, visit)
	case *Cond:
		Walk(n.C, visit)
		Walk(n.X, visit)
		Walk(n.Y, visit)
	case *ArrayLit:
		walkExprs(n.Elems, visit)
	case *Func:
		walkStmts(n.Body, visit)
	case *ExprStmt:
		Walk(n.X, visit)
	case *VarDecl:
		if n.Init != nil {
			Walk(n.Init, visit)
		}
	case *FuncDecl:
		Walk(n.Fn, visit)
	case *Block:
		walkStmts(n.Body, visit)
	case *If:
		Walk(n.C, visit)
		Walk(n.Then, visit)
		if n.Else != nil {
			Walk(n.Else, visit)
		}
	case *While:
		Walk(n.C, visit)
		Walk(n.Body, visit)
	case *Return:
		if n.X != nil {
			Walk(n.X, visit)
		}
	case *Throw:
		Walk(n.X, visit)
	case *Try:
		Walk(n.Body, visit)
		if n.Handler != nil {
			Walk(n.Handler, visit)
		}
		if n.Finally != nil {
			Walk(n.Finally, visit)
		}
	default:
		panic(UnknownNode(n))
	}
}

func walkExprs(es []Expr, visit func(Node) bool) {
	for _, e := range es {
		Walk(e, visit)
	}
}

func walkStmts(ss []Stmt, visit func(Node) bool) {
	for _, s := range ss {
		Walk(s, visit)
	}
}

// Rewriter replaces nodes bottom-up. A nil callback keeps the node.
type Rewriter struct {
	Expr func(Expr) Expr
	Stmt func(Stmt) Stmt
}

// RewriteExpr rewrites the children of e, then e itself.
func RewriteExpr(e Expr, r Rewriter) Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *NameRef, *NumberLit, *BigIntLit, *StringLit, *BoolLit, *NullLit, *ThisRef:
	case *Binary:
		e.X, e.Y = RewriteExpr(e.X, r), RewriteExpr(e.Y, r)
	case *Unary:
		e.X = RewriteExpr(e.X, r)
	case *Assign:
		e.X, e.Y = RewriteExpr(e.X, r), RewriteExpr(e.Y, r)
	case *Call:
		e.Fn = RewriteExpr(e.Fn, r)
		rewriteExprs(e.Args, r)
	case *New:
		e.Ctor = RewriteExpr(e.Ctor, r)
		rewriteExprs(e.Args, r)
	case *Dot:
		e.X = RewriteExpr(e.X, r)
	case *Index:
		e.X, e.I = RewriteExpr(e.X, r), RewriteExpr(e.I, r)
	case *Cond:
		e.C, e.X, e.Y = RewriteExpr(e.C, r), RewriteExpr(e.X, r), RewriteExpr(e.Y, r)
	case *ArrayLit:
		rewriteExprs(e.Elems, r)
	case *Func:
		e.Body = RewriteStmts(e.Body, r)
	default:
		panic(UnknownNode(e))
	}
	if r.Expr != nil {
		return r.Expr(e)
	}
	return e
}

func rewriteExprs(es []Expr, r Rewriter) {
	for i := range es {
		es[i] = RewriteExpr(es[i], r)
	}
}

// RewriteStmt rewrites the expressions and nested statements of s, then s itself.
func RewriteStmt(s Stmt, r Rewriter) Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *Break, *Continue, *Empty:
	case *ExprStmt:
		s.X = RewriteExpr(s.X, r)
	case *VarDecl:
		s.Init = RewriteExpr(s.Init, r)
	case *FuncDecl:
		s.Fn.Body = RewriteStmts(s.Fn.Body, r)
	case *Block:
		s.Body = RewriteStmts(s.Body, r)
	case *If:
		s.C = RewriteExpr(s.C, r)
		s.Then = RewriteStmt(s.Then, r)
		s.Else = RewriteStmt(s.Else, r)
	case *While:
		s.C = RewriteExpr(s.C, r)
		s.Body = RewriteStmt(s.Body, r)
	case *Return:
		s.X = RewriteExpr(s.X, r)
	case *Throw:
		s.X = RewriteExpr(s.X, r)
	case *Try:
		s.Body.Body = RewriteStmts(s.Body.Body, r)
		if s.Handler != nil {
			s.Handler.Body = RewriteStmts(s.Handler.Body, r)
		}
		if s.Finally != nil {
			s.Finally.Body = RewriteStmts(s.Finally.Body, r)
		}
	default:
		panic(UnknownNode(s))
	}
	if r.Stmt != nil {
		return r.Stmt(s)
	}
	return s
}

// RewriteStmts rewrites every statement of ss in place and returns ss.
func RewriteStmts(ss []Stmt, r Rewriter) []Stmt {
	for i := range ss {
		ss[i] = RewriteStmt(ss[i], r)
	}
	return ss
}

// Clone deep-copies e. subst, when non-nil, may replace a NameRef by another expression;
// the replacement is cloned again so the result never shares nodes with the input.
func Clone(e Expr, subst func(*Name) (Expr, bool)) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *NameRef:
		if subst != nil {
			if r, ok := subst(e.Name); ok {
				return Clone(r, nil)
			}
		}
		return &NameRef{Name: e.Name}
	case *NumberLit:
		c := *e
		return &c
	case *BigIntLit:
		c := *e
		return &c
	case *StringLit:
		c := *e
		return &c
	case *BoolLit:
		c := *e
		return &c
	case *NullLit:
		return &NullLit{}
	case *ThisRef:
		return &ThisRef{}
	case *Binary:
		return &Binary{Op: e.Op, X: Clone(e.X, subst), Y: Clone(e.Y, subst)}
	case *Unary:
		return &Unary{Op: e.Op, X: Clone(e.X, subst)}
	case *Assign:
		return &Assign{Op: e.Op, X: Clone(e.X, subst), Y: Clone(e.Y, subst)}
	case *Call:
		return &Call{Fn: Clone(e.Fn, subst), Args: cloneExprs(e.Args, subst)}
	case *New:
		return &New{Ctor: Clone(e.Ctor, subst), Args: cloneExprs(e.Args, subst)}
	case *Dot:
		return &Dot{X: Clone(e.X, subst), Prop: e.Prop}
	case *Index:
		return &Index{X: Clone(e.X, subst), I: Clone(e.I, subst)}
	case *Cond:
		return &Cond{C: Clone(e.C, subst), X: Clone(e.X, subst), Y: Clone(e.Y, subst)}
	case *ArrayLit:
		return &ArrayLit{Elems: cloneExprs(e.Elems, subst)}
	case *Func:
		// Function bodies are statements; the output tree never nests them in cloned expressions.
		return e
	default:
		panic(UnknownNode(e))
	}
}

func cloneExprs(es []Expr, subst func(*Name) (Expr, bool)) []Expr {
	if len(es) == 0 {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Clone(e, subst)
	}
	return out
}

// RefCounts counts NameRef occurrences per name inside n, plus native dependencies.
func RefCounts(n Node) map[*Name]int {
	counts := make(map[*Name]int)
	Walk(n, func(c Node) bool {
		switch c := c.(type) {
		case *NameRef:
			counts[c.Name]++
		case *Func:
			for _, d := range c.Deps {
				counts[d]++
			}
		}
		return true
	})
	return counts
}

// GlobalRefs returns the distinct global names n refers to, in first-use order. A function's
// Deps count as used where the function starts, ahead of its body.
func GlobalRefs(n Node) []*Name {
	var out []*Name
	seen := make(map[*Name]bool)
	add := func(name *Name) {
		if name.Kind == NameGlobal && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	Walk(n, func(c Node) bool {
		switch c := c.(type) {
		case *NameRef:
			add(c.Name)
		case *Func:
			for _, d := range c.Deps {
				add(d)
			}
		}
		return true
	})
	return out
}

// Defines returns the global name a top-level statement declares, or nil.
func Defines(s Stmt) *Name {
	switch s := s.(type) {
	case *FuncDecl:
		return s.Fn.Name
	case *VarDecl:
		if s.Name.Kind == NameGlobal {
			return s.Name
		}
	}
	return nil
}

// HasSideEffects reports whether evaluating e may do more than produce a value.
func HasSideEffects(e Expr) bool {
	switch e := e.(type) {
	case *NameRef, *NumberLit, *BigIntLit, *StringLit, *BoolLit, *NullLit, *ThisRef, *Func:
		return false
	case *Binary:
		return HasSideEffects(e.X) || HasSideEffects(e.Y)
	case *Unary:
		return HasSideEffects(e.X)
	case *Dot:
		return HasSideEffects(e.X)
	case *Index:
		return HasSideEffects(e.X) || HasSideEffects(e.I)
	case *Cond:
		return HasSideEffects(e.C) || HasSideEffects(e.X) || HasSideEffects(e.Y)
	case *ArrayLit:
		for _, x := range e.Elems {
			if HasSideEffects(x) {
				return true
			}
		}
		return false
	case *Assign, *Call, *New:
		return true
	default:
		panic(UnknownNode(e))
	}
}
