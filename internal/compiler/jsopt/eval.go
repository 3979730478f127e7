package jsopt

import "go.trai.ch/permc/internal/compiler/js"

// StaticEval removes branches whose condition is a boolean literal and folds negation and
// short-circuit operators over boolean literals.
type StaticEval struct{}

func (StaticEval) Name() string { return "static-eval" }

func (StaticEval) Run(prog *js.Program) int {
	n := 0
	r := js.Rewriter{
		Expr: func(e js.Expr) js.Expr {
			out, changed := evalExpr(e)
			if changed {
				n++
			}
			return out
		},
		Stmt: func(s js.Stmt) js.Stmt {
			out, changed := evalStmt(s)
			if changed {
				n++
			}
			return out
		},
	}
	prog.Stmts = dropEmpty(js.RewriteStmts(prog.Stmts, r))
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok {
			fd.Fn.Body = dropEmpty(fd.Fn.Body)
		}
	}
	return n
}

func dropEmpty(ss []js.Stmt) []js.Stmt {
	kept := ss[:0]
	for _, s := range ss {
		if _, empty := s.(*js.Empty); !empty {
			kept = append(kept, s)
		}
	}
	return kept
}

func boolValue(e js.Expr) (bool, bool) {
	b, ok := e.(*js.BoolLit)
	if !ok {
		return false, false
	}
	return b.Value, true
}

func evalExpr(e js.Expr) (js.Expr, bool) {
	switch e := e.(type) {
	case *js.Unary:
		if v, ok := boolValue(e.X); ok && e.Op == "!" {
			return &js.BoolLit{Value: !v}, true
		}
	case *js.Cond:
		if v, ok := boolValue(e.C); ok {
			if v {
				return e.X, true
			}
			return e.Y, true
		}
	case *js.Binary:
		v, ok := boolValue(e.X)
		if !ok {
			return e, false
		}
		switch {
		case e.Op == "&&" && v, e.Op == "||" && !v:
			return e.Y, true
		case e.Op == "&&" && !v, e.Op == "||" && v:
			return e.X, true
		}
	}
	return e, false
}

func evalStmt(s js.Stmt) (js.Stmt, bool) {
	switch s := s.(type) {
	case *js.If:
		v, ok := boolValue(s.C)
		if !ok {
			return s, false
		}
		switch {
		case v:
			return s.Then, true
		case s.Else != nil:
			return s.Else, true
		default:
			return &js.Empty{}, true
		}
	case *js.While:
		if v, ok := boolValue(s.C); ok && !v {
			return &js.Empty{}, true
		}
	case *js.ExprStmt:
		if !js.HasSideEffects(s.X) {
			return &js.Empty{}, true
		}
	case *js.Block:
		before := len(s.Body)
		s.Body = dropEmpty(s.Body)
		return s, len(s.Body) != before
	}
	return s, false
}
