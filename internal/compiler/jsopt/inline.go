package jsopt

import "go.trai.ch/permc/internal/compiler/js"

// Inliner replaces calls to top-level functions whose body is a single return statement
// with the returned expression. It only inlines when every argument is a literal, a local or
// this, every parameter is used at most once and the callee does not refer to this or to
// itself.
type Inliner struct{}

func (Inliner) Name() string { return "inline" }

func (Inliner) Run(prog *js.Program) int {
	candidates := make(map[*js.Name]*js.Func)
	for name, fn := range functions(prog) {
		if inlinable(fn) {
			candidates[name] = fn
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	n := 0
	r := js.Rewriter{Expr: func(e js.Expr) js.Expr {
		call, ok := e.(*js.Call)
		if !ok {
			return e
		}
		ref, ok := call.Fn.(*js.NameRef)
		if !ok {
			return e
		}
		fn, ok := candidates[ref.Name]
		if !ok || len(call.Args) != len(fn.Params) {
			return e
		}
		for _, a := range call.Args {
			if !simpleArg(a) {
				return e
			}
		}
		args := make(map[*js.Name]js.Expr, len(fn.Params))
		for i, p := range fn.Params {
			args[p] = call.Args[i]
		}
		n++
		return js.Clone(fn.Body[0].(*js.Return).X, func(name *js.Name) (js.Expr, bool) {
			a, ok := args[name]
			return a, ok
		})
	}}
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok {
			if _, self := candidates[fd.Fn.Name]; self {
				continue
			}
		}
		js.RewriteStmt(s, r)
	}
	return n
}

func inlinable(fn *js.Func) bool {
	if fn.Native != "" || !fn.Name.Obfuscatable || len(fn.Body) != 1 {
		return false
	}
	ret, ok := fn.Body[0].(*js.Return)
	if !ok || ret.X == nil {
		return false
	}
	params := make(map[*js.Name]bool, len(fn.Params))
	for _, p := range fn.Params {
		params[p] = true
	}
	ok = true
	js.Walk(ret.X, func(n js.Node) bool {
		switch n := n.(type) {
		case *js.ThisRef, *js.Func:
			ok = false
		case *js.NameRef:
			if n.Name == fn.Name || (n.Name.Kind == js.NameLocal && !params[n.Name]) {
				ok = false
			}
		}
		return ok
	})
	if !ok {
		return false
	}
	for name, count := range js.RefCounts(ret.X) {
		if params[name] && count > 1 {
			return false
		}
	}
	return true
}

// simpleArg reports whether a can be moved into the callee's expression without changing
// when or whether anything observable happens.
func simpleArg(a js.Expr) bool {
	switch a := a.(type) {
	case *js.NumberLit, *js.BigIntLit, *js.StringLit, *js.BoolLit, *js.NullLit, *js.ThisRef:
		return true
	case *js.NameRef:
		return a.Name.Kind == js.NameLocal
	default:
		return false
	}
}
