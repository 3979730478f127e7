package optimize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
)

// MakeCallsStatic rewrites virtual calls that can only reach one implementation into direct
// calls of that implementation.
type MakeCallsStatic struct {
	Types *typeinfo.Registry
}

func (MakeCallsStatic) Name() string { return "make-calls-static" }

func (mc MakeCallsStatic) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	forEachCall(p, trail, func(_ ast.MethodID, x ast.ExprID) {
		e := &p.Exprs[x]
		if e.Dispatch != ast.DispatchVirtual {
			return
		}
		target := &p.Methods[e.Method]
		if !target.Dead && !target.Is(ast.MethodAbstract) &&
			(target.Is(ast.MethodFinal|ast.MethodPrivate) || p.Classes[target.Class].Is(ast.ClassFinal)) {
			e.Dispatch = ast.DispatchDirect
			n++
			return
		}
		if impl, ok := singleImplementation(p, mc.Types, e.Method); ok {
			e.Method = impl
			e.Dispatch = ast.DispatchDirect
			n++
		}
	})
	return n
}

// singleImplementation returns the implementation of m when every concrete live class that
// could be a receiver runs the same one.
func singleImplementation(p *ast.Program, types *typeinfo.Registry, m ast.MethodID) (ast.MethodID, bool) {
	owner := p.Methods[m].Class
	sig := p.Signature(m)
	found := ast.NoMethod
	for _, c := range p.LiveClasses() {
		cls := &p.Classes[c]
		if cls.Is(ast.ClassInterface|ast.ClassAbstract) || !types.IsSubclass(c, owner) {
			continue
		}
		impl, ok := p.Resolve(c, sig)
		if !ok {
			continue
		}
		if found != ast.NoMethod && found != impl {
			return ast.NoMethod, false
		}
		found = impl
	}
	return found, found != ast.NoMethod
}
