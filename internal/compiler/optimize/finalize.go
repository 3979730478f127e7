package optimize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
)

// Finalizer marks locals and fields that are never reassigned, methods that are never
// overridden and classes that are never extended as final.
type Finalizer struct {
	Types *typeinfo.Registry
}

func (Finalizer) Name() string { return "finalize" }

func (f Finalizer) Run(p *ast.Program, trail *ast.Provenance) int {
	assignedLocals := make(map[ast.LocalID]bool)
	assignedFields := make(map[ast.FieldID]bool)
	for _, m := range liveMethods(p) {
		trail.EnterMethod(p, m)
		inInit := p.Methods[m].Is(ast.MethodConstructor)
		for x := range p.MethodExprs(m) {
			e := &p.Exprs[x]
			if e.Kind != ast.ExprAssign {
				continue
			}
			target := &p.Exprs[e.X]
			switch target.Kind {
			case ast.ExprLocal:
				assignedLocals[target.Local] = true
			case ast.ExprField:
				fd := &p.Fields[target.Field]
				if !inInit || fd.Is(ast.FieldStatic) || fd.Class != p.Methods[m].Class {
					assignedFields[target.Field] = true
				}
			}
		}
		for s := range p.StmtsOf(p.Methods[m].Body) {
			for _, c := range p.Stmts[s].Catches {
				assignedLocals[c.Local] = true
			}
		}
		trail.Leave()
	}

	n := 0
	for i := range p.Locals {
		l := &p.Locals[i]
		if l.Method == ast.NoMethod || p.Methods[l.Method].Dead || l.Is(ast.LocalFinal) {
			continue
		}
		if !assignedLocals[ast.LocalID(i)] {
			l.Flags |= ast.LocalFinal
			n++
		}
	}
	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Dead || f.Is(ast.FieldFinal) || assignedFields[ast.FieldID(i)] {
			continue
		}
		f.Flags |= ast.FieldFinal
		n++
	}

	extended := make(map[ast.ClassID]bool)
	for _, c := range p.LiveClasses() {
		if s := p.Classes[c].Super; s != ast.NoClass {
			extended[s] = true
		}
	}
	for _, c := range p.LiveClasses() {
		cls := &p.Classes[c]
		if cls.Is(ast.ClassFinal|ast.ClassInterface|ast.ClassAbstract) || extended[c] {
			continue
		}
		cls.Flags |= ast.ClassFinal
		n++
	}

	for _, m := range liveMethods(p) {
		meth := &p.Methods[m]
		if meth.Is(ast.MethodFinal|ast.MethodStatic|ast.MethodConstructor|ast.MethodPrivate|ast.MethodAbstract) {
			continue
		}
		if !overridden(p, f.Types, m) {
			meth.Flags |= ast.MethodFinal
			n++
		}
	}
	return n
}

// overridden reports whether a live subclass declares a method with the signature of m.
func overridden(p *ast.Program, types *typeinfo.Registry, m ast.MethodID) bool {
	owner := p.Methods[m].Class
	sig := p.Signature(m)
	for _, c := range p.LiveClasses() {
		if c == owner || !types.IsSubclass(c, owner) {
			continue
		}
		for _, other := range p.Classes[c].Methods {
			om := &p.Methods[other]
			if om.Dead || om.Is(ast.MethodStatic|ast.MethodConstructor) {
				continue
			}
			if p.Signature(other) == sig {
				return true
			}
		}
	}
	return false
}
