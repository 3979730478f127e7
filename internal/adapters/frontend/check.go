package frontend

import (
	"strconv"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/zerr"
)

// check rejects programs the compiler cannot walk safely: indices outside their arena,
// duplicate class names, and cyclic class or nesting chains.
func check(p *ast.Program) error {
	if len(p.Classes) == 0 {
		return zerr.Wrap(domain.ErrInvalidProgram, "program declares no classes")
	}
	for _, wk := range []struct {
		name string
		id   ast.ClassID
	}{
		{"object", p.ObjectClass},
		{"string", p.StringClass},
		{"throwable", p.ThrowableClass},
	} {
		if !within(wk.id, len(p.Classes)) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, "well-known class index out of range"), "class", wk.name)
		}
	}

	v := validator{p: p}
	for _, step := range []func() error{
		v.classes,
		v.methods,
		v.fields,
		v.locals,
		v.exprs,
		v.stmts,
		v.roots,
		v.hierarchy,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	p *ast.Program
}

func within[T ~int32](id T, n int) bool { return id >= 0 && int(id) < n }

// optional accepts the "none" index as well as any index inside the arena.
func optional[T ~int32](id T, n int) bool { return id == -1 || within(id, n) }

func (v validator) classErr(c ast.ClassID, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, msg), "class", v.p.Classes[c].QualifiedName())
}

// ownerErr names the class that declares a member, falling back to the member index when
// the owner itself is out of range.
func (v validator) ownerErr(owner ast.ClassID, kind string, index int, msg string) error {
	if within(owner, len(v.p.Classes)) {
		return zerr.With(v.classErr(owner, msg), kind, strconv.Itoa(index))
	}
	return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, msg), kind, strconv.Itoa(index))
}

func (v validator) nodeErr(kind string, index int, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, msg), kind, strconv.Itoa(index))
}

func (v validator) typeOK(t ast.TypeRef) bool {
	return t.Kind != ast.TypeClass || within(t.Class, len(v.p.Classes))
}

func (v validator) classes() error {
	p := v.p
	seen := make(map[string]ast.ClassID, len(p.Classes))
	for i := range p.Classes {
		c := ast.ClassID(i)
		cls := &p.Classes[i]
		if prev, ok := seen[cls.QualifiedName()]; ok {
			return zerr.With(v.classErr(c, "duplicate class name"), "first", strconv.Itoa(int(prev)))
		}
		seen[cls.QualifiedName()] = c

		if !optional(cls.Super, len(p.Classes)) {
			return zerr.With(v.classErr(c, "superclass index out of range"), "super", strconv.Itoa(int(cls.Super)))
		}
		if !optional(cls.Enclosing, len(p.Classes)) {
			return v.classErr(c, "enclosing class index out of range")
		}
		for _, iface := range cls.Interfaces {
			if !within(iface, len(p.Classes)) {
				return zerr.With(v.classErr(c, "interface index out of range"), "interface", strconv.Itoa(int(iface)))
			}
		}
		for _, m := range cls.Methods {
			if !within(m, len(p.Methods)) {
				return zerr.With(v.classErr(c, "method index out of range"), "method", strconv.Itoa(int(m)))
			}
			if p.Methods[m].Class != c {
				return zerr.With(v.classErr(c, "method declared by another class"), "method", p.Methods[m].Name)
			}
		}
		for _, f := range cls.Fields {
			if !within(f, len(p.Fields)) {
				return zerr.With(v.classErr(c, "field index out of range"), "field", strconv.Itoa(int(f)))
			}
			if p.Fields[f].Class != c {
				return zerr.With(v.classErr(c, "field declared by another class"), "field", p.Fields[f].Name)
			}
		}
	}
	return nil
}

func (v validator) methods() error {
	p := v.p
	for i := range p.Methods {
		m := &p.Methods[i]
		if !within(m.Class, len(p.Classes)) {
			return v.ownerErr(m.Class, "method", i, "method owner index out of range")
		}
		if !optional(m.Body, len(p.Stmts)) {
			return v.ownerErr(m.Class, "method", i, "method body index out of range")
		}
		if !v.typeOK(m.Return) {
			return v.ownerErr(m.Class, "method", i, "return type index out of range")
		}
		for _, l := range append(m.Params[:len(m.Params):len(m.Params)], m.Locals...) {
			if !within(l, len(p.Locals)) {
				return v.ownerErr(m.Class, "method", i, "local index out of range")
			}
		}
	}
	return nil
}

func (v validator) fields() error {
	p := v.p
	for i := range p.Fields {
		f := &p.Fields[i]
		if !within(f.Class, len(p.Classes)) {
			return v.ownerErr(f.Class, "field", i, "field owner index out of range")
		}
		if !optional(f.Init, len(p.Exprs)) {
			return v.ownerErr(f.Class, "field", i, "field initializer index out of range")
		}
		if !v.typeOK(f.Type) {
			return v.ownerErr(f.Class, "field", i, "field type index out of range")
		}
	}
	return nil
}

func (v validator) locals() error {
	p := v.p
	for i := range p.Locals {
		l := &p.Locals[i]
		if !optional(l.Method, len(p.Methods)) || !v.typeOK(l.Type) {
			return v.nodeErr("local", i, "local index out of range")
		}
	}
	return nil
}

func (v validator) exprs() error {
	p := v.p
	for i := range p.Exprs {
		e := &p.Exprs[i]
		ok := optional(e.X, len(p.Exprs)) && optional(e.Y, len(p.Exprs)) && optional(e.Z, len(p.Exprs)) &&
			optional(e.Local, len(p.Locals)) &&
			optional(e.Field, len(p.Fields)) &&
			optional(e.Method, len(p.Methods)) &&
			optional(e.Class, len(p.Classes)) &&
			v.typeOK(e.Type) && v.typeOK(e.Target)
		for _, a := range e.Args {
			ok = ok && within(a, len(p.Exprs))
		}
		if !ok {
			return v.nodeErr("expr", i, "expression index out of range")
		}
	}
	return nil
}

func (v validator) stmts() error {
	p := v.p
	for i := range p.Stmts {
		s := &p.Stmts[i]
		ok := optional(s.X, len(p.Exprs)) && optional(s.Y, len(p.Exprs)) &&
			optional(s.Then, len(p.Stmts)) && optional(s.Else, len(p.Stmts)) && optional(s.Finally, len(p.Stmts)) &&
			optional(s.Local, len(p.Locals))
		for _, b := range s.Body {
			ok = ok && within(b, len(p.Stmts))
		}
		for _, c := range s.Catches {
			ok = ok && optional(c.Local, len(p.Locals)) && within(c.Body, len(p.Stmts))
			for _, t := range c.Types {
				ok = ok && within(t, len(p.Classes))
			}
		}
		if !ok {
			return v.nodeErr("stmt", i, "statement index out of range")
		}
	}
	return nil
}

func (v validator) roots() error {
	p := v.p
	for _, m := range append(p.EntryPoints[:len(p.EntryPoints):len(p.EntryPoints)], p.SplitPoints...) {
		if !within(m, len(p.Methods)) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, "root method index out of range"), "method", strconv.Itoa(int(m)))
		}
	}
	for _, c := range append(p.ExtraRoots[:len(p.ExtraRoots):len(p.ExtraRoots)], p.RebindAnswers...) {
		if !within(c, len(p.Classes)) {
			return zerr.With(zerr.Wrap(domain.ErrInvalidProgram, "root class index out of range"), "class", strconv.Itoa(int(c)))
		}
	}
	return nil
}

// hierarchy rejects a class that reaches itself through its supertypes or its enclosing
// classes. Every later stage walks these chains without a visited set.
func (v validator) hierarchy() error {
	const (
		unvisited = iota
		active
		finished
	)
	p := v.p
	state := make([]uint8, len(p.Classes))

	var visit func(c ast.ClassID) error
	visit = func(c ast.ClassID) error {
		switch state[c] {
		case finished:
			return nil
		case active:
			return v.classErr(c, "class hierarchy contains a cycle")
		}
		state[c] = active
		cls := &p.Classes[c]
		if cls.Super != ast.NoClass {
			if err := visit(cls.Super); err != nil {
				return err
			}
		}
		for _, iface := range cls.Interfaces {
			if err := visit(iface); err != nil {
				return err
			}
		}
		state[c] = finished
		return nil
	}

	for i := range p.Classes {
		if err := visit(ast.ClassID(i)); err != nil {
			return err
		}
	}

	for i := range p.Classes {
		c := p.Classes[i].Enclosing
		for steps := 0; c != ast.NoClass; steps++ {
			if steps >= len(p.Classes) {
				return v.classErr(ast.ClassID(i), "class nesting contains a cycle")
			}
			c = p.Classes[c].Enclosing
		}
	}
	return nil
}
