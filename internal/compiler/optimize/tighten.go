package optimize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
)

// TypeTightener narrows the declared types of locals, parameters, fields and return values
// to the most specific class every assigned value has, then removes casts and instanceof
// checks the narrowed types prove redundant.
type TypeTightener struct {
	Types *typeinfo.Registry
}

func (TypeTightener) Name() string { return "tighten-types" }

func (tt TypeTightener) Run(p *ast.Program, trail *ast.Provenance) int {
	t := &tightener{
		p:       p,
		types:   tt.Types,
		trail:   trail,
		locals:  make(map[ast.LocalID]*sources),
		fields:  make(map[ast.FieldID]*sources),
		returns: make(map[ast.MethodID]*sources),
	}
	t.collect()
	n := t.apply()
	n += t.simplifyChecks()
	return n
}

// sources accumulates the static types flowing into one declaration.
type sources struct {
	types   []ast.TypeRef
	blocked bool
}

func (s *sources) add(t ast.TypeRef) {
	if t.Kind == ast.TypeNull && t.Dims == 0 {
		return
	}
	if !isClassType(t) {
		s.blocked = true
		return
	}
	s.types = append(s.types, t)
}

type tightener struct {
	p     *ast.Program
	types *typeinfo.Registry
	trail *ast.Provenance

	locals  map[ast.LocalID]*sources
	fields  map[ast.FieldID]*sources
	returns map[ast.MethodID]*sources
}

func sourceOf[K comparable](m map[K]*sources, k K) *sources {
	s, ok := m[k]
	if !ok {
		s = &sources{}
		m[k] = s
	}
	return s
}

func (t *tightener) collect() {
	p := t.p
	for _, m := range p.EntryPoints {
		for _, l := range p.Methods[m].Params {
			sourceOf(t.locals, l).blocked = true
		}
	}
	for i := range p.Fields {
		f := &p.Fields[i]
		if !f.Dead && f.Init != ast.NoExpr {
			sourceOf(t.fields, ast.FieldID(i)).add(p.Exprs[f.Init].Type)
		}
	}
	for _, m := range liveMethods(p) {
		t.trail.EnterMethod(p, m)
		meth := &p.Methods[m]
		if !closedParams(meth) {
			for _, l := range meth.Params {
				sourceOf(t.locals, l).blocked = true
			}
		}
		for s := range p.StmtsOf(meth.Body) {
			st := &p.Stmts[s]
			switch st.Kind {
			case ast.StmtLocal:
				if st.X != ast.NoExpr {
					sourceOf(t.locals, st.Local).add(p.Exprs[st.X].Type)
				}
			case ast.StmtReturn:
				if st.X != ast.NoExpr {
					sourceOf(t.returns, m).add(p.Exprs[st.X].Type)
				}
			case ast.StmtTry:
				for _, c := range st.Catches {
					sourceOf(t.locals, c.Local).blocked = true
				}
			}
		}
		for x := range p.MethodExprs(m) {
			t.collectExpr(x)
		}
		t.trail.Leave()
	}
}

func (t *tightener) collectExpr(x ast.ExprID) {
	p := t.p
	e := &p.Exprs[x]
	switch e.Kind {
	case ast.ExprAssign:
		target := &p.Exprs[e.X]
		var s *sources
		switch target.Kind {
		case ast.ExprLocal:
			s = sourceOf(t.locals, target.Local)
		case ast.ExprField:
			s = sourceOf(t.fields, target.Field)
		default:
			return
		}
		if e.Op != ast.OpAssign {
			s.blocked = true
			return
		}
		s.add(p.Exprs[e.Y].Type)
	case ast.ExprCall, ast.ExprNew:
		if e.Kind == ast.ExprCall && e.Dispatch == ast.DispatchVirtual {
			return
		}
		if e.Method == ast.NoMethod {
			return
		}
		params := p.Methods[e.Method].Params
		for i, a := range e.Args {
			if i < len(params) {
				sourceOf(t.locals, params[i]).add(p.Exprs[a].Type)
			}
		}
	}
}

// closedParams reports whether every caller of m is visible as a static, direct or
// constructor call, so its parameters only receive the argument types seen there.
func closedParams(m *ast.Method) bool {
	return m.Is(ast.MethodStatic | ast.MethodPrivate | ast.MethodConstructor)
}

// closedReturn reports whether m neither overrides nor can be overridden.
func closedReturn(p *ast.Program, id ast.MethodID) bool {
	m := &p.Methods[id]
	if m.Is(ast.MethodStatic | ast.MethodPrivate) {
		return true
	}
	if !m.Is(ast.MethodFinal) || m.Is(ast.MethodConstructor) {
		return false
	}
	sig := p.Signature(id)
	cls := &p.Classes[m.Class]
	if _, ok := p.Declaring(cls.Super, sig); ok {
		return false
	}
	for _, i := range cls.Interfaces {
		if _, ok := p.Declaring(i, sig); ok {
			return false
		}
	}
	return true
}

// narrowed returns the join of s when it is a strict subclass of declared.
func (t *tightener) narrowed(declared ast.TypeRef, s *sources) (ast.TypeRef, bool) {
	if s == nil || s.blocked || len(s.types) == 0 || !isClassType(declared) {
		return declared, false
	}
	join := s.types[0].Class
	for _, st := range s.types[1:] {
		join = t.commonSuperclass(join, st.Class)
		if join == ast.NoClass {
			return declared, false
		}
	}
	if join == declared.Class || !t.types.IsSubclass(join, declared.Class) {
		return declared, false
	}
	return ast.ClassType(join), true
}

// commonSuperclass is the nearest superclass of a, a included, that b also extends.
func (t *tightener) commonSuperclass(a, b ast.ClassID) ast.ClassID {
	if t.types.IsSubclass(b, a) {
		return a
	}
	at, ok := t.types.ForClass(a)
	if !ok {
		return ast.NoClass
	}
	for _, sup := range t.types.Supertypes(at) {
		if sup.Kind == typeinfo.KindClass && sup.Decl != ast.NoClass && t.types.IsSubclass(b, sup.Decl) {
			return sup.Decl
		}
	}
	return ast.NoClass
}

func (t *tightener) apply() int {
	p := t.p
	n := 0
	newLocals := make(map[ast.LocalID]ast.TypeRef)
	for l, s := range t.locals {
		if nt, ok := t.narrowed(p.Locals[l].Type, s); ok {
			p.Locals[l].Type = nt
			newLocals[l] = nt
			n++
		}
	}
	newFields := make(map[ast.FieldID]ast.TypeRef)
	for f, s := range t.fields {
		if nt, ok := t.narrowed(p.Fields[f].Type, s); ok {
			p.Fields[f].Type = nt
			newFields[f] = nt
			n++
		}
	}
	newReturns := make(map[ast.MethodID]ast.TypeRef)
	for m, s := range t.returns {
		if !closedReturn(p, m) {
			continue
		}
		if nt, ok := t.narrowed(p.Methods[m].Return, s); ok {
			p.Methods[m].Return = nt
			newReturns[m] = nt
			n++
		}
	}
	if n == 0 {
		return 0
	}
	for i := range p.Exprs {
		e := &p.Exprs[i]
		switch e.Kind {
		case ast.ExprLocal:
			if nt, ok := newLocals[e.Local]; ok {
				e.Type = nt
			}
		case ast.ExprField:
			if nt, ok := newFields[e.Field]; ok {
				e.Type = nt
			}
		case ast.ExprCall:
			if nt, ok := newReturns[e.Method]; ok {
				e.Type = nt
			}
		}
	}
	return n
}

// simplifyChecks drops casts to a supertype of the operand and folds instanceof checks whose
// answer the operand type already decides.
func (t *tightener) simplifyChecks() int {
	p := t.p
	n := 0
	for _, m := range liveMethods(p) {
		t.trail.EnterMethod(p, m)
		var checks []ast.ExprID
		for x := range p.MethodExprs(m) {
			if k := p.Exprs[x].Kind; k == ast.ExprCast || k == ast.ExprInstanceOf {
				checks = append(checks, x)
			}
		}
		for _, x := range checks {
			if t.simplify(x) {
				n++
			}
		}
		t.trail.Leave()
	}
	return n
}

func (t *tightener) simplify(x ast.ExprID) bool {
	p := t.p
	e := p.Exprs[x]
	if e.Target.Kind != ast.TypeClass || e.Target.Dims != 0 {
		return false
	}
	operand := p.Exprs[e.X].Type
	isNull := operand.Kind == ast.TypeNull && operand.Dims == 0

	if e.Kind == ast.ExprCast {
		switch {
		case isNull:
			p.Exprs[x] = p.Exprs[e.X]
			p.Exprs[x].Type = e.Target
			return true
		case isClassType(operand) && t.types.IsSubclass(operand.Class, e.Target.Class):
			p.Exprs[x] = p.Exprs[e.X]
			return true
		}
		return false
	}

	switch {
	case isNull:
		p.Exprs[x] = boolLiteral(false, e.Pos)
		return true
	case !isClassType(operand):
		return false
	case t.types.IsSubclass(operand.Class, e.Target.Class):
		null := ast.NewExpr(ast.ExprLiteral, ast.Prim(ast.TypeNull))
		null.Lit = ast.Literal{Kind: ast.LitNull}
		null.Pos = e.Pos
		ne := ast.NewExpr(ast.ExprBinary, ast.Prim(ast.TypeBoolean))
		ne.Op, ne.X, ne.Y, ne.Pos = ast.OpRefNe, e.X, p.AddExpr(null), e.Pos
		p.Exprs[x] = ne
		return true
	case disjoint(p, t.types, operand.Class, e.Target.Class) && !p.HasSideEffects(e.X):
		p.Exprs[x] = boolLiteral(false, e.Pos)
		return true
	}
	return false
}

// disjoint reports whether no object can be an instance of both classes.
func disjoint(p *ast.Program, types *typeinfo.Registry, a, b ast.ClassID) bool {
	ca, cb := &p.Classes[a], &p.Classes[b]
	if ca.Is(ast.ClassInterface) || cb.Is(ast.ClassInterface) {
		return false
	}
	return !types.IsSubclass(a, b) && !types.IsSubclass(b, a)
}

func boolLiteral(v bool, pos ast.Pos) ast.Expr {
	e := ast.NewExpr(ast.ExprLiteral, ast.Prim(ast.TypeBoolean))
	e.Lit = ast.Literal{Kind: ast.LitBool, Bool: v}
	e.Pos = pos
	return e
}

// MethodCallTightener retargets virtual calls to the most specific declaration visible from
// the receiver's static type.
type MethodCallTightener struct {
	Types *typeinfo.Registry
}

func (MethodCallTightener) Name() string { return "tighten-calls" }

func (mt MethodCallTightener) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	forEachCall(p, trail, func(_ ast.MethodID, x ast.ExprID) {
		e := &p.Exprs[x]
		if e.Dispatch != ast.DispatchVirtual || e.X == ast.NoExpr {
			return
		}
		recv := p.Exprs[e.X].Type
		owner := p.Methods[e.Method].Class
		if !isClassType(recv) || recv.Class == owner || !mt.Types.IsSubclass(recv.Class, owner) {
			return
		}
		if d, ok := p.Declaring(recv.Class, p.Signature(e.Method)); ok && d != e.Method {
			e.Method = d
			n++
		}
	})
	return n
}
