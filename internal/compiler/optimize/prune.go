package optimize

import (
	"maps"
	"slices"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
)

// Pruner marks every class, method and field that cannot be reached from the entry points,
// the extra roots or a split point as dead.
type Pruner struct {
	Types *typeinfo.Registry
}

func (Pruner) Name() string { return "prune" }

func (pr Pruner) Run(p *ast.Program, trail *ast.Provenance) int {
	return Prune(p, pr.Types, trail)
}

// Prune runs one reachability sweep and returns the number of elements it marked dead. types
// answers which instantiated classes a virtual call can reach.
func Prune(p *ast.Program, types *typeinfo.Registry, trail *ast.Provenance) int {
	l := &liveness{
		p:            p,
		types:        types,
		trail:        trail,
		classes:      make(map[ast.ClassID]bool),
		methods:      make(map[ast.MethodID]bool),
		fields:       make(map[ast.FieldID]bool),
		instantiated: make(map[ast.ClassID]bool),
		virtual:      make(map[ast.MethodID]bool),
	}
	l.compute()
	return l.sweep()
}

type liveness struct {
	p     *ast.Program
	types *typeinfo.Registry
	trail *ast.Provenance

	classes      map[ast.ClassID]bool
	methods      map[ast.MethodID]bool
	fields       map[ast.FieldID]bool
	instantiated map[ast.ClassID]bool
	virtual      map[ast.MethodID]bool
	queue        []ast.MethodID
}

func (l *liveness) compute() {
	p := l.p
	for _, c := range []ast.ClassID{p.ObjectClass, p.StringClass, p.ThrowableClass} {
		if c != ast.NoClass {
			l.markClass(c)
		}
	}
	if p.StringClass != ast.NoClass {
		l.instantiated[p.StringClass] = true
	}
	for _, m := range p.EntryPoints {
		l.markMethod(m)
	}
	for _, c := range slices.Concat(p.ExtraRoots, p.RebindAnswers) {
		l.instantiate(c)
		if ctor, ok := p.DefaultConstructor(c); ok {
			l.markMethod(ctor)
		}
	}

	for {
		for len(l.queue) > 0 {
			m := l.queue[0]
			l.queue = l.queue[1:]
			l.scan(m)
		}
		if !l.resolveVirtual() {
			return
		}
	}
}

// resolveVirtual adds the implementations that instantiated classes run for every virtual
// call seen so far. It reports whether anything new became live.
func (l *liveness) resolveVirtual() bool {
	grew := false
	targets := slices.Sorted(maps.Keys(l.virtual))
	classes := slices.Sorted(maps.Keys(l.instantiated))
	for _, v := range targets {
		owner := l.p.Methods[v].Class
		sig := l.p.Signature(v)
		for _, c := range classes {
			if !l.types.IsSubclass(c, owner) {
				continue
			}
			if impl, ok := l.p.Resolve(c, sig); ok && !l.methods[impl] {
				l.markMethod(impl)
				grew = true
			}
		}
	}
	return grew
}

func (l *liveness) markClass(c ast.ClassID) {
	if c == ast.NoClass || l.classes[c] {
		return
	}
	l.classes[c] = true
	cls := &l.p.Classes[c]
	l.markClass(cls.Super)
	for _, i := range cls.Interfaces {
		l.markClass(i)
	}
}

func (l *liveness) instantiate(c ast.ClassID) {
	l.instantiated[c] = true
	l.markClass(c)
}

func (l *liveness) markMethod(m ast.MethodID) {
	if m == ast.NoMethod || l.methods[m] {
		return
	}
	l.methods[m] = true
	l.markClass(l.p.Methods[m].Class)
	l.queue = append(l.queue, m)
}

func (l *liveness) markField(f ast.FieldID) {
	if f == ast.NoField || l.fields[f] {
		return
	}
	l.fields[f] = true
	l.markClass(l.p.Fields[f].Class)
	for x := range l.p.ExprsOf(l.p.Fields[f].Init) {
		l.scanExpr(x)
	}
}

func (l *liveness) scan(m ast.MethodID) {
	body := l.p.Methods[m].Body
	if body == ast.NoStmt {
		return
	}
	l.trail.EnterMethod(l.p, m)
	defer l.trail.Leave()
	for s := range l.p.StmtsOf(body) {
		for _, c := range l.p.Stmts[s].Catches {
			for _, t := range c.Types {
				l.markClass(t)
			}
		}
	}
	for x := range l.p.ExprsIn(body) {
		l.scanExpr(x)
	}
}

func (l *liveness) scanExpr(x ast.ExprID) {
	e := &l.p.Exprs[x]
	switch e.Kind {
	case ast.ExprCall:
		if e.Dispatch == ast.DispatchVirtual {
			l.virtual[e.Method] = true
			l.markClass(l.p.Methods[e.Method].Class)
			if l.p.Methods[e.Method].Is(ast.MethodAbstract) {
				l.markMethod(e.Method)
			}
			return
		}
		l.markMethod(e.Method)
	case ast.ExprNew:
		l.instantiate(e.Class)
		l.markMethod(e.Method)
	case ast.ExprField:
		l.markField(e.Field)
	case ast.ExprCast, ast.ExprInstanceOf:
		if e.Target.Kind == ast.TypeClass {
			l.markClass(e.Target.Class)
		}
	case ast.ExprRebind, ast.ExprRuntime:
		l.markClass(e.Class)
	case ast.ExprRunAsync:
		l.markMethod(e.Method)
	case ast.ExprLiteral, ast.ExprLocal, ast.ExprThis, ast.ExprBinary, ast.ExprUnary, ast.ExprAssign,
		ast.ExprNewArray, ast.ExprArrayRef, ast.ExprArrayLength, ast.ExprConditional:
	default:
		panic(ast.UnknownKind(e.Kind))
	}
}

func (l *liveness) sweep() int {
	p := l.p
	n := 0
	for i := range p.Classes {
		if !p.Classes[i].Dead && !l.classes[ast.ClassID(i)] {
			p.Classes[i].Dead = true
			n++
		}
	}
	for i := range p.Methods {
		if !p.Methods[i].Dead && !l.methods[ast.MethodID(i)] {
			p.Methods[i].Dead = true
			n++
		}
	}
	for i := range p.Fields {
		if !p.Fields[i].Dead && !l.fields[ast.FieldID(i)] {
			p.Fields[i].Dead = true
			n++
		}
	}
	return n
}
