// Package codegen translates a normalized source tree into the output-language tree.
//
// Every live class becomes a constructor marker registered with the runtime, every method a
// top-level function, every static field a global variable. Instance methods that some
// virtual call can reach are also installed on the prototype under a property shared by all
// overrides of their signature.
package codegen

import (
	"fmt"
	"slices"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Result is the generated output tree plus its source name map.
type Result struct {
	Program *js.Program
	Names   *NameMap
}

type generator struct {
	p     *ast.Program
	lib   *js.Library
	opts  domain.CompileOptions
	trail *ast.Provenance
	names *NameMap

	runtime map[string]*js.Name
	host    map[string]*js.Name
	locals  map[ast.LocalID]*js.Name
	virtual map[*js.Name]bool
}

// Generate builds the output tree for p. It panics on source constructs that normalization
// should have removed; the pipeline boundary reports those as internal compiler errors.
func Generate(p *ast.Program, lib *js.Library, opts domain.CompileOptions, trail *ast.Provenance) (*Result, error) {
	g := &generator{
		p:       p,
		lib:     lib,
		opts:    opts,
		trail:   trail,
		names:   newNameMap(),
		runtime: make(map[string]*js.Name),
		host:    make(map[string]*js.Name),
		locals:  make(map[ast.LocalID]*js.Name),
		virtual: make(map[*js.Name]bool),
	}

	classes := g.classOrder()
	var methods []methodCode
	for _, c := range classes {
		for _, m := range p.Classes[c].Methods {
			if code, ok := g.method(m); ok {
				methods = append(methods, code)
			}
		}
	}
	statics := g.staticFields(classes)
	registers, splits := g.splitPoints()
	entries := g.entries()

	var setup []js.Stmt
	for _, c := range classes {
		setup = append(setup, g.classSetup(c)...)
	}
	helpers, err := g.helpers()
	if err != nil {
		return nil, err
	}
	out := slices.Concat(helpers, setup)
	for _, code := range methods {
		out = append(out, &js.FuncDecl{Fn: code.fn})
		if code.slot != nil && g.virtual[code.slot] {
			out = append(out, &js.ExprStmt{X: &js.Assign{
				Op: "=",
				X:  &js.Dot{X: g.prototype(code.class), Prop: code.slot},
				Y:  &js.NameRef{Name: code.fn.Name},
			}})
		}
	}
	out = append(out, statics...)
	out = append(out, registers...)
	out = append(out, entries...)

	return &Result{
		Program: &js.Program{Stmts: out, Splits: splits, Entries: entries},
		Names:   g.names,
	}, nil
}

// classOrder returns the live classes that get a constructor marker, supertypes first.
func (g *generator) classOrder() []ast.ClassID {
	var order []ast.ClassID
	seen := make(map[ast.ClassID]bool)
	var visit func(c ast.ClassID)
	visit = func(c ast.ClassID) {
		if c == ast.NoClass || seen[c] || g.p.Classes[c].Dead {
			return
		}
		seen[c] = true
		cls := &g.p.Classes[c]
		visit(cls.Super)
		for _, i := range cls.Interfaces {
			visit(i)
		}
		order = append(order, c)
	}
	for _, c := range g.p.LiveClasses() {
		visit(c)
	}
	return order
}

func (g *generator) hasMarker(c ast.ClassID) bool {
	return c != ast.NoClass && !g.p.Classes[c].Dead && !g.p.Classes[c].Is(ast.ClassOverlay)
}

func (g *generator) classSetup(c ast.ClassID) []js.Stmt {
	if !g.hasMarker(c) {
		return nil
	}
	cls := &g.p.Classes[c]
	marker := g.names.class(g.p, c)
	var sup js.Expr = &js.NullLit{}
	if !cls.Is(ast.ClassInterface) && g.hasMarker(cls.Super) {
		sup = &js.NameRef{Name: g.names.class(g.p, cls.Super)}
	}
	ifaces := &js.ArrayLit{}
	for _, i := range cls.Interfaces {
		if g.hasMarker(i) {
			ifaces.Elems = append(ifaces.Elems, &js.NameRef{Name: g.names.class(g.p, i)})
		}
	}
	args := []js.Expr{&js.NameRef{Name: marker}, sup, ifaces}
	if !g.opts.ClassMetadataDisabled {
		args = append(args, &js.StringLit{Value: cls.QualifiedName()})
	}

	out := []js.Stmt{
		&js.FuncDecl{Fn: &js.Func{Name: marker}},
		&js.ExprStmt{X: &js.Call{Fn: g.rt(js.RTDefineClass), Args: args}},
	}
	for _, f := range cls.Fields {
		fd := &g.p.Fields[f]
		if fd.Dead || fd.Is(ast.FieldStatic) {
			continue
		}
		out = append(out, &js.ExprStmt{X: &js.Assign{
			Op: "=",
			X:  &js.Dot{X: g.prototype(c), Prop: g.names.field(g.p, f)},
			Y:  zero(fd.Type),
		}})
	}
	return out
}

func (g *generator) prototype(c ast.ClassID) js.Expr {
	return &js.Dot{X: &js.NameRef{Name: g.names.class(g.p, c)}, Prop: js.PropPrototype}
}

type methodCode struct {
	fn    *js.Func
	class ast.ClassID
	slot  *js.Name
}

func (g *generator) method(id ast.MethodID) (methodCode, bool) {
	m := &g.p.Methods[id]
	if m.Dead || (m.Body == ast.NoStmt && m.Native == "") {
		return methodCode{}, false
	}
	g.trail.EnterMethod(g.p, id)
	defer g.trail.Leave()

	fn := &js.Func{Name: g.names.method(g.p, id)}
	for _, l := range m.Params {
		if m.Native != "" {
			n := js.Fixed(g.p.Locals[l].Name, js.NameLocal)
			g.locals[l] = n
			fn.Params = append(fn.Params, n)
			continue
		}
		fn.Params = append(fn.Params, g.local(l))
	}

	if m.Native != "" {
		fn.Native = m.Native
	} else {
		if m.Is(ast.MethodConstructor) {
			fn.Body = append(fn.Body, g.fieldInits(m.Class)...)
		}
		fn.Body = append(fn.Body, g.block(m.Body).Body...)
		if m.Is(ast.MethodConstructor) {
			fn.Body = append(fn.Body, &js.Return{X: &js.ThisRef{}})
		}
	}

	code := methodCode{fn: fn, class: m.Class}
	if !m.Is(ast.MethodStatic|ast.MethodConstructor|ast.MethodPrivate) && g.hasMarker(m.Class) {
		code.slot = g.names.slot(g.p, id)
	}
	return code, true
}

// fieldInits assigns the declared initializers of c's instance fields.
func (g *generator) fieldInits(c ast.ClassID) []js.Stmt {
	var out []js.Stmt
	for _, f := range g.p.Classes[c].Fields {
		fd := &g.p.Fields[f]
		if fd.Dead || fd.Is(ast.FieldStatic) || fd.Init == ast.NoExpr {
			continue
		}
		out = append(out, &js.ExprStmt{X: &js.Assign{
			Op: "=",
			X:  &js.Dot{X: &js.ThisRef{}, Prop: g.names.field(g.p, f)},
			Y:  g.expr(fd.Init),
		}})
	}
	return out
}

func (g *generator) staticFields(classes []ast.ClassID) []js.Stmt {
	var out []js.Stmt
	for _, c := range classes {
		for _, f := range g.p.Classes[c].Fields {
			fd := &g.p.Fields[f]
			if fd.Dead || !fd.Is(ast.FieldStatic) {
				continue
			}
			g.trail.Enter(g.p.FieldName(f))
			init := zero(fd.Type)
			if fd.Init != ast.NoExpr {
				init = g.expr(fd.Init)
			}
			out = append(out, &js.VarDecl{Name: g.names.field(g.p, f), Init: init})
			g.trail.Leave()
		}
	}
	return out
}

func (g *generator) splitPoints() ([]js.Stmt, []*js.SplitPoint) {
	if !g.opts.RunAsyncEnabled {
		return nil, nil
	}
	var stmts []js.Stmt
	var splits []*js.SplitPoint
	for i, cb := range g.p.SplitPoints {
		if g.p.Methods[cb].Dead {
			continue
		}
		fn := g.names.method(g.p, cb)
		register := &js.ExprStmt{X: &js.Call{
			Fn:   g.rt(js.RTRegisterAsync),
			Args: []js.Expr{&js.NumberLit{Value: float64(i + 1)}, &js.NameRef{Name: fn}},
		}}
		stmts = append(stmts, register)
		splits = append(splits, &js.SplitPoint{Index: i + 1, Callback: fn, Register: register})
	}
	return stmts, splits
}

func (g *generator) entries() []js.Stmt {
	var out []js.Stmt
	for _, m := range g.p.EntryPoints {
		if g.p.Methods[m].Dead {
			continue
		}
		out = append(out, &js.ExprStmt{X: &js.Call{Fn: &js.NameRef{Name: g.names.method(g.p, m)}}})
	}
	return out
}

// helpers declares the runtime functions the program uses, with their dependencies.
func (g *generator) helpers() ([]js.Stmt, error) {
	used := make([]string, 0, len(g.runtime))
	for name := range g.runtime {
		used = append(used, name)
	}
	slices.Sort(used)
	for _, name := range used {
		if _, ok := g.lib.Lookup(name); !ok {
			return nil, zerr.With(zerr.New("runtime helper missing from library"), "helper", name)
		}
	}
	var out []js.Stmt
	for _, f := range g.lib.Closure(used) {
		fn := &js.Func{Name: g.helper(f.Name), Native: f.Body}
		for _, param := range f.Params {
			fn.Params = append(fn.Params, js.Fixed(param, js.NameLocal))
		}
		for _, d := range f.Deps {
			fn.Deps = append(fn.Deps, g.helper(d))
		}
		out = append(out, &js.FuncDecl{Fn: fn})
	}
	return out, nil
}

// helper returns the name of runtime helper name and records that the program uses it.
func (g *generator) helper(name string) *js.Name {
	n, ok := g.runtime[name]
	if !ok {
		n = js.Fixed(name, js.NameGlobal)
		g.runtime[name] = n
	}
	return n
}

// rt returns a reference to runtime helper name.
func (g *generator) rt(name string) *js.NameRef {
	return &js.NameRef{Name: g.helper(name)}
}

// hostName references a global the host environment provides.
func (g *generator) hostName(name string) *js.NameRef {
	n, ok := g.host[name]
	if !ok {
		n = js.Fixed(name, js.NameGlobal)
		g.host[name] = n
	}
	return &js.NameRef{Name: n}
}

func (g *generator) local(l ast.LocalID) *js.Name {
	n, ok := g.locals[l]
	if !ok {
		n = js.NewLocal(identifier(g.p.Locals[l].Name))
		g.locals[l] = n
	}
	return n
}

func zero(t ast.TypeRef) js.Expr {
	switch {
	case t.IsReference():
		return &js.NullLit{}
	case t.Kind == ast.TypeBoolean:
		return &js.BoolLit{}
	case t.IsLong():
		return &js.BigIntLit{}
	default:
		return &js.NumberLit{}
	}
}

func invalid(what string) error {
	return fmt.Errorf("%s reached code generation", what)
}
