package typeinfo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultRoot is the qualified name of the root supertype anchor.
const DefaultRoot = "lang.Object"

var primitiveNames = []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "void"}

// TypeDecl is a front-end declaration handed to AddType. Type references are type expressions
// resolved during Refresh.
type TypeDecl struct {
	Package    string
	Name       string
	Interface  bool
	Modifiers  Modifier
	Super      string
	Interfaces []string
	Fields     []FieldDecl
	Methods    []MethodDecl
	Source     []byte
	Range      ast.SourceRange
	Decl       ast.ClassID
}

// FieldDecl declares a field.
type FieldDecl struct {
	Name      string
	Type      string
	Modifiers Modifier
	TypeArgs  []string
}

// ParamDecl declares a parameter.
type ParamDecl struct {
	Name     string
	Type     string
	TypeArgs []string
}

// MethodDecl declares a method or constructor.
type MethodDecl struct {
	Name        string
	Constructor bool
	Params      []ParamDecl
	Return      string
	Modifiers   Modifier
	TypeArgs    []string
}

// Package groups the declared types of one package by nested name.
type Package struct {
	Name  string
	types map[string]*Type
}

// RefreshReport summarizes a Refresh.
type RefreshReport struct {
	Types      int
	Linked     int
	Reconciled int
	Skipped    []string
}

// Registry owns a set of types. It is not safe for concurrent mutation; each permutation
// compile builds its own.
type Registry struct {
	types      []*Type
	packages   map[string]*Package
	primitives map[string]*Type
	interned   map[string]*Type
	subtypes   map[TypeID]map[TypeID]struct{}
	byClass    map[ast.ClassID]TypeID
	rootName   string
	root       TypeID
	stale      bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithRoot overrides the root supertype anchor.
func WithRoot(name string) Option {
	return func(r *Registry) { r.rootName = name }
}

// New returns a registry holding only the primitive types.
func New(opts ...Option) *Registry {
	r := &Registry{
		packages:   make(map[string]*Package),
		primitives: make(map[string]*Type, len(primitiveNames)),
		interned:   make(map[string]*Type),
		subtypes:   make(map[TypeID]map[TypeID]struct{}),
		byClass:    make(map[ast.ClassID]TypeID),
		rootName:   DefaultRoot,
		root:       NoType,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, n := range primitiveNames {
		t := r.alloc(&Type{Kind: KindPrimitive, Name: n, canonical: n})
		r.primitives[n] = t
	}
	return r
}

func (r *Registry) alloc(t *Type) *Type {
	t.ID = TypeID(len(r.types))
	t.Super, t.Enclosing, t.Component, t.Raw = NoType, NoType, NoType, NoType
	t.Decl = ast.NoClass
	r.types = append(r.types, t)
	return t
}

// Type returns the type with the given id.
func (r *Registry) Type(id TypeID) *Type {
	if id < 0 || int(id) >= len(r.types) {
		return nil
	}
	return r.types[id]
}

// Len is the number of types in the arena.
func (r *Registry) Len() int { return len(r.types) }

// Root returns the anchor resolved by the last Refresh.
func (r *Registry) Root() *Type { return r.Type(r.root) }

// Stale reports whether types were added since the last Refresh.
func (r *Registry) Stale() bool { return r.stale }

// Primitive returns the primitive type with the given keyword.
func (r *Registry) Primitive(name string) (*Type, bool) {
	t, ok := r.primitives[name]
	return t, ok
}

// AddType installs decl. When a type with the same qualified name exists and its content
// hash is unchanged, the existing object is kept and false is returned.
func (r *Registry) AddType(decl TypeDecl) bool {
	pkg := r.pkg(decl.Package)
	if existing, ok := pkg.types[decl.Name]; ok {
		if existing.ContentHash() == xxhash.Sum64(decl.Source) {
			return false
		}
		fresh := &Type{}
		r.fill(fresh, decl)
		fresh.ID = existing.ID
		fresh.Super, fresh.Enclosing, fresh.Component, fresh.Raw = NoType, NoType, NoType, NoType
		// Unchanged nested types are not resolved again and still point at this id.
		fresh.Nested = slices.Clone(existing.Nested)
		r.types[existing.ID] = fresh
		pkg.types[decl.Name] = fresh
		if decl.Decl != ast.NoClass {
			r.byClass[decl.Decl] = fresh.ID
		}
		r.stale = true
		return true
	}
	t := r.alloc(&Type{})
	r.fill(t, decl)
	t.Decl = decl.Decl
	pkg.types[decl.Name] = t
	if decl.Decl != ast.NoClass {
		r.byClass[decl.Decl] = t.ID
	}
	r.stale = true
	return true
}

func (r *Registry) fill(t *Type, decl TypeDecl) {
	t.Kind = KindClass
	if decl.Interface {
		t.Kind = KindInterface
	}
	t.Package, t.Name, t.Modifiers = decl.Package, decl.Name, decl.Modifiers
	t.Range, t.Decl = decl.Range, decl.Decl
	t.source = decl.Source
	t.canonical = domain.JoinName(decl.Package, decl.Name).String()
	d := decl
	t.pendingDecl = &d
}

func (r *Registry) pkg(name string) *Package {
	p, ok := r.packages[name]
	if !ok {
		p = &Package{Name: name, types: make(map[string]*Type)}
		r.packages[name] = p
	}
	return p
}

func (r *Registry) lookup(pkg, nested string) (*Type, bool) {
	p, ok := r.packages[pkg]
	if !ok {
		return nil, false
	}
	t, ok := p.types[nested]
	return t, ok
}

// FindType looks a declared type up by qualified name. Package and nested-type separators
// are both '.', so the full string is first tried as a package-less type, then split at each
// dot from the right, moving the split leftwards so that package prefixes shrink.
func (r *Registry) FindType(name string) (*Type, bool) {
	if t, ok := r.lookup("", name); ok {
		return t, true
	}
	for i := strings.LastIndexByte(name, '.'); i > 0; i = strings.LastIndexByte(name[:i], '.') {
		if t, ok := r.lookup(name[:i], name[i+1:]); ok {
			return t, true
		}
	}
	return nil, false
}

// GetType is FindType for callers that require the type to exist.
func (r *Registry) GetType(name string) (*Type, error) {
	if t, ok := r.FindType(name); ok {
		return t, nil
	}
	if t, ok := r.primitives[name]; ok {
		return t, nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrTypeNotFound, "no such type"), "type", name)
}

// ForClass maps a source-tree class to its registry type.
func (r *Registry) ForClass(c ast.ClassID) (*Type, bool) {
	id, ok := r.byClass[c]
	if !ok {
		return nil, false
	}
	return r.types[id], true
}

// GetArrayType returns the interned array type with the given component.
func (r *Registry) GetArrayType(component *Type) (*Type, error) {
	if component.Kind == KindPrimitive && component.Name == "void" {
		return nil, zerr.Wrap(domain.ErrInvalidTypeExpression, "array of void")
	}
	sig := component.canonical + "[]"
	if t, ok := r.interned[sig]; ok {
		return t, nil
	}
	t := r.alloc(&Type{Kind: KindArray, Name: sig, canonical: sig})
	t.Component = component.ID
	r.interned[sig] = t
	return t, nil
}

// GetParameterizedType returns the interned instantiation of raw with args.
func (r *Registry) GetParameterizedType(raw *Type, args []*Type) (*Type, error) {
	if !raw.IsDeclared() {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTypeExpression, "raw type must be a class or interface"),
			"raw", raw.canonical)
	}
	if len(args) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTypeExpression, "missing type arguments"), "raw", raw.canonical)
	}
	names := make([]string, len(args))
	ids := make([]TypeID, len(args))
	for i, a := range args {
		if a.Kind == KindPrimitive {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTypeExpression, "primitive type argument"),
				"argument", a.canonical)
		}
		names[i], ids[i] = a.canonical, a.ID
	}
	sig := raw.canonical + "<" + strings.Join(names, ",") + ">"
	if t, ok := r.interned[sig]; ok {
		return t, nil
	}
	t := r.alloc(&Type{Kind: KindParameterized, Name: sig, canonical: sig})
	t.Raw, t.Args = raw.ID, ids
	r.interned[sig] = t
	return t, nil
}

// Parse resolves a type expression such as "int", "app.Foo[][]" or "util.Map<lang.String,app.Foo>".
func (r *Registry) Parse(expr string) (*Type, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, zerr.Wrap(domain.ErrInvalidTypeExpression, "empty type expression")
	}
	if strings.HasSuffix(s, "[]") {
		comp, err := r.Parse(s[:len(s)-2])
		if err != nil {
			return nil, err
		}
		return r.GetArrayType(comp)
	}
	if strings.HasSuffix(s, ">") {
		open := matchingOpen(s)
		if open <= 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTypeExpression, "unbalanced type arguments"), "expr", s)
		}
		raw, err := r.Parse(s[:open])
		if err != nil {
			return nil, err
		}
		if raw.Kind == KindParameterized {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTypeExpression, "raw type is already parameterized"), "expr", s)
		}
		var args []*Type
		for _, a := range splitArgs(s[open+1 : len(s)-1]) {
			at, err := r.Parse(a)
			if err != nil {
				return nil, err
			}
			args = append(args, at)
		}
		return r.GetParameterizedType(raw, args)
	}
	if t, ok := r.primitives[s]; ok {
		return t, nil
	}
	if t, ok := r.FindType(s); ok {
		return t, nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrTypeNotFound, "unknown type in expression"), "type", s)
}

// matchingOpen returns the index of the '<' matching the final '>' of s.
func matchingOpen(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitArgs splits a type-argument list at top-level commas.
func splitArgs(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// Refresh resolves the root anchor, links pending declarations, rebuilds the subtype sets
// with one notify-ancestors traversal and reconciles type-argument annotations. Problems with
// a single member are logged and skipped; only a missing root fails.
func (r *Registry) Refresh(logger ports.Logger) (RefreshReport, error) {
	root, ok := r.FindType(r.rootName)
	if !ok {
		return RefreshReport{}, zerr.With(zerr.Wrap(domain.ErrRootTypeMissing, "cannot refresh type registry"),
			"root", r.rootName)
	}
	r.root = root.ID

	report := RefreshReport{}
	for _, t := range r.types {
		if t.pendingDecl != nil {
			r.link(t, logger, &report)
			report.Linked++
		}
	}

	r.subtypes = make(map[TypeID]map[TypeID]struct{}, len(r.types))
	for _, t := range r.types {
		if t.IsDeclared() {
			report.Types++
			r.notifyAncestors(t, t.ID)
		}
	}

	r.reconcileTypeArgs(logger, &report)
	r.stale = false
	return report, nil
}

// notifyAncestors records descendant in the subtype set of every ancestor of t.
func (r *Registry) notifyAncestors(t *Type, descendant TypeID) {
	for _, parent := range r.directSupers(t) {
		set, ok := r.subtypes[parent]
		if !ok {
			set = make(map[TypeID]struct{})
			r.subtypes[parent] = set
		}
		if _, seen := set[descendant]; seen {
			continue
		}
		set[descendant] = struct{}{}
		r.notifyAncestors(r.types[parent], descendant)
	}
}

func (r *Registry) directSupers(t *Type) []TypeID {
	out := make([]TypeID, 0, 1+len(t.Interfaces))
	if t.Super != NoType {
		out = append(out, t.Super)
	}
	return append(out, t.Interfaces...)
}

func (r *Registry) link(t *Type, logger ports.Logger, report *RefreshReport) {
	decl := t.pendingDecl
	t.pendingDecl = nil
	skip := func(what string, err error) {
		msg := fmt.Sprintf("skipping %s of %s: %v", what, t.canonical, err)
		report.Skipped = append(report.Skipped, msg)
		if logger != nil {
			logger.Warn(msg)
		}
	}

	t.Super = NoType
	if decl.Super != "" {
		if st, err := r.Parse(decl.Super); err != nil {
			skip("superclass "+decl.Super, err)
		} else {
			t.Super = st.ID
		}
	}
	if t.Super == NoType && t.ID != r.root && t.Kind == KindClass {
		t.Super = r.root
	}
	t.Interfaces = t.Interfaces[:0]
	for _, in := range decl.Interfaces {
		it, err := r.Parse(in)
		if err != nil {
			skip("interface "+in, err)
			continue
		}
		t.Interfaces = append(t.Interfaces, it.ID)
	}

	if i := strings.LastIndexByte(t.Name, '.'); i > 0 {
		if outer, ok := r.lookup(t.Package, t.Name[:i]); ok {
			t.Enclosing = outer.ID
			if !slices.Contains(outer.Nested, t.ID) {
				outer.Nested = append(outer.Nested, t.ID)
			}
		}
	}

	t.fields, t.fieldOrder, t.methods, t.ctors = nil, nil, nil, nil
	for _, fd := range decl.Fields {
		ft, err := r.Parse(fd.Type)
		if err != nil {
			skip("field "+fd.Name, err)
			continue
		}
		t.addField(&Field{Name: fd.Name, Type: ft.ID, Modifiers: fd.Modifiers, Enclosing: t.ID, typeArgs: fd.TypeArgs})
	}
	for _, md := range decl.Methods {
		m, err := r.linkMethod(t, md)
		if err != nil {
			skip("method "+md.Name, err)
			continue
		}
		t.addMethod(m)
	}
}

func (r *Registry) linkMethod(t *Type, md MethodDecl) (*Method, error) {
	m := &Method{
		Name:        md.Name,
		Modifiers:   md.Modifiers,
		Constructor: md.Constructor,
		Enclosing:   t.ID,
		Return:      r.primitives["void"].ID,
		typeArgs:    md.TypeArgs,
	}
	if md.Return != "" {
		rt, err := r.Parse(md.Return)
		if err != nil {
			return nil, err
		}
		m.Return = rt.ID
	}
	for _, pd := range md.Params {
		pt, err := r.Parse(pd.Type)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, Parameter{Name: pd.Name, Type: pt.ID, typeArgs: pd.TypeArgs})
	}
	return m, nil
}

// reconcileTypeArgs retrofits type-argument annotations onto already linked member types.
func (r *Registry) reconcileTypeArgs(logger ports.Logger, report *RefreshReport) {
	apply := func(owner *Type, member string, id *TypeID, args *[]string) {
		if len(*args) == 0 {
			return
		}
		pending := *args
		*args = nil
		pt, err := r.parameterize(r.types[*id], pending)
		if err != nil {
			msg := fmt.Sprintf("skipping type arguments of %s.%s: %v", owner.canonical, member, err)
			report.Skipped = append(report.Skipped, msg)
			if logger != nil {
				logger.Warn(msg)
			}
			return
		}
		*id = pt.ID
		report.Reconciled++
	}
	for _, t := range r.types {
		if !t.IsDeclared() {
			continue
		}
		for _, f := range t.Fields() {
			apply(t, f.Name, &f.Type, &f.typeArgs)
		}
		for _, name := range t.MethodNames() {
			for _, m := range t.methods[name] {
				apply(t, m.Name, &m.Return, &m.typeArgs)
				for i := range m.Params {
					apply(t, m.Name+"#"+m.Params[i].Name, &m.Params[i].Type, &m.Params[i].typeArgs)
				}
			}
		}
	}
}

func (r *Registry) parameterize(raw *Type, args []string) (*Type, error) {
	types := make([]*Type, 0, len(args))
	for _, a := range args {
		at, err := r.Parse(a)
		if err != nil {
			return nil, err
		}
		types = append(types, at)
	}
	return r.GetParameterizedType(raw, types)
}
