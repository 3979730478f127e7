package codegen

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
)

// ElementKind tells which kind of source element an output name stands for.
type ElementKind uint8

const (
	ElementClass ElementKind = iota
	ElementMethod
	ElementField
	ElementSlot
)

func (k ElementKind) String() string {
	switch k {
	case ElementClass:
		return "class"
	case ElementMethod:
		return "method"
	case ElementField:
		return "field"
	case ElementSlot:
		return "slot"
	default:
		return "unknown"
	}
}

// Element identifies the source element behind an output name. Slot elements are the
// polymorphic method properties shared by every override of one signature.
type Element struct {
	Kind      ElementKind
	Class     ast.ClassID
	Method    ast.MethodID
	Field     ast.FieldID
	Signature string
}

// NameMap is the bidirectional map between source elements and output names. Names are
// shared pointers, so renaming never invalidates it.
type NameMap struct {
	classes map[ast.ClassID]*js.Name
	methods map[ast.MethodID]*js.Name
	fields  map[ast.FieldID]*js.Name
	slots   map[string]*js.Name
	source  map[*js.Name]Element
	order   []*js.Name
}

func newNameMap() *NameMap {
	return &NameMap{
		classes: make(map[ast.ClassID]*js.Name),
		methods: make(map[ast.MethodID]*js.Name),
		fields:  make(map[ast.FieldID]*js.Name),
		slots:   make(map[string]*js.Name),
		source:  make(map[*js.Name]Element),
	}
}

// Class returns the constructor marker of c.
func (m *NameMap) Class(c ast.ClassID) (*js.Name, bool) {
	n, ok := m.classes[c]
	return n, ok
}

// Method returns the function generated for method id.
func (m *NameMap) Method(id ast.MethodID) (*js.Name, bool) {
	n, ok := m.methods[id]
	return n, ok
}

// Field returns the global variable of a static field or the property of an instance field.
func (m *NameMap) Field(id ast.FieldID) (*js.Name, bool) {
	n, ok := m.fields[id]
	return n, ok
}

// Slot returns the polymorphic property for a method signature.
func (m *NameMap) Slot(sig string) (*js.Name, bool) {
	n, ok := m.slots[sig]
	return n, ok
}

// Source returns the element n was generated for.
func (m *NameMap) Source(n *js.Name) (Element, bool) {
	e, ok := m.source[n]
	return e, ok
}

// Names returns every mapped name in creation order.
func (m *NameMap) Names() []*js.Name {
	return m.order
}

func (m *NameMap) record(n *js.Name, e Element) *js.Name {
	m.source[n] = e
	m.order = append(m.order, n)
	return n
}

func (m *NameMap) class(p *ast.Program, c ast.ClassID) *js.Name {
	if n, ok := m.classes[c]; ok {
		return n
	}
	cls := &p.Classes[c]
	n := js.NewGlobal(cls.Ident(), cls.QualifiedName())
	n.Origin = js.Origin{Class: cls.QualifiedName(), File: cls.Source.File, Line: cls.Source.Line}
	m.classes[c] = n
	return m.record(n, Element{Kind: ElementClass, Class: c, Method: ast.NoMethod, Field: ast.NoField})
}

func (m *NameMap) method(p *ast.Program, id ast.MethodID) *js.Name {
	if n, ok := m.methods[id]; ok {
		return n
	}
	meth := &p.Methods[id]
	cls := &p.Classes[meth.Class]
	member := meth.Name
	if meth.Is(ast.MethodConstructor) {
		member = "init"
	}
	n := js.NewGlobal(cls.Ident()+"_"+identifier(member), p.MethodName(id))
	n.Origin = js.Origin{Class: cls.QualifiedName(), Member: p.Signature(id), File: meth.Source.File, Line: meth.Source.Line}
	m.methods[id] = n
	return m.record(n, Element{Kind: ElementMethod, Class: meth.Class, Method: id, Field: ast.NoField})
}

func (m *NameMap) field(p *ast.Program, id ast.FieldID) *js.Name {
	if n, ok := m.fields[id]; ok {
		return n
	}
	f := &p.Fields[id]
	cls := &p.Classes[f.Class]
	var n *js.Name
	if f.Is(ast.FieldStatic) {
		n = js.NewGlobal(cls.Ident()+"_"+identifier(f.Name), p.FieldName(id))
	} else {
		n = js.NewProperty(identifier(f.Name), p.FieldName(id))
	}
	n.Origin = js.Origin{Class: cls.QualifiedName(), Member: f.Name, File: f.Source.File, Line: f.Source.Line}
	m.fields[id] = n
	return m.record(n, Element{Kind: ElementField, Class: f.Class, Method: ast.NoMethod, Field: id})
}

func (m *NameMap) slot(p *ast.Program, id ast.MethodID) *js.Name {
	sig := p.Signature(id)
	if n, ok := m.slots[sig]; ok {
		return n
	}
	n := js.NewProperty(identifier(p.Methods[id].Name), sig)
	n.Origin = js.Origin{Member: sig}
	m.slots[sig] = n
	return m.record(n, Element{Kind: ElementSlot, Class: ast.NoClass, Method: ast.NoMethod, Field: ast.NoField, Signature: sig})
}

// identifier replaces every character that cannot appear in an output identifier.
func identifier(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9' && i > 0:
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
