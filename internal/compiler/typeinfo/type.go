// Package typeinfo implements the type registry: stable type identity, interned array and
// parameterized types, type-expression parsing and O(1) hierarchy queries after Refresh.
package typeinfo

import (
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/permc/internal/compiler/ast"
)

// TypeID addresses a type in a registry arena.
type TypeID int32

// NoType is the absent TypeID.
const NoType TypeID = -1

// Kind is the shape of a type.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindClass
	KindInterface
	KindArray
	KindParameterized
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindArray:
		return "array"
	case KindParameterized:
		return "parameterized"
	default:
		return "unknown"
	}
}

// Modifier is a declaration modifier bit set.
type Modifier uint16

const (
	ModAbstract Modifier = 1 << iota
	ModFinal
	ModStatic
	ModPrivate
	ModNative
)

// Type is one registry entry. Within one registry, equal names, equal array components and
// equal raw/argument pairs always map to the same *Type.
type Type struct {
	ID         TypeID
	Kind       Kind
	Package    string
	Name       string
	Modifiers  Modifier
	Super      TypeID
	Interfaces []TypeID
	Enclosing  TypeID
	Nested     []TypeID
	Component  TypeID
	Raw        TypeID
	Args       []TypeID
	Decl       ast.ClassID
	Range      ast.SourceRange

	fields      map[string]*Field
	fieldOrder  []string
	methods     map[string][]*Method
	ctors       []*Method
	source      []byte
	hash        uint64
	hashed      bool
	canonical   string
	pendingDecl *TypeDecl
}

// Field is a field of a declared type.
type Field struct {
	Name      string
	Type      TypeID
	Modifiers Modifier
	Enclosing TypeID

	typeArgs []string
}

// Parameter is a method parameter.
type Parameter struct {
	Name string
	Type TypeID

	typeArgs []string
}

// Method is a method or constructor of a declared type.
type Method struct {
	Name        string
	Params      []Parameter
	Return      TypeID
	Modifiers   Modifier
	Constructor bool
	Enclosing   TypeID

	typeArgs []string
}

// QualifiedName returns the dotted package and nested name, or the canonical form for
// arrays, parameterized types and primitives.
func (t *Type) QualifiedName() string {
	return t.canonical
}

// IsReference reports whether values of t are object references.
func (t *Type) IsReference() bool {
	return t.Kind != KindPrimitive
}

// IsDeclared reports whether t came from a declaration rather than interning.
func (t *Type) IsDeclared() bool {
	return t.Kind == KindClass || t.Kind == KindInterface
}

// ContentHash is the xxhash of the declaration source, computed on first use.
func (t *Type) ContentHash() uint64 {
	if !t.hashed {
		t.hash = xxhash.Sum64(t.source)
		t.hashed = true
	}
	return t.hash
}

// Field looks up a field by name.
func (t *Type) Field(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Fields returns the fields in declaration order.
func (t *Type) Fields() []*Field {
	out := make([]*Field, 0, len(t.fieldOrder))
	for _, n := range t.fieldOrder {
		out = append(out, t.fields[n])
	}
	return out
}

// Methods returns the overloads of name in declaration order.
func (t *Type) Methods(name string) []*Method {
	return t.methods[name]
}

// MethodNames returns the sorted method names.
func (t *Type) MethodNames() []string {
	names := make([]string, 0, len(t.methods))
	for n := range t.methods {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Constructors returns the constructors in declaration order.
func (t *Type) Constructors() []*Method {
	return t.ctors
}

func (t *Type) addField(f *Field) {
	if t.fields == nil {
		t.fields = make(map[string]*Field)
	}
	if _, dup := t.fields[f.Name]; !dup {
		t.fieldOrder = append(t.fieldOrder, f.Name)
	}
	t.fields[f.Name] = f
}

func (t *Type) addMethod(m *Method) {
	if m.Constructor {
		t.ctors = append(t.ctors, m)
		return
	}
	if t.methods == nil {
		t.methods = make(map[string][]*Method)
	}
	t.methods[m.Name] = append(t.methods[m.Name], m)
}
