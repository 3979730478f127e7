package ast

import "strings"

// ClassFlags are class modifiers.
type ClassFlags uint16

const (
	ClassInterface ClassFlags = 1 << iota
	ClassAbstract
	ClassFinal
	// ClassOverlay marks a class whose instances are native output-language objects
	// without a prototype chain of their own, such as strings.
	ClassOverlay
)

// MethodFlags are method modifiers.
type MethodFlags uint16

const (
	MethodStatic MethodFlags = 1 << iota
	MethodPrivate
	MethodFinal
	MethodAbstract
	MethodNative
	MethodConstructor
)

// FieldFlags are field modifiers.
type FieldFlags uint16

const (
	FieldStatic FieldFlags = 1 << iota
	FieldFinal
	FieldPrivate
)

// LocalFlags are local variable modifiers.
type LocalFlags uint16

const (
	LocalParam LocalFlags = 1 << iota
	LocalFinal
)

// SourceRange locates a declaration in its compilation unit.
type SourceRange struct {
	_     struct{} `cbor:",toarray"`
	File  string
	Start int
	End   int
	Line  int
}

// Class is a class or interface declaration.
type Class struct {
	Package    string
	Name       string // nested name, e.g. "Outer.Inner"
	Flags      ClassFlags
	Super      ClassID
	Interfaces []ClassID
	Enclosing  ClassID
	Fields     []FieldID
	Methods    []MethodID
	Source     SourceRange
	// Decl is the declaration text the front end saw; the type registry hashes it.
	Decl []byte `cbor:",omitempty"`
	Dead bool   `cbor:",omitempty"`
}

// QualifiedName is the dotted package plus nested name.
func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Ident returns an identifier-safe form of the qualified name.
func (c *Class) Ident() string {
	return strings.ReplaceAll(c.QualifiedName(), ".", "_")
}

func (c *Class) Is(f ClassFlags) bool { return c.Flags&f != 0 }

// Method is a method or constructor declaration.
type Method struct {
	Name     string
	Class    ClassID
	Flags    MethodFlags
	Params   []LocalID
	Locals   []LocalID
	Return   TypeRef
	Body     StmtID
	Native   string   `cbor:",omitempty"` // output-language body of a native method
	TypeArgs []string `cbor:",omitempty"` // type-argument annotation of the return type
	Source   SourceRange
	Dead     bool `cbor:",omitempty"`
}

func (m *Method) Is(f MethodFlags) bool { return m.Flags&f != 0 }

// Field is a field declaration.
type Field struct {
	Name     string
	Class    ClassID
	Flags    FieldFlags
	Type     TypeRef
	Init     ExprID
	TypeArgs []string `cbor:",omitempty"`
	Source   SourceRange
	Dead     bool `cbor:",omitempty"`
}

func (f *Field) Is(fl FieldFlags) bool { return f.Flags&fl != 0 }

// Local is a local variable or parameter.
type Local struct {
	Name     string
	Method   MethodID
	Flags    LocalFlags
	Type     TypeRef
	TypeArgs []string `cbor:",omitempty"`
}

func (l *Local) Is(f LocalFlags) bool { return l.Flags&f != 0 }
