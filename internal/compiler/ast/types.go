// Package ast holds the source-semantics program tree.
//
// Every node lives in an arena slice on Program and is addressed by a typed index.
// Relations that would be back-pointers in a pointer graph (enclosing class, owning
// method, subtype sets) are indices or separate maps, so a Program is acyclic and
// serializes directly to CBOR.
package ast

import "strings"

// Index types. The value -1 means "none" for each of them.
type (
	ClassID  int32
	MethodID int32
	FieldID  int32
	LocalID  int32
	ExprID   int32
	StmtID   int32
)

const (
	NoClass  ClassID  = -1
	NoMethod MethodID = -1
	NoField  FieldID  = -1
	NoLocal  LocalID  = -1
	NoExpr   ExprID   = -1
	NoStmt   StmtID   = -1
)

// TypeKind is the closed set of static type shapes.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypeBoolean
	TypeByte
	TypeChar
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeNull
	TypeClass
)

var primitiveNames = [...]string{
	TypeVoid:    "void",
	TypeBoolean: "boolean",
	TypeByte:    "byte",
	TypeChar:    "char",
	TypeShort:   "short",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeNull:    "null",
}

// TypeRef is a static type: a primitive, the null type, or a class, each optionally
// wrapped in Dims array dimensions.
type TypeRef struct {
	_     struct{} `cbor:",toarray"`
	Kind  TypeKind
	Class ClassID
	Dims  int
}

// Prim returns the primitive (or void/null) type of kind k.
func Prim(k TypeKind) TypeRef {
	return TypeRef{Kind: k, Class: NoClass}
}

// ClassType returns the reference type of class c.
func ClassType(c ClassID) TypeRef {
	return TypeRef{Kind: TypeClass, Class: c}
}

// Array returns t with one more dimension.
func (t TypeRef) Array() TypeRef {
	t.Dims++
	return t
}

// Elem returns the component type of an array type.
func (t TypeRef) Elem() TypeRef {
	if t.Dims > 0 {
		t.Dims--
	}
	return t
}

// IsArray reports whether t has at least one dimension.
func (t TypeRef) IsArray() bool { return t.Dims > 0 }

// IsReference reports whether values of t are object references (or null).
func (t TypeRef) IsReference() bool {
	return t.Dims > 0 || t.Kind == TypeClass || t.Kind == TypeNull
}

// IsPrimitive reports whether t is a non-array primitive value type.
func (t TypeRef) IsPrimitive() bool {
	return t.Dims == 0 && t.Kind != TypeClass && t.Kind != TypeNull && t.Kind != TypeVoid
}

// IsLong reports whether t is the 64-bit integer type.
func (t TypeRef) IsLong() bool { return t.Dims == 0 && t.Kind == TypeLong }

// IsIntegral reports whether t is a 32-bit-or-narrower integer type.
func (t TypeRef) IsIntegral() bool {
	if t.Dims != 0 {
		return false
	}
	switch t.Kind {
	case TypeByte, TypeChar, TypeShort, TypeInt:
		return true
	default:
		return false
	}
}

// IsFloating reports whether t is float or double.
func (t TypeRef) IsFloating() bool {
	return t.Dims == 0 && (t.Kind == TypeFloat || t.Kind == TypeDouble)
}

// Same reports structural equality, ignoring the class index when the kind is not a class.
func (t TypeRef) Same(o TypeRef) bool {
	if t.Kind != o.Kind || t.Dims != o.Dims {
		return false
	}
	return t.Kind != TypeClass || t.Class == o.Class
}

// TypeString renders t in canonical source form, e.g. "int", "app.Foo[][]".
func (p *Program) TypeString(t TypeRef) string {
	var b strings.Builder
	if t.Kind == TypeClass {
		if t.Class >= 0 && int(t.Class) < len(p.Classes) {
			b.WriteString(p.Classes[t.Class].QualifiedName())
		} else {
			b.WriteString("?")
		}
	} else {
		b.WriteString(primitiveNames[t.Kind])
	}
	for range t.Dims {
		b.WriteString("[]")
	}
	return b.String()
}

// PrimitiveName returns the keyword of a primitive kind.
func PrimitiveName(k TypeKind) string {
	return primitiveNames[k]
}

// Promote applies binary numeric promotion: double, then float, then long, then int.
func Promote(a, b TypeRef) TypeRef {
	if !a.IsPrimitive() || !b.IsPrimitive() {
		return a
	}
	for _, k := range []TypeKind{TypeDouble, TypeFloat, TypeLong} {
		if a.Kind == k || b.Kind == k {
			return Prim(k)
		}
	}
	if a.Kind == TypeBoolean {
		return a
	}
	return Prim(TypeInt)
}
