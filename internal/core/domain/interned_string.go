package domain

import (
	"strings"
	"unique"
)

// QualifiedName is an interned dotted name such as "app.Outer.Inner".
// Equal names compare equal in O(1), which keeps the type registry and symbol tables cheap.
type QualifiedName struct {
	h unique.Handle[string]
}

// NewQualifiedName interns s.
func NewQualifiedName(s string) QualifiedName {
	return QualifiedName{h: unique.Make(s)}
}

// JoinName builds the qualified name of a nested type name inside pkg.
func JoinName(pkg, nested string) QualifiedName {
	if pkg == "" {
		return NewQualifiedName(nested)
	}
	return NewQualifiedName(pkg + "." + nested)
}

// String returns the underlying string value.
func (n QualifiedName) String() string {
	var zero unique.Handle[string]
	if n.h == zero {
		return ""
	}
	return n.h.Value()
}

// IsZero reports whether the name was never set.
func (n QualifiedName) IsZero() bool {
	var zero unique.Handle[string]
	return n.h == zero
}

// Simple returns the last dotted segment.
func (n QualifiedName) Simple() string {
	s := n.String()
	return s[strings.LastIndexByte(s, '.')+1:]
}

// MarshalText implements encoding.TextMarshaler.
func (n QualifiedName) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *QualifiedName) UnmarshalText(text []byte) error {
	n.h = unique.Make(string(text))
	return nil
}

// NewQualifiedNames interns every string in ss.
func NewQualifiedNames(ss []string) []QualifiedName {
	out := make([]QualifiedName, len(ss))
	for i, s := range ss {
		out[i] = NewQualifiedName(s)
	}
	return out
}
