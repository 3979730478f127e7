package js

// NameKind tells which namespace a name lives in.
type NameKind uint8

const (
	// NameGlobal is a top-level function or variable.
	NameGlobal NameKind = iota
	// NameLocal is a parameter or function-scoped variable.
	NameLocal
	// NameProperty is an object property: a polymorphic method slot or an instance field.
	NameProperty
)

func (k NameKind) String() string {
	switch k {
	case NameGlobal:
		return "global"
	case NameLocal:
		return "local"
	case NameProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Origin ties an output name back to the source element it was generated for.
type Origin struct {
	Class  string
	Member string
	File   string
	Line   int
}

// Name is an output identifier. Every reference to the same declaration shares one *Name,
// so renaming a Name renames every use at once.
type Name struct {
	// Ident is the readable base identifier, e.g. "app_Main_run".
	Ident string
	// Long is the fully qualified source form, e.g. "app.Main::run(int)".
	Long string
	// Short is the final identifier assigned by a naming strategy.
	Short string
	Kind  NameKind
	// Obfuscatable is false for names the runtime or the host environment depend on.
	Obfuscatable bool
	Origin       Origin
}

// NewGlobal returns an obfuscatable top-level name.
func NewGlobal(ident, long string) *Name {
	return &Name{Ident: ident, Long: long, Kind: NameGlobal, Obfuscatable: true}
}

// NewLocal returns an obfuscatable function-scoped name.
func NewLocal(ident string) *Name {
	return &Name{Ident: ident, Long: ident, Kind: NameLocal, Obfuscatable: true}
}

// NewProperty returns an obfuscatable property name.
func NewProperty(ident, long string) *Name {
	return &Name{Ident: ident, Long: long, Kind: NameProperty, Obfuscatable: true}
}

// Fixed returns a name that is never renamed.
func Fixed(ident string, kind NameKind) *Name {
	return &Name{Ident: ident, Long: ident, Short: ident, Kind: kind}
}

// String returns the identifier to emit.
func (n *Name) String() string {
	if n.Short != "" {
		return n.Short
	}
	return n.Ident
}

// Well-known host properties.
var (
	PropPrototype = Fixed("prototype", NameProperty)
	PropCall      = Fixed("call", NameProperty)
	PropLength    = Fixed("length", NameProperty)
)
