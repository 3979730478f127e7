package typeinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func decl(pkg, name, super string, src string) typeinfo.TypeDecl {
	return typeinfo.TypeDecl{Package: pkg, Name: name, Super: super, Source: []byte(src), Decl: -1}
}

func newRegistry(t *testing.T) *typeinfo.Registry {
	t.Helper()
	r := typeinfo.New()
	r.AddType(decl("lang", "Object", "", "class Object"))
	r.AddType(decl("lang", "String", "", "class String"))
	r.AddType(typeinfo.TypeDecl{Package: "util", Name: "List", Interface: true, Source: []byte("interface List"), Decl: -1})
	r.AddType(decl("app", "A", "", "class A"))
	r.AddType(decl("app", "B", "app.A", "class B extends A"))
	r.AddType(decl("app", "C", "app.B", "class C extends B"))
	_, err := r.Refresh(nil)
	require.NoError(t, err)
	return r
}

func mustType(t *testing.T, r *typeinfo.Registry, name string) *typeinfo.Type {
	t.Helper()
	typ, err := r.GetType(name)
	require.NoError(t, err)
	return typ
}

func TestIdentity(t *testing.T) {
	r := newRegistry(t)

	a1, a2 := mustType(t, r, "app.A"), mustType(t, r, "app.A")
	assert.Same(t, a1, a2)

	arr1, err := r.GetArrayType(a1)
	require.NoError(t, err)
	arr2, err := r.GetArrayType(a2)
	require.NoError(t, err)
	assert.Same(t, arr1, arr2)

	list := mustType(t, r, "util.List")
	p1, err := r.GetParameterizedType(list, []*typeinfo.Type{a1})
	require.NoError(t, err)
	p2, err := r.GetParameterizedType(list, []*typeinfo.Type{a2})
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestHierarchyTransitivity(t *testing.T) {
	r := newRegistry(t)
	a, b, c := mustType(t, r, "app.A"), mustType(t, r, "app.B"), mustType(t, r, "app.C")

	subs := r.Subtypes(a)
	assert.Contains(t, subs, b)
	assert.Contains(t, subs, c)
	assert.NotContains(t, r.Subtypes(c), a)

	assert.True(t, r.IsAssignableFrom(a, b))
	assert.False(t, r.IsAssignableFrom(b, a))
	assert.True(t, r.IsSubtypeOf(c, a))
	assert.True(t, r.IsAssignableFrom(r.Root(), c))

	supers := r.Supertypes(c)
	require.Len(t, supers, 3)
	assert.Equal(t, []string{"app.B", "app.A", "lang.Object"},
		[]string{supers[0].QualifiedName(), supers[1].QualifiedName(), supers[2].QualifiedName()})
}

func TestArrayAssignability(t *testing.T) {
	r := newRegistry(t)
	a, b := mustType(t, r, "app.A"), mustType(t, r, "app.B")
	aArr, _ := r.GetArrayType(a)
	bArr, _ := r.GetArrayType(b)
	intT, _ := r.Primitive("int")
	intArr, _ := r.GetArrayType(intT)

	assert.True(t, r.IsAssignableFrom(aArr, bArr))
	assert.False(t, r.IsAssignableFrom(bArr, aArr))
	assert.False(t, r.IsAssignableFrom(aArr, intArr))
	assert.True(t, r.IsAssignableFrom(r.Root(), intArr))
	assert.False(t, r.IsAssignableFrom(intT, a))
}

func TestParseRoundTrip(t *testing.T) {
	r := newRegistry(t)
	a := mustType(t, r, "app.A")
	str := mustType(t, r, "lang.String")
	list := mustType(t, r, "util.List")
	intT, _ := r.Primitive("int")
	intArr, _ := r.GetArrayType(intT)
	int2D, _ := r.GetArrayType(intArr)
	aArr, _ := r.GetArrayType(a)
	listOfStr, err := r.GetParameterizedType(list, []*typeinfo.Type{str})
	require.NoError(t, err)

	for _, typ := range []*typeinfo.Type{intT, a, intArr, int2D, aArr, listOfStr} {
		t.Run(typ.QualifiedName(), func(t *testing.T) {
			parsed, err := r.Parse(typ.QualifiedName())
			require.NoError(t, err)
			assert.Same(t, typ, parsed)
		})
	}
}

func TestParseParameterized(t *testing.T) {
	r := typeinfo.New(typeinfo.WithRoot("Object"))
	r.AddType(decl("", "Object", "", "class Object"))
	r.AddType(decl("", "String", "", "class String"))
	r.AddType(typeinfo.TypeDecl{Name: "List", Interface: true, Source: []byte("interface List"), Decl: -1})
	_, err := r.Refresh(nil)
	require.NoError(t, err)

	typ, err := r.Parse("List<String>")
	require.NoError(t, err)
	assert.Equal(t, typeinfo.KindParameterized, typ.Kind)
	assert.Same(t, mustType(t, r, "List"), r.Type(typ.Raw))
	require.Len(t, typ.Args, 1)
	assert.Same(t, mustType(t, r, "String"), r.Type(typ.Args[0]))
}

func TestParseErrors(t *testing.T) {
	r := newRegistry(t)
	tests := map[string]error{
		"":                         domain.ErrInvalidTypeExpression,
		"app.Missing":              domain.ErrTypeNotFound,
		"util.List<int>":           domain.ErrInvalidTypeExpression,
		"int<lang.String>":         domain.ErrInvalidTypeExpression,
		"app.A[]<lang.String>":     domain.ErrInvalidTypeExpression,
		"util.List<app.A><app.A>":  domain.ErrInvalidTypeExpression,
		"util.List<lang.String":    domain.ErrTypeNotFound,
		"void[]":                   domain.ErrInvalidTypeExpression,
		"util.List<lang.String>>":  domain.ErrInvalidTypeExpression,
	}
	for expr, want := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := r.Parse(expr)
			assert.ErrorIs(t, err, want)
		})
	}
}

func TestReplacedTypeKeepsNestedTypes(t *testing.T) {
	r := typeinfo.New()
	r.AddType(decl("lang", "Object", "", "class Object"))
	r.AddType(decl("com.acme", "Outer", "", "class Outer"))
	r.AddType(decl("com.acme", "Outer.Inner", "", "class Inner"))
	_, err := r.Refresh(nil)
	require.NoError(t, err)
	inner := mustType(t, r, "com.acme.Outer.Inner")

	require.True(t, r.AddType(decl("com.acme", "Outer", "", "class Outer { int x; }")))
	_, err = r.Refresh(nil)
	require.NoError(t, err)

	outer := mustType(t, r, "com.acme.Outer")
	assert.Equal(t, []typeinfo.TypeID{inner.ID}, outer.Nested)
	assert.Equal(t, outer.ID, mustType(t, r, "com.acme.Outer.Inner").Enclosing)
}

func TestNestedLookupBacktracks(t *testing.T) {
	r := typeinfo.New()
	r.AddType(decl("lang", "Object", "", "class Object"))
	r.AddType(decl("com.acme", "Outer", "", "class Outer"))
	r.AddType(decl("com.acme", "Outer.Inner", "", "class Inner"))
	r.AddType(decl("com.acme", "Outer.Inner.Deep", "", "class Deep"))
	_, err := r.Refresh(nil)
	require.NoError(t, err)

	deep, ok := r.FindType("com.acme.Outer.Inner.Deep")
	require.True(t, ok)
	assert.Equal(t, "Outer.Inner.Deep", deep.Name)
	assert.Equal(t, "com.acme", deep.Package)

	inner, ok := r.FindType("com.acme.Outer.Inner")
	require.True(t, ok)
	assert.Equal(t, inner.ID, deep.Enclosing)
	assert.Contains(t, inner.Nested, deep.ID)

	_, ok = r.FindType("com.acme.Nope")
	assert.False(t, ok)

	_, err = r.GetType("com.acme.Nope")
	assert.ErrorIs(t, err, domain.ErrTypeNotFound)
}

func TestRefreshWithoutRoot(t *testing.T) {
	r := typeinfo.New()
	r.AddType(decl("app", "A", "", "class A"))

	_, err := r.Refresh(nil)
	assert.ErrorIs(t, err, domain.ErrRootTypeMissing)
}

func TestAddTypeKeepsIdentityWhenUnchanged(t *testing.T) {
	r := newRegistry(t)
	before := mustType(t, r, "app.B")

	assert.False(t, r.AddType(decl("app", "B", "app.A", "class B extends A")))
	assert.False(t, r.Stale())
	assert.Same(t, before, mustType(t, r, "app.B"))

	assert.True(t, r.AddType(decl("app", "B", "lang.Object", "class B")))
	assert.True(t, r.Stale())
	after := mustType(t, r, "app.B")
	assert.NotSame(t, before, after)
	assert.Equal(t, before.ID, after.ID)

	_, err := r.Refresh(nil)
	require.NoError(t, err)
	assert.False(t, r.IsAssignableFrom(mustType(t, r, "app.A"), after))
	assert.False(t, r.IsAssignableFrom(mustType(t, r, "app.A"), mustType(t, r, "app.C")))
}

func TestRefreshReconcilesTypeArgs(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(2)

	r := typeinfo.New()
	r.AddType(decl("lang", "Object", "", "class Object"))
	r.AddType(decl("lang", "String", "", "class String"))
	r.AddType(typeinfo.TypeDecl{Package: "util", Name: "List", Interface: true, Source: []byte("interface List"), Decl: -1})
	r.AddType(typeinfo.TypeDecl{
		Package: "app", Name: "Holder", Source: []byte("class Holder"), Decl: -1,
		Fields: []typeinfo.FieldDecl{
			{Name: "names", Type: "util.List", TypeArgs: []string{"lang.String"}},
			{Name: "broken", Type: "util.List", TypeArgs: []string{"int"}},
			{Name: "ghost", Type: "app.Missing"},
		},
		Methods: []typeinfo.MethodDecl{
			{Name: "names", Return: "util.List", TypeArgs: []string{"lang.String"}},
			{Name: "<init>", Constructor: true},
		},
	})

	report, err := r.Refresh(logger)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Reconciled)
	assert.Len(t, report.Skipped, 2)

	holder := mustType(t, r, "app.Holder")
	names, ok := holder.Field("names")
	require.True(t, ok)
	assert.Equal(t, "util.List<lang.String>", r.Type(names.Type).QualifiedName())

	broken, ok := holder.Field("broken")
	require.True(t, ok)
	assert.Equal(t, "util.List", r.Type(broken.Type).QualifiedName())

	_, ok = holder.Field("ghost")
	assert.False(t, ok)
	require.Len(t, holder.Methods("names"), 1)
	assert.Equal(t, "util.List<lang.String>", r.Type(holder.Methods("names")[0].Return).QualifiedName())
	assert.Len(t, holder.Constructors(), 1)
	assert.Len(t, holder.Fields(), 2)
}

func TestContentHashIsStable(t *testing.T) {
	r := newRegistry(t)
	a := mustType(t, r, "app.A")

	assert.Equal(t, a.ContentHash(), a.ContentHash())
	assert.NotEqual(t, a.ContentHash(), mustType(t, r, "app.B").ContentHash())
}
