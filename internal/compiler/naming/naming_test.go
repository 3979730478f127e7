package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/naming"
	"go.trai.ch/permc/internal/core/domain"
)

type sample struct {
	prog          *js.Program
	instanceOf    *js.Name
	bar, baz      *js.Name
	count         *js.Name
	a, b, tmp, a2 *js.Name
}

// newSample builds:
//
//	function $instanceOf(x, t) { native }
//	function app_Foo_bar(a, b) { var tmp = a; this.count = b; return tmp + b + "hi"; }
//	function app_Foo_baz(a) { return app_Foo_bar(a, 2) + "hi"; }
//	app_Foo_baz(1);
func newSample() *sample {
	s := &sample{
		instanceOf: js.Fixed(js.RTInstanceOf, js.NameGlobal),
		bar:        js.NewGlobal("app_Foo_bar", "app.Foo::bar(int,int)"),
		baz:        js.NewGlobal("app_Foo_baz", "app.Foo::baz(int)"),
		count:      js.NewProperty("count", "app.Foo.count"),
		a:          js.NewLocal("a"),
		b:          js.NewLocal("b"),
		tmp:        js.NewLocal("tmp"),
		a2:         js.NewLocal("a"),
	}
	ref := func(n *js.Name) *js.NameRef { return &js.NameRef{Name: n} }
	helper := &js.Func{
		Name:   s.instanceOf,
		Params: []*js.Name{js.Fixed("x", js.NameLocal), js.Fixed("t", js.NameLocal)},
		Native: "return x instanceof t;",
	}
	bar := &js.Func{
		Name:   s.bar,
		Params: []*js.Name{s.a, s.b},
		Body: []js.Stmt{
			&js.VarDecl{Name: s.tmp, Init: ref(s.a)},
			&js.ExprStmt{X: &js.Assign{Op: "=", X: &js.Dot{X: &js.ThisRef{}, Prop: s.count}, Y: ref(s.b)}},
			&js.Return{X: &js.Binary{Op: "+", X: &js.Binary{Op: "+", X: ref(s.tmp), Y: ref(s.b)}, Y: &js.StringLit{Value: "hi"}}},
		},
	}
	baz := &js.Func{
		Name:   s.baz,
		Params: []*js.Name{s.a2},
		Body: []js.Stmt{&js.Return{X: &js.Binary{
			Op: "+",
			X:  &js.Call{Fn: ref(s.bar), Args: []js.Expr{ref(s.a2), &js.NumberLit{Value: 2}}},
			Y:  &js.StringLit{Value: "hi"},
		}}},
	}
	entry := &js.ExprStmt{X: &js.Call{Fn: ref(s.baz), Args: []js.Expr{&js.NumberLit{Value: 1}}}}
	s.prog = &js.Program{
		Stmts:   []js.Stmt{&js.FuncDecl{Fn: helper}, &js.FuncDecl{Fn: bar}, &js.FuncDecl{Fn: baz}, entry},
		Entries: []js.Stmt{entry},
	}
	return s
}

func TestFor(t *testing.T) {
	tests := []struct {
		mode domain.OutputMode
		want domain.OutputMode
	}{
		{"OBFUSCATED", domain.OutputModeObfuscated},
		{"pretty", domain.OutputModePretty},
		{"Detailed", domain.OutputModeDetailed},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			s, err := naming.For(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Mode())
		})
	}

	_, err := naming.For("SHORT")
	require.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestObfuscated(t *testing.T) {
	s := newSample()
	stats := naming.Obfuscated{}.Apply(s.prog)

	assert.Equal(t, 1, stats.Interned)
	decl, ok := s.prog.Stmts[0].(*js.VarDecl)
	require.True(t, ok)
	assert.Equal(t, &js.StringLit{Value: "hi"}, decl.Init)

	// The interned string has three uses, the functions two each.
	assert.Equal(t, "a", decl.Name.String())
	assert.Equal(t, "b", s.bar.String())
	assert.Equal(t, "c", s.baz.String())
	assert.Equal(t, js.RTInstanceOf, s.instanceOf.String())
	assert.Equal(t, "a", s.count.String())

	// Locals of bar avoid a and b, the globals bar refers to; b is its most used local.
	assert.Equal(t, []string{"c", "d", "e"}, []string{s.b.String(), s.a.String(), s.tmp.String()})
	// baz refers to a, b and c.
	assert.Equal(t, "d", s.a2.String())
}

func TestObfuscatedReplacesRepeatedLiterals(t *testing.T) {
	s := newSample()
	naming.Obfuscated{}.Apply(s.prog)

	var literals int
	for _, st := range s.prog.Stmts[1:] {
		js.Walk(st, func(n js.Node) bool {
			if _, ok := n.(*js.StringLit); ok {
				literals++
			}
			return true
		})
	}
	assert.Zero(t, literals)
}

func TestObfuscatedIsDeterministic(t *testing.T) {
	first, second := newSample(), newSample()
	naming.Obfuscated{}.Apply(first.prog)
	naming.Obfuscated{}.Apply(second.prog)

	assert.Equal(t, first.bar.String(), second.bar.String())
	assert.Equal(t, first.tmp.String(), second.tmp.String())
}

func TestPretty(t *testing.T) {
	s := newSample()
	clash := js.NewGlobal("app_Foo_bar", "app.Other::bar()")
	reserved := js.NewLocal("new")
	s.prog.Stmts = append(s.prog.Stmts,
		&js.FuncDecl{Fn: &js.Func{Name: clash, Params: []*js.Name{reserved}, Body: []js.Stmt{&js.Return{X: &js.NameRef{Name: reserved}}}}})

	stats := naming.Pretty{}.Apply(s.prog)

	assert.Zero(t, stats.Interned)
	assert.Equal(t, "app_Foo_bar", s.bar.String())
	assert.Equal(t, "app_Foo_bar_1", clash.String())
	assert.Equal(t, "new_1", reserved.String())
	assert.Equal(t, "tmp", s.tmp.String())
	assert.Equal(t, "count", s.count.String())
	_, interned := s.prog.Stmts[0].(*js.VarDecl)
	assert.False(t, interned)
}

func TestPrettyLocalsAvoidReferencedGlobals(t *testing.T) {
	global := js.NewGlobal("total", "app.Main.total")
	local := js.NewLocal("total")
	fn := &js.Func{
		Name:   js.NewGlobal("f", "app.Main::f(int)"),
		Params: []*js.Name{local},
		Body: []js.Stmt{&js.Return{X: &js.Binary{
			Op: "+", X: &js.NameRef{Name: local}, Y: &js.NameRef{Name: global},
		}}},
	}
	prog := &js.Program{Stmts: []js.Stmt{&js.VarDecl{Name: global, Init: &js.NumberLit{}}, &js.FuncDecl{Fn: fn}}}

	naming.Pretty{}.Apply(prog)

	assert.Equal(t, "total", global.String())
	assert.Equal(t, "total_1", local.String())
}

func TestDetailed(t *testing.T) {
	s := newSample()
	naming.Detailed{}.Apply(s.prog)

	assert.Equal(t, "app_Foo__bar__int_int", s.bar.String())
	assert.Equal(t, "app_Foo__baz__int", s.baz.String())
	assert.Equal(t, "app_Foo_count", s.count.String())
	assert.Equal(t, "tmp", s.tmp.String())
	assert.Equal(t, js.RTInstanceOf, s.instanceOf.String())
}
