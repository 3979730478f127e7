package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/split"
)

type builder struct {
	prog  *js.Program
	names map[js.Stmt]string
}

func newBuilder() *builder {
	return &builder{prog: &js.Program{}, names: make(map[js.Stmt]string)}
}

func (b *builder) add(label string, s js.Stmt) js.Stmt {
	b.prog.Stmts = append(b.prog.Stmts, s)
	b.names[s] = label
	return s
}

func (b *builder) fn(name *js.Name, calls ...*js.Name) {
	f := &js.Func{Name: name}
	for _, c := range calls {
		f.Body = append(f.Body, call(c))
	}
	b.add(name.Ident, &js.FuncDecl{Fn: f})
}

func (b *builder) register(i int, cb, helper *js.Name) {
	s := b.add("register"+cb.Ident, &js.ExprStmt{X: &js.Call{
		Fn:   &js.NameRef{Name: helper},
		Args: []js.Expr{&js.NumberLit{Value: float64(i)}, &js.NameRef{Name: cb}},
	}})
	b.prog.Splits = append(b.prog.Splits, &js.SplitPoint{Index: i, Callback: cb, Register: s})
}

func (b *builder) labels(f split.Fragment) []string {
	out := make([]string, 0, len(f.Stmts))
	for _, s := range f.Stmts {
		out = append(out, b.names[s])
	}
	return out
}

func call(n *js.Name, args ...js.Expr) js.Stmt {
	return &js.ExprStmt{X: &js.Call{Fn: &js.NameRef{Name: n}, Args: args}}
}

func TestSplit(t *testing.T) {
	b := newBuilder()
	runAsync := js.Fixed(js.RTRunAsync, js.NameGlobal)
	registerAsync := js.Fixed(js.RTRegisterAsync, js.NameGlobal)
	mainFn := js.NewGlobal("main", "app.Main::main()")
	onA := js.NewGlobal("onA", "app.A::onSuccess()")
	onB := js.NewGlobal("onB", "app.B::onSuccess()")
	onlyA := js.NewGlobal("onlyA", "app.A::work()")
	common := js.NewGlobal("common", "app.Util::common()")
	shared := js.NewGlobal("shared", "app.Util::shared()")

	b.fn(runAsync)
	b.add(js.RTRegisterAsync, &js.FuncDecl{Fn: &js.Func{Name: registerAsync, Native: "...", Deps: []*js.Name{runAsync}}})
	b.fn(mainFn, runAsync, shared)
	b.fn(onA, onlyA, common)
	b.fn(onB, common)
	b.fn(onlyA)
	b.fn(common)
	b.fn(shared)
	b.register(1, onA, registerAsync)
	b.register(2, onB, registerAsync)
	b.add("entry", call(mainFn))

	res := split.Split(b.prog)

	require.Len(t, res.Fragments, 4)
	assert.Equal(t, split.KindPrimary, res.Fragments[0].Kind)
	assert.Equal(t, []string{js.RTRunAsync, "main", "shared", "entry"}, b.labels(res.Fragments[0]))

	assert.Equal(t, split.KindExclusive, res.Fragments[1].Kind)
	assert.Equal(t, 1, res.Fragments[1].Index)
	assert.Same(t, b.prog.Splits[0], res.Fragments[1].Split)
	assert.Equal(t, []string{"onA", "onlyA", "registeronA"}, b.labels(res.Fragments[1]))

	assert.Equal(t, 2, res.Fragments[2].Index)
	assert.Equal(t, []string{"onB", "registeronB"}, b.labels(res.Fragments[2]))

	assert.Equal(t, split.KindLeftovers, res.Fragments[3].Kind)
	assert.Equal(t, 3, res.Fragments[3].Index)
	assert.Equal(t, []string{js.RTRegisterAsync, "common"}, b.labels(res.Fragments[3]))
}

func TestSplitMovesClassWithItsMembers(t *testing.T) {
	b := newBuilder()
	defineClass := js.Fixed(js.RTDefineClass, js.NameGlobal)
	registerAsync := js.Fixed(js.RTRegisterAsync, js.NameGlobal)
	marker := js.NewGlobal("Widget", "app.Widget")
	ctor := js.NewGlobal("Widget_init", "app.Widget::<init>()")
	slot := js.NewProperty("draw", "draw()")
	draw := js.NewGlobal("Widget_draw", "app.Widget::draw()")
	cb := js.NewGlobal("onLoad", "app.Main::onLoad()")
	mainFn := js.NewGlobal("main", "app.Main::main()")

	b.fn(defineClass)
	b.fn(registerAsync)
	b.fn(marker)
	b.add("define", call(defineClass, &js.NameRef{Name: marker}, &js.NullLit{}, &js.ArrayLit{}))
	b.fn(ctor)
	b.fn(draw)
	b.add("install", &js.ExprStmt{X: &js.Assign{
		Op: "=",
		X:  &js.Dot{X: &js.Dot{X: &js.NameRef{Name: marker}, Prop: js.PropPrototype}, Prop: slot},
		Y:  &js.NameRef{Name: draw},
	}})
	b.add("onLoad", &js.FuncDecl{Fn: &js.Func{Name: cb, Body: []js.Stmt{
		&js.ExprStmt{X: &js.Call{Fn: &js.Dot{X: &js.NameRef{Name: ctor}, Prop: js.PropCall}, Args: []js.Expr{
			&js.New{Ctor: &js.NameRef{Name: marker}},
		}}},
	}}})
	b.fn(mainFn)
	b.register(1, cb, registerAsync)
	b.add("entry", call(mainFn))

	res := split.Split(b.prog)

	require.Len(t, res.Fragments, 2)
	assert.Equal(t, []string{"main", "entry"}, b.labels(res.Fragments[0]))
	assert.Equal(t, []string{
		js.RTDefineClass, js.RTRegisterAsync, "Widget", "define", "Widget_init", "Widget_draw", "install",
		"onLoad", "registeronLoad",
	}, b.labels(res.Fragments[1]))
}

func TestSplitWithoutSplitPoints(t *testing.T) {
	b := newBuilder()
	mainFn := js.NewGlobal("main", "app.Main::main()")
	unused := js.NewGlobal("unused", "app.Main::unused()")
	b.fn(mainFn)
	b.fn(unused)
	b.add("entry", call(mainFn))

	res := split.Split(b.prog)

	require.Len(t, res.Fragments, 1)
	assert.Equal(t, []string{"main", "unused", "entry"}, b.labels(res.Fragments[0]))
	assert.Equal(t, res.Fragments, split.Single(b.prog).Fragments)
}
