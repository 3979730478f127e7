package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/codegen"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
)

// zoo builds:
//
//	class Animal { int legs = 4; int speak() { return 1; } }
//	class Dog extends Animal { int speak() { return 2; } }
//	class Main { static int count; static void main() { Animal a = new Dog(); count = a.speak(); } }
type zoo struct {
	b                 *ast.Builder
	animal, dog, main ast.ClassID
	speak, dogSpeak   ast.MethodID
	run, dogCtor      ast.MethodID
	legs, count       ast.FieldID
	animalCtor        ast.MethodID
}

func newZoo() *zoo {
	b := ast.NewBuilder()
	z := &zoo{b: b}
	z.animal = b.Class("zoo", "Animal", ast.NoClass, 0)
	z.legs = b.Field(z.animal, "legs", ast.Prim(ast.TypeInt), 0, b.Int(4))
	z.animalCtor, _ = b.Constructor(z.animal, 0)
	b.SetBody(z.animalCtor)
	z.speak, _ = b.Method(z.animal, "speak", ast.Prim(ast.TypeInt), 0)
	b.SetBody(z.speak, b.Return(b.Int(1)))

	z.dog = b.Class("zoo", "Dog", z.animal, 0)
	z.dogCtor, _ = b.Constructor(z.dog, 0)
	b.SetBody(z.dogCtor, b.Do(b.SuperCall(b.This(z.dog), z.animalCtor)))
	z.dogSpeak, _ = b.Method(z.dog, "speak", ast.Prim(ast.TypeInt), 0)
	b.SetBody(z.dogSpeak, b.Return(b.Int(2)))

	z.main = b.Class("zoo", "Main", ast.NoClass, 0)
	z.count = b.Field(z.main, "count", ast.Prim(ast.TypeInt), ast.FieldStatic, ast.NoExpr)
	z.run, _ = b.Method(z.main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	a := b.Local(z.run, "a", ast.ClassType(z.animal))
	b.SetBody(z.run,
		b.Decl(a, b.New(z.dog, z.dogCtor)),
		b.Do(b.Assign(b.FieldRef(ast.NoExpr, z.count), b.Call(b.Ref(a), z.speak))),
	)
	b.Entry(z.run)
	return z
}

func declared(prog *js.Program) map[string]*js.Func {
	out := make(map[string]*js.Func)
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok {
			out[fd.Fn.Name.Ident] = fd.Fn
		}
	}
	return out
}

func TestGenerateStructure(t *testing.T) {
	z := newZoo()
	res, err := codegen.Generate(z.b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)
	prog := res.Program

	fns := declared(prog)
	for _, ident := range []string{
		js.RTDefineClass, "zoo_Animal", "zoo_Dog", "zoo_Main",
		"zoo_Animal_init", "zoo_Animal_speak", "zoo_Dog_init", "zoo_Dog_speak", "zoo_Main_main",
	} {
		assert.Contains(t, fns, ident)
	}
	assert.Equal(t, "return this.length;", fns["lang_String_length"].Native)
	assert.Equal(t, js.DefaultLibrary().Functions[0].Body, fns[js.RTDefineClass].Native)

	_, ok := fns[js.RTDefineClass]
	require.True(t, ok)
	first, ok := prog.Stmts[0].(*js.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, js.RTDefineClass, first.Fn.Name.Ident, "runtime helpers come first")

	require.Len(t, prog.Entries, 1)
	assert.Same(t, prog.Entries[0], prog.Stmts[len(prog.Stmts)-1])

	ctor := fns["zoo_Animal_init"]
	require.Len(t, ctor.Body, 2)
	_, isReturn := ctor.Body[1].(*js.Return)
	assert.True(t, isReturn)

	slot, ok := res.Names.Slot("speak()")
	require.True(t, ok)
	installs := 0
	js.Walk(&js.Block{Body: prog.Stmts}, func(n js.Node) bool {
		if d, ok := n.(*js.Dot); ok && d.Prop == slot {
			installs++
		}
		return true
	})
	assert.Equal(t, 3, installs, "two prototype installs and one virtual call")
}

func TestGenerateNameMap(t *testing.T) {
	z := newZoo()
	res, err := codegen.Generate(z.b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)

	n, ok := res.Names.Method(z.dogSpeak)
	require.True(t, ok)
	assert.Equal(t, "zoo.Dog::speak()", n.Long)
	assert.Equal(t, "zoo.Dog", n.Origin.Class)
	el, ok := res.Names.Source(n)
	require.True(t, ok)
	assert.Equal(t, codegen.ElementMethod, el.Kind)
	assert.Equal(t, z.dogSpeak, el.Method)

	static, ok := res.Names.Field(z.count)
	require.True(t, ok)
	assert.Equal(t, js.NameGlobal, static.Kind)
	prop, ok := res.Names.Field(z.legs)
	require.True(t, ok)
	assert.Equal(t, js.NameProperty, prop.Kind)
}

func TestGenerateClassMetadata(t *testing.T) {
	defines := func(opts domain.CompileOptions) [][]js.Expr {
		res, err := codegen.Generate(newZoo().b.Program(), js.DefaultLibrary(), opts, nil)
		require.NoError(t, err)
		var out [][]js.Expr
		for _, s := range res.Program.Stmts {
			es, ok := s.(*js.ExprStmt)
			if !ok {
				continue
			}
			if c, ok := es.X.(*js.Call); ok {
				if ref, ok := c.Fn.(*js.NameRef); ok && ref.Name.Ident == js.RTDefineClass {
					out = append(out, c.Args)
				}
			}
		}
		return out
	}

	opts := domain.DefaultCompileOptions()
	for _, args := range defines(opts) {
		assert.Len(t, args, 4)
	}
	opts.ClassMetadataDisabled = true
	for _, args := range defines(opts) {
		assert.Len(t, args, 3)
	}
}

func TestGenerateSplitPoints(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	later, _ := b.Method(main, "later", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(later)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(run, b.Do(b.RunAsync(later)))
	b.Entry(run)

	res, err := codegen.Generate(b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)

	require.Len(t, res.Program.Splits, 1)
	sp := res.Program.Splits[0]
	assert.Equal(t, 1, sp.Index)
	assert.Equal(t, "app_Main_later", sp.Callback.Ident)
	assert.Contains(t, res.Program.Stmts, sp.Register)
	fns := declared(res.Program)
	require.Contains(t, fns, js.RTRegisterAsync)
	require.Contains(t, fns, js.RTRunAsync)
}

func TestGenerateHelperDepsShareNames(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	later, _ := b.Method(main, "later", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(later)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(run, b.Do(b.RunAsync(later)))
	b.Entry(run)

	res, err := codegen.Generate(b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)

	fns := declared(res.Program)
	for _, fn := range fns {
		for _, dep := range fn.Deps {
			decl, ok := fns[dep.Ident]
			require.True(t, ok, "dependency %s of %s is declared", dep.Ident, fn.Name.Ident)
			assert.Same(t, decl.Name, dep, "a helper and its dependents share one name")
		}
	}
}

func TestGenerateRejectsUnresolvedRebind(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(run, b.Do(b.Rebind(main)))
	b.Entry(run)

	assert.Panics(t, func() {
		_, _ = codegen.Generate(b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	})
}

func TestGenerateIntegerArithmetic(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	run, params := b.Method(main, "main", ast.Prim(ast.TypeInt), ast.MethodStatic,
		ast.Param{Name: "x", Type: ast.Prim(ast.TypeInt)})
	b.SetBody(run, b.Return(b.Bin(ast.OpMul, b.Bin(ast.OpAdd, b.Ref(params[0]), b.Int(1)), b.Int(3))))

	res, err := codegen.Generate(b.Program(), js.DefaultLibrary(), domain.DefaultCompileOptions(), nil)
	require.NoError(t, err)

	ret := declared(res.Program)["app_Main_main"].Body[0].(*js.Return)
	imul, ok := ret.X.(*js.Call)
	require.True(t, ok)
	assert.Equal(t, "imul", imul.Fn.(*js.Dot).Prop.Ident)
	wrapped, ok := imul.Args[0].(*js.Binary)
	require.True(t, ok)
	assert.Equal(t, "|", wrapped.Op)
}
