package optimize_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/optimize"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func options(aggressive bool) domain.CompileOptions {
	opts := domain.DefaultCompileOptions()
	opts.AggressivelyOptimize = aggressive
	return opts
}

func typesOf(t *testing.T, p *ast.Program) *typeinfo.Registry {
	t.Helper()
	r, _, err := typeinfo.FromProgram(p, nil)
	require.NoError(t, err)
	return r
}

type shapes struct {
	b       *ast.Builder
	shape   ast.ClassID
	square  ast.ClassID
	area    ast.MethodID
	sqArea  ast.MethodID
	run     ast.MethodID
	local   ast.LocalID
	call    ast.ExprID
	unused  ast.MethodID
	sqCtor  ast.MethodID
	mainCls ast.ClassID
}

// newShapes builds:
//
//	abstract class Shape { abstract int area(); }
//	class Square extends Shape { int area() { return 4; } }
//	class Main { static int main() { Shape s = new Square(); return s.area(); } private int unused() { return 1; } }
func newShapes() *shapes {
	b := ast.NewBuilder()
	s := &shapes{b: b}
	s.shape = b.Class("app", "Shape", ast.NoClass, ast.ClassAbstract)
	s.area, _ = b.Method(s.shape, "area", ast.Prim(ast.TypeInt), ast.MethodAbstract)
	s.square = b.Class("app", "Square", s.shape, 0)
	s.sqCtor, _ = b.Constructor(s.square, 0)
	b.SetBody(s.sqCtor)
	s.sqArea, _ = b.Method(s.square, "area", ast.Prim(ast.TypeInt), 0)
	b.SetBody(s.sqArea, b.Return(b.Int(4)))

	s.mainCls = b.Class("app", "Main", ast.NoClass, 0)
	s.run, _ = b.Method(s.mainCls, "main", ast.Prim(ast.TypeInt), ast.MethodStatic)
	s.local = b.Local(s.run, "s", ast.ClassType(s.shape))
	s.call = b.Call(b.Ref(s.local), s.area)
	b.SetBody(s.run, b.Decl(s.local, b.New(s.square, s.sqCtor)), b.Return(s.call))
	b.Entry(s.run)

	s.unused, _ = b.Method(s.mainCls, "unused", ast.Prim(ast.TypeInt), ast.MethodPrivate)
	b.SetBody(s.unused, b.Return(b.Int(1)))
	return s
}

func TestPruneRemovesUnreachablePrivateMethod(t *testing.T) {
	s := newShapes()
	p := s.b.Program()

	types := typesOf(t, p)
	n := optimize.Prune(p, types, nil)

	assert.Positive(t, n)
	assert.True(t, p.Methods[s.unused].Dead)
	assert.False(t, p.Methods[s.run].Dead)
	assert.False(t, p.Methods[s.sqArea].Dead)
	assert.False(t, p.Classes[s.shape].Dead)
	assert.False(t, p.Classes[p.StringClass].Dead)
	assert.Zero(t, optimize.Prune(p, types, nil))
}

func TestPruneKeepsSplitPointCallbacks(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	cb, _ := b.Method(main, "later", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(cb)
	orphan, _ := b.Method(main, "orphan", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(orphan)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(run, b.Do(b.RunAsync(cb)))
	b.Entry(run)

	optimize.Prune(b.Program(), typesOf(t, b.Program()), nil)

	assert.False(t, b.Program().Methods[cb].Dead)
	assert.True(t, b.Program().Methods[orphan].Dead)
}

func TestOptimizerDevirtualizesAndTightens(t *testing.T) {
	s := newShapes()
	p := s.b.Program()

	stats, err := optimize.New(options(false), typesOf(t, p), nil, nil).Run(context.Background(), p)
	require.NoError(t, err)

	assert.False(t, stats.Capped)
	assert.Equal(t, ast.DispatchDirect, p.Exprs[s.call].Dispatch)
	assert.Equal(t, s.sqArea, p.Exprs[s.call].Method)
	assert.Equal(t, ast.ClassType(s.square), p.Locals[s.local].Type)
	assert.True(t, p.Classes[s.square].Is(ast.ClassFinal))
	assert.True(t, p.Methods[s.unused].Dead)
}

func TestOptimizerInlinesAggressively(t *testing.T) {
	s := newShapes()
	p := s.b.Program()

	_, err := optimize.New(options(true), typesOf(t, p), nil, nil).Run(context.Background(), p)
	require.NoError(t, err)

	inlined := p.Exprs[s.call]
	assert.Equal(t, ast.ExprLiteral, inlined.Kind)
	assert.Equal(t, int64(4), inlined.Lit.Int)
	assert.True(t, p.Methods[s.sqArea].Dead)
	assert.False(t, p.Methods[s.sqCtor].Dead)
}

func TestFixpointIsIdempotent(t *testing.T) {
	for _, aggressive := range []bool{false, true} {
		s := newShapes()
		p := s.b.Program()
		o := optimize.New(options(aggressive), typesOf(t, p), nil, nil)

		_, err := o.Run(context.Background(), p)
		require.NoError(t, err)

		again, err := o.Run(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, 1, again.Iterations)
		assert.Zero(t, again.Changes)
	}
}

func TestTypeTightenerRemovesRedundantChecks(t *testing.T) {
	s := newShapes()
	b, p := s.b, s.b.Program()
	q := b.Local(s.run, "q", ast.ClassType(s.square))
	cast := b.Cast(ast.ClassType(s.square), b.Ref(s.local))
	check := b.InstanceOf(ast.ClassType(s.square), b.Ref(s.local))
	body := &p.Stmts[p.Methods[s.run].Body]
	body.Body = append([]ast.StmtID{body.Body[0], b.Decl(q, cast), b.Do(b.Assign(b.Ref(q), b.Cond(check, b.Ref(q), b.Null())))}, body.Body[1:]...)

	types := typesOf(t, p)
	optimize.Pruner{Types: types}.Run(p, nil)
	require.Positive(t, optimize.TypeTightener{Types: types}.Run(p, nil))

	assert.Equal(t, ast.ExprLocal, p.Exprs[cast].Kind)
	assert.Equal(t, ast.ExprBinary, p.Exprs[check].Kind)
	assert.Equal(t, ast.OpRefNe, p.Exprs[check].Op)
}

func TestDeadCodeElimination(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeInt), ast.MethodStatic)
	sum := b.Bin(ast.OpAdd, b.Int(2), b.Int(3))
	branch := b.If(b.Bool(true), b.Return(sum), b.Return(b.Int(1)))
	b.SetBody(run, b.Do(b.Int(7)), branch, b.Return(b.Int(9)))
	b.Entry(run)
	p := b.Program()

	require.Positive(t, optimize.DeadCodeElimination{}.Run(p, nil))

	body := p.Stmts[p.Methods[run].Body].Body
	require.Len(t, body, 1)
	assert.Equal(t, ast.StmtReturn, p.Stmts[body[0]].Kind)
	ret := p.Exprs[p.Stmts[body[0]].X]
	assert.Equal(t, ast.ExprLiteral, ret.Kind)
	assert.Equal(t, int64(5), ret.Lit.Int)
	assert.Zero(t, optimize.DeadCodeElimination{}.Run(p, nil))
}

func TestDeadCodeFoldsIntegerOverflow(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeInt), ast.MethodStatic)
	sum := b.Bin(ast.OpAdd, b.Int(2147483647), b.Int(1))
	div := b.Bin(ast.OpDiv, b.Int(1), b.Int(0))
	b.SetBody(run, b.Do(b.Assign(b.Ref(b.Local(run, "x", ast.Prim(ast.TypeInt))), div)), b.Return(sum))
	p := b.Program()

	optimize.DeadCodeElimination{}.Run(p, nil)

	assert.Equal(t, int64(-2147483648), p.Exprs[sum].Lit.Int)
	assert.Equal(t, ast.ExprBinary, p.Exprs[div].Kind)
}

func TestInlinerSubstitutesArguments(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	inc, params := b.Method(main, "inc", ast.Prim(ast.TypeInt), ast.MethodStatic, ast.Param{Name: "x", Type: ast.Prim(ast.TypeInt)})
	b.SetBody(inc, b.Return(b.Bin(ast.OpAdd, b.Ref(params[0]), b.Int(1))))
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeInt), ast.MethodStatic)
	call := b.StaticCall(inc, b.Int(41))
	b.SetBody(run, b.Return(call))
	b.Entry(run)
	p := b.Program()

	_, err := optimize.New(options(true), typesOf(t, p), nil, nil).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, ast.ExprLiteral, p.Exprs[call].Kind)
	assert.Equal(t, int64(42), p.Exprs[call].Lit.Int)
	assert.True(t, p.Methods[inc].Dead)
}

func TestInlinerSkipsParametersUsedTwice(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	sq, params := b.Method(main, "square", ast.Prim(ast.TypeInt), ast.MethodStatic, ast.Param{Name: "x", Type: ast.Prim(ast.TypeInt)})
	b.SetBody(sq, b.Return(b.Bin(ast.OpMul, b.Ref(params[0]), b.Ref(params[0]))))
	run, _ := b.Method(main, "main", ast.Prim(ast.TypeInt), ast.MethodStatic)
	call := b.StaticCall(sq, b.Int(3))
	b.SetBody(run, b.Return(call))
	b.Entry(run)

	assert.Zero(t, optimize.Inliner{}.Run(b.Program(), nil))
	assert.Equal(t, ast.ExprCall, b.Program().Exprs[call].Kind)
}

func TestOptimizerStopsAtIterationBound(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	s := newShapes()
	opts := options(true)
	opts.MaxOptimizeIterations = 1

	stats, err := optimize.New(opts, typesOf(t, s.b.Program()), logger, nil).Run(context.Background(), s.b.Program())
	require.NoError(t, err)
	assert.True(t, stats.Capped)
	assert.Equal(t, 1, stats.Iterations)
}

func TestDraftRunsSinglePass(t *testing.T) {
	s := newShapes()
	opts := options(true)
	opts.Draft = true

	stats, err := optimize.New(opts, typesOf(t, s.b.Program()), nil, nil).Run(context.Background(), s.b.Program())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Iterations)
	assert.False(t, stats.Capped)
	assert.Positive(t, stats.Passes["prune"])
}

func TestOptimizerObservesCancellation(t *testing.T) {
	s := newShapes()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := optimize.New(options(true), typesOf(t, s.b.Program()), nil, nil).Run(ctx, s.b.Program())
	require.ErrorIs(t, err, domain.ErrCancelled)
}

func TestPassesIncludeInlinerOnlyWhenAggressive(t *testing.T) {
	names := func(ps []optimize.Pass) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Name()
		}
		return out
	}
	assert.NotContains(t, names(optimize.New(options(false), nil, nil, nil).Passes()), "inline")
	assert.Contains(t, names(optimize.New(options(true), nil, nil, nil).Passes()), "inline")
}

func TestPruneAsksRegistryForHierarchy(t *testing.T) {
	s := newShapes()
	p := s.b.Program()
	types := typesOf(t, p)
	// The registry still records Square extends Shape; the tree no longer says so.
	p.Classes[s.square].Super = p.ObjectClass

	optimize.Prune(p, types, nil)

	assert.False(t, p.Methods[s.sqArea].Dead, "the virtual call on Shape reaches Square.area through the registry")
}
