package ast_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
)

func shapes(t *testing.T) (*ast.Builder, ast.ClassID, ast.ClassID, ast.MethodID, ast.MethodID) {
	t.Helper()
	b := ast.NewBuilder()
	shape := b.Class("app", "Shape", ast.NoClass, ast.ClassAbstract)
	area, _ := b.Method(shape, "area", ast.Prim(ast.TypeInt), ast.MethodAbstract)
	square := b.Class("app", "Square", shape, 0)
	sqArea, _ := b.Method(square, "area", ast.Prim(ast.TypeInt), 0)
	b.SetBody(sqArea, b.Return(b.Int(4)))
	return b, shape, square, area, sqArea
}

func TestBuilderCoreClasses(t *testing.T) {
	b := ast.NewBuilder()
	p := b.Program()

	assert.Equal(t, "lang.Object", p.Classes[p.ObjectClass].QualifiedName())
	assert.Equal(t, "lang.String", p.Classes[p.StringClass].QualifiedName())
	assert.True(t, p.Classes[p.StringClass].Is(ast.ClassOverlay))
	assert.Equal(t, p.ObjectClass, p.Classes[p.ThrowableClass].Super)
	assert.Equal(t, ast.NoClass, p.Classes[p.ObjectClass].Super)

	_, ok := p.DefaultConstructor(p.ObjectClass)
	assert.True(t, ok)
}

func TestSignatureAndResolve(t *testing.T) {
	b, shape, square, area, sqArea := shapes(t)
	p := b.Program()

	assert.Equal(t, "area()", p.Signature(area))
	assert.Equal(t, "app.Square::area()", p.MethodName(sqArea))

	got, ok := p.Resolve(square, "area()")
	require.True(t, ok)
	assert.Equal(t, sqArea, got)

	_, ok = p.Resolve(shape, "area()")
	assert.False(t, ok, "abstract declarations are not implementations")

	decl, ok := p.Declaring(shape, "area()")
	require.True(t, ok)
	assert.Equal(t, area, decl)

	id, ok := p.FindClass("app.Square")
	require.True(t, ok)
	assert.Equal(t, square, id)
}

func TestRewriteExprReplacesBottomUp(t *testing.T) {
	b := ast.NewBuilder()
	p := b.Program()
	sum := b.Bin(ast.OpAdd, b.Int(1), b.Bin(ast.OpMul, b.Int(2), b.Int(3)))

	var visited []ast.ExprKind
	out := p.RewriteExpr(sum, ast.Rewriter{Expr: func(id ast.ExprID) ast.ExprID {
		visited = append(visited, p.Exprs[id].Kind)
		if p.Exprs[id].Kind == ast.ExprLiteral && p.Exprs[id].Lit.Int == 3 {
			return b.Int(30)
		}
		return id
	}})

	assert.Equal(t, sum, out)
	assert.Equal(t, ast.ExprBinary, visited[len(visited)-1])
	mul := p.Exprs[out].Y
	assert.Equal(t, int64(30), p.Exprs[p.Exprs[mul].Y].Lit.Int)
}

func TestCopyExprSubstitutes(t *testing.T) {
	b := ast.NewBuilder()
	p := b.Program()
	c := b.Class("app", "M", ast.NoClass, 0)
	m, params := b.Method(c, "twice", ast.Prim(ast.TypeInt), ast.MethodStatic, ast.Param{Name: "x", Type: ast.Prim(ast.TypeInt)})
	body := b.Bin(ast.OpMul, b.Ref(params[0]), b.Int(2))
	_ = m

	seven := b.Int(7)
	cp := p.CopyExpr(body, func(id ast.ExprID) (ast.ExprID, bool) {
		if p.Exprs[id].Kind == ast.ExprLocal && p.Exprs[id].Local == params[0] {
			return seven, true
		}
		return ast.NoExpr, false
	})

	assert.NotEqual(t, body, cp)
	assert.Equal(t, seven, p.Exprs[cp].X)
	assert.Equal(t, 1, p.CountLocalRefs(body, params[0]))
	assert.Equal(t, 0, p.CountLocalRefs(cp, params[0]))
	assert.Equal(t, 3, p.ExprSize(cp))
}

func TestHasSideEffects(t *testing.T) {
	b, _, square, _, sqArea := shapes(t)
	p := b.Program()
	ctor, _ := b.Constructor(square, 0)

	assert.False(t, p.HasSideEffects(b.Bin(ast.OpAdd, b.Int(1), b.Int(2))))
	assert.True(t, p.HasSideEffects(b.New(square, ctor)))
	assert.True(t, p.HasSideEffects(b.Call(b.This(square), sqArea)))
	assert.True(t, p.HasSideEffects(b.Cast(ast.ClassType(square), b.Null())))
	assert.False(t, p.HasSideEffects(ast.NoExpr))
}

func TestExprsInVisitsWholeBody(t *testing.T) {
	b := ast.NewBuilder()
	p := b.Program()
	c := b.Class("app", "Loop", ast.NoClass, 0)
	m, _ := b.Method(c, "run", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	i := b.Local(m, "i", ast.Prim(ast.TypeInt))
	b.SetBody(m,
		b.Decl(i, b.Int(0)),
		b.While(b.Bin(ast.OpLt, b.Ref(i), b.Int(10)),
			b.Block(b.Do(b.Compound(ast.OpAdd, b.Ref(i), b.Int(1))))),
	)

	kinds := slices.Collect(func(yield func(ast.ExprKind) bool) {
		for x := range p.MethodExprs(m) {
			if !yield(p.Exprs[x].Kind) {
				return
			}
		}
	})
	assert.Contains(t, kinds, ast.ExprAssign)
	assert.Len(t, kinds, 7)

	n := 0
	for range p.StmtsOf(p.Methods[m].Body) {
		n++
	}
	assert.Equal(t, 5, n)
}

func TestNodeCapPanicsWithResourceExhausted(t *testing.T) {
	b := ast.NewBuilder()
	p := b.Program()
	p.MaxNodes = p.NodeCount() + 1

	b.Int(1)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		re, ok := r.(*domain.ResourceExhaustedError)
		require.True(t, ok)
		assert.Equal(t, int64(p.MaxNodes), re.Limit)
	}()
	b.Int(2)
}

func TestCodecRoundTrip(t *testing.T) {
	b, _, square, _, _ := shapes(t)
	p := b.Program()
	b.Field(square, "side", ast.Prim(ast.TypeDouble), 0, b.Double(1.5))

	data, err := ast.Marshal(p)
	require.NoError(t, err)

	var back ast.Program
	require.NoError(t, ast.Unmarshal(data, &back))

	again, err := ast.Marshal(&back)
	require.NoError(t, err)
	assert.Equal(t, data, again)
	assert.Equal(t, p.Classes[square].QualifiedName(), back.Classes[square].QualifiedName())
	assert.InDelta(t, 1.5, back.Exprs[back.Fields[0].Init].Lit.Float, 0)

	err = ast.Unmarshal([]byte{0xff, 0x00}, &back)
	assert.ErrorIs(t, err, domain.ErrInvalidProgram)
}

func TestProvenance(t *testing.T) {
	b := ast.NewBuilder()
	c := b.Class("app", "Main", ast.NoClass, 0)
	m, _ := b.Method(c, "run", ast.Prim(ast.TypeVoid), ast.MethodStatic)

	var trail ast.Provenance
	trail.Enter("optimize")
	trail.EnterMethod(b.Program(), m)
	assert.Equal(t, []string{"optimize", "app.Main::run()"}, trail.Trail())

	trail.Leave()
	assert.Equal(t, []string{"optimize"}, trail.Trail())
	trail.Leave()
	trail.Leave()
	assert.Empty(t, trail.Trail())

	var none *ast.Provenance
	none.Enter("ignored")
	none.Leave()
	assert.Nil(t, none.Trail())
}
