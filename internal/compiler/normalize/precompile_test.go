package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/normalize"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// rebindProgram declares a Greeter interface with two implementations and a main method
// that requests a Greeter through deferred binding.
type rebindProgram struct {
	*fixture
	greeter, english, french ast.ClassID
	request                  ast.ExprID
}

func newRebindProgram() *rebindProgram {
	f := newFixture()
	b := f.b
	r := &rebindProgram{fixture: f}
	r.greeter = b.Interface("app", "Greeter")
	r.english = b.Class("app", "English", ast.NoClass, 0, r.greeter)
	ctor, _ := b.Constructor(r.english, 0)
	b.SetBody(ctor)
	r.french = b.Class("app", "French", ast.NoClass, 0, r.greeter)
	ctor, _ = b.Constructor(r.french, 0)
	b.SetBody(ctor)
	r.request = b.Rebind(r.greeter)
	f.add(b.Do(r.request))
	return r
}

func TestRebindRequests(t *testing.T) {
	r := newRebindProgram()
	assert.Equal(t, []string{"app.Greeter"}, normalize.RebindRequests(r.program()))
}

func TestPrecompileResolvesRoots(t *testing.T) {
	r := newRebindProgram()
	p := r.program()
	p.EntryPoints = nil

	err := normalize.Precompile(p, typesOf(t, p), normalize.Roots{
		EntryPoints: []string{"app.Main"},
		Answers:     map[string][]string{"app.Greeter": {"app.English", "app.French"}},
	}, domain.DefaultCompileOptions(), 2, nil)
	require.NoError(t, err)

	assert.Equal(t, []ast.MethodID{r.run}, p.EntryPoints)
	assert.ElementsMatch(t, []ast.ClassID{r.english, r.french}, p.RebindAnswers)
	assert.False(t, p.Classes[r.french].Dead)
}

func TestPrecompileItemizesProblems(t *testing.T) {
	r := newRebindProgram()
	b := r.b
	b.Class("app", "Partial", ast.NoClass, ast.ClassAbstract, r.greeter)
	b.Class("app", "Stranger", ast.NoClass, 0)
	p := r.program()

	err := normalize.Precompile(p, typesOf(t, p), normalize.Roots{
		EntryPoints: []string{"app.Main", "app.Missing"},
		Answers: map[string][]string{
			"app.Greeter": {"app.Stranger", "app.Partial", "app.Nowhere"},
		},
	}, domain.DefaultCompileOptions(), 2, nil)

	require.ErrorIs(t, err, domain.ErrCompilationFailed)
	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	var messages []string
	for _, d := range ce.Diagnostics {
		messages = append(messages, d.Message)
	}
	assert.Equal(t, []string{
		"entry point type app.Missing not found",
		"rebind answer app.Stranger is not assignable to app.Greeter",
		"rebind answer app.Partial is abstract",
		"rebind answer app.Nowhere for app.Greeter not found",
	}, messages)
}

func TestPrecompileExtraRoots(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Warn(gomock.Any()).Times(1)

		r := newRebindProgram()
		err := normalize.Precompile(r.program(), typesOf(t, r.program()), normalize.Roots{ExtraRoots: []string{"app.French", "app.Ghost"}},
			domain.DefaultCompileOptions(), 1, logger)
		require.NoError(t, err)
		assert.Equal(t, []ast.ClassID{r.french}, r.program().ExtraRoots)
	})

	t.Run("strict", func(t *testing.T) {
		r := newRebindProgram()
		opts := domain.DefaultCompileOptions()
		opts.Strict = true
		err := normalize.Precompile(r.program(), typesOf(t, r.program()), normalize.Roots{ExtraRoots: []string{"app.Ghost"}}, opts, 1, nil)
		require.ErrorIs(t, err, domain.ErrCompilationFailed)
	})
}

func TestPrecompileAssertions(t *testing.T) {
	build := func() (*fixture, ast.StmtID) {
		f := newFixture()
		check := f.b.Assert(f.b.Bool(true), f.b.Str("always"))
		f.add(check)
		return f, check
	}

	t.Run("stripped", func(t *testing.T) {
		f, check := build()
		require.NoError(t, normalize.Precompile(f.program(), typesOf(t, f.program()), normalize.Roots{}, domain.DefaultCompileOptions(), 1, nil))
		assert.Equal(t, ast.StmtEmpty, f.program().Stmts[check].Kind)
	})

	t.Run("checked", func(t *testing.T) {
		f, check := build()
		opts := domain.DefaultCompileOptions()
		opts.EnableAssertions = true
		require.NoError(t, normalize.Precompile(f.program(), typesOf(t, f.program()), normalize.Roots{}, opts, 1, nil))
		s := f.program().Stmts[check]
		assert.Equal(t, ast.StmtExpr, s.Kind)
		assert.Equal(t, js.RTAssert, runtimeName(f.program(), s.X))
		assert.Len(t, f.program().Exprs[s.X].Args, 2)
	})
}

func TestResolveRebinds(t *testing.T) {
	r := newRebindProgram()
	p := r.program()
	require.NoError(t, normalize.Precompile(p, typesOf(t, p), normalize.Roots{
		Answers: map[string][]string{"app.Greeter": {"app.English", "app.French"}},
	}, domain.DefaultCompileOptions(), 2, nil))

	perm := domain.Permutation{Answers: map[string]string{"app.Greeter": "app.French"}}
	require.NoError(t, normalize.ResolveRebinds(p, perm.Answer, nil))

	e := p.Exprs[r.request]
	assert.Equal(t, ast.ExprNew, e.Kind)
	assert.Equal(t, r.french, e.Class)
	assert.Equal(t, ast.ClassType(r.greeter), e.Type)
	assert.Empty(t, p.RebindAnswers)
}

func TestResolveRebindsReportsUnknownAnswer(t *testing.T) {
	r := newRebindProgram()
	p := r.program()
	perm := domain.Permutation{Answers: map[string]string{"app.Greeter": "app.Klingon"}}

	err := normalize.ResolveRebinds(p, perm.Answer, nil)

	var ce *domain.CompileError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0].Message, "app.Klingon")
}
