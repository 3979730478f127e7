package jsopt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/jsopt"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type sample struct {
	prog      *js.Program
	inc, main *js.Func
}

// newSample builds:
//
//	function inc(x) { return x + 1; }
//	function unused() { return 0; }
//	function main(y) { if (true) { return inc(y); } else { return 0; } }
//	main(1);
func newSample() *sample {
	x := js.NewLocal("x")
	inc := &js.Func{
		Name:   js.NewGlobal("inc", "app.Main::inc(int)"),
		Params: []*js.Name{x},
		Body:   []js.Stmt{&js.Return{X: &js.Binary{Op: "+", X: &js.NameRef{Name: x}, Y: &js.NumberLit{Value: 1}}}},
	}
	unused := &js.Func{
		Name: js.NewGlobal("unused", "app.Main::unused()"),
		Body: []js.Stmt{&js.Return{X: &js.NumberLit{}}},
	}
	y := js.NewLocal("y")
	main := &js.Func{
		Name:   js.NewGlobal("main", "app.Main::main(int)"),
		Params: []*js.Name{y},
		Body: []js.Stmt{&js.If{
			C:    &js.BoolLit{Value: true},
			Then: &js.Block{Body: []js.Stmt{&js.Return{X: &js.Call{Fn: &js.NameRef{Name: inc.Name}, Args: []js.Expr{&js.NameRef{Name: y}}}}}},
			Else: &js.Block{Body: []js.Stmt{&js.Return{X: &js.NumberLit{}}}},
		}},
	}
	entry := &js.ExprStmt{X: &js.Call{Fn: &js.NameRef{Name: main.Name}, Args: []js.Expr{&js.NumberLit{Value: 1}}}}
	return &sample{
		prog: &js.Program{
			Stmts:   []js.Stmt{&js.FuncDecl{Fn: inc}, &js.FuncDecl{Fn: unused}, &js.FuncDecl{Fn: main}, entry},
			Entries: []js.Stmt{entry},
		},
		inc:  inc,
		main: main,
	}
}

func declared(prog *js.Program) []string {
	var out []string
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok {
			out = append(out, fd.Fn.Name.Ident)
		}
	}
	return out
}

func TestStaticEval(t *testing.T) {
	s := newSample()
	require.Positive(t, jsopt.StaticEval{}.Run(s.prog))

	block, ok := s.main.Body[0].(*js.Block)
	require.True(t, ok)
	_, ok = block.Body[0].(*js.Return)
	assert.True(t, ok)
}

func TestStaticEvalFoldsShortCircuit(t *testing.T) {
	v := js.NewLocal("v")
	stmt := &js.ExprStmt{X: &js.Assign{Op: "=", X: &js.NameRef{Name: v}, Y: &js.Binary{
		Op: "||", X: &js.BoolLit{Value: false}, Y: &js.Unary{Op: "!", X: &js.BoolLit{Value: true}},
	}}}
	prog := &js.Program{Stmts: []js.Stmt{stmt}}

	assert.Equal(t, 2, jsopt.StaticEval{}.Run(prog))
	assert.Equal(t, &js.BoolLit{Value: false}, stmt.X.(*js.Assign).Y)
}

func TestOptimizerReachesFixpoint(t *testing.T) {
	s := newSample()
	o := jsopt.New(domain.DefaultMaxOptimizeIterations, nil)

	stats, err := o.Run(context.Background(), s.prog)
	require.NoError(t, err)
	assert.False(t, stats.Capped)
	assert.Equal(t, []string{"main"}, declared(s.prog))

	ret := s.main.Body[0].(*js.Block).Body[0].(*js.Return)
	sum, ok := ret.X.(*js.Binary)
	require.True(t, ok)
	assert.Equal(t, "y", sum.X.(*js.NameRef).Name.Ident)

	again, err := o.Run(context.Background(), s.prog)
	require.NoError(t, err)
	assert.Zero(t, again.Changes)
	assert.Equal(t, 1, again.Iterations)
}

func TestInlinerSkipsComplexArguments(t *testing.T) {
	s := newSample()
	call := s.main.Body[0].(*js.If).Then.(*js.Block).Body[0].(*js.Return).X.(*js.Call)
	call.Args[0] = &js.Binary{Op: "+", X: call.Args[0], Y: &js.NumberLit{Value: 2}}

	assert.Zero(t, jsopt.Inliner{}.Run(s.prog))
}

func TestInlinerKeepsFixedNames(t *testing.T) {
	s := newSample()
	s.inc.Name.Obfuscatable = false
	assert.Zero(t, jsopt.Inliner{}.Run(s.prog))
}

func TestOptimizerCap(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	stats, err := jsopt.New(1, logger).Run(context.Background(), newSample().prog)
	require.NoError(t, err)
	assert.True(t, stats.Capped)
}

func TestOptimizerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := jsopt.New(10, nil).Run(ctx, newSample().prog)
	require.ErrorIs(t, err, domain.ErrCancelled)
}
