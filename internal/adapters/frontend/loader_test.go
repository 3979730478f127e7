package frontend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/adapters/frontend"
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *frontend.Loader {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return frontend.NewLoader(logger)
}

func TestLoader_RoundTrip(t *testing.T) {
	b := ast.NewBuilder()
	main := b.Class("app", "Main", ast.NoClass, 0)
	m, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(m)
	b.Entry(m)
	want := b.Program()

	path := filepath.Join(t.TempDir(), "out", "app.cbor")
	require.NoError(t, frontend.Save(path, want))

	got, err := newLoader(t).Load(context.Background(), path)
	require.NoError(t, err)

	c, ok := got.FindClass("app.Main")
	require.True(t, ok)
	assert.Equal(t, want.Classes[c].Name, got.Classes[c].Name)
	assert.Equal(t, want.EntryPoints, got.EntryPoints)
	assert.Equal(t, want.ObjectClass, got.ObjectClass)
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := newLoader(t).Load(context.Background(), filepath.Join(dir, "missing.cbor"))
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.cbor")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00, 0x13}, 0o600))

		_, err := newLoader(t).Load(context.Background(), path)
		require.ErrorIs(t, err, domain.ErrInvalidProgram)
	})

	t.Run("empty program", func(t *testing.T) {
		path := filepath.Join(dir, "empty.cbor")
		require.NoError(t, frontend.Save(path, &ast.Program{}))

		_, err := newLoader(t).Load(context.Background(), path)
		require.ErrorIs(t, err, domain.ErrInvalidProgram)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newLoader(t).Load(ctx, filepath.Join(dir, "missing.cbor"))
		require.ErrorIs(t, err, domain.ErrCancelled)
	})
}

// validProgram declares a small hierarchy with a field, a local and a try/catch body.
func validProgram() (*ast.Builder, ast.ClassID, ast.ClassID) {
	b := ast.NewBuilder()
	shape := b.Interface("app", "Shape")
	main := b.Class("app", "Main", ast.NoClass, 0, shape)
	b.Nested(main, "Inner", ast.NoClass, 0)
	b.Field(main, "count", ast.Prim(ast.TypeInt), ast.FieldStatic, b.Int(1))
	m, _ := b.Method(main, "main", ast.Prim(ast.TypeVoid), ast.MethodStatic)
	b.SetBody(m, b.Do(b.Int(2)))
	b.Entry(m)
	return b, main, shape
}

func TestLoader_RejectsMalformedPrograms(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(p *ast.Program, main, shape ast.ClassID)
		class   string
	}{
		{
			name:    "superclass out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) { p.Classes[main].Super = 99 },
			class:   "app.Main",
		},
		{
			name:    "interface out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) { p.Classes[main].Interfaces = []ast.ClassID{42} },
			class:   "app.Main",
		},
		{
			name:    "enclosing class out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) { p.Classes[main].Enclosing = 7 },
			class:   "app.Main",
		},
		{
			name: "method list out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) {
				p.Classes[main].Methods = append(p.Classes[main].Methods, ast.MethodID(len(p.Methods)))
			},
			class: "app.Main",
		},
		{
			name: "field list out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) {
				p.Classes[main].Fields = append(p.Classes[main].Fields, ast.FieldID(len(p.Fields)+3))
			},
			class: "app.Main",
		},
		{
			name: "method body out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) {
				p.Methods[p.Classes[main].Methods[0]].Body = ast.StmtID(len(p.Stmts))
			},
			class: "app.Main",
		},
		{
			name: "field initializer out of range",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) {
				p.Fields[p.Classes[main].Fields[0]].Init = ast.ExprID(len(p.Exprs))
			},
			class: "app.Main",
		},
		{
			name: "expression operand out of range",
			corrupt: func(p *ast.Program, _, _ ast.ClassID) {
				p.Exprs[0].X = ast.ExprID(len(p.Exprs) + 1)
			},
		},
		{
			name: "statement child out of range",
			corrupt: func(p *ast.Program, _, _ ast.ClassID) {
				p.Stmts[len(p.Stmts)-1].Body = append(p.Stmts[len(p.Stmts)-1].Body, ast.StmtID(len(p.Stmts)))
			},
		},
		{
			name: "entry point out of range",
			corrupt: func(p *ast.Program, _, _ ast.ClassID) {
				p.EntryPoints = append(p.EntryPoints, ast.MethodID(len(p.Methods)))
			},
		},
		{
			name:    "superclass cycle",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) { p.Classes[p.ObjectClass].Super = main },
			class:   "lang.Object",
		},
		{
			name:    "interface cycle",
			corrupt: func(p *ast.Program, main, shape ast.ClassID) { p.Classes[shape].Interfaces = []ast.ClassID{main} },
			class:   "app.Shape",
		},
		{
			name: "nesting cycle",
			corrupt: func(p *ast.Program, main, _ ast.ClassID) {
				inner, _ := p.FindClass("app.Main.Inner")
				p.Classes[main].Enclosing = inner
			},
			class: "app.Main",
		},
		{
			name: "duplicate class name",
			corrupt: func(p *ast.Program, main, shape ast.ClassID) {
				p.Classes[shape].Name = p.Classes[main].Name
			},
			class: "app.Main",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, main, shape := validProgram()
			p := b.Program()
			tt.corrupt(p, main, shape)

			path := filepath.Join(t.TempDir(), "bad.cbor")
			require.NoError(t, frontend.Save(path, p))

			_, err := newLoader(t).Load(context.Background(), path)
			require.ErrorIs(t, err, domain.ErrInvalidProgram)
			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			meta := zErr.Metadata()
			assert.Equal(t, path, meta["path"])
			if tt.class != "" {
				assert.Equal(t, tt.class, meta["class"])
			}
		})
	}
}

func TestLoader_AcceptsValidProgram(t *testing.T) {
	b, _, _ := validProgram()
	path := filepath.Join(t.TempDir(), "ok.cbor")
	require.NoError(t, frontend.Save(path, b.Program()))

	_, err := newLoader(t).Load(context.Background(), path)
	require.NoError(t, err)
}
