// Package normalize lowers source-tree constructs that have no direct output-language
// equivalent. Precompile runs once per program; the normalizers returned by Sequence run once
// per permutation, in order, after the source-level optimizer.
package normalize

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/typeinfo"
	"go.trai.ch/permc/internal/core/domain"
)

// Normalizer is one lowering step. Run returns the number of nodes it rewrote.
type Normalizer interface {
	Name() string
	Run(p *ast.Program, trail *ast.Provenance) int
}

// Sequence returns the permutation normalizers in the order they must run. Each one relies on
// the output of the ones before it. types is the registry built from the program they rewrite.
func Sequence(opts domain.CompileOptions, types *typeinfo.Registry) []Normalizer {
	return []Normalizer{
		LongEmulation{},
		OverlayDevirtualizer{},
		CatchNormalizer{},
		CompoundNormalizer{},
		Emulator{Types: types, CastCheckingDisabled: opts.CastCheckingDisabled},
	}
}

// bodies returns every live method with a body.
func bodies(p *ast.Program) []ast.MethodID {
	var out []ast.MethodID
	for i := range p.Methods {
		m := &p.Methods[i]
		if m.Dead || p.Classes[m.Class].Dead || m.Body == ast.NoStmt {
			continue
		}
		out = append(out, ast.MethodID(i))
	}
	return out
}

// rewriteProgram applies the rewriter built by mk to every live method body and every live
// field initializer. Field initializers are rewritten with ast.NoMethod as their owner.
func rewriteProgram(p *ast.Program, trail *ast.Provenance, mk func(owner ast.MethodID) ast.Rewriter) {
	for _, m := range bodies(p) {
		trail.EnterMethod(p, m)
		p.RewriteMethod(m, mk(m))
		trail.Leave()
	}
	for i := range p.Fields {
		f := &p.Fields[i]
		if f.Dead || f.Init == ast.NoExpr {
			continue
		}
		trail.Enter(p.FieldName(ast.FieldID(i)))
		p.RewriteField(ast.FieldID(i), mk(ast.NoMethod))
		trail.Leave()
	}
}

// runtimeCall appends a call to the runtime helper name.
func runtimeCall(p *ast.Program, name string, t ast.TypeRef, pos ast.Pos, args ...ast.ExprID) ast.ExprID {
	e := ast.NewExpr(ast.ExprRuntime, t)
	e.Name, e.Args, e.Pos = name, args, pos
	return p.AddExpr(e)
}

// classCheck appends a call to a runtime helper whose last argument is the marker of class c.
func classCheck(p *ast.Program, name string, t ast.TypeRef, c ast.ClassID, pos ast.Pos, x ast.ExprID) ast.ExprID {
	id := runtimeCall(p, name, t, pos, x)
	p.Exprs[id].Class = c
	return id
}

func binary(p *ast.Program, op ast.Op, t ast.TypeRef, pos ast.Pos, x, y ast.ExprID) ast.ExprID {
	e := ast.NewExpr(ast.ExprBinary, t)
	e.Op, e.X, e.Y, e.Pos = op, x, y, pos
	return p.AddExpr(e)
}

func localRef(p *ast.Program, l ast.LocalID, pos ast.Pos) ast.ExprID {
	e := ast.NewExpr(ast.ExprLocal, p.Locals[l].Type)
	e.Local, e.Pos = l, pos
	return p.AddExpr(e)
}

func literal(p *ast.Program, t ast.TypeRef, lit ast.Literal, pos ast.Pos) ast.ExprID {
	e := ast.NewExpr(ast.ExprLiteral, t)
	e.Lit, e.Pos = lit, pos
	return p.AddExpr(e)
}

func stmt(p *ast.Program, s ast.Stmt, pos ast.Pos) ast.StmtID {
	s.Pos = pos
	return p.AddStmt(s)
}
