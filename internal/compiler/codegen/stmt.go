package codegen

import (
	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/compiler/js"
)

func (g *generator) stmts(ids []ast.StmtID) []js.Stmt {
	out := make([]js.Stmt, 0, len(ids))
	for _, s := range ids {
		if g.p.Stmts[s].Kind == ast.StmtEmpty {
			continue
		}
		out = append(out, g.stmt(s))
	}
	return out
}

func (g *generator) stmt(id ast.StmtID) js.Stmt {
	s := &g.p.Stmts[id]
	switch s.Kind {
	case ast.StmtBlock:
		return &js.Block{Body: g.stmts(s.Body)}
	case ast.StmtExpr:
		return &js.ExprStmt{X: g.expr(s.X)}
	case ast.StmtLocal:
		decl := &js.VarDecl{Name: g.local(s.Local)}
		if s.X != ast.NoExpr {
			decl.Init = g.expr(s.X)
		}
		return decl
	case ast.StmtIf:
		out := &js.If{C: g.expr(s.X), Then: g.stmt(s.Then)}
		if s.Else != ast.NoStmt {
			out.Else = g.stmt(s.Else)
		}
		return out
	case ast.StmtWhile:
		return &js.While{C: g.expr(s.X), Body: g.stmt(s.Then)}
	case ast.StmtReturn:
		if s.X == ast.NoExpr {
			return &js.Return{}
		}
		return &js.Return{X: g.expr(s.X)}
	case ast.StmtThrow:
		return &js.Throw{X: g.expr(s.X)}
	case ast.StmtTry:
		return g.try(s)
	case ast.StmtBreak:
		return &js.Break{}
	case ast.StmtContinue:
		return &js.Continue{}
	case ast.StmtEmpty:
		return &js.Empty{}
	case ast.StmtAssert:
		panic(invalid("unlowered assertion"))
	default:
		panic(ast.UnknownKind(s.Kind))
	}
}

func (g *generator) try(s *ast.Stmt) js.Stmt {
	if len(s.Catches) > 1 {
		panic(invalid("try statement with several catch clauses"))
	}
	out := &js.Try{Body: g.block(s.Then)}
	if len(s.Catches) == 1 {
		c := s.Catches[0]
		out.Catch = g.local(c.Local)
		out.Handler = g.block(c.Body)
	}
	if s.Finally != ast.NoStmt {
		out.Finally = g.block(s.Finally)
	}
	return out
}

// block wraps a statement in a block unless it already is one.
func (g *generator) block(id ast.StmtID) *js.Block {
	if g.p.Stmts[id].Kind == ast.StmtBlock {
		return &js.Block{Body: g.stmts(g.p.Stmts[id].Body)}
	}
	return &js.Block{Body: []js.Stmt{g.stmt(id)}}
}
