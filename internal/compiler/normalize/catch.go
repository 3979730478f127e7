package normalize

import "go.trai.ch/permc/internal/compiler/ast"

// CatchNormalizer rewrites every multi-clause try statement into a single catch of the root
// throwable type. The handler tests the caught value against each clause in order and
// rethrows it when no clause matches.
type CatchNormalizer struct{}

func (CatchNormalizer) Name() string { return "catch-normalize" }

func (CatchNormalizer) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	for _, m := range bodies(p) {
		trail.EnterMethod(p, m)
		var tries []ast.StmtID
		for s := range p.StmtsOf(p.Methods[m].Body) {
			if p.Stmts[s].Kind == ast.StmtTry && len(p.Stmts[s].Catches) > 0 && !singleRootCatch(p, s) {
				tries = append(tries, s)
			}
		}
		for _, s := range tries {
			normalizeCatches(p, m, s)
			n++
		}
		trail.Leave()
	}
	return n
}

func singleRootCatch(p *ast.Program, s ast.StmtID) bool {
	cs := p.Stmts[s].Catches
	return len(cs) == 1 && len(cs[0].Types) == 1 && cs[0].Types[0] == p.ThrowableClass
}

func normalizeCatches(p *ast.Program, m ast.MethodID, s ast.StmtID) {
	pos := p.Stmts[s].Pos
	catches := p.Stmts[s].Catches
	throwable := ast.ClassType(p.ThrowableClass)
	caught := p.AddLocal(m, ast.Local{Name: "$e", Type: throwable})

	rethrow := ast.NewStmt(ast.StmtThrow)
	rethrow.X = localRef(p, caught, pos)
	chain := stmt(p, rethrow, pos)

	for i := len(catches) - 1; i >= 0; i-- {
		c := catches[i]
		cond := ast.NoExpr
		for _, t := range c.Types {
			test := ast.NewExpr(ast.ExprInstanceOf, ast.Prim(ast.TypeBoolean))
			test.Target, test.X, test.Pos = ast.ClassType(t), localRef(p, caught, pos), pos
			id := p.AddExpr(test)
			if cond == ast.NoExpr {
				cond = id
			} else {
				cond = binary(p, ast.OpOr, ast.Prim(ast.TypeBoolean), pos, cond, id)
			}
		}

		bind := ast.NewExpr(ast.ExprAssign, p.Locals[c.Local].Type)
		bind.Op, bind.X, bind.Y, bind.Pos = ast.OpAssign, localRef(p, c.Local, pos), localRef(p, caught, pos), pos
		do := ast.NewStmt(ast.StmtExpr)
		do.X = p.AddExpr(bind)
		block := ast.NewStmt(ast.StmtBlock)
		block.Body = []ast.StmtID{stmt(p, do, pos), c.Body}

		branch := ast.NewStmt(ast.StmtIf)
		branch.X, branch.Then, branch.Else = cond, stmt(p, block, pos), chain
		chain = stmt(p, branch, pos)
	}

	p.Stmts[s].Catches = []ast.Catch{{Local: caught, Types: []ast.ClassID{p.ThrowableClass}, Body: chain}}
}
