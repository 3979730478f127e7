package normalize

import "go.trai.ch/permc/internal/compiler/ast"

// OverlayDevirtualizer turns virtual calls on overlay classes into direct calls. Overlay
// instances are native output values (strings) that carry no prototype methods of their own.
type OverlayDevirtualizer struct{}

func (OverlayDevirtualizer) Name() string { return "overlay-devirtualize" }

func (OverlayDevirtualizer) Run(p *ast.Program, trail *ast.Provenance) int {
	n := 0
	rewriteProgram(p, trail, func(ast.MethodID) ast.Rewriter {
		return ast.Rewriter{Expr: func(x ast.ExprID) ast.ExprID {
			e := &p.Exprs[x]
			if e.Kind != ast.ExprCall || e.Dispatch != ast.DispatchVirtual {
				return x
			}
			if !p.Classes[p.Methods[e.Method].Class].Is(ast.ClassOverlay) {
				return x
			}
			e.Dispatch = ast.DispatchDirect
			n++
			return x
		}}
	})
	return n
}
