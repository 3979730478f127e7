package naming

import (
	"strconv"

	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
)

const (
	firstChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ$_"
	restChars  = firstChars + "0123456789"
)

// Obfuscated gives the most used names the shortest identifiers and moves string literals that
// occur more than once into shared top-level variables.
type Obfuscated struct{}

func (Obfuscated) Mode() domain.OutputMode { return domain.OutputModeObfuscated }

func (Obfuscated) Apply(prog *js.Program) Stats {
	interned := internStrings(prog)
	renamed := assign(collect(prog), byFrequency, func(js.NameKind) namer {
		i := 0
		return func(_ *js.Name, taken map[string]bool) string {
			for {
				s := minimalIdent(i)
				i++
				if !taken[s] {
					return s
				}
			}
		}
	})
	return Stats{Renamed: renamed, Interned: interned}
}

// minimalIdent returns the i-th identifier in order of length: a, b, ..., _, aa, ba, ...
func minimalIdent(i int) string {
	b := []byte{firstChars[i%len(firstChars)]}
	for q := i / len(firstChars); q > 0; q /= len(restChars) {
		q--
		b = append(b, restChars[q%len(restChars)])
	}
	return string(b)
}

// internStrings declares one variable per string literal value used at least twice and
// replaces every occurrence with a reference to it.
func internStrings(prog *js.Program) int {
	counts := make(map[string]int)
	var order []string
	for _, s := range prog.Stmts {
		js.Walk(s, func(n js.Node) bool {
			if lit, ok := n.(*js.StringLit); ok {
				if counts[lit.Value] == 0 {
					order = append(order, lit.Value)
				}
				counts[lit.Value]++
			}
			return true
		})
	}

	vars := make(map[string]*js.Name)
	var decls []js.Stmt
	for _, v := range order {
		if counts[v] < 2 {
			continue
		}
		name := js.NewGlobal("$s"+strconv.Itoa(len(decls)), strconv.Quote(v))
		vars[v] = name
		decls = append(decls, &js.VarDecl{Name: name, Init: &js.StringLit{Value: v}})
	}
	if len(decls) == 0 {
		return 0
	}

	js.RewriteStmts(prog.Stmts, js.Rewriter{Expr: func(e js.Expr) js.Expr {
		if lit, ok := e.(*js.StringLit); ok {
			if name, ok := vars[lit.Value]; ok {
				return &js.NameRef{Name: name}
			}
		}
		return e
	}})
	prog.Stmts = append(decls, prog.Stmts...)
	return len(decls)
}
