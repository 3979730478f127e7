package emit

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"go.trai.ch/permc/internal/compiler/codegen"
	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/compiler/split"
)

var symbolHeader = []string{"name", "kind", "class", "member", "qualified", "file", "line"}

// SymbolTable maps every final identifier the fragments still use back to its source element,
// one CSV row per name in generation order.
func SymbolTable(names *codegen.NameMap, res *split.Result) ([]byte, error) {
	used := usedNames(res)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(symbolHeader); err != nil {
		return nil, err
	}
	for _, n := range names.Names() {
		if !used[n] {
			continue
		}
		e, _ := names.Source(n)
		line := ""
		if n.Origin.Line > 0 {
			line = strconv.Itoa(n.Origin.Line)
		}
		row := []string{n.String(), e.Kind.String(), n.Origin.Class, n.Origin.Member, n.Long, n.Origin.File, line}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func usedNames(res *split.Result) map[*js.Name]bool {
	used := make(map[*js.Name]bool)
	for _, f := range res.Fragments {
		for _, s := range f.Stmts {
			js.Walk(s, func(n js.Node) bool {
				switch n := n.(type) {
				case *js.NameRef:
					used[n.Name] = true
				case *js.Dot:
					used[n.Prop] = true
				case *js.VarDecl:
					used[n.Name] = true
				case *js.Func:
					if n.Name != nil {
						used[n.Name] = true
					}
				}
				return true
			})
		}
	}
	return used
}
