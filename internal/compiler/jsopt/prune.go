package jsopt

import "go.trai.ch/permc/internal/compiler/js"

// UnusedFunctions removes top-level functions that no statement outside a function body
// reaches, directly or through other functions.
type UnusedFunctions struct{}

func (UnusedFunctions) Name() string { return "remove-unused" }

func (UnusedFunctions) Run(prog *js.Program) int {
	fns := functions(prog)
	live := make(map[*js.Name]bool)
	var queue []*js.Name
	mark := func(n js.Node) {
		for _, name := range js.GlobalRefs(n) {
			if !live[name] {
				live[name] = true
				queue = append(queue, name)
			}
		}
	}
	for _, s := range prog.Stmts {
		if _, ok := s.(*js.FuncDecl); !ok {
			mark(s)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if fn, ok := fns[name]; ok {
			mark(fn)
		}
	}

	kept := prog.Stmts[:0]
	removed := 0
	for _, s := range prog.Stmts {
		if fd, ok := s.(*js.FuncDecl); ok && !live[fd.Fn.Name] {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	prog.Stmts = kept
	return removed
}
