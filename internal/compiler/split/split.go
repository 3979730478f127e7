// Package split partitions a named output program into a primary fragment plus one lazily
// loaded fragment per split point and a leftovers fragment.
//
// Every top-level statement is owned by a global name: a declaration by the name it declares,
// a prototype assignment by the class it extends, a class registration by the class it
// registers. Statements with no owner are roots. The primary fragment is everything the roots
// reach, plus whatever nothing reaches. A statement that only one split point reaches moves to that split point's fragment,
// one that several split points reach moves to the leftovers fragment. The host loads the
// leftovers fragment before any split point fragment.
package split

import (
	"go.trai.ch/permc/internal/compiler/js"
)

// Kind tells what a fragment holds.
type Kind uint8

const (
	KindPrimary Kind = iota
	KindExclusive
	KindLeftovers
)

func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindExclusive:
		return "exclusive"
	case KindLeftovers:
		return "leftovers"
	default:
		return "unknown"
	}
}

// Fragment is one independently loadable part of the program. Index 0 is the primary
// fragment; exclusive fragments carry the index of their split point.
type Fragment struct {
	Index int
	Kind  Kind
	// Split is the split point an exclusive fragment belongs to.
	Split *js.SplitPoint
	Stmts []js.Stmt
}

// Result is the fragments in load order: primary, exclusive fragments by split point, then
// leftovers when any statement is shared.
type Result struct {
	Fragments []Fragment
}

// Single returns the whole program as one primary fragment.
func Single(prog *js.Program) *Result {
	return &Result{Fragments: []Fragment{{Index: 0, Kind: KindPrimary, Stmts: prog.Stmts}}}
}

// Split partitions prog. Statement order is preserved within every fragment.
func Split(prog *js.Program) *Result {
	if len(prog.Splits) == 0 {
		return Single(prog)
	}
	g := newGraph(prog)

	var roots []int
	for i, s := range prog.Stmts {
		if _, reg := g.registers[s]; !reg && g.owner[i] == nil {
			roots = append(roots, i)
		}
	}
	primary := g.reach(roots, nil)

	hits := make(map[int][]int)
	for k, sp := range prog.Splits {
		for i := range g.reach([]int{g.index[sp.Register]}, primary) {
			hits[i] = append(hits[i], k)
		}
	}

	res := &Result{Fragments: []Fragment{{Index: 0, Kind: KindPrimary}}}
	for _, sp := range prog.Splits {
		res.Fragments = append(res.Fragments, Fragment{Index: sp.Index, Kind: KindExclusive, Split: sp})
	}
	leftovers := Fragment{Index: len(prog.Splits) + 1, Kind: KindLeftovers}
	for i, s := range prog.Stmts {
		switch h := hits[i]; {
		case primary[i] || len(h) == 0:
			res.Fragments[0].Stmts = append(res.Fragments[0].Stmts, s)
		case len(h) == 1:
			res.Fragments[h[0]+1].Stmts = append(res.Fragments[h[0]+1].Stmts, s)
		default:
			leftovers.Stmts = append(leftovers.Stmts, s)
		}
	}
	if len(leftovers.Stmts) > 0 {
		res.Fragments = append(res.Fragments, leftovers)
	}
	return res
}

type graph struct {
	stmts     []js.Stmt
	owner     []*js.Name
	owned     map[*js.Name][]int
	index     map[js.Stmt]int
	registers map[js.Stmt]*js.SplitPoint
}

func newGraph(prog *js.Program) *graph {
	g := &graph{
		stmts:     prog.Stmts,
		owner:     make([]*js.Name, len(prog.Stmts)),
		owned:     make(map[*js.Name][]int),
		index:     make(map[js.Stmt]int, len(prog.Stmts)),
		registers: make(map[js.Stmt]*js.SplitPoint, len(prog.Splits)),
	}
	for _, sp := range prog.Splits {
		g.registers[sp.Register] = sp
	}
	for i, s := range prog.Stmts {
		g.index[s] = i
		if _, reg := g.registers[s]; reg {
			continue
		}
		if n := ownerOf(s); n != nil {
			g.owner[i] = n
			g.owned[n] = append(g.owned[n], i)
		}
	}
	return g
}

// reach returns the statements start reaches through global references, skipping those in
// stop. The start statements are included.
func (g *graph) reach(start []int, stop map[int]bool) map[int]bool {
	seen := make(map[int]bool)
	queue := make([]int, 0, len(start))
	for _, i := range start {
		if !stop[i] && !seen[i] {
			seen[i] = true
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, name := range js.GlobalRefs(g.stmts[i]) {
			for _, j := range g.owned[name] {
				if !stop[j] && !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return seen
}

func ownerOf(s js.Stmt) *js.Name {
	if n := js.Defines(s); n != nil {
		return n
	}
	es, ok := s.(*js.ExprStmt)
	if !ok {
		return nil
	}
	switch x := es.X.(type) {
	case *js.Assign:
		if d, ok := x.X.(*js.Dot); ok {
			return rootGlobal(d.X)
		}
	case *js.Call:
		ref, ok := x.Fn.(*js.NameRef)
		if !ok || ref.Name.Obfuscatable || ref.Name.Ident != js.RTDefineClass || len(x.Args) == 0 {
			return nil
		}
		return rootGlobal(x.Args[0])
	}
	return nil
}

func rootGlobal(e js.Expr) *js.Name {
	for {
		switch x := e.(type) {
		case *js.Dot:
			e = x.X
		case *js.NameRef:
			if x.Name.Kind == js.NameGlobal {
				return x.Name
			}
			return nil
		default:
			return nil
		}
	}
}
