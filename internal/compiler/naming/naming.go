// Package naming assigns the final identifiers of an output tree. Exactly one strategy runs per
// permutation: minimal identifiers with string interning, readable identifiers, or fully
// qualified identifiers for diagnostics.
package naming

import (
	"cmp"
	"slices"
	"strconv"

	"go.trai.ch/permc/internal/compiler/js"
	"go.trai.ch/permc/internal/core/domain"
)

// Stats reports what a strategy did.
type Stats struct {
	Renamed  int
	Interned int
}

// Strategy sets Short on every obfuscatable name of a program. Names that are not obfuscatable
// keep their identifier and are never reused.
type Strategy interface {
	Mode() domain.OutputMode
	Apply(prog *js.Program) Stats
}

// For returns the strategy of mode.
func For(mode domain.OutputMode) (Strategy, error) {
	mode, err := domain.ParseOutputMode(string(mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case domain.OutputModePretty:
		return Pretty{}, nil
	case domain.OutputModeDetailed:
		return Detailed{}, nil
	default:
		return Obfuscated{}, nil
	}
}

// namer proposes an identifier for n that is not in taken.
type namer func(n *js.Name, taken map[string]bool) string

// scope is one top-level function, or the statements outside every function.
type scope struct {
	locals  []*js.Name
	fixed   []string
	globals []*js.Name
	seen    map[*js.Name]bool
}

func newScope() *scope {
	return &scope{seen: make(map[*js.Name]bool)}
}

func (s *scope) note(n *js.Name) {
	if s.seen[n] {
		return
	}
	s.seen[n] = true
	switch {
	case n.Kind == js.NameGlobal:
		s.globals = append(s.globals, n)
	case !n.Obfuscatable:
		s.fixed = append(s.fixed, n.Ident)
	default:
		s.locals = append(s.locals, n)
	}
}

// usage is every name of a program grouped by namespace, in first-use order.
type usage struct {
	globals    []*js.Name
	properties []*js.Name
	fixed      map[js.NameKind][]string
	counts     map[*js.Name]int
	scopes     []*scope
}

func collect(prog *js.Program) *usage {
	u := &usage{fixed: make(map[js.NameKind][]string), counts: make(map[*js.Name]int)}
	top := newScope()
	u.scopes = append(u.scopes, top)

	for _, s := range prog.Stmts {
		sc := top
		if _, ok := s.(*js.FuncDecl); ok {
			sc = newScope()
			u.scopes = append(u.scopes, sc)
		}
		note := func(n *js.Name) {
			if n == nil {
				return
			}
			u.counts[n]++
			if n.Kind == js.NameProperty {
				u.add(&u.properties, n)
				return
			}
			if n.Kind == js.NameGlobal {
				u.add(&u.globals, n)
			}
			sc.note(n)
		}
		js.Walk(s, func(c js.Node) bool {
			switch c := c.(type) {
			case *js.NameRef:
				note(c.Name)
			case *js.Dot:
				note(c.Prop)
			case *js.VarDecl:
				note(c.Name)
			case *js.Try:
				note(c.Catch)
			case *js.Func:
				note(c.Name)
				for _, p := range c.Params {
					note(p)
				}
				for _, d := range c.Deps {
					note(d)
				}
			}
			return true
		})
	}
	return u
}

func (u *usage) add(list *[]*js.Name, n *js.Name) {
	if u.counts[n] > 1 {
		return
	}
	if !n.Obfuscatable {
		u.fixed[n.Kind] = append(u.fixed[n.Kind], n.Ident)
		return
	}
	*list = append(*list, n)
}

// byFrequency orders names by descending use count, then by first use.
func byFrequency(names []*js.Name, counts map[*js.Name]int) []*js.Name {
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b *js.Name) int {
		return cmp.Compare(counts[b], counts[a])
	})
	return out
}

func inOrder(names []*js.Name, _ map[*js.Name]int) []*js.Name {
	return names
}

// assign names every namespace. Globals go first so each function's locals can avoid the
// globals that function refers to.
func assign(u *usage, order func([]*js.Name, map[*js.Name]int) []*js.Name, mk func(js.NameKind) namer) int {
	renamed := 0
	rename := func(names []*js.Name, taken map[string]bool, next namer) {
		for _, n := range order(names, u.counts) {
			s := next(n, taken)
			taken[s] = true
			n.Short = s
			renamed++
		}
	}

	rename(u.globals, newTaken(reservedWords, hostGlobals, u.fixed[js.NameGlobal]), mk(js.NameGlobal))
	rename(u.properties, newTaken(reservedWords, hostProperties, u.fixed[js.NameProperty]), mk(js.NameProperty))
	for _, sc := range u.scopes {
		taken := newTaken(reservedWords, hostGlobals, sc.fixed)
		for _, g := range sc.globals {
			taken[g.String()] = true
		}
		rename(sc.locals, taken, mk(js.NameLocal))
	}
	return renamed
}

// unique appends _1, _2, ... to base until the result is free.
func unique(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		s := base + "_" + strconv.Itoa(i)
		if !taken[s] {
			return s
		}
	}
}
