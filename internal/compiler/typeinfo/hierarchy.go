package typeinfo

import (
	"slices"

	"go.trai.ch/permc/internal/compiler/ast"
)

// IsAssignableFrom reports whether a value of type from can be stored in a variable of type to.
// Declared-type answers come from the subtype sets built by Refresh.
func (r *Registry) IsAssignableFrom(to, from *Type) bool {
	if to == from {
		return true
	}
	if to.Kind == KindPrimitive || from.Kind == KindPrimitive {
		return false
	}
	if to.ID == r.root {
		return true
	}
	if from.Kind == KindArray {
		if to.Kind != KindArray {
			return false
		}
		tc, fc := r.types[to.Component], r.types[from.Component]
		if tc.Kind == KindPrimitive || fc.Kind == KindPrimitive {
			return tc == fc
		}
		return r.IsAssignableFrom(tc, fc)
	}
	if to.Kind == KindArray {
		return false
	}
	if to.Kind == KindParameterized {
		if from.Kind == KindParameterized && !slices.Equal(to.Args, from.Args) {
			return false
		}
		to = r.types[to.Raw]
	}
	if from.Kind == KindParameterized {
		from = r.types[from.Raw]
	}
	if to == from {
		return true
	}
	_, ok := r.subtypes[to.ID][from.ID]
	return ok
}

// IsSubtypeOf reports whether sub is sup or one of its descendants.
func (r *Registry) IsSubtypeOf(sub, sup *Type) bool {
	return r.IsAssignableFrom(sup, sub)
}

// IsSubclass answers IsSubtypeOf for two source-tree classes. A class the registry does not
// know, such as one pruned before the registry was built, only matches itself.
func (r *Registry) IsSubclass(c, sup ast.ClassID) bool {
	if c == sup {
		return c != ast.NoClass
	}
	ct, ok := r.ForClass(c)
	if !ok {
		return false
	}
	st, ok := r.ForClass(sup)
	if !ok {
		return false
	}
	return r.IsSubtypeOf(ct, st)
}

// Subtypes returns every known descendant of t ordered by id.
func (r *Registry) Subtypes(t *Type) []*Type {
	set := r.subtypes[t.ID]
	ids := make([]TypeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Type, len(ids))
	for i, id := range ids {
		out[i] = r.types[id]
	}
	return out
}

// Supertypes returns every ancestor of t, nearest first, without duplicates.
func (r *Registry) Supertypes(t *Type) []*Type {
	var out []*Type
	seen := map[TypeID]bool{t.ID: true}
	queue := r.directSupers(t)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r.types[id])
		queue = append(queue, r.directSupers(r.types[id])...)
	}
	return out
}
