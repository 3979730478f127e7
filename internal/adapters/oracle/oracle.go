// Package oracle answers deferred-binding requests from the rebind rules of a module.
package oracle

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
)

// Oracle implements ports.RebindOracle.
type Oracle struct {
	permutations []domain.Permutation
	requests     []string
	possible     map[string][]string
}

// Factory implements ports.OracleFactory.
type Factory struct{}

// NewFactory creates a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// New builds the oracle of module.
func (*Factory) New(module *domain.ModuleDescriptor) (ports.RebindOracle, error) {
	return New(module.Properties, module.Rebinds), nil
}

// New expands properties into their cartesian product, answers every request of rules for
// each property set, and collapses property sets that end up with identical answers into a
// single permutation.
func New(properties map[string][]string, rules []domain.RebindRule) *Oracle {
	requests := make([]string, 0, len(rules))
	for _, r := range rules {
		requests = append(requests, r.Request)
	}
	slices.Sort(requests)
	requests = slices.Compact(requests)

	o := &Oracle{
		requests: requests,
		possible: make(map[string][]string, len(requests)),
	}

	index := make(map[string]int)
	for _, props := range product(properties) {
		answers := answer(requests, rules, props)
		key := answersKey(requests, answers)
		if id, ok := index[key]; ok {
			if props != nil {
				o.permutations[id].Properties = append(o.permutations[id].Properties, props)
			}
			continue
		}

		perm := domain.Permutation{ID: len(o.permutations), Answers: answers}
		if props != nil {
			perm.Properties = []domain.PropertySet{props}
		}
		index[key] = perm.ID
		o.permutations = append(o.permutations, perm)

		for req, ans := range answers {
			if !slices.Contains(o.possible[req], ans) {
				o.possible[req] = append(o.possible[req], ans)
			}
		}
	}
	for req := range o.possible {
		slices.Sort(o.possible[req])
	}
	return o
}

// Permutations returns the distinct permutations in stable order.
func (o *Oracle) Permutations() []domain.Permutation {
	return slices.Clone(o.permutations)
}

// PossibleAnswers returns the sorted union of the answers request receives. A request without
// rules only ever answers itself.
func (o *Oracle) PossibleAnswers(request string) []string {
	if answers, ok := o.possible[request]; ok {
		return slices.Clone(answers)
	}
	return []string{request}
}

// Requests returns the sorted set of requests that have rules.
func (o *Oracle) Requests() []string {
	return slices.Clone(o.requests)
}

// Answers returns PossibleAnswers for every request, in the shape precompile takes as roots.
func Answers(o ports.RebindOracle) map[string][]string {
	out := make(map[string][]string)
	for _, req := range o.Requests() {
		out[req] = o.PossibleAnswers(req)
	}
	return out
}

// product enumerates every assignment of a value to each property. Property names are taken
// in sorted order and values in declaration order, the last property varying fastest. No
// properties yield a single nil set.
func product(properties map[string][]string) []domain.PropertySet {
	names := slices.Sorted(maps.Keys(properties))
	if len(names) == 0 {
		return []domain.PropertySet{nil}
	}

	sets := []domain.PropertySet{{}}
	for _, name := range names {
		next := make([]domain.PropertySet, 0, len(sets)*len(properties[name]))
		for _, set := range sets {
			for _, value := range properties[name] {
				ps := maps.Clone(set)
				ps[name] = value
				next = append(next, ps)
			}
		}
		sets = next
	}
	return sets
}

// answer picks, for each request, the answer of the first matching rule.
func answer(requests []string, rules []domain.RebindRule, props domain.PropertySet) map[string]string {
	answers := make(map[string]string, len(requests))
	for _, r := range rules {
		if _, done := answers[r.Request]; done {
			continue
		}
		if r.Matches(props) {
			answers[r.Request] = r.Answer
		}
	}
	for _, req := range requests {
		if _, ok := answers[req]; !ok {
			answers[req] = req
		}
	}
	return answers
}

func answersKey(requests []string, answers map[string]string) string {
	var b strings.Builder
	for _, req := range requests {
		b.WriteString(req)
		b.WriteByte('=')
		b.WriteString(answers[req])
		b.WriteByte(';')
	}
	return b.String()
}
