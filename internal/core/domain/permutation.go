package domain

import (
	"maps"
	"slices"
	"strings"
)

// PropertySet is one assignment of a value to every deferred-binding property.
type PropertySet map[string]string

// String renders the set as sorted name=value pairs.
func (p PropertySet) String() string {
	keys := slices.Sorted(maps.Keys(p))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+p[k])
	}
	return strings.Join(parts, ",")
}

// RebindRule answers a rebind request with a concrete type when every property in When matches.
type RebindRule struct {
	Request string            `yaml:"request"`
	Answer  string            `yaml:"answer"`
	When    map[string]string `yaml:"when,omitempty"`
}

// Matches reports whether the rule applies to props.
func (r RebindRule) Matches(props PropertySet) bool {
	for k, v := range r.When {
		if props[k] != v {
			return false
		}
	}
	return true
}

// ModuleDescriptor names the program, its entry points and its deferred-binding configuration.
type ModuleDescriptor struct {
	Name        string              `yaml:"name"`
	EntryPoints []string            `yaml:"entry_points"`
	ExtraRoots  []string            `yaml:"extra_roots,omitempty"`
	Properties  map[string][]string `yaml:"properties,omitempty"`
	Rebinds     []RebindRule        `yaml:"rebinds,omitempty"`
	Program     string              `yaml:"program"`

	// Dir is the directory the descriptor was loaded from; relative paths resolve against it.
	Dir string `yaml:"-"`
}

// Permutation is one concrete combination of rebind answers. Several property sets may share it
// when they produce identical answers.
type Permutation struct {
	ID         int               `yaml:"id"`
	Properties []PropertySet     `yaml:"properties"`
	Answers    map[string]string `yaml:"answers"`
}

// Answer returns the concrete type chosen for request. Requests without a rule answer themselves.
func (p Permutation) Answer(request string) string {
	if a, ok := p.Answers[request]; ok {
		return a
	}
	return request
}

// Label is a short human-readable description used by logs and progress output.
func (p Permutation) Label() string {
	if len(p.Properties) == 0 {
		return "default"
	}
	labels := make([]string, 0, len(p.Properties))
	for _, ps := range p.Properties {
		labels = append(labels, ps.String())
	}
	return strings.Join(labels, " | ")
}
