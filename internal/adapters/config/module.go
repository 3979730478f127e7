package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultModuleFile is the descriptor name used when no path is given.
const DefaultModuleFile = "module.yaml"

// ModuleLoader implements ports.ModuleLoader using a YAML file.
type ModuleLoader struct{}

// NewModuleLoader creates a ModuleLoader.
func NewModuleLoader() *ModuleLoader {
	return &ModuleLoader{}
}

// Load reads and validates the descriptor at path.
func (*ModuleLoader) Load(path string) (*domain.ModuleDescriptor, error) {
	if path == "" {
		path = DefaultModuleFile
	}
	return LoadModule(path)
}

// LoadModule reads a module descriptor from the given path. The program path is resolved
// against the descriptor's directory.
func LoadModule(path string) (*domain.ModuleDescriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read module descriptor"), "path", path)
	}

	var mf ModuleFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse module descriptor"), "path", path)
	}

	if err := validate(&mf); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	program := mf.Program
	if !filepath.IsAbs(program) {
		program = filepath.Join(dir, program)
	}

	rules := make([]domain.RebindRule, len(mf.Rebinds))
	for i, r := range mf.Rebinds {
		rules[i] = domain.RebindRule{Request: r.Request, Answer: r.Answer, When: r.When}
	}

	return &domain.ModuleDescriptor{
		Name:        mf.Name,
		EntryPoints: canonicalize(mf.EntryPoints),
		ExtraRoots:  canonicalize(mf.ExtraRoots),
		Properties:  canonicalizeProperties(mf.Properties),
		Rebinds:     rules,
		Program:     program,
		Dir:         dir,
	}, nil
}

func validate(mf *ModuleFile) error {
	if strings.TrimSpace(mf.Name) == "" {
		return zerr.Wrap(domain.ErrInvalidModule, "module name is required")
	}
	if len(mf.EntryPoints) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidModule, "module declares no entry points"), "module", mf.Name)
	}
	if mf.Program == "" {
		return zerr.With(zerr.Wrap(domain.ErrInvalidModule, "module names no program file"), "module", mf.Name)
	}

	for name, values := range mf.Properties {
		if len(values) == 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidModule, "property has no values"), "property", name)
		}
	}

	for i, r := range mf.Rebinds {
		if r.Request == "" || r.Answer == "" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidModule, "rebind rule needs a request and an answer"),
				"rule", i)
		}
		for prop, value := range r.When {
			values, ok := mf.Properties[prop]
			if !ok {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidModule, "rebind rule uses an undeclared property"),
					"rule", i), "property", prop)
			}
			if !slices.Contains(values, value) {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidModule, "rebind rule uses an undeclared value"),
					"property", prop), "value", value)
			}
		}
	}
	return nil
}

func canonicalize(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func canonicalizeProperties(props map[string][]string) map[string][]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string][]string, len(props))
	for name, values := range props {
		// Value order is significant: it fixes the permutation order.
		seen := make(map[string]struct{}, len(values))
		var uniq []string
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
		out[name] = uniq
	}
	return out
}
