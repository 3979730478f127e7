package config

// ModuleFile represents the structure of a module.yaml descriptor.
type ModuleFile struct {
	Name        string              `yaml:"name"`
	EntryPoints []string            `yaml:"entry_points"`
	ExtraRoots  []string            `yaml:"extra_roots"`
	Properties  map[string][]string `yaml:"properties"`
	Rebinds     []RebindDTO         `yaml:"rebinds"`
	Program     string              `yaml:"program"`
}

// RebindDTO represents one rebind rule in the descriptor.
type RebindDTO struct {
	Request string            `yaml:"request"`
	Answer  string            `yaml:"answer"`
	When    map[string]string `yaml:"when"`
}
