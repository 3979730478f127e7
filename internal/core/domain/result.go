package domain

import "time"

// PermutationResult is the immutable output of one permutation compile.
type PermutationResult struct {
	Permutation Permutation
	// Fragments holds the primary fragment first, then every lazily loadable fragment.
	Fragments   [][]byte
	SymbolTable []byte
	Diagnostics *DiagnosticArtifacts
	Metrics     []PassMetrics
}

// DiagnosticArtifacts are optional side reports. A result is valid without them.
type DiagnosticArtifacts struct {
	Dependencies []byte
	Stories      []byte
	SplitPoints  []byte
}

// PassMetrics records one pipeline step.
type PassMetrics struct {
	Name       string        `yaml:"name"`
	Duration   time.Duration `yaml:"duration"`
	Iterations int           `yaml:"iterations,omitempty"`
	Changes    int           `yaml:"changes,omitempty"`
}
