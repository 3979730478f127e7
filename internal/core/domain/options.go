package domain

import (
	"runtime"
	"strings"

	"go.trai.ch/zerr"
)

// OutputMode selects the naming strategy applied to the output tree.
type OutputMode string

const (
	// OutputModeObfuscated assigns minimal identifiers and interns repeated string literals.
	OutputModeObfuscated OutputMode = "OBFUSCATED"
	// OutputModePretty keeps readable identifiers.
	OutputModePretty OutputMode = "PRETTY"
	// OutputModeDetailed uses fully qualified identifiers including signatures.
	OutputModeDetailed OutputMode = "DETAILED"
)

// ParseOutputMode converts a case-insensitive name into an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToUpper(strings.TrimSpace(s))) {
	case OutputModeObfuscated:
		return OutputModeObfuscated, nil
	case OutputModePretty:
		return OutputModePretty, nil
	case OutputModeDetailed:
		return OutputModeDetailed, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidOptions, "unknown output mode"), "output_mode", s)
	}
}

const (
	// DefaultMaxOptimizeIterations bounds both fixpoint loops.
	DefaultMaxOptimizeIterations = 100
	// DefaultMaxNodes bounds the number of expression and statement nodes in one program arena.
	DefaultMaxNodes = 4_000_000
	// OptimizationLevelDraft is the level that selects a single optimization pass.
	OptimizationLevelDraft = 0
	// OptimizationLevelMax is the default optimization level.
	OptimizationLevelMax = 9
)

// CompileOptions is the configuration shared by every permutation of one compile.
type CompileOptions struct {
	OptimizationLevel      int        `koanf:"optimization_level" yaml:"optimization_level"`
	Draft                  bool       `koanf:"draft" yaml:"draft"`
	OutputMode             OutputMode `koanf:"output_mode" yaml:"output_mode"`
	AggressivelyOptimize   bool       `koanf:"aggressively_optimize" yaml:"aggressively_optimize"`
	CastCheckingDisabled   bool       `koanf:"cast_checking_disabled" yaml:"cast_checking_disabled"`
	ClassMetadataDisabled  bool       `koanf:"class_metadata_disabled" yaml:"class_metadata_disabled"`
	EnableAssertions       bool       `koanf:"enable_assertions" yaml:"enable_assertions"`
	RunAsyncEnabled        bool       `koanf:"run_async_enabled" yaml:"run_async_enabled"`
	SoycEnabled            bool       `koanf:"soyc_enabled" yaml:"soyc_enabled"`
	SoycExtra              bool       `koanf:"soyc_extra" yaml:"soyc_extra"`
	CompilerMetricsEnabled bool       `koanf:"compiler_metrics_enabled" yaml:"compiler_metrics_enabled"`
	Strict                 bool       `koanf:"strict" yaml:"strict"`

	MaxOptimizeIterations int    `koanf:"max_optimize_iterations" yaml:"max_optimize_iterations"`
	MaxNodes              int    `koanf:"max_nodes" yaml:"max_nodes"`
	LocalWorkers          int    `koanf:"local_workers" yaml:"local_workers"`
	CacheDir              string `koanf:"cache_dir" yaml:"cache_dir"`
	CacheMaxBytes         int64  `koanf:"cache_max_bytes" yaml:"cache_max_bytes"`
	OutDir                string `koanf:"out_dir" yaml:"out_dir"`
	LogLevel              string `koanf:"log_level" yaml:"log_level"`
}

// DefaultCompileOptions returns the options used when nothing is configured.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		OptimizationLevel:     OptimizationLevelMax,
		OutputMode:            OutputModeObfuscated,
		AggressivelyOptimize:  true,
		RunAsyncEnabled:       true,
		MaxOptimizeIterations: DefaultMaxOptimizeIterations,
		MaxNodes:              DefaultMaxNodes,
		LocalWorkers:          runtime.NumCPU(),
		OutDir:                "war",
		LogLevel:              "info",
	}
}

// IsDraft reports whether the source-level optimizer runs a single pass instead of a fixpoint.
func (o CompileOptions) IsDraft() bool {
	return o.Draft || o.OptimizationLevel <= OptimizationLevelDraft
}

// SplittingEnabled reports whether fragment splitting is eligible.
func (o CompileOptions) SplittingEnabled() bool {
	return o.RunAsyncEnabled && o.AggressivelyOptimize
}

// Validate checks option ranges.
func (o CompileOptions) Validate() error {
	if _, err := ParseOutputMode(string(o.OutputMode)); err != nil {
		return err
	}
	if o.OptimizationLevel < 0 || o.OptimizationLevel > OptimizationLevelMax {
		return zerr.With(zerr.Wrap(ErrInvalidOptions, "optimization level out of range"),
			"optimization_level", o.OptimizationLevel)
	}
	if o.MaxOptimizeIterations <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidOptions, "max optimize iterations must be positive"),
			"max_optimize_iterations", o.MaxOptimizeIterations)
	}
	if o.MaxNodes <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidOptions, "max nodes must be positive"), "max_nodes", o.MaxNodes)
	}
	if o.LocalWorkers <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidOptions, "local workers must be positive"), "local_workers", o.LocalWorkers)
	}
	if o.CacheMaxBytes < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidOptions, "cache max bytes must not be negative"),
			"cache_max_bytes", o.CacheMaxBytes)
	}
	if o.SoycExtra && !o.SoycEnabled {
		return zerr.Wrap(ErrInvalidOptions, "soyc_extra requires soyc_enabled")
	}
	return nil
}
