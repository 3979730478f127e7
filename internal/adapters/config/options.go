// Package config loads compile options and module descriptors.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultOptionsFile is the config file looked up in the working directory when no path is given.
	DefaultOptionsFile = "permc.yaml"
	// EnvPrefix is the prefix of environment variables mapped onto options.
	EnvPrefix = "PERMC_"
)

// OptionsLoader implements ports.OptionsLoader on koanf.
type OptionsLoader struct {
	logger ports.Logger
}

// NewOptionsLoader creates an OptionsLoader.
func NewOptionsLoader(logger ports.Logger) *OptionsLoader {
	return &OptionsLoader{logger: logger}
}

// Load resolves options from, lowest priority first: defaults, the config file, PERMC_
// environment variables and the flags the user changed.
func (l *OptionsLoader) Load(path string, flags *pflag.FlagSet) (domain.CompileOptions, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return domain.CompileOptions{}, zerr.Wrap(err, "failed to load default options")
	}

	cfgFile, err := findOptionsFile(path)
	if err != nil {
		return domain.CompileOptions{}, err
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return domain.CompileOptions{}, zerr.With(zerr.Wrap(err, "failed to read options file"), "path", cfgFile)
		}
		l.logger.Debug("loaded options from " + cfgFile)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return domain.CompileOptions{}, zerr.Wrap(err, "failed to load environment options")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return domain.CompileOptions{}, zerr.Wrap(err, "failed to load flag options")
		}
	}

	var opts domain.CompileOptions
	if err := k.Unmarshal("", &opts); err != nil {
		return domain.CompileOptions{}, zerr.Wrap(errors.Join(domain.ErrInvalidOptions, err), "failed to decode options")
	}

	mode, err := domain.ParseOutputMode(string(opts.OutputMode))
	if err != nil {
		return domain.CompileOptions{}, err
	}
	opts.OutputMode = mode

	if err := opts.Validate(); err != nil {
		return domain.CompileOptions{}, err
	}
	return opts, nil
}

func defaults() map[string]any {
	d := domain.DefaultCompileOptions()
	return map[string]any{
		"optimization_level":       d.OptimizationLevel,
		"draft":                    d.Draft,
		"output_mode":              string(d.OutputMode),
		"aggressively_optimize":    d.AggressivelyOptimize,
		"cast_checking_disabled":   d.CastCheckingDisabled,
		"class_metadata_disabled":  d.ClassMetadataDisabled,
		"enable_assertions":        d.EnableAssertions,
		"run_async_enabled":        d.RunAsyncEnabled,
		"soyc_enabled":             d.SoycEnabled,
		"soyc_extra":               d.SoycExtra,
		"compiler_metrics_enabled": d.CompilerMetricsEnabled,
		"strict":                   d.Strict,
		"max_optimize_iterations":  d.MaxOptimizeIterations,
		"max_nodes":                d.MaxNodes,
		"local_workers":            d.LocalWorkers,
		"cache_dir":                d.CacheDir,
		"cache_max_bytes":          d.CacheMaxBytes,
		"out_dir":                  d.OutDir,
		"log_level":                d.LogLevel,
	}
}

// findOptionsFile returns the explicit path, or permc.yaml when it exists in the working
// directory, or nothing.
func findOptionsFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", zerr.With(zerr.Wrap(err, "options file not found"), "path", explicit)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultOptionsFile); err == nil {
		return DefaultOptionsFile, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", zerr.With(zerr.Wrap(err, "failed to stat options file"), "path", DefaultOptionsFile)
	}
	return "", nil
}
