package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/adapters/config"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newOptionsLoader(t *testing.T) *config.OptionsLoader {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewOptionsLoader(logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func compileFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("compile", pflag.ContinueOnError)
	flags.Int("optimization-level", domain.OptimizationLevelMax, "")
	flags.String("output-mode", string(domain.OutputModeObfuscated), "")
	flags.Bool("draft", false, "")
	flags.Int("local-workers", 1, "")
	return flags
}

func TestOptionsLoader_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := newOptionsLoader(t).Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCompileOptions(), opts)
}

func TestOptionsLoader_Layers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, config.DefaultOptionsFile, `
output_mode: pretty
optimization_level: 3
soyc_enabled: true
local_workers: 2
cache_max_bytes: 1048576
`)
	t.Setenv("PERMC_OPTIMIZATION_LEVEL", "5")
	t.Setenv("PERMC_CACHE_DIR", "/tmp/permc-cache")

	flags := compileFlags()
	require.NoError(t, flags.Parse([]string{"--local-workers=4"}))

	opts, err := newOptionsLoader(t).Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, domain.OutputModePretty, opts.OutputMode, "file value, normalized")
	assert.True(t, opts.SoycEnabled)
	assert.Equal(t, 5, opts.OptimizationLevel, "environment overrides the file")
	assert.Equal(t, "/tmp/permc-cache", opts.CacheDir)
	assert.Equal(t, int64(1<<20), opts.CacheMaxBytes)
	assert.Equal(t, 4, opts.LocalWorkers, "changed flags override everything")
	assert.False(t, opts.Draft, "unchanged flags do not override")
}

func TestOptionsLoader_ExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, t.TempDir(), "custom.yaml", "draft: true\n")

	opts, err := newOptionsLoader(t).Load(path, nil)
	require.NoError(t, err)
	assert.True(t, opts.IsDraft())

	_, err = newOptionsLoader(t).Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestOptionsLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown output mode", "output_mode: minified\n"},
		{"optimization level out of range", "optimization_level: 12\n"},
		{"non-positive workers", "local_workers: 0\n"},
		{"negative cache size", "cache_max_bytes: -1\n"},
		{"soyc extra without soyc", "soyc_extra: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			path := writeFile(t, t.TempDir(), "permc.yaml", tt.content)

			_, err := newOptionsLoader(t).Load(path, nil)
			require.ErrorIs(t, err, domain.ErrInvalidOptions)
		})
	}
}
