// Package fs publishes compiled permutations to an output directory.
//
// Layout below the output directory:
//
//	<strong>.cache.js                        primary fragment
//	deferredjs/<strong>/<i>.cache.js          split fragment i
//	symbolMaps/<strong>.symbolMap             symbol table
//	soyc/<strong>/dependencies.yaml           diagnostic reports, when produced
//	soyc/<strong>/stories.txt
//	soyc/<strong>/splitPoints.yaml
//	compilerMetrics/<strong>.yaml             pass metrics, when collected
//	permutations.yaml                         property sets to strong names
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// ManifestFile lists every published permutation.
	ManifestFile = "permutations.yaml"
	// FragmentSuffix ends the name of every fragment file.
	FragmentSuffix = ".cache.js"
)

var _ ports.ArtifactWriter = (*Writer)(nil)

// Manifest is the content of permutations.yaml.
type Manifest struct {
	Permutations []ManifestEntry `yaml:"permutations"`
}

// ManifestEntry describes one published permutation.
type ManifestEntry struct {
	ID         int                  `yaml:"id"`
	StrongName string               `yaml:"strong_name"`
	Properties []domain.PropertySet `yaml:"properties,omitempty"`
	Answers    map[string]string    `yaml:"answers,omitempty"`
	Fragments  int                  `yaml:"fragments"`
}

// Writer implements ports.ArtifactWriter on the local file system.
type Writer struct {
	logger ports.Logger
}

// NewWriter creates a Writer.
func NewWriter(logger ports.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write publishes every result and the manifest below outDir, returning the strong names in
// order.
func (w *Writer) Write(ctx context.Context, outDir string, results []*domain.PermutationResult) ([]string, error) {
	manifest := Manifest{Permutations: make([]ManifestEntry, 0, len(results))}
	names := make([]string, 0, len(results))

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(domain.ErrCancelled, err)
		}

		strong := StrongName(res.Fragments)
		if err := writeResult(outDir, strong, res); err != nil {
			return nil, zerr.With(err, "permutation", res.Permutation.ID)
		}
		names = append(names, strong)
		manifest.Permutations = append(manifest.Permutations, ManifestEntry{
			ID:         res.Permutation.ID,
			StrongName: strong,
			Properties: res.Permutation.Properties,
			Answers:    res.Permutation.Answers,
			Fragments:  len(res.Fragments),
		})
		w.logger.Info(fmt.Sprintf("permutation %d (%s) published as %s", res.Permutation.ID,
			res.Permutation.Label(), strong))
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode permutation manifest")
	}
	if err := writeFile(filepath.Join(outDir, ManifestFile), data); err != nil {
		return nil, err
	}
	return names, nil
}

func writeResult(outDir, strong string, res *domain.PermutationResult) error {
	for i, fragment := range res.Fragments {
		if err := writeFile(FragmentPath(outDir, strong, i), fragment); err != nil {
			return err
		}
	}

	if err := writeFile(filepath.Join(outDir, "symbolMaps", strong+".symbolMap"), res.SymbolTable); err != nil {
		return err
	}

	if d := res.Diagnostics; d != nil {
		dir := filepath.Join(outDir, "soyc", strong)
		for name, data := range map[string][]byte{
			"dependencies.yaml": d.Dependencies,
			"stories.txt":       d.Stories,
			"splitPoints.yaml":  d.SplitPoints,
		} {
			if data == nil {
				continue
			}
			if err := writeFile(filepath.Join(dir, name), data); err != nil {
				return err
			}
		}
	}

	if len(res.Metrics) > 0 {
		data, err := yaml.Marshal(res.Metrics)
		if err != nil {
			return zerr.Wrap(err, "failed to encode compiler metrics")
		}
		if err := writeFile(filepath.Join(outDir, "compilerMetrics", strong+".yaml"), data); err != nil {
			return err
		}
	}
	return nil
}

// FragmentPath returns where fragment i of the permutation with the given strong name lives.
func FragmentPath(outDir, strong string, i int) string {
	if i == 0 {
		return filepath.Join(outDir, strong+FragmentSuffix)
	}
	return filepath.Join(outDir, "deferredjs", strong, strconv.Itoa(i)+FragmentSuffix)
}

// writeFile replaces path with data through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create artifact directory"), "path", dir)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create artifact"), "path", path)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to write artifact"), "path", path)
	}
	if err := tmp.Chmod(0o644); err != nil { //nolint:gosec // Published artifacts are world readable
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to set artifact mode"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to close artifact"), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.With(zerr.Wrap(err, "failed to publish artifact"), "path", path)
	}
	return nil
}
