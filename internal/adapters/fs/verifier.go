package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Verifier checks a published output directory against its manifest.
type Verifier struct {
	walker *Walker
}

// NewVerifier creates a new Verifier.
func NewVerifier(walker *Walker) *Verifier {
	return &Verifier{walker: walker}
}

// ReadManifest loads permutations.yaml from outDir.
func ReadManifest(outDir string) (*Manifest, error) {
	path := filepath.Join(outDir, ManifestFile)
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read permutation manifest"), "path", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse permutation manifest"), "path", path)
	}
	return &m, nil
}

// Verify checks that every permutation of the manifest has exactly its fragments on disk and
// that their content still hashes to its strong name.
func (v *Verifier) Verify(outDir string) (*Manifest, error) {
	m, err := ReadManifest(outDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range m.Permutations {
		if entry.Fragments < 1 {
			return nil, mismatch("permutation has no fragments", entry)
		}

		deferred := 0
		if dir := filepath.Join(outDir, "deferredjs", entry.StrongName); dirExists(dir) {
			for range v.walker.WalkFiles(dir, FragmentSuffix) {
				deferred++
			}
		}
		if deferred != entry.Fragments-1 {
			return nil, zerr.With(mismatch("unexpected number of split fragments", entry), "found", deferred)
		}

		fragments := make([][]byte, entry.Fragments)
		for i := range fragments {
			path := FragmentPath(outDir, entry.StrongName, i)
			data, err := os.ReadFile(path) //nolint:gosec // Path is derived from the manifest
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to read fragment"), "path", path)
			}
			fragments[i] = data
		}
		if got := StrongName(fragments); got != entry.StrongName {
			return nil, zerr.With(mismatch("fragment content changed", entry), "hash", got)
		}
	}
	return m, nil
}

func mismatch(msg string, entry ManifestEntry) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactMismatch, msg), "permutation", entry.ID),
		"strong_name", entry.StrongName)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
