// Package frontend reads the declaration graph a front end writes for the compiler.
package frontend

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/permc/internal/compiler/ast"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/zerr"
)

// Loader implements ports.ProgramLoader for CBOR program files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load decodes the program file at path.
func (l *Loader) Load(ctx context.Context, path string) (*ast.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(domain.ErrCancelled, err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the module descriptor
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read program file"), "path", path)
	}

	var p ast.Program
	if err := ast.Unmarshal(data, &p); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if err := check(&p); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.logger.Debug("loaded program " + filepath.Base(path))
	return &p, nil
}

// Save writes p to path in the format Load reads.
func Save(path string, p *ast.Program) error {
	data, err := ast.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create program directory"), "path", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write program file"), "path", path)
	}
	return nil
}
