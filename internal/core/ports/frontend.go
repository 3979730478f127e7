package ports

import (
	"context"

	"go.trai.ch/permc/internal/compiler/ast"
)

// ProgramLoader supplies the fully linked declaration graph produced by a front end.
//
//go:generate mockgen -source=frontend.go -destination=mocks/mock_frontend.go -package=mocks
type ProgramLoader interface {
	Load(ctx context.Context, path string) (*ast.Program, error)
}
