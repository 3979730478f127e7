package ports

import (
	"context"

	"go.trai.ch/permc/internal/core/domain"
)

// ArtifactWriter persists permutation results.
//
//go:generate mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactWriter interface {
	// Write publishes every result below outDir and returns the strong name of each, in order.
	Write(ctx context.Context, outDir string, results []*domain.PermutationResult) ([]string, error)
}
