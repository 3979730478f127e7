package ports

import "go.trai.ch/permc/internal/core/domain"

// RebindOracle answers deferred-binding requests for every permutation of a module.
//
//go:generate mockgen -source=oracle.go -destination=mocks/mock_oracle.go -package=mocks
type RebindOracle interface {
	// Permutations returns the distinct permutations in stable order.
	Permutations() []domain.Permutation

	// PossibleAnswers returns every answer request can receive across all permutations.
	PossibleAnswers(request string) []string

	// Requests returns the sorted set of type names that have rebind rules.
	Requests() []string
}

// OracleFactory builds the oracle for a module.
type OracleFactory interface {
	New(module *domain.ModuleDescriptor) (RebindOracle, error)
}
