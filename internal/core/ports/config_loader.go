package ports

import (
	"github.com/spf13/pflag"
	"go.trai.ch/permc/internal/core/domain"
)

// OptionsLoader resolves compile options from every configuration layer.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type OptionsLoader interface {
	// Load layers defaults, the optional config file at path, the environment and changed flags.
	Load(path string, flags *pflag.FlagSet) (domain.CompileOptions, error)
}

// ModuleLoader reads a module descriptor.
type ModuleLoader interface {
	Load(path string) (*domain.ModuleDescriptor, error)
}
