package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/permc/internal/core/ports"
)

const (
	// OptionsNodeID is the unique identifier for the options loader Graft node.
	OptionsNodeID graft.ID = "adapter.options_loader"
	// ModuleNodeID is the unique identifier for the module loader Graft node.
	ModuleNodeID graft.ID = "adapter.module_loader"
)

func init() {
	graft.Register(graft.Node[ports.OptionsLoader]{
		ID:        OptionsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.OptionsLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOptionsLoader(log), nil
		},
	})

	graft.Register(graft.Node[ports.ModuleLoader]{
		ID:        ModuleNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ModuleLoader, error) {
			return NewModuleLoader(), nil
		},
	})
}
