package frontend

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/permc/internal/core/ports"
)

// NodeID is the unique identifier for the program loader Graft node.
const NodeID graft.ID = "adapter.frontend"

func init() {
	graft.Register(graft.Node[ports.ProgramLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProgramLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
