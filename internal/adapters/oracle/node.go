package oracle

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/core/ports"
)

// NodeID is the unique identifier for the oracle factory Graft node.
const NodeID graft.ID = "adapter.oracle"

func init() {
	graft.Register(graft.Node[ports.OracleFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OracleFactory, error) {
			return NewFactory(), nil
		},
	})
}
