package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/core/ports"
)

// NodeID is the unique identifier for the byte cache opener Graft node.
const NodeID graft.ID = "adapter.byte_cache"

func init() {
	graft.Register(graft.Node[ports.ByteCacheOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ByteCacheOpener, error) {
			return NewOpener(), nil
		},
	})
}
