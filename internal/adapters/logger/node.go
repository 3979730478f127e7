package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/core/domain"
	"go.trai.ch/permc/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// levelEnv is read once at startup so that messages logged before the compile options are
// loaded already honor the configured level. The options loader applies the same variable later.
const levelEnv = "PERMC_LOG_LEVEL"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return fromEnv(), nil
		},
	})
}

func fromEnv() *Logger {
	l := New()
	if v, ok := os.LookupEnv(levelEnv); ok {
		l.SetLevel(domain.ParseLogLevel(v))
	}
	return l
}
