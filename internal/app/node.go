package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/permc/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/frontend"  //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/oracle"    //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/permc/internal/core/ports"
	"go.trai.ch/permc/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			config.OptionsNodeID,
			config.ModuleNodeID,
			frontend.NodeID,
			oracle.NodeID,
			cas.NodeID,
			fs.WriterNodeID,
			fs.VerifierNodeID,
			scheduler.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

//nolint:cyclop // one lookup per dependency
func runAppNode(ctx context.Context) (*App, error) {
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	options, err := graft.Dep[ports.OptionsLoader](ctx)
	if err != nil {
		return nil, err
	}

	modules, err := graft.Dep[ports.ModuleLoader](ctx)
	if err != nil {
		return nil, err
	}

	programs, err := graft.Dep[ports.ProgramLoader](ctx)
	if err != nil {
		return nil, err
	}

	oracles, err := graft.Dep[ports.OracleFactory](ctx)
	if err != nil {
		return nil, err
	}

	caches, err := graft.Dep[ports.ByteCacheOpener](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}

	verifier, err := graft.Dep[*fs.Verifier](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(log, options, modules, programs, oracles, caches, writer, verifier, sched, tracer), nil
}
