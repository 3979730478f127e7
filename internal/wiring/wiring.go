// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/permc/internal/adapters/cas"
	_ "go.trai.ch/permc/internal/adapters/config"
	_ "go.trai.ch/permc/internal/adapters/frontend"
	_ "go.trai.ch/permc/internal/adapters/fs"
	_ "go.trai.ch/permc/internal/adapters/logger"
	_ "go.trai.ch/permc/internal/adapters/oracle"
	_ "go.trai.ch/permc/internal/adapters/telemetry"
	_ "go.trai.ch/permc/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/permc/internal/app"
	_ "go.trai.ch/permc/internal/engine/scheduler"
)
