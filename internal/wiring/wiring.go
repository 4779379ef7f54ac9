// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/hotswap/internal/adapters/binfmt"
	_ "go.trai.ch/hotswap/internal/adapters/bus"
	_ "go.trai.ch/hotswap/internal/adapters/cargo"
	_ "go.trai.ch/hotswap/internal/adapters/config"
	_ "go.trai.ch/hotswap/internal/adapters/fs"
	_ "go.trai.ch/hotswap/internal/adapters/logger"
	_ "go.trai.ch/hotswap/internal/adapters/telemetry"
	_ "go.trai.ch/hotswap/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/hotswap/internal/app"
	_ "go.trai.ch/hotswap/internal/engine/resolver"
)
