package app

import (
	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/engine/orchestrator"
)

// NewRouter exposes the watch event routing. A primed router has already seen the
// current content of every asset.
func NewRouter(code, assets []string, primed bool) func(ports.WatchEvent) (orchestrator.Trigger, bool) {
	r := newRouter(code, assets)
	if primed {
		r.prime(fs.NewWalker())
	}
	return r.route
}
