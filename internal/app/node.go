package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/adapters/bus"       //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/cargo"     //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/engine/resolver"
	"go.trai.ch/hotswap/internal/native"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cargo.NodeID,
			resolver.NodeID,
			watcher.NodeID,
			bus.NodeID,
			fs.HasherNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.ConcreteNodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	compiler, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}
	res, err := graft.Dep[ports.DependencyResolver](ctx)
	if err != nil {
		return nil, err
	}
	watch, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	events, err := graft.Dep[*bus.Bus](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	concrete, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, compiler, res, watch, events, hasher, native.Loader{}, tracer, log).
		WithLogOutput(concrete.SetOutput), nil
}
