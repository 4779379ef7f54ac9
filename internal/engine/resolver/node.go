package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/adapters/binfmt" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hotswap/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hotswap/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hotswap/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[ports.DependencyResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			binfmt.NodeID,
			fs.ListerNodeID,
			fs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.DependencyResolver, error) {
			reader, err := graft.Dep[ports.ImportReader](ctx)
			if err != nil {
				return nil, err
			}
			lister, err := graft.Dep[ports.DirectoryLister](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(reader, lister, hasher, log, DefaultCacheSize)
		},
	})
}
