package cargo

import (
	"context"
	"os/exec"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/adapters/logger"
	"go.trai.ch/hotswap/internal/adapters/telemetry"
	"go.trai.ch/hotswap/internal/core/ports"
)

// NodeID is the unique identifier for the cargo compiler Graft node.
const NodeID graft.ID = "adapter.cargo"

func init() {
	graft.Register(graft.Node[ports.Compiler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, telemetry.TracerNodeID},
		Run: func(ctx context.Context) (ports.Compiler, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewLazy(exec.LookPath, log, tracer), nil
		},
	})
}
