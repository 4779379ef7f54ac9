package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/hotswap/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

// instrumentationName names the tracer of build spans.
const instrumentationName = "go.trai.ch/hotswap"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOTelTracerFrom(NewProvider(log), instrumentationName), nil
		},
	})
}
