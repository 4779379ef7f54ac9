package binfmt

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/core/ports"
)

// NodeID is the unique identifier for the import reader Graft node.
const NodeID graft.ID = "adapter.binfmt"

func init() {
	graft.Register(graft.Node[ports.ImportReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ImportReader, error) {
			return NewReader(), nil
		},
	})
}
