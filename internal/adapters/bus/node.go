package bus

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the event bus Graft node.
const NodeID graft.ID = "adapter.bus"

func init() {
	graft.Register(graft.Node[*Bus]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Bus, error) {
			return New(DefaultBuffer), nil
		},
	})
}
