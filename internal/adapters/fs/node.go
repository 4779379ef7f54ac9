package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hotswap/internal/core/ports"
)

const (
	WalkerNodeID graft.ID = "adapter.fs.walker"
	ListerNodeID graft.ID = "adapter.fs.lister"
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.DirectoryLister]{
		ID:        ListerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DirectoryLister, error) {
			return NewLister(), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Hasher, error) {
			return NewHasher(), nil
		},
	})
}
