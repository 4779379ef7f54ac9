package ports

import (
	"context"

	"go.trai.ch/hotswap/internal/core/domain"
)

// UpdateSource delivers the libraries and assets a runner should apply.
type UpdateSource interface {
	// Updates starts the stream. The channel ends with a MsgConnectionClosed message and is
	// then closed.
	Updates(ctx context.Context) (<-chan domain.RunnerMessage, error)
}
