package ports

import (
	"context"

	"go.trai.ch/hotswap/internal/core/domain"
)

// ArtifactMirror copies built libraries to external storage, addressed by digest.
type ArtifactMirror interface {
	// Mirror uploads every record not already present and returns the number uploaded.
	Mirror(ctx context.Context, target domain.Target, records []domain.HashedFileRecord) (int, error)
}
