package ports

import "go.trai.ch/hotswap/internal/core/domain"

// Hasher computes content digests.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFile digests the current bytes of the file at path.
	HashFile(path string) (domain.Digest, error)
	// HashBytes digests data.
	HashBytes(data []byte) domain.Digest
}
