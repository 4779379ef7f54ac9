package fs

import (
	"io"
	"os"

	"github.com/zeebo/blake3"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes blake3 content digests.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile digests the bytes of the file at path as they are now.
func (h *Hasher) HashFile(path string) (domain.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return domain.Digest{}, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return domain.Digest{}, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	var d domain.Digest
	copy(d[:], hasher.Sum(nil))
	return d, nil
}

// HashBytes digests data.
func (h *Hasher) HashBytes(data []byte) domain.Digest {
	return blake3.Sum256(data)
}
