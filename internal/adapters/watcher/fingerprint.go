package watcher

import (
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprints remembers a fast content hash per file so that writes which leave a file
// unchanged, as many editors and asset tools do, can be ignored.
type Fingerprints struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewFingerprints creates an empty fingerprint table.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{hashes: make(map[string]uint64)}
}

// Changed reports whether the content at path differs from the last call for the same
// path. A file seen for the first time, and a file that can no longer be read, count as
// changed.
func (f *Fingerprints) Changed(path string) bool {
	sum, err := fingerprint(path)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		delete(f.hashes, path)
		return true
	}
	prev, seen := f.hashes[path]
	f.hashes[path] = sum
	return !seen || prev != sum
}

func fingerprint(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, file); err != nil {
		return 0, err
	}
	return digest.Sum64(), nil
}
