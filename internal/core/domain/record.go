package domain

import "encoding/hex"

// DigestSize is the length in bytes of a content digest.
const DigestSize = 32

// Digest identifies a file by the blake3 hash of its bytes.
type Digest [DigestSize]byte

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never set.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes a hex digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != DigestSize {
		return d, ErrHashMismatch
	}
	copy(d[:], b)
	return d, nil
}

// Root is a library the resolver starts walking from.
type Root struct {
	Name string
	Path string
}

// HashedFileRecord describes one library of a build's dependency closure.
type HashedFileRecord struct {
	Name         string   `json:"name"`
	LocalPath    string   `json:"local_path"`
	RelativePath string   `json:"relative_path"`
	Hash         Digest   `json:"hash"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// RelativePathFor returns the distribution-relative path of a library.
func RelativePathFor(name string) string {
	return "./" + name
}

// MarshalText encodes the digest as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex digest.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
