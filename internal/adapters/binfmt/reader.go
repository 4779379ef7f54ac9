// Package binfmt reads the dynamic library imports of native binaries.
package binfmt

import (
	"bytes"
	"errors"
	"slices"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ImportReader = (*Reader)(nil)

// format is one container format the reader understands.
type format struct {
	name  string
	match func(data []byte) bool
	read  func(data []byte) ([]string, error)
}

var formats = []format{
	{name: "elf", match: isELF, read: readELF},
	{name: "pe", match: isPE, read: readPE},
	{name: "mach-o", match: isMachO, read: readMachO},
	{name: "fat mach-o", match: isFatMachO, read: readFatMachO},
}

// Reader dispatches on the leading magic bytes of a binary.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadImports returns the sorted, de-duplicated names of the libraries data imports.
// Data in an unrecognised format has no imports.
func (r *Reader) ReadImports(data []byte) ([]string, error) {
	for _, f := range formats {
		if !f.match(data) {
			continue
		}
		names, err := f.read(data)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrMalformedBinary, err), "format", f.name)
		}
		return normalize(names), nil
	}
	return nil, nil
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func hasPrefix(data []byte, magic string) bool {
	return bytes.HasPrefix(data, []byte(magic))
}
