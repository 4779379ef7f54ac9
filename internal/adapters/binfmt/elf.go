package binfmt

import (
	"bytes"
	"debug/elf"
)

func isELF(data []byte) bool {
	return hasPrefix(data, elf.ELFMAG)
}

// readELF returns the DT_NEEDED entries of the dynamic section.
func readELF(data []byte) ([]string, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // reader backed by memory

	libs, err := f.ImportedLibraries()
	if err != nil {
		return nil, err
	}
	return libs, nil
}
