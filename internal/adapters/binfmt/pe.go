package binfmt

import (
	"bytes"
	"debug/pe"
	"strings"
)

func isPE(data []byte) bool {
	return hasPrefix(data, "MZ")
}

// readPE returns the DLL names of the import directory.
// debug/pe only exposes imports as "symbol:dll" pairs, so the DLL set is derived from those.
func readPE(data []byte) ([]string, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // reader backed by memory

	syms, err := f.ImportedSymbols()
	if err != nil {
		return nil, err
	}

	libs := make([]string, 0, len(syms))
	for _, sym := range syms {
		_, dll, ok := strings.Cut(sym, ":")
		if ok {
			libs = append(libs, dll)
		}
	}
	return libs, nil
}
