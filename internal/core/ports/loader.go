package ports

import "unsafe"

// NativeLibrary is a dynamic library loaded into the process.
type NativeLibrary interface {
	// Call invokes the exported function symbol with a single pointer argument.
	Call(symbol string, arg unsafe.Pointer) (uintptr, error)
	// Close unloads the library. Calls after Close fail with domain.ErrLibraryUnavailable.
	Close() error
}

// LibraryLoader opens dynamic libraries through the platform loader.
type LibraryLoader interface {
	Open(path string) (NativeLibrary, error)
}
