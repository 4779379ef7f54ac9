package ports

import (
	"context"

	"go.trai.ch/hotswap/internal/core/domain"
)

// ImportReader extracts the names of dynamic libraries a binary imports.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ImportReader interface {
	// ReadImports returns the imported library names of data.
	// Unrecognised container formats yield an empty result and no error.
	ReadImports(data []byte) ([]string, error)
}

// DirectoryLister lists the regular files directly inside a set of directories.
type DirectoryLister interface {
	// ListFiles returns a file name to path map. When several directories contain the same
	// name the earliest directory in dirs wins. Unreadable directories are skipped.
	ListFiles(ctx context.Context, dirs []string) map[string]string
}

// DependencyResolver computes the content-addressed dependency closure of built artifacts.
type DependencyResolver interface {
	// Resolve walks the imports of roots through searchDirs and returns one record per library.
	Resolve(ctx context.Context, roots []domain.Root, searchDirs []string) ([]domain.HashedFileRecord, error)
}
