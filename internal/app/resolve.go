package app

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/zerr"
)

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	// Libraries are the root libraries whose closure is computed.
	Libraries []string
	// SearchDirs are searched before the default search path.
	SearchDirs []string
}

// Resolve computes the dependency closure of already built libraries, the same way a build
// does before publishing it.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) ([]domain.HashedFileRecord, error) {
	if len(opts.Libraries) == 0 {
		return nil, zerr.Wrap(domain.ErrArtifactNotFound, "no libraries given")
	}

	roots := make([]domain.Root, 0, len(opts.Libraries))
	dirs := slices.Clone(opts.SearchDirs)
	for _, lib := range opts.Libraries {
		path, err := filepath.Abs(lib)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid library path"), "path", lib)
		}
		roots = append(roots, domain.Root{Name: filepath.Base(path), Path: path})
		if dir := filepath.Dir(path); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	records, err := a.resolver.Resolve(ctx, roots, fs.SearchPaths(a.getenv, dirs))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("resolved " + strings.Join(opts.Libraries, ", "))
	return records, nil
}
