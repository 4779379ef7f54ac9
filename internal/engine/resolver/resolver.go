// Package resolver computes the content-addressed dependency closure of built libraries.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCacheSize is the number of import sets kept across builds.
const DefaultCacheSize = 512

var _ ports.DependencyResolver = (*Resolver)(nil)

// Resolver walks library imports through a set of search directories.
type Resolver struct {
	reader ports.ImportReader
	lister ports.DirectoryLister
	hasher ports.Hasher
	logger ports.Logger

	// imports caches parsed import sets by the digest of the bytes they were parsed from.
	imports *lru.Cache[domain.Digest, []string]
}

// New creates a Resolver with an import cache of cacheSize entries.
func New(
	reader ports.ImportReader,
	lister ports.DirectoryLister,
	hasher ports.Hasher,
	logger ports.Logger,
	cacheSize int,
) (*Resolver, error) {
	cache, err := lru.New[domain.Digest, []string](cacheSize)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create import cache"), "size", cacheSize)
	}
	return &Resolver{
		reader:  reader,
		lister:  lister,
		hasher:  hasher,
		logger:  logger,
		imports: cache,
	}, nil
}

// Resolve returns one record per library reachable from roots, sorted by name.
// Imports that cannot be found in searchDirs are treated as system libraries and skipped.
// Any library that is found but cannot be read or parsed fails the whole resolution.
func (r *Resolver) Resolve(
	ctx context.Context,
	roots []domain.Root,
	searchDirs []string,
) ([]domain.HashedFileRecord, error) {
	available := r.lister.ListFiles(ctx, searchDirs)
	for _, root := range roots {
		available[root.Name] = root.Path
	}

	resolved := make(map[string]string)
	deps := make(map[string][]string)
	missing := make(map[string]bool)

	stack := make([]string, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i].Name)
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := resolved[name]; done || missing[name] {
			continue
		}

		path, ok := available[name]
		if !ok {
			missing[name] = true
			r.logger.Debug(fmt.Sprintf("skipping %s: not found in search paths", name))
			continue
		}
		resolved[name] = path

		imports, err := r.readImports(path)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "library", name), "path", path)
		}

		for i := len(imports) - 1; i >= 0; i-- {
			stack = append(stack, imports[i])
		}
		deps[name] = imports
	}

	return r.records(resolved, deps)
}

func (r *Resolver) readImports(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the search directories
	if err != nil {
		return nil, errors.Join(domain.ErrDependencyResolution, err)
	}

	digest := r.hasher.HashBytes(data)
	if cached, ok := r.imports.Get(digest); ok {
		return cached, nil
	}

	imports, err := r.reader.ReadImports(data)
	if err != nil {
		return nil, errors.Join(domain.ErrDependencyResolution, err)
	}
	r.imports.Add(digest, imports)
	return imports, nil
}

// records hashes every resolved library now that the closure is complete.
func (r *Resolver) records(resolved map[string]string, deps map[string][]string) ([]domain.HashedFileRecord, error) {
	records := make([]domain.HashedFileRecord, 0, len(resolved))
	for name, path := range resolved {
		digest, err := r.hasher.HashFile(path)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrDependencyResolution, err), "library", name)
		}

		var direct []string
		for _, dep := range deps[name] {
			if _, ok := resolved[dep]; ok {
				direct = append(direct, dep)
			}
		}
		slices.Sort(direct)

		records = append(records, domain.HashedFileRecord{
			Name:         name,
			LocalPath:    path,
			RelativePath: domain.RelativePathFor(name),
			Hash:         digest,
			Dependencies: direct,
		})
	}

	slices.SortFunc(records, func(a, b domain.HashedFileRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}
