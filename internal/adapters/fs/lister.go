package fs

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/hotswap/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

var _ ports.DirectoryLister = (*Lister)(nil)

// Lister lists the regular files of several directories concurrently.
type Lister struct{}

// NewLister creates a new Lister.
func NewLister() *Lister {
	return &Lister{}
}

// ListFiles returns a name to path map of the files directly inside dirs.
// A name found in several directories resolves to the earliest directory of dirs.
func (l *Lister) ListFiles(ctx context.Context, dirs []string) map[string]string {
	listings := make([][]string, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			listings[i] = listDir(dir)
			return nil
		})
	}
	_ = g.Wait()

	files := make(map[string]string)
	for i, names := range listings {
		for _, name := range names {
			if _, seen := files[name]; !seen {
				files[name] = filepath.Join(dirs[i], name)
			}
		}
	}
	return files
}

// listDir returns the names of the regular files in dir, following symlinks.
// An unreadable directory has no files.
func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, e.Name())); err == nil && info.Mode().IsRegular() {
				names = append(names, e.Name())
			}
		}
	}
	return names
}
