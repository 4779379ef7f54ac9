// Package fs provides file system adapters for hashing, listing and walking files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skippedDirectories are never descended into.
var skippedDirectories = map[string]bool{
	".git":   true,
	".jj":    true,
	"target": true,
}

// Walker provides recursive file walking.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root, skipping VCS and build output directories
// and any entry whose name matches one of ignores.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}

			if skip, action := w.shouldSkip(path != root, d, ignores); skip {
				return action
			}

			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// WalkDirs yields root and every directory below it that is not skipped.
func (w *Walker) WalkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skippedDirectories[d.Name()] {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip reports whether d is skipped and the walk action to return for it.
func (w *Walker) shouldSkip(belowRoot bool, d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if belowRoot && d.IsDir() && skippedDirectories[name] {
		return true, filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}
	return false, nil
}
