package domain

import "slices"

// SelectorKind distinguishes what part of a manifest is built.
type SelectorKind uint8

const (
	// SelectDefaultPackage builds the root or single default member package.
	SelectDefaultPackage SelectorKind = iota
	// SelectPackage builds the library of a named package.
	SelectPackage
	// SelectExample builds a named example.
	SelectExample
)

// Selector picks the package or example a build compiles.
type Selector struct {
	Kind SelectorKind
	Name string
}

// DefaultPackage selects the manifest's default package.
func DefaultPackage() Selector { return Selector{Kind: SelectDefaultPackage} }

// Package selects a package by name.
func Package(name string) Selector { return Selector{Kind: SelectPackage, Name: name} }

// Example selects an example by name.
func Example(name string) Selector { return Selector{Kind: SelectExample, Name: name} }

// BuildSettings is the immutable input of a build request.
type BuildSettings struct {
	WorkingDir    string
	Selector      Selector
	Features      []string
	ManifestPath  string
	LibraryDirs   []string
	SDKDirs       []string
	CodeWatchDirs []string
	AssetDirs     []string
}

// Clone returns a deep copy so each compiler invocation owns its settings.
func (s BuildSettings) Clone() BuildSettings {
	c := s
	c.Features = slices.Clone(s.Features)
	c.LibraryDirs = slices.Clone(s.LibraryDirs)
	c.SDKDirs = slices.Clone(s.SDKDirs)
	c.CodeWatchDirs = slices.Clone(s.CodeWatchDirs)
	c.AssetDirs = slices.Clone(s.AssetDirs)
	return c
}
