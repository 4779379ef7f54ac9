package ports

import (
	"context"

	"go.trai.ch/hotswap/internal/core/domain"
)

// Invocation is everything a compiler needs to run one build.
type Invocation struct {
	ID       domain.BuildID
	Target   domain.Target
	Settings domain.BuildSettings
	Run      domain.IncrementalRun
}

// CompileResult describes the outputs of a successful build.
type CompileResult struct {
	// ArtifactName is the versioned artifact name recorded as an incremental hint, e.g. "game.3".
	ArtifactName string
	// RootLibrary is the file name of the library the runner loads.
	RootLibrary string
	// Roots are the libraries the dependency closure starts from.
	Roots []domain.Root
	// SearchDirs are build output directories that may hold dependencies.
	SearchDirs []string
	// Artifacts are all files the compiler reported producing.
	Artifacts []string
}

// Compiler drives an external toolchain that produces dynamically loadable libraries.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile runs one build and blocks until the compiler exits.
	// A build the compiler reports as failed returns domain.ErrBuildFailed.
	Compile(ctx context.Context, inv Invocation) (CompileResult, error)
}
