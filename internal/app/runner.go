package app

import (
	"cmp"
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/hotswap/internal/adapters/remote"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/hotswap"
	"go.trai.ch/hotswap/internal/library"
	"go.trai.ch/zerr"
)

// RunnerOptions configuration for the Runner method.
type RunnerOptions struct {
	// Dir is where configuration discovery starts. Empty means the working directory.
	Dir string
	// Server overrides the configured server URL.
	Server string
	// LibraryDir overrides where downloaded libraries are stored.
	LibraryDir string
	// WorkingDir overrides the directory the loaded library runs in.
	WorkingDir string
}

// Runner connects to a remote server, downloads its builds and runs them in this process.
// It returns when the library's entry function does.
func (a *App) Runner(ctx context.Context, opts RunnerOptions) error {
	cfg, err := a.loadConfig(opts.Dir, true)
	if err != nil {
		return err
	}

	server := cmp.Or(opts.Server, cfg.Runner.ServerURL)
	libDir := cmp.Or(opts.LibraryDir, cfg.Runner.LibraryDir)
	workDir := cmp.Or(opts.WorkingDir, cfg.Runner.WorkingDir)

	libDir, err = filepath.Abs(libDir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid library directory"), "path", libDir)
	}
	if err := os.MkdirAll(libDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't create library directory"), "path", libDir)
	}
	if workDir != "" {
		if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
			return zerr.With(zerr.Wrap(domain.ErrWorkingDirectoryMissing, "can't run library"), "path", workDir)
		}
		if err := os.Chdir(workDir); err != nil {
			return zerr.With(zerr.Wrap(err, "couldn't enter working directory"), "path", workDir)
		}
	}

	client := remote.NewClient(server, cfg.Target, libDir, a.hasher, a.logger, cfg.Server.KeepAliveInterval)
	a.logger.Info("connecting to " + server + " for " + cfg.Target.String())

	return hotswap.NewRunner(
		a.hotswapRuntime(),
		a.newManager(cfg),
		client,
		a.logger,
		library.Options{},
	).Run(ctx)
}
