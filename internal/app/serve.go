package app

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/adapters/remote"
	"go.trai.ch/hotswap/internal/adapters/watcher"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/engine/orchestrator"
	"go.trai.ch/hotswap/internal/hotswap"
	"go.trai.ch/hotswap/internal/library"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	// Dir is where configuration discovery starts. Empty means the working directory.
	Dir string
	// Address overrides the configured listen address.
	Address string
	// Dashboard shows builds and log output in a terminal dashboard.
	Dashboard bool
}

// Serve builds the project whenever its sources change and streams every build to runners
// connecting over the network.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := a.loadConfig(opts.Dir, false)
	if err != nil {
		return err
	}
	if err := a.preflight(); err != nil {
		return err
	}
	orch, err := a.newOrchestrator(cfg)
	if err != nil {
		return err
	}

	addr := cmp.Or(opts.Address, cfg.Server.Address)
	server := remote.NewServer(cfg.Target, a.events, a.events, a.logger, cfg.Server.KeepAliveInterval)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if opts.Dashboard {
		dash := a.newDashboard()
		sub := a.events.Subscribe()
		a.setLogOutput(dash)
		defer a.setLogOutput(nil)
		g.Go(func() error {
			defer cancel()
			return dash.Run(ctx, sub)
		})
	}
	orch.Start(ctx)
	g.Go(func() error {
		return a.watch(ctx, cfg.Build, orch)
	})
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr)
	})

	orch.Submit(orchestrator.Build())
	orch.Flush()

	err = g.Wait()
	orch.Wait()
	return err
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Dir is where configuration discovery starts. Empty means the working directory.
	Dir string
}

// Run builds the project and runs it in this process, reloading it whenever its sources
// change. It returns when the library's entry function does.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	cfg, err := a.loadConfig(opts.Dir, false)
	if err != nil {
		return err
	}
	if err := a.preflight(); err != nil {
		return err
	}
	orch, err := a.newOrchestrator(cfg)
	if err != nil {
		return err
	}

	runner := hotswap.NewRunner(
		a.hotswapRuntime(),
		a.newManager(cfg),
		remote.NewLocal(a.events, a.logger),
		a.logger,
		library.Options{},
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	orch.Start(ctx)
	g.Go(func() error {
		return a.watch(ctx, cfg.Build, orch)
	})
	g.Go(func() error {
		defer cancel()
		return runner.Run(ctx)
	})

	orch.Submit(orchestrator.Build())
	orch.Flush()

	err = g.Wait()
	orch.Wait()
	return err
}

// watch feeds file changes under the code and asset directories to orch until ctx ends.
func (a *App) watch(ctx context.Context, settings domain.BuildSettings, orch *orchestrator.Orchestrator) error {
	r := newRouter(settings.CodeWatchDirs, settings.AssetDirs)
	roots := slices.Concat(r.code, r.assets)
	if len(roots) == 0 {
		<-ctx.Done()
		return nil
	}

	if err := a.watcher.Start(ctx, roots...); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()
	r.prime(fs.NewWalker())

	for ev := range a.watcher.Events() {
		if t, ok := r.route(ev); ok {
			orch.Submit(t)
		}
	}
	return nil
}

// router decides which trigger a file change becomes. Asset directories take precedence
// over code directories that contain them.
type router struct {
	code         []string
	assets       []string
	fingerprints *watcher.Fingerprints
}

func newRouter(code, assets []string) *router {
	clean := func(dirs []string) []string {
		out := make([]string, 0, len(dirs))
		for _, d := range dirs {
			out = append(out, filepath.Clean(d))
		}
		return out
	}
	return &router{
		code:         clean(code),
		assets:       clean(assets),
		fingerprints: watcher.NewFingerprints(),
	}
}

// prime records the current content of every asset so that saving an asset unchanged
// after startup is not reported.
func (r *router) prime(walker *fs.Walker) {
	for _, dir := range r.assets {
		for path := range walker.WalkFiles(dir, nil) {
			r.fingerprints.Changed(path)
		}
	}
}

func (r *router) route(ev ports.WatchEvent) (orchestrator.Trigger, bool) {
	for _, dir := range r.assets {
		rel, ok := within(dir, ev.Path)
		if !ok {
			continue
		}
		if ev.Operation == ports.OpRemove || ev.Operation == ports.OpRename {
			return orchestrator.Trigger{}, false
		}
		if info, err := os.Stat(ev.Path); err != nil || info.IsDir() {
			return orchestrator.Trigger{}, false
		}
		if !r.fingerprints.Changed(ev.Path) {
			return orchestrator.Trigger{}, false
		}
		return orchestrator.Asset(rel, ev.Path), true
	}

	for _, dir := range r.code {
		if _, ok := within(dir, ev.Path); ok {
			return orchestrator.Source(), true
		}
	}
	return orchestrator.Trigger{}, false
}

// within returns path relative to dir, slash separated, if path lies inside dir.
func within(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
