// Package app implements the application layer for hotswap.
package app

import (
	"errors"
	"io"
	"os"
	"slices"

	"go.trai.ch/hotswap/internal/adapters/bus"
	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/adapters/logger"
	"go.trai.ch/hotswap/internal/adapters/mirror"
	"go.trai.ch/hotswap/internal/adapters/tui"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/engine/orchestrator"
	"go.trai.ch/hotswap/internal/hotswap"
	"go.trai.ch/hotswap/internal/library"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	compiler     ports.Compiler
	resolver     ports.DependencyResolver
	watcher      ports.Watcher
	events       *bus.Bus
	hasher       ports.Hasher
	loader       ports.LibraryLoader
	tracer       ports.Tracer
	logger       ports.Logger

	runtime     *hotswap.Runtime
	getenv      func(string) string
	managerOpts []library.ManagerOption
	orchOpts    []orchestrator.Option
	logOutput   func(io.Writer)
	dashboard   func() *tui.Dashboard
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	compiler ports.Compiler,
	resolver ports.DependencyResolver,
	watcher ports.Watcher,
	events *bus.Bus,
	hasher ports.Hasher,
	loader ports.LibraryLoader,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		configLoader: configLoader,
		compiler:     compiler,
		resolver:     resolver,
		watcher:      watcher,
		events:       events,
		hasher:       hasher,
		loader:       loader,
		tracer:       tracer,
		logger:       log,
		getenv:       os.Getenv,
		dashboard:    func() *tui.Dashboard { return tui.NewDashboard() },
	}
}

// WithRuntime replaces the process-wide runtime libraries are installed into.
func (a *App) WithRuntime(rt *hotswap.Runtime) *App {
	a.runtime = rt
	return a
}

// WithGetenv replaces the environment lookup used for library search paths.
func (a *App) WithGetenv(getenv func(string) string) *App {
	a.getenv = getenv
	return a
}

// WithLogOutput registers fn to redirect log output while a dashboard owns the terminal.
// A nil writer restores the default output.
func (a *App) WithLogOutput(fn func(io.Writer)) *App {
	a.logOutput = fn
	return a
}

// WithDashboard replaces how serve creates its dashboard.
func (a *App) WithDashboard(fn func() *tui.Dashboard) *App {
	a.dashboard = fn
	return a
}

// WithManagerOptions configures the library managers of runner commands.
// This is primarily used for testing to avoid real waits.
func (a *App) WithManagerOptions(opts ...library.ManagerOption) *App {
	a.managerOpts = append(a.managerOpts, opts...)
	return a
}

// WithOrchestratorOptions configures the orchestrators of build commands.
func (a *App) WithOrchestratorOptions(opts ...orchestrator.Option) *App {
	a.orchOpts = append(a.orchOpts, opts...)
	return a
}

// Components holds everything the command line needs.
type Components struct {
	App    *App
	Logger *logger.Logger
}

// loadConfig reads hotswap.yaml above dir. Without one, runner commands fall back to
// defaults and environment overrides.
func (a *App) loadConfig(dir string, optional bool) (*domain.Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "couldn't determine working directory")
		}
		dir = wd
	}

	cfg, err := a.configLoader.Load(dir)
	if err == nil {
		return cfg, nil
	}
	if optional && errors.Is(err, domain.ErrConfigNotFound) {
		return a.configLoader.Defaults(dir)
	}
	return nil, zerr.Wrap(err, "failed to load configuration")
}

func (a *App) newOrchestrator(cfg *domain.Config) (*orchestrator.Orchestrator, error) {
	opts := []orchestrator.Option{
		orchestrator.WithDebounce(cfg.Debounce),
		orchestrator.WithSearchPaths(func(buildDirs []string) []string {
			return fs.SearchPaths(a.getenv, slices.Concat(buildDirs, cfg.Build.LibraryDirs))
		}),
	}
	if cfg.Mirror.Enabled() {
		m, err := mirror.New(cfg.Mirror, a.logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithMirror(m))
	}
	opts = append(opts, a.orchOpts...)

	return orchestrator.New(
		cfg.Target,
		cfg.Build,
		a.compiler,
		a.resolver,
		a.events,
		a.tracer,
		a.logger,
		opts...,
	), nil
}

func (a *App) newDashboard() *tui.Dashboard {
	return a.dashboard()
}

func (a *App) setLogOutput(w io.Writer) {
	if a.logOutput != nil {
		a.logOutput(w)
	}
}

func (a *App) hotswapRuntime() *hotswap.Runtime {
	if a.runtime != nil {
		return a.runtime
	}
	return hotswap.Default()
}

func (a *App) newManager(cfg *domain.Config) *library.Manager {
	opts := append([]library.ManagerOption{
		library.WithAwait(cfg.Runner.AwaitRetries, cfg.Runner.AwaitDelay),
	}, a.managerOpts...)
	return library.NewManager(a.loader, a.logger, opts...)
}

type preflighter interface {
	Preflight() error
}

func (a *App) preflight() error {
	if p, ok := a.compiler.(preflighter); ok {
		return p.Preflight()
	}
	return nil
}
