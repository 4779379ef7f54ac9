// Package orchestrator turns source, asset and build request triggers into builds and
// publishes their progress as update protocol events.
package orchestrator

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

// Orchestrator runs at most one build at a time. Triggers arriving during a build are
// folded into exactly one follow-up build.
type Orchestrator struct {
	target   domain.Target
	settings domain.BuildSettings
	compiler ports.Compiler
	resolver ports.DependencyResolver
	bus      ports.EventBus
	tracer   ports.Tracer
	logger   ports.Logger

	mirror      ports.ArtifactMirror
	searchPaths func(buildDirs []string) []string
	now         func() time.Time

	debounce  time.Duration
	debouncer *Debouncer[Trigger]
	previous  domain.PreviousVersions

	active  atomic.Bool
	pending atomic.Bool
	nextID  atomic.Uint32

	ctx context.Context //nolint:containedctx // builds outlive the trigger that started them
	wg  sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDebounce sets the quiet window after which collected triggers are handled.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.debounce = d
	}
}

// WithSearchPaths sets how the directories searched for dependencies are assembled from
// the build's own output directories.
func WithSearchPaths(fn func(buildDirs []string) []string) Option {
	return func(o *Orchestrator) {
		o.searchPaths = fn
	}
}

// WithMirror uploads every successful build's closure to m.
func WithMirror(m ports.ArtifactMirror) Option {
	return func(o *Orchestrator) {
		o.mirror = m
	}
}

// WithClock replaces the time source of incremental run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator building settings for target.
func New(
	target domain.Target,
	settings domain.BuildSettings,
	compiler ports.Compiler,
	resolver ports.DependencyResolver,
	bus ports.EventBus,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		target:      target,
		settings:    settings.Clone(),
		compiler:    compiler,
		resolver:    resolver,
		bus:         bus,
		tracer:      tracer,
		logger:      logger,
		searchPaths: func(dirs []string) []string { return dirs },
		now:         time.Now,
		debounce:    domain.DefaultDebounce,
		ctx:         context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}
	o.debouncer = NewDebouncer(o.debounce, o.handleBatch)
	return o
}

// Start sets the context builds run under. Cancelling it fails in-flight compiler runs.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ctx = ctx
}

// Submit queues a trigger. It never blocks on a running build.
func (o *Orchestrator) Submit(t Trigger) {
	o.debouncer.Add(t.key(), t)
}

// Flush handles the queued triggers without waiting for the debounce window.
func (o *Orchestrator) Flush() {
	o.debouncer.Flush()
}

// Subscribe attaches a consumer of build and asset events.
func (o *Orchestrator) Subscribe() ports.Subscription {
	return o.bus.Subscribe()
}

// Wait blocks until no build is running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// PreviousVersions returns the artifact names usable as incremental build bases.
func (o *Orchestrator) PreviousVersions() []string {
	return o.previous.Usable()
}

func (o *Orchestrator) handleBatch(batch []Trigger) {
	build := false
	for _, t := range batch {
		if t.buildsCode() {
			build = true
			continue
		}
		o.logger.Debug("asset changed: " + t.Name)
		o.bus.Publish(domain.AssetUpdated(t.Name, t.Path))
	}
	if build {
		o.trigger()
	}
}

// trigger starts a build, or marks one pending if a build is already running.
func (o *Orchestrator) trigger() {
	if o.active.Swap(true) {
		o.pending.Store(true)
		return
	}
	id := domain.BuildID(o.nextID.Add(1))
	o.wg.Go(func() { o.run(id) })
}

func (o *Orchestrator) run(id domain.BuildID) {
	for {
		o.build(id)

		for !o.pending.Swap(false) {
			o.active.Store(false)
			// A trigger that raced the release saw active set and only marked pending.
			if !o.pending.Load() || o.active.Swap(true) {
				return
			}
		}
		id = domain.BuildID(o.nextID.Add(1))
	}
}

func (o *Orchestrator) build(id domain.BuildID) {
	ctx, span := o.tracer.Start(o.ctx, "build",
		ports.WithAttribute("build.id", uint32(id)),
		ports.WithAttribute("target", o.target.String()),
	)
	defer span.End()

	started := o.now()
	o.logger.Info("build " + label(id) + " started")
	o.bus.Publish(domain.BuildStarted(id))

	result, err := o.compiler.Compile(ctx, ports.Invocation{
		ID:       id,
		Target:   o.target,
		Settings: o.settings.Clone(),
		Run:      o.incrementalRun(id),
	})
	if err != nil {
		o.fail(span, id, err)
		return
	}

	records, err := o.resolver.Resolve(ctx, result.Roots, o.searchPaths(result.SearchDirs))
	if err != nil {
		o.fail(span, id, err)
		return
	}

	if len(result.Roots) > 0 {
		o.previous.Add(result.ArtifactName, result.Roots[0].Path)
	}
	span.SetAttribute("build.libraries", len(records))

	o.logger.Info("build " + label(id) + " finished in " + o.now().Sub(started).Round(time.Millisecond).String())
	o.bus.Publish(domain.BuildEnded(id, result.RootLibrary, records))

	if o.mirror != nil {
		if n, err := o.mirror.Mirror(ctx, o.target, records); err != nil {
			o.logger.Warn("mirroring build " + label(id) + " failed: " + err.Error())
		} else if n > 0 {
			o.logger.Debug("mirrored " + strconv.Itoa(n) + " libraries of build " + label(id))
		}
	}
}

func (o *Orchestrator) incrementalRun(id domain.BuildID) domain.IncrementalRun {
	usable := o.previous.Usable()
	if len(usable) == 0 {
		return domain.InitialRun()
	}
	return domain.Patch(id, o.now(), usable)
}

func (o *Orchestrator) fail(span ports.Span, id domain.BuildID, err error) {
	err = zerr.With(err, "build", uint32(id))
	span.RecordError(err)
	o.logger.Error(err)
	o.bus.Publish(domain.BuildFailed(id, err.Error()))
}

func label(id domain.BuildID) string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}
