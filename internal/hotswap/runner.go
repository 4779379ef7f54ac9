package hotswap

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"unsafe"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/library"
	"go.trai.ch/zerr"
)

// Runner loads the libraries an update source announces and hands control to the first one.
type Runner struct {
	runtime *Runtime
	manager *library.Manager
	source  ports.UpdateSource
	logger  ports.Logger
	options library.Options

	entryArg func() unsafe.Pointer
}

// NewRunner creates a Runner that installs libraries into rt.
func NewRunner(
	rt *Runtime,
	manager *library.Manager,
	source ports.UpdateSource,
	logger ports.Logger,
	options library.Options,
) *Runner {
	return &Runner{
		runtime:  rt,
		manager:  manager,
		source:   source,
		logger:   logger,
		options:  options,
		entryArg: func() unsafe.Pointer { return unsafe.Pointer(rt.EntryInfo()) },
	}
}

// Run waits for the first library, installs it and calls its entry function. Later
// libraries are staged on the runtime while the entry function runs. Run returns when the
// entry function does.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.source.Updates(ctx)
	if err != nil {
		return err
	}

	h, id, err := r.awaitInitial(ctx, messages)
	if err != nil {
		return err
	}
	r.runtime.Install(uint32(id), h)
	defer r.runtime.Close()

	var wg sync.WaitGroup
	wg.Go(func() {
		r.updateLoop(ctx, messages)
	})

	r.logger.Info("starting build " + strconv.FormatUint(uint64(id), 10))
	_, err = h.Call(domain.EntrySymbol, r.entryArg())
	cancel()
	wg.Wait()
	if err != nil {
		return zerr.Wrap(err, "entry function failed")
	}
	return nil
}

func (r *Runner) awaitInitial(
	ctx context.Context,
	messages <-chan domain.RunnerMessage,
) (*library.Handle, domain.BuildID, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil, 0, zerr.Wrap(domain.ErrNoInitialLibrary, "update stream ended")
			}
			switch msg.Kind {
			case domain.MsgLoadRootLib:
				h, err := r.manager.Load(msg.Path, r.options)
				if err != nil {
					return nil, 0, errors.Join(domain.ErrNoInitialLibrary, err)
				}
				return h, msg.ID, nil
			case domain.MsgConnectionClosed:
				err := zerr.Wrap(domain.ErrNoInitialLibrary, "connection closed")
				if msg.Err != nil {
					err = errors.Join(err, msg.Err)
				}
				return nil, 0, err
			case domain.MsgAssetUpdated:
			}
		}
	}
}

func (r *Runner) updateLoop(ctx context.Context, messages <-chan domain.RunnerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			switch msg.Kind {
			case domain.MsgLoadRootLib:
				r.stage(msg)
			case domain.MsgAssetUpdated:
				r.runtime.NotifyAsset(msg.Name, msg.Path)
			case domain.MsgConnectionClosed:
				if msg.Err != nil {
					r.logger.Error(zerr.Wrap(msg.Err, "update stream closed"))
				} else {
					r.logger.Info("update stream closed")
				}
				return
			}
		}
	}
}

func (r *Runner) stage(msg domain.RunnerMessage) {
	h, err := r.manager.Load(msg.Path, r.options)
	if err != nil {
		r.logger.Error(zerr.With(err, "build_id", uint32(msg.ID)))
		return
	}
	if !r.runtime.Offer(uint32(msg.ID), h) {
		r.logger.Warn("ignoring stale build " + strconv.FormatUint(uint64(msg.ID), 10))
		return
	}
	r.logger.Info("build " + strconv.FormatUint(uint64(msg.ID), 10) + " is ready")
}
