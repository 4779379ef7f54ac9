package remote

import (
	"context"
	"strconv"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
)

var _ ports.UpdateSource = (*Local)(nil)

// Local feeds a runner in the same process straight from the event bus. Libraries are
// loaded from where the build left them.
type Local struct {
	bus    ports.EventBus
	logger ports.Logger
}

// NewLocal creates a Local source.
func NewLocal(bus ports.EventBus, logger ports.Logger) *Local {
	return &Local{bus: bus, logger: logger}
}

// Updates subscribes to the bus and translates events until ctx ends.
func (l *Local) Updates(ctx context.Context) (<-chan domain.RunnerMessage, error) {
	sub := l.bus.Subscribe()
	out := make(chan domain.RunnerMessage)

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			var msg domain.RunnerMessage
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					msg = domain.ConnectionClosed(sub.Err())
					break
				}
				var forward bool
				msg, forward = l.translate(ev)
				if !forward {
					continue
				}
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
			if msg.Kind == domain.MsgConnectionClosed {
				return
			}
		}
	}()
	return out, nil
}

func (l *Local) translate(ev domain.Event) (domain.RunnerMessage, bool) {
	switch ev.Kind {
	case domain.EventBuildEnded:
		root, ok := ev.Library(ev.RootLibrary)
		if !ok {
			l.logger.Warn("build " + buildLabel(ev.ID) + " did not include its root library")
			return domain.RunnerMessage{}, false
		}
		return domain.LoadRootLib(ev.ID, root.LocalPath), true
	case domain.EventAssetUpdated:
		return domain.AssetChanged(ev.Name, ev.LocalPath), true
	default:
		return domain.RunnerMessage{}, false
	}
}

func buildLabel(id domain.BuildID) string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}
