package tui

import (
	"context"
	"io"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ io.Writer = (*Dashboard)(nil)

// Dashboard runs the build dashboard. It is also the writer log output is sent to while
// the dashboard owns the terminal.
type Dashboard struct {
	program *tea.Program
}

// NewDashboard creates a dashboard using the alternate screen unless opts say otherwise.
func NewDashboard(opts ...tea.ProgramOption) *Dashboard {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Dashboard{program: tea.NewProgram(NewModel(), opts...)}
}

// Write forwards p to the log pane. It does not block once the dashboard has exited.
func (d *Dashboard) Write(p []byte) (int, error) {
	d.program.Send(MsgLog{Data: slices.Clone(p)})
	return len(p), nil
}

// Run shows events from sub until the user quits or ctx ends. It closes sub.
func (d *Dashboard) Run(ctx context.Context, sub ports.Subscription) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	defer sub.Close()

	stop := context.AfterFunc(ctx, d.program.Quit)
	defer stop()

	wg.Go(func() {
		for ev := range sub.Events() {
			d.program.Send(MsgEvent{Event: ev})
		}
	})

	if _, err := d.program.Run(); err != nil {
		return zerr.Wrap(err, "dashboard failed")
	}
	return nil
}
