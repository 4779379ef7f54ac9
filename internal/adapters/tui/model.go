// Package tui provides a terminal dashboard for the build server.
package tui

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/hotswap/internal/core/domain"
)

const (
	buildListWidthRatio = 0.3
	logPaneBorderWidth  = 4
	headerHeight        = 2
)

// BuildStatus represents the current state of a build.
type BuildStatus string

const (
	// StatusRunning indicates the compiler is working on the build.
	StatusRunning BuildStatus = "Running"
	// StatusDone indicates the build produced a library.
	StatusDone BuildStatus = "Done"
	// StatusError indicates the build failed.
	StatusError BuildStatus = "Error"
)

// BuildNode represents a single build in the list.
type BuildNode struct {
	ID        domain.BuildID
	Status    BuildStatus
	Libraries int
	Reason    string
}

// MsgEvent carries an update protocol event into the model.
type MsgEvent struct {
	Event domain.Event
}

// MsgLog carries log output into the model.
type MsgLog struct {
	Data []byte
}

// Model represents the dashboard state.
type Model struct {
	Builds     []*BuildNode
	BuildMap   map[domain.BuildID]*BuildNode
	Logs       bytes.Buffer
	Assets     int
	Viewport   viewport.Model
	AutoScroll bool
	ListHeight int
}

// NewModel creates an empty dashboard model.
func NewModel() *Model {
	return &Model{
		BuildMap:   make(map[domain.BuildID]*BuildNode),
		Viewport:   viewport.New(0, 0),
		AutoScroll: true,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "f":
			m.AutoScroll = !m.AutoScroll
			if m.AutoScroll {
				m.Viewport.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * buildListWidthRatio)
		m.Viewport.Width = msg.Width - listWidth - logPaneBorderWidth
		m.Viewport.Height = msg.Height - headerHeight
		m.ListHeight = msg.Height - headerHeight
		m.refreshLogs()

	case MsgLog:
		m.Logs.Write(msg.Data)
		m.refreshLogs()

	case MsgEvent:
		m.apply(msg.Event)
	}
	return m, nil
}

func (m *Model) apply(ev domain.Event) {
	switch ev.Kind {
	case domain.EventBuildStarted:
		node := &BuildNode{ID: ev.ID, Status: StatusRunning}
		m.Builds = append(m.Builds, node)
		m.BuildMap[ev.ID] = node

	case domain.EventBuildEnded:
		node := m.node(ev.ID)
		node.Status = StatusDone
		node.Libraries = len(ev.Libraries)

	case domain.EventBuildFailed:
		node := m.node(ev.ID)
		node.Status = StatusError
		node.Reason = ev.Reason
		fmt.Fprintf(&m.Logs, "build %d failed: %s\n", ev.ID, ev.Reason)
		m.refreshLogs()

	case domain.EventAssetUpdated:
		m.Assets++

	case domain.EventKeepAlive:
	}
}

// node returns the build with id, adding it when the start event was missed.
func (m *Model) node(id domain.BuildID) *BuildNode {
	if node, ok := m.BuildMap[id]; ok {
		return node
	}
	node := &BuildNode{ID: id}
	m.Builds = append(m.Builds, node)
	m.BuildMap[id] = node
	return node
}

func (m *Model) refreshLogs() {
	m.Viewport.SetContent(WrapLog(m.Logs.String(), m.Viewport.Width))
	if m.AutoScroll {
		m.Viewport.GotoBottom()
	}
}
