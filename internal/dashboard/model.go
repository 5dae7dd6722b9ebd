// Package dashboard is the live terminal view over the monitoring system.
// It refreshes the whole fleet on the configured check interval and renders
// per-node status, resource usage, and the active alert list.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/monitor"
)

// tickMsg signals that the next refresh cycle should start.
type tickMsg time.Time

// cycleMsg carries the results of a completed refresh cycle.
type cycleMsg struct {
	results []monitor.CycleResult
	took    time.Duration
}

// Model is the Bubble Tea model for the watch dashboard.
type Model struct {
	system *monitor.System
	nodes  []inventory.NodeRef

	interval time.Duration
	spin     spinner.Model

	refreshing bool
	lastUpdate time.Time
	lastTook   time.Duration
	width      int
	height     int
	quitting   bool
}

// NewModel creates the dashboard model. The refresh interval comes from the
// monitoring config.
func NewModel(system *monitor.System, nodes []inventory.NodeRef) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return Model{
		system:   system,
		nodes:    nodes,
		interval: system.Config().CheckInterval,
		spin:     sp,
	}
}

// Init starts the spinner and kicks off the first refresh immediately.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refreshCmd())
}

// Update handles key presses, refresh completion, and the periodic tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.refreshing {
				m.refreshing = true
				return m, m.refreshCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if !m.refreshing {
			m.refreshing = true
			return m, m.refreshCmd()
		}
		return m, m.tickCmd()

	case cycleMsg:
		m.refreshing = false
		m.lastUpdate = time.Now()
		m.lastTook = msg.took
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// refreshCmd runs one full monitoring cycle off the UI goroutine.
func (m Model) refreshCmd() tea.Cmd {
	system, nodes := m.system, m.nodes
	return func() tea.Msg {
		start := time.Now()
		results := system.RunCycle(context.Background(), nodes)
		return cycleMsg{results: results, took: time.Since(start)}
	}
}

// tickCmd schedules the next automatic refresh.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the dashboard program and blocks until the user quits.
func Run(system *monitor.System, nodes []inventory.NodeRef) error {
	p := tea.NewProgram(NewModel(system, nodes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
