package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/probe"
)

// View renders the header, node table, alert list, and footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderNodes())
	b.WriteString("\n")
	b.WriteString(m.renderAlerts())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	d := m.system.Dashboard()

	title := titleStyle.Render("xmon watch")
	stats := mutedStyle.Render(fmt.Sprintf(" | %d nodes | %s healthy | %s degraded | %s unhealthy",
		d.TotalNodes,
		healthyStyle.Render(fmt.Sprintf("%d", d.HealthyNodes)),
		degradedStyle.Render(fmt.Sprintf("%d", d.DegradedNodes)),
		unhealthyStyle.Render(fmt.Sprintf("%d", d.UnhealthyNodes))))

	status := ""
	if m.refreshing {
		status = " " + m.spin.View() + mutedStyle.Render("refreshing")
	} else if !m.lastUpdate.IsZero() {
		status = mutedStyle.Render(fmt.Sprintf(" | updated %s in %s",
			m.lastUpdate.Format("15:04:05"), m.lastTook.Round(10*time.Millisecond)))
	}

	return headerStyle.Render(title + stats + status)
}

func (m Model) renderNodes() string {
	if len(m.nodes) == 0 {
		return tableStyle.Render(mutedStyle.Render("No nodes in inventory"))
	}

	rows := []string{mutedStyle.Render(fmt.Sprintf("%-16s %-10s %6s %6s %6s %8s",
		"NODE", "STATUS", "CPU", "MEM", "DISK", "LOAD"))}

	for _, node := range m.nodes {
		st := m.system.NodeStatus(node.ID)

		status := unknownStyle.Render("unknown")
		if st.HasHealth {
			status = statusStyle(st.Health.Status).Render(string(st.Health.Status))
		}

		cpu, mem, disk, load := "-", "-", "-", "-"
		if st.HasMetrics {
			cpu = fmt.Sprintf("%5.1f%%", st.Metrics.CPUPercent)
			mem = fmt.Sprintf("%5.1f%%", st.Metrics.MemoryPercent)
			disk = fmt.Sprintf("%5.1f%%", st.Metrics.DiskPercent)
			load = fmt.Sprintf("%.2f", st.Metrics.Load1)
		}

		rows = append(rows, fmt.Sprintf("%-16s %-10s %6s %6s %6s %8s",
			truncate(node.ID, 16), status, cpu, mem, disk, load))
	}

	return tableStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderAlerts() string {
	alerts := m.system.Store().ActiveAlerts()
	if len(alerts) == 0 {
		return tableStyle.Render(mutedStyle.Render("No active alerts"))
	}

	shown := alerts
	if len(shown) > 10 {
		shown = shown[:10]
	}

	rows := []string{mutedStyle.Render(fmt.Sprintf("ACTIVE ALERTS (%d)", len(alerts)))}
	for _, a := range shown {
		sev := warningStyle
		if a.Severity == alert.SeverityCritical {
			sev = criticalStyle
		}
		ack := ""
		if a.Acknowledged {
			ack = mutedStyle.Render(" (ack)")
		}
		rows = append(rows, fmt.Sprintf("%s %s%s",
			sev.Render(fmt.Sprintf("%-9s", a.Severity)), a.Message, ack))
	}

	return tableStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderFooter() string {
	return footerStyle.Render(fmt.Sprintf("r refresh · q quit · interval %s", m.interval))
}

func statusStyle(s probe.Status) lipgloss.Style {
	switch s {
	case probe.StatusHealthy:
		return healthyStyle
	case probe.StatusDegraded:
		return degradedStyle
	case probe.StatusUnhealthy:
		return unhealthyStyle
	default:
		return unknownStyle
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
