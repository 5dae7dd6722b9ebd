package monitor

import (
	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/probe"
)

// NodeStatus is the read-side snapshot of a single node: latest health,
// latest metrics, and the node's unresolved alerts.
type NodeStatus struct {
	NodeID string `json:"node_id"`

	Health     probe.HealthCheck         `json:"health"`
	HasHealth  bool                      `json:"has_health"`
	Metrics    collector.ResourceMetrics `json:"metrics"`
	HasMetrics bool                      `json:"has_metrics"`

	ActiveAlerts []alert.Alert `json:"active_alerts"`
}

// DashboardSummary is the fleet-wide rollup shown by the status surfaces.
type DashboardSummary struct {
	TotalNodes     int `json:"total_nodes"`
	HealthyNodes   int `json:"healthy_nodes"`
	DegradedNodes  int `json:"degraded_nodes"`
	UnhealthyNodes int `json:"unhealthy_nodes"`
	UnknownNodes   int `json:"unknown_nodes"`

	ActiveAlerts   int `json:"active_alerts"`
	CriticalAlerts int `json:"critical_alerts"`
	WarningAlerts  int `json:"warning_alerts"`
	InfoAlerts     int `json:"info_alerts"`
}

// NodeStatus assembles the snapshot for one node from recorded state only;
// it never probes.
func (s *System) NodeStatus(nodeID string) NodeStatus {
	st := NodeStatus{NodeID: nodeID}
	st.Health, st.HasHealth = s.store.LatestHealth(nodeID)
	st.Metrics, st.HasMetrics = s.store.LatestMetrics(nodeID)
	st.ActiveAlerts = s.store.ActiveAlertsFor(nodeID)
	return st
}

// Dashboard rolls up the latest recorded status of every known node plus the
// active alert counts by severity. Nodes with history but no health sample
// count as unknown.
func (s *System) Dashboard() DashboardSummary {
	var d DashboardSummary

	for _, id := range s.store.Nodes() {
		d.TotalNodes++
		hc, ok := s.store.LatestHealth(id)
		if !ok {
			d.UnknownNodes++
			continue
		}
		switch hc.Status {
		case probe.StatusHealthy:
			d.HealthyNodes++
		case probe.StatusDegraded:
			d.DegradedNodes++
		case probe.StatusUnhealthy:
			d.UnhealthyNodes++
		default:
			d.UnknownNodes++
		}
	}

	for _, a := range s.store.ActiveAlerts() {
		d.ActiveAlerts++
		switch a.Severity {
		case alert.SeverityCritical:
			d.CriticalAlerts++
		case alert.SeverityWarning:
			d.WarningAlerts++
		default:
			d.InfoAlerts++
		}
	}

	return d
}
