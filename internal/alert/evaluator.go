package alert

import (
	"fmt"

	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/probe"
)

// EvaluateMetrics checks a fresh metrics sample against the configured
// thresholds and returns candidate alerts for every dimension that crosses
// one. Each dimension is evaluated independently; a value at or above the
// critical threshold is critical, else at or above warning is a warning.
// The evaluator only creates candidates, it never resolves anything.
func EvaluateMetrics(m collector.ResourceMetrics, cfg *config.Config) []Alert {
	var out []Alert

	dims := []struct {
		value             float64
		warning, critical float64
		typ               Type
		warnMsg, critMsg  string
	}{
		{m.CPUPercent, cfg.CPUWarning, cfg.CPUCritical, TypeHighCPU,
			"High CPU usage: %.1f%%", "Critical CPU usage: %.1f%%"},
		{m.MemoryPercent, cfg.MemoryWarning, cfg.MemoryCritical, TypeHighMemory,
			"High memory usage: %.1f%%", "Critical memory usage: %.1f%%"},
		{m.DiskPercent, cfg.DiskWarning, cfg.DiskCritical, TypeLowDisk,
			"High disk usage: %.1f%%", "Critical disk usage: %.1f%%"},
	}

	for _, d := range dims {
		switch {
		case d.value >= d.critical:
			out = append(out, New(m.NodeID, d.typ, SeverityCritical,
				fmt.Sprintf(d.critMsg, d.value)).WithMetadata(metricsMetadata(m)))
		case d.value >= d.warning:
			out = append(out, New(m.NodeID, d.typ, SeverityWarning,
				fmt.Sprintf(d.warnMsg, d.value)).WithMetadata(metricsMetadata(m)))
		}
	}

	return out
}

// EvaluateHealth derives candidate alerts from a health check result.
// An unhealthy node raises a critical alert, with the type distinguishing
// whether the network probe or the service-port probe failed. An HTTP-only
// failure on an otherwise reachable node raises an http_error alert.
func EvaluateHealth(hc probe.HealthCheck, cfg *config.Config) []Alert {
	var out []Alert

	if hc.Status == probe.StatusUnhealthy {
		if hc.Service.Attempted && !hc.Service.Success {
			out = append(out, New(hc.NodeID, TypeServiceUnreachable, SeverityCritical,
				fmt.Sprintf("Service port unreachable on %s: %s", hc.NodeID, hc.Service.Error)).
				WithMetadata(healthMetadata(hc)))
		}
		if hc.Ping.Attempted && !hc.Ping.Success {
			out = append(out, New(hc.NodeID, TypeServiceDown, SeverityCritical,
				fmt.Sprintf("Node %s is unreachable: %s", hc.NodeID, hc.Ping.Error)).
				WithMetadata(healthMetadata(hc)))
		}
		return out
	}

	// HTTP failed while network/service stayed reachable.
	if hc.HTTP.Attempted && !hc.HTTP.Success {
		severity := SeverityWarning
		if cfg.HTTPErrorCritical {
			severity = SeverityCritical
		}
		out = append(out, New(hc.NodeID, TypeHTTPError, severity,
			fmt.Sprintf("HTTP check failed on %s: %s", hc.NodeID, hc.HTTP.Error)).
			WithMetadata(healthMetadata(hc)))
	}

	return out
}

func metricsMetadata(m collector.ResourceMetrics) map[string]interface{} {
	return map[string]interface{}{
		"cpu_percent":    m.CPUPercent,
		"memory_percent": m.MemoryPercent,
		"disk_percent":   m.DiskPercent,
		"load_1":         m.Load1,
	}
}

func healthMetadata(hc probe.HealthCheck) map[string]interface{} {
	return map[string]interface{}{
		"status":          string(hc.Status),
		"ping_success":    hc.Ping.Success,
		"service_success": hc.Service.Success,
		"http_attempted":  hc.HTTP.Attempted,
		"http_success":    hc.HTTP.Success,
	}
}
