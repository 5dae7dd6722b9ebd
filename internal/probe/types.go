package probe

import "time"

// Status is the derived overall health of a node after one check.
type Status string

const (
	// StatusHealthy means every attempted probe succeeded.
	StatusHealthy Status = "healthy"
	// StatusDegraded means some but not all attempted probes succeeded.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy means every attempted probe failed.
	StatusUnhealthy Status = "unhealthy"
	// StatusUnknown means no probe could be attempted (e.g., no address).
	StatusUnknown Status = "unknown"
)

// Result is the outcome of a single sub-probe. A failed probe records error
// text and no latency; it never aborts the other probes.
type Result struct {
	Attempted bool          `json:"attempted"`
	Success   bool          `json:"success"`
	Latency   time.Duration `json:"latency_ns,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// HealthCheck is the immutable result of one check invocation against a node.
type HealthCheck struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
	Ping      Result    `json:"ping"`
	Service   Result    `json:"service"`
	HTTP      Result    `json:"http"`
	Status    Status    `json:"status"`
}

// DeriveStatus folds independent probe outcomes into one status. A node may
// be reachable over ICMP while its service is down; that is degraded, not
// healthy or unhealthy.
func DeriveStatus(results ...Result) Status {
	attempted, succeeded := 0, 0
	for _, r := range results {
		if !r.Attempted {
			continue
		}
		attempted++
		if r.Success {
			succeeded++
		}
	}

	switch {
	case attempted == 0:
		return StatusUnknown
	case succeeded == attempted:
		return StatusHealthy
	case succeeded > 0:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}
