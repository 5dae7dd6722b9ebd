// Package alert defines the alert model, threshold evaluation, and alert
// lifecycle management. At most one unresolved alert may exist per
// (node, alert type) pair at any time.
package alert

import (
	"fmt"
	"time"
)

// Type classifies what condition raised an alert. Values are the snake_case
// strings used in delivery payloads and persisted records.
type Type string

const (
	TypeHighCPU            Type = "high_cpu"
	TypeHighMemory         Type = "high_memory"
	TypeLowDisk            Type = "low_disk"
	TypeServiceDown        Type = "service_down"
	TypeServiceUnreachable Type = "service_unreachable"
	TypeHTTPError          Type = "http_error"
	TypeCostThreshold      Type = "cost_threshold"
)

// Severity is the alert severity level.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a monitoring alert. The id is derived from node, type, and
// creation time so a re-triggered alert never collides with a resolved one.
type Alert struct {
	ID           string                 `json:"id"`
	NodeID       string                 `json:"node_id"`
	Type         Type                   `json:"alert_type"`
	Severity     Severity               `json:"severity"`
	Message      string                 `json:"message"`
	Timestamp    time.Time              `json:"timestamp"`
	Acknowledged bool                   `json:"acknowledged"`
	Resolved     bool                   `json:"resolved"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// New creates an alert with a freshly derived id.
func New(nodeID string, typ Type, severity Severity, message string) Alert {
	now := time.Now().UTC()
	return Alert{
		ID:        fmt.Sprintf("%s_%s_%d", nodeID, typ, now.Unix()),
		NodeID:    nodeID,
		Type:      typ,
		Severity:  severity,
		Message:   message,
		Timestamp: now,
	}
}

// WithMetadata returns a copy of the alert carrying the given metadata.
func (a Alert) WithMetadata(md map[string]interface{}) Alert {
	a.Metadata = md
	return a
}
