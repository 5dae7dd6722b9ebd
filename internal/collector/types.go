package collector

import "time"

// ResourceMetrics is one immutable resource-usage sample for a node.
// Collection is all-or-nothing: a sample is either fully populated or was
// never produced.
type ResourceMetrics struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`

	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`

	Load1  float64 `json:"load_1"`
	Load5  float64 `json:"load_5"`
	Load15 float64 `json:"load_15"`

	// Network I/O fields reserved for future use.
	NetworkInMbps  float64 `json:"network_in_mbps"`
	NetworkOutMbps float64 `json:"network_out_mbps"`
}
