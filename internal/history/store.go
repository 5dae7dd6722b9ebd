// Package history owns the bounded per-node health and metrics windows and
// the durable alert records, including their serialization to disk.
package history

import (
	"sort"
	"sync"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/probe"
)

const (
	// HealthCapacity bounds each node's health window: 24h at 5-minute cadence.
	HealthCapacity = 288
	// MetricsCapacity bounds each node's metrics window: 24h at 1-minute cadence.
	MetricsCapacity = 1440
)

// Store holds per-node bounded sample windows and alert records. All access
// is guarded by one lock; insertion order per node is the caller's append
// order.
type Store struct {
	mu sync.RWMutex

	dir string

	healthCap  int
	metricsCap int

	health  map[string]*window[probe.HealthCheck]
	metrics map[string]*window[collector.ResourceMetrics]
	alerts  map[string]alert.Alert
}

// NewStore creates an empty store persisting to dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:        dir,
		healthCap:  HealthCapacity,
		metricsCap: MetricsCapacity,
		health:     make(map[string]*window[probe.HealthCheck]),
		metrics:    make(map[string]*window[collector.ResourceMetrics]),
		alerts:     make(map[string]alert.Alert),
	}
}

// SetCapacities overrides the window bounds. Only affects windows created
// afterwards; intended for tests.
func (s *Store) SetCapacities(healthCap, metricsCap int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthCap = healthCap
	s.metricsCap = metricsCap
}

// AppendHealth adds a health sample to the node's window, evicting the
// oldest entry once the window is full.
func (s *Store) AppendHealth(hc probe.HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.health[hc.NodeID]
	if !ok {
		w = newWindow[probe.HealthCheck](s.healthCap)
		s.health[hc.NodeID] = w
	}
	w.push(hc)
}

// AppendMetrics adds a metrics sample to the node's window.
func (s *Store) AppendMetrics(m collector.ResourceMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.metrics[m.NodeID]
	if !ok {
		w = newWindow[collector.ResourceMetrics](s.metricsCap)
		s.metrics[m.NodeID] = w
	}
	w.push(m)
}

// LatestHealth returns the most recent health sample for the node.
func (s *Store) LatestHealth(nodeID string) (probe.HealthCheck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.health[nodeID]
	if !ok {
		return probe.HealthCheck{}, false
	}
	return w.last()
}

// LatestMetrics returns the most recent metrics sample for the node.
func (s *Store) LatestMetrics(nodeID string) (collector.ResourceMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.metrics[nodeID]
	if !ok {
		return collector.ResourceMetrics{}, false
	}
	return w.last()
}

// HealthHistory returns the last count health samples, oldest first.
func (s *Store) HealthHistory(nodeID string, count int) []probe.HealthCheck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.health[nodeID]
	if !ok {
		return nil
	}
	return w.tail(count)
}

// MetricsHistory returns the last count metrics samples, oldest first.
func (s *Store) MetricsHistory(nodeID string, count int) []collector.ResourceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.metrics[nodeID]
	if !ok {
		return nil
	}
	return w.tail(count)
}

// HealthLen returns the number of stored health samples for the node.
func (s *Store) HealthLen(nodeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.health[nodeID]; ok {
		return w.len()
	}
	return 0
}

// MetricsLen returns the number of stored metrics samples for the node.
func (s *Store) MetricsLen(nodeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.metrics[nodeID]; ok {
		return w.len()
	}
	return 0
}

// Nodes returns every node id with any recorded history, sorted.
func (s *Store) Nodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for id := range s.health {
		seen[id] = struct{}{}
	}
	for id := range s.metrics {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PutAlert records a newly created alert.
func (s *Store) PutAlert(a alert.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = a
}

// Alert returns the record with the given id, resolved or not.
func (s *Store) Alert(id string) (alert.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	return a, ok
}

// HasActiveAlert reports whether an unresolved alert exists for the pair.
func (s *Store) HasActiveAlert(nodeID string, typ alert.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.NodeID == nodeID && a.Type == typ && !a.Resolved {
			return true
		}
	}
	return false
}

// Acknowledge flags an unresolved alert. Returns false if the id is unknown
// or the alert is already resolved.
func (s *Store) Acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok || a.Resolved {
		return false
	}
	a.Acknowledged = true
	s.alerts[id] = a
	return true
}

// Resolve marks an alert resolved, removing it from the active set while
// keeping the record addressable until pruned. Returns false if the id is
// unknown or already resolved.
func (s *Store) Resolve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok || a.Resolved {
		return false
	}
	a.Resolved = true
	s.alerts[id] = a
	return true
}

// ActiveAlerts returns all unresolved alerts, newest first.
func (s *Store) ActiveAlerts() []alert.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []alert.Alert
	for _, a := range s.alerts {
		if !a.Resolved {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ActiveAlertsFor returns the node's unresolved alerts, newest first.
func (s *Store) ActiveAlertsFor(nodeID string) []alert.Alert {
	var out []alert.Alert
	for _, a := range s.ActiveAlerts() {
		if a.NodeID == nodeID {
			out = append(out, a)
		}
	}
	return out
}

// PruneResolved drops resolved alert records, returning how many were removed.
func (s *Store) PruneResolved() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, a := range s.alerts {
		if a.Resolved {
			delete(s.alerts, id)
			n++
		}
	}
	return n
}
