package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/probe"
)

// Persisted artifacts: three independent JSON files, each a mapping from
// node id (or alert id) to records, safe to inspect or hand-edit between
// process runs.
const (
	healthFile  = "health_history.json"
	metricsFile = "metrics_history.json"
	alertsFile  = "active_alerts.json"
)

// Save serializes health history, metrics history, and alert records to the
// store's data directory. Save is a single-writer operation; callers must
// serialize concurrent saves externally.
func (s *Store) Save() error {
	s.mu.RLock()
	healthData := make(map[string][]probe.HealthCheck, len(s.health))
	for id, w := range s.health {
		healthData[id] = w.all()
	}
	metricsData := make(map[string][]collector.ResourceMetrics, len(s.metrics))
	for id, w := range s.metrics {
		metricsData[id] = w.all()
	}
	alertsData := make(map[string]alert.Alert, len(s.alerts))
	for id, a := range s.alerts {
		alertsData[id] = a
	}
	dir := s.dir
	s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Failed to create data directory",
			"Check permissions on "+dir)
	}

	if err := writeJSON(filepath.Join(dir, healthFile), healthData); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, metricsFile), metricsData); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, alertsFile), alertsData)
}

// Load reconstructs state from disk. A missing file means empty initial
// state; a malformed existing file is a fatal STORE error. Resolved alert
// records are dropped on load, and windows are truncated to capacity.
func (s *Store) Load() error {
	var healthData map[string][]probe.HealthCheck
	if err := readJSON(filepath.Join(s.dir, healthFile), &healthData); err != nil {
		return err
	}

	var metricsData map[string][]collector.ResourceMetrics
	if err := readJSON(filepath.Join(s.dir, metricsFile), &metricsData); err != nil {
		return err
	}

	var alertsData map[string]alert.Alert
	if err := readJSON(filepath.Join(s.dir, alertsFile), &alertsData); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.health = make(map[string]*window[probe.HealthCheck], len(healthData))
	for id, checks := range healthData {
		w := newWindow[probe.HealthCheck](s.healthCap)
		for _, hc := range tailOf(checks, s.healthCap) {
			w.push(hc)
		}
		s.health[id] = w
	}

	s.metrics = make(map[string]*window[collector.ResourceMetrics], len(metricsData))
	for id, samples := range metricsData {
		w := newWindow[collector.ResourceMetrics](s.metricsCap)
		for _, m := range tailOf(samples, s.metricsCap) {
			w.push(m)
		}
		s.metrics[id] = w
	}

	s.alerts = make(map[string]alert.Alert, len(alertsData))
	for id, a := range alertsData {
		if a.Resolved {
			continue
		}
		s.alerts[id] = a
	}

	return nil
}

// writeJSON writes the value as indented JSON so the artifacts stay
// hand-editable.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Failed to serialize "+filepath.Base(path), "")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Failed to write "+filepath.Base(path),
			"Check permissions on "+filepath.Dir(path))
	}
	return nil
}

// readJSON loads the file into v; a missing file leaves v untouched.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrStore,
			"Failed to read "+filepath.Base(path),
			"Check permissions on "+path)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Malformed history file "+filepath.Base(path),
			"Fix or remove "+path+" and restart")
	}
	return nil
}

func tailOf[T any](items []T, max int) []T {
	if len(items) > max {
		return items[len(items)-max:]
	}
	return items
}
