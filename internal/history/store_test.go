package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/probe"
)

func healthAt(nodeID string, n int) probe.HealthCheck {
	return probe.HealthCheck{
		NodeID:    nodeID,
		Timestamp: time.Unix(int64(1700000000+n), 0).UTC(),
		Status:    probe.StatusHealthy,
	}
}

func metricsAt(nodeID string, cpu float64) collector.ResourceMetrics {
	return collector.ResourceMetrics{
		NodeID:     nodeID,
		Timestamp:  time.Now().UTC(),
		CPUPercent: cpu,
	}
}

func TestAppendAndLatest(t *testing.T) {
	s := NewStore(t.TempDir())

	_, ok := s.LatestHealth("worker-1")
	assert.False(t, ok)

	s.AppendHealth(healthAt("worker-1", 1))
	s.AppendHealth(healthAt("worker-1", 2))

	latest, ok := s.LatestHealth("worker-1")
	require.True(t, ok)
	assert.Equal(t, healthAt("worker-1", 2).Timestamp, latest.Timestamp)
	assert.Equal(t, 2, s.HealthLen("worker-1"))
}

func TestHealthWindowEvictsOldest(t *testing.T) {
	s := NewStore(t.TempDir())
	s.SetCapacities(3, 3)

	for i := 0; i < 5; i++ {
		s.AppendHealth(healthAt("worker-1", i))
	}

	assert.Equal(t, 3, s.HealthLen("worker-1"))

	hist := s.HealthHistory("worker-1", 10)
	require.Len(t, hist, 3)
	// Strictly the newest three, oldest first.
	assert.Equal(t, healthAt("worker-1", 2).Timestamp, hist[0].Timestamp)
	assert.Equal(t, healthAt("worker-1", 4).Timestamp, hist[2].Timestamp)
}

func TestMetricsWindowEvictsOldest(t *testing.T) {
	s := NewStore(t.TempDir())
	s.SetCapacities(3, 2)

	s.AppendMetrics(metricsAt("worker-1", 10))
	s.AppendMetrics(metricsAt("worker-1", 20))
	s.AppendMetrics(metricsAt("worker-1", 30))

	hist := s.MetricsHistory("worker-1", 10)
	require.Len(t, hist, 2)
	assert.Equal(t, 20.0, hist[0].CPUPercent)
	assert.Equal(t, 30.0, hist[1].CPUPercent)
}

func TestHistoryCountLimits(t *testing.T) {
	s := NewStore(t.TempDir())
	for i := 0; i < 5; i++ {
		s.AppendHealth(healthAt("worker-1", i))
	}

	assert.Len(t, s.HealthHistory("worker-1", 2), 2)
	assert.Len(t, s.HealthHistory("worker-1", 0), 0)
	assert.Nil(t, s.HealthHistory("ghost", 5))
}

func TestNodesSortedUnion(t *testing.T) {
	s := NewStore(t.TempDir())
	s.AppendHealth(healthAt("bravo", 1))
	s.AppendMetrics(metricsAt("alpha", 10))
	s.AppendMetrics(metricsAt("bravo", 10))

	assert.Equal(t, []string{"alpha", "bravo"}, s.Nodes())
}

func TestAlertLifecycle(t *testing.T) {
	s := NewStore(t.TempDir())
	a := alert.New("worker-1", alert.TypeHighCPU, alert.SeverityWarning, "High CPU usage: 82.3%")

	assert.False(t, s.HasActiveAlert("worker-1", alert.TypeHighCPU))
	s.PutAlert(a)
	assert.True(t, s.HasActiveAlert("worker-1", alert.TypeHighCPU))
	assert.False(t, s.HasActiveAlert("worker-1", alert.TypeHighMemory))
	assert.False(t, s.HasActiveAlert("worker-2", alert.TypeHighCPU))

	require.True(t, s.Acknowledge(a.ID))
	got, ok := s.Alert(a.ID)
	require.True(t, ok)
	assert.True(t, got.Acknowledged)
	// Acknowledged is still active.
	assert.True(t, s.HasActiveAlert("worker-1", alert.TypeHighCPU))

	require.True(t, s.Resolve(a.ID))
	assert.False(t, s.HasActiveAlert("worker-1", alert.TypeHighCPU))
	assert.Empty(t, s.ActiveAlerts())

	// Resolved records reject further lifecycle changes.
	assert.False(t, s.Acknowledge(a.ID))
	assert.False(t, s.Resolve(a.ID))

	// Still addressable until pruned.
	_, ok = s.Alert(a.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, s.PruneResolved())
	_, ok = s.Alert(a.ID)
	assert.False(t, ok)
}

func TestActiveAlertsNewestFirst(t *testing.T) {
	s := NewStore(t.TempDir())

	for i := 0; i < 3; i++ {
		a := alert.New("worker-1", alert.Type(fmt.Sprintf("type_%d", i)), alert.SeverityWarning, "msg")
		a.Timestamp = time.Unix(int64(1700000000+i), 0).UTC()
		a.ID = fmt.Sprintf("a%d", i)
		s.PutAlert(a)
	}

	active := s.ActiveAlerts()
	require.Len(t, active, 3)
	assert.Equal(t, "a2", active[0].ID)
	assert.Equal(t, "a0", active[2].ID)
}

func TestActiveAlertsForNode(t *testing.T) {
	s := NewStore(t.TempDir())
	s.PutAlert(alert.New("worker-1", alert.TypeHighCPU, alert.SeverityWarning, "one"))
	s.PutAlert(alert.New("worker-2", alert.TypeHighCPU, alert.SeverityWarning, "two"))

	mine := s.ActiveAlertsFor("worker-1")
	require.Len(t, mine, 1)
	assert.Equal(t, "worker-1", mine[0].NodeID)
}
