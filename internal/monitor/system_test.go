package monitor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/deliver"
	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/logger"
	"github.com/openmesh/xmon/internal/probe"
	"github.com/openmesh/xmon/pkg/sshutil"
	sshtest "github.com/openmesh/xmon/pkg/sshutil/testing"
)

// syncBuffer collects console output across dispatcher goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// metricsOutput renders batched command output with the given readings.
func metricsOutput(cpu, memPct, disk float64) string {
	idle := 100 - cpu
	total := 1000000.0
	available := total * (100 - memPct) / 100
	return fmt.Sprintf(
		"%%Cpu(s):  1.0 us,  0.5 sy,  0.0 ni, %.1f id,  0.2 wa\n---\n"+
			"              total        used        free      shared  buff/cache   available\n"+
			"Mem:       %.0f      500000      100000       20000      400000     %.0f\n---\n"+
			"/dev/sda1  41152832 16238452 22798236  %.0f%% /\n---\n"+
			"0.52 0.58 0.59 1/467 12345\n",
		idle, total, available, disk)
}

func testSystem(t *testing.T, cfg *config.Config, stdout string) (*System, *syncBuffer) {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	dir := t.TempDir()
	cfg.DataDir = filepath.Join(dir, "monitoring_data")

	// Collect closes the client after each run, so hand out a fresh mock per dial.
	dial := func(node inventory.NodeRef, timeout time.Duration) (sshutil.SSHClient, error) {
		mock := sshtest.NewMockClient("worker-1")
		mock.SetCommandResponse(collector.MetricsCommand, sshtest.CommandResponse{
			Stdout: []byte(stdout),
		})
		return mock, nil
	}

	out := &syncBuffer{}
	system, err := New(cfg, filepath.Join(dir, "monitoring.yaml"), logger.Noop(),
		WithCollector(collector.NewWithDialer(dial)),
		WithDispatcher(deliver.New(logger.Noop(), deliver.WithOutput(out))))
	require.NoError(t, err)
	return system, out
}

func testNode() inventory.NodeRef {
	return inventory.NodeRef{ID: "worker-1", Address: "10.0.0.5", User: "root", ServicePort: 22}
}

func TestCollectMetricsRecordsAndAlerts(t *testing.T) {
	system, out := testSystem(t, nil, metricsOutput(82.3, 20, 30))

	m, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)
	assert.InDelta(t, 82.3, m.CPUPercent, 0.01)

	// Sample recorded.
	latest, ok := system.Store().LatestMetrics("worker-1")
	require.True(t, ok)
	assert.InDelta(t, 82.3, latest.CPUPercent, 0.01)

	// Warning alert created, carrying the measured value, and delivered.
	active := system.Store().ActiveAlerts()
	require.Len(t, active, 1)
	assert.Equal(t, alert.TypeHighCPU, active[0].Type)
	assert.Equal(t, alert.SeverityWarning, active[0].Severity)
	assert.Contains(t, active[0].Message, "82.3")
	assert.Contains(t, out.String(), "82.3")
}

func TestCollectMetricsCleanSampleNoAlerts(t *testing.T) {
	system, out := testSystem(t, nil, metricsOutput(20, 20, 30))

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)

	assert.Empty(t, system.Store().ActiveAlerts())
	assert.Empty(t, out.String())
}

func TestCollectMetricsDuplicateSuppressed(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(82.3, 20, 30))

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)
	_, err = system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)

	// Condition persists across cycles: still exactly one active alert,
	// but both samples are in the history.
	assert.Len(t, system.Store().ActiveAlerts(), 1)
	assert.Equal(t, 2, system.Store().MetricsLen("worker-1"))
}

func TestResolveThenRetrigger(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(82.3, 20, 30))

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)
	active := system.Store().ActiveAlerts()
	require.Len(t, active, 1)

	require.NoError(t, system.Resolve(active[0].ID))
	assert.Empty(t, system.Store().ActiveAlerts())

	// Condition still present on the next cycle: a fresh alert is raised.
	_, err = system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)
	again := system.Store().ActiveAlerts()
	require.Len(t, again, 1)
	assert.False(t, again[0].Resolved)
}

func TestCollectMetricsFailureRecordsNothing(t *testing.T) {
	system, _ := testSystem(t, nil, "garbage output")

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCollect))

	assert.Equal(t, 0, system.Store().MetricsLen("worker-1"))
	assert.Empty(t, system.Store().ActiveAlerts())
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(20, 20, 30))

	err := system.Acknowledge("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestCheckHealthUnknownAddress(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(20, 20, 30))

	hc := system.CheckHealth(context.Background(), inventory.NodeRef{ID: "ghost"})
	assert.Equal(t, probe.StatusUnknown, hc.Status)

	latest, ok := system.Store().LatestHealth("ghost")
	require.True(t, ok)
	assert.Equal(t, probe.StatusUnknown, latest.Status)
	assert.Empty(t, system.Store().ActiveAlerts())
}

func TestRunCycleSkipsUnreachableMetrics(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(20, 20, 30))

	nodes := []inventory.NodeRef{{ID: "ghost-1"}, {ID: "ghost-2"}}
	results := system.RunCycle(context.Background(), nodes)

	require.Len(t, results, 2)
	assert.Equal(t, "ghost-1", results[0].NodeID)
	assert.Equal(t, probe.StatusUnknown, results[0].Health.Status)
	// No SSH attempt against a node with no recorded address.
	assert.NoError(t, results[0].MetricsErr)
	assert.Equal(t, 0, system.Store().MetricsLen("ghost-1"))
}

func TestRunCycleDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Enabled = false
	system, _ := testSystem(t, cfg, metricsOutput(20, 20, 30))

	results := system.RunCycle(context.Background(), []inventory.NodeRef{testNode()})
	assert.Nil(t, results)
}

func TestRunCyclePersistsState(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(20, 20, 30))

	system.RunCycle(context.Background(), []inventory.NodeRef{{ID: "ghost"}})

	reloaded, err := New(system.Config(), "unused.yaml", logger.Noop())
	require.NoError(t, err)
	_, ok := reloaded.Store().LatestHealth("ghost")
	assert.True(t, ok)
}

func TestDashboardCounts(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(82.3, 20, 30))

	now := time.Now().UTC()
	statuses := map[string]probe.Status{
		"a": probe.StatusHealthy,
		"b": probe.StatusHealthy,
		"c": probe.StatusDegraded,
		"d": probe.StatusUnhealthy,
	}
	for id, st := range statuses {
		system.Store().AppendHealth(probe.HealthCheck{NodeID: id, Timestamp: now, Status: st})
	}

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)

	d := system.Dashboard()
	assert.Equal(t, 5, d.TotalNodes) // four probed plus worker-1 with metrics only
	assert.Equal(t, 2, d.HealthyNodes)
	assert.Equal(t, 1, d.DegradedNodes)
	assert.Equal(t, 1, d.UnhealthyNodes)
	assert.Equal(t, 1, d.UnknownNodes)
	assert.Equal(t, 1, d.ActiveAlerts)
	assert.Equal(t, 1, d.WarningAlerts)
	assert.Equal(t, 0, d.CriticalAlerts)
}

func TestNodeStatusSnapshot(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(82.3, 20, 30))

	_, err := system.CollectMetrics(context.Background(), testNode())
	require.NoError(t, err)

	st := system.NodeStatus("worker-1")
	assert.False(t, st.HasHealth)
	assert.True(t, st.HasMetrics)
	require.Len(t, st.ActiveAlerts, 1)
	assert.Equal(t, alert.TypeHighCPU, st.ActiveAlerts[0].Type)

	empty := system.NodeStatus("ghost")
	assert.False(t, empty.HasHealth)
	assert.False(t, empty.HasMetrics)
	assert.Empty(t, empty.ActiveAlerts)
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	system, _ := testSystem(t, nil, metricsOutput(20, 20, 30))

	bad := *system.Config()
	bad.CPUWarning = 95
	bad.CPUCritical = 80

	err := system.UpdateConfig(&bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestUpdateConfigPersists(t *testing.T) {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.DataDir = filepath.Join(dir, "monitoring_data")
	path := filepath.Join(dir, "monitoring.yaml")

	system, err := New(cfg, path, logger.Noop())
	require.NoError(t, err)

	updated := *cfg
	updated.CPUWarning = 70
	require.NoError(t, system.UpdateConfig(&updated))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 70.0, loaded.CPUWarning)
	assert.Equal(t, 70.0, system.Config().CPUWarning)
}
