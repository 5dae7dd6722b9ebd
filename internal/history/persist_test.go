package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/errors"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	s.AppendHealth(healthAt("worker-1", 1))
	s.AppendHealth(healthAt("worker-1", 2))
	s.AppendMetrics(metricsAt("worker-1", 42.5))

	a := alert.New("worker-1", alert.TypeHighCPU, alert.SeverityWarning, "High CPU usage: 82.3%")
	s.PutAlert(a)

	require.NoError(t, s.Save())

	for _, f := range []string{healthFile, metricsFile, alertsFile} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	loaded := NewStore(dir)
	require.NoError(t, loaded.Load())

	assert.Equal(t, 2, loaded.HealthLen("worker-1"))
	latest, ok := loaded.LatestHealth("worker-1")
	require.True(t, ok)
	assert.Equal(t, healthAt("worker-1", 2).Timestamp, latest.Timestamp)

	m, ok := loaded.LatestMetrics("worker-1")
	require.True(t, ok)
	assert.Equal(t, 42.5, m.CPUPercent)

	got, ok := loaded.Alert(a.ID)
	require.True(t, ok)
	assert.Equal(t, a.Message, got.Message)
	assert.True(t, loaded.HasActiveAlert("worker-1", alert.TypeHighCPU))
}

func TestLoadMissingFilesStartsEmpty(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Load())

	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.ActiveAlerts())
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, healthFile), []byte("{not json"), 0o644))

	s := NewStore(dir)
	err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStore))
	assert.Contains(t, err.Error(), "Malformed")
}

func TestLoadDropsResolvedAlerts(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	a := alert.New("worker-1", alert.TypeHighCPU, alert.SeverityWarning, "High CPU usage: 82.3%")
	s.PutAlert(a)
	require.True(t, s.Resolve(a.ID))
	require.NoError(t, s.Save())

	loaded := NewStore(dir)
	require.NoError(t, loaded.Load())

	_, ok := loaded.Alert(a.ID)
	assert.False(t, ok)
	assert.False(t, loaded.HasActiveAlert("worker-1", alert.TypeHighCPU))
}

func TestLoadTruncatesToCapacity(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	for i := 0; i < 6; i++ {
		s.AppendHealth(healthAt("worker-1", i))
	}
	require.NoError(t, s.Save())

	loaded := NewStore(dir)
	loaded.SetCapacities(3, 3)
	require.NoError(t, loaded.Load())

	assert.Equal(t, 3, loaded.HealthLen("worker-1"))
	hist := loaded.HealthHistory("worker-1", 10)
	require.Len(t, hist, 3)
	// The newest three survive the truncation.
	assert.Equal(t, healthAt("worker-1", 3).Timestamp, hist[0].Timestamp)
	assert.Equal(t, healthAt("worker-1", 5).Timestamp, hist[2].Timestamp)
}

func TestSaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "monitoring_data")

	s := NewStore(dir)
	s.AppendHealth(healthAt("worker-1", 1))
	require.NoError(t, s.Save())

	_, err := os.Stat(filepath.Join(dir, healthFile))
	assert.NoError(t, err)
}
