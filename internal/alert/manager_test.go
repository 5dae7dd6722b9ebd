package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/logger"
)

// memStore is a minimal in-memory Store for manager tests.
type memStore struct {
	alerts map[string]Alert
}

func newMemStore() *memStore {
	return &memStore{alerts: make(map[string]Alert)}
}

func (s *memStore) PutAlert(a Alert) { s.alerts[a.ID] = a }

func (s *memStore) Alert(id string) (Alert, bool) {
	a, ok := s.alerts[id]
	return a, ok
}

func (s *memStore) HasActiveAlert(nodeID string, typ Type) bool {
	for _, a := range s.alerts {
		if a.NodeID == nodeID && a.Type == typ && !a.Resolved {
			return true
		}
	}
	return false
}

func (s *memStore) Acknowledge(id string) bool {
	a, ok := s.alerts[id]
	if !ok || a.Resolved {
		return false
	}
	a.Acknowledged = true
	s.alerts[id] = a
	return true
}

func (s *memStore) Resolve(id string) bool {
	a, ok := s.alerts[id]
	if !ok || a.Resolved {
		return false
	}
	a.Resolved = true
	s.alerts[id] = a
	return true
}

func TestProcessCreatesAndNotifies(t *testing.T) {
	store := newMemStore()
	var delivered []Alert
	m := NewManager(store, func(a Alert) { delivered = append(delivered, a) }, logger.Noop())

	candidate := New("worker-1", TypeHighCPU, SeverityWarning, "High CPU usage: 82.3%")
	created := m.Process([]Alert{candidate})

	require.Len(t, created, 1)
	require.Len(t, delivered, 1)
	assert.Equal(t, candidate.ID, delivered[0].ID)

	stored, ok := store.Alert(candidate.ID)
	require.True(t, ok)
	assert.Equal(t, candidate.Message, stored.Message)
}

func TestProcessSuppressesDuplicates(t *testing.T) {
	store := newMemStore()
	log := logger.NewBufferLogger()
	m := NewManager(store, nil, log)

	first := m.Process([]Alert{New("worker-1", TypeHighCPU, SeverityWarning, "High CPU usage: 82.3%")})
	require.Len(t, first, 1)

	// Same node and type while the first is still unresolved: suppressed,
	// even at a different severity.
	second := m.Process([]Alert{New("worker-1", TypeHighCPU, SeverityCritical, "Critical CPU usage: 95.0%")})
	assert.Empty(t, second)
	assert.Len(t, store.alerts, 1)

	// A different type on the same node is not a duplicate.
	third := m.Process([]Alert{New("worker-1", TypeHighMemory, SeverityWarning, "High memory usage: 81.0%")})
	assert.Len(t, third, 1)

	// Nor is the same type on a different node.
	fourth := m.Process([]Alert{New("worker-2", TypeHighCPU, SeverityWarning, "High CPU usage: 76.0%")})
	assert.Len(t, fourth, 1)
}

func TestResolveThenRetriggerGetsNewID(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, nil)

	first := m.Process([]Alert{New("worker-1", TypeHighCPU, SeverityWarning, "High CPU usage: 82.3%")})
	require.Len(t, first, 1)

	require.NoError(t, m.Resolve(first[0].ID))

	retriggered := New("worker-1", TypeHighCPU, SeverityWarning, "High CPU usage: 84.0%")
	retriggered.ID = first[0].ID + "_later" // distinct creation time stand-in
	created := m.Process([]Alert{retriggered})

	require.Len(t, created, 1)
	assert.NotEqual(t, first[0].ID, created[0].ID)
}

func TestAcknowledge(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, nil)

	created := m.Process([]Alert{New("worker-1", TypeLowDisk, SeverityCritical, "Critical disk usage: 96.0%")})
	require.Len(t, created, 1)

	require.NoError(t, m.Acknowledge(created[0].ID))
	a, _ := store.Alert(created[0].ID)
	assert.True(t, a.Acknowledged)

	// Acknowledged but unresolved still suppresses duplicates.
	again := m.Process([]Alert{New("worker-1", TypeLowDisk, SeverityCritical, "Critical disk usage: 97.0%")})
	assert.Empty(t, again)
}

func TestLifecycleUnknownID(t *testing.T) {
	m := NewManager(newMemStore(), nil, nil)

	err := m.Acknowledge("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	err = m.Resolve("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestResolveTwice(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, nil, nil)

	created := m.Process([]Alert{New("worker-1", TypeHighCPU, SeverityWarning, "High CPU usage: 80.0%")})
	require.Len(t, created, 1)

	require.NoError(t, m.Resolve(created[0].ID))
	err := m.Resolve(created[0].ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}
