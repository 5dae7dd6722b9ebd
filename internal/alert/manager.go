package alert

import (
	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/logger"
)

// Store is the persistence surface the manager needs. Implemented by the
// history store, which owns the durable alert records.
type Store interface {
	// PutAlert records a newly created alert.
	PutAlert(Alert)
	// Alert returns the record with the given id, resolved or not.
	Alert(id string) (Alert, bool)
	// HasActiveAlert reports whether an unresolved alert exists for the pair.
	HasActiveAlert(nodeID string, typ Type) bool
	// Acknowledge flags an unresolved alert; false if unknown or resolved.
	Acknowledge(id string) bool
	// Resolve marks an alert resolved, removing it from the active set;
	// false if unknown or already resolved.
	Resolve(id string) bool
}

// NotifyFunc delivers a newly created alert. Delivery is best-effort and
// must never block alert creation on channel failures.
type NotifyFunc func(Alert)

// Manager creates alerts with duplicate suppression and drives their
// lifecycle. It is not safe for concurrent use on its own; the monitoring
// system serializes access.
type Manager struct {
	store  Store
	notify NotifyFunc
	log    logger.Logger
}

// NewManager creates a Manager. notify may be nil to disable delivery.
func NewManager(store Store, notify NotifyFunc, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Noop()
	}
	return &Manager{store: store, notify: notify, log: log}
}

// Process records each candidate alert unless an unresolved alert of the
// same (node, type) already exists, then hands the new ones off for
// delivery. Delivery happens strictly after the record is stored. Returns
// the alerts actually created.
func (m *Manager) Process(candidates []Alert) []Alert {
	var created []Alert

	for _, a := range candidates {
		if m.store.HasActiveAlert(a.NodeID, a.Type) {
			m.log.Debug("suppressing duplicate %s alert for %s", a.Type, a.NodeID)
			continue
		}

		m.store.PutAlert(a)
		created = append(created, a)

		if m.notify != nil {
			m.notify(a)
		}
	}

	return created
}

// Acknowledge flags the alert without any delivery side effects.
// Unknown or resolved ids are a no-op reported as not found.
func (m *Manager) Acknowledge(id string) error {
	if !m.store.Acknowledge(id) {
		return errors.NewNotFound("active alert", id)
	}
	return nil
}

// Resolve marks the alert resolved and removes it from the active set. The
// record stays addressable in persisted storage until pruned. Unknown or
// already-resolved ids are a no-op reported as not found.
func (m *Manager) Resolve(id string) error {
	if !m.store.Resolve(id) {
		return errors.NewNotFound("active alert", id)
	}
	return nil
}
