// Package monitor is the orchestrating façade over probing, collection,
// evaluation, history, and alert delivery. One System instance owns the
// config value and the history store; all cross-node state flows through it.
package monitor

import (
	"context"

	"github.com/openmesh/xmon/internal/alert"
	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/deliver"
	"github.com/openmesh/xmon/internal/history"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/logger"
	"github.com/openmesh/xmon/internal/probe"
)

// System ties the monitoring engine together. Methods are safe for
// concurrent use; the underlying store carries its own lock and the config
// value is only swapped through UpdateConfig.
type System struct {
	cfg        *config.Config
	configPath string

	store      *history.Store
	prober     *probe.Prober
	collector  *collector.Collector
	alerts     *alert.Manager
	dispatcher *deliver.Dispatcher
	log        logger.Logger
}

// Option configures a System.
type Option func(*System)

// WithProber overrides the reachability prober.
func WithProber(p *probe.Prober) Option {
	return func(s *System) { s.prober = p }
}

// WithCollector overrides the metrics collector.
func WithCollector(c *collector.Collector) Option {
	return func(s *System) { s.collector = c }
}

// WithDispatcher overrides the alert dispatcher.
func WithDispatcher(d *deliver.Dispatcher) Option {
	return func(s *System) { s.dispatcher = d }
}

// New loads persisted state from cfg.DataDir and assembles the engine.
// A missing data directory starts empty; a malformed history file is fatal.
func New(cfg *config.Config, configPath string, log logger.Logger, opts ...Option) (*System, error) {
	if log == nil {
		log = logger.Noop()
	}

	store := history.NewStore(cfg.DataDir)
	if err := store.Load(); err != nil {
		return nil, err
	}

	s := &System{
		cfg:        cfg,
		configPath: configPath,
		store:      store,
		prober:     probe.New(),
		collector:  collector.New(),
		dispatcher: deliver.New(log),
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.alerts = alert.NewManager(store, func(a alert.Alert) {
		s.dispatcher.Deliver(a, s.cfg)
	}, log)

	return s, nil
}

// Config returns the current config value.
func (s *System) Config() *config.Config {
	return s.cfg
}

// Store exposes the history store for read-side surfaces (status, dashboard).
func (s *System) Store() *history.Store {
	return s.store
}

// CheckHealth probes one node, records the result, and raises any alerts the
// outcome warrants. The check itself never fails; sub-probe failures are part
// of the recorded result.
func (s *System) CheckHealth(ctx context.Context, node inventory.NodeRef) probe.HealthCheck {
	hc := s.prober.Check(ctx, node, probe.Config{
		PingTimeout:    s.cfg.PingTimeout,
		ServiceTimeout: s.cfg.ServiceTimeout,
		HTTPTimeout:    s.cfg.HTTPTimeout,
	})
	s.store.AppendHealth(hc)

	created := s.alerts.Process(alert.EvaluateHealth(hc, s.cfg))
	s.remediate(node, created)

	return hc
}

// CollectMetrics gathers one resource sample from the node over SSH. On
// success the sample is recorded and evaluated against the thresholds; on
// failure nothing is recorded and the error is returned.
func (s *System) CollectMetrics(ctx context.Context, node inventory.NodeRef) (collector.ResourceMetrics, error) {
	m, err := s.collector.Collect(ctx, node, collector.Config{Timeout: s.cfg.ServiceTimeout})
	if err != nil {
		return collector.ResourceMetrics{}, err
	}

	s.store.AppendMetrics(m)
	s.alerts.Process(alert.EvaluateMetrics(m, s.cfg))

	return m, nil
}

// remediate logs the remediation the config asks for. No restart is issued;
// the log line is the trigger point for an external actuator.
func (s *System) remediate(node inventory.NodeRef, created []alert.Alert) {
	if !s.cfg.AutoRestartOnFailure {
		return
	}
	for _, a := range created {
		if a.Type == alert.TypeServiceDown {
			s.log.Warn("auto-restart requested for %s after %s alert %s", node.ID, a.Type, a.ID)
		}
	}
}

// Acknowledge flags an active alert and persists the change.
func (s *System) Acknowledge(id string) error {
	if err := s.alerts.Acknowledge(id); err != nil {
		return err
	}
	return s.store.Save()
}

// Resolve marks an active alert resolved and persists the change. The same
// condition observed later raises a fresh alert with a new id.
func (s *System) Resolve(id string) error {
	if err := s.alerts.Resolve(id); err != nil {
		return err
	}
	return s.store.Save()
}

// Save persists history and alert state to the data directory.
func (s *System) Save() error {
	return s.store.Save()
}

// UpdateConfig validates, persists, and swaps in a new config value. The new
// thresholds and channel settings take effect on the next evaluation.
func (s *System) UpdateConfig(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg, s.configPath); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}
