package monitor

import (
	"context"
	"sync"

	"github.com/openmesh/xmon/internal/collector"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/probe"
)

// maxConcurrentNodes bounds the per-cycle fan-out so a large fleet doesn't
// open hundreds of sockets at once.
const maxConcurrentNodes = 8

// CycleResult is the outcome of one monitoring cycle for a single node.
type CycleResult struct {
	NodeID string
	Health probe.HealthCheck

	Metrics    collector.ResourceMetrics
	MetricsErr error
}

// RunCycle checks every node concurrently: one health check, then one
// metrics collection if the node looked reachable. Results come back in
// inventory order. The cycle always completes; per-node collection errors
// are carried in the results rather than aborting the fleet.
func (s *System) RunCycle(ctx context.Context, nodes []inventory.NodeRef) []CycleResult {
	if !s.cfg.Enabled {
		return nil
	}

	results := make([]CycleResult, len(nodes))
	sem := make(chan struct{}, maxConcurrentNodes)

	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node inventory.NodeRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.checkNode(ctx, node)
		}(i, node)
	}
	wg.Wait()

	if err := s.store.Save(); err != nil {
		s.log.Error("failed to persist monitoring state: %v", err)
	}

	return results
}

// checkNode runs the health check and, when the node is at least partially
// reachable, the metrics collection. Skipping collection on unreachable nodes
// avoids a guaranteed SSH timeout per cycle.
func (s *System) checkNode(ctx context.Context, node inventory.NodeRef) CycleResult {
	r := CycleResult{NodeID: node.ID}
	r.Health = s.CheckHealth(ctx, node)

	if r.Health.Status == probe.StatusUnhealthy || r.Health.Status == probe.StatusUnknown {
		return r
	}

	r.Metrics, r.MetricsErr = s.CollectMetrics(ctx, node)
	if r.MetricsErr != nil {
		s.log.Debug("metrics collection failed for %s: %v", node.ID, r.MetricsErr)
	}
	return r
}
