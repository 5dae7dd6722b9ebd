package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/monitor"
)

var checkNodeFlag string

// checkCmd runs one monitoring cycle: health probes, metrics collection,
// threshold evaluation, and alert delivery.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one monitoring cycle over the fleet",
	Long: `Probe every node in the inventory, collect resource metrics from the
reachable ones, evaluate thresholds, and deliver any new alerts.

State is persisted to the data directory after the cycle.

Examples:
  xmon check
  xmon check --node worker-1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(checkNodeFlag)
	},
}

// metricsCmd collects and prints one metrics sample without evaluation.
var metricsCmd = &cobra.Command{
	Use:   "metrics <node>",
	Short: "Collect a resource sample from one node",
	Long: `Connect to the node over SSH, run the batched metrics command, and print
the parsed sample. The sample is recorded and evaluated like any other.

Examples:
  xmon metrics worker-1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return metricsCommand(args[0])
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkNodeFlag, "node", "", "check a single node instead of the fleet")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(metricsCmd)
}

func checkCommand(nodeID string) error {
	system, cfg, err := loadSystem()
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		fmt.Println("Monitoring is disabled (set 'enabled: true' in the config)")
		return nil
	}

	nodes, err := loadNodes()
	if err != nil {
		return err
	}

	if nodeID != "" {
		node, ok := inventory.Find(nodes, nodeID)
		if !ok {
			return errors.NewNotFound("node", nodeID)
		}
		nodes = []inventory.NodeRef{node}
	}

	results := system.RunCycle(context.Background(), nodes)
	for _, r := range results {
		printCycleResult(r)
	}

	d := system.Dashboard()
	fmt.Printf("\n%d nodes checked, %d active alerts (%d critical)\n",
		d.TotalNodes, d.ActiveAlerts, d.CriticalAlerts)
	return nil
}

func metricsCommand(nodeID string) error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}

	nodes, err := loadNodes()
	if err != nil {
		return err
	}
	node, ok := inventory.Find(nodes, nodeID)
	if !ok {
		return errors.NewNotFound("node", nodeID)
	}

	m, err := system.CollectMetrics(context.Background(), node)
	if err != nil {
		return err
	}
	if err := system.Save(); err != nil {
		return err
	}

	fmt.Printf("%s  cpu %.1f%%  mem %.1f%%  disk %.1f%%  load %.2f %.2f %.2f\n",
		m.NodeID, m.CPUPercent, m.MemoryPercent, m.DiskPercent, m.Load1, m.Load5, m.Load15)
	return nil
}

func printCycleResult(r monitor.CycleResult) {
	line := fmt.Sprintf("%-16s %s", r.NodeID, r.Health.Status)
	if r.MetricsErr == nil && r.Metrics.NodeID != "" {
		line += fmt.Sprintf("  cpu %.1f%%  mem %.1f%%  disk %.1f%%",
			r.Metrics.CPUPercent, r.Metrics.MemoryPercent, r.Metrics.DiskPercent)
	} else if r.MetricsErr != nil {
		line += "  (metrics unavailable)"
	}
	fmt.Println(line)
}
