package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusJSONFlag bool

// statusCmd shows the recorded status without probing anything.
var statusCmd = &cobra.Command{
	Use:   "status [node]",
	Short: "Show recorded fleet or node status",
	Long: `Display the latest recorded health, metrics, and active alerts.

Reads only persisted state; run 'xmon check' first to refresh it.

Examples:
  xmon status
  xmon status worker-1
  xmon status --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeID := ""
		if len(args) > 0 {
			nodeID = args[0]
		}
		return statusCommand(nodeID, statusJSONFlag)
	},
}

// dashboardCmd prints the one-shot fleet rollup.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the fleet summary",
	Long: `Print node counts by status and active alert counts by severity, from
recorded state. Use 'xmon watch' for the live view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand("", statusJSONFlag)
	},
}

// watchCmd starts the live dashboard.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live fleet dashboard",
	Long: `Start an interactive dashboard that refreshes the whole fleet on the
configured check interval.

Keys: r refreshes immediately, q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "print status as JSON")

	dashboardCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "print the summary as JSON")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(watchCmd)
}

func statusCommand(nodeID string, asJSON bool) error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}

	if nodeID != "" {
		st := system.NodeStatus(nodeID)
		if asJSON {
			return printJSON(st)
		}

		if !st.HasHealth && !st.HasMetrics {
			fmt.Printf("No recorded state for %s\n", nodeID)
			return nil
		}
		if st.HasHealth {
			fmt.Printf("%s: %s (checked %s)\n", nodeID, st.Health.Status,
				st.Health.Timestamp.Format("2006-01-02 15:04:05"))
		}
		if st.HasMetrics {
			fmt.Printf("  cpu %.1f%%  mem %.1f%%  disk %.1f%%  load %.2f\n",
				st.Metrics.CPUPercent, st.Metrics.MemoryPercent,
				st.Metrics.DiskPercent, st.Metrics.Load1)
		}
		for _, a := range st.ActiveAlerts {
			fmt.Printf("  [%s] %s\n", a.Severity, a.Message)
		}
		return nil
	}

	d := system.Dashboard()
	if asJSON {
		return printJSON(d)
	}

	fmt.Printf("%d nodes: %d healthy, %d degraded, %d unhealthy, %d unknown\n",
		d.TotalNodes, d.HealthyNodes, d.DegradedNodes, d.UnhealthyNodes, d.UnknownNodes)
	fmt.Printf("%d active alerts: %d critical, %d warning, %d info\n",
		d.ActiveAlerts, d.CriticalAlerts, d.WarningAlerts, d.InfoAlerts)
	return nil
}

func watchCommand() error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}
	nodes, err := loadNodes()
	if err != nil {
		return err
	}
	return runDashboard(system, nodes)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
