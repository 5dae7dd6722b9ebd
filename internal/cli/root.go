// Package cli implements the xmon command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to the monitoring system for the actual work:
//
//	xmon check            - Run one monitoring cycle over the fleet
//	xmon status [node]    - Show recorded status without probing
//	xmon watch            - Live dashboard, refreshing on the check interval
//	xmon alerts           - List, acknowledge, and resolve alerts
//	xmon config           - Show and change monitoring settings
//	xmon init             - Create the monitoring config interactively
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/inventory"
	"github.com/openmesh/xmon/internal/logger"
	"github.com/openmesh/xmon/internal/monitor"
)

// Global flags available on every subcommand.
var (
	configFlag    string
	inventoryFlag string
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "xmon",
	Short: "Fleet monitoring and alerting for xNodes",
	Long: `xmon watches a fleet of xNodes: reachability probes, resource metrics
over SSH, threshold alerts, and bounded on-disk history.

Nodes come from a YAML inventory file; thresholds and delivery channels
from the monitoring config. Run 'xmon init' to create both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			os.Setenv("XMON_DEBUG", "1")
		}
	},
}

// Execute runs the root command, printing the structured error on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "monitoring config file (default ~/.xmon/monitoring.yaml)")
	rootCmd.PersistentFlags().StringVar(&inventoryFlag, "inventory", "", "node inventory file (default ~/.xmon/nodes.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

// configPath resolves the config file location from the flag or the default.
func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.DefaultPath()
}

// inventoryPath resolves the inventory file location from the flag or the
// default (next to the config file).
func inventoryPath() string {
	if inventoryFlag != "" {
		return inventoryFlag
	}
	return inventory.DefaultPath()
}

// loadSystem assembles the monitoring system from the config and persisted
// state. Shared by every command that touches monitoring data.
func loadSystem() (*monitor.System, *config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, nil, err
	}

	system, err := monitor.New(cfg, configPath(), logger.NewEnvLogger("[xmon]"))
	if err != nil {
		return nil, nil, err
	}
	return system, cfg, nil
}

// loadNodes reads the node inventory.
func loadNodes() ([]inventory.NodeRef, error) {
	return inventory.Load(inventoryPath())
}
