package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var alertsAllFlag bool

// alertsCmd is the parent for alert lifecycle operations.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and manage alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsListCommand(alertsAllFlag)
	},
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active alerts",
	Long: `List unresolved alerts, newest first.

Examples:
  xmon alerts list
  xmon alerts list --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsListCommand(alertsAllFlag)
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an active alert",
	Long: `Mark an alert as seen by an operator. The alert stays active and keeps
suppressing duplicates until it is resolved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsAckCommand(args[0])
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an active alert",
	Long: `Mark an alert resolved. If the condition persists, the next check raises
a fresh alert with a new id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsResolveCommand(args[0])
	},
}

func init() {
	alertsCmd.PersistentFlags().BoolVar(&alertsAllFlag, "all", false, "include acknowledged alerts in the listing detail")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
	rootCmd.AddCommand(alertsCmd)
}

func alertsListCommand(showAll bool) error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}

	alerts := system.Store().ActiveAlerts()
	if len(alerts) == 0 {
		fmt.Println("No active alerts")
		return nil
	}

	for _, a := range alerts {
		if a.Acknowledged && !showAll {
			continue
		}
		ack := ""
		if a.Acknowledged {
			ack = " (acknowledged)"
		}
		fmt.Printf("%-9s %s  %s%s\n  id: %s\n",
			a.Severity, a.Timestamp.Format("01-02 15:04"), a.Message, ack, a.ID)
	}
	return nil
}

func alertsAckCommand(id string) error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}
	if err := system.Acknowledge(id); err != nil {
		return err
	}
	fmt.Printf("Acknowledged %s\n", id)
	return nil
}

func alertsResolveCommand(id string) error {
	system, _, err := loadSystem()
	if err != nil {
		return err
	}
	if err := system.Resolve(id); err != nil {
		return err
	}
	fmt.Printf("Resolved %s\n", id)
	return nil
}
