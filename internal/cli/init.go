package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/errors"
	"github.com/openmesh/xmon/internal/inventory"
)

var initForceFlag bool

// initCmd creates the monitoring config and a starter inventory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the monitoring configuration",
	Long: `Initialize the monitoring config and node inventory.

Walks through the first node and the alert channels with interactive
prompts, then writes ~/.xmon/monitoring.yaml and ~/.xmon/nodes.yaml.

Examples:
  xmon init
  xmon init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForceFlag)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

func initCommand(force bool) error {
	cfgPath := configPath()

	if _, err := os.Stat(cfgPath); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", cfgPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	var (
		nodeID      string
		nodeAddress string
		nodeUser    = "root"
		enableHTTP  bool
		enableSlack bool
		slackURL    string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First node id").
				Description("A stable name for the node, used in alerts and history").
				Placeholder("worker-1").
				Value(&nodeID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("node id is required")
					}
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("node id cannot contain whitespace")
					}
					return nil
				}),
			huh.NewInput().
				Title("Node address").
				Description("Hostname or IP used for probing and SSH").
				Placeholder("10.0.0.12").
				Value(&nodeAddress).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("node address is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("SSH user").
				Description("User for metrics collection").
				Value(&nodeUser),
			huh.NewConfirm().
				Title("Does this node serve HTTP?").
				Description("Enables the HTTP liveness probe").
				Value(&enableHTTP),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send alerts to Slack?").
				Value(&enableSlack),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input", "")
	}

	if enableSlack {
		slackForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Slack webhook URL").
					Placeholder("https://hooks.slack.com/services/...").
					Value(&slackURL),
			),
		)
		if err := slackForm.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input", "")
		}
	}

	cfg := config.Default()
	cfg.SlackAlerts = enableSlack && slackURL != ""
	cfg.SlackWebhookURL = slackURL
	if err := config.Save(cfg, cfgPath); err != nil {
		return err
	}

	nodes := []inventory.NodeRef{{
		ID:             strings.TrimSpace(nodeID),
		Address:        strings.TrimSpace(nodeAddress),
		User:           strings.TrimSpace(nodeUser),
		ServicePort:    22,
		HasHTTPService: enableHTTP,
	}}
	if err := inventory.Save(nodes, inventoryPath()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s and %s\n", cfgPath, inventoryPath())
	fmt.Println("Run 'xmon check' to take the first reading.")
	return nil
}
