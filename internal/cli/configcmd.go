package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openmesh/xmon/internal/config"
	"github.com/openmesh/xmon/internal/errors"
)

// configCmd is the parent for configuration operations.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change monitoring settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and persist it",
	Long: `Set a configuration key. Keys use the same names as the YAML file.

Examples:
  xmon config set cpu_warning_threshold 70
  xmon config set check_interval 30s
  xmon config set webhook_alerts true
  xmon config set webhook_url https://hooks.example.com/xmon`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configShowCommand() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to render configuration", "")
	}
	fmt.Printf("# %s\n%s", configPath(), data)
	return nil
}

// configSetCommand mutates one field, re-validates the whole config, and
// persists it through the monitoring system so a bad value never lands on
// disk.
func configSetCommand(key, value string) error {
	system, cfg, err := loadSystem()
	if err != nil {
		return err
	}

	updated := *cfg
	if err := applySetting(&updated, key, value); err != nil {
		return err
	}

	if err := system.UpdateConfig(&updated); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// applySetting maps a YAML key to its config field and parses the value.
func applySetting(cfg *config.Config, key, value string) error {
	boolFields := map[string]*bool{
		"enabled":                 &cfg.Enabled,
		"console_alerts":          &cfg.ConsoleAlerts,
		"email_alerts":            &cfg.EmailAlerts,
		"webhook_alerts":          &cfg.WebhookAlerts,
		"slack_alerts":            &cfg.SlackAlerts,
		"http_error_critical":     &cfg.HTTPErrorCritical,
		"auto_restart_on_failure": &cfg.AutoRestartOnFailure,
		"auto_scale_on_high_load": &cfg.AutoScaleOnHighLoad,
	}
	floatFields := map[string]*float64{
		"cpu_warning_threshold":     &cfg.CPUWarning,
		"cpu_critical_threshold":    &cfg.CPUCritical,
		"memory_warning_threshold":  &cfg.MemoryWarning,
		"memory_critical_threshold": &cfg.MemoryCritical,
		"disk_warning_threshold":    &cfg.DiskWarning,
		"disk_critical_threshold":   &cfg.DiskCritical,
	}
	durationFields := map[string]*time.Duration{
		"check_interval":  &cfg.CheckInterval,
		"ping_timeout":    &cfg.PingTimeout,
		"service_timeout": &cfg.ServiceTimeout,
		"http_timeout":    &cfg.HTTPTimeout,
	}
	stringFields := map[string]*string{
		"webhook_url":       &cfg.WebhookURL,
		"slack_webhook_url": &cfg.SlackWebhookURL,
		"data_dir":          &cfg.DataDir,
	}

	switch {
	case boolFields[key] != nil:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a boolean", value),
				"Use true or false")
		}
		*boolFields[key] = b

	case floatFields[key] != nil:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a number", value),
				"Thresholds are percentages, e.g. 85")
		}
		*floatFields[key] = f

	case durationFields[key] != nil:
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' is not a duration", value),
				"Try something like 30s, 5m, or 1h")
		}
		*durationFields[key] = d

	case stringFields[key] != nil:
		*stringFields[key] = value

	default:
		return errors.New(errors.ErrConfig,
			"Unknown configuration key '"+key+"'",
			"Run 'xmon config show' to see the available keys")
	}
	return nil
}
