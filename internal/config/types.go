package config

import "time"

// Config holds all monitoring settings and alert thresholds.
// It is an explicit value owned by the monitoring system: it is loaded once,
// passed through constructors, and replaced via UpdateConfig. It is never
// package-global state.
type Config struct {
	// Enabled toggles monitoring globally.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// CheckInterval is the suggested cadence for external schedulers
	// (the watch dashboard uses it as its refresh interval).
	CheckInterval time.Duration `yaml:"check_interval" mapstructure:"check_interval"`

	// Per-probe timeouts.
	PingTimeout    time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`
	ServiceTimeout time.Duration `yaml:"service_timeout" mapstructure:"service_timeout"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`

	// Thresholds are percentages; a sample at or above critical raises a
	// critical alert, at or above warning a warning alert.
	CPUWarning     float64 `yaml:"cpu_warning_threshold" mapstructure:"cpu_warning_threshold"`
	CPUCritical    float64 `yaml:"cpu_critical_threshold" mapstructure:"cpu_critical_threshold"`
	MemoryWarning  float64 `yaml:"memory_warning_threshold" mapstructure:"memory_warning_threshold"`
	MemoryCritical float64 `yaml:"memory_critical_threshold" mapstructure:"memory_critical_threshold"`
	DiskWarning    float64 `yaml:"disk_warning_threshold" mapstructure:"disk_warning_threshold"`
	DiskCritical   float64 `yaml:"disk_critical_threshold" mapstructure:"disk_critical_threshold"`

	// Delivery channel toggles.
	ConsoleAlerts bool `yaml:"console_alerts" mapstructure:"console_alerts"`
	EmailAlerts   bool `yaml:"email_alerts" mapstructure:"email_alerts"`
	WebhookAlerts bool `yaml:"webhook_alerts" mapstructure:"webhook_alerts"`
	SlackAlerts   bool `yaml:"slack_alerts" mapstructure:"slack_alerts"`

	// Delivery endpoints.
	EmailRecipients []string `yaml:"email_recipients" mapstructure:"email_recipients"`
	WebhookURL      string   `yaml:"webhook_url" mapstructure:"webhook_url"`
	SlackWebhookURL string   `yaml:"slack_webhook_url" mapstructure:"slack_webhook_url"`

	// HTTPErrorCritical raises HTTP probe failures as critical instead of warning.
	HTTPErrorCritical bool `yaml:"http_error_critical" mapstructure:"http_error_critical"`

	// Auto-remediation. ServiceDown alerts log a remediation trigger when
	// AutoRestartOnFailure is set; no restart is actually issued.
	AutoRestartOnFailure bool `yaml:"auto_restart_on_failure" mapstructure:"auto_restart_on_failure"`
	AutoScaleOnHighLoad  bool `yaml:"auto_scale_on_high_load" mapstructure:"auto_scale_on_high_load"`

	// DataDir is where history and alert artifacts are persisted.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// Default returns a Config with the documented default values.
func Default() *Config {
	return &Config{
		Enabled:        true,
		CheckInterval:  60 * time.Second,
		PingTimeout:    5 * time.Second,
		ServiceTimeout: 10 * time.Second,
		HTTPTimeout:    10 * time.Second,
		CPUWarning:     75.0,
		CPUCritical:    90.0,
		MemoryWarning:  80.0,
		MemoryCritical: 95.0,
		DiskWarning:    85.0,
		DiskCritical:   95.0,
		ConsoleAlerts:  true,
		DataDir:        "",
	}
}
