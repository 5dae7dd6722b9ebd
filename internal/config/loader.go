package config

import (
	"os"
	"path/filepath"

	"github.com/openmesh/xmon/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "monitoring.yaml"
	// DataDirName is the default directory for persisted history and alerts.
	DataDirName = "monitoring_data"
)

// DefaultPath returns the default config file location (~/.xmon/monitoring.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".xmon", ConfigFileName)
}

// Load reads config from the specified path. A missing file yields the
// defaults; a malformed file is a fatal CONFIG error.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.DataDir = defaultDataDir(path)
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read monitoring config",
			"Check that "+path+" is valid YAML")
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid monitoring config format",
			"Check the field types in "+path)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir(path)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to the specified path as YAML, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to serialize monitoring config", "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create config directory",
			"Check permissions on "+filepath.Dir(path))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write monitoring config",
			"Check permissions on "+path)
	}

	return nil
}

// setDefaults seeds viper so that fields missing from the file fall back to
// the documented defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)
	v.SetDefault("check_interval", "60s")
	v.SetDefault("ping_timeout", "5s")
	v.SetDefault("service_timeout", "10s")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("cpu_warning_threshold", 75.0)
	v.SetDefault("cpu_critical_threshold", 90.0)
	v.SetDefault("memory_warning_threshold", 80.0)
	v.SetDefault("memory_critical_threshold", 95.0)
	v.SetDefault("disk_warning_threshold", 85.0)
	v.SetDefault("disk_critical_threshold", 95.0)
	v.SetDefault("console_alerts", true)
}

// Validate rejects configs whose thresholds are inverted or out of range.
func Validate(cfg *Config) error {
	type pair struct {
		name              string
		warning, critical float64
	}
	for _, p := range []pair{
		{"cpu", cfg.CPUWarning, cfg.CPUCritical},
		{"memory", cfg.MemoryWarning, cfg.MemoryCritical},
		{"disk", cfg.DiskWarning, cfg.DiskCritical},
	} {
		if p.warning < 0 || p.critical > 100 || p.warning > p.critical {
			return errors.New(errors.ErrConfig,
				"Invalid "+p.name+" thresholds",
				"Thresholds must satisfy 0 <= warning <= critical <= 100")
		}
	}
	return nil
}

// defaultDataDir places the data directory next to the config file.
func defaultDataDir(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), DataDirName)
}
