package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads and validates the suite configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.ArtifactDir == "" {
		c.App.ArtifactDir = "artifacts"
	}
	if c.Suite.MaxAttempts <= 0 {
		c.Suite.MaxAttempts = 2
	}
	if c.Suite.RetryDelaySeconds < 0 {
		c.Suite.RetryDelaySeconds = 0
	}
	if c.Suite.Parallel <= 0 {
		c.Suite.Parallel = 1
	}
	if c.Suite.LedgerBackend == "" {
		c.Suite.LedgerBackend = "file"
	}
	if c.Suite.LedgerDir == "" {
		c.Suite.LedgerDir = "artifacts/ledgers"
	}
	if c.Suite.LedgerDB == "" {
		c.Suite.LedgerDB = "artifacts/ledger.db"
	}
	if c.Suite.VerdictDB == "" {
		c.Suite.VerdictDB = "artifacts/verdicts.db"
	}
	if c.Tolerance.Price == "" {
		c.Tolerance.Price = "0"
	}
	if c.Tolerance.Quantity == "" {
		c.Tolerance.Quantity = "0"
	}
	if c.Tolerance.Money == "" {
		c.Tolerance.Money = "0"
	}
}

func validate(c *Config) error {
	switch c.Suite.LedgerBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("suite.ledger_backend must be file or sqlite, got %q", c.Suite.LedgerBackend)
	}
	if c.Surfaces.MappingPath == "" {
		return fmt.Errorf("surfaces.mapping_path is required")
	}
	if c.Notify.Enabled && c.Notify.WSURL == "" {
		return fmt.Errorf("notify.ws_url is required when notify is enabled")
	}
	if _, err := c.ToleranceSet(); err != nil {
		return err
	}
	return nil
}
