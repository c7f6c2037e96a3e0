package config

// Config is the top-level suite configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Suite     SuiteConfig     `mapstructure:"suite"`
	Surfaces  SurfacesConfig  `mapstructure:"surfaces"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Tolerance ToleranceConfig `mapstructure:"tolerance"`
}

type AppConfig struct {
	LogLevel    string `mapstructure:"log_level"`
	LogPath     string `mapstructure:"log_path"`
	HTTPAddr    string `mapstructure:"http_addr"`
	ArtifactDir string `mapstructure:"artifact_dir"`
}

type SuiteConfig struct {
	MaxAttempts       int    `mapstructure:"max_attempts"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds"`
	Parallel          int    `mapstructure:"parallel"`
	LedgerBackend     string `mapstructure:"ledger_backend"` // "file" or "sqlite"
	LedgerDir         string `mapstructure:"ledger_dir"`
	LedgerDB          string `mapstructure:"ledger_db"`
	VerdictDB         string `mapstructure:"verdict_db"`
}

type SurfacesConfig struct {
	MappingPath string `mapstructure:"mapping_path"`
}

type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	WSURL   string `mapstructure:"ws_url"`
}

// ToleranceConfig declares comparison tolerances as decimal strings so no
// precision is lost in transit through the config file.
type ToleranceConfig struct {
	Price     string                         `mapstructure:"price"`
	Quantity  string                         `mapstructure:"quantity"`
	Money     string                         `mapstructure:"money"`
	PerSymbol map[string]SymbolToleranceConf `mapstructure:"per_symbol"`
	Binance   BinanceConfig                  `mapstructure:"binance"`
}

type SymbolToleranceConf struct {
	Price    string `mapstructure:"price"`
	Quantity string `mapstructure:"quantity"`
	Money    string `mapstructure:"money"`
}

// BinanceConfig enables tick/lot lookup from exchange filters instead of
// static values.
type BinanceConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RESTBaseURL string `mapstructure:"rest_base_url"`
}
