// Package config handles configuration loading. It supports YAML config
// files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/arhow/tradingagents/internal/sitesearch"
	"github.com/arhow/tradingagents/internal/vendors/rssnews"
)

// Config represents the complete application configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data"      yaml:"data"`
	Vendors   VendorConfig    `mapstructure:"vendors"   yaml:"vendors"`
	Indicator IndicatorConfig `mapstructure:"indicator" yaml:"indicator"`
	Search    SearchConfig    `mapstructure:"search"    yaml:"search"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// DataConfig holds local data layout settings.
type DataConfig struct {
	// Dir is the root of pre-downloaded datasets (offline series,
	// Finnhub dumps).
	Dir string `mapstructure:"dir" yaml:"dir"`
	// CacheDir holds fetched time-series CSV files.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
	// OfflinePattern is the offline series file name; {symbol} is
	// replaced with the queried symbol.
	OfflinePattern string `mapstructure:"offline_pattern" yaml:"offline_pattern"`
}

// VendorConfig holds vendor routing preferences and credentials.
type VendorConfig struct {
	// Default is the preferred vendor chain when no category or method
	// override applies. Comma-separated, highest priority first.
	Default string `mapstructure:"default" yaml:"default"`
	// Categories overrides the chain per method category
	// (market-data, fundamentals, news, insider).
	Categories map[string]string `mapstructure:"categories" yaml:"categories"`
	// Methods overrides the chain per individual method.
	Methods map[string]string `mapstructure:"methods" yaml:"methods"`
	// TimeoutSec is the per-request HTTP timeout.
	TimeoutSec   int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	TushareToken string `mapstructure:"tushare_token" yaml:"tushare_token"`
}

// IndicatorConfig holds indicator engine settings.
type IndicatorConfig struct {
	// LookbackYears bounds the series window for online lookups.
	LookbackYears int `mapstructure:"lookback_years" yaml:"lookback_years"`
}

// SearchConfig holds site-search aggregation settings.
type SearchConfig struct {
	// BackendURL is the OpenAI-compatible API base, e.g.
	// "https://api.openai.com/v1".
	BackendURL string `mapstructure:"backend_url" yaml:"backend_url"`
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	Model      string `mapstructure:"model"       yaml:"model"`
	// SiteTimeoutSec bounds each per-site search.
	SiteTimeoutSec int `mapstructure:"site_timeout_sec" yaml:"site_timeout_sec"`
	// Sites overrides the built-in platform table when non-empty.
	Sites []sitesearch.Site `mapstructure:"sites" yaml:"sites"`
}

// NewsConfig holds RSS feed settings.
type NewsConfig struct {
	// Feeds overrides the built-in feed list when non-empty.
	Feeds []rssnews.Feed `mapstructure:"feeds" yaml:"feeds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tradingagents/config.yaml (home directory)
//  3. /etc/tradingagents/config.yaml (system)
//
// Environment variables override config file values.
// Format: TRADINGAGENTS_<SECTION>_<KEY>, e.g. TRADINGAGENTS_VENDORS_TUSHARE_TOKEN.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tradingagents"))
	v.AddConfigPath("/etc/tradingagents")

	v.SetEnvPrefix("TRADINGAGENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TRADINGAGENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.cache_dir", "./data/cache")
	v.SetDefault("data.offline_pattern", "{symbol}.csv")

	v.SetDefault("vendors.default", "tushare,yfinance")
	v.SetDefault("vendors.timeout_sec", 30)

	v.SetDefault("indicator.lookback_years", 15)

	v.SetDefault("search.backend_url", "https://api.openai.com/v1")
	v.SetDefault("search.model", "gpt-4o-mini")
	v.SetDefault("search.site_timeout_sec", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if token := os.Getenv("TRADINGAGENTS_VENDORS_TUSHARE_TOKEN"); token != "" {
		cfg.Vendors.TushareToken = token
	}
	if token := os.Getenv("TUSHARE_TOKEN"); token != "" && cfg.Vendors.TushareToken == "" {
		cfg.Vendors.TushareToken = token
	}
	if key := os.Getenv("TRADINGAGENTS_SEARCH_API_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Search.APIKey == "" {
		cfg.Search.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
