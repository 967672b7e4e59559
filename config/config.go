// Package config loads the kstock configuration: YAML file first, then
// environment variables (optionally from a .env file) override it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kstocklab/kstock/fees"
	"github.com/kstocklab/kstock/market"
)

// Config is the complete kstock configuration.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Data     DataConfig     `yaml:"data"`
	Store    StoreConfig    `yaml:"store"`
	Fees     FeesConfig     `yaml:"fees"`
}

// StrategyConfig identifies the simulated account.
type StrategyConfig struct {
	ID        string `yaml:"id"`
	SeedMoney int64  `yaml:"seed_money"`
}

// DataConfig locates the on-disk data directories.
type DataConfig struct {
	Dir      string `yaml:"dir"`       // root data directory
	CacheDir string `yaml:"cache_dir"` // price-history cache (defaults to <dir>/cache)
	FeeDir   string `yaml:"fee_dir"`   // fee table directory (defaults to <dir>/fee)
	Timezone string `yaml:"timezone"`
}

// StoreConfig selects the transaction log backend.
type StoreConfig struct {
	Type   string `yaml:"type"`    // "csv" or "sqlite"
	DBPath string `yaml:"db_path"` // sqlite only; defaults to <dir>/history/<id>.sqlite
}

// FeesConfig tunes the fee calculator.
type FeesConfig struct {
	TaxRate float64 `yaml:"tax_rate"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{ID: "default", SeedMoney: 1_000_000},
		Data:     DataConfig{Dir: "./data", Timezone: market.DefaultTimezone},
		Store:    StoreConfig{Type: "csv"},
		Fees:     FeesConfig{TaxRate: fees.DefaultTaxRate},
	}
}

// LoadFromFile loads path (YAML), merges environment overrides and
// validates. An empty path loads defaults plus environment overrides.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KSTOCK_STRATEGY_ID"); v != "" {
		c.Strategy.ID = v
	}
	if v := os.Getenv("KSTOCK_SEED_MONEY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Strategy.SeedMoney = n
		}
	}
	if v := os.Getenv("KSTOCK_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("KSTOCK_STORE_TYPE"); v != "" {
		c.Store.Type = v
	}
	if v := os.Getenv("KSTOCK_TIMEZONE"); v != "" {
		c.Data.Timezone = v
	}
}

func (c *Config) applyDefaults() {
	if c.Data.CacheDir == "" {
		c.Data.CacheDir = filepath.Join(c.Data.Dir, "cache")
	}
	if c.Data.FeeDir == "" {
		c.Data.FeeDir = filepath.Join(c.Data.Dir, "fee")
	}
	if c.Store.DBPath == "" {
		c.Store.DBPath = filepath.Join(c.Data.Dir, "history", c.Strategy.ID+".sqlite")
	}
}

// HistoryFile returns the CSV log path for the configured strategy.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.Data.Dir, "history", "purchase_history_"+c.Strategy.ID+".csv")
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Strategy.ID == "" {
		return fmt.Errorf("strategy.id is required")
	}
	if c.Strategy.SeedMoney <= 0 {
		return fmt.Errorf("strategy.seed_money must be positive")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Store.Type != "csv" && c.Store.Type != "sqlite" {
		return fmt.Errorf("store.type must be 'csv' or 'sqlite'")
	}
	if c.Fees.TaxRate < 0 || c.Fees.TaxRate >= 1 {
		return fmt.Errorf("fees.tax_rate must be in [0, 1)")
	}
	if _, err := market.NewClock(c.Data.Timezone); err != nil {
		return err
	}
	return nil
}
