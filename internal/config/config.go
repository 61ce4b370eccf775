// Package config loads application settings from taxcalc.yaml and TAXCALC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/remote"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "TAXCALC"

// Config represents the complete application configuration.
type Config struct {
	Rates   RatesConfig        `mapstructure:"rates"   yaml:"rates"`
	Remote  remote.Config      `mapstructure:"remote"  yaml:"remote"`
	Engine  calculation.Policy `mapstructure:"engine"  yaml:"engine"`
	API     APIConfig          `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// RatesConfig says where rate tables come from. Empty File and URL mean the
// bundled tables only.
type RatesConfig struct {
	File            string        `mapstructure:"file"             yaml:"file"`
	URL             string        `mapstructure:"url"              yaml:"url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"` // 0 disables periodic refresh
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./taxcalc.yaml
//  2. ./config/taxcalc.yaml
//  3. ~/.taxcalc/taxcalc.yaml
//
// Environment variables override config file values.
// Format: TAXCALC_<SECTION>_<KEY>, e.g., TAXCALC_REMOTE_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("taxcalc")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".taxcalc"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("rates.file", "")
	v.SetDefault("rates.url", "")
	v.SetDefault("rates.refresh_interval", "0s")

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.tax_authority_url", "")
	v.SetDefault("remote.sales_tax_url", "")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.timeout", "3s")
	v.SetDefault("remote.max_retries", 2)
	v.SetDefault("remote.deadline", "8s")

	policy := calculation.DefaultPolicy()
	v.SetDefault("engine.high_burden_ratio", policy.HighBurdenRatio)
	v.SetDefault("engine.estimated_tax_threshold", policy.EstimatedTaxThreshold)
	v.SetDefault("engine.confidence_base", policy.ConfidenceBase)
	v.SetDefault("engine.confidence_income_low", policy.ConfidenceIncomeLow)
	v.SetDefault("engine.confidence_income_high", policy.ConfidenceIncomeHigh)
	v.SetDefault("engine.confidence_income_bonus", policy.ConfidenceIncomeBonus)
	v.SetDefault("engine.confidence_taxable_bonus", policy.ConfidenceTaxableBonus)
	v.SetDefault("engine.confidence_ceiling", policy.ConfidenceCeiling)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	if c.Engine.ConfidenceCeiling <= 0 || c.Engine.ConfidenceCeiling >= 1 {
		return fmt.Errorf("engine.confidence_ceiling must be in (0, 1)")
	}
	if c.Engine.HighBurdenRatio <= 0 {
		return fmt.Errorf("engine.high_burden_ratio must be positive")
	}
	if c.Rates.RefreshInterval < 0 {
		return fmt.Errorf("rates.refresh_interval cannot be negative")
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
