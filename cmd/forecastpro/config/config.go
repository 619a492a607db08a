// Package config assembles component configurations from flags, environment
// variables, and an optional config file.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/alex-robert-fr/ForecastPro/internal/report"
	"github.com/alex-robert-fr/ForecastPro/internal/tink"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// Config holds everything the CLI needs to build the application.
type Config struct {
	DBPath       string
	Verbose      bool
	LogFormat    string
	OutputFormat string

	TinkClientID     string
	TinkClientSecret string
	TinkRedirectURI  string
	TinkMarket       string
	TinkLocale       string
}

// Load reads the configuration from viper. Flag and env bindings are set up
// by the command layer before this is called.
func Load() *Config {
	cfg := &Config{
		DBPath:       viper.GetString("db"),
		Verbose:      viper.GetBool("verbose"),
		LogFormat:    viper.GetString("log-format"),
		OutputFormat: viper.GetString("output-format"),

		TinkClientID:     viper.GetString("tink-client-id"),
		TinkClientSecret: viper.GetString("tink-client-secret"),
		TinkRedirectURI:  viper.GetString("tink-redirect-uri"),
		TinkMarket:       viper.GetString("tink-market"),
		TinkLocale:       viper.GetString("tink-locale"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "forecastpro.db"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = string(logger.TextFormat)
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = string(report.FormatConsole)
	}

	return cfg
}

// LoggerConfig builds the logger configuration. Verbose mode lowers the
// level to debug.
func (c *Config) LoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Format = logger.Format(c.LogFormat)
	if c.Verbose {
		cfg.Level = logger.DebugLevel
	}
	return cfg
}

// TinkConfig builds the bank API client configuration from the loaded
// credentials. Market and locale fall back to the French defaults.
func (c *Config) TinkConfig() *tink.ClientConfig {
	cfg := tink.DefaultClientConfig()
	cfg.ClientID = c.TinkClientID
	cfg.ClientSecret = c.TinkClientSecret
	cfg.RedirectURI = c.TinkRedirectURI
	if c.TinkMarket != "" {
		cfg.Market = c.TinkMarket
	}
	if c.TinkLocale != "" {
		cfg.Locale = c.TinkLocale
	}
	return cfg
}

// ReportConfig builds the report configuration for the selected output
// format.
func (c *Config) ReportConfig() (*report.Config, error) {
	format := report.OutputFormat(c.OutputFormat)
	if !format.IsValid() {
		return nil, fmt.Errorf("invalid output format %q, valid formats: console, json", c.OutputFormat)
	}

	cfg := report.DefaultConfig()
	cfg.Format = format
	return cfg, nil
}
