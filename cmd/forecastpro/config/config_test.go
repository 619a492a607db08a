package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/alex-robert-fr/ForecastPro/internal/report"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	cfg := Load()

	if cfg.DBPath != "forecastpro.db" {
		t.Errorf("DBPath = %q, want forecastpro.db", cfg.DBPath)
	}
	if cfg.LogFormat != string(logger.TextFormat) {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if cfg.OutputFormat != string(report.FormatConsole) {
		t.Errorf("OutputFormat = %q, want console", cfg.OutputFormat)
	}
}

func TestLoggerConfig_Verbose(t *testing.T) {
	cfg := &Config{Verbose: true, LogFormat: "json"}

	lc := cfg.LoggerConfig()
	if lc.Level != logger.DebugLevel {
		t.Errorf("Level = %s, want debug", lc.Level)
	}
	if lc.Format != logger.JSONFormat {
		t.Errorf("Format = %s, want json", lc.Format)
	}
}

func TestTinkConfig_MarketFallback(t *testing.T) {
	cfg := &Config{
		TinkClientID:     "id",
		TinkClientSecret: "secret",
		TinkRedirectURI:  "https://example.com/callback",
	}

	tc := cfg.TinkConfig()
	if tc.Market != "FR" {
		t.Errorf("Market = %q, want FR default", tc.Market)
	}
	if err := tc.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestReportConfig_InvalidFormat(t *testing.T) {
	cfg := &Config{OutputFormat: "xml"}
	if _, err := cfg.ReportConfig(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
