// Package report renders import results and monthly statistics for the CLI.
//
// Two output formats are supported:
//   - Console: human-readable output for terminal display
//   - JSON: structured output for programmatic consumption
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
)

// OutputFormat selects how a report is rendered.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON:
		return true
	default:
		return false
	}
}

// Config holds report rendering options.
type Config struct {
	Format OutputFormat `json:"format"`

	// Console options
	ShowErrors    bool `json:"show_errors"`
	MaxErrorLines int  `json:"max_error_lines"`
}

// DefaultConfig returns the default report configuration.
func DefaultConfig() *Config {
	return &Config{
		Format:        FormatConsole,
		ShowErrors:    true,
		MaxErrorLines: 20,
	}
}

// Validate validates the report configuration.
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxErrorLines < 0 {
		return fmt.Errorf("max error lines must not be negative, got %d", c.MaxErrorLines)
	}
	return nil
}

// Generator renders reports in the configured format.
type Generator struct {
	config *Config
}

// NewGenerator creates a report generator. A nil config means defaults.
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &Generator{config: config}, nil
}

// ImportReport renders the outcome of one import batch.
func (g *Generator) ImportReport(result *models.ImportResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("import result cannot be nil")
	}

	switch g.config.Format {
	case FormatJSON:
		return writeJSON(writer, result)
	case FormatConsole:
		return g.importConsole(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

func (g *Generator) importConsole(result *models.ImportResult, writer io.Writer) error {
	fmt.Fprintf(writer, "IMPORT REPORT\n")
	fmt.Fprintf(writer, "Batch:    %s\n", result.BatchID)
	fmt.Fprintf(writer, "Imported: %d\n", result.Imported)
	fmt.Fprintf(writer, "Skipped:  %d (already known)\n", result.Skipped)
	fmt.Fprintf(writer, "Errors:   %d\n", len(result.Errors))

	if g.config.ShowErrors && len(result.Errors) > 0 {
		fmt.Fprintf(writer, "\n=== ROW ERRORS ===\n")
		for i, msg := range result.Errors {
			if g.config.MaxErrorLines > 0 && i >= g.config.MaxErrorLines {
				fmt.Fprintf(writer, "... and %d more\n", len(result.Errors)-i)
				break
			}
			fmt.Fprintf(writer, "  - %s\n", msg)
		}
	}
	return nil
}

// statsEnvelope shapes the JSON stats output with its reporting period.
type statsEnvelope struct {
	Account string               `json:"account"`
	Year    int                  `json:"year"`
	Month   string               `json:"month"`
	Stats   *models.MonthlyStats `json:"stats"`
}

// StatsReport renders one month of account statistics.
func (g *Generator) StatsReport(account *models.Account, year int, month time.Month, stats *models.MonthlyStats, writer io.Writer) error {
	if stats == nil {
		return fmt.Errorf("stats cannot be nil")
	}

	switch g.config.Format {
	case FormatJSON:
		return writeJSON(writer, &statsEnvelope{
			Account: account.Name,
			Year:    year,
			Month:   month.String(),
			Stats:   stats,
		})
	case FormatConsole:
		return statsConsole(account, year, month, stats, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", g.config.Format)
	}
}

func statsConsole(account *models.Account, year int, month time.Month, stats *models.MonthlyStats, writer io.Writer) error {
	fmt.Fprintf(writer, "MONTHLY STATISTICS: %s %d\n", month, year)
	fmt.Fprintf(writer, "Account:      %s (%s)\n\n", account.Name, account.Currency)
	fmt.Fprintf(writer, "Income:       %12s\n", stats.Income.StringFixed(2))
	fmt.Fprintf(writer, "Expenses:     %12s\n", stats.Expenses.StringFixed(2))
	fmt.Fprintf(writer, "Savings:      %12s\n", stats.Savings.StringFixed(2))
	fmt.Fprintf(writer, "Savings rate: %11s%%\n", stats.SavingsRate.StringFixed(2))
	fmt.Fprintf(writer, "\nBalance:      %12s\n", account.Balance.StringFixed(2))
	return nil
}

func writeJSON(writer io.Writer, v any) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
