package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Flags for the stats command
var (
	statsAccount string
	statsYear    int
	statsMonth   int
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show monthly income, expenses, and savings for an account",
	Long: `Stats aggregates one calendar month of transactions into income,
expenses, savings, and a savings rate.

Examples:
  forecastpro stats --account checking
  forecastpro stats --account checking --year 2024 --month 3 --output-format json`,

	PreRunE: validateStatsFlags,
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	now := time.Now()
	statsCmd.Flags().StringVarP(&statsAccount, "account", "a", "", "account identifier (required)")
	statsCmd.Flags().IntVar(&statsYear, "year", now.Year(), "year to report on")
	statsCmd.Flags().IntVar(&statsMonth, "month", int(now.Month()), "month to report on (1-12)")

	statsCmd.MarkFlagRequired("account")
}

func validateStatsFlags(cmd *cobra.Command, args []string) error {
	if statsAccount == "" {
		return fmt.Errorf("account is required")
	}
	if statsMonth < 1 || statsMonth > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", statsMonth)
	}
	if statsYear < 1970 {
		return fmt.Errorf("year must be 1970 or later, got %d", statsYear)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	month := time.Month(statsMonth)

	account, err := a.store.Accounts().Get(ctx, statsAccount)
	if err != nil {
		return err
	}

	stats, err := a.calculator.MonthlyStats(ctx, statsAccount, statsYear, month)
	if err != nil {
		return err
	}

	return a.reports.StatsReport(account, statsYear, month, stats, os.Stdout)
}
