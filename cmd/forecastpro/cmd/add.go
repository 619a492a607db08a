package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Flags for the add command
var (
	addAccount string
	addDate    string
	addLabel   string
	addAmount  string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a manual transaction",
	Long: `Add records a transaction entered by hand. Negative amounts are debits,
positive amounts are credits. The balance is recomputed immediately.

Examples:
  forecastpro add --account checking --date 2024-03-15 --label "Remboursement ami" --amount 30.00
  forecastpro add --account checking --date 2024-03-16 --label "Cadeau" --amount -25.50`,

	PreRunE: validateAddFlags,
	RunE:    runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addAccount, "account", "a", "", "account identifier (required)")
	addCmd.Flags().StringVar(&addDate, "date", "", "transaction date (YYYY-MM-DD, required)")
	addCmd.Flags().StringVar(&addLabel, "label", "", "transaction label (required)")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "signed amount (required)")

	addCmd.MarkFlagRequired("account")
	addCmd.MarkFlagRequired("date")
	addCmd.MarkFlagRequired("label")
	addCmd.MarkFlagRequired("amount")
}

func validateAddFlags(cmd *cobra.Command, args []string) error {
	if _, err := time.Parse("2006-01-02", addDate); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	if _, err := decimal.NewFromString(addAmount); err != nil {
		return fmt.Errorf("invalid amount %q: %w", addAmount, err)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	date, _ := time.Parse("2006-01-02", addDate)
	amount, _ := decimal.NewFromString(addAmount)

	tx, err := a.reconciler.AddManual(cmd.Context(), addAccount, date, addLabel, amount)
	if err != nil {
		return err
	}

	fmt.Printf("Added %s transaction of %s on %s\n",
		tx.Type, tx.Amount.StringFixed(2), tx.Date.Format("2006-01-02"))
	return nil
}
