package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
)

// Flags for the account subcommands
var (
	accountName     string
	accountCurrency string
	accountInitial  string
)

// accountCmd groups account management subcommands
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create an account",
	Long: `Create registers a new account. The initial balance seeds the running
balance; it is adjusted automatically when a bank sync reports the real
balance.

Examples:
  forecastpro account create checking --name "Compte Courant"
  forecastpro account create savings --name "Livret A" --initial 1500.00`,

	Args: cobra.ExactArgs(1),
	RunE: runAccountCreate,
}

var accountResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Delete all transactions of an account and zero its balances",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountReset,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountResetCmd)

	accountCreateCmd.Flags().StringVar(&accountName, "name", "", "display name (default: the id)")
	accountCreateCmd.Flags().StringVar(&accountCurrency, "currency", "EUR", "ISO currency code")
	accountCreateCmd.Flags().StringVar(&accountInitial, "initial", "0", "initial balance")
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	initial, err := decimal.NewFromString(accountInitial)
	if err != nil {
		return fmt.Errorf("invalid initial balance %q: %w", accountInitial, err)
	}

	id := args[0]
	name := accountName
	if name == "" {
		name = id
	}

	account := &models.Account{
		ID:             id,
		Name:           name,
		Currency:       accountCurrency,
		InitialBalance: initial,
		Balance:        initial,
	}
	if err := account.Validate(); err != nil {
		return err
	}

	if err := a.store.Accounts().Create(cmd.Context(), account); err != nil {
		return err
	}

	fmt.Printf("Created account %s (%s) with initial balance %s %s\n",
		id, name, initial.StringFixed(2), accountCurrency)
	return nil
}

func runAccountReset(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.reconciler.ResetAccount(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Reset account %s\n", args[0])
	return nil
}
