package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
)

// Flags for the import command
var (
	importAccount string
	importFile    string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV bank statement export into an account",
	Long: `Import reads a semicolon-delimited CSV statement export, parses each row
into a transaction, skips rows already known to the account, and recomputes
the balance.

Rows that cannot be parsed are reported individually and never abort the
import. A missing or empty file aborts the whole batch.

Examples:
  forecastpro import --account checking --file releve-mars.csv
  forecastpro import --account checking --file releve.csv --output-format json`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importAccount, "account", "a", "", "account identifier (required)")
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the CSV statement export (required)")

	importCmd.MarkFlagRequired("account")
	importCmd.MarkFlagRequired("file")

	viper.BindPFlag("import-account", importCmd.Flags().Lookup("account"))
	viper.BindPFlag("import-file", importCmd.Flags().Lookup("file"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	if importAccount == "" {
		return fmt.Errorf("account is required")
	}
	if importFile == "" {
		return fmt.Errorf("file is required")
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := os.ReadFile(importFile)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.FileError(apperrors.CodeFileNotFound, importFile, err)
		}
		return apperrors.FileError(apperrors.CodeFileUnread, importFile, err)
	}

	result, err := a.reconciler.ImportStatement(cmd.Context(), importAccount, string(raw))
	if err != nil {
		return err
	}

	return a.reports.ImportReport(result, os.Stdout)
}
