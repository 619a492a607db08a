package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// CLIErrorHandler turns errors into user-facing messages and exit codes.
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.Global().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message and returns the exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if importErr, ok := apperrors.AsImportError(err); ok {
		return h.handleImportError(importErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) handleImportError(err *apperrors.ImportError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return exitCode(err.Category)
}

func exitCode(category apperrors.ErrorCategory) int {
	switch category {
	case apperrors.CategoryFile, apperrors.CategoryValidation:
		return 2
	case apperrors.CategorySync:
		return 3
	case apperrors.CategoryStorage:
		return 4
	default:
		return 1
	}
}

func categoryHelp(category apperrors.ErrorCategory) string {
	switch category {
	case apperrors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Export the statement again from your bank if the file is empty`

	case apperrors.CategorySync:
		return `Bank sync error help:
• Authorization codes are single-use, get a fresh one with "forecastpro auth-url"
• Access tokens expire, re-run with --code instead of --token
• Check FORECASTPRO_TINK_CLIENT_ID and FORECASTPRO_TINK_CLIENT_SECRET`

	case apperrors.CategoryStorage:
		return `Storage error help:
• Check that the database file is writable
• Create the account first with "forecastpro account create"`

	default:
		return ""
	}
}
