// Package errors defines the error taxonomy for the import engine.
//
// Every failure is classified by a category (which collaborator failed) and a
// code (what specifically went wrong). Row-scoped errors are collected by the
// import loop; operation-scoped errors abort the current import.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem they originate from.
type ErrorCategory string

const (
	CategoryFile       ErrorCategory = "file"
	CategoryParse      ErrorCategory = "parse"
	CategoryValidation ErrorCategory = "validation"
	CategorySync       ErrorCategory = "sync"
	CategoryStorage    ErrorCategory = "storage"
	CategoryBalance    ErrorCategory = "balance"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound ErrorCode = "file_not_found"
	CodeFileEmpty    ErrorCode = "file_empty"
	CodeFileUnread   ErrorCode = "file_unreadable"

	// Parse errors
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeMalformedRow  ErrorCode = "malformed_row"

	// Validation errors
	CodeCurrencyMismatch ErrorCode = "currency_mismatch"
	CodeMissingField     ErrorCode = "missing_field"
	CodeInvalidConfig    ErrorCode = "invalid_config"

	// Sync errors (external bank API)
	CodeTokenExchange ErrorCode = "token_exchange_failed"
	CodeAPIRequest    ErrorCode = "api_request_failed"
	CodeAPIResponse   ErrorCode = "api_response_invalid"

	// Storage errors
	CodeDuplicateTransaction ErrorCode = "duplicate_transaction"
	CodeRecordNotFound       ErrorCode = "record_not_found"
	CodeQueryFailed          ErrorCode = "query_failed"

	// Balance errors
	CodeBackSolveFailed ErrorCode = "back_solve_failed"
	CodeRecomputeFailed ErrorCode = "recompute_failed"
)

// Context carries additional key-value information about an error.
type Context map[string]interface{}

// ImportError is the base error type for all engine errors.
type ImportError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key-value pair to the error.
func (e *ImportError) WithContext(key string, value interface{}) *ImportError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ImportError.
func New(category ErrorCategory, code ErrorCode, message string) *ImportError {
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ImportError {
	if err == nil {
		return nil
	}
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// FileError reports a problem reading an import source file. Always fatal
// for the whole batch.
func FileError(code ErrorCode, path string, err error) *ImportError {
	var message string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
	case CodeFileEmpty:
		message = fmt.Sprintf("file is empty: %s", path)
	default:
		message = fmt.Sprintf("cannot read file: %s", path)
	}

	result := New(CategoryFile, code, message)
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	}
	return result.WithContext("file_path", path)
}

// RowError reports a row-scoped parse failure. The import loop records it
// and continues with the next row.
func RowError(code ErrorCode, row int, value string, err error) *ImportError {
	var message string
	switch code {
	case CodeInvalidDate:
		message = fmt.Sprintf("row %d: invalid date %q", row, value)
	case CodeInvalidAmount:
		message = fmt.Sprintf("row %d: invalid amount %q", row, value)
	default:
		message = fmt.Sprintf("row %d: malformed row", row)
	}

	result := New(CategoryParse, code, message)
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	}
	return result.
		WithContext("row", row).
		WithContext("value", value)
}

// SyncError reports a failure talking to the external bank API, carrying the
// HTTP status and response body when available.
func SyncError(code ErrorCode, endpoint string, status int, body string, err error) *ImportError {
	message := fmt.Sprintf("bank API request to %s failed", endpoint)
	if status > 0 {
		message = fmt.Sprintf("bank API request to %s failed with status %d", endpoint, status)
	}

	result := New(CategorySync, code, message)
	if err != nil {
		result = Wrap(err, CategorySync, code, message)
	}
	result = result.WithContext("endpoint", endpoint)
	if status > 0 {
		result = result.WithContext("status", status)
	}
	if body != "" {
		result = result.WithContext("body", body)
	}
	return result
}

// StorageError reports a persistence failure for one record or query.
func StorageError(code ErrorCode, operation string, err error) *ImportError {
	message := fmt.Sprintf("storage operation %s failed", operation)
	result := New(CategoryStorage, code, message)
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	}
	return result.WithContext("operation", operation)
}

// DuplicateError reports a fingerprint collision on a manual entry so
// callers can present a conflict rather than a generic failure.
func DuplicateError(hash string) *ImportError {
	return New(CategoryStorage, CodeDuplicateTransaction,
		fmt.Sprintf("transaction with fingerprint %s already exists", hash)).
		WithContext("hash", hash)
}

// ValidationError reports an invalid value for a named field.
func ValidationError(code ErrorCode, field string, value interface{}) *ImportError {
	return New(CategoryValidation, code,
		fmt.Sprintf("invalid value for %s: %v", field, value)).
		WithContext("field", field).
		WithContext("value", value)
}

// IsDuplicate reports whether err is a duplicate-transaction error.
func IsDuplicate(err error) bool {
	ie, ok := AsImportError(err)
	return ok && ie.Code == CodeDuplicateTransaction
}

// AsImportError extracts an ImportError from an error chain.
func AsImportError(err error) (*ImportError, bool) {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr, true
	}
	return nil, false
}

// HasCategory reports whether err belongs to the given category.
func HasCategory(err error, category ErrorCategory) bool {
	ie, ok := AsImportError(err)
	return ok && ie.Category == category
}
