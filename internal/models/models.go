// Package models defines the canonical data shapes shared by both ingestion
// paths: the CSV statement parser and the Tink open-banking feed.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	// TransactionTypeDebit represents money leaving the account.
	TransactionTypeDebit TransactionType = "DEBIT"
	// TransactionTypeCredit represents money entering the account.
	TransactionTypeCredit TransactionType = "CREDIT"
)

// String returns the string representation of TransactionType.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// TypeForAmount derives the transaction type from a signed amount.
// Zero amounts have no type; callers must reject them before this point.
func TypeForAmount(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TransactionTypeDebit
	}
	return TransactionTypeCredit
}

// PaymentMethod is the heuristically extracted payment channel of a
// statement line. The empty value means no method could be derived.
type PaymentMethod string

const (
	PaymentMethodCarte       PaymentMethod = "carte"
	PaymentMethodVirement    PaymentMethod = "virement"
	PaymentMethodPrelevement PaymentMethod = "prelevement"
	PaymentMethodRetrait     PaymentMethod = "retrait"
)

// IsValid checks if the payment method is one of the known channels or empty.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case "", PaymentMethodCarte, PaymentMethodVirement, PaymentMethodPrelevement, PaymentMethodRetrait:
		return true
	}
	return false
}

// Transaction is the canonical transaction produced by every ingestion path.
//
// The amount is signed: negative for debits, positive for credits. Type is
// stored explicitly and must always agree with the sign of Amount; both
// ingestion paths normalize to this one representation.
type Transaction struct {
	ID            int64           `json:"id"`
	AccountID     string          `json:"accountId"`
	Date          time.Time       `json:"date"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Merchant      string          `json:"merchant,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Hash          string          `json:"hash"`
	ExternalID    string          `json:"externalId,omitempty"`
	BatchID       string          `json:"batchId,omitempty"`
}

// Validate checks the canonical transaction invariants.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Label) == "" {
		return fmt.Errorf("transaction label cannot be empty")
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if t.Amount.IsZero() {
		return fmt.Errorf("transaction amount cannot be zero")
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	if t.Amount.IsNegative() && t.Type != TransactionTypeDebit {
		return fmt.Errorf("negative amount %s must carry type DEBIT, got %s", t.Amount, t.Type)
	}
	if t.Amount.IsPositive() && t.Type != TransactionTypeCredit {
		return fmt.Errorf("positive amount %s must carry type CREDIT, got %s", t.Amount, t.Type)
	}

	if len(t.Hash) != 32 {
		return fmt.Errorf("transaction hash must be 32 hex characters, got %d", len(t.Hash))
	}

	if !t.PaymentMethod.IsValid() {
		return fmt.Errorf("invalid payment method: %s", t.PaymentMethod)
	}

	return nil
}

// IsDebit returns true if the transaction is a debit.
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// IsCredit returns true if the transaction is a credit.
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// AbsoluteAmount returns the unsigned amount.
func (t *Transaction) AbsoluteAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// String returns a string representation of the Transaction.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Label: %q, Amount: %s, Type: %s}",
		t.Date.Format("2006-01-02"), t.Label, t.Amount.StringFixed(2), t.Type)
}

// Account is the unit against which balances are computed. Balance must
// always equal InitialBalance plus the signed sum of stored transactions.
type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	ExternalID     string          `json:"externalId,omitempty"`
	IBAN           string          `json:"iban,omitempty"`
}

// Validate performs basic validation on the Account.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("account ID cannot be empty")
	}
	if strings.TrimSpace(a.Currency) == "" {
		return fmt.Errorf("account currency cannot be empty")
	}
	return nil
}

// BatchStatus is the lifecycle state of an import batch.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// IsValid checks if the batch status is valid.
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusProcessing, BatchStatusCompleted, BatchStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transition.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed
}

// ImportSource identifies which ingestion path created a batch.
type ImportSource string

const (
	SourceStatement ImportSource = "statement"
	SourceTink      ImportSource = "tink"
	SourceManual    ImportSource = "manual"
)

// ImportBatch groups the transactions created by one import operation.
//
// Lifecycle: created in processing, transitions once to completed (even with
// partial row errors) or failed (only on unrecoverable I/O failure), and is
// never reopened. Deleting a batch detaches its transactions; only deleting
// the account removes them.
type ImportBatch struct {
	ID           string       `json:"id"`
	AccountID    string       `json:"accountId"`
	Source       ImportSource `json:"source"`
	Status       BatchStatus  `json:"status"`
	RowsImported int          `json:"rowsImported"`
	RowsSkipped  int          `json:"rowsSkipped"`
	Errors       []string     `json:"errors,omitempty"`
	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   time.Time    `json:"finishedAt,omitempty"`
}

// Transition moves the batch to a terminal status. Moving out of a terminal
// status is rejected.
func (b *ImportBatch) Transition(to BatchStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("invalid batch status: %s", to)
	}
	if b.Status.IsTerminal() {
		return fmt.Errorf("batch %s is already %s and cannot move to %s", b.ID, b.Status, to)
	}
	b.Status = to
	if to.IsTerminal() {
		b.FinishedAt = time.Now()
	}
	return nil
}

// ImportResult is the contract returned to callers after an import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	BatchID  string   `json:"batchId"`
}

// MonthlyStats aggregates one calendar month of stored transactions.
type MonthlyStats struct {
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	Savings     decimal.Decimal `json:"savings"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
}
