package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() *Transaction {
	return &Transaction{
		AccountID: "acc-1",
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Label:     "LIDL PARIS",
		Amount:    decimal.RequireFromString("-45.20"),
		Type:      TransactionTypeDebit,
		Hash:      strings.Repeat("ab", 16),
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Transaction)
		wantError bool
	}{
		{"valid debit", func(tx *Transaction) {}, false},
		{"valid credit", func(tx *Transaction) {
			tx.Amount = decimal.RequireFromString("1500.00")
			tx.Type = TransactionTypeCredit
		}, false},
		{"empty label", func(tx *Transaction) { tx.Label = "  " }, true},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, true},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, true},
		{"sign disagrees with type", func(tx *Transaction) {
			tx.Type = TransactionTypeCredit
		}, true},
		{"positive amount typed debit", func(tx *Transaction) {
			tx.Amount = decimal.RequireFromString("10.00")
		}, true},
		{"short hash", func(tx *Transaction) { tx.Hash = "abcd" }, true},
		{"unknown payment method", func(tx *Transaction) { tx.PaymentMethod = "cheque" }, true},
		{"known payment method", func(tx *Transaction) { tx.PaymentMethod = PaymentMethodCarte }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(tx)
			err := tx.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestTypeForAmount(t *testing.T) {
	if got := TypeForAmount(decimal.RequireFromString("-1")); got != TransactionTypeDebit {
		t.Errorf("TypeForAmount(-1) = %s, want DEBIT", got)
	}
	if got := TypeForAmount(decimal.RequireFromString("1")); got != TransactionTypeCredit {
		t.Errorf("TypeForAmount(1) = %s, want CREDIT", got)
	}
}

func TestBatchTransition(t *testing.T) {
	b := &ImportBatch{ID: "batch-1", Status: BatchStatusProcessing}

	if err := b.Transition(BatchStatusCompleted); err != nil {
		t.Fatalf("Transition(completed) error = %v", err)
	}
	if b.FinishedAt.IsZero() {
		t.Error("terminal transition should set FinishedAt")
	}

	// Terminal batches are never reopened.
	if err := b.Transition(BatchStatusProcessing); err == nil {
		t.Error("expected error transitioning out of completed")
	}
	if err := b.Transition(BatchStatusFailed); err == nil {
		t.Error("expected error transitioning completed to failed")
	}
}

func TestBatchTransition_Invalid(t *testing.T) {
	b := &ImportBatch{ID: "batch-1", Status: BatchStatusProcessing}
	if err := b.Transition("bogus"); err == nil {
		t.Error("expected error for invalid status")
	}
}
