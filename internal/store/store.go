// Package store persists accounts, transactions, and import batches.
//
// Two implementations exist: a sqlite-backed store for real runs and an
// in-memory store for tests and ephemeral usage. The import engine only
// depends on the interfaces, wired by the composition root.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
)

// TransactionStore persists canonical transactions.
type TransactionStore interface {
	// Insert stores one transaction and assigns its ID.
	Insert(ctx context.Context, tx *models.Transaction) error
	// FindByHash returns the transaction with the given fingerprint for an
	// account, or nil when none exists.
	FindByHash(ctx context.Context, accountID, hash string) (*models.Transaction, error)
	// ListByAccount returns every transaction of an account, ordered by date.
	ListByAccount(ctx context.Context, accountID string) ([]*models.Transaction, error)
	// ListByMonth returns the transactions of one calendar month, inclusive
	// of the first and last day.
	ListByMonth(ctx context.Context, accountID string, year int, month time.Month) ([]*models.Transaction, error)
	// DeleteByAccount removes all transactions of an account.
	DeleteByAccount(ctx context.Context, accountID string) error
	// DetachBatch clears the batch reference of all transactions in a batch
	// without deleting them.
	DetachBatch(ctx context.Context, batchID string) error
}

// AccountStore persists accounts.
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, id string) (*models.Account, error)
	// UpdateBalances writes the initial balance and derived balance of an
	// account in one statement.
	UpdateBalances(ctx context.Context, id string, initial, balance decimal.Decimal) error
	// Delete removes the account and, through ownership, its transactions.
	Delete(ctx context.Context, id string) error
}

// BatchStore persists import batches.
type BatchStore interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	Update(ctx context.Context, batch *models.ImportBatch) error
	Get(ctx context.Context, id string) (*models.ImportBatch, error)
	// Delete removes a batch after detaching its transactions.
	Delete(ctx context.Context, id string) error
}

// Store bundles the three repositories behind one handle.
type Store interface {
	Transactions() TransactionStore
	Accounts() AccountStore
	Batches() BatchStore
	Close() error
}
