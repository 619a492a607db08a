package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
)

// MemoryStore is an in-memory Store implementation. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[string]*models.Account
	txs      []*models.Transaction
	batches  map[string]*models.ImportBatch
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		accounts: make(map[string]*models.Account),
		batches:  make(map[string]*models.ImportBatch),
	}
}

// Transactions implements Store.
func (s *MemoryStore) Transactions() TransactionStore { return (*memoryTransactions)(s) }

// Accounts implements Store.
func (s *MemoryStore) Accounts() AccountStore { return (*memoryAccounts)(s) }

// Batches implements Store.
func (s *MemoryStore) Batches() BatchStore { return (*memoryBatches)(s) }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

type memoryTransactions MemoryStore

func (s *memoryTransactions) Insert(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.txs {
		if existing.AccountID == tx.AccountID && existing.Hash == tx.Hash {
			return apperrors.DuplicateError(tx.Hash)
		}
	}

	stored := *tx
	stored.ID = s.nextID
	s.nextID++
	s.txs = append(s.txs, &stored)
	tx.ID = stored.ID
	return nil
}

func (s *memoryTransactions) FindByHash(_ context.Context, accountID, hash string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txs {
		if tx.AccountID == accountID && tx.Hash == hash {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryTransactions) ListByAccount(_ context.Context, accountID string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Transaction
	for _, tx := range s.txs {
		if tx.AccountID == accountID {
			copied := *tx
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (s *memoryTransactions) ListByMonth(ctx context.Context, accountID string, year int, month time.Month) ([]*models.Transaction, error) {
	all, err := s.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var result []*models.Transaction
	for _, tx := range all {
		if !tx.Date.Before(start) && tx.Date.Before(end) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (s *memoryTransactions) DeleteByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.txs[:0]
	for _, tx := range s.txs {
		if tx.AccountID != accountID {
			kept = append(kept, tx)
		}
	}
	s.txs = kept
	return nil
}

func (s *memoryTransactions) DetachBatch(_ context.Context, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.BatchID == batchID {
			tx.BatchID = ""
		}
	}
	return nil
}

type memoryAccounts MemoryStore

func (s *memoryAccounts) Create(_ context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return apperrors.ValidationError(apperrors.CodeInvalidConfig, "account", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "create_account", nil).
			WithContext("account_id", account.ID)
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *memoryAccounts) Get(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.StorageError(apperrors.CodeRecordNotFound, "get_account", nil).
			WithContext("account_id", id)
	}
	copied := *account
	return &copied, nil
}

func (s *memoryAccounts) UpdateBalances(_ context.Context, id string, initial, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return apperrors.StorageError(apperrors.CodeRecordNotFound, "update_balances", nil).
			WithContext("account_id", id)
	}
	account.InitialBalance = initial
	account.Balance = balance
	return nil
}

func (s *memoryAccounts) Delete(ctx context.Context, id string) error {
	// Account owns its transactions: cascade first.
	if err := (*memoryTransactions)(s).DeleteByAccount(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

type memoryBatches MemoryStore

func (s *memoryBatches) Create(_ context.Context, batch *models.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *batch
	s.batches[batch.ID] = &copied
	return nil
}

func (s *memoryBatches) Update(_ context.Context, batch *models.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[batch.ID]; !ok {
		return apperrors.StorageError(apperrors.CodeRecordNotFound, "update_batch", nil).
			WithContext("batch_id", batch.ID)
	}
	copied := *batch
	s.batches[batch.ID] = &copied
	return nil
}

func (s *memoryBatches) Get(_ context.Context, id string) (*models.ImportBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	if !ok {
		return nil, apperrors.StorageError(apperrors.CodeRecordNotFound, "get_batch", nil).
			WithContext("batch_id", id)
	}
	copied := *batch
	return &copied, nil
}

func (s *memoryBatches) Delete(ctx context.Context, id string) error {
	if err := (*memoryTransactions)(s).DetachBatch(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
	return nil
}
