// Package importer orchestrates batch imports from both ingestion paths.
//
// One import runs start-to-finish as single-threaded, synchronous logic:
// rows are handled in sequence with no intra-batch parallelism. The account
// balance is the one shared mutable resource, so every operation that ends
// in a balance recomputation holds a per-account lock for its duration.
package importer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/balance"
	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/statement"
	"github.com/alex-robert-fr/ForecastPro/internal/store"
	"github.com/alex-robert-fr/ForecastPro/internal/tink"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// Reconciler runs batch imports: it deduplicates canonical transactions
// against the store, tracks batch counters, and keeps the account balance
// consistent with the stored transactions.
type Reconciler struct {
	store       store.Store
	calculator  *balance.Calculator
	hasher      *txhash.Generator
	tokenizer   *statement.Tokenizer
	interpreter *statement.Interpreter
	normalizer  *tink.Normalizer
	logger      logger.Logger

	mu           sync.Mutex
	accountLocks map[string]*sync.Mutex
}

// NewReconciler creates a Reconciler over the given collaborators.
func NewReconciler(
	s store.Store,
	calculator *balance.Calculator,
	hasher *txhash.Generator,
	tokenizer *statement.Tokenizer,
	interpreter *statement.Interpreter,
	normalizer *tink.Normalizer,
	log logger.Logger,
) *Reconciler {
	if log == nil {
		log = logger.Global()
	}
	return &Reconciler{
		store:        s,
		calculator:   calculator,
		hasher:       hasher,
		tokenizer:    tokenizer,
		interpreter:  interpreter,
		normalizer:   normalizer,
		logger:       log.WithComponent("import_reconciler"),
		accountLocks: make(map[string]*sync.Mutex),
	}
}

// lockAccount serializes balance-mutating operations per account.
func (r *Reconciler) lockAccount(accountID string) func() {
	r.mu.Lock()
	l, ok := r.accountLocks[accountID]
	if !ok {
		l = &sync.Mutex{}
		r.accountLocks[accountID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ImportStatement imports raw CSV statement content into an account.
//
// Empty content is a hard failure for the whole batch. Row-scoped parse
// errors and per-row persistence failures are recorded and the loop
// continues. The balance is recomputed unconditionally on completion.
func (r *Reconciler) ImportStatement(ctx context.Context, accountID, raw string) (*models.ImportResult, error) {
	unlock := r.lockAccount(accountID)
	defer unlock()

	batch := r.newBatch(accountID, models.SourceStatement)
	if err := r.store.Batches().Create(ctx, batch); err != nil {
		return nil, err
	}

	if raw == "" {
		err := apperrors.FileError(apperrors.CodeFileEmpty, "statement", nil)
		r.failBatch(ctx, batch, err)
		return nil, err
	}

	rows := r.tokenizer.Tokenize(raw)

	var txs []*models.Transaction
	var rowErrors []string
	for i, row := range rows {
		if i == 0 {
			// Header row.
			continue
		}
		tx, err := r.interpreter.InterpretRow(row, i)
		if err != nil {
			rowErrors = append(rowErrors, err.Error())
			continue
		}
		if tx == nil {
			continue
		}
		txs = append(txs, tx)
	}

	result := r.runBatch(ctx, batch, txs, rowErrors)
	return result, nil
}

// ImportExternalFeed imports transactions fetched from the external bank
// feed. When the feed reports an authoritative balance, the account's
// initial balance is back-solved afterwards so the derived balance matches
// the bank exactly.
func (r *Reconciler) ImportExternalFeed(ctx context.Context, accountID string, feed []tink.APITransaction, reportedBalance *decimal.Decimal) (*models.ImportResult, error) {
	unlock := r.lockAccount(accountID)
	defer unlock()

	batch := r.newBatch(accountID, models.SourceTink)
	if err := r.store.Batches().Create(ctx, batch); err != nil {
		return nil, err
	}

	var txs []*models.Transaction
	var rowErrors []string
	for _, raw := range feed {
		tx, err := r.normalizer.NormalizeTransaction(raw)
		if err != nil {
			rowErrors = append(rowErrors, err.Error())
			continue
		}
		if tx == nil {
			continue
		}
		txs = append(txs, tx)
	}

	result := r.runBatch(ctx, batch, txs, rowErrors)

	if reportedBalance != nil {
		// Ground truth from the bank: a failure here is logged, never
		// surfaced, and already-imported rows stay valid.
		if err := r.backSolveInitialBalance(ctx, accountID, *reportedBalance); err != nil {
			r.logger.WithError(err).WithField("account_id", accountID).
				Error("initial balance back-solve failed")
		}
	}

	return result, nil
}

// AddManual stores a manually entered transaction and recomputes the
// balance. Manual fingerprints carry a random component, so two identical
// entries are stored as two transactions; the duplicate check only guards
// against fingerprint collisions.
func (r *Reconciler) AddManual(ctx context.Context, accountID string, date time.Time, label string, amount decimal.Decimal) (*models.Transaction, error) {
	unlock := r.lockAccount(accountID)
	defer unlock()

	if amount.IsZero() {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidAmount, "amount", "0")
	}

	label = statement.CleanLabel(label)
	merchant, method := statement.ExtractMerchant(label)

	tx := &models.Transaction{
		AccountID:     accountID,
		Date:          date,
		Label:         label,
		Amount:        amount,
		Type:          models.TypeForAmount(amount),
		Merchant:      merchant,
		PaymentMethod: method,
		Hash:          r.hasher.Manual(date, label, amount),
	}
	if err := tx.Validate(); err != nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "transaction", err.Error())
	}

	existing, err := r.store.Transactions().FindByHash(ctx, accountID, tx.Hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.DuplicateError(tx.Hash)
	}

	if err := r.store.Transactions().Insert(ctx, tx); err != nil {
		return nil, err
	}

	if _, err := r.calculator.RecalculateAndPersist(ctx, accountID); err != nil {
		return nil, err
	}
	return tx, nil
}

// ResetAccount deletes every transaction of an account and zeroes its
// balances.
func (r *Reconciler) ResetAccount(ctx context.Context, accountID string) error {
	unlock := r.lockAccount(accountID)
	defer unlock()

	if err := r.store.Transactions().DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := r.store.Accounts().UpdateBalances(ctx, accountID, decimal.Zero, decimal.Zero); err != nil {
		return err
	}
	_, err := r.calculator.RecalculateAndPersist(ctx, accountID)
	return err
}

func (r *Reconciler) newBatch(accountID string, source models.ImportSource) *models.ImportBatch {
	return &models.ImportBatch{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Source:    source,
		Status:    models.BatchStatusProcessing,
		StartedAt: time.Now(),
	}
}

// runBatch deduplicates and persists canonical transactions, then closes
// the batch and recomputes the balance. Row errors never abort the loop;
// the batch completes even when every row failed.
func (r *Reconciler) runBatch(ctx context.Context, batch *models.ImportBatch, txs []*models.Transaction, rowErrors []string) *models.ImportResult {
	imported, skipped := 0, 0

	for _, tx := range txs {
		existing, err := r.store.Transactions().FindByHash(ctx, batch.AccountID, tx.Hash)
		if err != nil {
			rowErrors = append(rowErrors, err.Error())
			continue
		}
		if existing != nil {
			skipped++
			continue
		}

		tx.AccountID = batch.AccountID
		tx.BatchID = batch.ID
		if err := r.store.Transactions().Insert(ctx, tx); err != nil {
			if apperrors.IsDuplicate(err) {
				skipped++
			} else {
				rowErrors = append(rowErrors, err.Error())
			}
			continue
		}
		imported++
	}

	if _, err := r.calculator.RecalculateAndPersist(ctx, batch.AccountID); err != nil {
		r.logger.WithError(err).WithField("account_id", batch.AccountID).
			Error("balance recomputation after import failed")
		rowErrors = append(rowErrors, err.Error())
	}

	batch.RowsImported = imported
	batch.RowsSkipped = skipped
	batch.Errors = rowErrors
	if err := batch.Transition(models.BatchStatusCompleted); err != nil {
		r.logger.WithError(err).Error("batch transition failed")
	}
	if err := r.store.Batches().Update(ctx, batch); err != nil {
		r.logger.WithError(err).WithField("batch_id", batch.ID).Error("batch update failed")
	}

	r.logger.WithFields(logger.Fields{
		"batch_id": batch.ID,
		"source":   batch.Source,
		"imported": imported,
		"skipped":  skipped,
		"errors":   len(rowErrors),
	}).Info("import batch completed")

	return &models.ImportResult{
		Imported: imported,
		Skipped:  skipped,
		Errors:   rowErrors,
		BatchID:  batch.ID,
	}
}

func (r *Reconciler) failBatch(ctx context.Context, batch *models.ImportBatch, cause error) {
	batch.Errors = append(batch.Errors, cause.Error())
	if err := batch.Transition(models.BatchStatusFailed); err != nil {
		r.logger.WithError(err).Error("batch transition failed")
	}
	if err := r.store.Batches().Update(ctx, batch); err != nil {
		r.logger.WithError(err).WithField("batch_id", batch.ID).Error("batch update failed")
	}
}

// backSolveInitialBalance solves for the initial balance that makes the
// derived balance equal the bank-reported one:
//
//	newInitial = reported − Σcredits + Σ|debits|
//
// computed over a fresh sum of all stored transactions of the account, not
// just the current batch. The reported balance is written directly since it
// is ground truth, not a derived value.
func (r *Reconciler) backSolveInitialBalance(ctx context.Context, accountID string, reported decimal.Decimal) error {
	txs, err := r.store.Transactions().ListByAccount(ctx, accountID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryBalance, apperrors.CodeBackSolveFailed,
			"listing transactions for back-solve failed")
	}

	signed := decimal.Zero
	for _, tx := range txs {
		signed = signed.Add(tx.Amount)
	}

	newInitial := reported.Sub(signed)
	if err := r.store.Accounts().UpdateBalances(ctx, accountID, newInitial, reported); err != nil {
		return apperrors.Wrap(err, apperrors.CategoryBalance, apperrors.CodeBackSolveFailed,
			"persisting back-solved balance failed")
	}

	r.logger.WithFields(logger.Fields{
		"account_id":      accountID,
		"initial_balance": newInitial.StringFixed(2),
		"balance":         reported.StringFixed(2),
	}).Info("back-solved initial balance from bank-reported balance")

	return nil
}
