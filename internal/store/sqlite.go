package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	currency        TEXT NOT NULL,
	initial_balance TEXT NOT NULL DEFAULT '0',
	balance         TEXT NOT NULL DEFAULT '0',
	external_id     TEXT NOT NULL DEFAULT '',
	iban            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS import_batches (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	source        TEXT NOT NULL,
	status        TEXT NOT NULL,
	rows_imported INTEGER NOT NULL DEFAULT 0,
	rows_skipped  INTEGER NOT NULL DEFAULT 0,
	errors        TEXT NOT NULL DEFAULT '[]',
	started_at    TEXT NOT NULL,
	finished_at   TEXT
);

CREATE TABLE IF NOT EXISTS transactions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id     TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	date           TEXT NOT NULL,
	label          TEXT NOT NULL,
	amount         TEXT NOT NULL,
	type           TEXT NOT NULL,
	merchant       TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	hash           TEXT NOT NULL,
	external_id    TEXT NOT NULL DEFAULT '',
	batch_id       TEXT REFERENCES import_batches(id) ON DELETE SET NULL,
	UNIQUE (account_id, hash)
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date);
`

const sqliteDateLayout = "2006-01-02"

// SQLiteStore is a sqlite-backed Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed bootstraps) a sqlite database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "open_database", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "enable_foreign_keys", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "bootstrap_schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Transactions implements Store.
func (s *SQLiteStore) Transactions() TransactionStore { return &sqliteTransactions{db: s.db} }

// Accounts implements Store.
func (s *SQLiteStore) Accounts() AccountStore { return &sqliteAccounts{db: s.db} }

// Batches implements Store.
func (s *SQLiteStore) Batches() BatchStore { return &sqliteBatches{db: s.db} }

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type sqliteTransactions struct {
	db *sql.DB
}

func (s *sqliteTransactions) Insert(ctx context.Context, tx *models.Transaction) error {
	batchID := sql.NullString{String: tx.BatchID, Valid: tx.BatchID != ""}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(account_id, date, label, amount, type, merchant, payment_method, hash, external_id, batch_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.AccountID, tx.Date.Format(sqliteDateLayout), tx.Label, tx.Amount.String(),
		string(tx.Type), tx.Merchant, string(tx.PaymentMethod), tx.Hash, tx.ExternalID, batchID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.DuplicateError(tx.Hash)
		}
		return apperrors.StorageError(apperrors.CodeQueryFailed, "insert_transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "insert_transaction", err)
	}
	tx.ID = id
	return nil
}

const transactionColumns = `id, account_id, date, label, amount, type, merchant, payment_method, hash, external_id, COALESCE(batch_id, '')`

func (s *sqliteTransactions) FindByHash(ctx context.Context, accountID, hash string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = ? AND hash = ?`,
		accountID, hash)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "find_by_hash", err)
	}
	return tx, nil
}

func (s *sqliteTransactions) ListByAccount(ctx context.Context, accountID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = ? ORDER BY date, id`,
		accountID)
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "list_by_account", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *sqliteTransactions) ListByMonth(ctx context.Context, accountID string, year int, month time.Month) ([]*models.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND date >= ? AND date < ? ORDER BY date, id`,
		accountID, start.Format(sqliteDateLayout), end.Format(sqliteDateLayout))
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "list_by_month", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *sqliteTransactions) DeleteByAccount(ctx context.Context, accountID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, accountID); err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "delete_by_account", err)
	}
	return nil
}

func (s *sqliteTransactions) DetachBatch(ctx context.Context, batchID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE transactions SET batch_id = NULL WHERE batch_id = ?`, batchID); err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "detach_batch", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx            models.Transaction
		date          string
		amount        string
		txType        string
		paymentMethod string
	)

	err := row.Scan(&tx.ID, &tx.AccountID, &date, &tx.Label, &amount, &txType,
		&tx.Merchant, &paymentMethod, &tx.Hash, &tx.ExternalID, &tx.BatchID)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = time.Parse(sqliteDateLayout, date); err != nil {
		return nil, err
	}
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(txType)
	tx.PaymentMethod = models.PaymentMethod(paymentMethod)
	return &tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var result []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "scan_transaction", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "iterate_transactions", err)
	}
	return result, nil
}

type sqliteAccounts struct {
	db *sql.DB
}

func (s *sqliteAccounts) Create(ctx context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return apperrors.ValidationError(apperrors.CodeInvalidConfig, "account", err.Error())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, currency, initial_balance, balance, external_id, iban)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Currency,
		account.InitialBalance.String(), account.Balance.String(),
		account.ExternalID, account.IBAN)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "create_account", err)
	}
	return nil
}

func (s *sqliteAccounts) Get(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, currency, initial_balance, balance, external_id, iban
		FROM accounts WHERE id = ?`, id)

	var (
		account models.Account
		initial string
		balance string
	)
	err := row.Scan(&account.ID, &account.Name, &account.Currency, &initial, &balance,
		&account.ExternalID, &account.IBAN)
	if err == sql.ErrNoRows {
		return nil, apperrors.StorageError(apperrors.CodeRecordNotFound, "get_account", nil).
			WithContext("account_id", id)
	}
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_account", err)
	}

	if account.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_account", err)
	}
	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_account", err)
	}
	return &account, nil
}

func (s *sqliteAccounts) UpdateBalances(ctx context.Context, id string, initial, balance decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET initial_balance = ?, balance = ? WHERE id = ?`,
		initial.String(), balance.String(), id)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "update_balances", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "update_balances", err)
	}
	if affected == 0 {
		return apperrors.StorageError(apperrors.CodeRecordNotFound, "update_balances", nil).
			WithContext("account_id", id)
	}
	return nil
}

func (s *sqliteAccounts) Delete(ctx context.Context, id string) error {
	// Transactions cascade through the foreign key.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "delete_account", err)
	}
	return nil
}

type sqliteBatches struct {
	db *sql.DB
}

func (s *sqliteBatches) Create(ctx context.Context, batch *models.ImportBatch) error {
	errs, err := json.Marshal(batch.Errors)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "create_batch", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_batches (id, account_id, source, status, rows_imported, rows_skipped, errors, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.AccountID, string(batch.Source), string(batch.Status),
		batch.RowsImported, batch.RowsSkipped, string(errs),
		batch.StartedAt.UTC().Format(time.RFC3339), nullableTime(batch.FinishedAt))
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "create_batch", err)
	}
	return nil
}

func (s *sqliteBatches) Update(ctx context.Context, batch *models.ImportBatch) error {
	errs, err := json.Marshal(batch.Errors)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "update_batch", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE import_batches
		SET status = ?, rows_imported = ?, rows_skipped = ?, errors = ?, finished_at = ?
		WHERE id = ?`,
		string(batch.Status), batch.RowsImported, batch.RowsSkipped, string(errs),
		nullableTime(batch.FinishedAt), batch.ID)
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "update_batch", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "update_batch", err)
	}
	if affected == 0 {
		return apperrors.StorageError(apperrors.CodeRecordNotFound, "update_batch", nil).
			WithContext("batch_id", batch.ID)
	}
	return nil
}

func (s *sqliteBatches) Get(ctx context.Context, id string) (*models.ImportBatch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, source, status, rows_imported, rows_skipped, errors, started_at, COALESCE(finished_at, '')
		FROM import_batches WHERE id = ?`, id)

	var (
		batch      models.ImportBatch
		source     string
		status     string
		errs       string
		startedAt  string
		finishedAt string
	)
	err := row.Scan(&batch.ID, &batch.AccountID, &source, &status,
		&batch.RowsImported, &batch.RowsSkipped, &errs, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.StorageError(apperrors.CodeRecordNotFound, "get_batch", nil).
			WithContext("batch_id", id)
	}
	if err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_batch", err)
	}

	batch.Source = models.ImportSource(source)
	batch.Status = models.BatchStatus(status)
	if err := json.Unmarshal([]byte(errs), &batch.Errors); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_batch", err)
	}
	if batch.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_batch", err)
	}
	if finishedAt != "" {
		if batch.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
			return nil, apperrors.StorageError(apperrors.CodeQueryFailed, "get_batch", err)
		}
	}
	return &batch, nil
}

func (s *sqliteBatches) Delete(ctx context.Context, id string) error {
	// The transactions of the batch survive; the foreign key sets their
	// batch reference to NULL.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM import_batches WHERE id = ?`, id); err != nil {
		return apperrors.StorageError(apperrors.CodeQueryFailed, "delete_batch", err)
	}
	return nil
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
