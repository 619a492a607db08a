// Package balance derives account balances from stored transactions.
//
// The central invariant of the whole system lives here: after every
// recomputation, balance == initialBalance + Σcredits − Σ|debits|.
package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/money"
	"github.com/alex-robert-fr/ForecastPro/internal/store"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// Calculator computes and persists account balances.
type Calculator struct {
	accounts     store.AccountStore
	transactions store.TransactionStore
	logger       logger.Logger
}

// NewCalculator creates a Calculator over the given stores.
func NewCalculator(accounts store.AccountStore, transactions store.TransactionStore, log logger.Logger) *Calculator {
	if log == nil {
		log = logger.Global()
	}
	return &Calculator{
		accounts:     accounts,
		transactions: transactions,
		logger:       log.WithComponent("balance_calculator"),
	}
}

// Calculate derives the current balance of an account from its initial
// balance and the signed sum of its stored transactions, in the account's
// currency. When the transaction sum cannot be computed the result collapses
// to the initial balance rather than an invalid value.
func (c *Calculator) Calculate(ctx context.Context, accountID string) (money.Value, error) {
	account, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return money.Value{}, err
	}

	initial, err := money.New(account.InitialBalance, account.Currency)
	if err != nil {
		return money.Value{}, err
	}

	txs, err := c.transactions.ListByAccount(ctx, accountID)
	if err != nil {
		c.logger.WithError(err).WithField("account_id", accountID).
			Warn("transaction sum unavailable, falling back to initial balance")
		return initial, nil
	}

	sum, err := money.New(signedSum(txs), account.Currency)
	if err != nil {
		return money.Value{}, err
	}
	return initial.Add(sum)
}

// RecalculateAndPersist computes the balance and writes it back, returning
// the written value. Callers invoke it after every mutation that adds,
// edits, or removes a transaction, or changes the initial balance.
func (c *Calculator) RecalculateAndPersist(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	value, err := c.Calculate(ctx, accountID)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(err, apperrors.CategoryBalance, apperrors.CodeRecomputeFailed,
			"balance recomputation failed").WithContext("account_id", accountID)
	}
	balance := value.Amount()

	if err := c.accounts.UpdateBalances(ctx, accountID, account.InitialBalance, balance); err != nil {
		return decimal.Zero, err
	}

	c.logger.WithFields(logger.Fields{
		"account_id": accountID,
		"balance":    value.String(),
	}).Debug("recalculated account balance")

	return balance, nil
}

// MonthlyStats sums one calendar month of transactions into income,
// expenses, savings, and a savings rate. The rate is zero when income is
// zero and never negative.
func (c *Calculator) MonthlyStats(ctx context.Context, accountID string, year int, month time.Month) (*models.MonthlyStats, error) {
	txs, err := c.transactions.ListByMonth(ctx, accountID, year, month)
	if err != nil {
		return nil, err
	}

	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range txs {
		if tx.IsCredit() {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.AbsoluteAmount())
		}
	}

	savings := income.Sub(expenses)

	rate := decimal.Zero
	if income.IsPositive() {
		rate = savings.Div(income).Mul(hundred).Round(2)
		if rate.IsNegative() {
			rate = decimal.Zero
		}
	}

	return &models.MonthlyStats{
		Income:      income,
		Expenses:    expenses,
		Savings:     savings,
		SavingsRate: rate,
	}, nil
}

// signedSum adds credits and subtracts debit magnitudes, which is the same
// as summing the signed amounts directly.
func signedSum(txs []*models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}
