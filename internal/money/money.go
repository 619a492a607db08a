// Package money provides a fixed-point currency amount value type.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
)

// Value is an immutable currency amount. Amounts are rounded to two decimal
// places at construction so arithmetic never accumulates floating-point
// drift. Arithmetic between different currencies is rejected.
type Value struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Value from a decimal amount and an ISO currency code.
func New(amount decimal.Decimal, currency string) (Value, error) {
	if currency == "" {
		return Value{}, apperrors.ValidationError(apperrors.CodeMissingField, "currency", currency)
	}
	return Value{amount: amount.Round(2), currency: currency}, nil
}

// NewFromFloat creates a Value from a raw float amount.
func NewFromFloat(amount float64, currency string) (Value, error) {
	return New(decimal.NewFromFloat(amount), currency)
}

// NewFromString creates a Value from a decimal string such as "12.34".
func NewFromString(amount, currency string) (Value, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Value{}, apperrors.ValidationError(apperrors.CodeInvalidAmount, "amount", amount)
	}
	return New(d, currency)
}

// Zero returns a zero Value in the given currency.
func Zero(currency string) Value {
	return Value{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (v Value) Amount() decimal.Decimal {
	return v.amount
}

// Currency returns the currency code.
func (v Value) Currency() string {
	return v.currency
}

// Add returns v + other.
func (v Value) Add(other Value) (Value, error) {
	if err := v.assertSameCurrency(other); err != nil {
		return Value{}, err
	}
	return Value{amount: v.amount.Add(other.amount).Round(2), currency: v.currency}, nil
}

// Sub returns v - other.
func (v Value) Sub(other Value) (Value, error) {
	if err := v.assertSameCurrency(other); err != nil {
		return Value{}, err
	}
	return Value{amount: v.amount.Sub(other.amount).Round(2), currency: v.currency}, nil
}

// Mul returns v scaled by factor.
func (v Value) Mul(factor decimal.Decimal) Value {
	return Value{amount: v.amount.Mul(factor).Round(2), currency: v.currency}
}

// Abs returns the absolute value.
func (v Value) Abs() Value {
	return Value{amount: v.amount.Abs(), currency: v.currency}
}

// Neg returns the negated value.
func (v Value) Neg() Value {
	return Value{amount: v.amount.Neg(), currency: v.currency}
}

// IsZero reports whether the amount is zero.
func (v Value) IsZero() bool {
	return v.amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (v Value) IsNegative() bool {
	return v.amount.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (v Value) IsPositive() bool {
	return v.amount.IsPositive()
}

// Equal reports whether two values have the same amount and currency.
func (v Value) Equal(other Value) bool {
	return v.currency == other.currency && v.amount.Equal(other.amount)
}

// String returns the amount followed by the currency code, e.g. "45.20 EUR".
func (v Value) String() string {
	return fmt.Sprintf("%s %s", v.amount.StringFixed(2), v.currency)
}

func (v Value) assertSameCurrency(other Value) error {
	if v.currency != other.currency {
		return apperrors.ValidationError(apperrors.CodeCurrencyMismatch, "currency",
			fmt.Sprintf("%s vs %s", v.currency, other.currency))
	}
	return nil
}
