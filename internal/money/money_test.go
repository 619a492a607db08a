package money

import (
	"testing"

	"github.com/shopspring/decimal"

	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
)

func TestNew_RoundsToTwoDecimals(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"no rounding needed", "45.20", "45.20"},
		{"rounds half up", "10.005", "10.01"},
		{"truncates drift", "0.1000000001", "0.10"},
		{"negative amount", "-45.199", "-45.20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("bad test input: %v", err)
			}
			v, err := New(d, "EUR")
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := v.Amount().StringFixed(2); got != tt.want {
				t.Errorf("Amount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(1), "")
	if err == nil {
		t.Fatal("expected error for empty currency")
	}
}

func TestNewFromString_Invalid(t *testing.T) {
	_, err := NewFromString("abc", "EUR")
	if err == nil {
		t.Fatal("expected error for invalid amount string")
	}
	ie, ok := apperrors.AsImportError(err)
	if !ok || ie.Code != apperrors.CodeInvalidAmount {
		t.Errorf("expected invalid_amount code, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	a, _ := NewFromString("100.50", "EUR")
	b, _ := NewFromString("45.20", "EUR")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := sum.Amount().StringFixed(2); got != "145.70" {
		t.Errorf("Add() = %s, want 145.70", got)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if got := diff.Amount().StringFixed(2); got != "55.30" {
		t.Errorf("Sub() = %s, want 55.30", got)
	}

	neg := b.Neg()
	if !neg.IsNegative() {
		t.Error("Neg() should be negative")
	}
	if got := neg.Abs(); !got.Equal(b) {
		t.Errorf("Abs() = %s, want %s", got, b)
	}
}

func TestArithmetic_CurrencyMismatch(t *testing.T) {
	eur, _ := NewFromString("10.00", "EUR")
	usd, _ := NewFromString("10.00", "USD")

	if _, err := eur.Add(usd); err == nil {
		t.Fatal("expected currency mismatch error on Add")
	}
	_, err := eur.Sub(usd)
	if err == nil {
		t.Fatal("expected currency mismatch error on Sub")
	}
	ie, ok := apperrors.AsImportError(err)
	if !ok || ie.Code != apperrors.CodeCurrencyMismatch {
		t.Errorf("expected currency_mismatch code, got %v", err)
	}
}

func TestZeroAndPredicates(t *testing.T) {
	z := Zero("EUR")
	if !z.IsZero() {
		t.Error("Zero() should be zero")
	}
	if z.IsPositive() || z.IsNegative() {
		t.Error("zero is neither positive nor negative")
	}
	if z.String() != "0.00 EUR" {
		t.Errorf("String() = %s, want 0.00 EUR", z.String())
	}
}
