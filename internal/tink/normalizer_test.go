package tink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

func apiAmount(unscaled, scale, currency string) APIAmount {
	var a APIAmount
	a.Value.UnscaledValue = unscaled
	a.Value.Scale = scale
	a.CurrencyCode = currency
	return a
}

func bookedTransaction(id, unscaled, scale, description, date string) APITransaction {
	var tx APITransaction
	tx.ID = id
	tx.Amount = apiAmount(unscaled, scale, "EUR")
	tx.Descriptions.Display = description
	tx.Dates.Booked = date
	tx.Status = StatusBooked
	return tx
}

func TestDecodeAmount(t *testing.T) {
	tests := []struct {
		name     string
		unscaled string
		scale    string
		want     string
		wantErr  bool
	}{
		{"two decimal places", "-4520", "2", "-45.20", false},
		{"zero scale", "1500", "0", "1500.00", false},
		{"three decimal places", "12345", "3", "12.35", false},
		{"bad unscaled", "abc", "2", "", true},
		{"bad scale", "100", "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAmount(apiAmount(tt.unscaled, tt.scale, "EUR"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Round(2).StringFixed(2))
		})
	}
}

func TestNormalizeTransaction(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())

	tx, err := n.NormalizeTransaction(bookedTransaction("tx-1", "-4520", "2", "PAIEMENT PAR CARTE X4587 LIDL PARIS 01/03", "2024-03-01"))
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, "-45.20", tx.Amount.StringFixed(2))
	assert.Equal(t, models.TransactionTypeDebit, tx.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "tx-1", tx.ExternalID)
	assert.Equal(t, models.PaymentMethodCarte, tx.PaymentMethod)
	assert.Equal(t, "LIDL PARIS", tx.Merchant)
	assert.Len(t, tx.Hash, 32)
}

func TestNormalizeTransaction_SignConvention(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())

	credit, err := n.NormalizeTransaction(bookedTransaction("tx-2", "150000", "2", "SALAIRE MARS", "2024-03-28"))
	require.NoError(t, err)
	assert.Equal(t, "1500.00", credit.Amount.StringFixed(2))
	assert.Equal(t, models.TransactionTypeCredit, credit.Type)
	assert.NoError(t, credit.Validate())
}

func TestNormalizeTransaction_Deterministic(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())
	raw := bookedTransaction("tx-3", "-1000", "2", "CAFE DE LA GARE", "2024-03-05")

	a, err := n.NormalizeTransaction(raw)
	require.NoError(t, err)
	b, err := n.NormalizeTransaction(raw)
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash, "re-normalizing the same feed transaction must yield the same hash")
}

func TestNormalizeTransaction_Skips(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())

	pending := bookedTransaction("tx-4", "-1000", "2", "EN COURS", "2024-03-05")
	pending.Status = "PENDING"
	tx, err := n.NormalizeTransaction(pending)
	require.NoError(t, err)
	assert.Nil(t, tx, "pending transactions are not imported")

	zero := bookedTransaction("tx-5", "0", "2", "RIEN", "2024-03-05")
	tx, err = n.NormalizeTransaction(zero)
	require.NoError(t, err)
	assert.Nil(t, tx, "zero-amount transactions are dropped")
}

func TestNormalizeTransaction_Errors(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())

	badAmount := bookedTransaction("tx-6", "oops", "2", "X", "2024-03-05")
	_, err := n.NormalizeTransaction(badAmount)
	assert.Error(t, err)

	badDate := bookedTransaction("tx-7", "-1000", "2", "X", "05/03/2024")
	_, err = n.NormalizeTransaction(badDate)
	assert.Error(t, err)
}

func TestNormalizeAccount(t *testing.T) {
	n := NewNormalizer(txhash.NewGenerator(), logger.NewNop())

	var acc APIAccount
	acc.ID = "acc-tink-1"
	acc.Name = "Compte Courant"
	acc.Balances.Booked.Amount = apiAmount("100000", "2", "EUR")
	acc.Identifiers.IBAN.IBAN = "FR7630006000011234567890189"

	got, err := n.NormalizeAccount(acc)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", got.Balance.StringFixed(2))
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "FR7630006000011234567890189", got.IBAN)
	assert.Equal(t, "acc-tink-1", got.ExternalID)
}
