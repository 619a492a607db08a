package tink

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/statement"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

const bookedDateLayout = "2006-01-02"

var (
	dateToken = regexp.MustCompile(`\b\d{2}/\d{2}(?:/\d{2,4})?\b`)
	cardToken = regexp.MustCompile(`\bX\d{4,}\b`)
)

// Normalizer converts Tink API payloads into the canonical shapes used by
// the statement ingestion path.
type Normalizer struct {
	hasher *txhash.Generator
	logger logger.Logger
}

// NewNormalizer creates a Normalizer using the given fingerprint generator.
func NewNormalizer(hasher *txhash.Generator, log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Global()
	}
	return &Normalizer{
		hasher: hasher,
		logger: log.WithComponent("tink_normalizer"),
	}
}

// DecodeAmount converts the API's unscaledValue/scale encoding into a
// decimal: value = unscaledValue / 10^scale.
func DecodeAmount(a APIAmount) (decimal.Decimal, error) {
	unscaled, err := strconv.ParseInt(a.Value.UnscaledValue, 10, 64)
	if err != nil {
		return decimal.Zero, apperrors.ValidationError(apperrors.CodeInvalidAmount, "unscaledValue", a.Value.UnscaledValue)
	}
	scale, err := strconv.ParseInt(a.Value.Scale, 10, 32)
	if err != nil {
		return decimal.Zero, apperrors.ValidationError(apperrors.CodeInvalidAmount, "scale", a.Value.Scale)
	}
	return decimal.New(unscaled, -int32(scale)), nil
}

// NormalizeTransaction converts one API transaction into a canonical one.
//
// Only booked transactions are converted; pending ones return nil so a later
// resync picks up their settled form. Zero-amount transactions return nil as
// well. The canonical amount keeps the API's sign, with the type derived
// from it, matching the representation the statement path produces.
func (n *Normalizer) NormalizeTransaction(tx APITransaction) (*models.Transaction, error) {
	if tx.Status != StatusBooked {
		n.logger.WithFields(logger.Fields{
			"transaction_id": tx.ID,
			"status":         tx.Status,
		}).Debug("skipping non-booked transaction")
		return nil, nil
	}

	amount, err := DecodeAmount(tx.Amount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, nil
	}

	date, err := time.Parse(bookedDateLayout, tx.Dates.Booked)
	if err != nil {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidDate, "dates.booked", tx.Dates.Booked)
	}

	description := tx.Descriptions.Display
	if description == "" {
		description = tx.Descriptions.Original
	}
	label := statement.CleanLabel(description)
	if label == "" {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "descriptions", "")
	}

	txType := models.TypeForAmount(amount)
	merchant, method := extractMerchant(label)

	return &models.Transaction{
		Date:          date,
		Label:         label,
		Amount:        amount,
		Type:          txType,
		Merchant:      merchant,
		PaymentMethod: method,
		Hash:          n.hasher.ExternalFeed(date, amount, label, txType),
		ExternalID:    tx.ID,
	}, nil
}

// NormalizeAccount converts an API account into the canonical account
// summary, decoding its booked balance.
func (n *Normalizer) NormalizeAccount(acc APIAccount) (*models.Account, error) {
	balance, err := DecodeAmount(acc.Balances.Booked.Amount)
	if err != nil {
		return nil, err
	}

	return &models.Account{
		ID:         acc.ID,
		Name:       acc.Name,
		Currency:   acc.Balances.Booked.Amount.CurrencyCode,
		Balance:    balance,
		ExternalID: acc.ID,
		IBAN:       acc.Identifiers.IBAN.IBAN,
	}, nil
}

// extractMerchant applies the statement label cascade to the API's free-text
// description, after stripping date and card-number tokens that would
// pollute the merchant text.
func extractMerchant(label string) (string, models.PaymentMethod) {
	merchant, method := statement.ExtractMerchant(label)
	if merchant != "" {
		stripped := statement.CleanLabel(cardToken.ReplaceAllString(dateToken.ReplaceAllString(merchant, ""), ""))
		if stripped != "" {
			merchant = stripped
		}
	}
	return merchant, method
}
