package statement

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// Statement rows carry [date, label, debit, credit] in the first four
// columns. Extra columns are ignored.
const minRowFields = 4

const dateLayout = "02/01/2006"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	amountJunk    = regexp.MustCompile(`[^0-9,.\-]`)

	// carteMerchant captures the text between the card-mask token (X followed
	// by the last digits) and the trailing DD/MM date of the operation.
	carteMerchant = regexp.MustCompile(`X\d{4}\s+(.+?)\s+\d{2}/\d{2}\s*$`)

	virementTarget = regexp.MustCompile(`\b(?:VERS|FAVEUR)\s+(.+?)\s*$`)
)

// Interpreter turns tokenized statement rows into canonical transactions.
type Interpreter struct {
	hasher *txhash.Generator
	logger logger.Logger
}

// NewInterpreter creates an Interpreter using the given fingerprint
// generator.
func NewInterpreter(hasher *txhash.Generator, log logger.Logger) *Interpreter {
	if log == nil {
		log = logger.Global()
	}
	return &Interpreter{
		hasher: hasher,
		logger: log.WithComponent("statement_interpreter"),
	}
}

// InterpretRow converts one tokenized row into a canonical transaction.
//
// The caller discards the header row before calling; rowIndex is the 0-based
// position in the tokenized output. A nil transaction with nil error means
// the row was silently skipped (too short, missing date or label, or zero on
// both amount columns). A non-nil error is row-scoped: the caller records it
// and moves on.
func (in *Interpreter) InterpretRow(row []string, rowIndex int) (*models.Transaction, error) {
	if len(row) < minRowFields {
		in.logger.WithField("row", rowIndex).Debug("skipping short row")
		return nil, nil
	}

	rawDate, rawLabel, rawDebit, rawCredit := row[0], row[1], row[2], row[3]
	if rawDate == "" || rawLabel == "" {
		in.logger.WithField("row", rowIndex).Debug("skipping row without date or label")
		return nil, nil
	}

	date, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, apperrors.RowError(apperrors.CodeInvalidDate, rowIndex, rawDate, err)
	}

	debit := ParseLocalizedAmount(rawDebit)
	credit := ParseLocalizedAmount(rawCredit)

	var amount decimal.Decimal
	var txType models.TransactionType
	switch {
	case debit.IsPositive():
		amount = debit.Neg()
		txType = models.TransactionTypeDebit
	case credit.IsPositive():
		amount = credit
		txType = models.TransactionTypeCredit
	default:
		in.logger.WithField("row", rowIndex).Debug("skipping row with zero debit and credit")
		return nil, nil
	}

	label := CleanLabel(rawLabel)
	merchant, method := ExtractMerchant(label)

	return &models.Transaction{
		Date:          date,
		Label:         label,
		Amount:        amount,
		Type:          txType,
		Merchant:      merchant,
		PaymentMethod: method,
		Hash:          in.hasher.ImportedRow(date, label, amount, rowIndex),
	}, nil
}

// ParseLocalizedAmount parses a locale-formatted amount string with comma as
// the decimal separator. Currency symbols and thousands separators are
// stripped. A blank or unparseable field yields zero, never an error.
func ParseLocalizedAmount(s string) decimal.Decimal {
	s = amountJunk.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Zero
	}

	if strings.Contains(s, ",") {
		// Comma is the decimal separator; any remaining periods are
		// thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CleanLabel collapses internal whitespace runs to a single space and trims.
func CleanLabel(label string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(label, " "))
}

// ExtractMerchant derives an optional merchant and payment method from a
// cleaned statement label. The cascade is keyed on upper-cased,
// diacritic-folded label content and checked in priority order. It is a
// best-effort heuristic: no keyword match leaves both results empty.
func ExtractMerchant(label string) (string, models.PaymentMethod) {
	upper := foldDiacritics(strings.ToUpper(label))

	switch {
	case strings.Contains(upper, "PAIEMENT PAR CARTE"):
		merchant := ""
		if m := carteMerchant.FindStringSubmatch(upper); m != nil {
			merchant = strings.TrimSpace(m[1])
		}
		return merchant, models.PaymentMethodCarte

	case strings.Contains(upper, "PRELEVEMENT"):
		merchant := ""
		if segments := strings.Fields(upper); len(segments) > 1 {
			merchant = segments[1]
		}
		return merchant, models.PaymentMethodPrelevement

	case strings.Contains(upper, "VIREMENT"):
		merchant := ""
		if m := virementTarget.FindStringSubmatch(upper); m != nil {
			merchant = strings.TrimSpace(m[1])
		}
		return merchant, models.PaymentMethodVirement

	case strings.Contains(upper, "RETRAIT"):
		return "", models.PaymentMethodRetrait
	}

	return "", ""
}

// foldDiacritics strips combining marks so that accented keywords like
// "PRÉLÈVEMENT" match their plain form.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
