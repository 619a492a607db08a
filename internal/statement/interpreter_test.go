package statement

import (
	"testing"
	"time"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	apperrors "github.com/alex-robert-fr/ForecastPro/pkg/errors"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

func newTestInterpreter() *Interpreter {
	return NewInterpreter(txhash.NewGenerator(), logger.NewNop())
}

func TestInterpretRow_Debit(t *testing.T) {
	in := newTestInterpreter()

	tx, err := in.InterpretRow([]string{"01/03/2024", "LIDL PARIS", "45,20", ""}, 1)
	if err != nil {
		t.Fatalf("InterpretRow() error = %v", err)
	}
	if tx == nil {
		t.Fatal("InterpretRow() returned nil transaction")
	}

	wantDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(wantDate) {
		t.Errorf("Date = %s, want %s", tx.Date, wantDate)
	}
	if got := tx.Amount.StringFixed(2); got != "-45.20" {
		t.Errorf("Amount = %s, want -45.20", got)
	}
	if tx.Type != models.TransactionTypeDebit {
		t.Errorf("Type = %s, want DEBIT", tx.Type)
	}
	if len(tx.Hash) != 32 {
		t.Errorf("Hash length = %d, want 32", len(tx.Hash))
	}
}

func TestInterpretRow_Credit(t *testing.T) {
	in := newTestInterpreter()

	tx, err := in.InterpretRow([]string{"01/03/2024", "SALAIRE", "", "1500,00"}, 2)
	if err != nil {
		t.Fatalf("InterpretRow() error = %v", err)
	}
	if got := tx.Amount.StringFixed(2); got != "1500.00" {
		t.Errorf("Amount = %s, want 1500.00", got)
	}
	if tx.Type != models.TransactionTypeCredit {
		t.Errorf("Type = %s, want CREDIT", tx.Type)
	}
}

func TestInterpretRow_Skips(t *testing.T) {
	in := newTestInterpreter()

	tests := []struct {
		name string
		row  []string
	}{
		{"short row", []string{"01/03/2024", "LIDL"}},
		{"empty date", []string{"", "LIDL", "45,20", ""}},
		{"empty label", []string{"01/03/2024", "", "45,20", ""}},
		{"zero debit and credit", []string{"01/03/2024", "LIDL", "", ""}},
		{"unparseable amounts", []string{"01/03/2024", "LIDL", "abc", "xyz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := in.InterpretRow(tt.row, 1)
			if err != nil {
				t.Errorf("InterpretRow() error = %v, want silent skip", err)
			}
			if tx != nil {
				t.Errorf("InterpretRow() = %v, want nil", tx)
			}
		})
	}
}

func TestInterpretRow_InvalidDate(t *testing.T) {
	in := newTestInterpreter()

	_, err := in.InterpretRow([]string{"2024-03-01", "LIDL", "45,20", ""}, 3)
	if err == nil {
		t.Fatal("expected row-scoped error for invalid date")
	}
	ie, ok := apperrors.AsImportError(err)
	if !ok || ie.Code != apperrors.CodeInvalidDate {
		t.Errorf("expected invalid_date code, got %v", err)
	}
}

func TestInterpretRow_IdenticalRowsGetDistinctHashes(t *testing.T) {
	in := newTestInterpreter()

	a, _ := in.InterpretRow([]string{"01/03/2024", "CAFE", "2,50", ""}, 1)
	b, _ := in.InterpretRow([]string{"01/03/2024", "CAFE", "2,50", ""}, 2)
	if a.Hash == b.Hash {
		t.Error("two identical rows on the same date must not share a hash")
	}
}

func TestParseLocalizedAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"45,20", "45.20"},
		{"1 234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1500,00 €", "1500.00"},
		{"-12,50", "-12.50"},
		{"12.50", "12.50"},
		{"", "0.00"},
		{"abc", "0.00"},
		{"--", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLocalizedAmount(tt.input).StringFixed(2); got != tt.want {
				t.Errorf("ParseLocalizedAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanLabel(t *testing.T) {
	got := CleanLabel("  PAIEMENT   PAR \t CARTE  ")
	if got != "PAIEMENT PAR CARTE" {
		t.Errorf("CleanLabel() = %q", got)
	}
}

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name         string
		label        string
		wantMerchant string
		wantMethod   models.PaymentMethod
	}{
		{
			name:         "carte with mask and date",
			label:        "PAIEMENT PAR CARTE X4587 LIDL PARIS 01/03",
			wantMerchant: "LIDL PARIS",
			wantMethod:   models.PaymentMethodCarte,
		},
		{
			name:         "carte without extractable merchant",
			label:        "PAIEMENT PAR CARTE",
			wantMerchant: "",
			wantMethod:   models.PaymentMethodCarte,
		},
		{
			name:         "prelevement takes second segment",
			label:        "PRELEVEMENT EDF FACTURE 03-2024",
			wantMerchant: "EDF",
			wantMethod:   models.PaymentMethodPrelevement,
		},
		{
			name:         "accented prelevement still matches",
			label:        "PRÉLÈVEMENT EDF FACTURE",
			wantMerchant: "EDF",
			wantMethod:   models.PaymentMethodPrelevement,
		},
		{
			name:         "virement vers",
			label:        "VIREMENT VERS COMPTE EPARGNE",
			wantMerchant: "COMPTE EPARGNE",
			wantMethod:   models.PaymentMethodVirement,
		},
		{
			name:         "virement en faveur",
			label:        "VIREMENT EN FAVEUR DUPONT JEAN",
			wantMerchant: "DUPONT JEAN",
			wantMethod:   models.PaymentMethodVirement,
		},
		{
			name:         "retrait has no merchant",
			label:        "RETRAIT DAB 01/03",
			wantMerchant: "",
			wantMethod:   models.PaymentMethodRetrait,
		},
		{
			name:         "no keyword leaves both empty",
			label:        "FRAIS TENUE DE COMPTE",
			wantMerchant: "",
			wantMethod:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchant, method := ExtractMerchant(tt.label)
			if merchant != tt.wantMerchant {
				t.Errorf("merchant = %q, want %q", merchant, tt.wantMerchant)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
		})
	}
}
