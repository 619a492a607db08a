// Package txhash computes transaction fingerprints used as dedup keys.
//
// A fingerprint is the first 16 bytes of a SHA-256 digest, rendered as 32
// lowercase hex characters. Three construction modes exist with different
// determinism guarantees:
//
//   - Manual entries mix in wall-clock time and a random suffix, so two
//     identical manual entries are never collapsed into one.
//   - Imported statement rows also mix in time and randomness, on top of the
//     row index. The row index prevents collisions between identical rows of
//     one file; the time/random component means re-importing the same file
//     is NOT recognized as a duplicate by hash alone. This mirrors the
//     stored contract and is tracked as an open design decision, not fixed
//     here silently.
//   - External feed transactions hash only stable fields and are fully
//     deterministic, so re-syncing the same bank transaction twice dedups
//     correctly.
package txhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alex-robert-fr/ForecastPro/internal/models"
)

const dateLayout = "2006-01-02"

// Generator produces transaction fingerprints. The clock and the random
// suffix source are injectable so tests can pin them down.
type Generator struct {
	now    func() time.Time
	suffix func() string
}

// NewGenerator creates a Generator backed by the system clock and random
// UUIDs.
func NewGenerator() *Generator {
	return &Generator{
		now:    time.Now,
		suffix: func() string { return uuid.NewString() },
	}
}

// NewFixedGenerator creates a Generator with a pinned clock and suffix.
// Intended for tests.
func NewFixedGenerator(now time.Time, suffix string) *Generator {
	return &Generator{
		now:    func() time.Time { return now },
		suffix: func() string { return suffix },
	}
}

// Manual computes the fingerprint of a manually entered transaction.
// Non-deterministic: every call yields a fresh hash.
func (g *Generator) Manual(date time.Time, label string, amount decimal.Decimal) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%s",
		date.Format(dateLayout), label, amount.StringFixed(2), g.now().UnixNano(), g.suffix())
	return digest(input)
}

// ImportedRow computes the fingerprint of one tokenized statement row.
// The row index keeps textually identical rows of the same file apart.
// Non-deterministic across imports: see the package comment.
func (g *Generator) ImportedRow(date time.Time, label string, amount decimal.Decimal, rowIndex int) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		date.Format(dateLayout), label, amount.StringFixed(2), rowIndex, g.now().UnixNano(), g.suffix())
	return digest(input)
}

// ExternalFeed computes the fingerprint of an external bank-feed
// transaction. Deterministic: the same transaction always hashes the same.
func (g *Generator) ExternalFeed(date time.Time, amount decimal.Decimal, description string, txType models.TransactionType) string {
	input := fmt.Sprintf("%s|%s|%s|%s",
		date.Format(dateLayout), amount.StringFixed(2), description, txType)
	return digest(input)
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:16])
}
