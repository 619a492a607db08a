// Package statement parses semi-structured CSV bank statement exports into
// canonical transactions.
//
// Parsing happens in two stages: a character-level tokenizer turns raw text
// into rows of trimmed fields, then a row interpreter turns each row into a
// canonical transaction. The split exists because French retail-bank exports
// allow quoted fields spanning multiple physical lines, which encoding/csv
// strict mode and the surrounding row heuristics handle poorly.
package statement

import (
	"strings"
)

// TokenizerConfig holds the delimiter and quote characters of the export
// format.
type TokenizerConfig struct {
	Delimiter rune
	Quote     rune
}

// DefaultTokenizerConfig returns the French retail-bank export convention:
// semicolon-delimited fields, double-quote quoting.
func DefaultTokenizerConfig() *TokenizerConfig {
	return &TokenizerConfig{
		Delimiter: ';',
		Quote:     '"',
	}
}

// Tokenizer scans raw statement text into rows of fields.
//
// The tokenizer never fails: malformed quoting degrades gracefully by
// staying in the quoted state until a closing quote or end of input.
type Tokenizer struct {
	config *TokenizerConfig
}

// NewTokenizer creates a Tokenizer with the given configuration.
func NewTokenizer(config *TokenizerConfig) *Tokenizer {
	if config == nil {
		config = DefaultTokenizerConfig()
	}
	return &Tokenizer{config: config}
}

// Tokenize splits raw statement text into rows of trimmed fields.
//
// Line endings are normalized before scanning. A quoted field may contain
// delimiters and embedded newlines; a doubled quote inside quotes is an
// escaped literal quote. Rows whose fields are all empty are dropped. A
// final row without a trailing newline is still flushed.
func (t *Tokenizer) Tokenize(raw string) [][]string {
	raw = normalizeLineEndings(raw)

	var (
		rows     [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	flushField := func() {
		fields = append(fields, strings.TrimSpace(field.String()))
		field.Reset()
	}

	flushRow := func() {
		flushField()
		if !isEmptyRow(fields) {
			rows = append(rows, fields)
		}
		fields = nil
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch {
		case c == t.config.Quote:
			if inQuotes && i+1 < len(runes) && runes[i+1] == t.config.Quote {
				// Escaped literal quote.
				field.WriteRune(t.config.Quote)
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == t.config.Delimiter && !inQuotes:
			flushField()
		case c == '\n' && !inQuotes:
			flushRow()
		default:
			field.WriteRune(c)
		}
	}

	if field.Len() > 0 || len(fields) > 0 {
		flushRow()
	}

	return rows
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
