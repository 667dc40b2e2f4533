// Package statement converts raw bank statement exports into normalized
// transaction records. Parsing is a pure transformation: malformed rows
// degrade to absent fields or are dropped, they never fail the batch.
package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

// FormatCSV is the only supported statement format.
const FormatCSV = "csv"

// columns holds the resolved index of each statement role, -1 if the
// header carried no matching column.
type columns struct {
	date        int
	description int
	debit       int
	credit      int
	balance     int
	reference   int
}

// role synonyms checked against lower-cased header names, in assignment
// precedence order. "description" contains "cr" and "withdrawal" contains
// "dr", so description and debit must claim their columns before credit.
var headerRoles = []struct {
	role      string
	fragments []string
}{
	{"date", []string{"date"}},
	{"description", []string{"description", "narration", "particular", "details", "remarks"}},
	{"debit", []string{"debit", "withdrawal", "dr"}},
	{"credit", []string{"credit", "deposit", "cr"}},
	{"balance", []string{"balance"}},
	{"reference", []string{"ref", "cheque", "chq", "utr"}},
}

// Parse turns a delimited text blob into normalized transactions,
// preserving input row order. Rows lacking both a date and a description,
// or carrying no amount on either side, are dropped silently. A zero-row
// result is not an error here; the caller decides how to surface it.
func Parse(content, format string) ([]models.RawTransaction, error) {
	if !strings.EqualFold(format, FormatCSV) {
		return nil, errs.NewUnsupportedFormatError(format)
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil, nil
	}

	cols := detectColumns(splitFields(lines[0]))

	var txs []models.RawTransaction
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)

		tx := models.RawTransaction{
			Date:        normalizeDate(fieldAt(fields, cols.date)),
			Description: fieldAt(fields, cols.description),
			Debit:       parseAmount(fieldAt(fields, cols.debit)),
			Credit:      parseAmount(fieldAt(fields, cols.credit)),
			Balance:     parseAmount(fieldAt(fields, cols.balance)),
			Reference:   fieldAt(fields, cols.reference),
		}

		if tx.Date == "" && tx.Description == "" {
			continue
		}
		if tx.Debit == nil && tx.Credit == nil {
			continue
		}
		// A line moves money one way only; when an export populates both
		// sides, the debit column wins.
		if tx.Debit != nil && tx.Credit != nil {
			tx.Credit = nil
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func detectColumns(header []string) columns {
	cols := columns{date: -1, description: -1, debit: -1, credit: -1, balance: -1, reference: -1}
	claimed := make([]bool, len(header))

	for _, hr := range headerRoles {
		for i, name := range header {
			if claimed[i] {
				continue
			}
			lower := strings.ToLower(strings.TrimSpace(name))
			if !containsAny(lower, hr.fragments) {
				continue
			}
			claimed[i] = true
			switch hr.role {
			case "date":
				cols.date = i
			case "description":
				cols.description = i
			case "debit":
				cols.debit = i
			case "credit":
				cols.credit = i
			case "balance":
				cols.balance = i
			case "reference":
				cols.reference = i
			}
			break
		}
	}
	return cols
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// splitFields is a quote-aware comma split: a comma inside double quotes
// is not a delimiter. Unlike encoding/csv it never errors on stray quotes,
// which real bank exports are full of.
func splitFields(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// parseAmount strips separators, currency symbols and quotes, then parses
// a positive decimal. Anything unparsable or non-positive is absent (nil):
// an empty debit cell means the row has no debit side, not a zero debit.
func parseAmount(raw string) *decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '"', '\'', ' ', '₹', '$', '€', '£':
			return -1
		}
		return r
	}, raw)

	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return nil
	}
	return &d
}

// Date layouts tried in fixed order: day-first, then ISO, then month-first.
// For ambiguous values like 03/04/2024 the day-first pattern wins because
// it is tried first; month-first is only reached when day-first cannot
// structurally parse (e.g. 12/25/2024).
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"1/2/2006",
}

func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
