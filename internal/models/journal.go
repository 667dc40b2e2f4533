package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type JournalEntry struct {
	EntryID      string             `json:"entryId"`
	CompanyID    string             `json:"companyId"`
	FiscalYearID string             `json:"fiscalYearId"`
	EntryNumber  string             `json:"entryNumber"` // e.g. BK/2024-25/0001
	EntryDate    string             `json:"entryDate"`   // YYYY-MM-DD
	Narration    string             `json:"narration"`
	Status       string             `json:"status"` // "draft" or "posted"
	Lines        []JournalEntryLine `json:"lines"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type JournalEntryLine struct {
	LineID    string          `json:"lineId"`
	EntryID   string          `json:"entryId"`
	AccountID string          `json:"accountId"`
	PartyID   string          `json:"partyId,omitempty"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Narration string          `json:"narration"`
}

// Balanced reports whether debits equal credits across the entry's lines.
func (e *JournalEntry) Balanced() bool {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Equal(credits)
}
