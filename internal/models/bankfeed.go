package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategorizationSource string

const (
	SourceRule      CategorizationSource = "rule"
	SourceHeuristic CategorizationSource = "heuristic"
	SourceManual    CategorizationSource = "manual"
	SourceNone      CategorizationSource = "none"
)

type ReconciliationStatus string

const (
	StatusPending    ReconciliationStatus = "pending"
	StatusMatched    ReconciliationStatus = "matched"
	StatusReconciled ReconciliationStatus = "reconciled"
	StatusExcluded   ReconciliationStatus = "excluded"
)

// RawTransaction is one normalized statement line as produced by the
// parser. At most one of Debit/Credit is set; nil means that side does not
// apply to the line, not that the amount is zero.
type RawTransaction struct {
	Date        string           `json:"date"` // YYYY-MM-DD
	Description string           `json:"description"`
	Debit       *decimal.Decimal `json:"debit,omitempty"`
	Credit      *decimal.Decimal `json:"credit,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Reference   string           `json:"reference,omitempty"`
}

// BankFeedTransaction is a persisted statement line moving through the
// pipeline: created pending, enriched by categorization, linked to a
// bookkeeping record by reconciliation.
type BankFeedTransaction struct {
	TransactionID      string               `json:"transactionId"`
	CompanyID          string               `json:"companyId"`
	BankAccountID      string               `json:"bankAccountId"`
	Date               string               `json:"date"`
	Description        string               `json:"description"`
	Debit              *decimal.Decimal     `json:"debit,omitempty"`
	Credit             *decimal.Decimal     `json:"credit,omitempty"`
	Balance            *decimal.Decimal     `json:"balance,omitempty"`
	Reference          string               `json:"reference,omitempty"`
	SuggestedAccountID string               `json:"suggestedAccountId,omitempty"`
	SuggestedPartyID   string               `json:"suggestedPartyId,omitempty"`
	ConfidenceScore    int                  `json:"confidenceScore"` // 0-100, indicator not probability
	Source             CategorizationSource `json:"categorizationSource"`
	Status             ReconciliationStatus `json:"reconciliationStatus"`
	MatchedInvoiceID   string               `json:"matchedInvoiceId,omitempty"`
	MatchedBillID      string               `json:"matchedBillId,omitempty"`
	MatchedEntryID     string               `json:"matchedEntryId,omitempty"`
	CreatedEntryID     string               `json:"createdEntryId,omitempty"` // set once imported; guards duplicate import
	CreatedAt          time.Time            `json:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt"`
}

// Amount returns the populated side and whether the line is money-out.
func (t *BankFeedTransaction) Amount() (amount decimal.Decimal, isDebit bool) {
	if t.Debit != nil {
		return *t.Debit, true
	}
	if t.Credit != nil {
		return *t.Credit, false
	}
	return decimal.Zero, false
}
