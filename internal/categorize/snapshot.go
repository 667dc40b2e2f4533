// Package categorize proposes a ledger account and counterparty for a
// statement line. Matching is pure: it works over an in-memory snapshot of
// the company's accounts, parties and rules fetched once per invocation,
// and reports which rule fired so the caller can persist usage counts.
package categorize

import (
	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

// Snapshot is the read-only company state a matching pass runs against.
// Accounts must be active non-group entries; Rules must be active and
// already ordered by priority (lowest value first, ties by creation).
type Snapshot struct {
	Accounts []models.Account
	Parties  []models.Party
	Rules    []models.CategorizationRule
}

// Confidence levels attached to suggestions. A rule was authored by a
// human for the exact pattern, so it is treated as certain; a keyword
// heuristic is a hint for review.
const (
	ConfidenceRule      = 100
	ConfidenceManual    = 100
	ConfidenceHeuristic = 70
)

// Suggestion is the enrichment attached to one statement line.
type Suggestion struct {
	AccountID   string                      `json:"accountId,omitempty"`
	AccountName string                      `json:"accountName,omitempty"`
	PartyID     string                      `json:"partyId,omitempty"`
	PartyName   string                      `json:"partyName,omitempty"`
	Source      models.CategorizationSource `json:"source"`
	Confidence  int                         `json:"confidence"`
	RuleID      string                      `json:"-"` // rule that fired, for usage accounting
}

// Matched reports whether an account was proposed.
func (s Suggestion) Matched() bool {
	return s.AccountID != ""
}
