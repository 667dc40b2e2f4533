package categorize

import (
	"strings"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

// Match proposes an account and counterparty for one statement line.
// Precedence: user rules in priority order, then the keyword table. The
// party scan runs independently of account matching. An unmatched line is
// not an error; it stays importable as a fully manual entry.
func Match(tx models.RawTransaction, snap Snapshot) Suggestion {
	s := Suggestion{Source: models.SourceNone}

	for _, rule := range snap.Rules {
		if !rule.IsActive {
			continue
		}
		if !ruleMatches(rule, tx) {
			continue
		}
		s.AccountID = rule.TargetAccountID
		s.AccountName = accountName(snap.Accounts, rule.TargetAccountID)
		s.Source = models.SourceRule
		s.Confidence = ConfidenceRule
		s.RuleID = rule.RuleID
		if rule.TargetPartyID != "" {
			s.PartyID = rule.TargetPartyID
			s.PartyName = partyName(snap.Parties, rule.TargetPartyID)
		}
		break
	}

	if s.Source == models.SourceNone {
		if acc, ok := heuristicAccount(tx.Description, snap.Accounts); ok {
			s.AccountID = acc.AccountID
			s.AccountName = acc.Name
			s.Source = models.SourceHeuristic
			s.Confidence = ConfidenceHeuristic
		}
	}

	if s.PartyID == "" {
		if p, ok := scanParties(tx.Description, snap.Parties); ok {
			s.PartyID = p.PartyID
			s.PartyName = p.Name
		}
	}

	return s
}

// heuristicAccount walks the keyword table in fixed order and returns the
// first account whose name contains one of the winning group's fragments.
// A keyword hit with no matching account falls through to later groups.
func heuristicAccount(description string, accounts []models.Account) (models.Account, bool) {
	desc := strings.ToLower(description)
	for _, group := range heuristicTable {
		hit := false
		for _, kw := range group.keywords {
			if strings.Contains(desc, kw) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, fragment := range group.fragments {
			for _, acc := range accounts {
				if strings.Contains(strings.ToLower(acc.Name), fragment) {
					return acc, true
				}
			}
		}
	}
	return models.Account{}, false
}

// scanParties returns the first party whose name appears as a
// case-insensitive substring of the description, in list order.
func scanParties(description string, parties []models.Party) (models.Party, bool) {
	desc := strings.ToLower(description)
	for _, p := range parties {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			continue
		}
		if strings.Contains(desc, name) {
			return p, true
		}
	}
	return models.Party{}, false
}

func accountName(accounts []models.Account, id string) string {
	for _, a := range accounts {
		if a.AccountID == id {
			return a.Name
		}
	}
	return ""
}

func partyName(parties []models.Party, id string) string {
	for _, p := range parties {
		if p.PartyID == id {
			return p.Name
		}
	}
	return ""
}
