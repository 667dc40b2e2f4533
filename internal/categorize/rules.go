package categorize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

// ruleMatches reports whether every condition of the rule holds for the
// transaction. A rule with no conditions never matches.
func ruleMatches(rule models.CategorizationRule, tx models.RawTransaction) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, c := range rule.Conditions {
		if !conditionMatches(c, tx) {
			return false
		}
	}
	return true
}

func conditionMatches(c models.RuleCondition, tx models.RawTransaction) bool {
	switch c.Field {
	case "description":
		return textMatches(c.Operator, tx.Description, c.Value)
	case "reference":
		return textMatches(c.Operator, tx.Reference, c.Value)
	case "amount":
		return amountMatches(c.Operator, txAmount(tx), c.Value)
	}
	return false
}

func textMatches(op, have, want string) bool {
	have = strings.ToLower(have)
	want = strings.ToLower(want)
	switch op {
	case "contains":
		return want != "" && strings.Contains(have, want)
	case "equals":
		return have == want
	case "starts_with":
		return want != "" && strings.HasPrefix(have, want)
	}
	return false
}

func amountMatches(op string, have decimal.Decimal, want string) bool {
	target, err := decimal.NewFromString(strings.TrimSpace(want))
	if err != nil {
		return false
	}
	switch op {
	case "equals":
		return have.Equal(target)
	case "gt":
		return have.GreaterThan(target)
	case "gte":
		return have.GreaterThanOrEqual(target)
	case "lt":
		return have.LessThan(target)
	case "lte":
		return have.LessThanOrEqual(target)
	}
	return false
}

// txAmount is whichever side of the line is populated.
func txAmount(tx models.RawTransaction) decimal.Decimal {
	if tx.Debit != nil {
		return *tx.Debit
	}
	if tx.Credit != nil {
		return *tx.Credit
	}
	return decimal.Zero
}
