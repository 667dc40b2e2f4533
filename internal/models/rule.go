package models

import (
	"time"
)

// RuleCondition is one predicate of a categorization rule. All conditions
// of a rule must hold for the rule to match.
type RuleCondition struct {
	Field    string `json:"field"`    // "description", "reference" or "amount"
	Operator string `json:"operator"` // "contains", "equals", "starts_with", "gt", "gte", "lt", "lte"
	Value    string `json:"value"`
}

// CategorizationRule maps bank statement lines to a ledger account (and
// optionally a counterparty). Rules are user-authored, evaluated in
// priority order; the first matching active rule wins.
type CategorizationRule struct {
	RuleID          string          `json:"ruleId"`
	CompanyID       string          `json:"companyId"`
	RuleName        string          `json:"ruleName"`
	Priority        int             `json:"priority"` // lower value evaluates first
	Conditions      []RuleCondition `json:"conditions"`
	TargetAccountID string          `json:"targetAccountId"`
	TargetPartyID   string          `json:"targetPartyId,omitempty"`
	IsActive        bool            `json:"isActive"`
	UsageCount      int             `json:"usageCount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
