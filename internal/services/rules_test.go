package services

import (
	"context"
	"testing"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/helpers"
)

type ruleFakeStore struct {
	rules map[string]*models.CategorizationRule
}

func newRuleFakeStore() *ruleFakeStore {
	return &ruleFakeStore{rules: map[string]*models.CategorizationRule{}}
}

func (f *ruleFakeStore) List(ctx context.Context, companyID string) ([]models.CategorizationRule, error) {
	var out []models.CategorizationRule
	for _, r := range f.rules {
		if r.CompanyID == companyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *ruleFakeStore) Get(ctx context.Context, companyID, ruleID string) (*models.CategorizationRule, error) {
	r, ok := f.rules[ruleID]
	if !ok || r.CompanyID != companyID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *ruleFakeStore) Create(ctx context.Context, rule *models.CategorizationRule) error {
	f.rules[rule.RuleID] = rule
	return nil
}

func (f *ruleFakeStore) Update(ctx context.Context, rule *models.CategorizationRule) error {
	f.rules[rule.RuleID] = rule
	return nil
}

func (f *ruleFakeStore) Delete(ctx context.Context, companyID, ruleID string) error {
	delete(f.rules, ruleID)
	return nil
}

type ruleFakeAccountStore struct {
	accounts map[string]*models.Account
}

func (f *ruleFakeAccountStore) Get(ctx context.Context, companyID, accountID string) (*models.Account, error) {
	return f.accounts[accountID], nil
}

func newRuleService() (*ruleService, *ruleFakeStore) {
	store := newRuleFakeStore()
	accounts := &ruleFakeAccountStore{accounts: map[string]*models.Account{
		"a-rent":  {AccountID: "a-rent", CompanyID: "c1", Name: "Rent Expense", IsActive: true},
		"a-group": {AccountID: "a-group", CompanyID: "c1", Name: "Expenses", IsActive: true, IsGroup: true},
	}}
	return NewRuleService(store, accounts), store
}

func validInput() RuleInput {
	return RuleInput{
		RuleName:        "Rent",
		Priority:        10,
		Conditions:      []models.RuleCondition{{Field: "description", Operator: "contains", Value: "rent"}},
		TargetAccountID: "a-rent",
	}
}

func TestCreateRuleDefaultsActive(t *testing.T) {
	svc, store := newRuleService()

	rule, err := svc.CreateRule(helpers.TestCtx(), "c1", validInput())
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if !rule.IsActive {
		t.Fatalf("new rule must default to active")
	}
	if rule.RuleID == "" {
		t.Fatalf("rule ID not assigned")
	}
	if _, ok := store.rules[rule.RuleID]; !ok {
		t.Fatalf("rule not persisted")
	}
}

func TestCreateRuleValidation(t *testing.T) {
	svc, _ := newRuleService()
	ctx := helpers.TestCtx()

	cases := []struct {
		name   string
		mutate func(*RuleInput)
	}{
		{"missing name", func(in *RuleInput) { in.RuleName = "" }},
		{"no conditions", func(in *RuleInput) { in.Conditions = nil }},
		{"bad field", func(in *RuleInput) { in.Conditions[0].Field = "memo" }},
		{"bad operator", func(in *RuleInput) { in.Conditions[0].Operator = "regex" }},
		{"missing target", func(in *RuleInput) { in.TargetAccountID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			if _, err := svc.CreateRule(ctx, "c1", in); err == nil {
				t.Fatalf("expected validation error")
			} else if _, ok := err.(*errs.ValidationError); !ok {
				t.Fatalf("error type = %T, want *errs.ValidationError", err)
			}
		})
	}
}

func TestCreateRuleRejectsGroupAccount(t *testing.T) {
	svc, _ := newRuleService()

	in := validInput()
	in.TargetAccountID = "a-group"
	if _, err := svc.CreateRule(helpers.TestCtx(), "c1", in); err == nil {
		t.Fatalf("group account must not be a rule target")
	}

	in.TargetAccountID = "a-missing"
	if _, err := svc.CreateRule(helpers.TestCtx(), "c1", in); err == nil {
		t.Fatalf("unknown account must not be a rule target")
	}
}

func TestUpdateRule(t *testing.T) {
	svc, _ := newRuleService()
	ctx := helpers.TestCtx()

	rule, err := svc.CreateRule(ctx, "c1", validInput())
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	in := validInput()
	in.RuleName = "Office Rent"
	in.IsActive = helpers.Ptr(false)
	updated, err := svc.UpdateRule(ctx, "c1", rule.RuleID, in)
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.RuleName != "Office Rent" || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdateRule(ctx, "c1", "nope", in); err == nil {
		t.Fatalf("unknown rule must return not found")
	}
	// Other tenants cannot reach the rule.
	if _, err := svc.UpdateRule(ctx, "c2", rule.RuleID, in); err == nil {
		t.Fatalf("cross-company update must return not found")
	}
}

func TestDeleteRule(t *testing.T) {
	svc, store := newRuleService()
	ctx := helpers.TestCtx()

	rule, err := svc.CreateRule(ctx, "c1", validInput())
	if err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if err := svc.DeleteRule(ctx, "c1", rule.RuleID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if _, ok := store.rules[rule.RuleID]; ok {
		t.Fatalf("rule not deleted")
	}

	err = svc.DeleteRule(ctx, "c1", rule.RuleID)
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("second delete error = %T, want *errs.NotFoundError", err)
	}
}
