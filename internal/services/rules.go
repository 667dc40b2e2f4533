package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/helpers"
	"github.com/ledgerkit/bankfeed-backend/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type ruleCRUDStore interface {
	List(ctx context.Context, companyID string) ([]models.CategorizationRule, error)
	Get(ctx context.Context, companyID, ruleID string) (*models.CategorizationRule, error)
	Create(ctx context.Context, rule *models.CategorizationRule) error
	Update(ctx context.Context, rule *models.CategorizationRule) error
	Delete(ctx context.Context, companyID, ruleID string) error
}

type accountRuleStore interface {
	Get(ctx context.Context, companyID, accountID string) (*models.Account, error)
}

type RuleInput struct {
	RuleName        string                 `json:"ruleName"`
	Priority        int                    `json:"priority"`
	Conditions      []models.RuleCondition `json:"conditions"`
	TargetAccountID string                 `json:"targetAccountId"`
	TargetPartyID   string                 `json:"targetPartyId,omitempty"`
	IsActive        *bool                  `json:"isActive,omitempty"`
}

type ruleService struct {
	rules    ruleCRUDStore
	accounts accountRuleStore
	clockNow func() time.Time
}

func NewRuleService(rules ruleCRUDStore, accounts accountRuleStore) *ruleService {
	return &ruleService{
		rules:    rules,
		accounts: accounts,
		clockNow: time.Now,
	}
}

func (s *ruleService) ListRules(ctx context.Context, companyID string) ([]models.CategorizationRule, error) {
	return s.rules.List(ctx, companyID)
}

func (s *ruleService) CreateRule(ctx context.Context, companyID string, input RuleInput) (*models.CategorizationRule, error) {
	if err := s.validate(ctx, companyID, input); err != nil {
		return nil, err
	}

	now := s.clockNow()
	rule := &models.CategorizationRule{
		RuleID:          uuid.NewString(),
		CompanyID:       companyID,
		RuleName:        input.RuleName,
		Priority:        input.Priority,
		Conditions:      input.Conditions,
		TargetAccountID: input.TargetAccountID,
		TargetPartyID:   input.TargetPartyID,
		IsActive:        helpers.ValueOr(input.IsActive, true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("categorization rule created", "rule_id", rule.RuleID, "rule_name", rule.RuleName)
	return rule, nil
}

func (s *ruleService) UpdateRule(ctx context.Context, companyID, ruleID string, input RuleInput) (*models.CategorizationRule, error) {
	existing, err := s.rules.Get(ctx, companyID, ruleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NewNotFoundError("categorization rule not found")
	}
	if err := s.validate(ctx, companyID, input); err != nil {
		return nil, err
	}

	existing.RuleName = input.RuleName
	existing.Priority = input.Priority
	existing.Conditions = input.Conditions
	existing.TargetAccountID = input.TargetAccountID
	existing.TargetPartyID = input.TargetPartyID
	existing.IsActive = helpers.ValueOr(input.IsActive, existing.IsActive)
	existing.UpdatedAt = s.clockNow()

	if err := s.rules.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ruleService) DeleteRule(ctx context.Context, companyID, ruleID string) error {
	existing, err := s.rules.Get(ctx, companyID, ruleID)
	if err != nil {
		return err
	}
	if existing == nil {
		return errs.NewNotFoundError("categorization rule not found")
	}
	return s.rules.Delete(ctx, companyID, ruleID)
}

func (s *ruleService) validate(ctx context.Context, companyID string, input RuleInput) error {
	if input.RuleName == "" {
		return errs.NewValidationError("ruleName is required")
	}
	if len(input.Conditions) == 0 {
		return errs.NewValidationError("at least one condition is required")
	}
	for _, c := range input.Conditions {
		if !validConditionField(c.Field) {
			return errs.NewValidationError("unknown condition field: " + c.Field)
		}
		if !validConditionOperator(c.Operator) {
			return errs.NewValidationError("unknown condition operator: " + c.Operator)
		}
	}
	if input.TargetAccountID == "" {
		return errs.NewValidationError("targetAccountId is required")
	}

	account, err := s.accounts.Get(ctx, companyID, input.TargetAccountID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsActive || account.IsGroup {
		return errs.NewNotFoundError("target account not found")
	}
	return nil
}

func validConditionField(field string) bool {
	switch field {
	case "description", "reference", "amount":
		return true
	}
	return false
}

func validConditionOperator(op string) bool {
	switch op {
	case "contains", "equals", "starts_with", "gt", "gte", "lt", "lte":
		return true
	}
	return false
}
