package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type ruleStore struct {
	db *sql.DB
}

func NewRuleStore(db *sql.DB) *ruleStore {
	return &ruleStore{db: db}
}

const ruleColumns = `rule_id, company_id, rule_name, priority, conditions, target_account_id,
	target_party_id, is_active, usage_count, created_at, updated_at`

// Rule ordering is part of the matching contract: priority ascending, ties
// broken by creation order. The matcher trusts this order blindly.
const ruleOrder = `ORDER BY priority, created_at, rule_id`

func (s *ruleStore) Create(ctx context.Context, rule *models.CategorizationRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categorization_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.RuleID, rule.CompanyID, rule.RuleName, rule.Priority, string(conditions),
		rule.TargetAccountID, rule.TargetPartyID, rule.IsActive, rule.UsageCount,
		rule.CreatedAt, rule.UpdatedAt)
	return err
}

func (s *ruleStore) Update(ctx context.Context, rule *models.CategorizationRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE categorization_rules
		SET rule_name = ?, priority = ?, conditions = ?, target_account_id = ?,
			target_party_id = ?, is_active = ?, updated_at = ?
		WHERE company_id = ? AND rule_id = ?`,
		rule.RuleName, rule.Priority, string(conditions), rule.TargetAccountID,
		rule.TargetPartyID, rule.IsActive, rule.UpdatedAt,
		rule.CompanyID, rule.RuleID)
	return err
}

func (s *ruleStore) Delete(ctx context.Context, companyID, ruleID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM categorization_rules
		WHERE company_id = ? AND rule_id = ?`, companyID, ruleID)
	return err
}

func (s *ruleStore) Get(ctx context.Context, companyID, ruleID string) (*models.CategorizationRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM categorization_rules
		WHERE company_id = ? AND rule_id = ?`, companyID, ruleID)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rule, err
}

func (s *ruleStore) List(ctx context.Context, companyID string) ([]models.CategorizationRule, error) {
	return s.list(ctx, `
		SELECT `+ruleColumns+`
		FROM categorization_rules
		WHERE company_id = ?
		`+ruleOrder, companyID)
}

func (s *ruleStore) ListActive(ctx context.Context, companyID string) ([]models.CategorizationRule, error) {
	return s.list(ctx, `
		SELECT `+ruleColumns+`
		FROM categorization_rules
		WHERE company_id = ? AND is_active = 1
		`+ruleOrder, companyID)
}

// IncrementUsage is telemetry; lost updates under concurrency are
// tolerable and no read-modify-write is attempted.
func (s *ruleStore) IncrementUsage(ctx context.Context, companyID, ruleID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categorization_rules
		SET usage_count = usage_count + 1
		WHERE company_id = ? AND rule_id = ?`, companyID, ruleID)
	return err
}

func (s *ruleStore) list(ctx context.Context, query string, args ...any) ([]models.CategorizationRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.CategorizationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func scanRule(row rowScanner) (*models.CategorizationRule, error) {
	var r models.CategorizationRule
	var conditions string
	if err := row.Scan(&r.RuleID, &r.CompanyID, &r.RuleName, &r.Priority, &conditions,
		&r.TargetAccountID, &r.TargetPartyID, &r.IsActive, &r.UsageCount,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
		return nil, err
	}
	return &r, nil
}
