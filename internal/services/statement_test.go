package services

import (
	"context"
	"testing"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/helpers"
)

type stmtFakeAccountStore struct {
	accounts []models.Account
}

func (f *stmtFakeAccountStore) Get(ctx context.Context, companyID, accountID string) (*models.Account, error) {
	for i := range f.accounts {
		if f.accounts[i].AccountID == accountID {
			return &f.accounts[i], nil
		}
	}
	return nil, nil
}

func (f *stmtFakeAccountStore) ListActiveLeaves(ctx context.Context, companyID string) ([]models.Account, error) {
	return f.accounts, nil
}

type stmtFakePartyStore struct {
	parties []models.Party
}

func (f *stmtFakePartyStore) List(ctx context.Context, companyID string) ([]models.Party, error) {
	return f.parties, nil
}

type stmtFakeRuleStore struct {
	rules []models.CategorizationRule
	usage map[string]int
}

func (f *stmtFakeRuleStore) ListActive(ctx context.Context, companyID string) ([]models.CategorizationRule, error) {
	return f.rules, nil
}

func (f *stmtFakeRuleStore) IncrementUsage(ctx context.Context, companyID, ruleID string) error {
	if f.usage == nil {
		f.usage = map[string]int{}
	}
	f.usage[ruleID]++
	return nil
}

type stmtFakeFeedStore struct {
	created []models.BankFeedTransaction
}

func (f *stmtFakeFeedStore) CreateBatch(ctx context.Context, txs []models.BankFeedTransaction) error {
	f.created = append(f.created, txs...)
	return nil
}

func newStatementFixture() (*statementService, *stmtFakeRuleStore, *stmtFakeFeedStore) {
	accounts := &stmtFakeAccountStore{accounts: []models.Account{
		{AccountID: "bank", Name: "HDFC Current", IsActive: true},
		{AccountID: "a-rent", Name: "Rent Expense", IsActive: true},
	}}
	rules := &stmtFakeRuleStore{rules: []models.CategorizationRule{
		{
			RuleID:          "r-rent",
			Priority:        1,
			IsActive:        true,
			TargetAccountID: "a-rent",
			Conditions:      []models.RuleCondition{{Field: "description", Operator: "contains", Value: "RENT"}},
		},
	}}
	feed := &stmtFakeFeedStore{}
	svc := NewStatementService(accounts, &stmtFakePartyStore{}, rules, feed)
	return svc, rules, feed
}

const sampleStatement = "Date,Description,Debit,Credit\n" +
	"01/04/2024,RENT PAYMENT,50000,\n" +
	"02/04/2024,CUSTOMER PAYMENT,,75000\n"

func TestParseStatementEndToEnd(t *testing.T) {
	svc, rules, _ := newStatementFixture()

	res, err := svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		Format:  "csv",
		Content: sampleStatement,
	})
	if err != nil {
		t.Fatalf("ParseStatement returned error: %v", err)
	}

	if res.Summary.Total != 2 || res.Summary.Matched != 1 || res.Summary.Unmatched != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if !res.Summary.TotalDebit.Equal(mustDec("50000")) || !res.Summary.TotalCredit.Equal(mustDec("75000")) {
		t.Fatalf("unexpected totals: %+v", res.Summary)
	}

	rent := res.Rows[0]
	if rent.Suggestion.AccountID != "a-rent" || rent.Suggestion.Source != models.SourceRule {
		t.Fatalf("rule should categorize rent row: %+v", rent.Suggestion)
	}
	if rent.Suggestion.AccountName != "Rent Expense" {
		t.Fatalf("suggestion should carry account name, got %q", rent.Suggestion.AccountName)
	}
	if rules.usage["r-rent"] != 1 {
		t.Fatalf("rule usage count not incremented: %+v", rules.usage)
	}

	other := res.Rows[1]
	if other.Matched || other.Suggestion.Source != models.SourceNone {
		t.Fatalf("second row should fall through unmatched: %+v", other.Suggestion)
	}
}

func TestParseStatementPersistsPendingBatch(t *testing.T) {
	svc, _, feed := newStatementFixture()

	res, err := svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		BankAccountID: "bank",
		Format:        "csv",
		Content:       sampleStatement,
		Persist:       true,
	})
	if err != nil {
		t.Fatalf("ParseStatement returned error: %v", err)
	}
	if len(res.TransactionIDs) != 2 || len(feed.created) != 2 {
		t.Fatalf("expected 2 persisted transactions, got %d/%d", len(res.TransactionIDs), len(feed.created))
	}

	for _, tx := range feed.created {
		if tx.Status != models.StatusPending {
			t.Fatalf("persisted transaction must start pending, got %q", tx.Status)
		}
		if tx.CompanyID != "c1" || tx.BankAccountID != "bank" {
			t.Fatalf("scoping fields wrong: %+v", tx)
		}
	}
	if feed.created[0].SuggestedAccountID != "a-rent" {
		t.Fatalf("suggestion not carried into persisted row: %+v", feed.created[0])
	}
}

func TestParseStatementPersistRequiresBankAccount(t *testing.T) {
	svc, _, _ := newStatementFixture()

	_, err := svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		Format:  "csv",
		Content: sampleStatement,
		Persist: true,
	})
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		BankAccountID: "missing",
		Format:        "csv",
		Content:       sampleStatement,
		Persist:       true,
	})
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestParseStatementRejectsEmptyResult(t *testing.T) {
	svc, _, _ := newStatementFixture()

	_, err := svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		Format:  "csv",
		Content: "Date,Description,Debit,Credit\n",
	})
	if _, ok := err.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError for empty statement, got %v", err)
	}
}

func TestParseStatementUnsupportedFormat(t *testing.T) {
	svc, _, _ := newStatementFixture()

	_, err := svc.ParseStatement(helpers.TestCtx(), "c1", ParseStatementRequest{
		Format:  "qif",
		Content: sampleStatement,
	})
	if _, ok := err.(*errs.UnsupportedFormatError); !ok {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}
