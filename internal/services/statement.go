package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/categorize"
	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/internal/statement"
	"github.com/ledgerkit/bankfeed-backend/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type accountSSStore interface {
	Get(ctx context.Context, companyID, accountID string) (*models.Account, error)
	ListActiveLeaves(ctx context.Context, companyID string) ([]models.Account, error)
}

type partySSStore interface {
	List(ctx context.Context, companyID string) ([]models.Party, error)
}

type ruleSSStore interface {
	ListActive(ctx context.Context, companyID string) ([]models.CategorizationRule, error)
	IncrementUsage(ctx context.Context, companyID, ruleID string) error
}

type feedSSStore interface {
	CreateBatch(ctx context.Context, txs []models.BankFeedTransaction) error
}

type ParseStatementRequest struct {
	BankAccountID string `json:"bankAccountId,omitempty"`
	Format        string `json:"format"`
	Content       string `json:"content"`
	Persist       bool   `json:"persist,omitempty"`
}

type ParsedRow struct {
	models.RawTransaction
	Suggestion categorize.Suggestion `json:"suggestion"`
	Matched    bool                  `json:"matched"`
}

type ParseSummary struct {
	Total       int             `json:"total"`
	Matched     int             `json:"matched"`
	Unmatched   int             `json:"unmatched"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

type ParseResult struct {
	Rows           []ParsedRow  `json:"rows"`
	Summary        ParseSummary `json:"summary"`
	TransactionIDs []string     `json:"transactionIds,omitempty"`
}

type statementService struct {
	accounts accountSSStore
	parties  partySSStore
	rules    ruleSSStore
	feed     feedSSStore
	clockNow func() time.Time
}

func NewStatementService(accounts accountSSStore, parties partySSStore, rules ruleSSStore, feed feedSSStore) *statementService {
	return &statementService{
		accounts: accounts,
		parties:  parties,
		rules:    rules,
		feed:     feed,
		clockNow: time.Now,
	}
}

// ParseStatement parses a raw statement, proposes a match per row, and
// optionally persists the batch as pending feed transactions. Zero parsed
// rows is a caller-visible failure: importing nothing silently helps nobody.
func (s *statementService) ParseStatement(ctx context.Context, companyID string, req ParseStatementRequest) (*ParseResult, error) {
	raw, err := statement.Parse(req.Content, req.Format)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errs.NewValidationError("no transactions parsed from statement")
	}

	snap, err := s.snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{Rows: make([]ParsedRow, 0, len(raw))}
	result.Summary.TotalDebit = decimal.Zero
	result.Summary.TotalCredit = decimal.Zero

	log := logger.FromContext(ctx)
	for _, tx := range raw {
		sug := categorize.Match(tx, snap)
		if sug.RuleID != "" {
			// Usage counts are telemetry; a lost increment never fails a parse.
			if err := s.rules.IncrementUsage(ctx, companyID, sug.RuleID); err != nil {
				log.Warn("rule usage increment failed", "rule_id", sug.RuleID, "error", err)
			}
		}

		result.Rows = append(result.Rows, ParsedRow{RawTransaction: tx, Suggestion: sug, Matched: sug.Matched()})
		result.Summary.Total++
		if sug.Matched() {
			result.Summary.Matched++
		} else {
			result.Summary.Unmatched++
		}
		if tx.Debit != nil {
			result.Summary.TotalDebit = result.Summary.TotalDebit.Add(*tx.Debit)
		}
		if tx.Credit != nil {
			result.Summary.TotalCredit = result.Summary.TotalCredit.Add(*tx.Credit)
		}
	}

	if req.Persist {
		ids, err := s.persistBatch(ctx, companyID, req.BankAccountID, result.Rows)
		if err != nil {
			return nil, err
		}
		result.TransactionIDs = ids
	}

	log.Info("statement parsed",
		"total", result.Summary.Total,
		"matched", result.Summary.Matched,
		"persisted", req.Persist)
	return result, nil
}

func (s *statementService) snapshot(ctx context.Context, companyID string) (categorize.Snapshot, error) {
	accounts, err := s.accounts.ListActiveLeaves(ctx, companyID)
	if err != nil {
		return categorize.Snapshot{}, err
	}
	parties, err := s.parties.List(ctx, companyID)
	if err != nil {
		return categorize.Snapshot{}, err
	}
	rules, err := s.rules.ListActive(ctx, companyID)
	if err != nil {
		return categorize.Snapshot{}, err
	}
	return categorize.Snapshot{Accounts: accounts, Parties: parties, Rules: rules}, nil
}

func (s *statementService) persistBatch(ctx context.Context, companyID, bankAccountID string, rows []ParsedRow) ([]string, error) {
	if bankAccountID == "" {
		return nil, errs.NewValidationError("bankAccountId is required to persist a statement")
	}
	bank, err := s.accounts.Get(ctx, companyID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if bank == nil || !bank.IsActive || bank.IsGroup {
		return nil, errs.NewNotFoundError("bank account not found")
	}

	now := s.clockNow()
	ids := make([]string, 0, len(rows))
	txs := make([]models.BankFeedTransaction, 0, len(rows))
	for _, row := range rows {
		id := uuid.NewString()
		ids = append(ids, id)
		txs = append(txs, models.BankFeedTransaction{
			TransactionID:      id,
			CompanyID:          companyID,
			BankAccountID:      bankAccountID,
			Date:               row.Date,
			Description:        row.Description,
			Debit:              row.Debit,
			Credit:             row.Credit,
			Balance:            row.Balance,
			Reference:          row.Reference,
			SuggestedAccountID: row.Suggestion.AccountID,
			SuggestedPartyID:   row.Suggestion.PartyID,
			ConfidenceScore:    row.Suggestion.Confidence,
			Source:             row.Suggestion.Source,
			Status:             models.StatusPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}

	if err := s.feed.CreateBatch(ctx, txs); err != nil {
		return nil, err
	}
	return ids, nil
}
