package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/categorize"
	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/logger"
)

// --- Dependencies (minimal interfaces scoped to this service) ---

type feedRSStore interface {
	Get(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error)
	ListByStatus(ctx context.Context, companyID string, status models.ReconciliationStatus) ([]models.BankFeedTransaction, error)
	UpdateSuggestion(ctx context.Context, companyID, transactionID, accountID, partyID string, confidence int, source models.CategorizationSource) error
	MarkMatched(ctx context.Context, companyID, transactionID, invoiceID, billID string) error
	MarkReconciled(ctx context.Context, companyID, transactionID string) error
	MarkExcluded(ctx context.Context, companyID, transactionID string) error
}

type accountRSStore interface {
	ListActiveLeaves(ctx context.Context, companyID string) ([]models.Account, error)
	Get(ctx context.Context, companyID, accountID string) (*models.Account, error)
}

type partyRSStore interface {
	List(ctx context.Context, companyID string) ([]models.Party, error)
}

type ruleRSStore interface {
	ListActive(ctx context.Context, companyID string) ([]models.CategorizationRule, error)
	IncrementUsage(ctx context.Context, companyID, ruleID string) error
	Create(ctx context.Context, rule *models.CategorizationRule) error
}

type invoiceRSStore interface {
	ListOpen(ctx context.Context, companyID string) ([]models.Invoice, error)
}

type billRSStore interface {
	ListOpen(ctx context.Context, companyID string) ([]models.Bill, error)
}

// ReconcileOptions bounds candidate search. Widening either knob trades
// precision for recall; ambiguous results are never auto-resolved either way.
type ReconcileOptions struct {
	AmountTolerance decimal.Decimal
	DateWindowDays  int
}

func DefaultReconcileOptions() ReconcileOptions {
	return ReconcileOptions{
		AmountTolerance: decimal.NewFromFloat(0.01),
		DateWindowDays:  7,
	}
}

type SweepResult struct {
	Processed int `json:"processed"`
	Matched   int `json:"matched"`
	Skipped   int `json:"skipped"`
}

type CategorizeSweepResult struct {
	Processed   int `json:"processed"`
	Categorized int `json:"categorized"`
}

type ManualCategorizeRequest struct {
	AccountID  string `json:"accountId"`
	PartyID    string `json:"partyId,omitempty"`
	CreateRule bool   `json:"createRule,omitempty"`
}

type reconcileService struct {
	feed     feedRSStore
	accounts accountRSStore
	parties  partyRSStore
	rules    ruleRSStore
	invoices invoiceRSStore
	bills    billRSStore
	opts     ReconcileOptions
	clockNow func() time.Time
}

func NewReconcileService(feed feedRSStore, accounts accountRSStore, parties partyRSStore, rules ruleRSStore, invoices invoiceRSStore, bills billRSStore, opts ReconcileOptions) *reconcileService {
	return &reconcileService{
		feed:     feed,
		accounts: accounts,
		parties:  parties,
		rules:    rules,
		invoices: invoices,
		bills:    bills,
		opts:     opts,
		clockNow: time.Now,
	}
}

// AutoCategorize re-runs the matcher over every pending transaction and
// persists suggestions for the ones that now match. A failure on one
// transaction never stops the sweep.
func (s *reconcileService) AutoCategorize(ctx context.Context, companyID string) (*CategorizeSweepResult, error) {
	pending, err := s.feed.ListByStatus(ctx, companyID, models.StatusPending)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	result := &CategorizeSweepResult{Processed: len(pending)}

	for _, tx := range pending {
		if tx.Source == models.SourceManual {
			continue // user overrides are never recomputed
		}
		raw := models.RawTransaction{
			Date:        tx.Date,
			Description: tx.Description,
			Debit:       tx.Debit,
			Credit:      tx.Credit,
			Reference:   tx.Reference,
		}
		sug := categorize.Match(raw, snap)
		if !sug.Matched() && sug.PartyID == "" {
			continue
		}

		if err := s.feed.UpdateSuggestion(ctx, companyID, tx.TransactionID, sug.AccountID, sug.PartyID, sug.Confidence, sug.Source); err != nil {
			log.Warn("suggestion persist failed", "transaction_id", tx.TransactionID, "error", err)
			continue
		}
		if sug.RuleID != "" {
			if err := s.rules.IncrementUsage(ctx, companyID, sug.RuleID); err != nil {
				log.Warn("rule usage increment failed", "rule_id", sug.RuleID, "error", err)
			}
		}
		result.Categorized++
	}

	log.Info("auto-categorize sweep completed", "processed", result.Processed, "categorized", result.Categorized)
	return result, nil
}

// AutoReconcile links pending transactions to open invoices (money in) or
// bills (money out) by amount tolerance, date window and, when a party
// suggestion exists, counterparty. A transaction with one qualifying
// candidate advances to matched; zero or several candidates leave it
// pending — ambiguity is never auto-resolved.
func (s *reconcileService) AutoReconcile(ctx context.Context, companyID string) (*SweepResult, error) {
	pending, err := s.feed.ListByStatus(ctx, companyID, models.StatusPending)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoices.ListOpen(ctx, companyID)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListOpen(ctx, companyID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	result := &SweepResult{Processed: len(pending)}

	for _, tx := range pending {
		amount, isDebit := tx.Amount()
		if amount.IsZero() || tx.Date == "" {
			result.Skipped++
			continue
		}

		var invoiceID, billID string
		if isDebit {
			billID = s.pickBill(tx, amount, bills)
		} else {
			invoiceID = s.pickInvoice(tx, amount, invoices)
		}
		if invoiceID == "" && billID == "" {
			continue
		}

		if err := s.feed.MarkMatched(ctx, companyID, tx.TransactionID, invoiceID, billID); err != nil {
			log.Warn("match persist failed", "transaction_id", tx.TransactionID, "error", err)
			result.Skipped++
			continue
		}
		result.Matched++
	}

	log.Info("auto-reconcile sweep completed",
		"processed", result.Processed,
		"matched", result.Matched,
		"skipped", result.Skipped)
	return result, nil
}

func (s *reconcileService) pickInvoice(tx models.BankFeedTransaction, amount decimal.Decimal, invoices []models.Invoice) string {
	var candidates []models.Invoice
	for _, inv := range invoices {
		if s.qualifies(amount, tx.Date, inv.Outstanding, inv.InvoiceDate) {
			candidates = append(candidates, inv)
		}
	}
	if tx.SuggestedPartyID != "" {
		var byParty []models.Invoice
		for _, inv := range candidates {
			if inv.PartyID == tx.SuggestedPartyID {
				byParty = append(byParty, inv)
			}
		}
		if len(byParty) > 0 {
			candidates = byParty
		}
	}
	if len(candidates) != 1 {
		return ""
	}
	return candidates[0].InvoiceID
}

func (s *reconcileService) pickBill(tx models.BankFeedTransaction, amount decimal.Decimal, bills []models.Bill) string {
	var candidates []models.Bill
	for _, b := range bills {
		if s.qualifies(amount, tx.Date, b.Outstanding, b.BillDate) {
			candidates = append(candidates, b)
		}
	}
	if tx.SuggestedPartyID != "" {
		var byParty []models.Bill
		for _, b := range candidates {
			if b.PartyID == tx.SuggestedPartyID {
				byParty = append(byParty, b)
			}
		}
		if len(byParty) > 0 {
			candidates = byParty
		}
	}
	if len(candidates) != 1 {
		return ""
	}
	return candidates[0].BillID
}

func (s *reconcileService) qualifies(amount decimal.Decimal, txDate string, candidateAmount decimal.Decimal, candidateDate string) bool {
	if amount.Sub(candidateAmount).Abs().GreaterThan(s.opts.AmountTolerance) {
		return false
	}
	td, err1 := time.Parse("2006-01-02", txDate)
	cd, err2 := time.Parse("2006-01-02", candidateDate)
	if err1 != nil || err2 != nil {
		return false
	}
	days := td.Sub(cd).Hours() / 24
	if days < 0 {
		days = -days
	}
	return days <= float64(s.opts.DateWindowDays)
}

// ManualCategorize applies a user's override to a transaction and
// optionally grows the rule table from the correction.
func (s *reconcileService) ManualCategorize(ctx context.Context, companyID, transactionID string, req ManualCategorizeRequest) (*models.BankFeedTransaction, error) {
	if req.AccountID == "" {
		return nil, errs.NewValidationError("accountId is required")
	}

	tx, err := s.feed.Get(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errs.NewNotFoundError("bank feed transaction not found")
	}
	if tx.Status == models.StatusExcluded || tx.Status == models.StatusReconciled {
		return nil, errs.NewValidationError(fmt.Sprintf("cannot categorize a %s transaction", tx.Status))
	}

	account, err := s.accounts.Get(ctx, companyID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive || account.IsGroup {
		return nil, errs.NewNotFoundError("account not found")
	}

	if err := s.feed.UpdateSuggestion(ctx, companyID, transactionID, req.AccountID, req.PartyID, categorize.ConfidenceManual, models.SourceManual); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	if req.CreateRule {
		if err := s.createRuleFromCorrection(ctx, companyID, tx, req); err != nil {
			// The correction itself stood; rule creation is best effort.
			log.Warn("rule creation from correction failed", "transaction_id", transactionID, "error", err)
		}
	}

	log.Info("transaction manually categorized", "transaction_id", transactionID, "account_id", req.AccountID)
	return s.feed.Get(ctx, companyID, transactionID)
}

func (s *reconcileService) createRuleFromCorrection(ctx context.Context, companyID string, tx *models.BankFeedTransaction, req ManualCategorizeRequest) error {
	pattern := descriptionPattern(tx.Description)
	if pattern == "" {
		return errs.NewValidationError("description too short to derive a rule pattern")
	}

	now := s.clockNow()
	rule := &models.CategorizationRule{
		RuleID:          uuid.NewString(),
		CompanyID:       companyID,
		RuleName:        "Learned: " + pattern,
		Priority:        100, // learned rules defer to hand-authored ones
		TargetAccountID: req.AccountID,
		TargetPartyID:   req.PartyID,
		IsActive:        true,
		Conditions: []models.RuleCondition{
			{Field: "description", Operator: "contains", Value: pattern},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.rules.Create(ctx, rule)
}

// Confirm advances a matched transaction to reconciled. A reconciled
// transaction must reference exactly one matched entity, so the link set
// during matching is re-checked here.
func (s *reconcileService) Confirm(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error) {
	tx, err := s.feed.Get(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errs.NewNotFoundError("bank feed transaction not found")
	}
	if tx.Status != models.StatusMatched {
		return nil, errs.NewValidationError(fmt.Sprintf("cannot reconcile a %s transaction", tx.Status))
	}
	if matchedEntities(tx) != 1 {
		return nil, errs.NewValidationError("transaction must reference exactly one matched entity")
	}

	if err := s.feed.MarkReconciled(ctx, companyID, transactionID); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("transaction reconciled", "transaction_id", transactionID)
	return s.feed.Get(ctx, companyID, transactionID)
}

// Exclude opts a pending transaction out of bookkeeping, e.g. an internal
// transfer. Excluded is terminal.
func (s *reconcileService) Exclude(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error) {
	tx, err := s.feed.Get(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errs.NewNotFoundError("bank feed transaction not found")
	}
	if tx.Status != models.StatusPending {
		return nil, errs.NewValidationError(fmt.Sprintf("cannot exclude a %s transaction", tx.Status))
	}

	if err := s.feed.MarkExcluded(ctx, companyID, transactionID); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("transaction excluded", "transaction_id", transactionID)
	return s.feed.Get(ctx, companyID, transactionID)
}

func (s *reconcileService) snapshot(ctx context.Context, companyID string) (categorize.Snapshot, error) {
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

func matchedEntities(tx *models.BankFeedTransaction) int {
	n := 0
	for _, id := range []string{tx.MatchedInvoiceID, tx.MatchedBillID, tx.MatchedEntryID} {
		if id != "" {
			n++
		}
	}
	return n
}

// descriptionPattern derives a compact contains-pattern from a statement
// description: the first two whitespace tokens, which for bank narrations
// usually carry the payee or scheme name.
func descriptionPattern(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return fields[0] + " " + fields[1]
}
