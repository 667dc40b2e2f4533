package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/logger"
)

// entryNumberPrefix marks entries created from the bank feed.
const entryNumberPrefix = "BK"

// --- Dependencies (minimal interfaces scoped to this service) ---

type accountISStore interface {
	Get(ctx context.Context, companyID, accountID string) (*models.Account, error)
}

type fiscalYearISStore interface {
	Current(ctx context.Context, companyID string) (*models.FiscalYear, error)
}

type journalISStore interface {
	MaxEntryNumber(ctx context.Context, companyID, fiscalYearID, prefix string) (string, error)
	Create(ctx context.Context, entry *models.JournalEntry) error
}

type feedISStore interface {
	Get(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error)
	SetCreatedEntry(ctx context.Context, companyID, transactionID, entryID string) error
}

type ImportRow struct {
	TransactionID string           `json:"transactionId,omitempty"` // persisted feed row, for idempotency
	AccountID     string           `json:"accountId"`
	Debit         *decimal.Decimal `json:"debit,omitempty"`
	Credit        *decimal.Decimal `json:"credit,omitempty"`
	PartyID       string           `json:"partyId,omitempty"`
	Date          string           `json:"date,omitempty"`
	Description   string           `json:"description,omitempty"`
}

type ImportRequest struct {
	BankAccountID string      `json:"bankAccountId"`
	Rows          []ImportRow `json:"rows"`
}

type ImportRowError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created  int              `json:"created"`
	EntryIDs []string         `json:"entryIds"`
	Errors   []ImportRowError `json:"errors"`
}

type importService struct {
	accounts accountISStore
	years    fiscalYearISStore
	journal  journalISStore
	feed     feedISStore
	clockNow func() time.Time

	// Serializes entry-number allocation per (company, fiscal year):
	// numbering is read-max-then-insert and would duplicate under
	// concurrent imports otherwise.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewImportService(accounts accountISStore, years fiscalYearISStore, journal journalISStore, feed feedISStore) *importService {
	return &importService{
		accounts: accounts,
		years:    years,
		journal:  journal,
		feed:     feed,
		clockNow: time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ImportTransactions turns approved statement rows into balanced draft
// journal entries. Batch-wide preconditions (bank account, fiscal year)
// abort everything; row-level problems are collected and the rest of the
// batch proceeds. Partial success is the normal outcome.
func (s *importService) ImportTransactions(ctx context.Context, companyID string, req ImportRequest) (*ImportResult, error) {
	bank, err := s.accounts.Get(ctx, companyID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if bank == nil || !bank.IsActive || bank.IsGroup {
		return nil, errs.NewNotFoundError("bank account not found")
	}

	fy, err := s.years.Current(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if fy == nil {
		return nil, errs.NewNoActiveFiscalYearError()
	}

	lock := s.numberLock(companyID, fy.FiscalYearID)
	lock.Lock()
	defer lock.Unlock()

	prefix := fmt.Sprintf("%s/%s/", entryNumberPrefix, fy.Name)
	next, err := s.nextSequence(ctx, companyID, fy.FiscalYearID, prefix)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{EntryIDs: []string{}, Errors: []ImportRowError{}}
	log := logger.FromContext(ctx)

	for i, row := range req.Rows {
		if msg := validateRow(row); msg != "" {
			result.Errors = append(result.Errors, ImportRowError{Index: i, Error: msg})
			continue
		}

		var feedTx *models.BankFeedTransaction
		if row.TransactionID != "" {
			feedTx, err = s.feed.Get(ctx, companyID, row.TransactionID)
			if err != nil {
				result.Errors = append(result.Errors, ImportRowError{Index: i, Error: err.Error()})
				continue
			}
			if feedTx == nil {
				result.Errors = append(result.Errors, ImportRowError{Index: i, Error: "bank feed transaction not found"})
				continue
			}
			if feedTx.CreatedEntryID != "" {
				result.Errors = append(result.Errors, ImportRowError{Index: i, Error: "already imported"})
				continue
			}
		}

		entry := s.buildEntry(companyID, fy.FiscalYearID, req.BankAccountID, fmt.Sprintf("%s%04d", prefix, next), row)
		if err := s.journal.Create(ctx, entry); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Index: i, Error: err.Error()})
			continue
		}
		next++

		if feedTx != nil {
			if err := s.feed.SetCreatedEntry(ctx, companyID, feedTx.TransactionID, entry.EntryID); err != nil {
				// The entry exists; losing the back-reference would allow a
				// duplicate on retry, so surface it against the row.
				result.Errors = append(result.Errors, ImportRowError{Index: i, Error: "entry created but feed link failed: " + err.Error()})
			}
		}

		result.Created++
		result.EntryIDs = append(result.EntryIDs, entry.EntryID)
	}

	log.Info("bank feed import completed",
		"bank_account_id", req.BankAccountID,
		"created", result.Created,
		"failed", len(result.Errors))
	return result, nil
}

func validateRow(row ImportRow) string {
	if row.AccountID == "" {
		return "missing account"
	}
	if row.Debit == nil && row.Credit == nil {
		return "missing amount"
	}
	if row.Debit != nil && row.Credit != nil {
		return "row cannot carry both debit and credit"
	}
	if row.Debit != nil && !row.Debit.IsPositive() {
		return "debit must be positive"
	}
	if row.Credit != nil && !row.Credit.IsPositive() {
		return "credit must be positive"
	}
	return ""
}

// buildEntry constructs the canonical two-line form. A statement debit is
// money leaving the bank: debit the counterparty account, credit the bank.
// A statement credit is money entering: debit the bank, credit the
// counterparty account. Entries are drafts; posting is a human decision.
func (s *importService) buildEntry(companyID, fiscalYearID, bankAccountID, entryNumber string, row ImportRow) *models.JournalEntry {
	entryID := uuid.NewString()
	date := row.Date
	if date == "" {
		date = s.clockNow().Format("2006-01-02")
	}

	var amount decimal.Decimal
	var debitAccount, creditAccount string
	var debitParty, creditParty string
	if row.Debit != nil {
		amount = *row.Debit
		debitAccount, creditAccount = row.AccountID, bankAccountID
		debitParty = row.PartyID
	} else {
		amount = *row.Credit
		debitAccount, creditAccount = bankAccountID, row.AccountID
		creditParty = row.PartyID
	}

	return &models.JournalEntry{
		EntryID:      entryID,
		CompanyID:    companyID,
		FiscalYearID: fiscalYearID,
		EntryNumber:  entryNumber,
		EntryDate:    date,
		Narration:    row.Description,
		Status:       "draft",
		CreatedAt:    s.clockNow(),
		Lines: []models.JournalEntryLine{
			{
				LineID:    uuid.NewString(),
				EntryID:   entryID,
				AccountID: debitAccount,
				PartyID:   debitParty,
				Debit:     amount,
				Credit:    decimal.Zero,
				Narration: row.Description,
			},
			{
				LineID:    uuid.NewString(),
				EntryID:   entryID,
				AccountID: creditAccount,
				PartyID:   creditParty,
				Debit:     decimal.Zero,
				Credit:    amount,
				Narration: row.Description,
			},
		},
	}
}

// nextSequence reads the highest issued entry number under the prefix and
// returns the following sequence value.
func (s *importService) nextSequence(ctx context.Context, companyID, fiscalYearID, prefix string) (int, error) {
	max, err := s.journal.MaxEntryNumber(ctx, companyID, fiscalYearID, prefix)
	if err != nil {
		return 0, err
	}
	if max == "" {
		return 1, nil
	}
	tail := max[strings.LastIndex(max, "/")+1:]
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, errs.NewDatabaseError("journal.MaxEntryNumber", "malformed entry number: "+max)
	}
	return n + 1, nil
}

func (s *importService) numberLock(companyID, fiscalYearID string) *sync.Mutex {
	key := companyID + "|" + fiscalYearID
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[key]; !ok {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}
