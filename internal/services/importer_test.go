package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/pkg/helpers"
)

type importFakeAccountStore struct {
	accounts map[string]*models.Account
}

func (f *importFakeAccountStore) Get(ctx context.Context, companyID, accountID string) (*models.Account, error) {
	return f.accounts[accountID], nil
}

type importFakeFYStore struct {
	fy *models.FiscalYear
}

func (f *importFakeFYStore) Current(ctx context.Context, companyID string) (*models.FiscalYear, error) {
	return f.fy, nil
}

type importFakeJournalStore struct {
	created   []*models.JournalEntry
	createErr error
}

func (f *importFakeJournalStore) MaxEntryNumber(ctx context.Context, companyID, fiscalYearID, prefix string) (string, error) {
	var max string
	for _, e := range f.created {
		if e.CompanyID == companyID && e.FiscalYearID == fiscalYearID && len(e.EntryNumber) >= len(prefix) && e.EntryNumber[:len(prefix)] == prefix && e.EntryNumber > max {
			max = e.EntryNumber
		}
	}
	return max, nil
}

func (f *importFakeJournalStore) Create(ctx context.Context, entry *models.JournalEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, entry)
	return nil
}

type importFakeFeedStore struct {
	txs    map[string]*models.BankFeedTransaction
	linked map[string]string
}

func (f *importFakeFeedStore) Get(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error) {
	return f.txs[transactionID], nil
}

func (f *importFakeFeedStore) SetCreatedEntry(ctx context.Context, companyID, transactionID, entryID string) error {
	if f.linked == nil {
		f.linked = map[string]string{}
	}
	f.linked[transactionID] = entryID
	if tx, ok := f.txs[transactionID]; ok {
		tx.CreatedEntryID = entryID
	}
	return nil
}

func newImportFixture() (*importService, *importFakeJournalStore, *importFakeFeedStore) {
	accounts := &importFakeAccountStore{accounts: map[string]*models.Account{
		"bank":   {AccountID: "bank", Name: "HDFC Current", IsActive: true},
		"a-rent": {AccountID: "a-rent", Name: "Rent Expense", IsActive: true},
	}}
	years := &importFakeFYStore{fy: &models.FiscalYear{FiscalYearID: "fy1", Name: "2024-25", IsCurrent: true}}
	journal := &importFakeJournalStore{}
	feed := &importFakeFeedStore{txs: map[string]*models.BankFeedTransaction{}}
	return NewImportService(accounts, years, journal, feed), journal, feed
}

func debitRow(accountID, amount string) ImportRow {
	d := mustDec(amount)
	return ImportRow{AccountID: accountID, Debit: &d, Date: "2024-04-01", Description: "RENT PAYMENT"}
}

func creditRow(accountID, amount string) ImportRow {
	c := mustDec(amount)
	return ImportRow{AccountID: accountID, Credit: &c, Date: "2024-04-02", Description: "CUSTOMER PAYMENT"}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestImportCreatesBalancedTwoLineEntries(t *testing.T) {
	svc, journal, _ := newImportFixture()

	res, err := svc.ImportTransactions(helpers.TestCtx(), "c1", ImportRequest{
		BankAccountID: "bank",
		Rows:          []ImportRow{debitRow("a-rent", "50000"), creditRow("a-rent", "75000")},
	})
	if err != nil {
		t.Fatalf("ImportTransactions returned error: %v", err)
	}
	if res.Created != 2 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	for _, e := range journal.created {
		if len(e.Lines) != 2 {
			t.Fatalf("entry %s has %d lines, want 2", e.EntryNumber, len(e.Lines))
		}
		if !e.Balanced() {
			t.Fatalf("entry %s is not balanced", e.EntryNumber)
		}
		if e.Status != "draft" {
			t.Fatalf("entry %s status = %q, want draft", e.EntryNumber, e.Status)
		}
	}

	// Money out: counterparty debited, bank credited.
	out := journal.created[0]
	if out.Lines[0].AccountID != "a-rent" || !out.Lines[0].Debit.Equal(mustDec("50000")) {
		t.Fatalf("debit leg wrong: %+v", out.Lines[0])
	}
	if out.Lines[1].AccountID != "bank" || !out.Lines[1].Credit.Equal(mustDec("50000")) {
		t.Fatalf("credit leg wrong: %+v", out.Lines[1])
	}

	// Money in: bank debited, counterparty credited.
	in := journal.created[1]
	if in.Lines[0].AccountID != "bank" || in.Lines[1].AccountID != "a-rent" {
		t.Fatalf("credit-row legs wrong: %+v", in.Lines)
	}
}

func TestImportSequentialEntryNumbers(t *testing.T) {
	svc, journal, _ := newImportFixture()
	ctx := helpers.TestCtx()

	if _, err := svc.ImportTransactions(ctx, "c1", ImportRequest{
		BankAccountID: "bank",
		Rows:          []ImportRow{debitRow("a-rent", "100"), debitRow("a-rent", "200")},
	}); err != nil {
		t.Fatalf("first batch error: %v", err)
	}
	if _, err := svc.ImportTransactions(ctx, "c1", ImportRequest{
		BankAccountID: "bank",
		Rows:          []ImportRow{debitRow("a-rent", "300")},
	}); err != nil {
		t.Fatalf("second batch error: %v", err)
	}

	want := []string{"BK/2024-25/0001", "BK/2024-25/0002", "BK/2024-25/0003"}
	for i, e := range journal.created {
		if e.EntryNumber != want[i] {
			t.Fatalf("entry %d number = %q, want %q", i, e.EntryNumber, want[i])
		}
	}
}

func TestImportPerRowErrorsDoNotAbortBatch(t *testing.T) {
	svc, journal, _ := newImportFixture()

	both := debitRow("a-rent", "100")
	c := mustDec("100")
	both.Credit = &c

	res, err := svc.ImportTransactions(helpers.TestCtx(), "c1", ImportRequest{
		BankAccountID: "bank",
		Rows: []ImportRow{
			{Debit: both.Debit, Date: "2024-04-01"}, // missing account
			both,                                    // both sides set
			{AccountID: "a-rent", Date: "2024-04-01"}, // missing amount
			debitRow("a-rent", "500"),                 // valid
		},
	})
	if err != nil {
		t.Fatalf("ImportTransactions returned error: %v", err)
	}
	if res.Created != 1 || len(journal.created) != 1 {
		t.Fatalf("expected exactly one created entry, got %+v", res)
	}
	if len(res.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %+v", res.Errors)
	}
	if res.Errors[0].Index != 0 || res.Errors[1].Index != 1 || res.Errors[2].Index != 2 {
		t.Fatalf("row error indices wrong: %+v", res.Errors)
	}
	if journal.created[0].EntryNumber != "BK/2024-25/0001" {
		t.Fatalf("failed rows must not consume sequence numbers, got %q", journal.created[0].EntryNumber)
	}
}

func TestImportNoActiveFiscalYear(t *testing.T) {
	svc, _, _ := newImportFixture()
	svc.years = &importFakeFYStore{fy: nil}

	_, err := svc.ImportTransactions(helpers.TestCtx(), "c1", ImportRequest{
		BankAccountID: "bank",
		Rows:          []ImportRow{debitRow("a-rent", "100")},
	})
	if _, ok := err.(*errs.NoActiveFiscalYearError); !ok {
		t.Fatalf("expected NoActiveFiscalYearError, got %v", err)
	}
}

func TestImportUnknownBankAccount(t *testing.T) {
	svc, _, _ := newImportFixture()

	_, err := svc.ImportTransactions(helpers.TestCtx(), "c1", ImportRequest{
		BankAccountID: "nope",
		Rows:          []ImportRow{debitRow("a-rent", "100")},
	})
	if _, ok := err.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestImportIdempotentPerFeedTransaction(t *testing.T) {
	svc, journal, feed := newImportFixture()
	d := mustDec("50000")
	feed.txs["tx-1"] = &models.BankFeedTransaction{
		TransactionID: "tx-1",
		CompanyID:     "c1",
		Debit:         &d,
		Status:        models.StatusPending,
	}

	row := debitRow("a-rent", "50000")
	row.TransactionID = "tx-1"
	ctx := helpers.TestCtx()

	res, err := svc.ImportTransactions(ctx, "c1", ImportRequest{BankAccountID: "bank", Rows: []ImportRow{row}})
	if err != nil || res.Created != 1 {
		t.Fatalf("first import failed: res=%+v err=%v", res, err)
	}
	if feed.linked["tx-1"] != journal.created[0].EntryID {
		t.Fatalf("created entry id not written back to feed transaction")
	}

	// Retry of the same batch must not create a second entry.
	res, err = svc.ImportTransactions(ctx, "c1", ImportRequest{BankAccountID: "bank", Rows: []ImportRow{row}})
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if res.Created != 0 || len(res.Errors) != 1 || res.Errors[0].Error != "already imported" {
		t.Fatalf("retry should be rejected per-row, got %+v", res)
	}
	if len(journal.created) != 1 {
		t.Fatalf("retry created a duplicate entry")
	}
}
