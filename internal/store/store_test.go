package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestJournalMaxEntryNumber(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	js := NewJournalStore(db)

	max, err := js.MaxEntryNumber(ctx, "c1", "fy1", "BK/2024-25/")
	if err != nil {
		t.Fatalf("MaxEntryNumber: %v", err)
	}
	if max != "" {
		t.Fatalf("expected empty max on fresh schema, got %q", max)
	}

	amount := decimal.NewFromInt(100)
	for i, num := range []string{"BK/2024-25/0001", "BK/2024-25/0002"} {
		entry := &models.JournalEntry{
			EntryID:      "e" + num[len(num)-1:],
			CompanyID:    "c1",
			FiscalYearID: "fy1",
			EntryNumber:  num,
			EntryDate:    "2024-04-01",
			Status:       "draft",
			CreatedAt:    time.Now(),
			Lines: []models.JournalEntryLine{
				{LineID: num + "-l1", EntryID: "e" + num[len(num)-1:], AccountID: "a1", Debit: amount, Credit: decimal.Zero},
				{LineID: num + "-l2", EntryID: "e" + num[len(num)-1:], AccountID: "a2", Debit: decimal.Zero, Credit: amount},
			},
		}
		if err := js.Create(ctx, entry); err != nil {
			t.Fatalf("create entry %d: %v", i, err)
		}
	}

	max, err = js.MaxEntryNumber(ctx, "c1", "fy1", "BK/2024-25/")
	if err != nil {
		t.Fatalf("MaxEntryNumber: %v", err)
	}
	if max != "BK/2024-25/0002" {
		t.Fatalf("max = %q, want BK/2024-25/0002", max)
	}

	got, err := js.Get(ctx, "c1", "e2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || len(got.Lines) != 2 || !got.Balanced() {
		t.Fatalf("entry round trip broken: %+v", got)
	}
}

func TestJournalDuplicateEntryNumberRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	js := NewJournalStore(db)

	entry := &models.JournalEntry{
		EntryID: "e1", CompanyID: "c1", FiscalYearID: "fy1",
		EntryNumber: "BK/2024-25/0001", Status: "draft", CreatedAt: time.Now(),
	}
	if err := js.Create(ctx, entry); err != nil {
		t.Fatalf("first create: %v", err)
	}
	entry.EntryID = "e2"
	if err := js.Create(ctx, entry); err == nil {
		t.Fatalf("duplicate entry number must violate unique constraint")
	}
}

func TestBankFeedRoundTripAndStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	fs := NewBankFeedStore(db)

	debit := decimal.NewFromInt(50000)
	now := time.Now()
	tx := models.BankFeedTransaction{
		TransactionID: "t1",
		CompanyID:     "c1",
		BankAccountID: "bank",
		Date:          "2024-04-01",
		Description:   "RENT PAYMENT",
		Debit:         &debit,
		Source:        models.SourceNone,
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := fs.CreateBatch(ctx, []models.BankFeedTransaction{tx}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := fs.Get(ctx, "c1", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Debit == nil || !got.Debit.Equal(debit) || got.Credit != nil {
		t.Fatalf("decimal round trip broken: %+v", got)
	}

	// Tenant scoping: another company must not see the row.
	other, err := fs.Get(ctx, "c2", "t1")
	if err != nil || other != nil {
		t.Fatalf("cross-company read must return nothing, got %+v err=%v", other, err)
	}

	if err := fs.MarkMatched(ctx, "c1", "t1", "inv-1", ""); err != nil {
		t.Fatalf("MarkMatched: %v", err)
	}
	pending, err := fs.ListByStatus(ctx, "c1", models.StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("matched row still listed as pending")
	}

	got, _ = fs.Get(ctx, "c1", "t1")
	if got.Status != models.StatusMatched || got.MatchedInvoiceID != "inv-1" {
		t.Fatalf("match fields not persisted: %+v", got)
	}
}

func TestRuleOrderingAndConditions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	rs := NewRuleStore(db)

	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, priority int, createdAt time.Time) *models.CategorizationRule {
		return &models.CategorizationRule{
			RuleID:          id,
			CompanyID:       "c1",
			RuleName:        id,
			Priority:        priority,
			TargetAccountID: "a1",
			IsActive:        true,
			Conditions:      []models.RuleCondition{{Field: "description", Operator: "contains", Value: "x"}},
			CreatedAt:       createdAt,
			UpdatedAt:       createdAt,
		}
	}

	// Insert out of order; same priority ties break by creation order.
	if err := rs.Create(ctx, mk("r-late", 5, base.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := rs.Create(ctx, mk("r-early", 5, base)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := rs.Create(ctx, mk("r-first", 1, base.Add(2*time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	rules, err := rs.ListActive(ctx, "c1")
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	wantOrder := []string{"r-first", "r-early", "r-late"}
	for i, w := range wantOrder {
		if rules[i].RuleID != w {
			t.Fatalf("rule order[%d] = %q, want %q (got %+v)", i, rules[i].RuleID, w, rules)
		}
	}
	if len(rules[0].Conditions) != 1 || rules[0].Conditions[0].Operator != "contains" {
		t.Fatalf("conditions JSON round trip broken: %+v", rules[0].Conditions)
	}

	if err := rs.IncrementUsage(ctx, "c1", "r-first"); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}
	got, err := rs.Get(ctx, "c1", "r-first")
	if err != nil || got == nil || got.UsageCount != 1 {
		t.Fatalf("usage count not persisted: %+v err=%v", got, err)
	}
}
