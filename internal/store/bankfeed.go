package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type bankFeedStore struct {
	db *sql.DB
}

func NewBankFeedStore(db *sql.DB) *bankFeedStore {
	return &bankFeedStore{db: db}
}

const feedColumns = `transaction_id, company_id, bank_account_id, txn_date, description,
	debit, credit, balance, reference, suggested_account_id, suggested_party_id,
	confidence, source, status, matched_invoice_id, matched_bill_id, matched_entry_id,
	created_entry_id, created_at, updated_at`

// CreateBatch inserts a parsed statement atomically: either the whole
// batch lands or none of it does, so a failed upload can be retried
// without leaving stray rows.
func (s *bankFeedStore) CreateBatch(ctx context.Context, txs []models.BankFeedTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO bank_feed_transactions (`+feedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			t.TransactionID, t.CompanyID, t.BankAccountID, t.Date, t.Description,
			decToNull(t.Debit), decToNull(t.Credit), decToNull(t.Balance), t.Reference,
			t.SuggestedAccountID, t.SuggestedPartyID, t.ConfidenceScore, string(t.Source),
			string(t.Status), t.MatchedInvoiceID, t.MatchedBillID, t.MatchedEntryID,
			t.CreatedEntryID, t.CreatedAt, t.UpdatedAt); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

func (s *bankFeedStore) Get(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+feedColumns+`
		FROM bank_feed_transactions
		WHERE company_id = ? AND transaction_id = ?`, companyID, transactionID)

	tx, err := scanFeedTx(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tx, err
}

func (s *bankFeedStore) List(ctx context.Context, companyID string) ([]models.BankFeedTransaction, error) {
	return s.list(ctx, `
		SELECT `+feedColumns+`
		FROM bank_feed_transactions
		WHERE company_id = ?
		ORDER BY txn_date, created_at`, companyID)
}

func (s *bankFeedStore) ListByStatus(ctx context.Context, companyID string, status models.ReconciliationStatus) ([]models.BankFeedTransaction, error) {
	return s.list(ctx, `
		SELECT `+feedColumns+`
		FROM bank_feed_transactions
		WHERE company_id = ? AND status = ?
		ORDER BY txn_date, created_at`, companyID, string(status))
}

func (s *bankFeedStore) UpdateSuggestion(ctx context.Context, companyID, transactionID, accountID, partyID string, confidence int, source models.CategorizationSource) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_feed_transactions
		SET suggested_account_id = ?, suggested_party_id = ?, confidence = ?, source = ?, updated_at = ?
		WHERE company_id = ? AND transaction_id = ?`,
		accountID, partyID, confidence, string(source), time.Now(), companyID, transactionID)
	return err
}

func (s *bankFeedStore) MarkMatched(ctx context.Context, companyID, transactionID, invoiceID, billID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_feed_transactions
		SET status = ?, matched_invoice_id = ?, matched_bill_id = ?, updated_at = ?
		WHERE company_id = ? AND transaction_id = ?`,
		string(models.StatusMatched), invoiceID, billID, time.Now(), companyID, transactionID)
	return err
}

func (s *bankFeedStore) MarkReconciled(ctx context.Context, companyID, transactionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_feed_transactions
		SET status = ?, updated_at = ?
		WHERE company_id = ? AND transaction_id = ?`,
		string(models.StatusReconciled), time.Now(), companyID, transactionID)
	return err
}

func (s *bankFeedStore) MarkExcluded(ctx context.Context, companyID, transactionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_feed_transactions
		SET status = ?, updated_at = ?
		WHERE company_id = ? AND transaction_id = ?`,
		string(models.StatusExcluded), time.Now(), companyID, transactionID)
	return err
}

func (s *bankFeedStore) SetCreatedEntry(ctx context.Context, companyID, transactionID, entryID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bank_feed_transactions
		SET created_entry_id = ?, updated_at = ?
		WHERE company_id = ? AND transaction_id = ?`,
		entryID, time.Now(), companyID, transactionID)
	return err
}

func (s *bankFeedStore) list(ctx context.Context, query string, args ...any) ([]models.BankFeedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.BankFeedTransaction
	for rows.Next() {
		tx, err := scanFeedTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func scanFeedTx(row rowScanner) (*models.BankFeedTransaction, error) {
	var t models.BankFeedTransaction
	var debit, credit, balance sql.NullString
	var source, status string
	if err := row.Scan(&t.TransactionID, &t.CompanyID, &t.BankAccountID, &t.Date, &t.Description,
		&debit, &credit, &balance, &t.Reference, &t.SuggestedAccountID, &t.SuggestedPartyID,
		&t.ConfidenceScore, &source, &status, &t.MatchedInvoiceID, &t.MatchedBillID,
		&t.MatchedEntryID, &t.CreatedEntryID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Debit = nullToDec(debit)
	t.Credit = nullToDec(credit)
	t.Balance = nullToDec(balance)
	t.Source = models.CategorizationSource(source)
	t.Status = models.ReconciliationStatus(status)
	return &t, nil
}
