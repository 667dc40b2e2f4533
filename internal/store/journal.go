package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type journalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *journalStore {
	return &journalStore{db: db}
}

// Create inserts the entry and its lines in one transaction; a journal
// entry without lines is meaningless and must never be visible.
func (s *journalStore) Create(ctx context.Context, entry *models.JournalEntry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO journal_entries (entry_id, company_id, fiscal_year_id, entry_number, entry_date, narration, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.CompanyID, entry.FiscalYearID, entry.EntryNumber,
		entry.EntryDate, entry.Narration, entry.Status, entry.CreatedAt); err != nil {
		return err
	}

	for _, line := range entry.Lines {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO journal_entry_lines (line_id, entry_id, account_id, party_id, debit, credit, narration)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			line.LineID, line.EntryID, line.AccountID, line.PartyID,
			line.Debit.String(), line.Credit.String(), line.Narration); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

// MaxEntryNumber returns the highest entry number under the prefix, or ""
// when none exists. Zero-padded sequences make lexicographic MAX correct.
// Callers must serialize the surrounding read-then-insert themselves.
func (s *journalStore) MaxEntryNumber(ctx context.Context, companyID, fiscalYearID, prefix string) (string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT MAX(entry_number)
		FROM journal_entries
		WHERE company_id = ? AND fiscal_year_id = ? AND entry_number LIKE ?`,
		companyID, fiscalYearID, prefix+"%")

	var max sql.NullString
	if err := row.Scan(&max); err != nil {
		return "", err
	}
	if !max.Valid {
		return "", nil
	}
	return max.String, nil
}

func (s *journalStore) Get(ctx context.Context, companyID, entryID string) (*models.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT entry_id, company_id, fiscal_year_id, entry_number, entry_date, narration, status, created_at
		FROM journal_entries
		WHERE company_id = ? AND entry_id = ?`, companyID, entryID)

	var e models.JournalEntry
	err := row.Scan(&e.EntryID, &e.CompanyID, &e.FiscalYearID, &e.EntryNumber,
		&e.EntryDate, &e.Narration, &e.Status, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT line_id, entry_id, account_id, party_id, debit, credit, narration
		FROM journal_entry_lines
		WHERE entry_id = ?
		ORDER BY line_id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.JournalEntryLine
		var debit, credit string
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.PartyID, &debit, &credit, &l.Narration); err != nil {
			return nil, err
		}
		l.Debit = mustScanDec(debit)
		l.Credit = mustScanDec(credit)
		e.Lines = append(e.Lines, l)
	}
	return &e, rows.Err()
}
