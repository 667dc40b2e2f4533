package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type accountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *accountStore {
	return &accountStore{db: db}
}

const accountColumns = `account_id, company_id, code, name, type, is_group, is_active, created_at, updated_at`

func (s *accountStore) Create(ctx context.Context, account *models.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.AccountID, account.CompanyID, account.Code, account.Name, account.Type,
		account.IsGroup, account.IsActive, account.CreatedAt, account.UpdatedAt)
	return err
}

// Get returns nil, nil when the account does not exist or belongs to
// another company; callers translate that into their own error type.
func (s *accountStore) Get(ctx context.Context, companyID, accountID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE company_id = ? AND account_id = ?`, companyID, accountID)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return account, err
}

// ListActiveLeaves returns the matcher's account universe: active,
// non-group entries for the company.
func (s *accountStore) ListActiveLeaves(ctx context.Context, companyID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE company_id = ? AND is_active = 1 AND is_group = 0
		ORDER BY code, name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.AccountID, &a.CompanyID, &a.Code, &a.Name, &a.Type,
		&a.IsGroup, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
