package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type fiscalYearStore struct {
	db *sql.DB
}

func NewFiscalYearStore(db *sql.DB) *fiscalYearStore {
	return &fiscalYearStore{db: db}
}

func (s *fiscalYearStore) Create(ctx context.Context, fy *models.FiscalYear) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fiscal_years (fiscal_year_id, company_id, name, start_date, end_date, is_current)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fy.FiscalYearID, fy.CompanyID, fy.Name, fy.StartDate, fy.EndDate, fy.IsCurrent)
	return err
}

// Current returns nil, nil when the company has no active fiscal year;
// the importer turns that into NoActiveFiscalYear.
func (s *fiscalYearStore) Current(ctx context.Context, companyID string) (*models.FiscalYear, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fiscal_year_id, company_id, name, start_date, end_date, is_current
		FROM fiscal_years
		WHERE company_id = ? AND is_current = 1
		LIMIT 1`, companyID)

	var fy models.FiscalYear
	err := row.Scan(&fy.FiscalYearID, &fy.CompanyID, &fy.Name, &fy.StartDate, &fy.EndDate, &fy.IsCurrent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fy, nil
}
