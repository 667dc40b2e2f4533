package store

import (
	"context"
	"database/sql"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

type partyStore struct {
	db *sql.DB
}

func NewPartyStore(db *sql.DB) *partyStore {
	return &partyStore{db: db}
}

func (s *partyStore) Create(ctx context.Context, party *models.Party) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO parties (party_id, company_id, name, kind, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		party.PartyID, party.CompanyID, party.Name, party.Kind, party.CreatedAt)
	return err
}

func (s *partyStore) List(ctx context.Context, companyID string) ([]models.Party, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT party_id, company_id, name, kind, created_at
		FROM parties
		WHERE company_id = ?
		ORDER BY created_at, party_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		var p models.Party
		if err := rows.Scan(&p.PartyID, &p.CompanyID, &p.Name, &p.Kind, &p.CreatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}
