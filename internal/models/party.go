package models

import (
	"time"
)

type Party struct {
	PartyID   string    `json:"partyId"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // "customer" or "vendor"
	CreatedAt time.Time `json:"createdAt"`
}
