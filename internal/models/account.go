package models

import (
	"time"
)

type Account struct {
	AccountID string    `json:"accountId"`
	CompanyID string    `json:"companyId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // "asset", "liability", "income", "expense", "equity"
	IsGroup   bool      `json:"isGroup"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
