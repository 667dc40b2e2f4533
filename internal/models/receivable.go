package models

import (
	"github.com/shopspring/decimal"
)

// Invoice is a receivable owned by the invoicing module; the reconciler
// only reads open ones as matching candidates for money-in lines.
type Invoice struct {
	InvoiceID   string          `json:"invoiceId"`
	CompanyID   string          `json:"companyId"`
	PartyID     string          `json:"partyId"`
	InvoiceDate string          `json:"invoiceDate"` // YYYY-MM-DD
	DueDate     string          `json:"dueDate,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"` // "open", "paid", "void"
}

// Bill is a payable; candidates for money-out lines.
type Bill struct {
	BillID      string          `json:"billId"`
	CompanyID   string          `json:"companyId"`
	PartyID     string          `json:"partyId"`
	BillDate    string          `json:"billDate"`
	DueDate     string          `json:"dueDate,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
}
