package store

import (
	"context"
	"database/sql"

	"github.com/ledgerkit/bankfeed-backend/internal/models"
)

// Invoices and bills are owned by the invoicing/purchasing modules; the
// bankfeed core only reads open ones as reconciliation candidates. The
// Create methods exist for seeding and tests.

type invoiceStore struct {
	db *sql.DB
}

func NewInvoiceStore(db *sql.DB) *invoiceStore {
	return &invoiceStore{db: db}
}

func (s *invoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (invoice_id, company_id, party_id, invoice_date, due_date, total, outstanding, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceID, inv.CompanyID, inv.PartyID, inv.InvoiceDate, inv.DueDate,
		inv.Total.String(), inv.Outstanding.String(), inv.Status)
	return err
}

func (s *invoiceStore) ListOpen(ctx context.Context, companyID string) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, company_id, party_id, invoice_date, due_date, total, outstanding, status
		FROM invoices
		WHERE company_id = ? AND status = 'open'
		ORDER BY invoice_date, invoice_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		var total, outstanding string
		if err := rows.Scan(&inv.InvoiceID, &inv.CompanyID, &inv.PartyID, &inv.InvoiceDate,
			&inv.DueDate, &total, &outstanding, &inv.Status); err != nil {
			return nil, err
		}
		inv.Total = mustScanDec(total)
		inv.Outstanding = mustScanDec(outstanding)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

type billStore struct {
	db *sql.DB
}

func NewBillStore(db *sql.DB) *billStore {
	return &billStore{db: db}
}

func (s *billStore) Create(ctx context.Context, bill *models.Bill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (bill_id, company_id, party_id, bill_date, due_date, total, outstanding, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.BillID, bill.CompanyID, bill.PartyID, bill.BillDate, bill.DueDate,
		bill.Total.String(), bill.Outstanding.String(), bill.Status)
	return err
}

func (s *billStore) ListOpen(ctx context.Context, companyID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, company_id, party_id, bill_date, due_date, total, outstanding, status
		FROM bills
		WHERE company_id = ? AND status = 'open'
		ORDER BY bill_date, bill_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var b models.Bill
		var total, outstanding string
		if err := rows.Scan(&b.BillID, &b.CompanyID, &b.PartyID, &b.BillDate,
			&b.DueDate, &total, &outstanding, &b.Status); err != nil {
			return nil, err
		}
		b.Total = mustScanDec(total)
		b.Outstanding = mustScanDec(outstanding)
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
