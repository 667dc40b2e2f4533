package store

import (
	"database/sql"
)

// Migrate creates the bankfeed schema. Statements are idempotent so the
// call is safe on every boot. Money columns are TEXT holding exact decimal
// strings; SQLite REAL would silently round.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'expense',
			is_group INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_company ON accounts(company_id, is_active)`,

		`CREATE TABLE IF NOT EXISTS parties (
			party_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'customer',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_company ON parties(company_id)`,

		`CREATE TABLE IF NOT EXISTS fiscal_years (
			fiscal_year_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			is_current INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS categorization_rules (
			rule_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 100,
			conditions TEXT NOT NULL DEFAULT '[]',
			target_account_id TEXT NOT NULL,
			target_party_id TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			usage_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_company ON categorization_rules(company_id, is_active, priority)`,

		`CREATE TABLE IF NOT EXISTS bank_feed_transactions (
			transaction_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			bank_account_id TEXT NOT NULL DEFAULT '',
			txn_date TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			debit TEXT,
			credit TEXT,
			balance TEXT,
			reference TEXT NOT NULL DEFAULT '',
			suggested_account_id TEXT NOT NULL DEFAULT '',
			suggested_party_id TEXT NOT NULL DEFAULT '',
			confidence INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT 'none',
			status TEXT NOT NULL DEFAULT 'pending',
			matched_invoice_id TEXT NOT NULL DEFAULT '',
			matched_bill_id TEXT NOT NULL DEFAULT '',
			matched_entry_id TEXT NOT NULL DEFAULT '',
			created_entry_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feed_company_status ON bank_feed_transactions(company_id, status)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			entry_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			fiscal_year_id TEXT NOT NULL,
			entry_number TEXT NOT NULL,
			entry_date TEXT NOT NULL DEFAULT '',
			narration TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(company_id, fiscal_year_id, entry_number)
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entry_lines (
			line_id TEXT PRIMARY KEY,
			entry_id TEXT NOT NULL REFERENCES journal_entries(entry_id),
			account_id TEXT NOT NULL,
			party_id TEXT NOT NULL DEFAULT '',
			debit TEXT NOT NULL DEFAULT '0',
			credit TEXT NOT NULL DEFAULT '0',
			narration TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lines_entry ON journal_entry_lines(entry_id)`,

		`CREATE TABLE IF NOT EXISTS invoices (
			invoice_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			party_id TEXT NOT NULL DEFAULT '',
			invoice_date TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			total TEXT NOT NULL DEFAULT '0',
			outstanding TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'open'
		)`,

		`CREATE TABLE IF NOT EXISTS bills (
			bill_id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			party_id TEXT NOT NULL DEFAULT '',
			bill_date TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			total TEXT NOT NULL DEFAULT '0',
			outstanding TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'open'
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
