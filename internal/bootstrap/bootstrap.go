package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ledgerkit/bankfeed-backend/internal/config"
	"github.com/ledgerkit/bankfeed-backend/internal/store"
	"github.com/ledgerkit/bankfeed-backend/pkg/logger"
)

// Bootstrap holds process-wide resources created at startup.
type Bootstrap struct {
	Log *slog.Logger
	DB  *sql.DB
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	log := logger.New(cfg.LogLevel, logger.NewJSONHandler)

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Bootstrap{Log: log, DB: db}, nil
}

func (b *Bootstrap) Close() {
	if err := b.DB.Close(); err != nil {
		b.Log.Error("failed to close database", "error", err)
	}
}
