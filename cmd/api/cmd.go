package main

import (
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankfeed-backend/internal/bootstrap"
	"github.com/ledgerkit/bankfeed-backend/internal/config"
	"github.com/ledgerkit/bankfeed-backend/internal/handlers"
	"github.com/ledgerkit/bankfeed-backend/internal/response"
	"github.com/ledgerkit/bankfeed-backend/internal/router"
	"github.com/ledgerkit/bankfeed-backend/internal/services"
	"github.com/ledgerkit/bankfeed-backend/internal/store"
)

func main() {
	cfg := config.New()

	boot, err := bootstrap.Run(cfg)
	if err != nil {
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer boot.Close()
	log := boot.Log

	// Stores
	accountStore := store.NewAccountStore(boot.DB)
	partyStore := store.NewPartyStore(boot.DB)
	fiscalYearStore := store.NewFiscalYearStore(boot.DB)
	ruleStore := store.NewRuleStore(boot.DB)
	feedStore := store.NewBankFeedStore(boot.DB)
	journalStore := store.NewJournalStore(boot.DB)
	invoiceStore := store.NewInvoiceStore(boot.DB)
	billStore := store.NewBillStore(boot.DB)

	// Services
	opts := services.DefaultReconcileOptions()
	if tol, err := decimal.NewFromString(cfg.AmountTolerance); err == nil {
		opts.AmountTolerance = tol
	} else {
		log.Warn("invalid reconcile tolerance, using default", "value", cfg.AmountTolerance)
	}
	if cfg.DateWindowDays > 0 {
		opts.DateWindowDays = cfg.DateWindowDays
	}

	statementSvc := services.NewStatementService(accountStore, partyStore, ruleStore, feedStore)
	importSvc := services.NewImportService(accountStore, fiscalYearStore, journalStore, feedStore)
	reconcileSvc := services.NewReconcileService(feedStore, accountStore, partyStore, ruleStore, invoiceStore, billStore, opts)
	ruleSvc := services.NewRuleService(ruleStore, accountStore)

	deps := &handlers.Deps{
		Log:             log,
		ResponseHandler: response.New(log),
		StatementSvc:    statementSvc,
		ImportSvc:       importSvc,
		ReconcileSvc:    reconcileSvc,
		RuleSvc:         ruleSvc,
	}

	r := router.New(deps, feedStore)

	log.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
