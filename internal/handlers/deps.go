package handlers

import (
	"log/slog"

	"github.com/ledgerkit/bankfeed-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	StatementSvc    StatementService
	ImportSvc       ImportService
	ReconcileSvc    ReconcileService
	RuleSvc         RuleService
}
