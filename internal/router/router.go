package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerkit/bankfeed-backend/internal/handlers"
	"github.com/ledgerkit/bankfeed-backend/internal/middleware"
)

func New(deps *handlers.Deps, transactions handlers.TransactionLister) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.CompanyScope)
		rules := handlers.NewRuleHandlers(deps).RuleRoutes()
		r.Mount("/bankfeed", handlers.NewBankFeedHandlers(deps, transactions).BankFeedRoutes(rules))
	})

	return r
}
