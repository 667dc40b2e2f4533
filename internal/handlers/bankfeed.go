package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerkit/bankfeed-backend/internal/errs"
	"github.com/ledgerkit/bankfeed-backend/internal/middleware"
	"github.com/ledgerkit/bankfeed-backend/internal/models"
	"github.com/ledgerkit/bankfeed-backend/internal/response"
	"github.com/ledgerkit/bankfeed-backend/internal/services"
)

type StatementService interface {
	ParseStatement(ctx context.Context, companyID string, req services.ParseStatementRequest) (*services.ParseResult, error)
}

type ImportService interface {
	ImportTransactions(ctx context.Context, companyID string, req services.ImportRequest) (*services.ImportResult, error)
}

type ReconcileService interface {
	AutoCategorize(ctx context.Context, companyID string) (*services.CategorizeSweepResult, error)
	AutoReconcile(ctx context.Context, companyID string) (*services.SweepResult, error)
	ManualCategorize(ctx context.Context, companyID, transactionID string, req services.ManualCategorizeRequest) (*models.BankFeedTransaction, error)
	Confirm(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error)
	Exclude(ctx context.Context, companyID, transactionID string) (*models.BankFeedTransaction, error)
}

type TransactionLister interface {
	List(ctx context.Context, companyID string) ([]models.BankFeedTransaction, error)
	ListByStatus(ctx context.Context, companyID string, status models.ReconciliationStatus) ([]models.BankFeedTransaction, error)
}

type bankFeedHandlers struct {
	ResponseHandler response.ResponseHandler
	StatementSvc    StatementService
	ImportSvc       ImportService
	ReconcileSvc    ReconcileService
	Transactions    TransactionLister
}

func NewBankFeedHandlers(deps *Deps, transactions TransactionLister) *bankFeedHandlers {
	return &bankFeedHandlers{
		ResponseHandler: deps.ResponseHandler,
		StatementSvc:    deps.StatementSvc,
		ImportSvc:       deps.ImportSvc,
		ReconcileSvc:    deps.ReconcileSvc,
		Transactions:    transactions,
	}
}

func (h *bankFeedHandlers) BankFeedRoutes(rules chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Post("/statements/parse", h.ParseStatement)
	r.Mount("/rules", rules)
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/import", h.ImportTransactions)
		r.Post("/auto-categorize", h.AutoCategorize)
		r.Post("/auto-reconcile", h.AutoReconcile)
		r.Post("/{txID}/categorize", h.CategorizeTransaction)
		r.Post("/{txID}/reconcile", h.ConfirmTransaction)
		r.Post("/{txID}/exclude", h.ExcludeTransaction)
	})
	return r
}

func (h *bankFeedHandlers) ParseStatement(w http.ResponseWriter, r *http.Request) {
	var body services.ParseStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	companyID := middleware.CompanyID(r.Context())
	result, err := h.StatementSvc.ParseStatement(r.Context(), companyID, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *bankFeedHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())

	var txs []models.BankFeedTransaction
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		txs, err = h.Transactions.ListByStatus(r.Context(), companyID, models.ReconciliationStatus(status))
	} else {
		txs, err = h.Transactions.List(r.Context(), companyID)
	}
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, txs)
}

func (h *bankFeedHandlers) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	var body services.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	companyID := middleware.CompanyID(r.Context())
	result, err := h.ImportSvc.ImportTransactions(r.Context(), companyID, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *bankFeedHandlers) AutoCategorize(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())

	result, err := h.ReconcileSvc.AutoCategorize(r.Context(), companyID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *bankFeedHandlers) AutoReconcile(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())

	result, err := h.ReconcileSvc.AutoReconcile(r.Context(), companyID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, result)
}

func (h *bankFeedHandlers) CategorizeTransaction(w http.ResponseWriter, r *http.Request) {
	var body services.ManualCategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	companyID := middleware.CompanyID(r.Context())
	txID := chi.URLParam(r, "txID")

	tx, err := h.ReconcileSvc.ManualCategorize(r.Context(), companyID, txID, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func (h *bankFeedHandlers) ConfirmTransaction(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())
	txID := chi.URLParam(r, "txID")

	tx, err := h.ReconcileSvc.Confirm(r.Context(), companyID, txID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}

func (h *bankFeedHandlers) ExcludeTransaction(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())
	txID := chi.URLParam(r, "txID")

	tx, err := h.ReconcileSvc.Exclude(r.Context(), companyID, txID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, tx)
}
