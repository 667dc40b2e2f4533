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

type RuleService interface {
	ListRules(ctx context.Context, companyID string) ([]models.CategorizationRule, error)
	CreateRule(ctx context.Context, companyID string, input services.RuleInput) (*models.CategorizationRule, error)
	UpdateRule(ctx context.Context, companyID, ruleID string, input services.RuleInput) (*models.CategorizationRule, error)
	DeleteRule(ctx context.Context, companyID, ruleID string) error
}

type ruleHandlers struct {
	ResponseHandler response.ResponseHandler
	RuleSvc         RuleService
}

func NewRuleHandlers(deps *Deps) *ruleHandlers {
	return &ruleHandlers{
		ResponseHandler: deps.ResponseHandler,
		RuleSvc:         deps.RuleSvc,
	}
}

func (h *ruleHandlers) RuleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRules)
	r.Post("/", h.CreateRule)
	r.Put("/{ruleID}", h.UpdateRule)
	r.Delete("/{ruleID}", h.DeleteRule)
	return r
}

func (h *ruleHandlers) ListRules(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())

	rules, err := h.RuleSvc.ListRules(r.Context(), companyID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, rules)
}

func (h *ruleHandlers) CreateRule(w http.ResponseWriter, r *http.Request) {
	var body services.RuleInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	companyID := middleware.CompanyID(r.Context())
	rule, err := h.RuleSvc.CreateRule(r.Context(), companyID, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, rule)
}

func (h *ruleHandlers) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var body services.RuleInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	companyID := middleware.CompanyID(r.Context())
	ruleID := chi.URLParam(r, "ruleID")

	rule, err := h.RuleSvc.UpdateRule(r.Context(), companyID, ruleID, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, rule)
}

func (h *ruleHandlers) DeleteRule(w http.ResponseWriter, r *http.Request) {
	companyID := middleware.CompanyID(r.Context())
	ruleID := chi.URLParam(r, "ruleID")

	if err := h.RuleSvc.DeleteRule(r.Context(), companyID, ruleID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
