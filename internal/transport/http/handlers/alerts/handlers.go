package alertshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/alerts"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Handler struct {
	Service *alerts.Service
	Audit   *audit.Service
}

func NewHandler(service *alerts.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/rules", h.handleListRules)
		r.Get("/rules/{ruleID}", h.handleGetRule)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/rules", h.handleCreateRule)
		r.With(middleware.RequireRole(auth.RoleEditor)).Delete("/rules/{ruleID}", h.handleDeleteRule)
		r.Get("/", h.handleListAlerts)
	})
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	kpiID := r.URL.Query().Get("kpiId")
	if kpiID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "kpiId query parameter required", middleware.GetRequestID(r.Context()))
		return
	}
	rules, err := h.Service.ListRules(r.Context(), kpiID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rule_list_failed", "failed to list alert rules", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rules, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Service.GetRule(r.Context(), chi.URLParam(r, "ruleID"))
	if errors.Is(err, alerts.ErrRuleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "alert rule not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rule_get_failed", "failed to load alert rule", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rule, middleware.GetRequestID(r.Context()))
}

type ruleRequest struct {
	KPIID        string   `json:"kpiId"`
	Condition    string   `json:"condition"`
	Color        string   `json:"color"`
	ScoreBelow   *float64 `json:"scoreBelow"`
	NotifyUserID *string  `json:"notifyUserId"`
	Enabled      bool     `json:"enabled"`
}

func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("kpiId", payload.KPIID, "kpiId is required")
	v.Required("condition", payload.Condition, "condition is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateRule(r.Context(), alerts.Rule{
		KPIID:        payload.KPIID,
		Condition:    payload.Condition,
		Color:        payload.Color,
		ScoreBelow:   payload.ScoreBelow,
		NotifyUserID: payload.NotifyUserID,
		Enabled:      payload.Enabled,
	})
	if errors.Is(err, alerts.ErrUnknownCondition) || errors.Is(err, alerts.ErrInvalidCondition) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rule_create_failed", "failed to create alert rule", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "alert.rule.create", "alert_rule", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit alert.rule.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	ruleID := chi.URLParam(r, "ruleID")

	if err := h.Service.DeleteRule(r.Context(), ruleID); err != nil {
		if errors.Is(err, alerts.ErrRuleNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "alert rule not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "rule_delete_failed", "failed to delete alert rule", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "alert.rule.delete", "alert_rule", ruleID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit alert.rule.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": ruleID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	kpiID := r.URL.Query().Get("kpiId")
	if kpiID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "kpiId query parameter required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.ListAlerts(r.Context(), kpiID, page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "alert_list_failed", "failed to list alerts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}
