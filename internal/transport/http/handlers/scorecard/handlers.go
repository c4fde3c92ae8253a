package scorecardhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/alerts"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Handler struct {
	Service *scorecard.Service
	Alerts  *alerts.Service
	Audit   *audit.Service
}

func NewHandler(service *scorecard.Service, alertSvc *alerts.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Alerts: alertSvc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scorecard", func(r chi.Router) {
		r.Get("/elements", h.handleListElements)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/elements", h.handleCreateElement)
		r.Get("/elements/{elementID}", h.handleGetElement)
		r.With(middleware.RequireRole(auth.RoleEditor)).Put("/elements/{elementID}", h.handleUpdateElement)
		r.With(middleware.RequireRole(auth.RoleEditor)).Delete("/elements/{elementID}", h.handleDeleteElement)
		r.Get("/elements/{elementID}/kpi", h.handleGetElementKPI)

		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/kpis", h.handleCreateKPI)
		r.Get("/kpis/{kpiID}", h.handleGetKPI)
		r.With(middleware.RequireRole(auth.RoleEditor)).Put("/kpis/{kpiID}", h.handleUpdateKPI)
		r.Get("/kpis/{kpiID}/values", h.handleListValues)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/kpis/{kpiID}/values", h.handleRecordValue)
		r.Get("/kpis/{kpiID}/resolved-equation", h.handleResolvedEquation)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/kpis/{kpiID}/rollup", h.handleComputeRollup)
	})
}

func (h *Handler) handleListElements(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("organizationId")
	if orgID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "organizationId query parameter required", middleware.GetRequestID(r.Context()))
		return
	}
	elements, err := h.Service.ListElements(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "element_list_failed", "failed to list scorecard elements", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, elements, middleware.GetRequestID(r.Context()))
}

type elementRequest struct {
	OrganizationID string  `json:"organizationId"`
	ParentID       *string `json:"parentId"`
	ElementType    string  `json:"elementType"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Weight         float64 `json:"weight"`
	OrderIndex     int     `json:"orderIndex"`
	OwnerUserID    *string `json:"ownerUserId"`
}

func (payload elementRequest) toElement(id string) scorecard.Element {
	return scorecard.Element{
		ID:             id,
		OrganizationID: payload.OrganizationID,
		ParentID:       payload.ParentID,
		ElementType:    payload.ElementType,
		Name:           payload.Name,
		Description:    payload.Description,
		Weight:         payload.Weight,
		OrderIndex:     payload.OrderIndex,
		OwnerUserID:    payload.OwnerUserID,
	}
}

func (h *Handler) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload elementRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("organizationId", payload.OrganizationID, "organizationId is required")
	v.Required("name", payload.Name, "name is required")
	v.Required("elementType", payload.ElementType, "elementType is required")
	v.Enum("elementType", payload.ElementType, scorecard.ElementTypes, "must be one of perspective, objective, initiative, kpi")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateElement(r.Context(), payload.toElement(""))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "element_create_failed", "failed to create scorecard element", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.element.create", "scorecard_element", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.element.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetElement(w http.ResponseWriter, r *http.Request) {
	element, err := h.Service.GetElement(r.Context(), chi.URLParam(r, "elementID"))
	if errors.Is(err, scorecard.ErrElementNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "scorecard element not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "element_get_failed", "failed to load scorecard element", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, element, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	elementID := chi.URLParam(r, "elementID")

	var payload elementRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Enum("elementType", payload.ElementType, scorecard.ElementTypes, "must be one of perspective, objective, initiative, kpi")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	current, err := h.Service.GetElement(r.Context(), elementID)
	if errors.Is(err, scorecard.ErrElementNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "scorecard element not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "element_get_failed", "failed to load scorecard element", middleware.GetRequestID(r.Context()))
		return
	}
	payload.OrganizationID = current.OrganizationID

	if err := h.Service.UpdateElement(r.Context(), payload.toElement(elementID)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "element_update_failed", "failed to update scorecard element", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.element.update", "scorecard_element", elementID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.element.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": elementID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	elementID := chi.URLParam(r, "elementID")

	if err := h.Service.DeleteElement(r.Context(), elementID); err != nil {
		if errors.Is(err, scorecard.ErrElementNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "scorecard element not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "element_delete_failed", "failed to delete scorecard element", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.element.delete", "scorecard_element", elementID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit scorecard.element.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": elementID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetElementKPI(w http.ResponseWriter, r *http.Request) {
	kpi, err := h.Service.GetKPIByElement(r.Context(), chi.URLParam(r, "elementID"))
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_get_failed", "failed to load kpi", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpi, middleware.GetRequestID(r.Context()))
}

type kpiRequest struct {
	ElementID           string  `json:"elementId"`
	ScoringType         string  `json:"scoringType"`
	DataType            string  `json:"dataType"`
	AggregationType     string  `json:"aggregationType"`
	DecimalPrecision    int     `json:"decimalPrecision"`
	IsManualUpdate      bool    `json:"isManualUpdate"`
	CalculationEquation *string `json:"calculationEquation"`
	RollupEnabled       bool    `json:"rollupEnabled"`
}

func (payload kpiRequest) toKPI(id string) scorecard.KPI {
	return scorecard.KPI{
		ID:                  id,
		ElementID:           payload.ElementID,
		ScoringType:         payload.ScoringType,
		DataType:            payload.DataType,
		AggregationType:     payload.AggregationType,
		DecimalPrecision:    payload.DecimalPrecision,
		IsManualUpdate:      payload.IsManualUpdate,
		CalculationEquation: payload.CalculationEquation,
		RollupEnabled:       payload.RollupEnabled,
	}
}

func (h *Handler) handleCreateKPI(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload kpiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("elementId", payload.ElementID, "elementId is required")
	v.Enum("scoringType", payload.ScoringType, scorecard.ScoringTypes, "must be one of goal_redflag, yes_no, text")
	v.Enum("aggregationType", payload.AggregationType, scorecard.AggregationTypes, "must be one of sum, average, last_value")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateKPI(r.Context(), payload.toKPI(""))
	if errors.Is(err, scorecard.ErrMixedValueSources) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "exactly one of manual entry, equation, or rollup must be set", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_create_failed", "failed to create kpi", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.kpi.create", "kpi", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.kpi.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetKPI(w http.ResponseWriter, r *http.Request) {
	kpi, err := h.Service.GetKPI(r.Context(), chi.URLParam(r, "kpiID"))
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_get_failed", "failed to load kpi", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, kpi, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateKPI(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	kpiID := chi.URLParam(r, "kpiID")

	var payload kpiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	current, err := h.Service.GetKPI(r.Context(), kpiID)
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_get_failed", "failed to load kpi", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ElementID = current.ElementID

	if err := h.Service.UpdateKPI(r.Context(), payload.toKPI(kpiID)); err != nil {
		if errors.Is(err, scorecard.ErrMixedValueSources) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "exactly one of manual entry, equation, or rollup must be set", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "kpi_update_failed", "failed to update kpi", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.kpi.update", "kpi", kpiID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.kpi.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": kpiID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListValues(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	values, err := h.Service.ListValues(r.Context(), chi.URLParam(r, "kpiID"), page.Limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "value_list_failed", "failed to list kpi values", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, values, middleware.GetRequestID(r.Context()))
}

type recordValueRequest struct {
	PeriodDate      string  `json:"periodDate"`
	ActualValue     *string `json:"actualValue"`
	TargetValue     *string `json:"targetValue"`
	ThresholdRed    *string `json:"thresholdRed"`
	ThresholdYellow *string `json:"thresholdYellow"`
}

func (h *Handler) handleRecordValue(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	kpiID := chi.URLParam(r, "kpiID")

	var payload recordValueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	periodDate, ok := v.Date("periodDate", payload.PeriodDate)
	if !ok {
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	value, err := h.Service.RecordValue(r.Context(), kpiID, periodDate, payload.ActualValue, payload.TargetValue, payload.ThresholdRed, payload.ThresholdYellow)
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "value_record_failed", "failed to record kpi value", middleware.GetRequestID(r.Context()))
		return
	}

	fired := h.Alerts.EvaluateValue(r.Context(), value)

	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.value.record", "kpi_value", value.ID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.value.record failed", "err", err)
	}
	api.Created(w, map[string]any{"value": value, "alertsFired": fired}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolvedEquation(w http.ResponseWriter, r *http.Request) {
	kpiID := chi.URLParam(r, "kpiID")

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid asOf date", middleware.GetRequestID(r.Context()))
			return
		}
		asOf = parsed
	}

	resolved, err := h.Service.ResolvedEquation(r.Context(), kpiID, asOf)
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, scorecard.ErrNoEquation) {
		api.Fail(w, http.StatusBadRequest, "no_equation", "kpi has no calculation equation", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "equation_resolve_failed", "failed to resolve equation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"kpiId": kpiID, "resolvedEquation": resolved}, middleware.GetRequestID(r.Context()))
}

type rollupRequest struct {
	PeriodDate string `json:"periodDate"`
}

func (h *Handler) handleComputeRollup(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	kpiID := chi.URLParam(r, "kpiID")

	var payload rollupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	periodDate, ok := v.Date("periodDate", payload.PeriodDate)
	if !ok {
		v.Reject(w, middleware.GetRequestID(r.Context()))
		return
	}

	value, err := h.Service.ComputeRollup(r.Context(), kpiID, periodDate)
	if errors.Is(err, scorecard.ErrKPINotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "kpi not found", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, scorecard.ErrNotRollupKPI) {
		api.Fail(w, http.StatusBadRequest, "not_rollup", "kpi does not have rollup enabled", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rollup_failed", "failed to compute rollup", middleware.GetRequestID(r.Context()))
		return
	}

	fired := h.Alerts.EvaluateValue(r.Context(), value)

	if err := h.Audit.Record(r.Context(), user.UserID, "scorecard.rollup.compute", "kpi_value", value.ID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit scorecard.rollup.compute failed", "err", err)
	}
	api.Success(w, map[string]any{"value": value, "alertsFired": fired}, middleware.GetRequestID(r.Context()))
}
