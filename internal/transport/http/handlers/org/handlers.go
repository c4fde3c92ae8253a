package orghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/org"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Handler struct {
	Service   *org.Service
	Scorecard *scorecard.Service
	Audit     *audit.Service
}

func NewHandler(service *org.Service, scorecardSvc *scorecard.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Scorecard: scorecardSvc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/", h.handleCreate)
		r.Get("/{orgID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleEditor)).Put("/{orgID}", h.handleUpdate)
		r.Get("/{orgID}/descendants", h.handleDescendants)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_list_failed", "failed to list organizations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, orgs, middleware.GetRequestID(r.Context()))
}

type createOrgRequest struct {
	ParentID      *string `json:"parentId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	IsTemplate    bool    `json:"isTemplate"`
	TemplateOrgID string  `json:"templateOrgId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload.ParentID, payload.Name, payload.Description, payload.IsTemplate)
	if errors.Is(err, org.ErrParentNotFound) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "parent organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_create_failed", "failed to create organization", middleware.GetRequestID(r.Context()))
		return
	}

	replicated := 0
	if payload.TemplateOrgID != "" {
		plan, err := h.Scorecard.ReplicateTemplate(r.Context(), payload.TemplateOrgID, id)
		if err != nil {
			api.FailWithDetails(w, http.StatusUnprocessableEntity, "replication_failed", "organization created but template replication failed",
				map[string]string{"organizationId": id, "reason": err.Error()}, middleware.GetRequestID(r.Context()))
			return
		}
		replicated = len(plan.Elements)
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "org.create", "organization", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit org.create failed", "err", err)
	}
	api.Created(w, map[string]any{"id": id, "replicatedElements": replicated}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	organization, err := h.Service.Get(r.Context(), chi.URLParam(r, "orgID"))
	if errors.Is(err, org.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_get_failed", "failed to load organization", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, organization, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID := chi.URLParam(r, "orgID")

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Update(r.Context(), orgID, payload.Name, payload.Description); err != nil {
		if errors.Is(err, org.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "org_update_failed", "failed to update organization", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "org.update", "organization", orgID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit org.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": orgID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDescendants(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	if _, err := h.Service.Get(r.Context(), orgID); err != nil {
		if errors.Is(err, org.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "org_get_failed", "failed to load organization", middleware.GetRequestID(r.Context()))
		return
	}
	ids, err := h.Service.DescendantIDs(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_descendants_failed", "failed to walk organization tree", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"organizationId": orgID, "descendantIds": ids}, middleware.GetRequestID(r.Context()))
}
