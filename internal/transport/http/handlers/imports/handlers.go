package importshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/imports"
	"scorecard/internal/domain/schedule"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Handler struct {
	Service *imports.Service
	Jobs    *jobs.Service
	Audit   *audit.Service
}

func NewHandler(service *imports.Service, jobSvc *jobs.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Jobs: jobSvc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/", h.handleCreate)
		r.Get("/due", h.handleDue)
		r.Get("/{importID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleEditor)).Put("/{importID}", h.handleUpdate)
		r.With(middleware.RequireRole(auth.RoleEditor)).Delete("/{importID}", h.handleDelete)
		r.With(middleware.RequireRole(auth.RoleEditor)).Post("/{importID}/run", h.handleRunNow)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		list []imports.SavedImport
		err  error
	)
	if orgID := r.URL.Query().Get("organizationId"); orgID != "" {
		list, err = h.Service.ListByOrganization(r.Context(), orgID)
	} else {
		list, err = h.Service.List(r.Context())
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_list_failed", "failed to list saved imports", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

// handleDue previews which enabled imports are due at a given instant
// without claiming or running anything.
func (h *Handler) handleDue(w http.ResponseWriter, r *http.Request) {
	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid at parameter", middleware.GetRequestID(r.Context()))
			return
		}
		at = parsed
	}
	due, err := h.Service.Due(r.Context(), at)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_due_failed", "failed to check due imports", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"at": at, "due": due}, middleware.GetRequestID(r.Context()))
}

type importRequest struct {
	OrganizationID string          `json:"organizationId"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Config         json.RawMessage `json:"config"`
	Schedule       schedule.Config `json:"schedule"`
	Enabled        bool            `json:"enabled"`
}

func (payload importRequest) toImport(id string) imports.SavedImport {
	return imports.SavedImport{
		ID:             id,
		OrganizationID: payload.OrganizationID,
		Name:           payload.Name,
		Kind:           payload.Kind,
		ConfigJSON:     payload.Config,
		Schedule:       payload.Schedule,
		Enabled:        payload.Enabled,
	}
}

func invalidImport(err error) bool {
	return errors.Is(err, imports.ErrUnknownKind) ||
		errors.Is(err, schedule.ErrUnknownFrequency) ||
		errors.Is(err, schedule.ErrInvalidTime) ||
		errors.Is(err, schedule.ErrInvalidDayOfWeek) ||
		errors.Is(err, schedule.ErrInvalidDayOfMonth) ||
		errors.Is(err, schedule.ErrInvalidMonthOfYear) ||
		errors.Is(err, schedule.ErrMissingCron)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload importRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("organizationId", payload.OrganizationID, "organizationId is required")
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload.toImport(""))
	if invalidImport(err) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_create_failed", "failed to create saved import", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.create", "saved_import", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit import.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	imp, err := h.Service.Get(r.Context(), chi.URLParam(r, "importID"))
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "saved import not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_get_failed", "failed to load saved import", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, imp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	importID := chi.URLParam(r, "importID")

	var payload importRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	current, err := h.Service.Get(r.Context(), importID)
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "saved import not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_get_failed", "failed to load saved import", middleware.GetRequestID(r.Context()))
		return
	}
	payload.OrganizationID = current.OrganizationID

	if err := h.Service.Update(r.Context(), payload.toImport(importID)); err != nil {
		if invalidImport(err) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "import_update_failed", "failed to update saved import", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.update", "saved_import", importID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit import.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": importID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	importID := chi.URLParam(r, "importID")

	if err := h.Service.Delete(r.Context(), importID); err != nil {
		if errors.Is(err, imports.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "saved import not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "import_delete_failed", "failed to delete saved import", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.delete", "saved_import", importID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit import.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": importID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunNow(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	importID := chi.URLParam(r, "importID")

	imp, err := h.Service.Get(r.Context(), importID)
	if errors.Is(err, imports.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "saved import not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_get_failed", "failed to load saved import", middleware.GetRequestID(r.Context()))
		return
	}

	now := time.Now().UTC()
	detail, err := h.Jobs.RunNow(r.Context(), jobs.JobImportRun, imp.Name, func(ctx context.Context) (any, error) {
		return h.Jobs.ExecuteImport(ctx, imp, now)
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_run_failed", "import run failed", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.run", "saved_import", importID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit import.run failed", "err", err)
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}
