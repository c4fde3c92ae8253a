package audithandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

// Directory is the listing side of the audit service.
type Directory interface {
	List(ctx context.Context, action, entityType string, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service Directory
}

func NewHandler(service Directory) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	action := r.URL.Query().Get("action")
	entityType := r.URL.Query().Get("entityType")

	events, err := h.Service.List(r.Context(), action, entityType, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
