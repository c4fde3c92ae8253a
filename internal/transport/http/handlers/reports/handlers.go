package reportshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/org"
	"scorecard/internal/domain/reports"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Audit   *audit.Service
}

func NewHandler(service *reports.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/scorecard/{orgID}", h.handleScorecardPDF)
}

func (h *Handler) handleScorecardPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID := chi.URLParam(r, "orgID")

	path, err := h.Service.GenerateScorecardPDF(r.Context(), orgID)
	if errors.Is(err, org.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate scorecard report", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "report.scorecard", "organization", orgID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit report.scorecard failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=scorecard-"+orgID+".pdf")
	http.ServeFile(w, r, path)
}
