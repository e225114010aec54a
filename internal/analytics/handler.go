package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
)

// Handler serves the admin analytics API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers /api/admin/analytics routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.report)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))

	var (
		payload any
		err     error
	)
	switch reportType := q.Get("type"); reportType {
	case "", "overview":
		payload, err = h.service.Overview(r.Context(), actor)
	case "users":
		payload, err = h.service.Users(r.Context(), actor, days)
	case "jobs":
		payload, err = h.service.Jobs(r.Context(), actor, days)
	case "applications":
		payload, err = h.service.Applications(r.Context(), actor, days)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown report type "+strconv.Quote(reportType))
		return
	}
	if err != nil {
		h.logger.Error("analytics report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}
