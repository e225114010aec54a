package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
)

// Handler serves the admin log viewer API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers log routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)

	q := r.URL.Query()
	filters := Filters{Action: q.Get("action")}
	if v := q.Get("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.From = t
		}
	}
	if v := q.Get("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive end of day.
			filters.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if v := q.Get("adminId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.ActorID = id
		}
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))

	result, err := h.service.List(r.Context(), actor, filters)
	if err != nil {
		h.logger.Error("list admin logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
