package notify

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/view"
)

// Handler serves the notification page and API.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrfManager: csrf}
}

// MountPages registers the server-rendered notification routes.
func (h *Handler) MountPages(r chi.Router) {
	r.Get("/notifications", h.showNotifications)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
}

// MountAPI registers /api/notifications routes.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.apiList)
	r.Post("/{id}/read", h.apiMarkRead)
}

type notificationsPageData struct {
	Notifications []Notification
}

func (h *Handler) showNotifications(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Notifications",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: actor,
		Data:        notificationsPageData{Notifications: list},
	}
	if err := h.templates.Render(w, "pages/notifications.html", viewData); err != nil {
		h.logger.Error("render notifications", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.MarkRead(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (h *Handler) apiMarkRead(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid notification ID")
		return
	}
	if err := h.service.MarkRead(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
