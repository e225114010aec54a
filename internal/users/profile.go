package users

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/view"
)

// PageHandler serves the self-service profile page.
type PageHandler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewPageHandler constructs a PageHandler instance.
func NewPageHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *PageHandler {
	return &PageHandler{logger: logger, service: service, templates: templates, csrfManager: csrf}
}

// MountPages registers the profile routes.
func (h *PageHandler) MountPages(r chi.Router) {
	r.Get("/profile", h.showProfile)
	r.Post("/profile", h.handleProfile)
}

type profileForm struct {
	Name    string
	Company string
	Title   string
	Skills  string
	Bio     string
}

type profilePageData struct {
	Form   profileForm
	Errors map[string]string
}

func (h *PageHandler) showProfile(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	user, err := h.service.Profile(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, profilePageData{Form: profileForm{
		Name:    user.Name,
		Company: user.Profile.Company,
		Title:   user.Profile.Title,
		Skills:  strings.Join(user.Profile.Skills, ", "),
		Bio:     user.Profile.Bio,
	}})
}

func (h *PageHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := profileForm{
		Name:    r.PostFormValue("name"),
		Company: r.PostFormValue("company"),
		Title:   r.PostFormValue("title"),
		Skills:  r.PostFormValue("skills"),
		Bio:     r.PostFormValue("bio"),
	}

	_, err := h.service.UpdateProfile(r.Context(), actor, ProfileInput{
		Name:    form.Name,
		Company: form.Company,
		Title:   form.Title,
		Bio:     form.Bio,
		Skills:  splitSkills(form.Skills),
	})
	if err != nil {
		h.logger.Error("update profile", slog.Any("error", err))
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, profilePageData{Form: form, Errors: map[string]string{"general": shared.UserSafeMessage(err)}})
		return
	}

	shared.FlashTo(r.Context(), shared.FlashSuccess, "Profile updated")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, data profilePageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Profile",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: authz.PrincipalFromContext(r.Context()),
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/profile.html", viewData); err != nil {
		h.logger.Error("render profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
