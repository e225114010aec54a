package applications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/view"
)

// Handler serves the application pages and API.
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

// MountPages registers the server-rendered application pages.
func (h *Handler) MountPages(r chi.Router) {
	r.Post("/jobs/{id}/apply", h.handleApply)
	r.Get("/applications", h.showApplications)
	r.Get("/applicants", h.showApplicants)
}

// MountAPI registers /api/applications routes.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.apiListMine)
	r.Post("/", h.apiApply)
	r.Get("/job/{jobId}", h.apiListForJob)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	jobID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	_, err = h.service.Apply(r.Context(), actor, jobID, r.PostFormValue("coverNote"))
	if err != nil {
		if sess != nil {
			msg := shared.UserSafeMessage(err)
			if errors.Is(err, httpx.ErrDuplicate) {
				msg = "You have already applied to this job"
			}
			sess.Flash(shared.FlashError, msg)
			http.Redirect(w, r, "/jobs/"+strconv.FormatInt(jobID, 10), http.StatusSeeOther)
			return
		}
		httpx.RespondError(w, err)
		return
	}

	shared.FlashTo(r.Context(), shared.FlashSuccess, "Application submitted")
	http.Redirect(w, r, "/jobs/"+strconv.FormatInt(jobID, 10), http.StatusSeeOther)
}

type applicationsPageData struct {
	Applications []WithJob
}

func (h *Handler) showApplications(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, "pages/applications.html", "My Applications", applicationsPageData{Applications: list})
}

type applicantsPageData struct {
	Job        jobs.Job
	Applicants []WithApplicant
}

func (h *Handler) showApplicants(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	jobID, err := strconv.ParseInt(r.URL.Query().Get("jobId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid job ID")
		return
	}
	job, list, err := h.service.ListForJob(r.Context(), actor, jobID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, "pages/applicants.html", "Applicants", applicantsPageData{Job: job, Applicants: list})
}

func (h *Handler) apiListMine(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"applications": list})
}

type applyRequest struct {
	JobID     int64  `json:"jobId"`
	CoverNote string `json:"coverNote"`
}

func (h *Handler) apiApply(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	var req applyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	app, err := h.service.Apply(r.Context(), actor, req.JobID, req.CoverNote)
	if err != nil {
		h.logger.Error("apply to job", slog.Any("error", err), slog.Int64("job", req.JobID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, app)
}

func (h *Handler) apiListForJob(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid job ID")
		return
	}
	_, list, err := h.service.ListForJob(r.Context(), actor, jobID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"applications": list})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		CurrentUser: authz.PrincipalFromContext(r.Context()),
		Data:        data,
	}
	if err := h.templates.Render(w, name, viewData); err != nil {
		h.logger.Error("render page", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
