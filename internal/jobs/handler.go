package jobs

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/view"
)

// ApplicationChecker answers whether a jobseeker already applied to a
// listing. Implemented by the applications service.
type ApplicationChecker interface {
	HasApplied(ctx context.Context, jobID, userID int64) (bool, error)
}

// Handler serves the job pages and the job API.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	applications ApplicationChecker
	templates    *view.Engine
	csrfManager  *shared.CSRFManager
	validator    *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, applications ApplicationChecker, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		applications: applications,
		templates:    templates,
		csrfManager:  csrf,
		validator:    validator.New(),
	}
}

// MountPages registers the server-rendered job pages.
func (h *Handler) MountPages(r chi.Router) {
	r.Get("/jobs", h.showJobs)
	r.Get("/jobs/{id}", h.showJobDetail)
	r.Get("/post-job", h.showPostJob)
	r.Post("/post-job", h.handlePostJob)
	r.Get("/my-jobs", h.showMyJobs)
}

// MountAPI registers /api/jobs routes.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.apiList)
	r.Post("/", h.apiCreate)
	r.Get("/recruiter", h.apiListMine)
	r.Get("/{id}", h.apiGet)
}

// MountAdminAPI registers /api/admin/jobs routes.
func (h *Handler) MountAdminAPI(r chi.Router) {
	r.Get("/", h.apiAdminList)
	r.Put("/", h.apiChangeStatus)
	r.Delete("/", h.apiDelete)
}

type jobsPageData struct {
	Jobs       []Job
	Search     string
	Location   string
	Type       string
	Types      []string
	Pagination shared.Pagination
}

func (h *Handler) showJobs(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	filters := Filters{Search: q.Get("search"), Type: q.Get("type"), Location: q.Get("location")}
	list, pagination, err := h.service.Browse(r.Context(), actor, filters, page, 10)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, "pages/jobs.html", "Jobs", jobsPageData{
		Jobs:       list,
		Search:     filters.Search,
		Location:   filters.Location,
		Type:       filters.Type,
		Types:      Types,
		Pagination: pagination,
	})
}

type jobDetailPageData struct {
	Job            Job
	AlreadyApplied bool
}

func (h *Handler) showJobDetail(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	job, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data := jobDetailPageData{Job: job}
	if actor != nil && actor.HasRole(authz.RoleJobseeker) && h.applications != nil {
		applied, err := h.applications.HasApplied(r.Context(), job.ID, actor.ID)
		if err != nil {
			h.logger.Warn("check application", slog.Any("error", err), slog.Int64("job", job.ID))
		}
		data.AlreadyApplied = applied
	}
	h.render(w, r, "pages/job_detail.html", job.Title, data)
}

type postJobPageData struct {
	Form   CreateInput
	Types  []string
	Errors map[string]string
}

func (h *Handler) showPostJob(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/post_job.html", "Post a Job", postJobPageData{Types: Types, Form: CreateInput{Slots: 1}})
}

func (h *Handler) handlePostJob(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	slots, _ := strconv.Atoi(r.PostFormValue("slots"))
	form := CreateInput{
		Title:       r.PostFormValue("title"),
		Company:     r.PostFormValue("company"),
		Address:     r.PostFormValue("address"),
		Type:        r.PostFormValue("type"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
		Email:       r.PostFormValue("email"),
		Slots:       slots,
	}

	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}
	if len(formErrors) == 0 {
		if _, err := h.service.Create(r.Context(), actor, form); err != nil {
			h.logger.Error("create job", slog.Any("error", err))
			formErrors["general"] = shared.UserSafeMessage(err)
		}
	}
	if len(formErrors) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "pages/post_job.html", "Post a Job", postJobPageData{Form: form, Types: Types, Errors: formErrors})
		return
	}

	shared.FlashTo(r.Context(), shared.FlashSuccess, "Job submitted for review")
	http.Redirect(w, r, "/my-jobs", http.StatusSeeOther)
}

type myJobsPageData struct {
	Jobs []Job
}

func (h *Handler) showMyJobs(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.render(w, r, "pages/my_jobs.html", "My Jobs", myJobsPageData{Jobs: list})
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filters := Filters{Search: q.Get("search"), Type: q.Get("type"), Location: q.Get("location")}
	list, pagination, err := h.service.Browse(r.Context(), actor, filters, page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": list, "pagination": pagination})
}

func (h *Handler) apiGet(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid job ID")
		return
	}
	job, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *Handler) apiCreate(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	job, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *Handler) apiListMine(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": list})
}

func (h *Handler) apiAdminList(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filters := Filters{Search: q.Get("search"), Status: q.Get("status")}
	list, pagination, err := h.service.AdminList(r.Context(), actor, filters, page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": list, "pagination": pagination})
}

type changeStatusRequest struct {
	JobID  int64  `json:"jobId"`
	Status string `json:"status"`
}

func (h *Handler) apiChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	var req changeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	job, err := h.service.ChangeStatus(r.Context(), actor, req.JobID, req.Status)
	if err != nil {
		h.logger.Error("change job status", slog.Any("error", err), slog.Int64("job", req.JobID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Job updated successfully", "job": job})
}

type deleteJobRequest struct {
	JobID int64 `json:"jobId"`
}

func (h *Handler) apiDelete(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	var req deleteJobRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Delete(r.Context(), actor, req.JobID); err != nil {
		h.logger.Error("delete job", slog.Any("error", err), slog.Int64("job", req.JobID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Job and related applications deleted"})
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
