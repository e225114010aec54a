package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jobport/jobport/internal/analytics"
	"github.com/jobport/jobport/internal/applications"
	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/auth"
	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/content"
	"github.com/jobport/jobport/internal/jobs"
	"github.com/jobport/jobport/internal/notify"
	"github.com/jobport/jobport/internal/observability"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/users"
	"github.com/jobport/jobport/internal/view"
	"github.com/jobport/jobport/tasks"
	"github.com/jobport/jobport/web"
)

// SiteStats supplies the public landing page counters.
type SiteStats interface {
	CountUsers(ctx context.Context, activeOnly bool) (int, error)
	CountJobs(ctx context.Context, status string) (int, error)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           *authz.Gate

	AuthHandler         *auth.Handler
	ProfileHandler      *users.PageHandler
	JobsHandler         *jobs.Handler
	ApplicationsHandler *applications.Handler
	NotifyHandler       *notify.Handler
	UsersHandler        *users.Handler
	ContentHandler      *content.Handler
	AuditHandler        *audit.Handler
	AnalyticsHandler    *analytics.Handler
	AnalyticsService    *analytics.Service
	TasksHandler        *tasks.Handler

	Stats   SiteStats
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the job board.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if authz.PrincipalFromRequest(r) != nil {
			http.Redirect(w, r, authz.DashboardPath, http.StatusSeeOther)
			return
		}
		renderPage(params, w, r, "pages/home.html", "JobPort", homeStats(params, r))
	})

	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		renderPage(params, w, r, "pages/dashboard.html", "Dashboard", nil)
	})

	r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		actor := authz.PrincipalFromRequest(r)
		data := struct{ Overview *analytics.Overview }{}
		if params.AnalyticsService != nil {
			overview, err := params.AnalyticsService.Overview(r.Context(), actor)
			if err != nil {
				params.Logger.Warn("load admin overview", slog.Any("error", err))
			} else {
				data.Overview = &overview
			}
		}
		renderPage(params, w, r, "pages/admin.html", "Admin", data)
	})

	mountStaticPages(params, r)

	r.Route("/auth", params.AuthHandler.MountRoutes)
	params.ProfileHandler.MountPages(r)
	params.JobsHandler.MountPages(r)
	params.ApplicationsHandler.MountPages(r)
	params.NotifyHandler.MountPages(r)

	r.Route("/api", func(r chi.Router) {
		r.Route("/jobs", params.JobsHandler.MountAPI)
		r.Route("/applications", params.ApplicationsHandler.MountAPI)
		r.Route("/notifications", params.NotifyHandler.MountAPI)

		r.Route("/admin", func(r chi.Router) {
			params.UsersHandler.MountAdminRoutes(r)
			r.Route("/jobs", params.JobsHandler.MountAdminAPI)
			r.Route("/content", params.ContentHandler.MountAdminRoutes)
			r.Route("/logs", params.AuditHandler.MountRoutes)
			if params.AnalyticsHandler != nil {
				r.Route("/analytics", params.AnalyticsHandler.MountAdminRoutes)
			}
			if params.TasksHandler != nil {
				r.Route("/tasks", params.TasksHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

type homePageData struct {
	ActiveJobs int
	TotalUsers int
}

// homeStats loads the landing page counters, tolerating failures: the page
// renders without the stats section when either count is unavailable.
func homeStats(params RouterParams, r *http.Request) *homePageData {
	if params.Stats == nil {
		return nil
	}
	activeJobs, err := params.Stats.CountJobs(r.Context(), jobs.StatusActive)
	if err != nil {
		params.Logger.Warn("count active jobs", slog.Any("error", err))
		return nil
	}
	totalUsers, err := params.Stats.CountUsers(r.Context(), false)
	if err != nil {
		params.Logger.Warn("count users", slog.Any("error", err))
		return nil
	}
	return &homePageData{ActiveJobs: activeJobs, TotalUsers: totalUsers}
}

type staticPageData struct {
	Heading    string
	Paragraphs []string
}

func mountStaticPages(params RouterParams, r chi.Router) {
	pages := map[string]staticPageData{
		"/about": {
			Heading: "About JobPort",
			Paragraphs: []string{
				"JobPort connects jobseekers with companies hiring across every industry.",
				"Recruiters post openings, our moderators review them, and candidates apply in one click.",
			},
		},
		"/contact": {
			Heading: "Contact",
			Paragraphs: []string{
				"Questions about an account or a listing? Email support@jobport.local and we will get back within one business day.",
			},
		},
		"/privacy": {
			Heading: "Privacy Policy",
			Paragraphs: []string{
				"We store only the data needed to run your account: your email, name and the applications you submit.",
				"We never sell personal data. Application details are visible only to the recruiter who posted the job.",
			},
		},
		"/terms": {
			Heading: "Terms of Service",
			Paragraphs: []string{
				"Listings must describe real openings. Postings are reviewed before publication and may be rejected.",
				"Accounts that abuse the platform can be deactivated by an administrator.",
			},
		},
	}
	for path, data := range pages {
		data := data
		r.Get(path, func(w http.ResponseWriter, r *http.Request) {
			renderPage(params, w, r, "pages/static.html", data.Heading, data)
		})
	}
}

func renderPage(params RouterParams, w http.ResponseWriter, r *http.Request, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
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
	if err := params.Templates.Render(w, name, viewData); err != nil {
		params.Logger.Error("render page", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// staticCacheHandler wraps a file server with a one hour Cache-Control header.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
