package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
	"github.com/jobport/jobport/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/signin", h.showSignIn)
	r.Post("/signin", h.handleSignIn)
	r.Get("/signup", h.showSignUp)
	r.Post("/signup", h.handleSignUp)
	r.Post("/signout", h.handleSignOut)
}

type signInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type signInPageData struct {
	Form   signInForm
	Errors map[string]string
}

func (h *Handler) showSignIn(w http.ResponseWriter, r *http.Request) {
	h.renderSignIn(w, r, http.StatusOK, signInPageData{})
}

func (h *Handler) renderSignIn(w http.ResponseWriter, r *http.Request, status int, data signInPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	viewData := view.TemplateData{
		Title:       "Sign In",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/signin.html", viewData); err != nil {
		h.logger.Error("render signin", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := signInForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			formErrors["general"] = "Invalid email or password"
		} else {
			if sess == nil {
				h.logger.Error("session missing during signin")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess.SetUserID(user.ID)
			sess.Flash(shared.FlashSuccess, "Welcome back")
			expiresAt := time.Now().Add(h.sessionManager.TTL())
			if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
				h.logger.Warn("register session", slog.Any("error", err))
			}
			http.Redirect(w, r, authz.DashboardPath, http.StatusSeeOther)
			return
		}
	}

	h.renderSignIn(w, r, http.StatusBadRequest, signInPageData{Form: form, Errors: formErrors})
}

type signUpForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=jobseeker recruiter"`
}

type signUpPageData struct {
	Form   signUpForm
	Errors map[string]string
}

func (h *Handler) showSignUp(w http.ResponseWriter, r *http.Request) {
	h.renderSignUp(w, r, http.StatusOK, signUpPageData{})
}

func (h *Handler) renderSignUp(w http.ResponseWriter, r *http.Request, status int, data signUpPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	viewData := view.TemplateData{
		Title:       "Create Account",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/signup.html", viewData); err != nil {
		h.logger.Error("render signup", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := signUpForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			formErrors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(formErrors) == 0 {
		_, err := h.service.Register(r.Context(), RegisterInput{
			Email:    form.Email,
			Name:     form.Name,
			Password: form.Password,
			Role:     form.Role,
		})
		switch {
		case err == nil:
			if sess != nil {
				sess.Flash(shared.FlashSuccess, "Account created, please sign in")
			}
			http.Redirect(w, r, authz.SignInPath, http.StatusSeeOther)
			return
		case errors.Is(err, httpx.ErrDuplicate):
			formErrors["Email"] = "This email is already registered"
		case errors.Is(err, httpx.ErrValidation):
			formErrors["Role"] = "Choose jobseeker or recruiter"
		default:
			h.logger.Error("register account", slog.Any("error", err))
			formErrors["general"] = "Could not create the account, try again later"
		}
	}

	h.renderSignUp(w, r, http.StatusBadRequest, signUpPageData{Form: form, Errors: formErrors})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowSignInForTest exposes the GET handler for tests.
func (h *Handler) ShowSignInForTest(w http.ResponseWriter, r *http.Request) {
	h.showSignIn(w, r)
}

// HandleSignInForTest exposes the POST handler for tests.
func (h *Handler) HandleSignInForTest(w http.ResponseWriter, r *http.Request) {
	h.handleSignIn(w, r)
}

// HandleSignUpForTest exposes the POST handler for tests.
func (h *Handler) HandleSignUpForTest(w http.ResponseWriter, r *http.Request) {
	h.handleSignUp(w, r)
}
