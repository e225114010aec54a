package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
)

// Handler serves the admin account and user management API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountAdminRoutes registers /api/admin routes for account management.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Route("/admins", func(r chi.Router) {
		r.Get("/", h.listAdmins)
		r.Post("/", h.createAdmin)
		r.Put("/", h.updateAdmin)
		r.Delete("/", h.deleteAdmin)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Put("/{id}/status", h.setUserStatus)
	})
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	admins, err := h.service.ListAdmins(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, admins)
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)

	var input CreateAdminInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateAdmin(r.Context(), actor, input)
	if err != nil {
		h.logger.Error("create admin", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Admin account created successfully",
		"id":      created.ID,
	})
}

type updateAdminRequest struct {
	TargetAdminID int64  `json:"targetAdminId"`
	Action        string `json:"action"`
	Role          string `json:"role,omitempty"`
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)

	var req updateAdminRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.UpdateAdmin(r.Context(), actor, req.TargetAdminID, req.Action, req.Role); err != nil {
		h.logger.Error("update admin", slog.Any("error", err), slog.Int64("target", req.TargetAdminID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Admin account updated successfully"})
}

type deleteAdminRequest struct {
	TargetAdminID int64 `json:"targetAdminId"`
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)

	var req deleteAdminRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.DeleteAdmin(r.Context(), actor, req.TargetAdminID); err != nil {
		h.logger.Error("delete admin", slog.Any("error", err), slog.Int64("target", req.TargetAdminID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Admin account deleted successfully"})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, pagination, err := h.service.ListUsers(r.Context(), actor, r.URL.Query().Get("role"), page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": list, "pagination": pagination})
}

type setStatusRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) setUserStatus(w http.ResponseWriter, r *http.Request) {
	actor := authz.PrincipalFromRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user ID")
		return
	}

	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.SetUserStatus(r.Context(), actor, id, req.Active); err != nil {
		h.logger.Error("set user status", slog.Any("error", err), slog.Int64("target", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}
