package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/observability"
	"github.com/wardenhq/warden/internal/platform/httpx"
	"github.com/wardenhq/warden/internal/shared"
)

// Handler manages permission and authorization endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	auth     auth.Middleware
	metrics  *observability.Metrics
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth auth.Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), auth: auth, metrics: metrics}
}

// MountPermissionRoutes registers /permissions endpoints.
func (h *Handler) MountPermissionRoutes(r chi.Router) {
	r.Use(h.auth.RequireIdentity)
	r.Get("/", h.listPermissions)
	r.Post("/", h.createPermission)
}

// MountRolePermissionRoutes registers per-role permission endpoints, nested
// under /roles/{roleID}.
func (h *Handler) MountRolePermissionRoutes(r chi.Router) {
	r.Use(h.auth.RequireIdentity)
	r.Get("/{roleID}/permissions", h.rolePermissions)
	r.Post("/{roleID}/permissions", h.assignPermission)
}

// MountAuthorizeRoutes registers the decision endpoint.
func (h *Handler) MountAuthorizeRoutes(r chi.Router) {
	r.Use(h.auth.RequireIdentity)
	r.Post("/", h.authorize)
}

type permissionView struct {
	ID       int64  `json:"id"`
	Action   string `json:"action"`
	Resource string `json:"resource"`
}

type createPermissionRequest struct {
	Action   string `json:"action" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}

type assignPermissionRequest struct {
	PermissionID int64 `json:"permission_id" validate:"required"`
}

type authorizeRequest struct {
	UserID   int64  `json:"user_id" validate:"required"`
	Action   string `json:"action" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	actor := shared.IdentityFromContext(r.Context())
	perms, err := h.service.ListPermissions(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "", permissionViews(perms))
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Action and resource required")
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	perm, err := h.service.CreatePermission(r.Context(), actor, req.Action, req.Resource)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Permission created", permissionView{ID: perm.ID, Action: perm.Action, Resource: perm.Resource})
}

func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role id")
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	perms, err := h.service.RolePermissions(r.Context(), actor, roleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "", permissionViews(perms))
}

func (h *Handler) assignPermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid role id")
		return
	}
	var req assignPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Permission id not provided")
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	if err := h.service.AssignPermission(r.Context(), actor, roleID, req.PermissionID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Permission assigned", nil)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "User id, action and resource required")
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	decision, err := h.service.Authorize(r.Context(), actor, req.UserID, req.Action, req.Resource)
	if err != nil {
		// An unknown requested user is a deny: count it and answer with the
		// decision reason, not the sentinel text.
		if errors.Is(err, shared.ErrNotFound) {
			h.metrics.CountDecision("deny")
			httpx.Fail(w, http.StatusNotFound, ReasonUserNotFound)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	if !decision.Allowed {
		h.metrics.CountDecision("deny")
		httpx.Fail(w, http.StatusForbidden, decision.Reason)
		return
	}
	h.metrics.CountDecision("allow")
	httpx.OK(w, decision.Reason, nil)
}

func permissionViews(perms []Permission) []permissionView {
	views := make([]permissionView, 0, len(perms))
	for _, perm := range perms {
		views = append(views, permissionView{ID: perm.ID, Action: perm.Action, Resource: perm.Resource})
	}
	return views
}
