package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/platform/httpx"
	"github.com/wardenhq/warden/internal/shared"
)

// Handler manages role endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	auth    auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, auth: auth}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireIdentity)
		r.Post("/", h.createRole)
	})
}

type roleView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type createRoleRequest struct {
	Name string `json:"role"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]roleView, 0, len(result))
	for _, role := range result {
		views = append(views, roleView{ID: role.ID, Name: role.Name})
	}
	httpx.OK(w, "", views)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	actor := shared.IdentityFromContext(r.Context())
	if _, err := h.service.CreateRole(r.Context(), actor, req.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, "Role created", nil)
}
