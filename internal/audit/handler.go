package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/platform/httpx"
	"github.com/wardenhq/warden/internal/shared"
)

// Handler exposes audit log queries and the on-demand retention trigger.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	auth          auth.Middleware
	scheduler     RetentionScheduler
	retainEntries int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth auth.Middleware, scheduler RetentionScheduler, retainEntries int64) *Handler {
	return &Handler{logger: logger, service: service, auth: auth, scheduler: scheduler, retainEntries: retainEntries}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.auth.RequireIdentity)
	r.Get("/logs", h.queryLogs)
	r.Post("/prune", h.triggerPrune)
}

func (h *Handler) queryLogs(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.Fail(w, http.StatusBadRequest, "Invalid hours value")
			return
		}
		hours = parsed
	}
	actor := shared.IdentityFromContext(r.Context())
	entries, err := h.service.QueryFor(r.Context(), actor, hours)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Line())
	}
	httpx.OK(w, fmt.Sprintf("%d entries", len(lines)), lines)
}

func (h *Handler) triggerPrune(w http.ResponseWriter, r *http.Request) {
	actor := shared.IdentityFromContext(r.Context())
	if err := h.service.RequestRetention(r.Context(), actor, h.scheduler, h.retainEntries); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, "Retention sweep scheduled", nil)
}
