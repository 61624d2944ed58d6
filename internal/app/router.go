package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/observability"
	"github.com/wardenhq/warden/internal/rbac"
	"github.com/wardenhq/warden/internal/roles"
	"github.com/wardenhq/warden/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	RolesHandler *roles.Handler
	RBACHandler  *rbac.Handler
	AuditHandler *audit.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with warden defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"message":"Healthy"}`))
	})

	var loginLimit int
	if params.Config != nil {
		loginLimit = params.Config.LoginRateLimit
	}
	r.Group(func(r chi.Router) {
		r.Use(LoginRateLimiter(loginLimit))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/roles", func(r chi.Router) {
		params.RolesHandler.MountRoutes(r)
		r.Group(params.RBACHandler.MountRolePermissionRoutes)
	})
	r.Route("/permissions", params.RBACHandler.MountPermissionRoutes)
	r.Route("/authorize", params.RBACHandler.MountAuthorizeRoutes)
	r.Route("/audit", params.AuditHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
