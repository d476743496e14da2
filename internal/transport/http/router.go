// Package httptransport is the JSON bridge between the wallet core and the UI
// shell. Handlers stay thin: they decode, call one core component, and encode.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"credwallet/pkg/platform/httputil"
)

// HealthFunc reports whether a backing dependency is reachable.
type HealthFunc func(ctx context.Context) error

// Deps are the mounted handlers. Metrics and Health are optional.
type Deps struct {
	Menus       *MenuHandler
	Credentials *CredentialHandler
	Metrics     http.Handler
	Health      HealthFunc
}

// NewRouter wires all endpoints behind the shared middleware chain.
func NewRouter(logger *slog.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestScope)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Menus != nil {
		deps.Menus.Register(r)
	}
	if deps.Credentials != nil {
		deps.Credentials.Register(r)
	}
	return r
}
