package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zatekoja/medibot/internal/api/handlers"
	"github.com/zatekoja/medibot/internal/api/middleware"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	stageHandler   *handlers.StageHandler
	metrics        *observability.Metrics
	allowedOrigins []string
	checks         map[string]HealthCheck
}

// NewRouter creates a new router
func NewRouter(stageHandler *handlers.StageHandler, metrics *observability.Metrics, allowedOrigins []string) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		stageHandler:   stageHandler,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		checks:         map[string]HealthCheck{},
	}
}

// AddHealthCheck registers a dependency probed by GET /health.
func (r *Router) AddHealthCheck(name string, check HealthCheck) {
	r.checks[name] = check
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.health)

	r.mux.HandleFunc("GET /api/stages", r.stageHandler.ListStages)
	r.mux.HandleFunc("POST /api/stages/{stage}", r.stageHandler.InvokeStage)
	r.mux.HandleFunc("POST /api/ask", r.stageHandler.Ask)

	// Last wrap runs first
	var handler http.Handler = r.mux
	handler = middleware.Recoverer(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(r.checks))
	for name, check := range r.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       http.StatusText(status),
		"dependencies": results,
	})
}
