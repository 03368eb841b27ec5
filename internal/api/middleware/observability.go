package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/medibot/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

const unmatchedRoute = "unmatched"

// ObservabilityMiddleware wraps each request in a span and records request metrics.
// Metrics are labelled with the matched route pattern, never the raw path.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), "http.request")
			defer span.End()

			rec := newStatusRecorder(w)
			req := r.WithContext(ctx)
			start := time.Now()

			next.ServeHTTP(rec, req)

			// ServeMux sets Pattern on the request it routes.
			route := req.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			span.SetName(route)
			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rec.status),
			)
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, time.Since(start))
		})
	}
}
