package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var httpMeter = otel.Meter("telemetry/http")

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestMetrics counts requests and observes latency per app/method/route/
// status, and stamps the routed pattern on the active span (otelhttp does not
// add the route attribute after routing).
func RequestMetrics(appName string, next http.Handler) http.Handler {
	count, _ := httpMeter.Int64Counter("request_count",
		metric.WithDescription("App request count"),
	)
	latency, _ := httpMeter.Float64Histogram("request_latency_seconds",
		metric.WithDescription("Request latency"),
		metric.WithUnit("s"),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		} else {
			span := oteltrace.SpanFromContext(r.Context())
			span.SetAttributes(semconv.HTTPRoute(route))
		}

		attrs := metric.WithAttributes(
			attribute.String("app_name", appName),
			attribute.String("method", r.Method),
			attribute.String("endpoint", route),
			attribute.Int("http_status", rec.status),
		)
		if count != nil {
			count.Add(r.Context(), 1, attrs)
		}
		if latency != nil {
			latency.Record(r.Context(), time.Since(start).Seconds(), metric.WithAttributes(
				attribute.String("app_name", appName),
				attribute.String("endpoint", route),
			))
		}
	})
}
