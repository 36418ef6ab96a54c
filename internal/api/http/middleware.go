package http

import (
	"net/http"
	"strconv"

	"bulletin-board/internal/metrics"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentedResponseWriter captures the status code written by a handler.
type instrumentedResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *instrumentedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Instrument opens a span per request and counts requests by route pattern.
func Instrument(tracer trace.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "HTTP "+r.Method, trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
			defer span.End()

			iw := &instrumentedResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(iw, r.WithContext(ctx))

			path := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			span.SetName("HTTP " + r.Method + " " + path)
			span.SetAttributes(
				attribute.String("http.route", path),
				attribute.Int("http.status_code", iw.statusCode),
			)
			if iw.statusCode >= 500 {
				span.SetStatus(codes.Error, "Server Error")
			}

			metrics.HttpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(iw.statusCode)).Inc()
		})
	}
}
