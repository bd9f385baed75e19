// Package router wires the rows API handlers and middleware into one HTTP handler.
package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/rentkeeper/internal/metrics"
	"github.com/iudanet/rentkeeper/internal/server/handlers"
	"github.com/iudanet/rentkeeper/internal/server/middleware"
	"github.com/iudanet/rentkeeper/internal/server/storage"
	"github.com/iudanet/rentkeeper/pkg/api"
)

// Options are the router dependencies.
type Options struct {
	Logger      *slog.Logger
	Storage     storage.RowStorage
	Metrics     *metrics.ServerMetrics
	Gatherer    prometheus.Gatherer // nil отключает /metrics
	RateLimiter *middleware.RateLimiter
	JWT         handlers.JWTConfig
	Version     string
}

// New returns the server handler:
//
//	GET    /api/v1/health
//	GET    /metrics
//	GET    /rest/v1/{table}
//	POST   /rest/v1/{table}
//	DELETE /rest/v1/{table}
func New(opts Options) http.Handler {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewServerMetrics(prometheus.NewRegistry())
	}

	r := mux.NewRouter()

	r.Use(middleware.RecoveryMiddleware(opts.Logger))
	r.Use(middleware.LoggingWithSkip(opts.Logger, opts.Metrics, []string{api.HealthPath, api.MetricsPath}))

	health := handlers.NewHealthHandler(opts.Logger, opts.Storage, opts.Version)
	r.HandleFunc(api.HealthPath, health.Health).Methods(http.MethodGet)

	if opts.Gatherer != nil {
		r.Handle(api.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	rows := handlers.NewRowsHandler(opts.Logger, opts.Storage, opts.Metrics)
	rest := r.PathPrefix(strings.TrimSuffix(api.RowsPathPrefix, "/")).Subrouter()
	rest.Use(middleware.AuthMiddleware(opts.Logger, opts.JWT))
	if opts.RateLimiter != nil {
		rest.Use(middleware.RateLimitMiddleware(opts.RateLimiter, opts.Logger, opts.Metrics))
	}
	rest.HandleFunc("/{table}", rows.Select).Methods(http.MethodGet)
	rest.HandleFunc("/{table}", rows.Upsert).Methods(http.MethodPost)
	rest.HandleFunc("/{table}", rows.Delete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handlers.WriteError(opts.Logger, w, http.StatusNotFound, "endpoint not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handlers.WriteError(opts.Logger, w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
