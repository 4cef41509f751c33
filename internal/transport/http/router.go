// Package httptransport assembles the public HTTP surface: middleware chain,
// health and metrics endpoints, and the domain handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/platform/middleware"
	screeninghandler "vigil/internal/screening/handler"
	watchlisthandler "vigil/internal/watchlist/handler"
)

// requestTimeout bounds every request end to end; screening carries its own
// shorter explanation timeout inside this envelope.
const requestTimeout = 60 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Screening screeninghandler.Service
	Watchlist watchlisthandler.Service
	Logger    *slog.Logger
}

// NewRouter wires middleware and all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	screeninghandler.New(deps.Screening, deps.Logger).Register(r)
	watchlisthandler.New(deps.Watchlist, deps.Logger).Register(r)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
