package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"vigil/internal/screening"
	"vigil/internal/watchlist"
)

type noopScreening struct{}

func (noopScreening) Screen(context.Context, screening.Request) (screening.Result, error) {
	return screening.Result{}, nil
}

type noopWatchlist struct{}

func (noopWatchlist) Upsert(context.Context, watchlist.UpsertRequest) (watchlist.Outcome, error) {
	return watchlist.OutcomeCreated, nil
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Screening: noopScreening{},
		Watchlist: noopWatchlist{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMethodsEnforced(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/screening/realtime", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDHeaderStamped(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
