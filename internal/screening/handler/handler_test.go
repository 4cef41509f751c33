package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vigil/internal/screening"
	"vigil/internal/screening/handler/mocks"
	"vigil/pkg/domerr"
)

func newRouter(service Service) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r
}

func postScreening(t *testing.T, router chi.Router, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/screening/realtime", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleScreen(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		Screen(gomock.Any(), screening.Request{Name: "John Smith", DateOfBirth: &dob}).
		Return(screening.Result{
			ScreeningID:   7,
			Name:          "John Smith",
			DateOfBirth:   &dob,
			ScreeningTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Matched:       true,
			RiskScore:     1.0,
			Explanation:   "Listed individual.",
			Matches: []screening.MatchDetail{{
				UniqueID:     "E-1",
				Name:         "John Smith",
				RiskCategory: "PEP",
				MatchType:    screening.MatchExact,
				MatchScore:   1.0,
			}},
		}, nil)

	rec := postScreening(t, router, map[string]any{
		"name":          "John Smith",
		"date_of_birth": map[string]int{"year": 1985, "month": 3, "day": 15},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScreenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.ScreeningID)
	assert.True(t, resp.Matched)
	require.NotNil(t, resp.RiskScore)
	assert.Equal(t, 1.0, *resp.RiskScore)
	require.NotNil(t, resp.DateOfBirth)
	assert.Equal(t, "1985-03-15", *resp.DateOfBirth)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "E-1", resp.Matches[0].UniqueID)
	assert.Equal(t, "Exact", resp.Matches[0].MatchType)
	require.NotNil(t, resp.Matches[0].RiskCategory)
	assert.Equal(t, "PEP", *resp.Matches[0].RiskCategory)
	assert.Nil(t, resp.Matches[0].DateOfBirth)
}

func TestHandleScreenValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	t.Run("empty name", func(t *testing.T) {
		rec := postScreening(t, router, map[string]any{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("impossible date", func(t *testing.T) {
		rec := postScreening(t, router, map[string]any{
			"name":          "Jane Doe",
			"date_of_birth": map[string]int{"year": 1990, "month": 2, "day": 30},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/screening/realtime", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleScreenServiceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	mockService.EXPECT().
		Screen(gomock.Any(), gomock.Any()).
		Return(screening.Result{}, domerr.Wrap(errors.New("dial tcp"), domerr.CodeEmbeddingUnavailable, "embed query name"))

	rec := postScreening(t, router, map[string]any{"name": "Jane Doe"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "embedding_unavailable", body["error"])
}

func TestHandleScreenNormalizesNonFiniteScores(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	mockService.EXPECT().
		Screen(gomock.Any(), gomock.Any()).
		Return(screening.Result{
			ScreeningID: 3,
			Name:        "Jane Doe",
			Matched:     true,
			RiskScore:   math.NaN(),
			Explanation: "x",
			Matches: []screening.MatchDetail{{
				UniqueID:   "E-2",
				Name:       "Jane Doe",
				MatchType:  screening.MatchFuzzy,
				MatchScore: math.Inf(1),
			}},
		}, nil)

	rec := postScreening(t, router, map[string]any{"name": "Jane Doe"})
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Nil(t, raw["risk_score"])
	matches := raw["matches"].([]any)
	require.Len(t, matches, 1)
	assert.Nil(t, matches[0].(map[string]any)["match_score"])
}
