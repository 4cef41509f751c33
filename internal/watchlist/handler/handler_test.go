package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vigil/internal/watchlist"
	"vigil/internal/watchlist/handler/mocks"
	"vigil/pkg/domerr"
)

func newRouter(service Service) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(service, logger).Register(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/watchlist/upload", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postCSV(t *testing.T, router chi.Router, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "watchlist.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/watchlist/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeUpload(t *testing.T, rec *httptest.ResponseRecorder) UploadResponse {
	t.Helper()
	var resp UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleUploadJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)
	risk := "PEP"
	gomock.InOrder(
		mockService.EXPECT().
			Upsert(gomock.Any(), watchlist.UpsertRequest{
				UniqueID:     "E-1",
				Name:         "John Smith",
				DatesOfBirth: []time.Time{dob},
				RiskCategory: &risk,
			}).
			Return(watchlist.OutcomeCreated, nil),
		mockService.EXPECT().
			Upsert(gomock.Any(), watchlist.UpsertRequest{UniqueID: "E-1", Name: "Johnny Smith"}).
			Return(watchlist.OutcomeUpdated, nil),
	)

	rec := postJSON(t, router, map[string]any{
		"watchlist": []map[string]string{
			{"unique_id": "E-1", "name": "John Smith", "date_of_birth": "1985-03-15", "risk_category": "PEP"},
			{"unique_id": "E-1", "name": "Johnny Smith"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeUpload(t, rec)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, 1, resp.UpdatedCount)
	assert.Equal(t, 0, resp.ErrorCount)
	assert.Equal(t, "Watchlist processed successfully. Created: 1, Updated: 1", resp.Message)
}

func TestHandleUploadCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	dob := time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)
	risk := "Sanctioned"
	gomock.InOrder(
		mockService.EXPECT().
			Upsert(gomock.Any(), watchlist.UpsertRequest{
				UniqueID:     "E-1",
				Name:         "John Smith",
				DatesOfBirth: []time.Time{dob},
				RiskCategory: &risk,
			}).
			Return(watchlist.OutcomeCreated, nil),
		// Empty CSV cells arrive as absent fields, not empty values.
		mockService.EXPECT().
			Upsert(gomock.Any(), watchlist.UpsertRequest{UniqueID: "E-2", Name: "Jane Doe"}).
			Return(watchlist.OutcomeCreated, nil),
	)

	rec := postCSV(t, router,
		"unique_id,name,date_of_birth,risk_category\n"+
			"E-1,John Smith,1970-01-02,Sanctioned\n"+
			"E-2,Jane Doe,,\n")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeUpload(t, rec)
	assert.Equal(t, 2, resp.CreatedCount)
	assert.Equal(t, 0, resp.ErrorCount)
}

func TestHandleUploadSkipsBadEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	gomock.InOrder(
		mockService.EXPECT().
			Upsert(gomock.Any(), gomock.Any()).
			Return(watchlist.Outcome(""), domerr.Wrap(errors.New("boom"), domerr.CodeReconciliation, "persist entity E-1")),
		mockService.EXPECT().
			Upsert(gomock.Any(), watchlist.UpsertRequest{UniqueID: "E-3", Name: "Alice Smith"}).
			Return(watchlist.OutcomeCreated, nil),
	)

	// E-2's date fails to parse and never reaches the service; E-1 fails in
	// the service; E-3 succeeds. The batch never aborts.
	rec := postJSON(t, router, map[string]any{
		"watchlist": []map[string]string{
			{"unique_id": "E-1", "name": "John Smith"},
			{"unique_id": "E-2", "name": "Bob Jones", "date_of_birth": "15/03/1985"},
			{"unique_id": "E-3", "name": "Alice Smith"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeUpload(t, rec)
	assert.Equal(t, 1, resp.CreatedCount)
	assert.Equal(t, 0, resp.UpdatedCount)
	assert.Equal(t, 2, resp.ErrorCount)
	assert.Contains(t, resp.Message, "Errors: 2")
}

func TestHandleUploadRejectsEmptyBodies(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	router := newRouter(mockService)

	t.Run("empty watchlist array", func(t *testing.T) {
		rec := postJSON(t, router, map[string]any{"watchlist": []any{}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/watchlist/upload", bytes.NewReader([]byte("{oops")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CSV without data rows", func(t *testing.T) {
		rec := postCSV(t, router, "unique_id,name\n")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
