package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/watchlist"
	"vigil/pkg/domerr"
	"vigil/pkg/httputil"
	"vigil/pkg/requestcontext"
)

// maxUploadBytes bounds bulk upload bodies.
const maxUploadBytes = 32 << 20

// Service defines the interface for watchlist reconciliation.
type Service interface {
	Upsert(ctx context.Context, req watchlist.UpsertRequest) (watchlist.Outcome, error)
}

// Handler wires watchlist endpoints to the reconciler.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a watchlist handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts watchlist endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/watchlist/upload", h.HandleUpload)
}

// HandleUpload handles POST /watchlist/upload requests. The body is either a
// multipart form carrying a CSV file or a JSON object with a "watchlist"
// array. Entries are processed independently: a bad entry increments the
// error count and the batch continues.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	entries, err := h.decodeEntries(r)
	if err != nil {
		h.logger.WarnContext(ctx, "upload decode failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	var created, updated, errored int
	for _, entry := range entries {
		req, err := entry.toUpsertRequest()
		if err != nil {
			h.logger.WarnContext(ctx, "skipping watchlist entry",
				"request_id", requestID,
				"unique_id", entry.UniqueID,
				"error", err,
			)
			errored++
			continue
		}

		outcome, err := h.service.Upsert(ctx, req)
		if err != nil {
			h.logger.ErrorContext(ctx, "watchlist entry failed",
				"request_id", requestID,
				"unique_id", entry.UniqueID,
				"error", err,
			)
			errored++
			continue
		}
		switch outcome {
		case watchlist.OutcomeCreated:
			created++
		case watchlist.OutcomeUpdated:
			updated++
		}
	}

	h.logger.InfoContext(ctx, "watchlist upload processed",
		"request_id", requestID,
		"entries", len(entries),
		"created", created,
		"updated", updated,
		"errors", errored,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, NewUploadResponse(created, updated, errored))
}

// decodeEntries extracts upload entries from either transport encoding.
func (h *Handler) decodeEntries(r *http.Request) ([]UploadEntry, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, domerr.Wrap(err, domerr.CodeBadRequest, "multipart upload requires a file field")
		}
		defer file.Close()
		return parseCSV(file)
	}

	var body UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, domerr.Wrap(err, domerr.CodeBadRequest, "invalid JSON body")
	}
	if len(body.Watchlist) == 0 {
		return nil, domerr.New(domerr.CodeBadRequest, "JSON body must contain a non-empty watchlist array")
	}
	return body.Watchlist, nil
}

// parseCSV reads a header row and maps each record onto an UploadEntry.
// Unknown columns are ignored so list providers can ship extra fields.
func parseCSV(r io.Reader) ([]UploadEntry, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, domerr.Wrap(err, domerr.CodeBadRequest, "CSV file is empty or unreadable")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var entries []UploadEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domerr.Wrap(err, domerr.CodeBadRequest,
				fmt.Sprintf("malformed CSV near row %d", len(entries)+2))
		}
		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		entries = append(entries, UploadEntry{
			UniqueID:     field("unique_id"),
			Name:         field("name"),
			DateOfBirth:  field("date_of_birth"),
			RiskCategory: field("risk_category"),
		})
	}
	if len(entries) == 0 {
		return nil, domerr.New(domerr.CodeBadRequest, "CSV file contains no data rows")
	}
	return entries, nil
}
