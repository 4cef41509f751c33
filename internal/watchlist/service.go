package watchlist

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"vigil/internal/audit"
	"vigil/internal/embedding"
	"vigil/internal/watchlist/metrics"
	"vigil/pkg/domerr"
	"vigil/pkg/sentinel"
)

// UpsertRequest is one incoming watchlist entry. DatesOfBirth and
// RiskCategory are optional: when absent they preserve existing values on
// update (partial-update semantics).
type UpsertRequest struct {
	UniqueID     string
	Name         string
	DatesOfBirth []time.Time
	RiskCategory *string
}

// Service is the watchlist reconciler: it keeps each entity's embedding in
// sync with its current name by recomputing the vector inside the same write
// path that changes the name. There is no API to set one without the other.
type Service struct {
	embedder embedding.Provider
	store    Store
	audit    *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(embedder embedding.Provider, store Store, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		audit:    auditor,
		metrics:  m,
		logger:   logger,
	}
}

// Upsert creates or updates one entity keyed by its external unique_id. The
// embedding is recomputed on every call whether or not the name changed;
// recomputation is idempotent so the redundancy costs latency, not
// correctness.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Outcome, error) {
	ctx, span := otel.Tracer("vigil/watchlist").Start(ctx, "watchlist.Upsert")
	defer span.End()

	start := time.Now()
	uniqueID := strings.TrimSpace(req.UniqueID)
	if uniqueID == "" {
		s.metrics.RecordOutcome("error")
		return "", domerr.New(domerr.CodeBadRequest, "unique_id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		s.metrics.RecordOutcome("error")
		return "", domerr.New(domerr.CodeBadRequest, "name is required")
	}
	span.SetAttributes(attribute.String("watchlist.unique_id", uniqueID))

	embedStart := time.Now()
	vector, err := s.embedder.Embed(ctx, req.Name)
	s.metrics.ObserveEmbed(time.Since(embedStart))
	if err != nil {
		s.metrics.RecordOutcome("error")
		return "", domerr.Wrap(err, domerr.CodeEmbeddingUnavailable, "embed name for "+uniqueID)
	}

	outcome, err := s.store.Upsert(ctx, UpsertParams{
		UniqueID:     uniqueID,
		Name:         req.Name,
		NameVector:   vector,
		DatesOfBirth: req.DatesOfBirth,
		RiskCategory: req.RiskCategory,
	})
	if err != nil {
		s.metrics.RecordOutcome("error")
		if errors.Is(err, sentinel.ErrConflict) {
			return "", domerr.Wrap(err, domerr.CodeReconciliation, "conflicting upsert for "+uniqueID)
		}
		return "", domerr.Wrap(err, domerr.CodeReconciliation, "persist entity "+uniqueID)
	}

	s.metrics.RecordOutcome(string(outcome))
	s.metrics.ObserveUpsert(time.Since(start))
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionWatchlistUpserted,
			Subject:  uniqueID,
			Decision: string(outcome),
		})
	}
	s.logger.InfoContext(ctx, "watchlist entity reconciled",
		"unique_id", uniqueID,
		"outcome", outcome,
	)
	return outcome, nil
}
