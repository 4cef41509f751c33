package screening

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"vigil/internal/audit"
	"vigil/internal/embedding"
	"vigil/internal/explain"
	"vigil/internal/screening/metrics"
	"vigil/internal/watchlist"
	"vigil/pkg/domerr"
	"vigil/pkg/requestcontext"
)

// EntitySearcher is the slice of the watchlist store the engine needs.
type EntitySearcher interface {
	SearchByVector(ctx context.Context, vector []float32, maxDistance float64) ([]watchlist.Entity, error)
}

// Service is the matching engine. One Screen call is one synchronous unit of
// work: embed the query, retrieve candidates within the policy's distance
// bound, classify and score them, persist the outcome, and attach a
// best-effort explanation for the top match.
type Service struct {
	embedder       embedding.Provider
	analyzer       explain.Analyzer
	entities       EntitySearcher
	records        RecordStore
	policy         MatchPolicy
	audit          *audit.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	explainTimeout time.Duration
}

func NewService(
	embedder embedding.Provider,
	analyzer explain.Analyzer,
	entities EntitySearcher,
	records RecordStore,
	policy MatchPolicy,
	auditor *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	explainTimeout time.Duration,
) *Service {
	return &Service{
		embedder:       embedder,
		analyzer:       analyzer,
		entities:       entities,
		records:        records,
		policy:         policy,
		audit:          auditor,
		metrics:        m,
		logger:         logger,
		explainTimeout: explainTimeout,
	}
}

// Screen runs one screening end to end.
//
// Failure semantics follow audit-durability-first ordering: an embedding
// failure aborts before anything is persisted; once the pending record is
// committed it survives any later failure, so every attempt that produced a
// vector is durably visible even when matching or finalization fails.
func (s *Service) Screen(ctx context.Context, req Request) (Result, error) {
	ctx, span := otel.Tracer("vigil/screening").Start(ctx, "screening.Screen")
	defer span.End()
	start := time.Now()

	screeningType := req.ScreeningType
	if screeningType == "" {
		screeningType = DefaultScreeningType
	}

	vector, err := s.embedder.Embed(ctx, req.Name)
	if err != nil {
		s.metrics.RecordOutcome("error")
		return Result{}, domerr.Wrap(err, domerr.CodeEmbeddingUnavailable, "embed query name")
	}

	record := Record{
		Name:          req.Name,
		DateOfBirth:   req.DateOfBirth,
		ScreeningType: screeningType,
		ScreeningTime: requestcontext.Now(ctx).UTC(),
	}
	screeningID, err := s.records.Create(ctx, record)
	if err != nil {
		s.metrics.RecordOutcome("error")
		return Result{}, domerr.Wrap(err, domerr.CodePersistence, "create screening record")
	}
	span.SetAttributes(attribute.Int64("screening.id", screeningID))

	candidates, err := s.entities.SearchByVector(ctx, vector, s.policy.MaxDistance())
	if err != nil {
		// The pending record from above stays committed: audit durability
		// over atomicity of the whole screening.
		s.metrics.RecordOutcome("error")
		return Result{}, domerr.Wrap(err, domerr.CodePersistence,
			fmt.Sprintf("search watchlist for record %d", screeningID))
	}
	s.metrics.ObserveCandidates(len(candidates))
	span.SetAttributes(attribute.Int("screening.candidates", len(candidates)))

	matched := len(candidates) > 0
	riskScore := 0.0
	explanation := NoMatchExplanation
	var (
		matches []Match
		details []MatchDetail
	)
	if matched {
		var total float64
		for _, entity := range candidates {
			matchType, score := s.policy.Classify(req.Name, entity.Name)
			total += score
			matches = append(matches, Match{
				WatchlistEntityID: entity.ID,
				MatchType:         matchType,
				MatchScore:        score,
			})
			details = append(details, MatchDetail{
				UniqueID:     entity.UniqueID,
				Name:         entity.Name,
				DateOfBirth:  firstDate(entity.DatesOfBirth),
				RiskCategory: entity.RiskCategory,
				MatchType:    matchType,
				MatchScore:   score,
			})
		}
		riskScore = total / float64(len(candidates))
		explanation = s.explainFirst(ctx, req.Name, details[0])
	}

	err = s.records.Finalize(ctx, screeningID, FinalizeParams{
		Matched:     matched,
		RiskScore:   riskScore,
		Explanation: explanation,
		Matches:     matches,
	})
	if err != nil {
		s.metrics.RecordOutcome("error")
		return Result{}, domerr.Wrap(err, domerr.CodePersistence,
			fmt.Sprintf("finalize screening record %d", screeningID))
	}

	outcome := "clear"
	if matched {
		outcome = "matched"
	}
	s.metrics.RecordOutcome(outcome)
	s.metrics.ObserveScreen(time.Since(start))
	if s.audit != nil {
		s.audit.Emit(ctx, audit.Event{
			Action:      audit.ActionScreeningCompleted,
			SubjectHash: audit.HashSubject(req.Name),
			Decision:    outcome,
			Reason:      fmt.Sprintf("%d candidates within threshold", len(candidates)),
		})
	}
	s.logger.InfoContext(ctx, "screening completed",
		"screening_id", screeningID,
		"matched", matched,
		"candidates", len(candidates),
	)

	return Result{
		ScreeningID:   screeningID,
		Name:          req.Name,
		DateOfBirth:   req.DateOfBirth,
		ScreeningTime: record.ScreeningTime,
		Matched:       matched,
		RiskScore:     riskScore,
		Explanation:   explanation,
		Matches:       details,
	}, nil
}

// explainFirst asks the analyzer about the first candidate in store
// retrieval order, not the closest by distance; tests pin that choice so a
// future re-sort is a deliberate change.
func (s *Service) explainFirst(ctx context.Context, queryName string, best MatchDetail) string {
	explainCtx, cancel := context.WithTimeout(ctx, s.explainTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.analyzer.Explain(explainCtx, queryName, explain.MatchedEntity{
		UniqueID:     best.UniqueID,
		Name:         best.Name,
		DateOfBirth:  best.DateOfBirth,
		RiskCategory: best.RiskCategory,
	})
	if err != nil {
		// Soft failure: the screening result stands, only the rationale is
		// replaced with a diagnostic placeholder.
		s.metrics.ObserveExplain("failed", time.Since(start))
		s.logger.WarnContext(ctx, "explanation failed, using placeholder", "error", err)
		return explanationFailurePrefix + err.Error()
	}
	s.metrics.ObserveExplain("ok", time.Since(start))
	return text
}

func firstDate(dates []time.Time) *time.Time {
	if len(dates) == 0 {
		return nil
	}
	d := dates[0]
	return &d
}
