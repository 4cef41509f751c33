package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the watchlist reconciler.
type Metrics struct {
	// Upsert outcomes by result (created, updated, error)
	UpsertOutcome *prometheus.CounterVec

	// Full upsert latency including embedding generation
	UpsertLatency prometheus.Histogram

	// Embedding call latency during reconciliation
	EmbedLatency prometheus.Histogram
}

// New creates a Metrics instance with all watchlist metrics registered.
func New() *Metrics {
	return &Metrics{
		UpsertOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_watchlist_upserts_total",
			Help: "Total watchlist upsert outcomes by result",
		}, []string{"result"}),

		UpsertLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_watchlist_upsert_duration_seconds",
			Help:    "Duration of full watchlist upserts including embedding",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		EmbedLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_watchlist_embed_duration_seconds",
			Help:    "Duration of embedding calls during reconciliation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// RecordOutcome counts one upsert result.
func (m *Metrics) RecordOutcome(result string) {
	if m != nil {
		m.UpsertOutcome.WithLabelValues(result).Inc()
	}
}

// ObserveUpsert records the total upsert duration.
func (m *Metrics) ObserveUpsert(d time.Duration) {
	if m != nil {
		m.UpsertLatency.Observe(d.Seconds())
	}
}

// ObserveEmbed records one embedding call duration.
func (m *Metrics) ObserveEmbed(d time.Duration) {
	if m != nil {
		m.EmbedLatency.Observe(d.Seconds())
	}
}
