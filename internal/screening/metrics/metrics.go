package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching engine.
type Metrics struct {
	// Screening outcomes by result (matched, clear, error)
	ScreenOutcome *prometheus.CounterVec

	// Full screening latency including embedding and explanation
	ScreenLatency prometheus.Histogram

	// Candidates retained by the distance threshold per screening
	CandidateCount prometheus.Histogram

	// Explanation call latency, labeled by result (ok, failed)
	ExplainLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all matching engine metrics registered.
func New() *Metrics {
	return &Metrics{
		ScreenOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_screenings_total",
			Help: "Total screening outcomes by result",
		}, []string{"result"}),

		ScreenLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_screening_duration_seconds",
			Help:    "Duration of full screenings including capability calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		CandidateCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_screening_candidates",
			Help:    "Watchlist candidates retained per screening",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),

		ExplainLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vigil_screening_explain_duration_seconds",
			Help:    "Duration of explanation calls by result",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
	}
}

// RecordOutcome counts one screening result.
func (m *Metrics) RecordOutcome(result string) {
	if m != nil {
		m.ScreenOutcome.WithLabelValues(result).Inc()
	}
}

// ObserveScreen records the total screening duration.
func (m *Metrics) ObserveScreen(d time.Duration) {
	if m != nil {
		m.ScreenLatency.Observe(d.Seconds())
	}
}

// ObserveCandidates records how many candidates cleared the threshold.
func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.CandidateCount.Observe(float64(n))
	}
}

// ObserveExplain records one explanation call duration.
func (m *Metrics) ObserveExplain(result string, d time.Duration) {
	if m != nil {
		m.ExplainLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}
