package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Recommendation outcomes used as the "outcome" label.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidInput    = "invalid_input"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeNoEligibleCards = "no_eligible_cards"
	OutcomeError           = "error"
)

// Metrics holds all Prometheus metrics for the advisor.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	recommendations    *prometheus.CounterVec
	winners            *prometheus.CounterVec
	utilizationErrors  *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	utilizationWarning prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_request_duration_seconds",
				Help:    "Duration of operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_recommendations_total",
				Help: "Recommendation requests by outcome.",
			},
			[]string{"outcome"},
		),
		winners: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_recommended_card_total",
				Help: "Times each card was recommended.",
			},
			[]string{"card"},
		),
		utilizationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_utilization_errors_total",
				Help: "Failed utilization lookups by source.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		utilizationWarning: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "advisor_utilization_warnings_total",
				Help: "Recommendations whose best card exceeds the utilization threshold.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRecommendation counts a recommendation request by outcome.
func (m *Metrics) IncrRecommendation(outcome string) {
	m.recommendations.WithLabelValues(outcome).Inc()
}

// IncrWinner counts the recommended card.
func (m *Metrics) IncrWinner(card string) {
	m.winners.WithLabelValues(card).Inc()
}

// IncrUtilizationWarning counts a warned recommendation.
func (m *Metrics) IncrUtilizationWarning() {
	m.utilizationWarning.Inc()
}

// IncrUtilizationError increments the utilization lookup error counter.
func (m *Metrics) IncrUtilizationError(source string) {
	m.utilizationErrors.WithLabelValues(source).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// AdvisorSnapshot is the JSON view of the advisor counters.
type AdvisorSnapshot struct {
	TotalRequests       int64            `json:"total_requests"`
	Outcomes            map[string]int64 `json:"outcomes"`
	Winners             map[string]int64 `json:"winners"`
	UtilizationWarnings int64            `json:"utilization_warnings"`
	CacheHitRate        float64          `json:"cache_hit_rate"`
	Period              string           `json:"period"`
}

// Snapshot returns the current counter values for GET /v1/metrics/advisor.
func (m *Metrics) Snapshot(cards []string) *AdvisorSnapshot {
	outcomes := map[string]int64{}
	var total int64
	for _, o := range []string{OutcomeSuccess, OutcomeInvalidInput, OutcomeUnknownCategory, OutcomeNoEligibleCards, OutcomeError} {
		v := int64(counterValue(m.recommendations.WithLabelValues(o)))
		outcomes[o] = v
		total += v
	}

	winners := make(map[string]int64, len(cards))
	for _, c := range cards {
		winners[c] = int64(counterValue(m.winners.WithLabelValues(c)))
	}

	hits := counterValue(m.cacheHits.WithLabelValues("utilization"))
	misses := counterValue(m.cacheMisses.WithLabelValues("utilization"))
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &AdvisorSnapshot{
		TotalRequests:       total,
		Outcomes:            outcomes,
		Winners:             winners,
		UtilizationWarnings: int64(counterValue(m.utilizationWarning)),
		CacheHitRate:        hitRate,
		Period:              "all_time",
	}
}

// counterValue extracts the current value of a counter.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
