package observability_test

import (
	"testing"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrRecommendation(observability.OutcomeSuccess)
	m.IncrRecommendation(observability.OutcomeSuccess)
	m.IncrRecommendation(observability.OutcomeNoEligibleCards)
	m.IncrWinner("HDFC Regalia Gold")
	m.IncrWinner("HDFC Regalia Gold")
	m.IncrUtilizationWarning()
	m.IncrCacheHit("utilization")
	m.IncrCacheMiss("utilization")
	m.IncrCacheMiss("utilization")
	m.IncrCacheMiss("utilization")
	m.RecordRequestDuration("recommend", 3*time.Millisecond)

	s := m.Snapshot([]string{"HDFC Regalia Gold", "SBI SimplyCLICK"})

	assert.EqualValues(t, 3, s.TotalRequests)
	assert.EqualValues(t, 2, s.Outcomes[observability.OutcomeSuccess])
	assert.EqualValues(t, 2, s.Winners["HDFC Regalia Gold"])
	assert.EqualValues(t, 0, s.Winners["SBI SimplyCLICK"])
	assert.EqualValues(t, 1, s.UtilizationWarnings)
	assert.InDelta(t, 0.25, s.CacheHitRate, 1e-9)
}

func TestNewMetrics_Twice(t *testing.T) {
	// Private registries: a second instance must not panic.
	assert.NotPanics(t, func() {
		_ = observability.NewMetrics()
		_ = observability.NewMetrics()
	})
}
