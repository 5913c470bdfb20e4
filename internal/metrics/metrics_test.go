package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/vadiminshakov/coinsight/internal/domain"
)

func TestRecordEvaluation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordEvaluation(domain.RecommendationResult{
		RecommendationScore: 80,
		TrendScore:          70,
		MomentumScore:       60,
		RiskScore:           50,
		Recommendation:      domain.RecommendationBuy,
		Forecast:            domain.RuleBasedForecast{Confidence: 60},
	})
	m.RecordEvaluation(domain.RecommendationResult{Recommendation: domain.RecommendationBuy})
	m.RecordEvaluation(domain.RecommendationResult{Recommendation: domain.RecommendationSell})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("Buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("Sell")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Confidence))
	assert.Equal(t, 4, testutil.CollectAndCount(m.Scores))
}

func TestRunAndHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordSkipped()
	m.RecordSkipped()
	m.ObserveRun(150*time.Millisecond, 12)
	m.RecordJournalError()
	m.RecordHTTPRequest("GET", "/api/runs", 200, time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/runs", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Skipped))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.RunAssets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JournalErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/runs", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordEvaluation(domain.RecommendationResult{})
		m.RecordSkipped()
		m.ObserveRun(time.Second, 1)
		m.RecordJournalError()
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
	})
}
