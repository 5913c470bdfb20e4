// Package metrics exposes Prometheus instrumentation for evaluation runs and
// the web report.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vadiminshakov/coinsight/internal/domain"
)

const namespace = "coinsight"

var (
	durationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	scoreBuckets      = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	confidenceBuckets = []float64{60, 65, 70, 75, 80, 85, 90, 95}
)

// Metrics all collectors of the process. A nil *Metrics records nothing.
type Metrics struct {
	Evaluations   *prometheus.CounterVec
	Skipped       prometheus.Counter
	Scores        *prometheus.HistogramVec
	Confidence    *prometheus.HistogramVec
	RunDuration   prometheus.Histogram
	RunAssets     prometheus.Gauge
	JournalErrors prometheus.Counter

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers the collectors. A nil registerer means the default one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "advisor",
				Name:      "evaluations_total",
				Help:      "Evaluated assets by recommendation label",
			},
			[]string{"recommendation"},
		),
		Skipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "advisor",
				Name:      "skipped_total",
				Help:      "Snapshots skipped because they failed validation",
			},
		),
		Scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "advisor",
				Name:      "score",
				Help:      "Distribution of scores by kind",
				Buckets:   scoreBuckets,
			},
			[]string{"kind"},
		),
		Confidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "confidence",
				Help:      "Forecast confidence by forecast source",
				Buckets:   confidenceBuckets,
			},
			[]string{"source"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Duration of a full evaluation run",
				Buckets:   durationBuckets,
			},
		),
		RunAssets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "assets",
				Help:      "Assets evaluated by the latest run",
			},
		),
		JournalErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "journal",
				Name:      "errors_total",
				Help:      "Runs that could not be written to the journal",
			},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   durationBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// RecordEvaluation records one evaluated asset.
func (m *Metrics) RecordEvaluation(res domain.RecommendationResult) {
	if m == nil {
		return
	}

	m.Evaluations.WithLabelValues(res.Recommendation.String()).Inc()
	m.Scores.WithLabelValues("recommendation").Observe(float64(res.RecommendationScore))
	m.Scores.WithLabelValues("trend").Observe(float64(res.TrendScore))
	m.Scores.WithLabelValues("momentum").Observe(float64(res.MomentumScore))
	m.Scores.WithLabelValues("risk").Observe(float64(res.RiskScore))
	if res.Forecast != nil {
		m.Confidence.WithLabelValues(string(res.Forecast.Source())).Observe(res.Forecast.ConfidenceLevel())
	}
}

// RecordSkipped counts a snapshot rejected by validation.
func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.Skipped.Inc()
}

// ObserveRun records a finished run over the given number of assets.
func (m *Metrics) ObserveRun(d time.Duration, assets int) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
	m.RunAssets.Set(float64(assets))
}

// RecordJournalError counts a failed journal write.
func (m *Metrics) RecordJournalError() {
	if m == nil {
		return
	}
	m.JournalErrors.Inc()
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
