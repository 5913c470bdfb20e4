package internal

import (
	"cmp"
	"context"
	"hash/fnv"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/metrics"
	"github.com/vadiminshakov/coinsight/internal/services/forecast"
	"github.com/vadiminshakov/coinsight/internal/services/recommendation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Advisor evaluates market snapshots and ranks the results.
type Advisor struct {
	logger     *zap.Logger
	scorer     *recommendation.Scorer
	forecaster *forecast.Forecaster
	metrics    *metrics.Metrics
	seed       int64
	workers    int
}

// AdvisorOption configures the Advisor.
type AdvisorOption func(*Advisor)

// WithSeed fixes the base seed of the per-snapshot random sources.
// Zero keeps the time-based default.
func WithSeed(seed int64) AdvisorOption {
	return func(a *Advisor) {
		if seed != 0 {
			a.seed = seed
		}
	}
}

// WithWorkers limits the number of concurrent evaluations. Zero means unlimited.
func WithWorkers(n int) AdvisorOption {
	return func(a *Advisor) {
		a.workers = n
	}
}

// WithForecaster replaces the default forecaster.
func WithForecaster(f *forecast.Forecaster) AdvisorOption {
	return func(a *Advisor) {
		a.forecaster = f
	}
}

// WithMetrics records evaluations and runs.
func WithMetrics(m *metrics.Metrics) AdvisorOption {
	return func(a *Advisor) {
		a.metrics = m
	}
}

// NewAdvisor creates an Advisor with the default scorer and forecaster.
func NewAdvisor(logger *zap.Logger, opts ...AdvisorOption) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Advisor{
		logger:     logger,
		scorer:     recommendation.NewScorer(logger),
		forecaster: forecast.NewForecaster(logger),
		seed:       time.Now().UnixNano(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Evaluate scores and forecasts a single snapshot.
func (a *Advisor) Evaluate(snapshot domain.AssetSnapshot, rng domain.RandomSource) (domain.RecommendationResult, error) {
	if err := snapshot.Validate(); err != nil {
		return domain.RecommendationResult{}, err
	}
	if rng == nil {
		return domain.RecommendationResult{}, errors.New("random source is required")
	}

	assessment := a.scorer.Score(snapshot)
	fc := a.forecaster.Forecast(snapshot, assessment.TechnicalAnalysis.Trend, rng)

	return domain.RecommendationResult{
		Asset:               snapshot,
		RecommendationScore: assessment.Scores.Recommendation,
		TrendScore:          assessment.Scores.Trend,
		MomentumScore:       assessment.Scores.Momentum,
		RiskScore:           assessment.Scores.Risk,
		Recommendation:      assessment.Recommendation,
		Reasoning:           assessment.Reasoning,
		RiskFactors:         assessment.RiskFactors,
		TechnicalAnalysis:   assessment.TechnicalAnalysis,
		Forecast:            fc,
	}, nil
}

// Top evaluates all snapshots in parallel and returns the n best by recommendation
// score, then trend score. Invalid snapshots are logged and skipped. n <= 0 returns
// every result.
func (a *Advisor) Top(ctx context.Context, snapshots []domain.AssetSnapshot, n int) ([]domain.RecommendationResult, error) {
	started := time.Now()
	evaluated := make([]*domain.RecommendationResult, len(snapshots))

	g, gctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}

	for i, snapshot := range snapshots {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := a.Evaluate(snapshot, a.randomFor(snapshot))
			if err != nil {
				a.logger.Warn("skipping snapshot", zap.String("symbol", snapshot.String()), zap.Error(err))
				a.metrics.RecordSkipped()
				return nil
			}
			evaluated[i] = &res
			a.metrics.RecordEvaluation(res)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "evaluation interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "evaluation interrupted")
	}

	results := make([]domain.RecommendationResult, 0, len(evaluated))
	for _, r := range evaluated {
		if r != nil {
			results = append(results, *r)
		}
	}

	valid := len(results)
	a.metrics.ObserveRun(time.Since(started), valid)

	Rank(results)
	if n > 0 && len(results) > n {
		results = results[:n]
	}

	a.logger.Info("snapshots evaluated",
		zap.Int("received", len(snapshots)),
		zap.Int("evaluated", valid),
		zap.Int("returned", len(results)))

	return results, nil
}

// Rank sorts results by recommendation score descending, ties broken by trend score.
// Equal pairs keep their input order.
func Rank(results []domain.RecommendationResult) {
	slices.SortStableFunc(results, func(x, y domain.RecommendationResult) int {
		if c := cmp.Compare(y.RecommendationScore, x.RecommendationScore); c != 0 {
			return c
		}
		return cmp.Compare(y.TrendScore, x.TrendScore)
	})
}

// randomFor derives an independent source per snapshot so results do not depend on
// goroutine scheduling.
func (a *Advisor) randomFor(snapshot domain.AssetSnapshot) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(strconv.Itoa(snapshot.ID)))
	h.Write([]byte(snapshot.Symbol))

	return rand.New(rand.NewSource(a.seed ^ int64(h.Sum64())))
}
