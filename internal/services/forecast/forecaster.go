package forecast

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/services/market/analysis"
	"github.com/vadiminshakov/coinsight/internal/services/market/history"
	"github.com/vadiminshakov/coinsight/internal/services/market/indicators"
	"go.uber.org/zap"
)

const ruleBasedConfidence = 60

// rule-based multipliers for short, medium and long term
var (
	bullishMultipliers = [3]float64{1.05, 1.15, 1.25}
	bearishMultipliers = [3]float64{0.95, 0.85, 0.75}
)

// Forecaster runs the synthetic-history pipeline and the model ensemble for one snapshot.
// It holds no mutable state; randomness comes from the caller.
type Forecaster struct {
	logger       *zap.Logger
	synthesizer  *history.Synthesizer
	sentiment    *analysis.SentimentEstimator
	models       []Model
	aggregator   *Aggregator
	lookbackDays int
}

// Option configures the Forecaster.
type Option func(*Forecaster)

// WithModels replaces the default model list.
func WithModels(models ...Model) Option {
	return func(f *Forecaster) {
		f.models = models
	}
}

// WithAggregator replaces the default aggregator.
func WithAggregator(a *Aggregator) Option {
	return func(f *Forecaster) {
		f.aggregator = a
	}
}

// WithSynthesizer replaces the default history synthesizer.
func WithSynthesizer(s *history.Synthesizer) Option {
	return func(f *Forecaster) {
		f.synthesizer = s
	}
}

// WithLookbackDays sets the synthetic history length.
func WithLookbackDays(days int) Option {
	return func(f *Forecaster) {
		f.lookbackDays = days
	}
}

// NewForecaster creates a Forecaster with the default ensemble.
func NewForecaster(logger *zap.Logger, opts ...Option) *Forecaster {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &Forecaster{
		logger:       logger,
		synthesizer:  history.NewSynthesizer(logger),
		sentiment:    analysis.NewSentimentEstimator(logger),
		models:       DefaultModels(),
		aggregator:   NewAggregator(nil),
		lookbackDays: history.DefaultLookbackDays,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Forecast returns the ensemble forecast, or a rule-based forecast built from trend
// when the ensemble cannot be computed.
func (f *Forecaster) Forecast(snapshot domain.AssetSnapshot, trend domain.TrendDirection, rng domain.RandomSource) domain.Forecast {
	ensemble, err := f.Ensemble(snapshot, rng)
	if err != nil {
		f.logger.Warn("ensemble forecast unavailable, using rule-based targets",
			zap.String("symbol", snapshot.String()),
			zap.String("trend", trend.String()),
			zap.Error(err))
		return RuleBased(snapshot.Price, trend)
	}

	return ensemble
}

// Ensemble synthesizes history, derives indicators and sentiment, scores every model
// and aggregates the scores.
func (f *Forecaster) Ensemble(snapshot domain.AssetSnapshot, rng domain.RandomSource) (domain.EnsembleForecast, error) {
	series, err := f.synthesizer.Synthesize(snapshot, f.lookbackDays, rng)
	if err != nil {
		return domain.EnsembleForecast{}, errors.Wrap(err, "failed to synthesize history")
	}

	ind, err := indicators.Calculate(series)
	if err != nil {
		return domain.EnsembleForecast{}, errors.Wrap(err, "failed to calculate indicators")
	}

	in := Inputs{
		Series:     series,
		Indicators: ind,
		Sentiment:  f.sentiment.Estimate(snapshot, series, rng),
	}

	scores := make([]Score, 0, len(f.models))
	for _, m := range f.models {
		value := m.Score(in)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			f.logger.Warn("model produced a non-finite score, counting it as neutral",
				zap.String("symbol", snapshot.String()),
				zap.String("model", m.Name()))
			value = 0
		}
		scores = append(scores, Score{Model: m.Name(), Value: value})
	}

	forecast, err := f.aggregator.Aggregate(snapshot.Price, scores)
	if err != nil {
		return domain.EnsembleForecast{}, errors.Wrap(err, "failed to aggregate model scores")
	}

	f.logger.Debug("ensemble forecast",
		zap.String("symbol", snapshot.String()),
		zap.Float64("confidence", forecast.Confidence),
		zap.Float64("trend_strength", forecast.TrendStrength))

	return forecast, nil
}

// RuleBased returns fixed-percentage targets for the trend: ±5%, ±15% and ±25%,
// flat for a neutral trend.
func RuleBased(price decimal.Decimal, trend domain.TrendDirection) domain.RuleBasedForecast {
	targets := domain.PriceTargets{ShortTerm: price, MediumTerm: price, LongTerm: price}

	var multipliers *[3]float64
	switch trend {
	case domain.TrendDirectionBullish:
		multipliers = &bullishMultipliers
	case domain.TrendDirectionBearish:
		multipliers = &bearishMultipliers
	}
	if multipliers != nil {
		targets = domain.PriceTargets{
			ShortTerm:  price.Mul(decimal.NewFromFloat(multipliers[0])),
			MediumTerm: price.Mul(decimal.NewFromFloat(multipliers[1])),
			LongTerm:   price.Mul(decimal.NewFromFloat(multipliers[2])),
		}
	}

	return domain.RuleBasedForecast{
		PriceTargets: targets,
		Confidence:   ruleBasedConfidence,
		Trend:        trend,
	}
}
