package forecast

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	baseChangeScale  = 0.2
	mediumTermFactor = 2.5
	longTermFactor   = 4

	baseConfidence = 90
	minConfidence  = 60
	maxConfidence  = 95
)

// Score output of one named model.
type Score struct {
	Model string
	Value float64
}

// DefaultWeights returns the ensemble weight of every default model.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		domain.ModelLSTM:             0.30,
		domain.ModelARIMA:            0.20,
		domain.ModelRandomForest:     0.25,
		domain.ModelLinearRegression: 0.15,
		domain.ModelSentiment:        0.10,
	}
}

// Aggregator blends model scores into an ensemble forecast.
type Aggregator struct {
	weights map[string]float64
}

// NewAggregator creates an Aggregator. Nil weights select DefaultWeights.
// Models without a weight still count towards the agreement-based confidence.
func NewAggregator(weights map[string]float64) *Aggregator {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Aggregator{weights: weights}
}

// Aggregate converts the model scores into price targets relative to price.
// Confidence falls as the models disagree: 90 - 100*variance, clamped to [60, 95].
func (a *Aggregator) Aggregate(price decimal.Decimal, scores []Score) (domain.EnsembleForecast, error) {
	if len(scores) == 0 {
		return domain.EnsembleForecast{}, errors.New("no model scores to aggregate")
	}

	var (
		ensemble float64
		raw      domain.ModelScores
		values   = make([]float64, len(scores))
	)
	for i, s := range scores {
		ensemble += s.Value * a.weights[s.Model]
		values[i] = s.Value
		raw.Set(s.Model, s.Value)
	}

	baseChange := ensemble * baseChangeScale
	v := stat.PopVariance(values, nil)
	confidence := math.Max(minConfidence, math.Min(maxConfidence, baseConfidence-v*100))

	return domain.EnsembleForecast{
		PriceTargets: domain.PriceTargets{
			ShortTerm:  scale(price, baseChange),
			MediumTerm: scale(price, baseChange*mediumTermFactor),
			LongTerm:   scale(price, baseChange*longTermFactor),
		},
		Confidence:         domain.RoundTo(confidence, 1),
		TrendStrength:      domain.RoundTo(math.Abs(ensemble)*100, 1),
		VolatilityForecast: domain.RoundTo(v*100, 1),
		ModelScores:        raw.Scaled(),
	}, nil
}

// scale returns price * (1 + change).
func scale(price decimal.Decimal, change float64) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(1 + change))
}
