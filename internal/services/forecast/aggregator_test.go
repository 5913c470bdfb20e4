package forecast

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/coinsight/internal/domain"
)

func uniformScores(v float64) []Score {
	var scores []Score
	for _, m := range DefaultModels() {
		scores = append(scores, Score{Model: m.Name(), Value: v})
	}
	return scores
}

func TestAggregate_Agreement(t *testing.T) {
	got, err := NewAggregator(nil).Aggregate(decimal.NewFromInt(100), uniformScores(0.5))
	require.NoError(t, err)

	// ensemble 0.5, base change 0.1
	assert.InDelta(t, 110, got.ShortTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 125, got.MediumTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 140, got.LongTerm.InexactFloat64(), 1e-6)
	assert.Equal(t, 90.0, got.Confidence)
	assert.Equal(t, 50.0, got.TrendStrength)
	assert.Equal(t, 0.0, got.VolatilityForecast)
	assert.Equal(t, domain.ModelScores{
		LSTM:             50,
		ARIMA:            50,
		RandomForest:     50,
		LinearRegression: 50,
		Sentiment:        50,
	}, got.ModelScores)
	assert.Equal(t, domain.ForecastSourceEnsemble, got.Source())
}

func TestAggregate_Disagreement(t *testing.T) {
	scores := []Score{
		{Model: domain.ModelLSTM, Value: 1},
		{Model: domain.ModelARIMA, Value: -1},
		{Model: domain.ModelRandomForest, Value: 1},
		{Model: domain.ModelLinearRegression, Value: -1},
		{Model: domain.ModelSentiment, Value: 0},
	}

	got, err := NewAggregator(nil).Aggregate(decimal.NewFromInt(100), scores)
	require.NoError(t, err)

	// variance 0.8 pushes confidence below the floor
	assert.Equal(t, 60.0, got.Confidence)
	assert.Equal(t, 80.0, got.VolatilityForecast)
	assert.Equal(t, 20.0, got.TrendStrength)
	assert.InDelta(t, 104, got.ShortTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 110, got.MediumTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 116, got.LongTerm.InexactFloat64(), 1e-6)
}

func TestAggregate_Bearish(t *testing.T) {
	got, err := NewAggregator(nil).Aggregate(decimal.NewFromInt(100), uniformScores(-1))
	require.NoError(t, err)

	assert.InDelta(t, 80, got.ShortTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 50, got.MediumTerm.InexactFloat64(), 1e-6)
	assert.InDelta(t, 20, got.LongTerm.InexactFloat64(), 1e-6)
	assert.True(t, got.LongTerm.IsPositive())
	assert.Equal(t, 100.0, got.TrendStrength)
}

func TestAggregate_SmallSpread(t *testing.T) {
	scores := []Score{
		{Model: domain.ModelLSTM, Value: 0.1},
		{Model: domain.ModelARIMA, Value: 0.1},
		{Model: domain.ModelRandomForest, Value: 0.1},
		{Model: domain.ModelLinearRegression, Value: 0.1},
		{Model: domain.ModelSentiment, Value: -0.1},
	}

	got, err := NewAggregator(nil).Aggregate(decimal.NewFromInt(1), scores)
	require.NoError(t, err)

	// variance 0.0064
	assert.Equal(t, 89.4, got.Confidence)
	assert.Equal(t, 0.6, got.VolatilityForecast)
}

func TestAggregate_CustomWeights(t *testing.T) {
	a := NewAggregator(map[string]float64{"momentum": 1})

	got, err := a.Aggregate(decimal.NewFromInt(10), []Score{{Model: "momentum", Value: 0.5}, {Model: "unweighted", Value: 0.5}})
	require.NoError(t, err)

	assert.InDelta(t, 11, got.ShortTerm.InexactFloat64(), 1e-9)
	// unknown names are not displayed
	assert.Equal(t, domain.ModelScores{}, got.ModelScores)
}

func TestAggregate_NoScores(t *testing.T) {
	_, err := NewAggregator(nil).Aggregate(decimal.NewFromInt(1), nil)
	require.Error(t, err)
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	var sum float64
	for _, w := range DefaultWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Len(t, DefaultWeights(), len(DefaultModels()))
}
