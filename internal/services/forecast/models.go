// Package forecast implements the scoring model ensemble and the aggregation of
// its outputs into price targets.
package forecast

import (
	"math"

	"github.com/vadiminshakov/coinsight/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	sequenceWindow       = 30
	autoregressiveWindow = 21
	movingAverageReturns = 5
)

// Inputs everything a model may read. Models must not modify it.
type Inputs struct {
	Series     domain.HistorySeries
	Indicators domain.TechnicalIndicators
	Sentiment  domain.MarketSentiment
}

// Model a deterministic scorer producing a signed strength in [-1, 1].
type Model interface {
	Name() string
	Score(in Inputs) float64
}

// DefaultModels returns the ensemble in its fixed evaluation order.
func DefaultModels() []Model {
	return []Model{
		SequenceModel{},
		AutoregressiveModel{},
		VoteModel{},
		LinearModel{},
		SentimentModel{},
	}
}

// SequenceModel weighs price and volume slopes of the last 30 days with RSI, MACD
// and Bollinger position.
type SequenceModel struct{}

func (SequenceModel) Name() string { return domain.ModelLSTM }

func (SequenceModel) Score(in Inputs) float64 {
	window := in.Series.Last(sequenceWindow)
	if len(window) == 0 {
		return 0
	}

	prices := window.Prices()
	volumes := window.Volumes()

	priceTrend := normalizedSlope(prices)
	volumeTrend := normalizedSlope(volumes)

	rsiSignal := (in.Indicators.RSI - 50) / 50

	macdSignal := -1.0
	if in.Indicators.MACDHistogram > 0 {
		macdSignal = 1
	}

	var bandPosition float64
	if width := in.Indicators.BBUpper - in.Indicators.BBLower; width != 0 {
		bandPosition = (prices[len(prices)-1]-in.Indicators.BBLower)/width - 0.5
	}

	return math.Tanh(
		priceTrend*0.4 +
			volumeTrend*0.2 +
			rsiSignal*0.15 +
			macdSignal*0.15 +
			bandPosition*0.1,
	)
}

// AutoregressiveModel a single-lag autoregressive term plus a short moving average of daily returns.
type AutoregressiveModel struct{}

func (AutoregressiveModel) Name() string { return domain.ModelARIMA }

func (AutoregressiveModel) Score(in Inputs) float64 {
	prices := in.Series.Last(autoregressiveWindow).Prices()
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}

	ar1 := returns[len(returns)-1] * 0.3

	ma1 := stat.Mean(returns[max(0, len(returns)-movingAverageReturns):], nil) * 0.2

	return math.Tanh((ar1 + ma1) * 10)
}

// VoteModel averages five fixed rule votes.
type VoteModel struct{}

func (VoteModel) Name() string { return domain.ModelRandomForest }

func (VoteModel) Score(in Inputs) float64 {
	ind := in.Indicators

	var rsiVote float64
	switch {
	case ind.RSI > 70:
		rsiVote = -0.2
	case ind.RSI < 30:
		rsiVote = 0.3
	}

	macdVote := -0.1
	if ind.MACD > ind.MACDSignal {
		macdVote = 0.2
	}

	bandVote := -0.05
	if ind.BBUpper > ind.BBMiddle*1.1 {
		bandVote = 0.1
	}

	return stat.Mean([]float64{
		rsiVote,
		macdVote,
		bandVote,
		in.Sentiment.Social * 0.3,
		in.Sentiment.Volume * 0.2,
	}, nil)
}

// LinearModel fixed-coefficient regression over oscillator values.
type LinearModel struct{}

func (LinearModel) Name() string { return domain.ModelLinearRegression }

func (LinearModel) Score(in Inputs) float64 {
	ind := in.Indicators

	features := []float64{
		ind.RSI / 100,
		ind.MACDHistogram,
		ind.Momentum,
		ind.ROC / 100,
		ind.StochasticK / 100,
	}
	coefficients := []float64{0.15, 0.25, 0.2, 0.3, 0.1}

	return math.Tanh(0.02 + floats.Dot(features, coefficients))
}

// SentimentModel mean of social and news sentiment.
type SentimentModel struct{}

func (SentimentModel) Name() string { return domain.ModelSentiment }

func (SentimentModel) Score(in Inputs) float64 {
	return (in.Sentiment.Social + in.Sentiment.News) / 2
}

// normalizedSlope scales values by their maximum and returns (last-first)/len.
func normalizedSlope(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	peak := floats.Max(values)
	if peak == 0 {
		return 0
	}

	return (values[len(values)-1]/peak - values[0]/peak) / float64(len(values))
}
