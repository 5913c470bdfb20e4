// Package analysis provides market analysis utilities such as sentiment and market-wide stats.
package analysis

import (
	"math"

	"github.com/vadiminshakov/coinsight/internal/domain"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const (
	volumeAveragePeriod = 7
	newsNoiseAmplitude  = 0.2
	whaleNoiseAmplitude = 0.3
)

// SentimentEstimator derives bounded sentiment signals from a snapshot and its recent history.
type SentimentEstimator struct {
	logger *zap.Logger
}

// NewSentimentEstimator creates a new SentimentEstimator instance
func NewSentimentEstimator(logger *zap.Logger) *SentimentEstimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SentimentEstimator{
		logger: logger,
	}
}

// Estimate computes the sentiment signals. Exactly two random draws are consumed:
// news first, then whale activity.
func (e *SentimentEstimator) Estimate(snapshot domain.AssetSnapshot, series domain.HistorySeries, rng domain.RandomSource) domain.MarketSentiment {
	news := rng.Float64()*2*newsNoiseAmplitude - newsNoiseAmplitude
	whale := rng.Float64()*2*whaleNoiseAmplitude - whaleNoiseAmplitude

	return domain.MarketSentiment{
		Social:         math.Tanh(snapshot.PercentChange24h / 100 * 2),
		News:           news,
		FearGreedIndex: clamp(50+snapshot.PercentChange7d*2, 0, 100),
		Volume:         e.volumeSentiment(snapshot, series),
		WhaleActivity:  whale,
	}
}

// volumeSentiment compares the snapshot volume with the average of the last 7 synthetic volumes.
func (e *SentimentEstimator) volumeSentiment(snapshot domain.AssetSnapshot, series domain.HistorySeries) float64 {
	recent := series.Last(volumeAveragePeriod)
	if len(recent) == 0 {
		e.logger.Warn("no history for volume sentiment", zap.String("symbol", snapshot.String()))
		return 0
	}

	avg := stat.Mean(recent.Volumes(), nil)
	if avg == 0 {
		return 0
	}

	return math.Tanh((snapshot.Volume24h.InexactFloat64() - avg) / avg)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
