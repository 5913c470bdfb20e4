// Package history fabricates a bounded daily price series from a single asset snapshot.
package history

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultLookbackDays number of days synthesized behind the snapshot.
	DefaultLookbackDays = 90

	trendWindowDays    = 7
	noiseAmplitude     = 0.1 // ±5%
	seasonalAmplitude  = 0.02
	seasonalPeriodDays = 7.0
	volumeFloor        = 0.8
	volumeSpread       = 0.4
	priceDecimals      = 6
	day                = 24 * time.Hour
)

// Synthesizer builds synthetic history. It holds no mutable state and is safe for concurrent use.
type Synthesizer struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option configures the Synthesizer.
type Option func(*Synthesizer)

// WithClock sets the clock used to anchor series whose snapshot carries no LastUpdated time.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(logger *zap.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Synthesizer{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Synthesize returns days+1 daily points ending at the snapshot, oldest first.
//
// Each price is the snapshot price scaled by a linear trend over the last week
// (taken from the 7d change), ±5% noise and a ±2% weekly seasonal swing. Two
// random draws are consumed per point: noise first, then volume.
func (s *Synthesizer) Synthesize(snapshot domain.AssetSnapshot, days int, rng domain.RandomSource) (domain.HistorySeries, error) {
	if days < 1 {
		return nil, errors.Errorf("look-back window must be at least 1 day, got %d", days)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	anchor := snapshot.LastUpdated
	if anchor.IsZero() {
		anchor = s.now()
	}

	currentPrice := snapshot.Price.InexactFloat64()
	currentVolume := snapshot.Volume24h.InexactFloat64()
	supply := snapshot.CirculatingSupply

	withMarketCap := supply.IsPositive()
	if !withMarketCap {
		s.logger.Warn("non-positive circulating supply, synthetic market cap degrades to zero",
			zap.String("symbol", snapshot.String()),
			zap.String("circulating_supply", supply.String()))
	}

	series := make(domain.HistorySeries, 0, days+1)
	for i := days; i >= 0; i-- {
		trendFactor := 1 + (snapshot.PercentChange7d/100)*float64(trendWindowDays-min(i, trendWindowDays))/trendWindowDays
		noiseFactor := 1 + (rng.Float64()-0.5)*noiseAmplitude
		seasonalFactor := 1 + math.Sin(float64(i)/seasonalPeriodDays)*seasonalAmplitude

		rawPrice := currentPrice * trendFactor * noiseFactor * seasonalFactor
		rawVolume := currentVolume * (volumeFloor + rng.Float64()*volumeSpread)
		if !finite(rawPrice) || !finite(rawVolume) {
			return nil, errors.Errorf("%s: synthetic point %d days back is out of float64 range (price %g, volume %g)",
				snapshot, i, rawPrice, rawVolume)
		}

		price := decimal.NewFromFloat(rawPrice)
		// sub-micro prices keep full precision so the series stays positive
		if rounded := price.Round(priceDecimals); rounded.IsPositive() {
			price = rounded
		}
		volume := decimal.NewFromFloat(rawVolume).Round(0)

		marketCap := decimal.Zero
		if withMarketCap {
			marketCap = price.Mul(supply).Round(0)
		}

		change := snapshot.PercentChange24h
		if n := len(series); n > 0 {
			prev := series[n-1].Price
			change = price.Sub(prev).Div(prev).InexactFloat64() * 100
		}

		series = append(series, domain.HistoricalPoint{
			Timestamp:      anchor.Add(-time.Duration(i) * day),
			Price:          price,
			Volume:         volume,
			MarketCap:      marketCap,
			PriceChange24h: domain.RoundTo(change, 2),
		})
	}

	return series, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
