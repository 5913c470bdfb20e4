package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoricalPoint single daily observation of a synthetic series.
type HistoricalPoint struct {
	Timestamp      time.Time
	Price          decimal.Decimal
	Volume         decimal.Decimal
	MarketCap      decimal.Decimal
	PriceChange24h float64
}

// HistorySeries chronologically ordered points, oldest first.
type HistorySeries []HistoricalPoint

// Prices returns the close prices as float64 values.
func (h HistorySeries) Prices() []float64 {
	result := make([]float64, len(h))
	for i, p := range h {
		result[i] = p.Price.InexactFloat64()
	}
	return result
}

// Volumes returns the daily volumes as float64 values.
func (h HistorySeries) Volumes() []float64 {
	result := make([]float64, len(h))
	for i, p := range h {
		result[i] = p.Volume.InexactFloat64()
	}
	return result
}

// Last returns the most recent n points, or the whole series when shorter.
func (h HistorySeries) Last(n int) HistorySeries {
	if n >= len(h) {
		return h
	}
	if n <= 0 {
		return HistorySeries{}
	}
	return h[len(h)-n:]
}
