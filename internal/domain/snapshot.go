// Package domain defines core data structures used throughout the forecaster.
package domain

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// synthesisHeadroom upper bound of the noise, seasonal and volume multipliers of synthetic history.
const synthesisHeadroom = 1.25

// AssetSnapshot point-in-time market data for a single asset.
type AssetSnapshot struct {
	ID     int    `json:"id" yaml:"id"`
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	// Rank position by market capitalisation, 1 is the largest.
	Rank int `json:"rank" yaml:"rank"`

	Price             decimal.Decimal  `json:"price" yaml:"price"`
	Volume24h         decimal.Decimal  `json:"volume_24h" yaml:"volume_24h"`
	MarketCap         decimal.Decimal  `json:"market_cap" yaml:"market_cap"`
	CirculatingSupply decimal.Decimal  `json:"circulating_supply" yaml:"circulating_supply"`
	TotalSupply       decimal.Decimal  `json:"total_supply" yaml:"total_supply"`
	// MaxSupply nil when the supply is uncapped.
	MaxSupply      *decimal.Decimal `json:"max_supply" yaml:"max_supply"`
	InfiniteSupply bool             `json:"infinite_supply" yaml:"infinite_supply"`

	// percent units, 5.0 means +5%
	PercentChange1h  float64 `json:"percent_change_1h" yaml:"percent_change_1h"`
	PercentChange24h float64 `json:"percent_change_24h" yaml:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d" yaml:"percent_change_7d"`

	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// String returns the asset symbol.
func (s AssetSnapshot) String() string {
	if s.Symbol == "" {
		return s.Name
	}
	return s.Symbol
}

// HasCappedSupply reports whether a positive max supply is known.
func (s AssetSnapshot) HasCappedSupply() bool {
	return s.MaxSupply != nil && s.MaxSupply.IsPositive()
}

// Validate checks the snapshot input contract.
func (s AssetSnapshot) Validate() error {
	if !s.Price.IsPositive() {
		return errors.Wrapf(ErrInvalidSnapshot, "%s: price must be positive, got %s", s, s.Price)
	}

	nonNegative := []struct {
		field string
		value decimal.Decimal
	}{
		{"volume_24h", s.Volume24h},
		{"market_cap", s.MarketCap},
		{"circulating_supply", s.CirculatingSupply},
		{"total_supply", s.TotalSupply},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			return errors.Wrapf(ErrInvalidSnapshot, "%s: %s must not be negative, got %s", s, f.field, f.value)
		}
	}
	if s.MaxSupply != nil && s.MaxSupply.IsNegative() {
		return errors.Wrapf(ErrInvalidSnapshot, "%s: max_supply must not be negative, got %s", s, s.MaxSupply)
	}

	changes := []struct {
		field string
		value float64
	}{
		{"percent_change_1h", s.PercentChange1h},
		{"percent_change_24h", s.PercentChange24h},
		{"percent_change_7d", s.PercentChange7d},
	}
	for _, c := range changes {
		if !finite(c.value) {
			return errors.Wrapf(ErrInvalidSnapshot, "%s: %s must be finite", s, c.field)
		}
	}

	// synthetic history scales price and volume by up to these factors, all in float64
	price := s.Price.InexactFloat64()
	if !finite(price) || !finite(price*(1+math.Abs(s.PercentChange7d)/100)*synthesisHeadroom) {
		return errors.Wrapf(ErrInvalidSnapshot, "%s: price %s with percent_change_7d %g is out of float64 range", s, s.Price, s.PercentChange7d)
	}
	if volume := s.Volume24h.InexactFloat64(); !finite(volume * synthesisHeadroom) {
		return errors.Wrapf(ErrInvalidSnapshot, "%s: volume_24h %s is out of float64 range", s, s.Volume24h)
	}

	// a weekly drop of 100% or more leaves no positive price to synthesize from
	if s.PercentChange7d <= -100 {
		return errors.Wrapf(ErrInvalidSnapshot, "%s: percent_change_7d must be above -100, got %.2f", s, s.PercentChange7d)
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
