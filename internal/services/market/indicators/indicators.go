// Package indicators provides technical analysis indicators for the forecasting models.
// It uses the cinar/indicator library for the windowed moving statistics (SMA, moving
// max/min), gonum for dispersion, and computes the remaining indicators directly over
// the price slice.
package indicators

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"gonum.org/v1/gonum/stat"
)

const (
	smaShortPeriod   = 20
	smaLongPeriod    = 50
	emaFastPeriod    = 12
	emaSlowPeriod    = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	bollingerPeriod  = 20
	bollingerWidth   = 2
	stochasticPeriod = 14
	momentumPeriod   = 10

	// MinHistory shortest series Calculate accepts.
	MinHistory = smaLongPeriod

	neutralStochastic = 50
	neutralWilliamsR  = -50
)

// Calculate computes the full indicator set from the closing prices of the series.
func Calculate(series domain.HistorySeries) (domain.TechnicalIndicators, error) {
	if err := requireLength("indicator set", len(series), MinHistory); err != nil {
		return domain.TechnicalIndicators{}, err
	}

	prices := series.Prices()

	sma20, err := SMA(prices, smaShortPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate SMA20")
	}
	sma50, err := SMA(prices, smaLongPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate SMA50")
	}

	ema12, err := EMA(prices, emaFastPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate EMA12")
	}
	ema26, err := EMA(prices, emaSlowPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate EMA26")
	}

	macd, signal, histogram, err := MACD(ema12, ema26)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate MACD")
	}

	rsi, err := RSI(prices, rsiPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate RSI14")
	}

	upper, middle, lower, err := BollingerBands(prices, bollingerPeriod, bollingerWidth)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate Bollinger bands")
	}

	k, d, err := Stochastic(prices, stochasticPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate stochastic oscillator")
	}

	williams, err := WilliamsR(prices, stochasticPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate Williams %R")
	}

	momentum, err := Momentum(prices, momentumPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate momentum")
	}

	roc, err := ROC(prices, momentumPeriod)
	if err != nil {
		return domain.TechnicalIndicators{}, errors.Wrap(err, "failed to calculate rate of change")
	}

	return domain.TechnicalIndicators{
		SMA20:         sma20,
		SMA50:         sma50,
		EMA12:         ema12,
		EMA26:         ema26,
		RSI:           rsi,
		MACD:          macd,
		MACDSignal:    signal,
		MACDHistogram: histogram,
		BBUpper:       upper,
		BBMiddle:      middle,
		BBLower:       lower,
		StochasticK:   k,
		StochasticD:   d,
		WilliamsR:     williams,
		Momentum:      momentum,
		ROC:           roc,
	}, nil
}

// SMA returns the arithmetic mean of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if err := requirePeriod("SMA", period); err != nil {
		return 0, err
	}
	if err := requireLength("SMA", len(prices), period); err != nil {
		return 0, err
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))

	return values[len(values)-1], nil
}

// EMA returns the exponential moving average over the whole slice, seeded with its first price.
// The multiplier is 2/(period+1).
func EMA(prices []float64, period int) (float64, error) {
	if err := requirePeriod("EMA", period); err != nil {
		return 0, err
	}
	if err := requireLength("EMA", len(prices), 1); err != nil {
		return 0, err
	}

	multiplier := 2 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = p*multiplier + ema*(1-multiplier)
	}

	return ema, nil
}

// MACD returns the MACD line, its signal and histogram.
// The signal is an EMA(9) over the single current MACD value, so it equals the MACD
// line and the histogram is zero.
func MACD(emaFast, emaSlow float64) (macd, signal, histogram float64, err error) {
	macd = emaFast - emaSlow

	signal, err = EMA([]float64{macd}, macdSignalPeriod)
	if err != nil {
		return 0, 0, 0, err
	}

	return macd, signal, macd - signal, nil
}

// RSI returns the relative strength index from the mean gain and mean loss of the
// last period one-step price deltas. A window without losses is 100.
func RSI(prices []float64, period int) (float64, error) {
	if err := requirePeriod("RSI", period); err != nil {
		return 0, err
	}
	if err := requireLength("RSI", len(prices), period+1); err != nil {
		return 0, err
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// StdDev returns the population standard deviation of the last period prices.
func StdDev(prices []float64, period int) (float64, error) {
	if err := requirePeriod("standard deviation", period); err != nil {
		return 0, err
	}
	if err := requireLength("standard deviation", len(prices), period); err != nil {
		return 0, err
	}

	return stat.PopStdDev(prices[len(prices)-period:], nil), nil
}

// BollingerBands returns the bands at width standard deviations around SMA(period).
func BollingerBands(prices []float64, period int, width float64) (upper, middle, lower float64, err error) {
	middle, err = SMA(prices, period)
	if err != nil {
		return 0, 0, 0, err
	}

	std, err := StdDev(prices, period)
	if err != nil {
		return 0, 0, 0, err
	}

	return middle + std*width, middle, middle - std*width, nil
}

// Stochastic returns %K and %D over the last period prices. %D is not smoothed and
// equals %K. A flat window yields the neutral 50.
func Stochastic(prices []float64, period int) (k, d float64, err error) {
	highest, lowest, err := priceRange("stochastic oscillator", prices, period)
	if err != nil {
		return 0, 0, err
	}

	if highest == lowest {
		return neutralStochastic, neutralStochastic, nil
	}

	last := prices[len(prices)-1]
	k = (last - lowest) / (highest - lowest) * 100

	return k, k, nil
}

// WilliamsR returns Williams %R over the last period prices, in [-100, 0].
// A flat window yields the neutral -50.
func WilliamsR(prices []float64, period int) (float64, error) {
	highest, lowest, err := priceRange("Williams %R", prices, period)
	if err != nil {
		return 0, err
	}

	if highest == lowest {
		return neutralWilliamsR, nil
	}

	last := prices[len(prices)-1]
	return (highest - last) / (highest - lowest) * -100, nil
}

// Momentum returns price[t] - price[t-period].
func Momentum(prices []float64, period int) (float64, error) {
	if err := requirePeriod("momentum", period); err != nil {
		return 0, err
	}
	if err := requireLength("momentum", len(prices), period+1); err != nil {
		return 0, err
	}

	last := len(prices) - 1
	return prices[last] - prices[last-period], nil
}

// ROC returns the percentage rate of change over period. A zero base price yields 0.
func ROC(prices []float64, period int) (float64, error) {
	if err := requirePeriod("rate of change", period); err != nil {
		return 0, err
	}
	if err := requireLength("rate of change", len(prices), period+1); err != nil {
		return 0, err
	}

	last := len(prices) - 1
	previous := prices[last-period]
	if previous == 0 {
		return 0, nil
	}

	return (prices[last] - previous) / previous * 100, nil
}

// priceRange returns the highest and lowest of the last period prices.
func priceRange(name string, prices []float64, period int) (highest, lowest float64, err error) {
	if err := requirePeriod(name, period); err != nil {
		return 0, 0, err
	}
	if err := requireLength(name, len(prices), period); err != nil {
		return 0, 0, err
	}

	window := prices[len(prices)-period:]

	maxes := helper.ChanToSlice(trend.NewMovingMaxWithPeriod[float64](period).Compute(helper.SliceToChan(window)))
	mins := helper.ChanToSlice(trend.NewMovingMinWithPeriod[float64](period).Compute(helper.SliceToChan(window)))

	return maxes[len(maxes)-1], mins[len(mins)-1], nil
}

func requireLength(name string, got, need int) error {
	if got < need {
		return errors.Wrapf(domain.ErrInsufficientHistory, "%s: need %d points, got %d", name, need, got)
	}
	return nil
}

func requirePeriod(name string, period int) error {
	if period < 1 {
		return errors.Errorf("%s: period must be positive, got %d", name, period)
	}
	return nil
}
