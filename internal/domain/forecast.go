package domain

import "github.com/shopspring/decimal"

// ForecastSource which producer built a forecast.
type ForecastSource string

const (
	ForecastSourceEnsemble  ForecastSource = "ensemble"
	ForecastSourceRuleBased ForecastSource = "rule_based"
)

// PriceTargets price targets for one week, one month and three months.
type PriceTargets struct {
	ShortTerm  decimal.Decimal `json:"short_term" yaml:"short_term"`
	MediumTerm decimal.Decimal `json:"medium_term" yaml:"medium_term"`
	LongTerm   decimal.Decimal `json:"long_term" yaml:"long_term"`
}

// Forecast either an EnsembleForecast or a RuleBasedForecast.
type Forecast interface {
	Targets() PriceTargets
	// ConfidenceLevel in [60, 95].
	ConfidenceLevel() float64
	Source() ForecastSource
	isForecast()
}

// EnsembleForecast forecast blended from the model ensemble.
type EnsembleForecast struct {
	PriceTargets `yaml:",inline"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	// TrendStrength in [0, 100].
	TrendStrength      float64 `json:"trend_strength" yaml:"trend_strength"`
	VolatilityForecast float64 `json:"volatility_forecast" yaml:"volatility_forecast"`
	// ModelScores scaled by 100.
	ModelScores ModelScores `json:"model_scores" yaml:"model_scores"`
}

func (f EnsembleForecast) Targets() PriceTargets    { return f.PriceTargets }
func (f EnsembleForecast) ConfidenceLevel() float64 { return f.Confidence }
func (f EnsembleForecast) Source() ForecastSource   { return ForecastSourceEnsemble }
func (EnsembleForecast) isForecast()                {}

// RuleBasedForecast fixed-percentage forecast derived from the qualitative trend,
// used when the ensemble cannot run.
type RuleBasedForecast struct {
	PriceTargets `yaml:",inline"`
	Confidence   float64        `json:"confidence" yaml:"confidence"`
	Trend        TrendDirection `json:"trend" yaml:"trend"`
}

func (f RuleBasedForecast) Targets() PriceTargets    { return f.PriceTargets }
func (f RuleBasedForecast) ConfidenceLevel() float64 { return f.Confidence }
func (f RuleBasedForecast) Source() ForecastSource   { return ForecastSourceRuleBased }
func (RuleBasedForecast) isForecast()                {}
