package domain

import "github.com/shopspring/decimal"

// Recommendation discrete buy/sell label.
type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "Strong Buy"
	RecommendationBuy        Recommendation = "Buy"
	RecommendationHold       Recommendation = "Hold"
	RecommendationSell       Recommendation = "Sell"
	RecommendationStrongSell Recommendation = "Strong Sell"
)

// String returns the string representation.
func (r Recommendation) String() string {
	return string(r)
}

// IsValid checks if the Recommendation value is valid.
func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationStrongBuy, RecommendationBuy, RecommendationHold,
		RecommendationSell, RecommendationStrongSell:
		return true
	}
	return false
}

// IsBullish reports whether the label advises buying.
func (r Recommendation) IsBullish() bool {
	return r == RecommendationStrongBuy || r == RecommendationBuy
}

// IsBearish reports whether the label advises selling.
func (r Recommendation) IsBearish() bool {
	return r == RecommendationStrongSell || r == RecommendationSell
}

// TechnicalAnalysis display-facing technical summary derived from the snapshot alone.
type TechnicalAnalysis struct {
	RSI             float64         `json:"rsi" yaml:"rsi"`
	Trend           TrendDirection  `json:"trend" yaml:"trend"`
	SupportLevel    decimal.Decimal `json:"support_level" yaml:"support_level"`
	ResistanceLevel decimal.Decimal `json:"resistance_level" yaml:"resistance_level"`
	Volatility      float64         `json:"volatility" yaml:"volatility"`
}

// RecommendationResult complete evaluation of one asset.
type RecommendationResult struct {
	Asset               AssetSnapshot     `json:"asset" yaml:"asset"`
	RecommendationScore int               `json:"recommendation_score" yaml:"recommendation_score"`
	TrendScore          int               `json:"trend_score" yaml:"trend_score"`
	MomentumScore       int               `json:"momentum_score" yaml:"momentum_score"`
	RiskScore           int               `json:"risk_score" yaml:"risk_score"`
	Recommendation      Recommendation    `json:"recommendation" yaml:"recommendation"`
	Reasoning           []string          `json:"reasoning" yaml:"reasoning"`
	RiskFactors         []string          `json:"risk_factors" yaml:"risk_factors"`
	TechnicalAnalysis   TechnicalAnalysis `json:"technical_analysis" yaml:"technical_analysis"`
	Forecast            Forecast          `json:"forecast" yaml:"forecast"`
}
