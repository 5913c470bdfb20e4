// Package recommendation scores a market snapshot with fixed rule tables and
// derives the buy/sell label, narratives and a display-level technical summary.
package recommendation

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"go.uber.org/zap"
)

const (
	baseScore = 50
	minScore  = 0
	maxScore  = 100
	highScore = 70
)

var (
	supportRatio    = decimal.NewFromFloat(0.85)
	resistanceRatio = decimal.NewFromFloat(1.15)
)

// Scores the four additive scores, each in [0, 100].
type Scores struct {
	Recommendation int
	Trend          int
	Momentum       int
	Risk           int
}

// Label maps the scores to a recommendation. Risk counts inversely.
func (s Scores) Label() domain.Recommendation {
	avg := float64(s.Recommendation+s.Trend+s.Momentum+(maxScore-s.Risk)) / 4

	switch {
	case avg >= 80:
		return domain.RecommendationStrongBuy
	case avg >= 65:
		return domain.RecommendationBuy
	case avg >= 45:
		return domain.RecommendationHold
	case avg >= 30:
		return domain.RecommendationSell
	default:
		return domain.RecommendationStrongSell
	}
}

// Assessment everything the scorer derives from one snapshot.
type Assessment struct {
	Scores            Scores
	Recommendation    domain.Recommendation
	Reasoning         []string
	RiskFactors       []string
	TechnicalAnalysis domain.TechnicalAnalysis
}

// Scorer applies the rule tables. It is stateless and safe for concurrent use.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a Scorer.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score evaluates the snapshot.
func (sc *Scorer) Score(s domain.AssetSnapshot) Assessment {
	scores := Scores{
		Recommendation: recommendationTable.apply(s),
		Trend:          trendTable.apply(s),
		Momentum:       momentumTable.apply(s),
		Risk:           riskTable.apply(s),
	}
	label := scores.Label()

	sc.logger.Debug("snapshot scored",
		zap.String("symbol", s.String()),
		zap.Int("recommendation", scores.Recommendation),
		zap.Int("trend", scores.Trend),
		zap.Int("momentum", scores.Momentum),
		zap.Int("risk", scores.Risk),
		zap.String("label", label.String()))

	return Assessment{
		Scores:            scores,
		Recommendation:    label,
		Reasoning:         render(reasoningTable, s, scores),
		RiskFactors:       render(riskFactorTable, s, scores),
		TechnicalAnalysis: Technical(s),
	}
}

// Technical builds the display-level summary from the snapshot alone.
// Its RSI is a percent-change approximation, not the indicator RSI.
func Technical(s domain.AssetSnapshot) domain.TechnicalAnalysis {
	rsi := 50 + s.PercentChange24h*2 + s.PercentChange7d*0.5

	return domain.TechnicalAnalysis{
		RSI:             math.Max(0, math.Min(100, rsi)),
		Trend:           TrendOf(s),
		SupportLevel:    s.Price.Mul(supportRatio),
		ResistanceLevel: s.Price.Mul(resistanceRatio),
		Volatility:      math.Abs(s.PercentChange24h) + math.Abs(s.PercentChange7d)/7,
	}
}

// TrendOf classifies the 24h and 7d changes.
func TrendOf(s domain.AssetSnapshot) domain.TrendDirection {
	switch {
	case s.PercentChange24h > 5 && s.PercentChange7d > 10:
		return domain.TrendDirectionBullish
	case s.PercentChange24h < -5 && s.PercentChange7d < -10:
		return domain.TrendDirectionBearish
	default:
		return domain.TrendDirectionNeutral
	}
}
