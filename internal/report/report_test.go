package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/services/market/analysis"
	"gopkg.in/yaml.v3"
)

func testReport() Report {
	btc := domain.AssetSnapshot{
		Symbol:           "BTC",
		Name:             "Bitcoin",
		Price:            decimal.NewFromInt(60000),
		Volume24h:        decimal.NewFromInt(30_000_000_000),
		MarketCap:        decimal.NewFromInt(1_200_000_000_000),
		PercentChange24h: 3,
		PercentChange7d:  12,
	}
	doge := domain.AssetSnapshot{
		Symbol:           "DOGE",
		Name:             "Dogecoin",
		Price:            decimal.RequireFromString("0.1234567"),
		Volume24h:        decimal.NewFromInt(900_000_000),
		MarketCap:        decimal.NewFromInt(18_000_000_000),
		PercentChange24h: -12,
		PercentChange7d:  -15,
		InfiniteSupply:   true,
	}

	results := []domain.RecommendationResult{
		{
			Asset:               btc,
			RecommendationScore: 100,
			TrendScore:          85,
			MomentumScore:       65,
			RiskScore:           50,
			Recommendation:      domain.RecommendationBuy,
			Reasoning:           []string{"Strong 24h performance with 3.00% gain"},
			TechnicalAnalysis:   domain.TechnicalAnalysis{RSI: 62, Trend: domain.TrendDirectionNeutral},
			Forecast: domain.EnsembleForecast{
				PriceTargets: domain.PriceTargets{
					ShortTerm:  decimal.NewFromInt(61000),
					MediumTerm: decimal.NewFromInt(62500),
					LongTerm:   decimal.NewFromInt(64000),
				},
				Confidence: 88.5,
			},
		},
		{
			Asset:               doge,
			RecommendationScore: 50,
			TrendScore:          50,
			MomentumScore:       55,
			RiskScore:           80,
			Recommendation:      domain.RecommendationSell,
			RiskFactors:         []string{"Infinite supply - potential for inflation over time"},
			Forecast:            domain.RuleBasedForecast{Confidence: 60, Trend: domain.TrendDirectionBearish},
		},
	}

	stats := analysis.NewMarketStats([]domain.AssetSnapshot{btc, doge}, 3)
	return New(stats, results, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func TestNew(t *testing.T) {
	r := testReport()

	require.Len(t, r.Recommendations, 2)
	assert.Equal(t, domain.ForecastSourceEnsemble, r.Recommendations[0].ForecastSource)
	assert.Equal(t, domain.ForecastSourceRuleBased, r.Recommendations[1].ForecastSource)
	assert.Equal(t, []Mover{{Symbol: "BTC", PercentChange24h: 3}}, r.Market.TopGainers)
	assert.Equal(t, []Mover{{Symbol: "DOGE", PercentChange24h: -12}}, r.Market.TopLosers)
	assert.Equal(t, 2, r.Market.Assets)

	results := r.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "BTC", results[0].Asset.Symbol)
	assert.Equal(t, domain.RecommendationSell, results[1].Recommendation)
	assert.Equal(t, "1218000000000", r.Market.TotalMarketCap.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, testReport()))
	out := buf.String()

	for _, want := range []string{
		"Total market cap: $1.22T",
		"24h volume: $30.90B",
		"Top gainers: BTC +3.00%",
		"Top losers: DOGE -12.00%",
		"SIGNAL",
		"Bitcoin (BTC)",
		"$60000.00",
		"$0.123457",
		"Forecast (ensemble, 88.5% confidence): 1w $61000.00",
		"+ Strong 24h performance with 3.00% gain",
		"! Infinite supply - potential for inflation over time",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Bitcoin (BTC)"), strings.Index(out, "Dogecoin (DOGE)"))
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, New(analysis.MarketStats{}, nil, time.Time{})))
	assert.Contains(t, buf.String(), "no assets could be evaluated")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, testReport()))

	var decoded struct {
		Recommendations []struct {
			Recommendation      string `yaml:"recommendation"`
			RecommendationScore int    `yaml:"recommendation_score"`
			ForecastSource      string `yaml:"forecast_source"`
			Asset               struct {
				Symbol string `yaml:"symbol"`
				Price  string `yaml:"price"`
			} `yaml:"asset"`
			Forecast map[string]any `yaml:"forecast"`
		} `yaml:"recommendations"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Recommendations, 2)
	first := decoded.Recommendations[0]
	assert.Equal(t, "BTC", first.Asset.Symbol)
	assert.Equal(t, "60000", first.Asset.Price)
	assert.Equal(t, "Buy", first.Recommendation)
	assert.Equal(t, 100, first.RecommendationScore)
	assert.Equal(t, "ensemble", first.ForecastSource)
	assert.Equal(t, "61000", first.Forecast["short_term"])

	assert.Equal(t, "rule_based", decoded.Recommendations[1].ForecastSource)
	assert.Equal(t, "Bearish", decoded.Recommendations[1].Forecast["trend"])
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1.50", FormatPrice(decimal.RequireFromString("1.5")))
	assert.Equal(t, "$0.000012", FormatPrice(decimal.RequireFromString("0.0000123")))
	assert.Equal(t, "$950.00", FormatUSD(decimal.NewFromInt(950)))
	assert.Equal(t, "$1.50K", FormatUSD(decimal.NewFromInt(1500)))
	assert.Equal(t, "$2.50M", FormatUSD(decimal.NewFromInt(2_500_000)))
	assert.Equal(t, "+1.25%", FormatPercent(1.25))
	assert.Equal(t, "-0.50%", FormatPercent(-0.5))
}
