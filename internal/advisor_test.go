package internal

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/metrics"
	"github.com/vadiminshakov/coinsight/internal/services/forecast"
	"go.uber.org/zap"
)

func snapshot(id int, symbol string, rank int, pct24h, pct7d float64) domain.AssetSnapshot {
	return domain.AssetSnapshot{
		ID:                id,
		Symbol:            symbol,
		Name:              symbol,
		Rank:              rank,
		Price:             decimal.NewFromInt(100),
		Volume24h:         decimal.NewFromInt(2_000_000_000),
		MarketCap:         decimal.NewFromInt(50_000_000_000),
		CirculatingSupply: decimal.NewFromInt(500_000_000),
		TotalSupply:       decimal.NewFromInt(500_000_000),
		PercentChange24h:  pct24h,
		PercentChange7d:   pct7d,
		LastUpdated:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func market() []domain.AssetSnapshot {
	return []domain.AssetSnapshot{
		snapshot(1, "AAA", 5, 8, 18),
		snapshot(2, "BBB", 200, -3, -12),
		snapshot(3, "CCC", 30, 2, 4),
		snapshot(4, "DDD", 8, 1, -2),
		snapshot(5, "EEE", 15, 4, 25),
		snapshot(6, "FFF", 60, -20, -30),
		snapshot(7, "GGG", 9, 8, 18),
	}
}

type sequence struct{ v float64 }

func (s *sequence) Float64() float64 {
	s.v += 0.37
	if s.v >= 1 {
		s.v -= 1
	}
	return s.v
}

func TestEvaluate(t *testing.T) {
	a := NewAdvisor(zap.NewNop())

	res, err := a.Evaluate(snapshot(1, "AAA", 5, 8, 18), &sequence{})
	require.NoError(t, err)

	assert.Equal(t, domain.RecommendationBuy, res.Recommendation)
	assert.Equal(t, 100, res.RecommendationScore)
	assert.Equal(t, domain.TrendDirectionBullish, res.TechnicalAnalysis.Trend)
	require.NotNil(t, res.Forecast)
	assert.Equal(t, domain.ForecastSourceEnsemble, res.Forecast.Source())
	assert.Equal(t, "AAA", res.Asset.Symbol)
}

func TestEvaluate_FallbackForecast(t *testing.T) {
	a := NewAdvisor(nil, WithForecaster(forecast.NewForecaster(nil, forecast.WithLookbackDays(7))))

	res, err := a.Evaluate(snapshot(1, "AAA", 5, 8, 18), &sequence{})
	require.NoError(t, err)

	require.Equal(t, domain.ForecastSourceRuleBased, res.Forecast.Source())
	assert.Equal(t, "105", res.Forecast.Targets().ShortTerm.String())
}

func TestEvaluate_Invalid(t *testing.T) {
	a := NewAdvisor(nil)

	bad := snapshot(1, "AAA", 5, 8, 18)
	bad.Price = decimal.Zero
	_, err := a.Evaluate(bad, &sequence{})
	require.ErrorIs(t, err, domain.ErrInvalidSnapshot)

	_, err = a.Evaluate(snapshot(1, "AAA", 5, 8, 18), nil)
	require.Error(t, err)
}

func TestTop_OrderAndTruncation(t *testing.T) {
	a := NewAdvisor(nil, WithSeed(42), WithWorkers(2))

	got, err := a.Top(context.Background(), market(), 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		require.GreaterOrEqual(t, prev.RecommendationScore, cur.RecommendationScore)
		if prev.RecommendationScore == cur.RecommendationScore {
			require.GreaterOrEqual(t, prev.TrendScore, cur.TrendScore)
		}
	}

	// both capped at 100 with equal trend scores, input order is kept
	assert.Equal(t, "AAA", got[0].Asset.Symbol)
	assert.Equal(t, "GGG", got[1].Asset.Symbol)
}

func TestTop_All(t *testing.T) {
	got, err := NewAdvisor(nil, WithSeed(1)).Top(context.Background(), market(), 0)
	require.NoError(t, err)
	assert.Len(t, got, len(market()))
}

func TestTop_SkipsInvalid(t *testing.T) {
	snapshots := market()
	snapshots[0].Price = decimal.NewFromInt(-1)
	snapshots[1].PercentChange7d = -100

	got, err := NewAdvisor(nil, WithSeed(1)).Top(context.Background(), snapshots, 0)
	require.NoError(t, err)
	require.Len(t, got, len(snapshots)-2)
	for _, r := range got {
		assert.NotEqual(t, "AAA", r.Asset.Symbol)
		assert.NotEqual(t, "BBB", r.Asset.Symbol)
	}
}

func TestTop_SkipsOutOfRange(t *testing.T) {
	snapshots := market()
	snapshots[0].Price = decimal.NewFromInt(10_000_000_000)
	snapshots[0].PercentChange7d = 1e305
	snapshots[1].Price = decimal.RequireFromString("1e400")

	for _, s := range snapshots[:2] {
		var err error
		require.NotPanics(t, func() {
			_, err = NewAdvisor(nil).Evaluate(s, &sequence{})
		})
		require.ErrorIs(t, err, domain.ErrInvalidSnapshot)
	}

	var (
		got []domain.RecommendationResult
		err error
	)
	require.NotPanics(t, func() {
		got, err = NewAdvisor(nil, WithSeed(1)).Top(context.Background(), snapshots, 0)
	})
	require.NoError(t, err)
	assert.Len(t, got, len(snapshots)-2)
}

func TestTop_Deterministic(t *testing.T) {
	first, err := NewAdvisor(nil, WithSeed(7)).Top(context.Background(), market(), 0)
	require.NoError(t, err)
	second, err := NewAdvisor(nil, WithSeed(7), WithWorkers(1)).Top(context.Background(), market(), 0)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Asset.Symbol, second[i].Asset.Symbol)
		assert.Equal(t, first[i].Forecast.ConfidenceLevel(), second[i].Forecast.ConfidenceLevel())
		assert.True(t, first[i].Forecast.Targets().LongTerm.Equal(second[i].Forecast.Targets().LongTerm))
	}
}

func TestTop_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAdvisor(nil).Top(ctx, market(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank(t *testing.T) {
	results := []domain.RecommendationResult{
		{Asset: domain.AssetSnapshot{Symbol: "A"}, RecommendationScore: 60, TrendScore: 50},
		{Asset: domain.AssetSnapshot{Symbol: "B"}, RecommendationScore: 80, TrendScore: 40},
		{Asset: domain.AssetSnapshot{Symbol: "C"}, RecommendationScore: 60, TrendScore: 90},
		{Asset: domain.AssetSnapshot{Symbol: "D"}, RecommendationScore: 80, TrendScore: 40},
	}

	Rank(results)

	var order []string
	for _, r := range results {
		order = append(order, r.Asset.Symbol)
	}
	assert.Equal(t, []string{"B", "D", "C", "A"}, order)
}

func TestTop_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	snapshots := append(market(), domain.AssetSnapshot{Symbol: "BAD"})

	results, err := NewAdvisor(nil, WithSeed(5), WithMetrics(m)).Top(context.Background(), snapshots, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped))
	assert.Equal(t, float64(len(market())), testutil.ToFloat64(m.RunAssets))

	var total float64
	for _, label := range []domain.Recommendation{
		domain.RecommendationStrongBuy,
		domain.RecommendationBuy,
		domain.RecommendationHold,
		domain.RecommendationSell,
		domain.RecommendationStrongSell,
	} {
		total += testutil.ToFloat64(m.Evaluations.WithLabelValues(label.String()))
	}
	assert.Equal(t, float64(len(market())), total)
}
