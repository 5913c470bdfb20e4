package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/coinsight/internal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/services/forecast"
	"go.uber.org/zap"
)

type staticSource struct {
	snapshots []domain.AssetSnapshot
	err       error
}

func (s staticSource) Snapshots(context.Context) ([]domain.AssetSnapshot, error) {
	return s.snapshots, s.err
}

type memJournal struct {
	runs []domain.Run
	err  error
}

func (j *memJournal) Save(run domain.Run) error {
	j.runs = append(j.runs, run)
	return j.err
}

func asset(symbol string, rank int, pct24h float64) domain.AssetSnapshot {
	return domain.AssetSnapshot{
		Symbol:            symbol,
		Name:              symbol,
		Rank:              rank,
		Price:             decimal.NewFromInt(10),
		Volume24h:         decimal.NewFromInt(500_000_000),
		MarketCap:         decimal.NewFromInt(5_000_000_000),
		CirculatingSupply: decimal.NewFromInt(500_000_000),
		PercentChange24h:  pct24h,
		PercentChange7d:   pct24h * 2,
		LastUpdated:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testApp(source staticSource, journal runJournal, top int) *app {
	return &app{
		logger: zap.NewNop(),
		source: source,
		advisor: internal.NewAdvisor(nil,
			internal.WithSeed(3),
			internal.WithForecaster(forecast.NewForecaster(nil, forecast.WithLookbackDays(7))),
		),
		journal: journal,
		top:     top,
	}
}

func TestBuildReport(t *testing.T) {
	source := staticSource{snapshots: []domain.AssetSnapshot{
		asset("UP", 3, 6),
		asset("DOWN", 40, -12),
		asset("FLAT", 20, 0.5),
	}}
	journal := &memJournal{}

	rep, err := testApp(source, journal, 2).buildReport(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Recommendations, 2)
	assert.Equal(t, "UP", rep.Recommendations[0].Asset.Symbol)
	assert.Equal(t, domain.ForecastSourceRuleBased, rep.Recommendations[0].ForecastSource)
	assert.Equal(t, 3, rep.Market.Assets)
	require.Len(t, rep.Market.TopGainers, 2)
	assert.Equal(t, "UP", rep.Market.TopGainers[0].Symbol)
	assert.Empty(t, journal.runs)
}

func TestEvaluate(t *testing.T) {
	source := staticSource{snapshots: []domain.AssetSnapshot{
		asset("UP", 3, 6),
		asset("DOWN", 40, -12),
		asset("FLAT", 20, 0.5),
	}}
	journal := &memJournal{}

	rep, err := testApp(source, journal, 2).evaluate(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Recommendations, 2)

	require.Len(t, journal.runs, 1)
	run := journal.runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Assets)
	assert.Equal(t, rep.GeneratedAt, run.GeneratedAt)
	require.Len(t, run.Entries, 2)
	assert.Equal(t, "UP", run.Entries[0].Symbol)
	assert.Equal(t, rep.Recommendations[0].Recommendation, run.Entries[0].Recommendation)
}

func TestEvaluate_JournalFailureKeepsReport(t *testing.T) {
	journal := &memJournal{err: errors.New("disk full")}

	rep, err := testApp(staticSource{snapshots: []domain.AssetSnapshot{asset("UP", 3, 6)}}, journal, 0).evaluate(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Recommendations, 1)
	assert.Len(t, journal.runs, 1)
}

func TestEvaluate_SourceError(t *testing.T) {
	journal := &memJournal{}

	_, err := testApp(staticSource{err: errors.New("no listing")}, journal, 0).evaluate(context.Background())
	require.Error(t, err)
	assert.Empty(t, journal.runs)
}

func TestEvaluate_WithoutJournal(t *testing.T) {
	rep, err := testApp(staticSource{snapshots: []domain.AssetSnapshot{asset("UP", 3, 6)}}, nil, 0).evaluate(context.Background())
	require.NoError(t, err)
	assert.Len(t, rep.Recommendations, 1)
}
