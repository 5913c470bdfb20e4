package analysis

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
)

// MarketStats market-wide aggregates over a set of snapshots.
type MarketStats struct {
	// Assets number of snapshots in the listing.
	Assets         int             `json:"assets" yaml:"assets"`
	TotalMarketCap decimal.Decimal `json:"total_market_cap" yaml:"total_market_cap"`
	TotalVolume24h decimal.Decimal `json:"total_volume_24h" yaml:"total_volume_24h"`
	// TopGainers sorted by 24h change, largest first.
	TopGainers []domain.AssetSnapshot `json:"top_gainers" yaml:"top_gainers"`
	// TopLosers sorted by 24h change, smallest first.
	TopLosers []domain.AssetSnapshot `json:"top_losers" yaml:"top_losers"`
}

// NewMarketStats computes totals and the top movers. Only assets that actually
// rose (fell) are listed as gainers (losers), at most limit of each.
func NewMarketStats(snapshots []domain.AssetSnapshot, limit int) MarketStats {
	stats := MarketStats{
		Assets:         len(snapshots),
		TotalMarketCap: decimal.Zero,
		TotalVolume24h: decimal.Zero,
	}

	var gainers, losers []domain.AssetSnapshot
	for _, s := range snapshots {
		stats.TotalMarketCap = stats.TotalMarketCap.Add(s.MarketCap)
		stats.TotalVolume24h = stats.TotalVolume24h.Add(s.Volume24h)

		switch {
		case s.PercentChange24h > 0:
			gainers = append(gainers, s)
		case s.PercentChange24h < 0:
			losers = append(losers, s)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].PercentChange24h > gainers[j].PercentChange24h
	})
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].PercentChange24h < losers[j].PercentChange24h
	})

	stats.TopGainers = truncate(gainers, limit)
	stats.TopLosers = truncate(losers, limit)

	return stats
}

func truncate(snapshots []domain.AssetSnapshot, limit int) []domain.AssetSnapshot {
	if limit >= 0 && len(snapshots) > limit {
		return snapshots[:limit]
	}
	return snapshots
}
