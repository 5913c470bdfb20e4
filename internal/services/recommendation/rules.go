package recommendation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
)

var (
	hundredMillion = decimal.NewFromInt(100_000_000)
	oneBillion     = decimal.NewFromInt(1_000_000_000)
	fiveBillion    = decimal.NewFromInt(5_000_000_000)
	tenBillion     = decimal.NewFromInt(10_000_000_000)
	scarcityRatio  = decimal.NewFromFloat(0.8)
)

type predicate func(s domain.AssetSnapshot) bool

// scoreRule adds delta when the predicate holds.
type scoreRule struct {
	when  predicate
	delta int
}

// tier is a list of rules of which only the first matching one applies.
// Independent rules are single-rule tiers.
type tier []scoreRule

func single(when predicate, delta int) tier {
	return tier{{when: when, delta: delta}}
}

// scoreTable rules of one score, applied to the base and clamped to [0, 100].
type scoreTable []tier

func (t scoreTable) apply(s domain.AssetSnapshot) int {
	score := baseScore
	for _, rules := range t {
		for _, r := range rules {
			if r.when(s) {
				score += r.delta
				break
			}
		}
	}
	return max(minScore, min(maxScore, score))
}

func change1hAbove(v float64) predicate {
	return func(s domain.AssetSnapshot) bool { return s.PercentChange1h > v }
}

func change24hAbove(v float64) predicate {
	return func(s domain.AssetSnapshot) bool { return s.PercentChange24h > v }
}

func change24hBelow(v float64) predicate {
	return func(s domain.AssetSnapshot) bool { return s.PercentChange24h < v }
}

func abs24hAbove(v float64) predicate {
	return func(s domain.AssetSnapshot) bool { return math.Abs(s.PercentChange24h) > v }
}

func change7dAbove(v float64) predicate {
	return func(s domain.AssetSnapshot) bool { return s.PercentChange7d > v }
}

func rankWithin(rank int) predicate {
	return func(s domain.AssetSnapshot) bool { return s.Rank <= rank }
}

func volumeAbove(v decimal.Decimal) predicate {
	return func(s domain.AssetSnapshot) bool { return s.Volume24h.GreaterThan(v) }
}

func marketCapBelow(v decimal.Decimal) predicate {
	return func(s domain.AssetSnapshot) bool { return s.MarketCap.LessThan(v) }
}

func scarce(s domain.AssetSnapshot) bool {
	return s.HasCappedSupply() && s.CirculatingSupply.LessThan(s.MaxSupply.Mul(scarcityRatio))
}

func infiniteSupply(s domain.AssetSnapshot) bool {
	return s.InfiniteSupply
}

var recommendationTable = scoreTable{
	single(change24hAbove(0), 10),
	single(change7dAbove(0), 15),
	single(change24hAbove(5), 5),
	single(change7dAbove(10), 10),
	{
		{when: rankWithin(10), delta: 15},
		{when: rankWithin(25), delta: 10},
		{when: rankWithin(50), delta: 5},
	},
	{
		{when: volumeAbove(oneBillion), delta: 10},
		{when: volumeAbove(hundredMillion), delta: 5},
	},
	single(scarce, 5),
}

var trendTable = scoreTable{
	single(change1hAbove(0), 5),
	single(change24hAbove(0), 10),
	single(change7dAbove(0), 15),
	single(change24hAbove(5), 10),
	single(change7dAbove(15), 10),
}

var momentumTable = scoreTable{
	{
		{when: volumeAbove(fiveBillion), delta: 20},
		{when: volumeAbove(oneBillion), delta: 15},
		{when: volumeAbove(hundredMillion), delta: 10},
	},
	single(change24hAbove(10), 15),
	single(change7dAbove(20), 15),
}

var riskTable = scoreTable{
	{
		{when: abs24hAbove(20), delta: 20},
		{when: abs24hAbove(10), delta: 10},
	},
	{
		{when: marketCapBelow(oneBillion), delta: 15},
		{when: marketCapBelow(tenBillion), delta: 10},
	},
	single(infiniteSupply, 10),
}

// narrative emits a message when its condition holds for the snapshot and its scores.
type narrative struct {
	when    func(s domain.AssetSnapshot, sc Scores) bool
	message func(s domain.AssetSnapshot) string
}

func onSnapshot(p predicate) func(domain.AssetSnapshot, Scores) bool {
	return func(s domain.AssetSnapshot, _ Scores) bool { return p(s) }
}

func fixed(msg string) func(domain.AssetSnapshot) string {
	return func(domain.AssetSnapshot) string { return msg }
}

var reasoningTable = []narrative{
	{
		when: onSnapshot(change24hAbove(0)),
		message: func(s domain.AssetSnapshot) string {
			return fmt.Sprintf("Strong 24h performance with %.2f%% gain", s.PercentChange24h)
		},
	},
	{
		when: onSnapshot(change7dAbove(0)),
		message: func(s domain.AssetSnapshot) string {
			return fmt.Sprintf("Positive weekly momentum with %.2f%% growth", s.PercentChange7d)
		},
	},
	{
		when:    onSnapshot(rankWithin(10)),
		message: fixed("Top 10 cryptocurrency by market cap - established market leader"),
	},
	{
		when: func(s domain.AssetSnapshot, _ Scores) bool {
			return s.Rank > 10 && s.Rank <= 25
		},
		message: fixed("Top 25 cryptocurrency - strong market presence"),
	},
	{
		when:    onSnapshot(volumeAbove(oneBillion)),
		message: fixed("High trading volume indicates strong market interest"),
	},
	{
		when:    onSnapshot(scarce),
		message: fixed("Limited circulating supply relative to max supply - scarcity factor"),
	},
	{
		when:    func(_ domain.AssetSnapshot, sc Scores) bool { return sc.Recommendation > highScore },
		message: fixed("High overall recommendation score based on multiple factors"),
	},
	{
		when:    func(_ domain.AssetSnapshot, sc Scores) bool { return sc.Trend > highScore },
		message: fixed("Strong positive trend indicators"),
	},
	{
		when:    func(_ domain.AssetSnapshot, sc Scores) bool { return sc.Momentum > highScore },
		message: fixed("High momentum with strong volume and price action"),
	},
}

var riskFactorTable = []narrative{
	{
		when: onSnapshot(abs24hAbove(15)),
		message: func(s domain.AssetSnapshot) string {
			return fmt.Sprintf("High volatility - 24h change of %.2f%%", s.PercentChange24h)
		},
	},
	{
		when:    onSnapshot(marketCapBelow(oneBillion)),
		message: fixed("Small market cap - higher risk of price manipulation"),
	},
	{
		when:    onSnapshot(infiniteSupply),
		message: fixed("Infinite supply - potential for inflation over time"),
	},
	{
		when:    onSnapshot(change24hBelow(-10)),
		message: fixed("Recent significant decline - potential bearish momentum"),
	},
	{
		when:    func(_ domain.AssetSnapshot, sc Scores) bool { return sc.Risk > highScore },
		message: fixed("High overall risk score - consider position sizing carefully"),
	},
}

func render(table []narrative, s domain.AssetSnapshot, sc Scores) []string {
	out := make([]string, 0, len(table))
	for _, n := range table {
		if n.when(s, sc) {
			out = append(out, n.message(s))
		}
	}
	return out
}
