// Package report renders ranked recommendations for the terminal or as YAML.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/coinsight/internal/services/market/analysis"
	"gopkg.in/yaml.v3"
)

var (
	bullish = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#73F59F"}
	bearish = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6F6F"}
	muted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(muted)
	riskStyle   = lipgloss.NewStyle().Foreground(bearish)

	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	trillion = decimal.NewFromInt(1_000_000_000_000)
)

// Mover asset with its 24h change.
type Mover struct {
	Symbol           string  `json:"symbol" yaml:"symbol"`
	PercentChange24h float64 `json:"percent_change_24h" yaml:"percent_change_24h"`
}

// Market aggregates printed above the recommendations.
type Market struct {
	Assets         int             `json:"assets" yaml:"assets"`
	TotalMarketCap decimal.Decimal `json:"total_market_cap" yaml:"total_market_cap"`
	TotalVolume24h decimal.Decimal `json:"total_volume_24h" yaml:"total_volume_24h"`
	TopGainers     []Mover         `json:"top_gainers" yaml:"top_gainers"`
	TopLosers      []Mover         `json:"top_losers" yaml:"top_losers"`
}

// Entry one recommendation with the kind of forecast it carries.
type Entry struct {
	domain.RecommendationResult `yaml:",inline"`
	ForecastSource              domain.ForecastSource `json:"forecast_source" yaml:"forecast_source"`
}

// Report complete output of one run.
type Report struct {
	GeneratedAt     time.Time `json:"generated_at" yaml:"generated_at"`
	Market          Market    `json:"market" yaml:"market"`
	Recommendations []Entry   `json:"recommendations" yaml:"recommendations"`
}

// Results returns the ranked results carried by the report.
func (r Report) Results() []domain.RecommendationResult {
	out := make([]domain.RecommendationResult, 0, len(r.Recommendations))
	for _, e := range r.Recommendations {
		out = append(out, e.RecommendationResult)
	}
	return out
}

// New assembles a report.
func New(stats analysis.MarketStats, results []domain.RecommendationResult, generatedAt time.Time) Report {
	r := Report{
		GeneratedAt: generatedAt,
		Market: Market{
			Assets:         stats.Assets,
			TotalMarketCap: stats.TotalMarketCap,
			TotalVolume24h: stats.TotalVolume24h,
			TopGainers:     movers(stats.TopGainers),
			TopLosers:      movers(stats.TopLosers),
		},
		Recommendations: make([]Entry, 0, len(results)),
	}

	for _, res := range results {
		e := Entry{RecommendationResult: res}
		if res.Forecast != nil {
			e.ForecastSource = res.Forecast.Source()
		}
		r.Recommendations = append(r.Recommendations, e)
	}

	return r
}

func movers(snapshots []domain.AssetSnapshot) []Mover {
	out := make([]Mover, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, Mover{Symbol: s.String(), PercentChange24h: s.PercentChange24h})
	}
	return out
}

// WriteYAML encodes the report as YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return errors.Wrap(enc.Close(), "failed to flush report")
}

// WriteTable renders the market header, the ranking table and per-asset notes.
func WriteTable(w io.Writer, r Report) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MARKET"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Assets: %d   Total market cap: %s   24h volume: %s\n",
		r.Market.Assets, FormatUSD(r.Market.TotalMarketCap), FormatUSD(r.Market.TotalVolume24h))
	if len(r.Market.TopGainers) > 0 {
		fmt.Fprintf(&b, "Top gainers: %s\n", formatMovers(r.Market.TopGainers))
	}
	if len(r.Market.TopLosers) > 0 {
		fmt.Fprintf(&b, "Top losers: %s\n", formatMovers(r.Market.TopLosers))
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("RECOMMENDATIONS"))
	b.WriteString("\n")
	if len(r.Recommendations) == 0 {
		b.WriteString(noteStyle.Render("no assets could be evaluated"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return errors.Wrap(err, "failed to write report")
	}

	b.WriteString(rankingTable(r.Recommendations).Render())
	b.WriteString("\n")

	for i, e := range r.Recommendations {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, assetTitle(e.Asset))))
		b.WriteString("\n")

		ta := e.TechnicalAnalysis
		b.WriteString(noteStyle.Render(fmt.Sprintf("RSI %.1f  support %s  resistance %s  volatility %.2f",
			ta.RSI, FormatPrice(ta.SupportLevel), FormatPrice(ta.ResistanceLevel), ta.Volatility)))
		b.WriteString("\n")

		if e.Forecast != nil {
			t := e.Forecast.Targets()
			fmt.Fprintf(&b, "Forecast (%s, %.1f%% confidence): 1w %s  1m %s  3m %s\n",
				e.ForecastSource, e.Forecast.ConfidenceLevel(),
				FormatPrice(t.ShortTerm), FormatPrice(t.MediumTerm), FormatPrice(t.LongTerm))
		}
		for _, reason := range e.Reasoning {
			fmt.Fprintf(&b, "  + %s\n", reason)
		}
		for _, risk := range e.RiskFactors {
			b.WriteString(riskStyle.Render("  ! " + risk))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "failed to write report")
}

func rankingTable(entries []Entry) *table.Table {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		target := "-"
		if e.Forecast != nil {
			target = FormatPrice(e.Forecast.Targets().ShortTerm)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Asset.String(),
			FormatPrice(e.Asset.Price),
			FormatPercent(e.Asset.PercentChange24h),
			FormatPercent(e.Asset.PercentChange7d),
			strconv.Itoa(e.RecommendationScore),
			strconv.Itoa(e.TrendScore),
			strconv.Itoa(e.MomentumScore),
			strconv.Itoa(e.RiskScore),
			e.Recommendation.String(),
			target,
		})
	}

	const signalColumn = 9

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers("#", "ASSET", "PRICE", "24H", "7D", "REC", "TREND", "MOM", "RISK", "SIGNAL", "1W TARGET").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == signalColumn && row >= 0 && row < len(entries) {
				label := entries[row].Recommendation
				switch {
				case label.IsBullish():
					return cellStyle.Foreground(bullish)
				case label.IsBearish():
					return cellStyle.Foreground(bearish)
				}
			}
			return cellStyle
		})
}

func assetTitle(s domain.AssetSnapshot) string {
	if s.Name != "" && s.Symbol != "" && s.Name != s.Symbol {
		return fmt.Sprintf("%s (%s)", s.Name, s.Symbol)
	}
	return s.String()
}

func formatMovers(ms []Mover) string {
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		parts = append(parts, fmt.Sprintf("%s %s", m.Symbol, FormatPercent(m.PercentChange24h)))
	}
	return strings.Join(parts, ", ")
}

// FormatPrice prints two decimals, or six below one dollar.
func FormatPrice(d decimal.Decimal) string {
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return "$" + d.StringFixed(6)
	}
	return "$" + d.StringFixed(2)
}

// FormatUSD prints large amounts with a K/M/B/T suffix.
func FormatUSD(d decimal.Decimal) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return "$" + d.Div(trillion).StringFixed(2) + "T"
	case abs.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return "$" + d.Div(thousand).StringFixed(2) + "K"
	default:
		return "$" + d.StringFixed(2)
	}
}

// FormatPercent prints a signed percentage with two decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
