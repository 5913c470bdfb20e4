package domain

import "time"

// RunEntry condensed outcome of one asset in an evaluation run.
type RunEntry struct {
	Symbol              string         `json:"symbol"`
	Recommendation      Recommendation `json:"recommendation"`
	RecommendationScore int            `json:"recommendation_score"`
	TrendScore          int            `json:"trend_score"`
	RiskScore           int            `json:"risk_score"`
	Confidence          float64        `json:"confidence"`
	ForecastSource      ForecastSource `json:"forecast_source"`
}

// Run journal record of one evaluation.
type Run struct {
	ID          string     `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Assets      int        `json:"assets"`
	Entries     []RunEntry `json:"entries"`
}

// RunRecord a journaled run with its WAL index.
type RunRecord struct {
	Index uint64 `json:"index"`
	Run   Run    `json:"run"`
}

// NewRun condenses ranked results into a journal record.
func NewRun(id string, generatedAt time.Time, assets int, results []RecommendationResult) Run {
	entries := make([]RunEntry, 0, len(results))
	for _, r := range results {
		e := RunEntry{
			Symbol:              r.Asset.String(),
			Recommendation:      r.Recommendation,
			RecommendationScore: r.RecommendationScore,
			TrendScore:          r.TrendScore,
			RiskScore:           r.RiskScore,
		}
		if r.Forecast != nil {
			e.Confidence = r.Forecast.ConfidenceLevel()
			e.ForecastSource = r.Forecast.Source()
		}
		entries = append(entries, e)
	}

	return Run{ID: id, GeneratedAt: generatedAt, Assets: assets, Entries: entries}
}
