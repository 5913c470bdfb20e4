package domain

// TechnicalIndicators snapshot of derived technical signals.
type TechnicalIndicators struct {
	SMA20 float64 `json:"sma_20" yaml:"sma_20"`
	SMA50 float64 `json:"sma_50" yaml:"sma_50"`
	EMA12 float64 `json:"ema_12" yaml:"ema_12"`
	EMA26 float64 `json:"ema_26" yaml:"ema_26"`
	RSI   float64 `json:"rsi" yaml:"rsi"`

	MACD          float64 `json:"macd" yaml:"macd"`
	MACDSignal    float64 `json:"macd_signal" yaml:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram" yaml:"macd_histogram"`

	BBUpper  float64 `json:"bb_upper" yaml:"bb_upper"`
	BBMiddle float64 `json:"bb_middle" yaml:"bb_middle"`
	BBLower  float64 `json:"bb_lower" yaml:"bb_lower"`

	StochasticK float64 `json:"stochastic_k" yaml:"stochastic_k"`
	StochasticD float64 `json:"stochastic_d" yaml:"stochastic_d"`
	WilliamsR   float64 `json:"williams_r" yaml:"williams_r"`
	Momentum    float64 `json:"momentum" yaml:"momentum"`
	ROC         float64 `json:"roc" yaml:"roc"`
}

// MarketSentiment bounded sentiment signals.
type MarketSentiment struct {
	// Social in (-1, 1), driven by the 24h price change.
	Social float64 `json:"social_sentiment" yaml:"social_sentiment"`
	// News in [-0.2, 0.2], unmodeled noise.
	News float64 `json:"news_sentiment" yaml:"news_sentiment"`
	// FearGreedIndex in [0, 100].
	FearGreedIndex float64 `json:"fear_greed_index" yaml:"fear_greed_index"`
	// Volume in (-1, 1), current volume against the weekly average.
	Volume float64 `json:"volume_sentiment" yaml:"volume_sentiment"`
	// WhaleActivity in [-0.3, 0.3], unmodeled noise.
	WhaleActivity float64 `json:"whale_activity" yaml:"whale_activity"`
}
