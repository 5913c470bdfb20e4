package domain

// TrendDirection qualitative direction of price action.
type TrendDirection string

const (
	TrendDirectionBullish TrendDirection = "Bullish"
	TrendDirectionBearish TrendDirection = "Bearish"
	TrendDirectionNeutral TrendDirection = "Neutral"
)

// String returns the string representation.
func (t TrendDirection) String() string {
	return string(t)
}

// IsValid checks if the TrendDirection value is valid.
func (t TrendDirection) IsValid() bool {
	switch t {
	case TrendDirectionBullish, TrendDirectionBearish, TrendDirectionNeutral:
		return true
	}
	return false
}
