package domain

import "math"

// model names in ensemble order
const (
	ModelLSTM             = "lstm"
	ModelARIMA            = "arima"
	ModelRandomForest     = "random_forest"
	ModelLinearRegression = "linear_regression"
	ModelSentiment        = "sentiment"
)

// ModelScores signed strength of every ensemble model.
type ModelScores struct {
	LSTM             float64 `json:"lstm" yaml:"lstm"`
	ARIMA            float64 `json:"arima" yaml:"arima"`
	RandomForest     float64 `json:"random_forest" yaml:"random_forest"`
	LinearRegression float64 `json:"linear_regression" yaml:"linear_regression"`
	Sentiment        float64 `json:"sentiment" yaml:"sentiment"`
}

// Set stores the score of the named model. Unknown names are ignored.
func (m *ModelScores) Set(model string, value float64) {
	switch model {
	case ModelLSTM:
		m.LSTM = value
	case ModelARIMA:
		m.ARIMA = value
	case ModelRandomForest:
		m.RandomForest = value
	case ModelLinearRegression:
		m.LinearRegression = value
	case ModelSentiment:
		m.Sentiment = value
	}
}

// Scaled returns the scores multiplied by 100 and rounded to one decimal, as displayed.
func (m ModelScores) Scaled() ModelScores {
	return ModelScores{
		LSTM:             RoundTo(m.LSTM*100, 1),
		ARIMA:            RoundTo(m.ARIMA*100, 1),
		RandomForest:     RoundTo(m.RandomForest*100, 1),
		LinearRegression: RoundTo(m.LinearRegression*100, 1),
		Sentiment:        RoundTo(m.Sentiment*100, 1),
	}
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
