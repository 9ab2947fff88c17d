package calculator

import (
	"errors"

	"StockForecast/internal/model"
)

// SMAPeriod is the window of the moving average attached to every series.
const SMAPeriod = 20

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the trailing simple moving average at every index.
// Positions with fewer than period prices up to and including them are nil.
func RollingSMA(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		v, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			continue
		}
		out[i] = &v
	}
	return out
}

// AugmentSMA20 attaches the 20-period SMA of closing prices to every bar in place.
func AugmentSMA20(series *model.PriceSeries) {
	sma := RollingSMA(series.Closes(), SMAPeriod)
	for i := range series.Bars {
		series.Bars[i].SMA20 = sma[i]
	}
}
