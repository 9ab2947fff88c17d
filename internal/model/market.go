package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bar is an OHLCV row with its derived indicator columns.
// SMA20 is nil when fewer than 20 closes are available.
type Bar struct {
	OHLCV
	SMA20 *float64
}

// PriceSeries holds the chronological daily history for one symbol.
type PriceSeries struct {
	Symbol    string
	Bars      []Bar
	FetchedAt time.Time
}

// NewPriceSeries wraps raw bars without any indicator columns.
func NewPriceSeries(symbol string, bars []OHLCV) *PriceSeries {
	s := &PriceSeries{Symbol: symbol, Bars: make([]Bar, len(bars)), FetchedAt: time.Now()}
	for i, b := range bars {
		s.Bars[i] = Bar{OHLCV: b}
	}
	return s
}

// Closes returns the closing prices in chronological order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastClose returns the most recent closing price, or false for an empty series.
func (s *PriceSeries) LastClose() (float64, bool) {
	if len(s.Bars) == 0 {
		return 0, false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

// Tail returns the last n bars (or all of them when fewer exist).
func (s *PriceSeries) Tail(n int) []Bar {
	if n < 0 || len(s.Bars) <= n {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}
