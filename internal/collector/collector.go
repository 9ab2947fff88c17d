package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"StockForecast/internal/calculator"
	"StockForecast/internal/model"
)

// ErrNoData is returned when the provider has no history for a symbol.
var ErrNoData = errors.New("no historical data")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData map[string][]model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol, _ string) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData[symbol], nil
	}
	return GenerateMockBars(m.Price, 63), nil
}

// GenerateMockBars builds count ascending daily bars drifting around basePrice.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches price history and attaches indicator columns.
type Collector struct {
	Fetcher Fetcher
	Period  string
}

// NewCollector creates a new Collector over the default lookback period.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Period: LookbackPeriod}
}

// Collect fetches the symbol's history and computes the SMA20 column.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Period)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w found for %s", ErrNoData, symbol)
	}
	if len(bars) < calculator.SMAPeriod {
		log.Printf("[WARN] %s: only %d bars, SMA20 undefined for the whole series", symbol, len(bars))
	}

	series := model.NewPriceSeries(symbol, bars)
	calculator.AugmentSMA20(series)
	log.Printf("[INFO] %s: %d bars from %s (%s to %s), fetched at %s",
		symbol, len(bars), c.Fetcher.Name(),
		bars[0].Time.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02"),
		series.FetchedAt.UTC().Format(time.RFC3339))
	return series, nil
}
