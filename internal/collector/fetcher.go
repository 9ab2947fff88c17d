package collector

import (
	"context"

	"StockForecast/internal/model"
)

// LookbackPeriod is the trailing window requested from every provider.
const LookbackPeriod = "3mo"

// Fetcher defines the interface for fetching split- and dividend-adjusted daily bars.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol, period string) ([]model.OHLCV, error)
	Name() string
}
