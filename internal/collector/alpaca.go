package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockForecast/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// barsClient is the subset of the Alpaca market data client the fetcher needs.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using the Alpaca market data API (IEX feed).
type AlpacaFetcher struct {
	client barsClient
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			Feed:      marketdata.IEX,
		}),
		now: time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	end := f.now().UTC()
	start, err := periodStart(period, end)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       marketdata.IEX,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca fetch: %w", err)
	}

	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return out, nil
}

// periodStart converts a Yahoo-style range ("5d", "3mo", "1y") into a start time.
func periodStart(period string, end time.Time) (time.Time, error) {
	units := []struct {
		suffix string
		apply  func(n int) time.Time
	}{
		{"mo", func(n int) time.Time { return end.AddDate(0, -n, 0) }},
		{"d", func(n int) time.Time { return end.AddDate(0, 0, -n) }},
		{"y", func(n int) time.Time { return end.AddDate(-n, 0, 0) }},
	}
	for _, u := range units {
		if !strings.HasSuffix(period, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(period, u.suffix))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid period %q", period)
		}
		return u.apply(n), nil
	}
	return time.Time{}, fmt.Errorf("invalid period %q", period)
}
