package prompt

import (
	"fmt"
	"strings"

	"StockForecast/internal/model"
)

// HistoryRows is how many of the most recent trading days go into the prompt.
const HistoryRows = 30

const template = `Analyze the financial data for **%s**.
Based on the historical price data (including the 20-day Simple Moving Average) and recent news, provide a short-term forecast for the next trading day.
Your response must be a single, clean JSON object with these exact keys: "sentiment", "reasoning", "predicted_low", "predicted_high".

- "sentiment": String. Must be "Bullish", "Bearish", or "Neutral".
- "reasoning": String. A brief, data-driven explanation for your sentiment in 2-3 sentences.
- "predicted_low": Number. Your estimated lowest price for the next trading day.
- "predicted_high": Number. Your estimated highest price for the next trading day.

Do not include any text, markdown formatting like ` + "```json" + `, or explanations outside of the JSON object itself.

**Historical Data (Price and 20-Day SMA):**
%s

**Recent News Headlines:**
%s
`

// Build renders the forecast prompt for one symbol.
func Build(symbol string, series *model.PriceSeries, digest string) string {
	return fmt.Sprintf(template, symbol, RenderTable(series.Tail(HistoryRows)), digest)
}

// RenderTable formats bars as a right-aligned text table, one row per day.
// An undefined SMA is rendered as NaN.
func RenderTable(bars []model.Bar) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %12s %12s %12s %12s %14s %12s\n",
		"Date", "Open", "High", "Low", "Close", "Volume", "SMA_20"))
	for _, bar := range bars {
		sma := "NaN"
		if bar.SMA20 != nil {
			sma = fmt.Sprintf("%.6f", *bar.SMA20)
		}
		b.WriteString(fmt.Sprintf("%-10s %12.6f %12.6f %12.6f %12.6f %14.0f %12s\n",
			bar.Time.Format("2006-01-02"), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, sma))
	}
	return strings.TrimRight(b.String(), "\n")
}
