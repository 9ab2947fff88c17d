package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockForecast/internal/model"
)

// FormatRunSummary formats a finished report into a Telegram HTML message.
func FormatRunSummary(r *model.PredictionsReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Stock forecast</b> | %s\n\n", html.EscapeString(r.LastUpdated)))

	for _, p := range r.Predictions {
		if p.Failed() {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %s\n", html.EscapeString(p.Symbol), html.EscapeString(p.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %.2f → %s\n",
			sentimentEmoji(p.Analysis.SentimentLabel()),
			html.EscapeString(p.Symbol),
			p.CurrentPrice,
			html.EscapeString(formatRange(p.Analysis))))
	}

	ok := len(r.Predictions) - r.Failures()
	b.WriteString(fmt.Sprintf("\n%d/%d symbols processed", ok, len(r.Predictions)))
	return b.String()
}

func formatRange(a model.AnalysisResult) string {
	low, high := string(a.PredictedLow), string(a.PredictedHigh)
	if low == "" {
		low = "?"
	}
	if high == "" {
		high = "?"
	}
	label := a.SentimentLabel()
	if label == "" {
		label = "n/a"
	}
	return fmt.Sprintf("%s [%s, %s]", label, low, high)
}

func sentimentEmoji(s string) string {
	switch s {
	case model.SentimentBullish:
		return "🟢"
	case model.SentimentBearish:
		return "🔴"
	case model.SentimentNeutral:
		return "🟡"
	default:
		return "⚪"
	}
}
