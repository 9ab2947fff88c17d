package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Sentiment values the model is asked to choose from.
const (
	SentimentBullish = "Bullish"
	SentimentBearish = "Bearish"
	SentimentNeutral = "Neutral"
)

// TimestampLayout renders last_updated as ISO-8601 UTC with a trailing Z.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// AnalysisResult is the object parsed from the model's reply.
// Values are kept as raw JSON so whatever the model emitted is carried
// through to the report unchanged; a missing key stays nil and renders as null.
type AnalysisResult struct {
	Sentiment     json.RawMessage `json:"sentiment"`
	Reasoning     json.RawMessage `json:"reasoning"`
	PredictedLow  json.RawMessage `json:"predicted_low"`
	PredictedHigh json.RawMessage `json:"predicted_high"`
}

// SentimentLabel returns the sentiment as plain text for logs and notifications.
func (a *AnalysisResult) SentimentLabel() string {
	return rawText(a.Sentiment)
}

// ReasoningText returns the reasoning as plain text.
func (a *AnalysisResult) ReasoningText() string {
	return rawText(a.Reasoning)
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// PredictionRecord is one symbol's entry in the report: a success payload
// or, when Error is set, an error payload carrying only symbol and error.
type PredictionRecord struct {
	Symbol       string
	CurrentPrice float64
	Analysis     AnalysisResult
	Error        string
}

// NewErrorRecord builds the error-shaped record for a failed symbol.
func NewErrorRecord(symbol string, err error) PredictionRecord {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return PredictionRecord{Symbol: symbol, Error: msg}
}

// Failed reports whether the record is error-shaped.
func (r PredictionRecord) Failed() bool { return r.Error != "" }

type successRecord struct {
	Symbol         string            `json:"symbol"`
	CurrentPrice   float64           `json:"current_price"`
	Sentiment      json.RawMessage   `json:"sentiment"`
	Reasoning      json.RawMessage   `json:"reasoning"`
	PredictedRange []json.RawMessage `json:"predicted_range"`
}

type errorRecord struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// MarshalJSON emits exactly one of the two record shapes.
func (r PredictionRecord) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return marshalRaw(errorRecord{Symbol: r.Symbol, Error: r.Error})
	}
	return marshalRaw(successRecord{
		Symbol:         r.Symbol,
		CurrentPrice:   r.CurrentPrice,
		Sentiment:      orNull(r.Analysis.Sentiment),
		Reasoning:      orNull(r.Analysis.Reasoning),
		PredictedRange: []json.RawMessage{orNull(r.Analysis.PredictedLow), orNull(r.Analysis.PredictedHigh)},
	})
}

// UnmarshalJSON accepts either record shape.
func (r *PredictionRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = PredictionRecord{}
	if raw, ok := fields["symbol"]; ok {
		if err := json.Unmarshal(raw, &r.Symbol); err != nil {
			return err
		}
	}
	if raw, ok := fields["error"]; ok {
		return json.Unmarshal(raw, &r.Error)
	}
	if raw, ok := fields["current_price"]; ok {
		if err := json.Unmarshal(raw, &r.CurrentPrice); err != nil {
			return err
		}
	}
	r.Analysis.Sentiment = fields["sentiment"]
	r.Analysis.Reasoning = fields["reasoning"]
	if raw, ok := fields["predicted_range"]; ok {
		var rng []json.RawMessage
		if err := json.Unmarshal(raw, &rng); err != nil {
			return err
		}
		if len(rng) > 0 {
			r.Analysis.PredictedLow = rng[0]
		}
		if len(rng) > 1 {
			r.Analysis.PredictedHigh = rng[1]
		}
	}
	return nil
}

// marshalRaw encodes v without HTML escaping so model text is kept as written.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// PredictionsReport is the document written to the output file on every run.
type PredictionsReport struct {
	LastUpdated string             `json:"last_updated"`
	Predictions []PredictionRecord `json:"predictions"`
}

// NewPredictionsReport starts an empty report stamped with the current UTC time.
func NewPredictionsReport(now time.Time) *PredictionsReport {
	return &PredictionsReport{
		LastUpdated: now.UTC().Format(TimestampLayout),
		Predictions: []PredictionRecord{},
	}
}

// Failures counts error-shaped records.
func (r *PredictionsReport) Failures() int {
	n := 0
	for _, p := range r.Predictions {
		if p.Failed() {
			n++
		}
	}
	return n
}
