package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"StockForecast/internal/model"
)

// Analyzer sends a single prompt to a generative model and parses the reply.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (*model.AnalysisResult, error)
	Name() string
}

const (
	fenceOpen  = "```json"
	fenceClose = "```"
)

// NormalizeResponse strips markdown code-fence artifacts from a model reply.
// Surrounding whitespace is trimmed, every "```json" is removed, then every
// remaining "```" is removed, wherever they occur. Text without fences is
// only trimmed; unbalanced or repeated fences are all removed the same way.
func NormalizeResponse(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, fenceOpen, "")
	text = strings.ReplaceAll(text, fenceClose, "")
	return strings.TrimSpace(text)
}

// ErrNotObject is returned when the reply parses as JSON but is not an object.
var ErrNotObject = errors.New("model reply is not a JSON object")

// ParseAnalysis normalizes a model reply and decodes it as a JSON object.
// Keys other than the four expected ones are ignored; missing keys stay nil.
func ParseAnalysis(text string) (*model.AnalysisResult, error) {
	clean := NormalizeResponse(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotObject
		}
		return nil, fmt.Errorf("parse model reply: %w", err)
	}
	if fields == nil {
		return nil, ErrNotObject
	}

	return &model.AnalysisResult{
		Sentiment:     present(fields["sentiment"]),
		Reasoning:     present(fields["reasoning"]),
		PredictedLow:  present(fields["predicted_low"]),
		PredictedHigh: present(fields["predicted_high"]),
	}, nil
}

func present(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
