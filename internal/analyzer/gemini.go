package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"StockForecast/internal/model"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-1.5-flash-latest"
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(apiKey, modelName string, client *http.Client) *GeminiClient {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiClient{APIKey: apiKey, Model: modelName, BaseURL: DefaultGeminiBaseURL, Client: client}
}

func (g *GeminiClient) Name() string { return "gemini/" + g.Model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// ErrMalformedResponse is returned when the reply lacks the candidate/content/parts structure.
var ErrMalformedResponse = errors.New("malformed generation response")

// Analyze sends prompt as a single-turn request and parses the first candidate's first text part.
func (g *GeminiClient) Analyze(ctx context.Context, prompt string) (*model.AnalysisResult, error) {
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseAnalysis(text)
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(g.BaseURL, "/"), url.PathEscape(g.Model), url.QueryEscape(g.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %s", strings.ReplaceAll(err.Error(), g.APIKey, "REDACTED"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gemini API error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	content := out.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("%w: first candidate has no content parts", ErrMalformedResponse)
	}
	return content.Parts[0].Text, nil
}
