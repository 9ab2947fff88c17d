package analyzer

import (
	"context"
	"fmt"
	"net/http"

	"StockForecast/internal/model"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient sends the prompt as a single user message to a chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client; baseURL may point at any OpenAI-compatible server.
func NewOpenAIClient(apiKey, modelName, baseURL string, httpClient *http.Client) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: modelName}
}

func (o *OpenAIClient) Name() string { return "openai/" + o.model }

func (o *OpenAIClient) Analyze(ctx context.Context, prompt string) (*model.AnalysisResult, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return ParseAnalysis(resp.Choices[0].Message.Content)
}
