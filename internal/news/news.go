package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// NoNewsPlaceholder is the digest used when no news key is configured.
	NoNewsPlaceholder = "No recent news found."

	defaultBaseURL = "https://newsapi.org"
	pageSize       = 10
)

// Fetcher retrieves recent English headlines from NewsAPI.
type Fetcher struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewFetcher creates a news fetcher. An empty apiKey disables network access.
func NewFetcher(apiKey string, client *http.Client) *Fetcher {
	return &Fetcher{APIKey: apiKey, BaseURL: defaultBaseURL, Client: client}
}

type article struct {
	Title string `json:"title"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

// Digest returns the headline block for symbol. It never fails: without a key
// it returns NoNewsPlaceholder, and on any request failure it returns a
// description of the failure instead of the headlines.
func (f *Fetcher) Digest(ctx context.Context, symbol string) string {
	if f.APIKey == "" {
		return NoNewsPlaceholder
	}
	titles, err := f.headlines(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("Could not fetch news: %v", err)
	}
	lines := make([]string, len(titles))
	for i, title := range titles {
		lines[i] = "- " + title
	}
	return strings.Join(lines, "\n")
}

func (f *Fetcher) headlines(ctx context.Context, symbol string) ([]string, error) {
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("apiKey", f.APIKey)
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/v2/everything?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, redact(err, f.APIKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
	}

	var result everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	titles := make([]string, 0, len(result.Articles))
	for _, a := range result.Articles {
		titles = append(titles, a.Title)
	}
	return titles, nil
}

// redact keeps the api key out of transport errors, which embed the request URL.
func redact(err error, key string) error {
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
