package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "  {\"a\":1}\n", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"only opener", "```json {\"a\":1}", `{"a":1}`},
		{"fences mid text", "Here:\n```json\n{\"a\":1}\n```\nthanks", "Here:\n\n{\"a\":1}\n\nthanks"},
		{"repeated fences", "```json```json{}``````", "{}"},
	}
	for _, tt := range tests {
		if got := NormalizeResponse(tt.in); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestParseAnalysis_FencedObject(t *testing.T) {
	text := "```json\n{\"sentiment\":\"Bullish\",\"reasoning\":\"Above SMA.\",\"predicted_low\":101.5,\"predicted_high\":104}\n```"
	a, err := ParseAnalysis(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SentimentLabel() != "Bullish" {
		t.Errorf("expected Bullish, got %q", a.SentimentLabel())
	}
	if a.ReasoningText() != "Above SMA." {
		t.Errorf("unexpected reasoning %q", a.ReasoningText())
	}
	if string(a.PredictedLow) != "101.5" || string(a.PredictedHigh) != "104" {
		t.Errorf("unexpected range %s..%s", a.PredictedLow, a.PredictedHigh)
	}
}

func TestParseAnalysis_MissingKeysPassThrough(t *testing.T) {
	a, err := ParseAnalysis(`{"sentiment":"Neutral"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Reasoning != nil || a.PredictedLow != nil || a.PredictedHigh != nil {
		t.Errorf("expected missing keys to stay nil, got %+v", a)
	}
}

func TestParseAnalysis_Rejects(t *testing.T) {
	for _, in := range []string{
		"I think AAPL will go up.",
		"",
		"```json\n```",
		"[1, 2]",
		`"Bullish"`,
		"null",
		`{"sentiment":"Bullish"} trailing`,
		`{"sentiment":"Bullish"}}`,
		`{"sentiment":"Bullish"} ]`,
		`{"sentiment":"Bullish"}]}`,
		`{"sentiment":"Bullish"}{"sentiment":"Bearish"}`,
	} {
		if _, err := ParseAnalysis(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func geminiServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query")
		}
		raw, _ := io.ReadAll(r.Body)
		var req geminiRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if gotPrompt != nil && len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			*gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func newTestGemini(srv *httptest.Server) *GeminiClient {
	g := NewGeminiClient("test-key", "gemini-test", srv.Client())
	g.BaseURL = srv.URL
	return g
}

func TestGemini_Analyze(t *testing.T) {
	var prompt string
	reply := `{"candidates":[{"content":{"parts":[{"text":"` + "```json\\n{\\\"sentiment\\\":\\\"Bearish\\\",\\\"predicted_low\\\":9,\\\"predicted_high\\\":11}\\n```" + `"}]}}]}`
	srv := geminiServer(t, http.StatusOK, reply, &prompt)
	defer srv.Close()

	a, err := newTestGemini(srv).Analyze(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "the prompt" {
		t.Errorf("expected prompt as sole content, got %q", prompt)
	}
	if a.SentimentLabel() != "Bearish" || string(a.PredictedHigh) != "11" {
		t.Errorf("unexpected analysis %+v", a)
	}
}

func TestGemini_HTTPError(t *testing.T) {
	srv := geminiServer(t, http.StatusForbidden, `{"error":{"message":"API key not valid"}}`, nil)
	defer srv.Close()

	_, err := newTestGemini(srv).Analyze(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestGemini_MalformedStructure(t *testing.T) {
	for _, body := range []string{
		`{"candidates":[]}`,
		`{"candidates":[{"finishReason":"SAFETY"}]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	} {
		srv := geminiServer(t, http.StatusOK, body, nil)
		_, err := newTestGemini(srv).Analyze(context.Background(), "p")
		srv.Close()
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("body %s: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestGemini_GarbageText(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Sorry, I cannot help."}]}}]}`, nil)
	defer srv.Close()

	if _, err := newTestGemini(srv).Analyze(context.Background(), "p"); err == nil {
		t.Fatal("expected parse error for non-JSON text")
	}
}

func TestOpenAI_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"sentiment\":\"Neutral\",\"reasoning\":\"Flat.\",\"predicted_low\":1,\"predicted_high\":2}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "gpt-test", srv.URL+"/v1", srv.Client())
	a, err := c.Analyze(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SentimentLabel() != "Neutral" || a.ReasoningText() != "Flat." {
		t.Errorf("unexpected analysis %+v", a)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL+"/v1", srv.Client())
	if _, err := c.Analyze(context.Background(), "p"); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}
