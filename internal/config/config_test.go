package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var envKeys = []string{
	"SYMBOLS", "OUTPUT_FILE", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY",
	"OPENAI_MODEL", "OPENAI_BASE_URL", "NEWS_API_KEY", "MARKET_PROVIDER", "ALPACA_KEY", "ALPACA_SECRET",
	"HTTPS_PROXY", "SQLITE_PATH", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SCHEDULE_CRON", "HTTP_TIMEOUT_SECONDS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"AAPL", "GOOGL", "TSLA", "MSFT"}) {
		t.Errorf("unexpected default symbols %v", cfg.Symbols)
	}
	if cfg.OutputFile != "predictions.json" {
		t.Errorf("unexpected output file %q", cfg.OutputFile)
	}
	if cfg.AI.Provider != ProviderGemini || cfg.Market.Provider != MarketYahoo {
		t.Errorf("unexpected providers %q/%q", cfg.AI.Provider, cfg.Market.Provider)
	}
	if cfg.HTTP.TimeoutSeconds != 60 {
		t.Errorf("unexpected timeout %d", cfg.HTTP.TimeoutSeconds)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `symbols: [NVDA, AMD]
output_file: out/file.json
ai:
  gemini_api_key: from-file
  gemini_model: gemini-pro
news:
  api_key: news-file
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("SYMBOLS", " IBM , ,ORCL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AI.GeminiAPIKey != "from-env" {
		t.Errorf("expected env override, got %q", cfg.AI.GeminiAPIKey)
	}
	if cfg.AI.GeminiModel != "gemini-pro" || cfg.News.APIKey != "news-file" || cfg.OutputFile != "out/file.json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Symbols, []string{"IBM", "ORCL"}) {
		t.Errorf("unexpected symbols %v", cfg.Symbols)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("symbols: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, _ := Load(filepath.Join(t.TempDir(), "none.yaml"))
		cfg.AI.GeminiAPIKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no news key is fine", func(c *Config) { c.News.APIKey = "" }, ""},
		{"missing gemini key", func(c *Config) { c.AI.GeminiAPIKey = "" }, "GEMINI_API_KEY"},
		{"openai without key", func(c *Config) { c.AI.Provider = ProviderOpenAI }, "OPENAI_API_KEY"},
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }, "not supported"},
		{"alpaca without secret", func(c *Config) { c.Market.Provider = MarketAlpaca; c.Market.AlpacaKey = "a" }, "alpaca"},
		{"empty symbols", func(c *Config) { c.Symbols = nil }, "symbols"},
		{"telegram without chat", func(c *Config) { c.Telegram.BotToken = "t" }, "chat_id"},
	}
	for _, tt := range tests {
		cfg := base()
		tt.mutate(cfg)
		err := cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.wantErr, err)
		}
	}
}
