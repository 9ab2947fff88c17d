package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AI provider and market data provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	MarketYahoo    = "yahoo"
	MarketAlpaca   = "alpaca"
)

// DefaultSymbols are tracked when neither the file nor SYMBOLS lists any.
var DefaultSymbols = []string{"AAPL", "GOOGL", "TSLA", "MSFT"}

// Config holds all application configuration.
type Config struct {
	Symbols    []string `yaml:"symbols"`
	OutputFile string   `yaml:"output_file"`
	AI         struct {
		Provider      string `yaml:"provider"`
		GeminiAPIKey  string `yaml:"gemini_api_key"`
		GeminiModel   string `yaml:"gemini_model"`
		GeminiBaseURL string `yaml:"gemini_base_url"`
		OpenAIAPIKey  string `yaml:"openai_api_key"`
		OpenAIModel   string `yaml:"openai_model"`
		OpenAIBaseURL string `yaml:"openai_base_url"`
	} `yaml:"ai"`
	News struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"news"`
	Market struct {
		Provider     string `yaml:"provider"`
		AlpacaKey    string `yaml:"alpaca_key"`
		AlpacaSecret string `yaml:"alpaca_secret"`
	} `yaml:"market"`
	HTTP struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	overrides := []struct {
		env string
		dst *string
	}{
		{"OUTPUT_FILE", &cfg.OutputFile},
		{"AI_PROVIDER", &cfg.AI.Provider},
		{"GEMINI_API_KEY", &cfg.AI.GeminiAPIKey},
		{"GEMINI_MODEL", &cfg.AI.GeminiModel},
		{"OPENAI_API_KEY", &cfg.AI.OpenAIAPIKey},
		{"OPENAI_MODEL", &cfg.AI.OpenAIModel},
		{"OPENAI_BASE_URL", &cfg.AI.OpenAIBaseURL},
		{"NEWS_API_KEY", &cfg.News.APIKey},
		{"MARKET_PROVIDER", &cfg.Market.Provider},
		{"ALPACA_KEY", &cfg.Market.AlpacaKey},
		{"ALPACA_SECRET", &cfg.Market.AlpacaSecret},
		{"HTTPS_PROXY", &cfg.Proxy},
		{"SQLITE_PATH", &cfg.Database.SQLitePath},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"SCHEDULE_CRON", &cfg.Schedule.Cron},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.TimeoutSeconds = n
		}
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "predictions.json"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderGemini
	}
	if cfg.Market.Provider == "" {
		cfg.Market.Provider = MarketYahoo
	}
	if cfg.HTTP.TimeoutSeconds == 0 {
		cfg.HTTP.TimeoutSeconds = 60
	}

	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	cfg.Market.Provider = strings.ToLower(cfg.Market.Provider)
	return cfg, nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("API key (GEMINI_API_KEY) not found in environment variables")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("API key (OPENAI_API_KEY) not found in environment variables")
		}
	default:
		return fmt.Errorf("ai.provider %q is not supported", c.AI.Provider)
	}
	switch c.Market.Provider {
	case MarketYahoo:
	case MarketAlpaca:
		if c.Market.AlpacaKey == "" || c.Market.AlpacaSecret == "" {
			return fmt.Errorf("market.alpaca_key and market.alpaca_secret are required for the alpaca provider")
		}
	default:
		return fmt.Errorf("market.provider %q is not supported", c.Market.Provider)
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must not be negative")
	}
	return nil
}
