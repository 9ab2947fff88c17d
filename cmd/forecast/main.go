package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockForecast/internal/analyzer"
	"StockForecast/internal/collector"
	"StockForecast/internal/config"
	"StockForecast/internal/news"
	"StockForecast/internal/notifier"
	"StockForecast/internal/pipeline"
	"StockForecast/internal/recorder"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockForecast starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file found, using system environment variables")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	client := newHTTPClient(cfg.Proxy, time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Market.Provider {
	case config.MarketAlpaca:
		fetcher = collector.NewAlpacaFetcher(cfg.Market.AlpacaKey, cfg.Market.AlpacaSecret)
	default:
		fetcher = collector.NewYahooFetcher(client)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	newsFetcher := news.NewFetcher(cfg.News.APIKey, client)
	if cfg.News.BaseURL != "" {
		newsFetcher.BaseURL = cfg.News.BaseURL
	}
	if cfg.News.APIKey == "" {
		log.Println("[WARN] NEWS_API_KEY not set, prompts will carry no headlines")
	}

	// Init analyzer
	var an analyzer.Analyzer
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		an = analyzer.NewOpenAIClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIBaseURL, client)
	default:
		g := analyzer.NewGeminiClient(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, client)
		if cfg.AI.GeminiBaseURL != "" {
			g.BaseURL = cfg.AI.GeminiBaseURL
		}
		an = g
	}
	log.Printf("[INFO] analyzer: %s", an.Name())

	runner := pipeline.NewRunner(cfg.Symbols, cfg.OutputFile, collector.NewCollector(fetcher), newsFetcher, an)

	// Init recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			runner.Recorder = sr
		}
	}

	// Init Telegram notifier
	if cfg.Telegram.BotToken != "" {
		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, client)
		if err != nil {
			log.Printf("[WARN] init telegram notifier failed, notifications disabled: %v", err)
		} else {
			runner.Notifier = tn
		}
	}

	os.Exit(serve(cfg.Schedule.Cron, runner))
}

// serve runs the pipeline once, or on cronSpec until SIGINT/SIGTERM, and
// returns the process exit code. The recorder is closed on every path.
func serve(cronSpec string, runner *pipeline.Runner) int {
	defer func() {
		if err := runner.Recorder.Close(); err != nil {
			log.Printf("[ERROR] close recorder: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cronSpec == "" {
		if _, err := runner.Run(ctx); err != nil {
			log.Printf("[FATAL] %v", err)
			return 1
		}
		return 0
	}

	sched := pipeline.NewScheduler(ctx, runner)
	if err := sched.Register(cronSpec); err != nil {
		log.Printf("[FATAL] register cron task: %v", err)
		return 1
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing forecast now")
		go sched.RunNow()
	}

	log.Printf("[INFO] StockForecast is running on %q. Press Ctrl+C to stop.", cronSpec)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	sched.Stop()
	log.Println("[INFO] StockForecast stopped")
	return 0
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
