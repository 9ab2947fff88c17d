package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockForecast/internal/analyzer"
	"StockForecast/internal/model"
	"StockForecast/internal/notifier"
	"StockForecast/internal/prompt"
	"StockForecast/internal/recorder"
	"StockForecast/internal/report"

	"github.com/shopspring/decimal"
)

// SeriesCollector fetches an indicator-augmented price series.
type SeriesCollector interface {
	Collect(ctx context.Context, symbol string) (*model.PriceSeries, error)
}

// NewsSource produces the headline digest for a symbol. It never fails.
type NewsSource interface {
	Digest(ctx context.Context, symbol string) string
}

// Notifier delivers the run summary.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Runner executes the per-symbol forecast pipeline for every configured symbol.
type Runner struct {
	Symbols    []string
	OutputFile string
	Collector  SeriesCollector
	News       NewsSource
	Analyzer   analyzer.Analyzer
	Recorder   recorder.Recorder
	Notifier   Notifier // optional
	Now        func() time.Time
}

// NewRunner creates a Runner with a no-op recorder and no notifier.
func NewRunner(symbols []string, outputFile string, col SeriesCollector, news NewsSource, an analyzer.Analyzer) *Runner {
	return &Runner{
		Symbols:    symbols,
		OutputFile: outputFile,
		Collector:  col,
		News:       news,
		Analyzer:   an,
		Recorder:   recorder.NewNoopRecorder(),
		Now:        time.Now,
	}
}

// RoundPrice rounds to 2 decimal places, halves away from zero.
func RoundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ProcessSymbol runs fetch, augmentation, prompt construction and analysis for one symbol.
// Any failure, including a panic in a step, is returned as an error.
func (r *Runner) ProcessSymbol(ctx context.Context, symbol string) (rec model.PredictionRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure: %v", p)
		}
	}()

	series, err := r.Collector.Collect(ctx, symbol)
	if err != nil {
		return model.PredictionRecord{}, err
	}
	lastClose, ok := series.LastClose()
	if !ok {
		return model.PredictionRecord{}, fmt.Errorf("no closing price for %s", symbol)
	}

	digest := r.News.Digest(ctx, symbol)
	analysis, err := r.Analyzer.Analyze(ctx, prompt.Build(symbol, series, digest))
	if err != nil {
		return model.PredictionRecord{}, err
	}

	return model.PredictionRecord{
		Symbol:       symbol,
		CurrentPrice: RoundPrice(lastClose),
		Analysis:     *analysis,
	}, nil
}

// Run processes every symbol in order, then writes the report once.
// Per-symbol failures become error records; only a failed write is returned.
func (r *Runner) Run(ctx context.Context) (*model.PredictionsReport, error) {
	started := r.Now()
	rep := model.NewPredictionsReport(started)

	for _, symbol := range r.Symbols {
		log.Printf("[INFO] Processing %s...", symbol)
		rec, err := r.ProcessSymbol(ctx, symbol)
		if err != nil {
			log.Printf("[ERROR] processing %s: %v", symbol, err)
			rec = model.NewErrorRecord(symbol, err)
		} else {
			log.Printf("[INFO] Successfully processed %s.", symbol)
		}
		rep.Predictions = append(rep.Predictions, rec)
	}

	if err := report.Write(r.OutputFile, rep); err != nil {
		return rep, fmt.Errorf("write %s: %w", r.OutputFile, err)
	}
	log.Printf("[INFO] Successfully generated predictions and saved to %s", r.OutputFile)

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(recorder.NewRunSummary(started, r.OutputFile, rep)); err != nil {
			log.Printf("[ERROR] record run: %v", err)
		}
	}
	if r.Notifier != nil {
		if err := r.Notifier.SendWithRetry(ctx, notifier.FormatRunSummary(rep), 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}
	return rep, nil
}
