package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"StockForecast/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			last_updated TEXT NOT NULL,
			output_file  TEXT,
			total        INTEGER,
			failed       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			current_price  REAL,
			sentiment      TEXT,
			reasoning      TEXT,
			predicted_low  TEXT,
			predicted_high TEXT,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol ON predictions(symbol, run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run row and one row per prediction in a single transaction.
func (r *SQLiteRecorder) RecordRun(run *RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rep := run.Report
	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, last_updated, output_file, total, failed)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), rep.LastUpdated, run.OutputFile,
		len(rep.Predictions), rep.Failures(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range rep.Predictions {
		var price, sentiment, reasoning, low, high, errMsg any
		if p.Failed() {
			errMsg = p.Error
		} else {
			price = p.CurrentPrice
			sentiment = nullableText(p.Analysis.SentimentLabel())
			reasoning = nullableText(p.Analysis.ReasoningText())
			low = rawValue(p.Analysis.PredictedLow)
			high = rawValue(p.Analysis.PredictedHigh)
		}
		if _, err := tx.Exec(`INSERT INTO predictions
			(run_id, position, symbol, current_price, sentiment, reasoning, predicted_low, predicted_high, error)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			run.ID, i, p.Symbol, price, sentiment, reasoning, low, high, errMsg,
		); err != nil {
			return fmt.Errorf("insert prediction %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

// predictions returns the stored rows for a run, in report order.
func (r *SQLiteRecorder) predictions(runID string) ([]model.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT symbol, current_price, sentiment, reasoning, predicted_low, predicted_high, error
		FROM predictions WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PredictionRecord
	for rows.Next() {
		var (
			rec                                     model.PredictionRecord
			price                                   sql.NullFloat64
			sentiment, reasoning, low, high, errMsg sql.NullString
		)
		if err := rows.Scan(&rec.Symbol, &price, &sentiment, &reasoning, &low, &high, &errMsg); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			rec.Error = errMsg.String
		} else {
			rec.CurrentPrice = price.Float64
			rec.Analysis = model.AnalysisResult{
				Sentiment:     textRaw(sentiment),
				Reasoning:     textRaw(reasoning),
				PredictedLow:  jsonRaw(low),
				PredictedHigh: jsonRaw(high),
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// rawValue stores the model's raw JSON token, so "101.5" and "\"101.5\"" stay distinct.
func rawValue(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

func textRaw(s sql.NullString) json.RawMessage {
	if !s.Valid {
		return nil
	}
	b, _ := json.Marshal(s.String)
	return b
}

func jsonRaw(s sql.NullString) json.RawMessage {
	if !s.Valid {
		return nil
	}
	return json.RawMessage(s.String)
}
