package recorder

import (
	"time"

	"StockForecast/internal/model"

	"github.com/google/uuid"
)

// RunSummary holds everything persisted for one completed run.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	OutputFile string
	Report     *model.PredictionsReport
}

// NewRunSummary assigns a fresh run id.
func NewRunSummary(startedAt time.Time, outputFile string, report *model.PredictionsReport) *RunSummary {
	return &RunSummary{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		OutputFile: outputFile,
		Report:     report,
	}
}

// Recorder keeps a write-only history of runs. Nothing recorded is read back
// into a later report.
type Recorder interface {
	RecordRun(run *RunSummary) error
	Close() error
}
