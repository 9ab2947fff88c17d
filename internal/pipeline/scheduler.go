package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the pipeline on a cron expression (with seconds field).
type Scheduler struct {
	Cron   *cron.Cron
	Runner *Runner
	Ctx    context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
	}
}

// Register adds the forecast run to the cron table.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running forecast to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes one full run. Overlapping triggers are skipped so runs stay sequential.
func (s *Scheduler) RunNow() {
	if !s.mu.TryLock() {
		log.Println("[WARN] previous forecast run still in progress, skipping")
		return
	}
	defer s.mu.Unlock()

	log.Println("[INFO] running forecast task")
	if _, err := s.Runner.Run(s.Ctx); err != nil {
		log.Printf("[ERROR] forecast run: %v", err)
	}
}
