// Package scheduler wires up the cron job that periodically triggers a full
// pipeline run. The pipeline itself is agnostic to how and when it is
// invoked; this package is the only place that knows about the cadence.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// RunFunc is the pipeline entry point the scheduler fires. It owns its own
// error reporting; the scheduler only logs.
type RunFunc func(ctx context.Context)

// Scheduler wraps robfig/cron around the pipeline run.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc
	spec string
}

// New creates a Scheduler that fires every intervalHours hours.
func New(run RunFunc, intervalHours int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		run:  run,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also fires one run
// immediately so the result set is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.run(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}
