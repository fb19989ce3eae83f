// Package scheduler triggers the monthly ingestion run on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/ingest"
)

// RunFunc executes one ingestion run.
type RunFunc func(ctx context.Context) (*ingest.Result, error)

// Scheduler owns the gocron instance driving periodic ingestion.
type Scheduler struct {
	scheduler *gocron.Scheduler
	run       RunFunc
	cron      string
	log       zerolog.Logger
}

// New creates a Scheduler firing on the given cron expression in the given
// timezone (IANA name). An unknown timezone falls back to UTC.
func New(cronExpr, timezone string, run RunFunc, log zerolog.Logger) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn().Str("timezone", timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		run:       run,
		cron:      cronExpr,
		log:       log,
	}
}

// Start registers the job and begins running it asynchronously. Scheduled
// failures are logged, never fatal: the next month's run gets a fresh try,
// and the prior snapshot stays serveable throughout.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Cron(s.cron).Do(func() {
		s.log.Info().Msg("scheduled ingestion starting")
		result, err := s.run(context.Background())
		if err != nil {
			s.log.Error().Err(err).Msg("scheduled ingestion failed")
			return
		}
		s.log.Info().
			Str("schedule_code", result.Schedule.Code).
			Int("count", result.Count).
			Msg("scheduled ingestion complete")
	})
	if err != nil {
		return fmt.Errorf("schedule ingestion job (cron %q): %w", s.cron, err)
	}

	s.scheduler.StartAsync()
	s.log.Info().Str("cron", s.cron).Msg("ingestion scheduler started")
	return nil
}

// Stop halts the scheduler. Running jobs finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
