package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/ingest"
)

func noopRun(context.Context) (*ingest.Result, error) {
	return &ingest.Result{}, nil
}

func TestStartValidCron(t *testing.T) {
	s := New("0 4 1 * *", "Australia/Sydney", noopRun, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}

func TestStartInvalidCron(t *testing.T) {
	s := New("not a cron", "UTC", noopRun, zerolog.Nop())
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected error for malformed cron expression")
	}
}

func TestUnknownTimezoneFallsBack(t *testing.T) {
	s := New("* * * * *", "Mars/Olympus_Mons", noopRun, zerolog.Nop())
	if s.scheduler.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", s.scheduler.Location())
	}
}

func TestScheduledJobRuns(t *testing.T) {
	ran := make(chan struct{}, 1)
	run := func(context.Context) (*ingest.Result, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return &ingest.Result{Count: 3}, nil
	}

	// Every-minute cron; fire the job immediately instead of waiting.
	s := New("* * * * *", "UTC", run, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	s.scheduler.RunAll()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}
