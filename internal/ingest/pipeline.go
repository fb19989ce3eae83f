package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/classify"
	"github.com/cmcmaster/rheum-biologics/internal/metrics"
	"github.com/cmcmaster/rheum-biologics/internal/model"
)

// ErrNoCombinations reports a build that produced zero rows. A real monthly
// schedule always contains qualifying combinations, so an empty result means
// an upstream schema or matching regression, and nothing is written.
var ErrNoCombinations = errors.New("ingestion produced no biologics combinations")

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Pipeline phases, in execution order.
const (
	PhaseResolve = "resolve"
	PhaseFetch   = "fetch"
	PhaseBuild   = "build"
	PhaseWrite   = "write"
)

// Provider supplies the raw tables for a schedule snapshot.
type Provider interface {
	Resolve(ctx context.Context, target time.Time, lookbackMonths int) (model.Schedule, error)
	Fetch(ctx context.Context, sched model.Schedule) (*model.RawTables, error)
}

// Writer atomically replaces the stored combinations for a schedule code.
type Writer interface {
	Replace(ctx context.Context, scheduleCode string, rows []model.Combination) error
}

// Options tunes a single ingestion run.
type Options struct {
	// TargetDate is the month to start the lookback from; zero means now.
	TargetDate time.Time
	// LookbackMonths is the resolution window; zero means 6.
	LookbackMonths int
}

// Result summarizes a completed ingestion run.
type Result struct {
	RunID    uuid.UUID      `json:"run_id"`
	Schedule model.Schedule `json:"schedule"`
	Count    int            `json:"count"`
	Duration time.Duration  `json:"-"`
}

// Run executes one ingestion: resolve → fetch → build → write. Any phase
// failure aborts the run; the writer's transaction means a failed write
// leaves the prior snapshot untouched. There is no mutual exclusion between
// concurrent runs for the same schedule code — at monthly cadence the
// last-committed transaction simply wins.
func Run(ctx context.Context, p Provider, w Writer, cls *classify.Classifier, log zerolog.Logger, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	target := opts.TargetDate
	if target.IsZero() {
		target = time.Now()
	}
	lookback := opts.LookbackMonths
	if lookback <= 0 {
		lookback = 6
	}

	sched, err := p.Resolve(ctx, target, lookback)
	if err != nil {
		return nil, fail(log, start, &PipelineError{Phase: PhaseResolve, Err: err})
	}
	log.Info().Str("schedule_code", sched.Code).Msg("schedule resolved")

	tables, err := p.Fetch(ctx, sched)
	if err != nil {
		return nil, fail(log, start, &PipelineError{Phase: PhaseFetch, Err: err})
	}
	log.Info().
		Int("items", len(tables.Items)).
		Int("restrictions", len(tables.Restrictions)).
		Int("indications", len(tables.Indications)).
		Msg("raw tables fetched")

	combinations := BuildCombinations(tables, sched, cls)
	if len(combinations) == 0 {
		return nil, fail(log, start, &PipelineError{Phase: PhaseBuild, Err: ErrNoCombinations})
	}
	log.Info().Int("combinations", len(combinations)).Msg("combinations built")

	if err := w.Replace(ctx, sched.Code, combinations); err != nil {
		return nil, fail(log, start, &PipelineError{Phase: PhaseWrite, Err: err})
	}

	dur := time.Since(start)
	metrics.IngestRunsTotal.WithLabelValues("success").Inc()
	metrics.IngestDuration.Observe(dur.Seconds())
	metrics.IngestCombinationsLast.Set(float64(len(combinations)))

	log.Info().
		Str("schedule_code", sched.Code).
		Int("count", len(combinations)).
		Dur("duration", dur).
		Msg("ingestion complete")

	return &Result{
		RunID:    runID,
		Schedule: sched,
		Count:    len(combinations),
		Duration: dur,
	}, nil
}

func fail(log zerolog.Logger, start time.Time, err *PipelineError) error {
	metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	log.Error().Err(err.Err).Str("phase", err.Phase).Msg("ingestion failed")
	return err
}
