package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmcmaster/rheum-biologics/internal/classify"
	"github.com/cmcmaster/rheum-biologics/internal/config"
	"github.com/cmcmaster/rheum-biologics/internal/db"
	"github.com/cmcmaster/rheum-biologics/internal/exitcode"
	"github.com/cmcmaster/rheum-biologics/internal/ingest"
	"github.com/cmcmaster/rheum-biologics/internal/logging"
	"github.com/cmcmaster/rheum-biologics/internal/pbs"
	"github.com/cmcmaster/rheum-biologics/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion of the latest PBS schedule",
	RunE:  runIngestCmd,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&cfg.TargetDate, "date", "", "Target month YYYY-MM (default: current month)")
	f.IntVar(&cfg.LookbackMonths, "lookback", 6, "How many months to walk back looking for a published schedule")
	rootCmd.AddCommand(ingestCmd)
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	cls, err := classify.New(cfg.Biologics, cfg.Diseases)
	if err != nil {
		log.Error().Err(err).Msg("allow-list validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	opts := ingest.Options{LookbackMonths: cfg.LookbackMonths}
	if cfg.TargetDate != "" {
		target, err := config.ParseTargetDate(cfg.TargetDate)
		if err != nil {
			log.Error().Err(err).Msg("invalid target date")
			os.Exit(exitcode.UsageError)
		}
		opts.TargetDate = target
	}

	provider := pbs.NewClient(cfg.PBSBaseURL, log)
	writer := store.New(pool, log)

	result, err := ingest.Run(ctx, provider, writer, cls, log, opts)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			switch pe.Phase {
			case ingest.PhaseResolve:
				os.Exit(exitcode.ResolveError)
			case ingest.PhaseFetch:
				os.Exit(exitcode.FetchError)
			case ingest.PhaseWrite:
				os.Exit(exitcode.WriteError)
			default:
				os.Exit(exitcode.BuildError)
			}
		}
		os.Exit(exitcode.BuildError)
	}

	fmt.Printf("Ingestion complete for schedule %s (%s %d): %d combinations (%.1fs)\n",
		result.Schedule.Code, result.Schedule.Month, result.Schedule.Year,
		result.Count, result.Duration.Seconds())
	return nil
}
