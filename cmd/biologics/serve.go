package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmcmaster/rheum-biologics/internal/api"
	"github.com/cmcmaster/rheum-biologics/internal/classify"
	"github.com/cmcmaster/rheum-biologics/internal/db"
	"github.com/cmcmaster/rheum-biologics/internal/exitcode"
	"github.com/cmcmaster/rheum-biologics/internal/ingest"
	"github.com/cmcmaster/rheum-biologics/internal/logging"
	"github.com/cmcmaster/rheum-biologics/internal/notify"
	"github.com/cmcmaster/rheum-biologics/internal/pbs"
	"github.com/cmcmaster/rheum-biologics/internal/scheduler"
	"github.com/cmcmaster/rheum-biologics/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API and run the monthly ingestion scheduler",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Addr, "addr", getAddrDefault(), "HTTP listen address")
	f.IntVar(&cfg.LookbackMonths, "lookback", 6, "How many months to walk back looking for a published schedule")
	rootCmd.AddCommand(serveCmd)
}

func getAddrDefault() string {
	if v := os.Getenv("ADDR"); v != "" {
		return v
	}
	return "127.0.0.1:4000"
}

func runServe(cmd *cobra.Command, args []string) error {
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

	st := store.New(pool, log)
	provider := pbs.NewClient(cfg.PBSBaseURL, log)

	runIngestion := func(ctx context.Context) (*ingest.Result, error) {
		return ingest.Run(ctx, provider, st, cls, log,
			ingest.Options{LookbackMonths: cfg.LookbackMonths})
	}

	mailer := notify.NewMailer(notify.MailerConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
		To:   cfg.MailTo,
	}, log)
	github := notify.NewGitHub(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, log)
	notifier := notify.NewNotifier(mailer, github, log)

	server := api.NewServer(cfg.Addr, st, notifier, api.IngestFunc(runIngestion), log)

	var sched *scheduler.Scheduler
	if cfg.IngestEnabled {
		sched = scheduler.New(cfg.IngestCron, cfg.IngestTZ, runIngestion, log)
		if err := sched.Start(); err != nil {
			log.Error().Err(err).Msg("failed to start ingestion scheduler")
			os.Exit(exitcode.UsageError)
		}
	} else {
		log.Info().Msg("ingestion scheduler disabled via INGEST_ENABLED")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
			os.Exit(exitcode.UsageError)
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
