package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cmcmaster/rheum-biologics/internal/config"
)

var cfg config.Config

var allowListPath string

var rootCmd = &cobra.Command{
	Use:   "biologics",
	Short: "PBS biologics combinations service",
	Long: "Ingests the monthly PBS schedule, flattens the biologic/indication\n" +
		"combinations used in rheumatology, and serves them over a search API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.LoadEnv()
		if allowListPath != "" {
			return cfg.LoadFromFile(allowListPath)
		}
		return nil
	},
}

func init() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&allowListPath, "allow-lists", os.Getenv("ALLOW_LISTS_FILE"), "YAML file overriding the drug/disease allow-lists")
}
