// Package config holds runtime configuration for the biologics service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPBSBaseURL is the public PBS downloads site.
const DefaultPBSBaseURL = "https://www.pbs.gov.au/downloads"

// Config holds all runtime configuration for the serve and ingest commands.
type Config struct {
	DSN       string
	LogFormat string // "text" or "json"

	// HTTP server
	Addr string

	// Ingestion
	PBSBaseURL     string
	LookbackMonths int
	TargetDate     string // optional YYYY-MM override for one-shot runs

	// Scheduler
	IngestEnabled bool
	IngestCron    string
	IngestTZ      string

	// Allow-lists; empty slices mean the built-in defaults.
	Biologics []string `yaml:"biologics"`
	Diseases  []string `yaml:"diseases"`

	// Notifications (optional; unset means log-and-skip)
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	MailTo      string
	GitHubToken string
	GitHubOwner string
	GitHubRepo  string
}

// yamlConfig is the on-disk YAML structure for the allow-list file.
type yamlConfig struct {
	Biologics []string `yaml:"biologics"`
	Diseases  []string `yaml:"diseases"`
}

// LoadFromFile reads a YAML allow-list file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.Biologics = yc.Biologics
	c.Diseases = yc.Diseases
	return nil
}

// LoadEnv fills the env-only settings (notifications, scheduler, transport)
// that have no command-line flag.
func (c *Config) LoadEnv() {
	c.PBSBaseURL = getEnvWithDefault("PBS_BASE_URL", DefaultPBSBaseURL)
	c.IngestEnabled = getBoolEnvWithDefault("INGEST_ENABLED", true)
	c.IngestCron = getEnvWithDefault("INGEST_CRON", "0 4 1 * *")
	c.IngestTZ = getEnvWithDefault("INGEST_TZ", "Australia/Sydney")

	c.SMTPHost = os.Getenv("SMTP_HOST")
	c.SMTPPort = getIntEnvWithDefault("SMTP_PORT", 0)
	c.SMTPUser = os.Getenv("SMTP_USER")
	c.SMTPPass = os.Getenv("SMTP_PASS")
	c.MailFrom = getEnvWithDefault("MAIL_FROM", "no-reply@rheumai.com")
	c.MailTo = getEnvWithDefault("MAIL_TO", "admin@rheumai.com")

	c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	c.GitHubOwner = getEnvWithDefault("GITHUB_OWNER", "cmcmaster1")
	c.GitHubRepo = getEnvWithDefault("GITHUB_REPO", "rheum_biologics")
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	if c.LookbackMonths < 0 {
		return fmt.Errorf("--lookback must be a positive integer")
	}
	if c.TargetDate != "" {
		if _, err := ParseTargetDate(c.TargetDate); err != nil {
			return err
		}
	}
	return nil
}

// ParseTargetDate parses a YYYY-MM override into the first of that month.
func ParseTargetDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM", s)
	}
	return t, nil
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnvWithDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBoolEnvWithDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
