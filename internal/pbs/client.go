// Package pbs downloads the monthly PBS "API CSV files" archive and
// materializes the seven relational tables the combination builder joins.
package pbs

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/model"
)

// requiredTables maps each logical table to its path inside the archive.
// Entries are matched by case-insensitive path suffix because the leading
// directory name varies between monthly releases.
var requiredTables = map[string]string{
	"items":                         "tables_as_csv/items.csv",
	"indications":                   "tables_as_csv/indications.csv",
	"prescribing-texts":             "tables_as_csv/prescribing-texts.csv",
	"item-prescribing-texts":        "tables_as_csv/item-prescribing-text-relationships.csv",
	"restrictions":                  "tables_as_csv/restrictions.csv",
	"item-restrictions":             "tables_as_csv/item-restriction-relationships.csv",
	"restriction-prescribing-texts": "tables_as_csv/restriction-prescribing-text-relationships.csv",
}

// Client fetches schedule archives from the PBS downloads site.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client. baseURL has no trailing slash, e.g.
// "https://www.pbs.gov.au/downloads".
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

// archiveURL returns the download URL for the schedule published on the
// first of the given month.
func (c *Client) archiveURL(year int, month time.Month) string {
	return fmt.Sprintf("%s/%04d/%02d/%04d-%02d-01-PBS-API-CSV-files.zip",
		c.baseURL, year, int(month), year, int(month))
}

// Resolve walks backward from the target month, up to lookbackMonths months,
// and returns the first schedule whose archive the site reports as
// downloadable. It fails when the whole window comes up empty.
func (c *Client) Resolve(ctx context.Context, target time.Time, lookbackMonths int) (model.Schedule, error) {
	start := time.Date(target.UTC().Year(), target.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	for offset := 0; offset < lookbackMonths; offset++ {
		candidate := start.AddDate(0, -offset, 0)
		url := c.archiveURL(candidate.Year(), candidate.Month())

		ok, err := c.head(ctx, url)
		if err != nil {
			c.log.Warn().Err(err).Str("url", url).Msg("schedule probe failed")
			continue
		}
		if ok {
			return model.ScheduleFor(candidate), nil
		}
	}

	return model.Schedule{}, fmt.Errorf("no downloadable PBS schedule within %d months of %s",
		lookbackMonths, start.Format("2006-01"))
}

func (c *Client) head(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// Fetch downloads the schedule's archive and extracts the seven required
// tables. A missing table is an error; the builder needs all of them.
func (c *Client) Fetch(ctx context.Context, sched model.Schedule) (*model.RawTables, error) {
	url := fmt.Sprintf("%s/%s/%s-01-PBS-API-CSV-files.zip",
		c.baseURL, strings.Replace(sched.Code, "-", "/", 1), sched.Code)

	c.log.Info().Str("url", url).Msg("downloading PBS archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download archive %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive body: %w", err)
	}

	return extractTables(body)
}

// extractTables opens the zip archive in memory and parses each required
// CSV entry by path suffix.
func extractTables(archive []byte) (*model.RawTables, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	parsed := make(map[string]model.Table, len(requiredTables))
	for name, suffix := range requiredTables {
		entry := findEntry(zr, suffix)
		if entry == nil {
			return nil, fmt.Errorf("archive missing required file: %s", suffix)
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", entry.Name, err)
		}
		table, err := parseCSV(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name, err)
		}
		parsed[name] = table
	}

	return &model.RawTables{
		Items:                       parsed["items"],
		Indications:                 parsed["indications"],
		PrescribingTexts:            parsed["prescribing-texts"],
		ItemPrescribingTexts:        parsed["item-prescribing-texts"],
		Restrictions:                parsed["restrictions"],
		ItemRestrictions:            parsed["item-restrictions"],
		RestrictionPrescribingTexts: parsed["restriction-prescribing-texts"],
	}, nil
}

func findEntry(zr *zip.Reader, suffix string) *zip.File {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), suffix) {
			return f
		}
	}
	return nil
}
