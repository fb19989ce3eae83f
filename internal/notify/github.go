package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHub creates feedback issues on the project tracker via the REST API.
type GitHub struct {
	apiURL string
	token  string
	owner  string
	repo   string
	httpc  *http.Client
	log    zerolog.Logger
}

// NewGitHub creates a GitHub client. An empty token disables issue creation.
func NewGitHub(token, owner, repo string, log zerolog.Logger) *GitHub {
	return &GitHub{
		apiURL: defaultGitHubAPI,
		token:  token,
		owner:  owner,
		repo:   repo,
		httpc:  &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Configured reports whether issue creation is possible.
func (g *GitHub) Configured() bool {
	return g.token != "" && g.owner != "" && g.repo != ""
}

type issueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

type issueResponse struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue opens an issue and returns its number. Without a token the
// issue content is logged and 0 is returned.
func (g *GitHub) CreateIssue(ctx context.Context, title, body string, labels []string) (int, error) {
	if !g.Configured() {
		g.log.Warn().Msg("no GitHub token configured; feedback issue not created")
		g.log.Info().Str("title", title).Str("body", body).Msg("undelivered feedback issue")
		return 0, nil
	}

	payload, err := json.Marshal(issueRequest{Title: title, Body: body, Labels: labels})
	if err != nil {
		return 0, fmt.Errorf("marshal issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", g.apiURL, g.owner, g.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("create issue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("create issue: status %d", resp.StatusCode)
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return 0, fmt.Errorf("decode issue response: %w", err)
	}
	return issue.Number, nil
}
