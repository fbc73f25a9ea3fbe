// Package jira submits worklogs to a Jira instance over REST v2.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/config"
)

// jiraStartedLayout is the timestamp format Jira requires on worklogs.
const jiraStartedLayout = "2006-01-02T15:04:05.000-0700"

// Client talks to the Jira worklog API with basic auth (email + API token).
type Client struct {
	cfg  config.JiraConfig
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a Jira client.
func NewClient(cfg config.JiraConfig, log zerolog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

type worklogRequest struct {
	TimeSpent string `json:"timeSpent"`
	Comment   string `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

// AddWorklog logs spent time against the given issue key.
func (c *Client) AddWorklog(ctx context.Context, issueKey string, spent time.Duration, comment string, started time.Time) error {
	body := worklogRequest{
		TimeSpent: FormatTimeSpent(spent),
		Comment:   comment,
	}
	if !started.IsZero() {
		body.Started = started.Format(jiraStartedLayout)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling worklog: %w", err)
	}

	url := fmt.Sprintf("%s/rest/api/2/issue/%s/worklog", strings.TrimRight(c.cfg.URL, "/"), issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting worklog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("jira returned status %d for %s: %s", resp.StatusCode, issueKey, string(tail))
	}

	c.log.Info().Str("issue", issueKey).Str("time_spent", body.TimeSpent).Msg("worklog added")
	return nil
}

// FormatTimeSpent renders a duration in Jira's "2h 30m" notation. Durations
// under a minute round up to "1m", the smallest worklog Jira accepts.
func FormatTimeSpent(d time.Duration) string {
	total := int(d / time.Minute)
	hours := total / 60
	minutes := total % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "1m"
	}
}
