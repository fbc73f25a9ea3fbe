package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GitHubConfig configures the source-control ingestion source.
type GitHubConfig struct {
	Token string
	Repos []string // "owner/name" entries
	User  string
}

// WakaTimeConfig configures the coding-time tracker source.
type WakaTimeConfig struct {
	APIKey  string
	BaseURL string
}

// GraphConfig configures the Microsoft Graph chat source.
type GraphConfig struct {
	Token   string
	BaseURL string
}

// GoogleConfig configures the Google Calendar source.
type GoogleConfig struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

// JiraConfig configures the work-tracking submission target.
type JiraConfig struct {
	URL      string
	Email    string
	APIToken string
}

// NotifyConfig selects how review-ready notifications are delivered.
type NotifyConfig struct {
	Method     string // "webhook", "email", or "none"
	WebhookURL string
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	Recipient  string
}

// Config holds all chronolog settings. Values come from CHRONOLOG_* env vars
// with defaults for everything that has a sensible one.
type Config struct {
	TimeZone string

	WorkStartHour     int
	WorkEndHour       int
	MergeThresholdMin int
	MinGapMin         int
	MinActivityMin    int

	DBPath string

	GitHub   GitHubConfig
	WakaTime WakaTimeConfig
	Graph    GraphConfig
	Google   GoogleConfig
	Jira     JiraConfig
	Notify   NotifyConfig
}

// Default returns a Config with the standard settings: UTC reporting,
// a 9-17 working day, 2-minute merge threshold, 30-minute minimum gap,
// 5-minute minimum activity, and the database under ~/.chronolog.
func Default() Config {
	cfg := Config{
		TimeZone:          "UTC",
		WorkStartHour:     9,
		WorkEndHour:       17,
		MergeThresholdMin: 2,
		MinGapMin:         30,
		MinActivityMin:    5,
		WakaTime:          WakaTimeConfig{BaseURL: "https://wakatime.com/api/v1"},
		Graph:             GraphConfig{BaseURL: "https://graph.microsoft.com/v1.0"},
		Google:            GoogleConfig{CalendarID: "primary"},
		Notify:            NotifyConfig{Method: "none", SMTPPort: 587},
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.DBPath = filepath.Join(home, ".chronolog", "chronolog.db")
		cfg.Google.CredentialsFile = filepath.Join(home, ".chronolog", "credentials.json")
		cfg.Google.TokenFile = filepath.Join(home, ".chronolog", "token.json")
	}
	return cfg
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset values.
func Load() Config {
	cfg := Default()

	setString(&cfg.TimeZone, "CHRONOLOG_TIMEZONE")
	setInt(&cfg.WorkStartHour, "CHRONOLOG_WORK_START_HOUR")
	setInt(&cfg.WorkEndHour, "CHRONOLOG_WORK_END_HOUR")
	setInt(&cfg.MergeThresholdMin, "CHRONOLOG_MERGE_THRESHOLD_MIN")
	setInt(&cfg.MinGapMin, "CHRONOLOG_MIN_GAP_MIN")
	setInt(&cfg.MinActivityMin, "CHRONOLOG_MIN_ACTIVITY_MIN")
	setString(&cfg.DBPath, "CHRONOLOG_DB")

	setString(&cfg.GitHub.Token, "CHRONOLOG_GITHUB_TOKEN")
	setString(&cfg.GitHub.User, "CHRONOLOG_GITHUB_USER")
	if v := os.Getenv("CHRONOLOG_GITHUB_REPOS"); v != "" {
		cfg.GitHub.Repos = splitCSV(v)
	}

	setString(&cfg.WakaTime.APIKey, "CHRONOLOG_WAKATIME_API_KEY")
	setString(&cfg.WakaTime.BaseURL, "CHRONOLOG_WAKATIME_URL")

	setString(&cfg.Graph.Token, "CHRONOLOG_GRAPH_TOKEN")
	setString(&cfg.Graph.BaseURL, "CHRONOLOG_GRAPH_URL")

	setString(&cfg.Google.CredentialsFile, "CHRONOLOG_GOOGLE_CREDENTIALS")
	setString(&cfg.Google.TokenFile, "CHRONOLOG_GOOGLE_TOKEN")
	setString(&cfg.Google.CalendarID, "CHRONOLOG_GOOGLE_CALENDAR_ID")

	setString(&cfg.Jira.URL, "CHRONOLOG_JIRA_URL")
	setString(&cfg.Jira.Email, "CHRONOLOG_JIRA_EMAIL")
	setString(&cfg.Jira.APIToken, "CHRONOLOG_JIRA_API_TOKEN")

	setString(&cfg.Notify.Method, "CHRONOLOG_NOTIFY_METHOD")
	setString(&cfg.Notify.WebhookURL, "CHRONOLOG_NOTIFY_WEBHOOK_URL")
	setString(&cfg.Notify.SMTPHost, "CHRONOLOG_SMTP_HOST")
	setInt(&cfg.Notify.SMTPPort, "CHRONOLOG_SMTP_PORT")
	setString(&cfg.Notify.SMTPUser, "CHRONOLOG_SMTP_USER")
	setString(&cfg.Notify.SMTPPass, "CHRONOLOG_SMTP_PASS")
	setString(&cfg.Notify.Recipient, "CHRONOLOG_NOTIFY_RECIPIENT")

	return cfg
}

// Location resolves the reporting time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// MergeThreshold returns the merge threshold as a duration.
func (c Config) MergeThreshold() time.Duration {
	return time.Duration(c.MergeThresholdMin) * time.Minute
}

// MinGap returns the minimum gap size as a duration.
func (c Config) MinGap() time.Duration {
	return time.Duration(c.MinGapMin) * time.Minute
}

// MinActivity returns the minimum activity duration as a duration.
func (c Config) MinActivity() time.Duration {
	return time.Duration(c.MinActivityMin) * time.Minute
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
