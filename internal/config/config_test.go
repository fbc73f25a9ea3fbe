package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "UTC", cfg.TimeZone)
	assert.Equal(t, 9, cfg.WorkStartHour)
	assert.Equal(t, 17, cfg.WorkEndHour)
	assert.Equal(t, 2*time.Minute, cfg.MergeThreshold())
	assert.Equal(t, 30*time.Minute, cfg.MinGap())
	assert.Equal(t, 5*time.Minute, cfg.MinActivity())
	assert.Equal(t, "none", cfg.Notify.Method)
	assert.Contains(t, cfg.DBPath, ".chronolog")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHRONOLOG_TIMEZONE", "Europe/Berlin")
	t.Setenv("CHRONOLOG_MERGE_THRESHOLD_MIN", "5")
	t.Setenv("CHRONOLOG_GITHUB_REPOS", "me/repo-a, me/repo-b ,")
	t.Setenv("CHRONOLOG_JIRA_URL", "https://example.atlassian.net")

	cfg := Load()
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
	assert.Equal(t, 5*time.Minute, cfg.MergeThreshold())
	assert.Equal(t, []string{"me/repo-a", "me/repo-b"}, cfg.GitHub.Repos)
	assert.Equal(t, "https://example.atlassian.net", cfg.Jira.URL)
}

func TestLoad_BadIntIgnored(t *testing.T) {
	t.Setenv("CHRONOLOG_MIN_GAP_MIN", "soon")
	cfg := Load()
	assert.Equal(t, 30, cfg.MinGapMin)
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.TimeZone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}
