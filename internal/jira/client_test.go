package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/chronolog/internal/config"
)

func TestAddWorklog(t *testing.T) {
	var gotPath string
	var gotBody worklogRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "alex@example.com", user)
		assert.Equal(t, "token", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(config.JiraConfig{
		URL: srv.URL + "/", Email: "alex@example.com", APIToken: "token",
	}, zerolog.Nop())

	started := time.Date(2024, 3, 11, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	err := c.AddWorklog(context.Background(), "PROJ-42", 150*time.Minute, "Sprint planning", started)

	require.NoError(t, err)
	assert.Equal(t, "/rest/api/2/issue/PROJ-42/worklog", gotPath)
	assert.Equal(t, "2h 30m", gotBody.TimeSpent)
	assert.Equal(t, "Sprint planning", gotBody.Comment)
	assert.Equal(t, "2024-03-11T09:00:00.000+0100", gotBody.Started)
}

func TestAddWorklog_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorMessages":["Issue does not exist"]}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(config.JiraConfig{URL: srv.URL}, zerolog.Nop())
	err := c.AddWorklog(context.Background(), "NOPE-1", time.Hour, "x", time.Time{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFormatTimeSpent(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{150 * time.Minute, "2h 30m"},
		{2 * time.Hour, "2h"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "1m"},
		{0, "1m"},
		{61 * time.Minute, "1h 1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimeSpent(tt.d), tt.d.String())
	}
}

type fakeWorklogger struct {
	calls  []string
	failOn map[string]error
}

func (f *fakeWorklogger) AddWorklog(_ context.Context, issueKey string, _ time.Duration, _ string, _ time.Time) error {
	f.calls = append(f.calls, issueKey)
	if err, ok := f.failOn[issueKey]; ok {
		return err
	}
	return nil
}

func TestSubmitEntries(t *testing.T) {
	fake := &fakeWorklogger{failOn: map[string]error{"PROJ-99": errors.New("permission denied")}}
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	entries := []WorklogEntry{
		{Ticket: "PROJ-42", Description: "Planning", Start: start, Duration: time.Hour},
		{Ticket: "unknown", Description: "Mystery", Start: start, Duration: time.Hour},
		{Ticket: "", Description: "Untagged", Start: start, Duration: time.Hour},
		{Ticket: "PROJ-43", Description: "Blip", Start: start, Duration: 30 * time.Second},
		{Ticket: "PROJ-99", Description: "Fails", Start: start, Duration: time.Hour},
	}

	res := SubmitEntries(context.Background(), fake, entries)

	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0], "PROJ-99")
	assert.Equal(t, []string{"PROJ-42", "PROJ-99"}, fake.calls)
}

func TestSubmitEntries_Empty(t *testing.T) {
	res := SubmitEntries(context.Background(), &fakeWorklogger{}, nil)
	assert.Zero(t, res.Success)
	assert.Zero(t, res.Errors)
	assert.Zero(t, res.Skipped)
}
