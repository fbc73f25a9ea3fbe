package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/notify"
	"github.com/alexanderramin/chronolog/internal/repository"
)

type fakeWorklogger struct {
	calls  []string
	failOn string
}

func (f *fakeWorklogger) AddWorklog(_ context.Context, issueKey string, _ time.Duration, _ string, _ time.Time) error {
	f.calls = append(f.calls, issueKey)
	if issueKey == f.failOn {
		return errors.New("jira rejected worklog")
	}
	return nil
}

func TestBuildEntries(t *testing.T) {
	repo := repository.NewSQLiteBatchRepo(trackTestDB(t))
	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	gap := domain.Interval{
		Source: domain.SourceTimeGap,
		Title:  "Unknown Activity",
		Start:  day.Add(4 * time.Hour),
		End:    day.Add(5 * time.Hour),
		Annotation: &domain.Annotation{
			TaskType: domain.UnknownTaskType, Ticket: domain.UnknownTicket,
			Description: "Untracked time", Billable: false,
		},
	}
	blip := annotated("github_commit", day.Add(6*time.Hour), 0, "PROJ-9", true)
	blip.End = blip.Start.Add(30 * time.Second)

	seedBatch(t, repo, "b1", "2024-03-11", []domain.Interval{
		annotated("calendar_event", day, 90, "PROJ-1", true),
		gap,
		blip,
		{Source: "wakatime_duration", Title: "Coding", Start: day.Add(7 * time.Hour), End: day.Add(8 * time.Hour)},
	})

	svc := NewSubmitService(repo, &fakeWorklogger{}, notify.NopNotifier{}, zerolog.Nop())
	entries, skipped, err := svc.BuildEntries(context.Background(), "b1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PROJ-1", entries[0].Ticket)
	assert.Equal(t, 90*time.Minute, entries[0].Duration)

	require.Len(t, skipped, 3)
	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.Title] = s.Reason
	}
	assert.Equal(t, "no ticket resolved", reasons["Unknown Activity"])
	assert.Equal(t, "shorter than one minute", reasons["github_commit"])
	assert.Equal(t, "no ticket resolved", reasons["Coding"])
}

func TestBuildEntries_LatestBatch(t *testing.T) {
	repo := repository.NewSQLiteBatchRepo(trackTestDB(t))
	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	seedBatch(t, repo, "b1", "2024-03-11", []domain.Interval{
		annotated("calendar_event", day, 60, "PROJ-1", true),
	})

	svc := NewSubmitService(repo, &fakeWorklogger{}, notify.NopNotifier{}, zerolog.Nop())
	entries, _, err := svc.BuildEntries(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBuildEntries_MissingBatch(t *testing.T) {
	svc := NewSubmitService(repository.NewSQLiteBatchRepo(trackTestDB(t)), &fakeWorklogger{}, notify.NopNotifier{}, zerolog.Nop())
	_, _, err := svc.BuildEntries(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubmit(t *testing.T) {
	repo := repository.NewSQLiteBatchRepo(trackTestDB(t))
	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	seedBatch(t, repo, "b1", "2024-03-11", []domain.Interval{
		annotated("calendar_event", day, 60, "PROJ-1", true),
		annotated("github_commit", day.Add(2*time.Hour), 30, "PROJ-2", true),
	})

	logger := &fakeWorklogger{failOn: "PROJ-2"}
	notifier := &recordingNotifier{}
	svc := NewSubmitService(repo, logger, notifier, zerolog.Nop())

	entries, _, err := svc.BuildEntries(context.Background(), "b1")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), entries)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, []string{"PROJ-1", "PROJ-2"}, logger.calls)
}

func TestSubmit_NotifiesOutcome(t *testing.T) {
	repo := repository.NewSQLiteBatchRepo(trackTestDB(t))
	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	seedBatch(t, repo, "b1", "2024-03-11", []domain.Interval{
		annotated("calendar_event", day, 60, "PROJ-1", true),
		annotated("github_commit", day.Add(2*time.Hour), 30, "PROJ-1", true),
	})

	notifier := &recordingNotifier{}
	svc := NewSubmitService(repo, &fakeWorklogger{}, notifier, zerolog.Nop())

	entries, _, err := svc.BuildEntries(context.Background(), "b1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), entries)
	require.NoError(t, err)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.subjects[0], "2024-03-11")
	assert.Contains(t, notifier.messages[0], "PROJ-1")
	assert.Contains(t, notifier.messages[0], "1h 30m")
}

func TestSubmit_NotifyFailureIsNotFatal(t *testing.T) {
	repo := repository.NewSQLiteBatchRepo(trackTestDB(t))
	day := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	seedBatch(t, repo, "b1", "2024-03-11", []domain.Interval{
		annotated("calendar_event", day, 60, "PROJ-1", true),
	})

	notifier := &recordingNotifier{err: errors.New("webhook down")}
	svc := NewSubmitService(repo, &fakeWorklogger{}, notifier, zerolog.Nop())

	entries, _, err := svc.BuildEntries(context.Background(), "b1")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
}

func TestSubmit_NothingToSubmitSkipsNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewSubmitService(repository.NewSQLiteBatchRepo(trackTestDB(t)), &fakeWorklogger{}, notifier, zerolog.Nop())

	res, err := svc.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Success)
	assert.Empty(t, notifier.subjects)
}
