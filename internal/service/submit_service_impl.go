package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/jira"
	"github.com/alexanderramin/chronolog/internal/notify"
	"github.com/alexanderramin/chronolog/internal/repository"
)

type submitService struct {
	repo     repository.BatchRepo
	worklogs jira.Worklogger
	notifier notify.Notifier
	log      zerolog.Logger
}

// NewSubmitService creates a SubmitService logging work through worklogs.
// The notifier is told about every submission outcome.
func NewSubmitService(repo repository.BatchRepo, worklogs jira.Worklogger, notifier notify.Notifier, log zerolog.Logger) SubmitService {
	return &submitService{repo: repo, worklogs: worklogs, notifier: notifier, log: log}
}

// BuildEntries converts a stored batch into candidate worklog entries,
// excluding intervals that cannot or should not be logged. An empty batchID
// means the most recently tracked batch.
func (s *submitService) BuildEntries(ctx context.Context, batchID string) ([]jira.WorklogEntry, []SkippedEntry, error) {
	if batchID == "" {
		latest, err := s.repo.Latest(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving latest batch: %w", err)
		}
		batchID = latest.ID
	}

	intervals, err := s.repo.Load(ctx, batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading batch %s: %w", batchID, err)
	}

	var entries []jira.WorklogEntry
	var skipped []SkippedEntry

	for _, iv := range intervals {
		if iv.Annotation == nil || iv.Annotation.Ticket == "" || iv.Annotation.Ticket == domain.UnknownTicket {
			skipped = append(skipped, SkippedEntry{Title: iv.Title, Reason: "no ticket resolved"})
			continue
		}
		if iv.Duration() < time.Minute {
			skipped = append(skipped, SkippedEntry{Title: iv.Title, Reason: "shorter than one minute"})
			continue
		}

		description := iv.Annotation.Description
		if description == "" {
			description = iv.Title
		}

		entries = append(entries, jira.WorklogEntry{
			Ticket:      iv.Annotation.Ticket,
			Description: description,
			Start:       iv.Start,
			Duration:    iv.Duration(),
		})
	}

	s.log.Info().Str("batch_id", batchID).
		Int("entries", len(entries)).Int("skipped", len(skipped)).
		Msg("worklog entries built")
	return entries, skipped, nil
}

func (s *submitService) Submit(ctx context.Context, entries []jira.WorklogEntry) (jira.Result, error) {
	res := jira.SubmitEntries(ctx, s.worklogs, entries)
	s.log.Info().Int("success", res.Success).Int("errors", res.Errors).Int("skipped", res.Skipped).
		Msg("submission finished")

	if len(entries) > 0 {
		dateStr := entries[0].Start.Format("2006-01-02")
		subject, message := notify.FormatSubmissionNotification(dateStr, res, entries)
		if err := s.notifier.Notify(ctx, subject, message); err != nil {
			// A failed notification never fails the submission.
			s.log.Warn().Err(err).Msg("submission notification failed")
		}
	}
	return res, nil
}
