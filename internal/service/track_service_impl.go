package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/annotate"
	"github.com/alexanderramin/chronolog/internal/db"
	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/notify"
	"github.com/alexanderramin/chronolog/internal/repository"
	"github.com/alexanderramin/chronolog/internal/source"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

// TrackOptions carries the timeline tuning knobs resolved from config.
type TrackOptions struct {
	Location       *time.Location
	MergeThreshold time.Duration
	Gaps           timeline.GapOptions
}

type trackService struct {
	sources   []source.Source
	annotator annotate.Annotator
	uow       db.UnitOfWork
	notifier  notify.Notifier
	opts      TrackOptions
	log       zerolog.Logger
}

// NewTrackService wires the reconciliation pipeline.
func NewTrackService(
	sources []source.Source,
	annotator annotate.Annotator,
	uow db.UnitOfWork,
	notifier notify.Notifier,
	opts TrackOptions,
	log zerolog.Logger,
) TrackService {
	return &trackService{
		sources:   sources,
		annotator: annotator,
		uow:       uow,
		notifier:  notifier,
		opts:      opts,
		log:       log,
	}
}

func (s *trackService) Track(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	start, end, err := timeline.ParseDateRange(req.Date, s.opts.Location)
	if err != nil {
		return nil, err
	}
	label := start.Format("2006-01-02")
	if !sameDay(start, end) {
		label += ":" + end.Format("2006-01-02")
	}

	collected, counts := s.collect(ctx, req.Sources, start, end)
	if len(collected) == 0 {
		return nil, fmt.Errorf("no activities found for %s", label)
	}

	merged := timeline.Merge(collected, s.opts.MergeThreshold)
	filled := timeline.FillGaps(merged, s.opts.Gaps)

	annotated := filled
	if req.Annotate {
		annotated = s.annotator.Annotate(ctx, filled)
	}

	batchID := uuid.NewString()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteBatchRepo(tx).Save(ctx, batchID, label, annotated)
	})
	if err != nil {
		return nil, fmt.Errorf("saving batch: %w", err)
	}

	var total float64
	for _, iv := range annotated {
		total += iv.Minutes()
	}

	s.log.Info().Str("batch_id", batchID).Str("label", label).
		Int("intervals", len(annotated)).Float64("total_minutes", total).
		Msg("batch tracked")

	if req.Notify {
		subject, message := notify.FormatTrackNotification(label, annotated)
		if err := s.notifier.Notify(ctx, subject, message); err != nil {
			// Notification failure must not undo a saved batch.
			s.log.Warn().Err(err).Msg("notification failed")
		}
	}

	return &TrackResult{
		BatchID:      batchID,
		Label:        label,
		SourceCounts: counts,
		Intervals:    annotated,
		TotalMinutes: total,
	}, nil
}

// collect gathers intervals from each enabled source. A failing source is
// logged and skipped so the rest of the day still gets reconciled.
func (s *trackService) collect(ctx context.Context, only []string, start, end time.Time) ([]domain.Interval, map[string]int) {
	enabled := make(map[string]bool, len(only))
	for _, name := range only {
		enabled[name] = true
	}

	var collected []domain.Interval
	counts := make(map[string]int)

	for _, src := range s.sources {
		if len(only) > 0 && !enabled[src.Name()] {
			continue
		}

		intervals, err := src.Activities(ctx, start, end)
		if err != nil {
			s.log.Warn().Err(err).Str("source", src.Name()).Msg("source failed, continuing")
			continue
		}

		counts[src.Name()] = len(intervals)
		collected = append(collected, intervals...)
	}

	return collected, counts
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
