package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/chronolog/internal/repository"
	"github.com/alexanderramin/chronolog/internal/timeline"
)

type reportService struct {
	repo repository.BatchRepo
	loc  *time.Location
}

// NewReportService creates a ReportService aggregating in loc.
func NewReportService(repo repository.BatchRepo, loc *time.Location) ReportService {
	return &reportService{repo: repo, loc: loc}
}

// Report aggregates the batch by calendar day. An empty batchID means the
// most recently tracked batch.
func (s *reportService) Report(ctx context.Context, batchID string) (*Report, error) {
	info, err := s.resolveBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	intervals, err := s.repo.Load(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("loading batch %s: %w", info.ID, err)
	}

	byDay := timeline.GroupByDay(intervals, s.loc)
	totals := timeline.DailyTotals(intervals, s.loc)

	report := &Report{BatchID: info.ID, Label: info.Label}
	for _, day := range timeline.SortedDayKeys(byDay) {
		report.Days = append(report.Days, DayReport{
			Day:       day,
			Intervals: byDay[day],
			Stats:     totals[day],
		})
	}
	return report, nil
}

func (s *reportService) resolveBatch(ctx context.Context, batchID string) (*repository.BatchInfo, error) {
	if batchID == "" {
		info, err := s.repo.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving latest batch: %w", err)
		}
		return info, nil
	}

	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	for i := range batches {
		if batches[i].ID == batchID {
			return &batches[i], nil
		}
	}
	return nil, fmt.Errorf("batch %s: %w", batchID, repository.ErrNotFound)
}
