package service

import (
	"context"

	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/jira"
)

// TrackRequest selects what to collect and how to post-process it.
type TrackRequest struct {
	// Date is "", "YYYY-MM-DD" or "YYYY-MM-DD:YYYY-MM-DD"; empty means yesterday.
	Date string

	// Sources restricts collection to the named sources; empty means all.
	Sources []string

	Annotate bool
	Notify   bool
}

// TrackResult summarizes one reconciliation run.
type TrackResult struct {
	BatchID      string
	Label        string
	SourceCounts map[string]int
	Intervals    []domain.Interval
	TotalMinutes float64
}

// TrackService runs the collect-merge-fill-annotate-save pipeline.
// It never submits anything to Jira; that requires an explicit review.
type TrackService interface {
	Track(ctx context.Context, req TrackRequest) (*TrackResult, error)
}

// DayReport is the aggregation for one calendar day.
type DayReport struct {
	Day       string
	Intervals []domain.Interval
	Stats     domain.DayStats
}

// Report is the per-day breakdown of one batch.
type Report struct {
	BatchID string
	Label   string
	Days    []DayReport
}

// ReportService aggregates a stored batch by day in the reporting zone.
type ReportService interface {
	Report(ctx context.Context, batchID string) (*Report, error)
}

// SkippedEntry explains why an interval was excluded from submission.
type SkippedEntry struct {
	Title  string
	Reason string
}

// SubmitService turns a stored batch into worklog entries and submits them.
type SubmitService interface {
	// BuildEntries applies the exclusion rules and returns both the
	// submittable entries and an explanation for everything excluded.
	BuildEntries(ctx context.Context, batchID string) ([]jira.WorklogEntry, []SkippedEntry, error)

	Submit(ctx context.Context, entries []jira.WorklogEntry) (jira.Result, error)
}
