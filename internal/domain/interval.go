package domain

import (
	"errors"
	"time"
)

// Sentinel values applied when the categorization step could not determine
// a field. Aggregation and submission both treat these as "not annotated".
const (
	UnknownTaskType = "Unknown"
	UnknownTicket   = "unknown"
)

// SourceTimeGap marks intervals synthesized to cover untracked time.
const SourceTimeGap = "time_gap"

var (
	// ErrMissingTimes indicates an interval with a zero start or end instant.
	ErrMissingTimes = errors.New("interval missing start or end time")

	// ErrEndBeforeStart indicates an interval whose end precedes its start.
	ErrEndBeforeStart = errors.New("interval end time before start time")
)

// Annotation holds the category and billing labels attached to an interval
// by the categorization step. Absent (nil) until that step runs.
type Annotation struct {
	TaskType    string
	Ticket      string
	Description string
	Billable    bool
}

// Interval is one reconciled unit of tracked time. Start and End are
// timezone-aware instants with Start <= End; zero-length intervals are
// permitted and represent instantaneous events before padding.
//
// Raw carries source-specific passthrough fields verbatim. The pipeline
// never inspects it; merging copies it wholesale from the donor interval.
type Interval struct {
	Source string
	Title  string
	Start  time.Time
	End    time.Time

	Annotation *Annotation
	Raw        map[string]any
}

// Duration returns the interval's span, always derived from Start and End.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Minutes returns the interval's duration in minutes.
func (iv Interval) Minutes() float64 {
	return iv.End.Sub(iv.Start).Minutes()
}

// Validate rejects malformed intervals at the ingestion boundary. The
// timeline algorithms assume every interval they see has passed this check.
func (iv Interval) Validate() error {
	if iv.Start.IsZero() || iv.End.IsZero() {
		return ErrMissingTimes
	}
	if iv.End.Before(iv.Start) {
		return ErrEndBeforeStart
	}
	return nil
}

// DayStats summarizes one calendar day of intervals.
type DayStats struct {
	TotalMinutes    float64
	BillableMinutes float64
	ByTaskType      map[string]float64
	ByTicket        map[string]float64
}
