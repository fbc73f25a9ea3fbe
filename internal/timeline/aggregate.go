package timeline

import (
	"sort"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

const dayKeyLayout = "2006-01-02"

// DayKey buckets an interval by the calendar day of its start instant in the
// reporting zone. An interval spanning midnight is attributed entirely to the
// day it started.
func DayKey(iv domain.Interval, loc *time.Location) string {
	return iv.Start.In(loc).Format(dayKeyLayout)
}

// GroupByDay buckets intervals by day key, each bucket sorted by start time.
func GroupByDay(in []domain.Interval, loc *time.Location) map[string][]domain.Interval {
	days := make(map[string][]domain.Interval)
	for _, iv := range in {
		key := DayKey(iv, loc)
		days[key] = append(days[key], iv)
	}
	for _, bucket := range days {
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Start.Before(bucket[j].Start)
		})
	}
	return days
}

// DailyTotals produces per-day summary statistics: total and billable
// minutes plus minutes broken down by task type and by ticket.
//
// Intervals without an annotation count as task type "Unknown", ticket
// "unknown", and non-billable. This differs from the submission-time default
// (billable) on purpose: unreviewed time must never inflate billable totals.
func DailyTotals(in []domain.Interval, loc *time.Location) map[string]domain.DayStats {
	totals := make(map[string]domain.DayStats)

	for day, bucket := range GroupByDay(in, loc) {
		stats := domain.DayStats{
			ByTaskType: make(map[string]float64),
			ByTicket:   make(map[string]float64),
		}
		for _, iv := range bucket {
			minutes := iv.Minutes()
			taskType := domain.UnknownTaskType
			ticket := domain.UnknownTicket
			billable := false
			if iv.Annotation != nil {
				taskType = iv.Annotation.TaskType
				ticket = iv.Annotation.Ticket
				billable = iv.Annotation.Billable
			}

			stats.TotalMinutes += minutes
			if billable {
				stats.BillableMinutes += minutes
			}
			stats.ByTaskType[taskType] += minutes
			stats.ByTicket[ticket] += minutes
		}
		totals[day] = stats
	}

	return totals
}

// SortedDayKeys returns the day keys of a totals map in ascending order.
func SortedDayKeys[V any](days map[string]V) []string {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
