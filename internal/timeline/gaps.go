package timeline

import (
	"sort"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// GapOptions bounds the gap synthesis: gaps shorter than MinGap are ignored,
// and synthesized intervals are clipped to the working-day window.
type GapOptions struct {
	MinGap        time.Duration
	WorkStartHour int
	WorkEndHour   int
}

// DefaultGapOptions returns the standard 30-minute minimum gap within a
// 9:00-17:00 working day.
func DefaultGapOptions() GapOptions {
	return GapOptions{MinGap: 30 * time.Minute, WorkStartHour: 9, WorkEndHour: 17}
}

// FillGaps walks consecutive pairs of intervals and synthesizes an "untracked
// time" interval for every silence of at least opts.MinGap, clipped to the
// working window of the preceding interval's calendar day. A gap spanning
// midnight is therefore bounded by the first interval's day only; it is not
// re-evaluated against the following day's window.
//
// Every input interval is preserved in its original relative order, with gap
// intervals interleaved. The input is re-sorted by start time first;
// fewer than two intervals are returned as-is.
func FillGaps(in []domain.Interval, opts GapOptions) []domain.Interval {
	if len(in) < 2 {
		return in
	}

	sorted := make([]domain.Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := make([]domain.Interval, 0, len(sorted))
	out = append(out, sorted[0])

	for i := 1; i < len(sorted); i++ {
		prevEnd := sorted[i-1].End
		currStart := sorted[i].Start

		if currStart.Sub(prevEnd) >= opts.MinGap {
			if gap, ok := clipToWorkday(prevEnd, currStart, opts); ok {
				out = append(out, gap)
			}
		}
		out = append(out, sorted[i])
	}

	return out
}

// clipToWorkday intersects the candidate gap [prevEnd, currStart] with the
// working window of prevEnd's calendar day and synthesizes the gap interval
// if the clipped span still meets the minimum gap size.
func clipToWorkday(prevEnd, currStart time.Time, opts GapOptions) (domain.Interval, bool) {
	y, m, d := prevEnd.Date()
	dayStart := time.Date(y, m, d, opts.WorkStartHour, 0, 0, 0, prevEnd.Location())
	dayEnd := time.Date(y, m, d, opts.WorkEndHour, 0, 0, 0, prevEnd.Location())

	gapStart := prevEnd
	if dayStart.After(gapStart) {
		gapStart = dayStart
	}
	gapEnd := currStart
	if dayEnd.Before(gapEnd) {
		gapEnd = dayEnd
	}

	if gapEnd.Sub(gapStart) < opts.MinGap {
		return domain.Interval{}, false
	}

	return domain.Interval{
		Source: domain.SourceTimeGap,
		Title:  "Unknown Activity",
		Start:  gapStart,
		End:    gapEnd,
		Annotation: &domain.Annotation{
			TaskType:    domain.UnknownTaskType,
			Ticket:      domain.UnknownTicket,
			Description: "Untracked time",
			Billable:    false,
		},
	}, true
}
