package timeline

import (
	"sort"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// DefaultMergeThreshold is the maximum gap between two intervals that still
// counts as "touching" for merge purposes.
const DefaultMergeThreshold = 2 * time.Minute

// Merge sorts intervals by start time and coalesces every pair that overlaps
// or sits within threshold of each other into a single interval.
//
// The merged interval spans from the earliest start to the latest end. Its
// source is the comma-joined chain of donor sources in scan order (duplicates
// kept), its title the "; "-joined chain of titles. All other fields,
// including the annotation and the opaque raw payload, come from whichever of
// the two pre-merge intervals had the strictly longer duration; ties keep the
// accumulated interval's fields.
//
// The input slice is never mutated; the result is a fresh, sorted slice of at
// most len(in) intervals with no two adjacent elements overlapping or closer
// than threshold.
func Merge(in []domain.Interval, threshold time.Duration) []domain.Interval {
	if len(in) == 0 {
		return []domain.Interval{}
	}

	sorted := make([]domain.Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]domain.Interval, 0, len(sorted))
	current := sorted[0]

	for _, next := range sorted[1:] {
		if next.Start.After(current.End) && next.Start.Sub(current.End) > threshold {
			merged = append(merged, current)
			current = next
			continue
		}
		current = coalesce(current, next)
	}

	return append(merged, current)
}

// coalesce combines two touching intervals into one, applying the donor rule
// on the pre-merge durations.
func coalesce(current, next domain.Interval) domain.Interval {
	donor := current
	if next.Duration() > current.Duration() {
		donor = next
	}

	out := domain.Interval{
		Source:     current.Source + "," + next.Source,
		Title:      current.Title + "; " + next.Title,
		Start:      current.Start,
		End:        current.End,
		Annotation: donor.Annotation,
		Raw:        donor.Raw,
	}
	if next.Start.Before(out.Start) {
		out.Start = next.Start
	}
	if next.End.After(out.End) {
		out.End = next.End
	}
	return out
}
