package timeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/chronolog/internal/domain"
)

var day = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func iv(source string, start, end time.Time) domain.Interval {
	return domain.Interval{Source: source, Title: source, Start: start, End: end}
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, DefaultMergeThreshold))
	assert.Empty(t, Merge([]domain.Interval{}, DefaultMergeThreshold))
}

func TestMerge_SingleElementUnchanged(t *testing.T) {
	in := []domain.Interval{iv("a", at(9, 0), at(9, 30))}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 1)
	assert.Equal(t, in[0], out[0])
}

func TestMerge_DisjointPreserved(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 30)),
		iv("b", at(11, 0), at(11, 30)),
	}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Source)
	assert.Equal(t, "b", out[1].Source)
}

func TestMerge_OverlapCoalesced(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 20)),
		iv("b", at(9, 10), at(9, 40)),
	}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 1)
	assert.Equal(t, "a,b", out[0].Source)
	assert.Equal(t, "a; b", out[0].Title)
	assert.Equal(t, at(9, 0), out[0].Start)
	assert.Equal(t, at(9, 40), out[0].End)
	assert.Equal(t, 40.0, out[0].Minutes())
}

func TestMerge_WithinThresholdCoalesced(t *testing.T) {
	// 2 minutes apart, threshold 2 minutes: still touching.
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 20)),
		iv("b", at(9, 22), at(9, 40)),
	}
	out := Merge(in, 2*time.Minute)
	require.Len(t, out, 1)
	assert.Equal(t, "a,b", out[0].Source)
}

func TestMerge_JustPastThresholdKeptApart(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 20)),
		iv("b", at(9, 23), at(9, 40)),
	}
	out := Merge(in, 2*time.Minute)
	assert.Len(t, out, 2)
}

func TestMerge_UnsortedInput(t *testing.T) {
	in := []domain.Interval{
		iv("b", at(9, 10), at(9, 40)),
		iv("a", at(9, 0), at(9, 20)),
	}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 1)
	assert.Equal(t, "a,b", out[0].Source)
}

func TestMerge_DonorRule(t *testing.T) {
	// Interval A 09:00-09:05 (Meeting) overlapping B 09:02-09:30 (Development).
	// B is strictly longer (28m vs 5m), so B donates every non-positional field.
	a := domain.Interval{
		Source: "A.source", Title: "standup",
		Start: at(9, 0), End: at(9, 5),
		Annotation: &domain.Annotation{TaskType: "Meeting", Ticket: "PROJ-1", Billable: true},
		Raw:        map[string]any{"organizer": "pat"},
	}
	b := domain.Interval{
		Source: "B.source", Title: "feature work",
		Start: at(9, 2), End: at(9, 30),
		Annotation: &domain.Annotation{TaskType: "Development", Ticket: "PROJ-2", Billable: true},
		Raw:        map[string]any{"repo": "chronolog"},
	}

	out := Merge([]domain.Interval{a, b}, DefaultMergeThreshold)
	require.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, "A.source,B.source", got.Source)
	assert.Equal(t, "standup; feature work", got.Title)
	assert.Equal(t, at(9, 0), got.Start)
	assert.Equal(t, at(9, 30), got.End)
	assert.Equal(t, 30.0, got.Minutes())
	require.NotNil(t, got.Annotation)
	assert.Equal(t, "Development", got.Annotation.TaskType)
	assert.Equal(t, "PROJ-2", got.Annotation.Ticket)
	assert.Equal(t, map[string]any{"repo": "chronolog"}, got.Raw)
}

func TestMerge_DonorRule_TieFavorsCurrent(t *testing.T) {
	a := domain.Interval{
		Source: "a", Title: "a", Start: at(9, 0), End: at(9, 10),
		Annotation: &domain.Annotation{TaskType: "Meeting"},
	}
	b := domain.Interval{
		Source: "b", Title: "b", Start: at(9, 5), End: at(9, 15),
		Annotation: &domain.Annotation{TaskType: "Development"},
	}
	out := Merge([]domain.Interval{a, b}, DefaultMergeThreshold)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Annotation)
	assert.Equal(t, "Meeting", out[0].Annotation.TaskType, "equal durations keep the accumulator's fields")
}

func TestMerge_ChainAccumulatesEverySource(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 10)),
		iv("b", at(9, 5), at(9, 20)),
		iv("a", at(9, 15), at(9, 30)),
	}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 1)
	assert.Equal(t, "a,b,a", out[0].Source, "duplicates are not deduplicated")
}

func TestMerge_InputNotMutated(t *testing.T) {
	in := []domain.Interval{
		iv("b", at(9, 10), at(9, 40)),
		iv("a", at(9, 0), at(9, 20)),
	}
	snapshot := []domain.Interval{in[0], in[1]}
	Merge(in, DefaultMergeThreshold)
	assert.Equal(t, snapshot, in)
}

func TestMerge_StableForEqualStarts(t *testing.T) {
	in := []domain.Interval{
		iv("first", at(9, 0), at(9, 10)),
		iv("second", at(9, 0), at(9, 10)),
	}
	out := Merge(in, DefaultMergeThreshold)
	require.Len(t, out, 1)
	assert.Equal(t, "first,second", out[0].Source, "equal start times keep input order")
}

// randomIntervals builds a pseudo-random multiset of intervals within one day.
func randomIntervals(rng *rand.Rand, n int) []domain.Interval {
	out := make([]domain.Interval, n)
	for i := range out {
		start := at(rng.Intn(16)+6, rng.Intn(60))
		out[i] = iv("src", start, start.Add(time.Duration(rng.Intn(120))*time.Minute))
	}
	return out
}

func TestMerge_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 100; trial++ {
		in := randomIntervals(rng, rng.Intn(20))
		once := Merge(in, DefaultMergeThreshold)
		twice := Merge(once, DefaultMergeThreshold)
		assert.Equal(t, once, twice)
	}
}

func TestMerge_OrderAndSpacingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 100; trial++ {
		out := Merge(randomIntervals(rng, rng.Intn(30)+1), DefaultMergeThreshold)
		for i := 1; i < len(out); i++ {
			assert.False(t, out[i].Start.Before(out[i-1].Start), "output sorted by start")
			gap := out[i].Start.Sub(out[i-1].End)
			assert.Greater(t, gap, DefaultMergeThreshold,
				"adjacent outputs must sit further apart than the threshold")
		}
	}
}

func TestMerge_ConservesCoveredSpan(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for trial := 0; trial < 100; trial++ {
		in := randomIntervals(rng, rng.Intn(25)+1)
		out := Merge(in, DefaultMergeThreshold)
		require.NotEmpty(t, out)

		minStart, maxEnd := in[0].Start, in[0].End
		for _, v := range in[1:] {
			if v.Start.Before(minStart) {
				minStart = v.Start
			}
			if v.End.After(maxEnd) {
				maxEnd = v.End
			}
		}
		assert.Equal(t, minStart, out[0].Start)
		assert.Equal(t, maxEnd, out[len(out)-1].End)
	}
}

func TestMerge_OutputNeverLonger(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 100; trial++ {
		in := randomIntervals(rng, rng.Intn(25))
		assert.LessOrEqual(t, len(Merge(in, DefaultMergeThreshold)), len(in))
	}
}
