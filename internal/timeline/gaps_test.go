package timeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/chronolog/internal/domain"
)

func TestFillGaps_FewerThanTwoUnchanged(t *testing.T) {
	assert.Empty(t, FillGaps(nil, DefaultGapOptions()))
	assert.Empty(t, FillGaps([]domain.Interval{}, DefaultGapOptions()))

	one := []domain.Interval{iv("a", at(9, 0), at(9, 30))}
	assert.Equal(t, one, FillGaps(one, DefaultGapOptions()))
}

func TestFillGaps_SmallGapIgnored(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(9, 0), at(9, 30)),
		iv("b", at(9, 50), at(10, 30)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 2)
	assert.Equal(t, in, out)
}

func TestFillGaps_MorningGapSynthesized(t *testing.T) {
	// Spec boundary case: 09:00 end to 12:00 start yields one 180-minute gap.
	in := []domain.Interval{
		iv("a", at(8, 0), at(9, 0)),
		iv("b", at(12, 0), at(12, 30)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 3)

	gap := out[1]
	assert.Equal(t, domain.SourceTimeGap, gap.Source)
	assert.Equal(t, "Unknown Activity", gap.Title)
	assert.Equal(t, at(9, 0), gap.Start)
	assert.Equal(t, at(12, 0), gap.End)
	assert.Equal(t, 180.0, gap.Minutes())
	require.NotNil(t, gap.Annotation)
	assert.Equal(t, domain.UnknownTaskType, gap.Annotation.TaskType)
	assert.Equal(t, domain.UnknownTicket, gap.Annotation.Ticket)
	assert.Equal(t, "Untracked time", gap.Annotation.Description)
	assert.False(t, gap.Annotation.Billable)
}

func TestFillGaps_ClipsToWorkdayEnd(t *testing.T) {
	// Gap runs 16:00 to 20:00; the workday ends at 17:00, so only one hour
	// of untracked time is synthesized.
	in := []domain.Interval{
		iv("a", at(15, 0), at(16, 0)),
		iv("b", at(20, 0), at(20, 30)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 3)
	assert.Equal(t, at(16, 0), out[1].Start)
	assert.Equal(t, at(17, 0), out[1].End)
}

func TestFillGaps_ClipsToWorkdayStart(t *testing.T) {
	in := []domain.Interval{
		iv("a", at(6, 0), at(6, 30)),
		iv("b", at(11, 0), at(11, 30)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 3)
	assert.Equal(t, at(9, 0), out[1].Start)
	assert.Equal(t, at(11, 0), out[1].End)
}

func TestFillGaps_MidnightSpanClippedToFirstDay(t *testing.T) {
	// Spec window-clip case: interval ends 23:50, next starts 08:00 the
	// following day. The window belongs to the FIRST interval's day, which
	// ended at 17:00, so no gap interval appears at all.
	in := []domain.Interval{
		iv("a", at(23, 0), at(23, 50)),
		iv("b", day.AddDate(0, 0, 1).Add(8*time.Hour), day.AddDate(0, 0, 1).Add(9*time.Hour)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 2)
	for _, v := range out {
		assert.NotEqual(t, domain.SourceTimeGap, v.Source)
	}
}

func TestFillGaps_ClippedBelowMinimumDropped(t *testing.T) {
	// Raw gap is 45 minutes but only 20 remain inside the working window.
	in := []domain.Interval{
		iv("a", at(16, 0), at(16, 40)),
		iv("b", at(17, 25), at(18, 0)),
	}
	out := FillGaps(in, DefaultGapOptions())
	assert.Len(t, out, 2)
}

func TestFillGaps_SortsUnorderedInput(t *testing.T) {
	in := []domain.Interval{
		iv("b", at(12, 0), at(12, 30)),
		iv("a", at(8, 0), at(9, 0)),
	}
	out := FillGaps(in, DefaultGapOptions())
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Source)
	assert.Equal(t, domain.SourceTimeGap, out[1].Source)
	assert.Equal(t, "b", out[2].Source)
}

func TestFillGaps_NeverShrinks(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 100; trial++ {
		in := Merge(randomIntervals(rng, rng.Intn(20)+1), DefaultMergeThreshold)
		out := FillGaps(in, DefaultGapOptions())
		assert.GreaterOrEqual(t, len(out), len(in))

		var kept []domain.Interval
		for _, v := range out {
			if v.Source != domain.SourceTimeGap {
				kept = append(kept, v)
			}
		}
		assert.Equal(t, in, kept, "every input interval preserved in order")
	}
}

func TestFillGaps_SynthesizedGapsMeetMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	opts := DefaultGapOptions()
	for trial := 0; trial < 100; trial++ {
		in := Merge(randomIntervals(rng, rng.Intn(20)), DefaultMergeThreshold)
		for _, v := range FillGaps(in, opts) {
			if v.Source == domain.SourceTimeGap {
				assert.GreaterOrEqual(t, v.Duration(), opts.MinGap)
			}
		}
	}
}
