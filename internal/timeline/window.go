package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// ParseDateRange resolves a date argument into a [start, end] window in loc.
//
// Accepted forms:
//   - ""                      yesterday, midnight to midnight
//   - "2006-01-02"            that day, midnight to 23:59:59
//   - "2006-01-02:2006-01-02" inclusive range, first midnight to last 23:59:59
func ParseDateRange(s string, loc *time.Location) (time.Time, time.Time, error) {
	if s == "" {
		today := midnight(time.Now().In(loc))
		return today.AddDate(0, 0, -1), today, nil
	}

	if from, to, ok := strings.Cut(s, ":"); ok {
		start, err := time.ParseInLocation(dayKeyLayout, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing range start %q: %w", from, err)
		}
		end, err := time.ParseInLocation(dayKeyLayout, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing range end %q: %w", to, err)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("range end %q before start %q", to, from)
		}
		return start, endOfDay(end), nil
	}

	start, err := time.ParseInLocation(dayKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return start, endOfDay(start), nil
}

// FilterByRange keeps intervals fully contained in [start, end].
func FilterByRange(in []domain.Interval, start, end time.Time) []domain.Interval {
	out := make([]domain.Interval, 0, len(in))
	for _, iv := range in {
		if !iv.Start.Before(start) && !iv.End.After(end) {
			out = append(out, iv)
		}
	}
	return out
}

// FormatDuration renders whole minutes as "2h 5m", "2h", or "5m".
func FormatDuration(minutes float64) string {
	total := int(minutes)
	h, m := total/60, total%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(dayStart time.Time) time.Time {
	y, m, d := dayStart.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, dayStart.Location())
}
