// Package source collects raw activity intervals from external systems.
// Each source is independent; the tracking pipeline logs a failing source
// and continues with whatever the others returned.
package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// Source produces activity intervals observed in [start, end].
type Source interface {
	// Name identifies the source in logs, CLI output and interval Source tags.
	Name() string

	// Activities returns the intervals recorded between start and end.
	Activities(ctx context.Context, start, end time.Time) ([]domain.Interval, error)
}

// keepValid drops intervals that fail validation so one malformed record
// from an upstream API cannot poison the merge step.
func keepValid(log zerolog.Logger, source string, in []domain.Interval) []domain.Interval {
	out := in[:0]
	for _, iv := range in {
		if err := iv.Validate(); err != nil {
			log.Warn().Err(err).Str("source", source).Str("title", iv.Title).
				Msg("dropping invalid interval")
			continue
		}
		out = append(out, iv)
	}
	return out
}
