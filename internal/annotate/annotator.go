package annotate

import (
	"context"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// Annotator assigns task types, tickets, descriptions and billability to
// merged activity intervals. Implementations must return a slice of the
// same length and order as the input; intervals that cannot be categorized
// receive fallback annotations rather than being dropped.
type Annotator interface {
	Annotate(ctx context.Context, in []domain.Interval) []domain.Interval
}

// NoopAnnotator applies fallback annotations without consulting a model.
// Used when the LLM is disabled or unreachable.
type NoopAnnotator struct{}

func (NoopAnnotator) Annotate(_ context.Context, in []domain.Interval) []domain.Interval {
	out := make([]domain.Interval, len(in))
	for i, iv := range in {
		if iv.Annotation == nil {
			iv.Annotation = fallbackAnnotation(iv)
		}
		out[i] = iv
	}
	return out
}

// fallbackAnnotation is applied when categorization is unavailable or fails.
// Billable defaults to true here so uncategorized tracked work is not
// silently written off; synthesized gaps keep their own annotation.
func fallbackAnnotation(iv domain.Interval) *domain.Annotation {
	return &domain.Annotation{
		TaskType:    domain.UnknownTaskType,
		Ticket:      domain.UnknownTicket,
		Description: iv.Title,
		Billable:    true,
	}
}
