package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/chronolog/internal/domain"
)

// ErrNotFound is returned when a requested batch does not exist.
var ErrNotFound = errors.New("not found")

// BatchInfo describes a saved batch without its intervals.
type BatchInfo struct {
	ID            string
	Label         string
	CreatedAt     time.Time
	IntervalCount int
}

// BatchRepo persists processed interval batches. Start and end instants
// round-trip exactly, including their zone offsets; the opaque raw payload is
// stored as JSON text, so numeric typing inside it is storage-defined.
type BatchRepo interface {
	Save(ctx context.Context, id, label string, in []domain.Interval) error
	Load(ctx context.Context, id string) ([]domain.Interval, error)
	List(ctx context.Context) ([]BatchInfo, error)
	Latest(ctx context.Context) (*BatchInfo, error)
	Delete(ctx context.Context, id string) error
}
