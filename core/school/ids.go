package school

import (
	"context"

	"github.com/pkg/errors"
)

// IDAllocator hands out identifiers that are unique per Kind.
type IDAllocator interface {
	Next(ctx context.Context, kind Kind) (int, error)
}

type counterAllocator struct {
	store Store
}

// NewCounterAllocator returns an IDAllocator backed by the durable per-kind counters of st.
// Ids are monotonically increasing and start at 1.
func NewCounterAllocator(st Store) IDAllocator {
	return counterAllocator{store: st}
}

func (a counterAllocator) Next(ctx context.Context, kind Kind) (int, error) {
	id, err := a.store.NextID(ctx, kind)
	if err != nil {
		return 0, errors.Wrapf(err, "allocating %s id", kind)
	}
	if id <= 0 {
		return 0, errors.Errorf("allocating %s id: counter returned %d", kind, id)
	}
	return id, nil
}
